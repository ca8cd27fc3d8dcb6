package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	return NewManager(root, hclog.NewNullLogger()), root
}

func TestAcquireRelease(t *testing.T) {
	m, root := newTestManager(t)

	ws, err := m.Acquire()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(ws.Path()), dirPrefix))
	assert.Equal(t, root, filepath.Dir(ws.Path()))

	info, err := os.Stat(ws.Path())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	ws.Release()
	_, err = os.Stat(ws.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireDirectoriesAreUnique(t *testing.T) {
	m, _ := newTestManager(t)

	a, err := m.Acquire()
	require.NoError(t, err)
	b, err := m.Acquire()
	require.NoError(t, err)
	assert.NotEqual(t, a.Path(), b.Path())
}

func TestSweepRemovesOrphanedClones(t *testing.T) {
	m, root := newTestManager(t)

	// an abandoned workspace holding a real repository
	orphan := filepath.Join(root, dirPrefix+"orphaned")
	require.NoError(t, os.MkdirAll(orphan, 0o755))
	_, err := git.PlainInit(orphan, false)
	require.NoError(t, err)

	// an abandoned workspace that never got cloned into
	empty := filepath.Join(root, dirPrefix+"empty")
	require.NoError(t, os.MkdirAll(empty, 0o755))

	m.Sweep()

	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err), "orphaned clone must be swept")
	_, err = os.Stat(empty)
	assert.True(t, os.IsNotExist(err), "empty workspace must be swept")
}

func TestSweepLeavesForeignDirectoriesAlone(t *testing.T) {
	m, root := newTestManager(t)

	// no workspace prefix: untouched even though it is a repository
	foreign := filepath.Join(root, "user-data")
	require.NoError(t, os.MkdirAll(foreign, 0o755))
	_, err := git.PlainInit(foreign, false)
	require.NoError(t, err)

	// workspace prefix but holding non-repository content: untouched
	claimed := filepath.Join(root, dirPrefix+"claimed")
	require.NoError(t, os.MkdirAll(claimed, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(claimed, "notes.txt"), []byte("keep"), 0o644))

	m.Sweep()

	_, err = os.Stat(foreign)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(claimed, "notes.txt"))
	assert.NoError(t, err)
}
