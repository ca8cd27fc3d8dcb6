package findingcorrelation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meta(id, detector, repo, file, commit, secret string) FindingMetadata {
	return FindingMetadata{
		FindingID:     id,
		Detector:      detector,
		RepositoryURL: repo,
		File:          file,
		Commit:        commit,
		Fingerprint:   Fingerprint(secret),
	}
}

func TestFingerprint(t *testing.T) {
	assert.Empty(t, Fingerprint(""))
	assert.Len(t, Fingerprint("AKIA1"), 16)
	assert.Equal(t, Fingerprint("AKIA1"), Fingerprint("AKIA1"))
	assert.NotEqual(t, Fingerprint("AKIA1"), Fingerprint("AKIA2"))
}

func TestCorrelatorMatchesByFingerprint(t *testing.T) {
	known := []FindingMetadata{meta("k1", "AWS", "repo-a", "old.py", "c1", "AKIA1")}
	// same secret, different file and commit after a history rewrite
	new_ := []FindingMetadata{meta("n1", "AWS", "repo-a", "moved.py", "c9", "AKIA1")}

	c := NewCorrelator(new_, known)
	c.Process()

	matches := c.Matches()
	require.Len(t, matches, 1)
	assert.Equal(t, "k1", matches[0].Known.FindingID)
	require.Len(t, matches[0].New, 1)
	assert.Equal(t, "n1", matches[0].New[0].FindingID)
	assert.Empty(t, c.UnmatchedNew())
	assert.Empty(t, c.UnmatchedKnown())
}

func TestCorrelatorCrossRepositoryFingerprint(t *testing.T) {
	known := []FindingMetadata{meta("k1", "AWS", "repo-a", "a.py", "c1", "AKIA1")}
	new_ := []FindingMetadata{meta("n1", "AWS", "repo-b", "b.py", "c2", "AKIA1")}

	c := NewCorrelator(new_, known)
	assert.Len(t, c.Matches(), 1, "same secret in another repository still correlates")
}

func TestCorrelatorLocationFallback(t *testing.T) {
	// secrets redacted from the report: only detector and location remain
	known := []FindingMetadata{meta("k1", "Slack", "repo-a", "conf.yml", "c1", "")}
	new_ := []FindingMetadata{meta("n1", "Slack", "repo-a", "conf.yml", "c2", "")}

	c := NewCorrelator(new_, known)
	require.Len(t, c.Matches(), 1)
	assert.Empty(t, c.UnmatchedNew())
}

func TestCorrelatorDetectorRequired(t *testing.T) {
	known := []FindingMetadata{meta("k1", "AWS", "repo-a", "a.py", "c1", "AKIA1")}
	new_ := []FindingMetadata{meta("n1", "Slack", "repo-a", "a.py", "c1", "AKIA1")}

	c := NewCorrelator(new_, known)
	assert.Empty(t, c.Matches())
	assert.Len(t, c.UnmatchedNew(), 1)
	assert.Len(t, c.UnmatchedKnown(), 1)
}

func TestCorrelatorEmptyFingerprintsNeverMatchEachOther(t *testing.T) {
	known := []FindingMetadata{meta("k1", "AWS", "repo-a", "a.py", "c1", "")}
	new_ := []FindingMetadata{meta("n1", "AWS", "repo-b", "b.py", "c2", "")}

	c := NewCorrelator(new_, known)
	assert.Empty(t, c.Matches(), "different locations with absent secrets must not correlate")
}

func TestCorrelatorManyToMany(t *testing.T) {
	known := []FindingMetadata{
		meta("k1", "AWS", "repo-a", "a.py", "c1", "AKIA1"),
		meta("k2", "AWS", "repo-a", "b.py", "c1", "AKIA1"),
	}
	new_ := []FindingMetadata{
		meta("n1", "AWS", "repo-a", "c.py", "c2", "AKIA1"),
		meta("n2", "AWS", "repo-a", "d.py", "c2", "AKIA1"),
	}

	c := NewCorrelator(new_, known)
	c.Process()

	assert.Len(t, c.Matches(), 2)
	assert.Empty(t, c.UnmatchedNew())
	assert.Empty(t, c.UnmatchedKnown())
}

func TestCorrelatorStageOrdering(t *testing.T) {
	// k1 matches n1 exactly in stage 1; k2 only reaches n2 via the
	// cross-repository stage and must not steal n1
	known := []FindingMetadata{
		meta("k1", "AWS", "repo-a", "a.py", "c1", "AKIA1"),
		meta("k2", "AWS", "repo-b", "b.py", "c2", "AKIA1"),
	}
	new_ := []FindingMetadata{
		meta("n1", "AWS", "repo-a", "a.py", "c1", "AKIA1"),
	}

	c := NewCorrelator(new_, known)
	c.Process()

	matches := c.Matches()
	require.Len(t, matches, 1)
	assert.Equal(t, "k1", matches[0].Known.FindingID)
	unmatched := c.UnmatchedKnown()
	require.Len(t, unmatched, 1)
	assert.Equal(t, "k2", unmatched[0].FindingID)
}

func TestCorrelatorProcessIdempotent(t *testing.T) {
	known := []FindingMetadata{meta("k1", "AWS", "repo-a", "a.py", "c1", "AKIA1")}
	new_ := []FindingMetadata{meta("n1", "AWS", "repo-a", "a.py", "c1", "AKIA1")}

	c := NewCorrelator(new_, known)
	c.Process()
	c.Process()

	matches := c.Matches()
	require.Len(t, matches, 1)
	assert.Len(t, matches[0].New, 1)
}
