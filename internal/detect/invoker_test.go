package detect

import (
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	verifiedLine   = `{"Verified":true,"DetectorName":"AWS","Raw":"AKIAEXAMPLE","SourceMetadata":{"Data":{"Git":{"commit":"a6cbb35","file":"config.py","email":"dev@example.com","timestamp":"2023-01-01 00:00:00 +0000"}}}}`
	unverifiedLine = `{"Verified":false,"DetectorName":"AWS","Raw":"AKIAEXAMPLE","SourceMetadata":{"Data":{"Git":{"commit":"a6cbb35","file":"config.py"}}}}`
	noDetectorLine = `{"Verified":true,"Raw":"AKIAEXAMPLE","SourceMetadata":{"Data":{"Git":{"commit":"a6cbb35","file":"config.py"}}}}`
	noCommitLine   = `{"Verified":true,"DetectorName":"AWS","Raw":"AKIAEXAMPLE","SourceMetadata":{"Data":{}}}`
)

func newTestInvoker() *Invoker {
	return NewInvoker("trufflehog", DefaultBudgetPolicy(), DefaultRetryPolicy(), hclog.NewNullLogger())
}

func TestFilterKeepsOnlyVerifiedAttributedFindings(t *testing.T) {
	out := strings.Join([]string{
		"Scanning repository...", // progress noise, not JSON
		verifiedLine,
		unverifiedLine,
		noDetectorLine,
		noCommitLine,
		"",
	}, "\n")

	kept := newTestInvoker().filter([]byte(out))
	require.Len(t, kept, 1)
	assert.Equal(t, "AWS", kept[0].DetectorName)
	assert.Equal(t, "a6cbb35", kept[0].Commit)
	assert.Equal(t, "config.py", kept[0].File)
	assert.True(t, kept[0].Verified)
}

func TestFilterEmptyOutput(t *testing.T) {
	assert.Empty(t, newTestInvoker().filter(nil))
	assert.Empty(t, newTestInvoker().filter([]byte("\n\n")))
}

func TestFilterLongLines(t *testing.T) {
	// a large secret blob must not break line scanning
	long := `{"Verified":true,"DetectorName":"Generic","Raw":"` + strings.Repeat("x", 256*1024) + `","SourceMetadata":{"Data":{"Git":{"commit":"a6cbb35","file":"dump.sql"}}}}`
	kept := newTestInvoker().filter([]byte(long + "\n" + verifiedLine + "\n"))
	require.Len(t, kept, 2)
	assert.Equal(t, "Generic", kept[0].DetectorName)
}

func TestNewInvokerDefaultsBinPath(t *testing.T) {
	i := NewInvoker("", DefaultBudgetPolicy(), DefaultRetryPolicy(), hclog.NewNullLogger())
	assert.Equal(t, "trufflehog", i.binPath)
}
