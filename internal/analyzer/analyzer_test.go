package analyzer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpscan/fpscan/internal/events"
)

func writeFindingsFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func findingJSON(detector, raw, commit, file, repo string) string {
	obj := map[string]interface{}{
		"Verified":       true,
		"DetectorName":   detector,
		"Raw":            raw,
		"repository_url": repo,
		"SourceMetadata": map[string]interface{}{
			"Data": map[string]interface{}{
				"Git": map[string]interface{}{"commit": commit, "file": file},
			},
		},
	}
	data, _ := json.Marshal(obj)
	return string(data)
}

func TestDeduplicate(t *testing.T) {
	content := "[" +
		findingJSON("AWS", "AKIA1", "c1", "a.py", "r1") + "," +
		findingJSON("AWS", "AKIA1", "c2", "b.py", "r1") + "," // same secret, different location
	content += findingJSON("Slack", "xoxb-1", "c3", "c.py", "r1") + "]"
	path := writeFindingsFile(t, "findings.json", content)

	stats, err := Deduplicate(path)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Original)
	assert.Equal(t, 2, stats.Unique)
	assert.Equal(t, 1, stats.Duplicates)

	data, err := os.ReadFile(stats.OutputPath)
	require.NoError(t, err)
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 2)
	assert.Equal(t, "AKIA1", out[0]["Raw"])
	assert.Equal(t, "xoxb-1", out[1]["Raw"])
}

func TestDeduplicateKeepsSecretlessFindings(t *testing.T) {
	content := "[" +
		`{"Verified":true,"DetectorName":"AWS","SourceMetadata":{"Data":{"Git":{"commit":"c1"}}}}` + "," +
		`{"Verified":true,"DetectorName":"AWS","SourceMetadata":{"Data":{"Git":{"commit":"c2"}}}}` + "]"
	path := writeFindingsFile(t, "findings.json", content)

	stats, err := Deduplicate(path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Unique)
	assert.Zero(t, stats.Duplicates)
}

func TestRepairTruncatedArray(t *testing.T) {
	// interrupted mid-object: the partial element is dropped
	content := "[\n" + findingJSON("AWS", "AKIA1", "c1", "a.py", "r1") + ",\n" +
		`{"Verified":true,"DetectorName":"Sl`
	path := writeFindingsFile(t, "truncated.json", content)

	res, err := Repair(path)
	require.NoError(t, err)
	assert.True(t, res.Fixed)
	assert.False(t, res.AlreadyValid)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Len(t, out, 1)
}

func TestRepairMissingClosingBracket(t *testing.T) {
	content := "[\n" + findingJSON("AWS", "AKIA1", "c1", "a.py", "r1") + "\n"
	path := writeFindingsFile(t, "open.json", content)

	res, err := Repair(path)
	require.NoError(t, err)
	assert.True(t, res.Fixed)
	assert.Equal(t, 1, res.SquareAdded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestRepairValidFileUntouched(t *testing.T) {
	content := "[" + findingJSON("AWS", "AKIA1", "c1", "a.py", "r1") + "]"
	path := writeFindingsFile(t, "valid.json", content)

	res, err := Repair(path)
	require.NoError(t, err)
	assert.True(t, res.AlreadyValid)
	assert.False(t, res.Fixed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestRepairUnfixableFile(t *testing.T) {
	path := writeFindingsFile(t, "garbage.json", "}}}]")

	res, err := Repair(path)
	require.Error(t, err)
	assert.False(t, res.Fixed)
}

func TestDiff(t *testing.T) {
	baseline := "[" +
		findingJSON("AWS", "AKIA1", "c1", "a.py", "https://github.com/robotcorp/api") + "," +
		findingJSON("Slack", "xoxb-old", "c2", "b.py", "https://github.com/robotcorp/api") + "]"
	current := "[" +
		findingJSON("AWS", "AKIA1", "c9", "moved.py", "https://github.com/robotcorp/api") + "," // same secret, carried over
	current += findingJSON("GitHub", "ghp_new", "c3", "c.py", "https://github.com/robotcorp/web") + "]"

	basePath := writeFindingsFile(t, "baseline.json", baseline)
	newPath := writeFindingsFile(t, "current.json", current)

	res, err := Diff(basePath, newPath)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Matched)
	require.Len(t, res.New, 1)
	assert.Equal(t, "GitHub", res.New[0].Detector)
	require.Len(t, res.Resolved, 1)
	assert.Equal(t, "Slack", res.Resolved[0].Detector)
}

func TestWriteReport(t *testing.T) {
	now := time.Now().Unix()
	targets := []events.Target{
		{URL: "https://github.com/robotcorp/api", Events: []events.PushEvent{
			{Before: "aaaaaaaa", Timestamp: now},
			{Before: "bbbbbbbb", Timestamp: now},
		}},
		{URL: "https://github.com/robotcorp/web", Events: []events.PushEvent{
			{Before: "cccccccc", Timestamp: now},
		}},
	}

	var buf bytes.Buffer
	WriteReport(&buf, "robotcorp", targets)
	out := buf.String()

	assert.Contains(t, out, "Force-Push Summary for robotcorp")
	assert.Contains(t, out, "Repos impacted : 2")
	assert.Contains(t, out, "Total commits  : 3")
	assert.Contains(t, out, "https://github.com/robotcorp/api: 2 commits")
	assert.Contains(t, out, "Histogram:")
	assert.Contains(t, out, " 3\n")
}
