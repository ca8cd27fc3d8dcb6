package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fpscan/fpscan/internal/findings"
	"github.com/fpscan/fpscan/pkg/findingcorrelation"
)

// DedupStats summarizes one deduplication pass.
type DedupStats struct {
	Original   int
	Unique     int
	Duplicates int
	OutputPath string
}

// Deduplicate removes findings whose raw secret was already seen, keeping
// the first occurrence, and writes the survivors to <name>.dedup.json next
// to the input. Findings without a raw secret are always kept.
func Deduplicate(path string) (DedupStats, error) {
	var stats DedupStats

	all, err := readFindings(path)
	if err != nil {
		return stats, err
	}
	stats.Original = len(all)

	seen := map[string]struct{}{}
	unique := make([]*findings.Finding, 0, len(all))
	for _, f := range all {
		raw := f.RawSecret()
		if raw == "" {
			unique = append(unique, f)
			continue
		}
		key := findingcorrelation.Fingerprint(raw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, f)
	}

	stats.Unique = len(unique)
	stats.Duplicates = stats.Original - stats.Unique
	stats.OutputPath = strings.TrimSuffix(path, ".json") + ".dedup.json"

	data, err := json.MarshalIndent(unique, "", "  ")
	if err != nil {
		return stats, fmt.Errorf("failed to marshal deduplicated findings: %w", err)
	}
	if err := os.WriteFile(stats.OutputPath, data, 0644); err != nil {
		return stats, fmt.Errorf("failed to write %q: %w", stats.OutputPath, err)
	}
	return stats, nil
}

func readFindings(path string) ([]*findings.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read findings file: %w", err)
	}
	var all []*findings.Finding
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse findings file %q: %w", path, err)
	}
	return all, nil
}
