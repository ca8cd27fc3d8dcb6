package analyzer

import (
	"fmt"

	"github.com/fpscan/fpscan/internal/findings"
	"github.com/fpscan/fpscan/pkg/findingcorrelation"
)

// DiffResult splits a new scan's findings against a baseline run.
type DiffResult struct {
	New      []findingcorrelation.FindingMetadata // not seen in the baseline
	Resolved []findingcorrelation.FindingMetadata // baseline findings with no new counterpart
	Matched  int
}

// Diff correlates the findings of newPath against the baseline at
// basePath and reports which findings are new, which baseline findings no
// longer appear, and how many carried over.
func Diff(basePath, newPath string) (DiffResult, error) {
	var res DiffResult

	known, err := loadMetadata(basePath)
	if err != nil {
		return res, err
	}
	current, err := loadMetadata(newPath)
	if err != nil {
		return res, err
	}

	c := findingcorrelation.NewCorrelator(current, known)
	c.Process()

	res.New = c.UnmatchedNew()
	res.Resolved = c.UnmatchedKnown()
	res.Matched = len(current) - len(res.New)
	return res, nil
}

func loadMetadata(path string) ([]findingcorrelation.FindingMetadata, error) {
	all, err := readFindings(path)
	if err != nil {
		return nil, err
	}
	out := make([]findingcorrelation.FindingMetadata, len(all))
	for i, f := range all {
		out[i] = toMetadata(i, f)
	}
	return out, nil
}

func toMetadata(idx int, f *findings.Finding) findingcorrelation.FindingMetadata {
	return findingcorrelation.FindingMetadata{
		FindingID:     fmt.Sprintf("#%d", idx+1),
		Detector:      f.DetectorName,
		RepositoryURL: f.RepositoryURL,
		File:          f.File,
		Commit:        f.Commit,
		Fingerprint:   findingcorrelation.Fingerprint(f.RawSecret()),
	}
}
