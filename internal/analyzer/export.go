package analyzer

import (
	"fmt"
	"os"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

const detectionToolURI = "https://github.com/trufflesecurity/trufflehog"

// ExportSARIF converts a findings file to SARIF 2.1.0 next to the input,
// one rule per detector and one result per finding. Returns the output path.
func ExportSARIF(path string) (string, error) {
	all, err := readFindings(path)
	if err != nil {
		return "", err
	}

	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return "", fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("trufflehog", detectionToolURI)
	for _, f := range all {
		detector := f.DetectorName
		if detector == "" {
			detector = "unknown-detector"
		}
		rule := run.AddRule(detector).
			WithDescription(fmt.Sprintf("Verified %s credential", detector)).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "error"})

		message := fmt.Sprintf("Verified %s credential in commit %s", detector, f.Commit)
		if f.RepositoryURL != "" {
			message += fmt.Sprintf(" of %s", f.RepositoryURL)
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.File)),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(message)).
			WithLevel("error").
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	report.AddRun(run)

	outputPath := strings.TrimSuffix(path, ".json") + ".sarif"
	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create SARIF file: %w", err)
	}
	defer file.Close()
	if err := report.PrettyWrite(file); err != nil {
		return "", fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return outputPath, nil
}
