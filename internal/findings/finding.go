// Package findings models verified secrets reported by the detection tool
// and persists them incrementally into one JSON array per scan run.
package findings

import (
	"encoding/json"
	"fmt"
	"time"
)

// Finding is one detector result. The typed fields mirror what the pipeline
// inspects; the full decoded object is retained so persistence keeps every
// field the tool emitted.
type Finding struct {
	Verified        bool
	DetectorName    string
	DecoderName     string
	Raw             string
	RawV2           string
	Commit          string
	File            string
	Email           string
	CommitTimestamp string

	// enrichment, set by Enrich before persistence
	RepositoryURL string
	ScannedCommit string
	ScanTimestamp string

	fields map[string]interface{}
}

// probe maps only the fields the pipeline filters and notifies on.
type probe struct {
	Verified       bool   `json:"Verified"`
	DetectorName   string `json:"DetectorName"`
	DecoderName    string `json:"DecoderName"`
	Raw            string `json:"Raw"`
	RawV2          string `json:"RawV2"`
	SourceMetadata struct {
		Data struct {
			Git *struct {
				Commit    string `json:"commit"`
				File      string `json:"file"`
				Email     string `json:"email"`
				Timestamp string `json:"timestamp"`
			} `json:"Git"`
		} `json:"Data"`
	} `json:"SourceMetadata"`
}

// ParseLine decodes one line of detector output. ok is false for anything
// that is not a JSON object; such lines are discarded silently upstream.
func ParseLine(line []byte) (f *Finding, ok bool) {
	var p probe
	if err := json.Unmarshal(line, &p); err != nil {
		return nil, false
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, false
	}

	f = &Finding{
		Verified:     p.Verified,
		DetectorName: p.DetectorName,
		DecoderName:  p.DecoderName,
		Raw:          p.Raw,
		RawV2:        p.RawV2,
		fields:       fields,
	}
	if git := p.SourceMetadata.Data.Git; git != nil {
		f.Commit = git.Commit
		f.File = git.File
		f.Email = git.Email
		f.CommitTimestamp = git.Timestamp
	}
	return f, true
}

// HasCommitMetadata reports whether the detector attributed this finding to a
// specific commit. Findings without commit identity are dropped by the filter.
func (f *Finding) HasCommitMetadata() bool {
	return f.Commit != ""
}

// RawSecret returns the raw credential value, preferring the primary form.
func (f *Finding) RawSecret() string {
	if f.Raw != "" {
		return f.Raw
	}
	return f.RawV2
}

// Enrich tags the finding with its originating repository, the scanned
// pre-rewrite reference, and the scan wall-clock time. Done once, before the
// finding reaches the sink or the notification gate.
func (f *Finding) Enrich(repoURL, scannedCommit string, at time.Time) {
	f.RepositoryURL = repoURL
	f.ScannedCommit = scannedCommit
	f.ScanTimestamp = at.Format(time.RFC3339)

	if f.fields == nil {
		f.fields = make(map[string]interface{})
	}
	f.fields["repository_url"] = f.RepositoryURL
	f.fields["scanned_commit"] = f.ScannedCommit
	f.fields["scan_timestamp"] = f.ScanTimestamp
}

// MarshalJSON writes the full detector object plus enrichment.
func (f *Finding) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.fields)
}

// UnmarshalJSON restores a persisted finding, including enrichment keys
// written by Enrich.
func (f *Finding) UnmarshalJSON(data []byte) error {
	parsed, ok := ParseLine(data)
	if !ok {
		return fmt.Errorf("not a finding object")
	}
	if v, ok := parsed.fields["repository_url"].(string); ok {
		parsed.RepositoryURL = v
	}
	if v, ok := parsed.fields["scanned_commit"].(string); ok {
		parsed.ScannedCommit = v
	}
	if v, ok := parsed.fields["scan_timestamp"].(string); ok {
		parsed.ScanTimestamp = v
	}
	*f = *parsed
	return nil
}
