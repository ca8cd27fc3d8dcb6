package events

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// expected CSV header columns, any order
var expectedColumns = []string{"repo_org", "repo_name", "before", "timestamp"}

// GatherFromCSV reads force-push events for org from a headered CSV file.
func GatherFromCSV(path, org string) ([]Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("events file not found: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to parse events file %q: %w", path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, want := range expectedColumns {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("events file %q is missing column %q", path, want)
		}
	}

	var rows []Row
	for idx := 1; ; idx++ {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse events file %q row %d: %w", path, idx, err)
		}

		ts, err := strconv.ParseInt(strings.TrimSpace(record[cols["timestamp"]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: 'timestamp' must be an integer: %w", idx, err)
		}

		rows = append(rows, Row{
			Org:       strings.TrimSpace(record[cols["repo_org"]]),
			Repo:      strings.TrimSpace(record[cols["repo_name"]]),
			Before:    strings.TrimSpace(record[cols["before"]]),
			Timestamp: ts,
		})
	}

	return BuildTargets(org, rows)
}
