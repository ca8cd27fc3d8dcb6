// Package analyzer post-processes scan inputs and outputs: force-push event
// summaries, findings deduplication, truncated-file repair, and SARIF export.
package analyzer

import (
	"fmt"
	"io"
	"time"

	"github.com/fpscan/fpscan/internal/events"
)

const histogramBarMax = 40

// WriteReport prints a per-org force-push summary: impacted repositories,
// commit totals, and a per-year histogram of event timestamps.
func WriteReport(w io.Writer, org string, targets []events.Target) {
	repoCount := len(targets)
	totalCommits := 0
	for _, t := range targets {
		totalCommits += len(t.Events)
	}

	fmt.Fprintf(w, "\n======= Force-Push Summary for %s =======\n", org)
	fmt.Fprintf(w, "Repos impacted : %d\n", repoCount)
	fmt.Fprintf(w, "Total commits  : %d\n\n", totalCommits)

	for _, t := range targets {
		fmt.Fprintf(w, "%s: %d commits\n", t.URL, len(t.Events))
	}
	fmt.Fprintln(w)

	byYear := map[int]int{}
	firstYear := time.Now().Year()
	for _, t := range targets {
		for _, e := range t.Events {
			year := time.Unix(e.Timestamp, 0).UTC().Year()
			byYear[year]++
			if year < firstYear {
				firstYear = year
			}
		}
	}

	fmt.Fprintln(w, "Histogram:")
	currentYear := time.Now().Year()
	for year := firstYear; year <= currentYear; year++ {
		count := byYear[year]
		if count == 0 {
			fmt.Fprintf(w, " %04d | \n", year)
			continue
		}
		bar := count
		if bar > histogramBarMax {
			bar = histogramBarMax
		}
		fmt.Fprintf(w, " %04d | ", year)
		for i := 0; i < bar; i++ {
			fmt.Fprint(w, "▇")
		}
		fmt.Fprintf(w, " %d\n", count)
	}
	fmt.Fprint(w, "=================================\n\n")
}
