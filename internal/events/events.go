// Package events loads and validates force-push event batches. A batch maps
// each impacted repository to the ordered list of pre-rewrite commit
// references reported for it. Validation is strict: one malformed record
// rejects the whole batch before any scanning starts.
package events

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gitsight/go-vcsurl"
)

var shaRe = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// PushEvent is one force-push record: the commit reference that was pushed
// over and the epoch timestamp of the push.
type PushEvent struct {
	Before    string
	Timestamp int64
}

// Row is one raw input record as read from a CSV file or the event store.
type Row struct {
	Org       string
	Repo      string
	Before    string
	Timestamp int64
}

// Target is one repository with its force-push events in input order.
// Events are not deduplicated; downstream layers scan each one independently.
type Target struct {
	URL    string
	Events []PushEvent
}

// ValidSHA reports whether s looks like a short or long git object id.
func ValidSHA(s string) bool {
	return shaRe.MatchString(s)
}

// ValidateRow checks one record against the batch's organization. idx is the
// 1-based record position, used only for error messages.
func ValidateRow(org string, r Row, idx int) error {
	if strings.TrimSpace(r.Org) == "" {
		return fmt.Errorf("row %d: 'repo_org' is empty", idx)
	}
	if r.Org != org {
		return fmt.Errorf("row %d: 'repo_org' does not match requested org: %s != %s", idx, r.Org, org)
	}
	if strings.TrimSpace(r.Repo) == "" {
		return fmt.Errorf("row %d: 'repo_name' is empty", idx)
	}
	if !ValidSHA(r.Before) {
		return fmt.Errorf("row %d: 'before' does not look like a commit SHA: %q", idx, r.Before)
	}
	return nil
}

// BuildTargets validates every row and folds them into per-repository targets,
// preserving both the first-seen repository order and the event order within
// each repository. An empty batch is an error: it means the dataset holds no
// force-push events for the requested organization.
func BuildTargets(org string, rows []Row) ([]Target, error) {
	index := make(map[string]int)
	var targets []Target

	for i, row := range rows {
		if err := ValidateRow(org, row, i+1); err != nil {
			return nil, err
		}

		url := fmt.Sprintf("https://github.com/%s/%s", row.Org, row.Repo)
		if _, err := vcsurl.Parse(url); err != nil {
			return nil, fmt.Errorf("row %d: cannot form a valid repository URL from %s/%s: %w", i+1, row.Org, row.Repo, err)
		}

		ev := PushEvent{Before: row.Before, Timestamp: row.Timestamp}
		if pos, ok := index[url]; ok {
			targets[pos].Events = append(targets[pos].Events, ev)
			continue
		}
		index[url] = len(targets)
		targets = append(targets, Target{URL: url, Events: []PushEvent{ev}})
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no force-push events found for %q, dataset empty", org)
	}
	return targets, nil
}
