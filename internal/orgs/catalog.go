// Package orgs downloads the community-maintained mapping of bug bounty
// programs to GitHub organizations and flattens it into an org list.
package orgs

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
)

const (
	catalogAPIBase = "https://api.github.com/repos/nikitastupin/orgs-data"
	catalogRawBase = "https://raw.githubusercontent.com/nikitastupin/orgs-data/main"
)

// orgs-data TSV rows point at github.com/<org> or github.com/<org>/<repo>
var orgFromURL = regexp.MustCompile(`github\.com/([^/\s]+)`)

// entries that appear in URLs but are never organizations
var reservedNames = map[string]struct{}{
	"settings":      {},
	"notifications": {},
	"search":        {},
}

type catalogEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Fetcher retrieves the organization catalog over HTTP.
type Fetcher struct {
	client  *resty.Client
	logger  hclog.Logger
	apiBase string
	rawBase string
}

func NewFetcher(client *resty.Client, logger hclog.Logger) *Fetcher {
	return &Fetcher{
		client:  client,
		logger:  logger,
		apiBase: catalogAPIBase,
		rawBase: catalogRawBase,
	}
}

// FetchAll lists the catalog's TSV files and extracts every GitHub
// organization they reference, sorted and deduplicated.
func (f *Fetcher) FetchAll(ctx context.Context) ([]string, error) {
	entries, err := f.listCatalogFiles(ctx)
	if err != nil {
		return nil, err
	}
	f.logger.Info("fetched catalog listing", "files", len(entries))

	seen := map[string]struct{}{}
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name, ".tsv") {
			continue
		}
		body, err := f.fetchRaw(ctx, entry.Path)
		if err != nil {
			f.logger.Warn("skipping catalog file", "file", entry.Name, "error", err)
			continue
		}
		names := ParseTSV(body)
		f.logger.Debug("parsed catalog file", "file", entry.Name, "orgs", len(names))
		for _, name := range names {
			seen[name] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("no organizations found in catalog")
	}

	all := make([]string, 0, len(seen))
	for name := range seen {
		all = append(all, name)
	}
	sort.Strings(all)
	return all, nil
}

func (f *Fetcher) listCatalogFiles(ctx context.Context) ([]catalogEntry, error) {
	var entries []catalogEntry
	// the GitHub contents API answers JSON regardless of the content type header
	resp, err := f.client.R().
		SetContext(ctx).
		SetResult(&entries).
		ForceContentType("application/json").
		Get(f.apiBase + "/contents/orgs-data")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog listing: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("catalog listing request failed: %s", resp.Status())
	}
	return entries, nil
}

func (f *Fetcher) fetchRaw(ctx context.Context, path string) (string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(f.rawBase + "/" + path)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("request failed: %s", resp.Status())
	}
	return resp.String(), nil
}

// ParseTSV extracts organization names from one catalog TSV file. Rows are
// "<program URL>\t<github URL or placeholder>"; placeholders "?" and "-"
// mean no known organization.
func ParseTSV(content string) []string {
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		entry := strings.TrimSpace(parts[1])
		if entry == "" || entry == "?" || entry == "-" {
			continue
		}
		match := orgFromURL.FindStringSubmatch(entry)
		if match == nil {
			continue
		}
		name := match[1]
		if _, reserved := reservedNames[name]; reserved {
			continue
		}
		names = append(names, name)
	}
	return names
}
