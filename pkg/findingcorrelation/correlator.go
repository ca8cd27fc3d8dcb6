// Package findingcorrelation matches the findings of a new scan run against a
// previous run's, so that only genuinely new leaks need triage. A known
// finding may match multiple new findings and vice versa.
package findingcorrelation

// FindingMetadata is the minimal metadata required to correlate findings
// across runs. FindingID is an external identifier carried through for the
// caller's benefit; correlation never inspects it.
type FindingMetadata struct {
	FindingID     string
	Detector      string
	RepositoryURL string
	File          string
	Commit        string
	Fingerprint   string // secret-value fingerprint, see Fingerprint()
}

// Match groups a single known finding with the list of new findings that
// were correlated to it.
type Match struct {
	Known FindingMetadata
	New   []FindingMetadata
}

// Correlator accepts slices of new and known findings and computes
// correlations between them. Use NewCorrelator to create an instance and
// call Process() to compute matches; then Matches(), UnmatchedNew() and
// UnmatchedKnown() inspect the result. Many-to-many relationships are
// preserved.
type Correlator struct {
	NewFindings   []FindingMetadata
	KnownFindings []FindingMetadata

	// internal indexes populated by Process()
	knownToNew map[int][]int
	newToKnown map[int][]int

	processed bool
}

// NewCorrelator constructs a Correlator with the provided slices of new and
// known findings. The correlator is inert until Process() is called.
func NewCorrelator(newFindings, knownFindings []FindingMetadata) *Correlator {
	return &Correlator{
		NewFindings:   newFindings,
		KnownFindings: knownFindings,
	}
}

// Process computes correlations between every known and every new finding
// using four ordered stages. Once a finding has been matched in an earlier
// stage it is excluded from later stages. The stages are:
// 1) detector + repository + fingerprint
// 2) detector + fingerprint (the same secret surfacing in another repository)
// 3) detector + repository + file + commit
// 4) detector + repository + file
// Process is idempotent.
func (c *Correlator) Process() {
	if c.processed {
		return
	}
	c.knownToNew = make(map[int][]int)
	c.newToKnown = make(map[int][]int)

	matchedKnown := make(map[int]bool)
	matchedNew := make(map[int]bool)

	for stage := 1; stage <= 4; stage++ {
		matchedKnownThis := make(map[int]bool)
		matchedNewThis := make(map[int]bool)

		for ki, k := range c.KnownFindings {
			if matchedKnown[ki] {
				continue
			}
			for ni, n := range c.NewFindings {
				if matchedNew[ni] {
					continue
				}

				if matchStage(k, n, stage) {
					c.knownToNew[ki] = append(c.knownToNew[ki], ni)
					c.newToKnown[ni] = append(c.newToKnown[ni], ki)
					matchedKnownThis[ki] = true
					matchedNewThis[ni] = true
				}
			}
		}

		// promote this stage's matches so later stages skip them
		for ki := range matchedKnownThis {
			matchedKnown[ki] = true
		}
		for ni := range matchedNewThis {
			matchedNew[ni] = true
		}
	}

	c.processed = true
}

// matchStage applies the stage's matching rules. Detector is required for
// every stage; fingerprint stages additionally require a non-empty
// fingerprint on both sides.
func matchStage(a, b FindingMetadata, stage int) bool {
	if a.Detector == "" || b.Detector == "" || a.Detector != b.Detector {
		return false
	}

	switch stage {
	case 1:
		return a.Fingerprint != "" && a.Fingerprint == b.Fingerprint &&
			a.RepositoryURL == b.RepositoryURL
	case 2:
		return a.Fingerprint != "" && a.Fingerprint == b.Fingerprint
	case 3:
		return a.RepositoryURL == b.RepositoryURL && a.File == b.File && a.Commit == b.Commit
	case 4:
		return a.RepositoryURL == b.RepositoryURL && a.File == b.File
	default:
		return false
	}
}

// UnmatchedNew returns the new findings that were not correlated to any
// known finding. These are the leaks a previous run has not seen.
func (c *Correlator) UnmatchedNew() []FindingMetadata {
	if !c.processed {
		c.Process()
	}

	var out []FindingMetadata
	for ni, n := range c.NewFindings {
		if len(c.newToKnown[ni]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// UnmatchedKnown returns the known findings with no correlated new finding,
// typically secrets that were rotated or whose history vanished.
func (c *Correlator) UnmatchedKnown() []FindingMetadata {
	if !c.processed {
		c.Process()
	}

	var out []FindingMetadata
	for ki, k := range c.KnownFindings {
		if len(c.knownToNew[ki]) == 0 {
			out = append(out, k)
		}
	}
	return out
}

// Matches returns each known finding that had at least one correlated new
// finding, with the new findings attached. A new finding that matches
// multiple known findings appears under each of them.
func (c *Correlator) Matches() []Match {
	if !c.processed {
		c.Process()
	}

	var out []Match
	for ki, newIdxs := range c.knownToNew {
		if len(newIdxs) == 0 {
			continue
		}
		m := Match{Known: c.KnownFindings[ki], New: make([]FindingMetadata, 0, len(newIdxs))}
		for _, ni := range newIdxs {
			if ni >= 0 && ni < len(c.NewFindings) {
				m.New = append(m.New, c.NewFindings[ni])
			}
		}
		out = append(out, m)
	}
	return out
}
