package detect

import "time"

const megabyte = 1 << 20

// BudgetPolicy computes the time budget for one detector invocation from the
// amount of history being scanned and the on-disk workspace size. Both
// signals scale a baseline in coarse buckets; the result never exceeds Cap.
type BudgetPolicy struct {
	Base time.Duration
	Cap  time.Duration
}

// DefaultBudgetPolicy is a 15 minute baseline capped at one hour.
func DefaultBudgetPolicy() BudgetPolicy {
	return BudgetPolicy{Base: 15 * time.Minute, Cap: 60 * time.Minute}
}

// Estimate returns the scan budget for the given sizing signals.
func (p BudgetPolicy) Estimate(commitCount int, workspaceBytes int64) time.Duration {
	multiplier := 1.0

	switch {
	case commitCount > 100:
		multiplier *= 2.0
	case commitCount > 50:
		multiplier *= 1.5
	}

	switch mb := workspaceBytes / megabyte; {
	case mb > 500:
		multiplier *= 2.0
	case mb > 100:
		multiplier *= 1.5
	}

	estimate := time.Duration(float64(p.Base) * multiplier)
	if estimate > p.Cap {
		return p.Cap
	}
	return estimate
}

// RetryPolicy describes how timeout failures are retried: the attempt budget
// is the base estimate scaled by the attempt's multiplier.
type RetryPolicy struct {
	MaxAttempts int
	Multipliers []int
}

// DefaultRetryPolicy allows three attempts with escalating budgets.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Multipliers: []int{1, 2, 3}}
}

// AttemptBudget returns the budget for the 1-based attempt number.
func (p RetryPolicy) AttemptBudget(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if len(p.Multipliers) == 0 {
		return base * time.Duration(attempt)
	}
	if attempt > len(p.Multipliers) {
		attempt = len(p.Multipliers)
	}
	return base * time.Duration(p.Multipliers[attempt-1])
}

// toolConcurrency tunes the detector's internal parallelism inversely to the
// workload so large repositories stay within memory bounds.
func toolConcurrency(commitCount int, workspaceBytes int64) int {
	mb := workspaceBytes / megabyte
	switch {
	case mb > 500 || commitCount > 100:
		return 2
	case mb > 100 || commitCount > 50:
		return 4
	default:
		return 8
	}
}
