package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBudgetEstimate(t *testing.T) {
	policy := DefaultBudgetPolicy()

	tests := []struct {
		name        string
		commitCount int
		bytes       int64
		want        time.Duration
	}{
		{"small repo", 10, 10 * megabyte, 15 * time.Minute},
		{"many commits", 60, 10 * megabyte, 22*time.Minute + 30*time.Second},
		{"very many commits", 150, 10 * megabyte, 30 * time.Minute},
		{"large workspace", 10, 200 * megabyte, 22*time.Minute + 30*time.Second},
		{"huge workspace", 10, 600 * megabyte, 30 * time.Minute},
		{"both signals multiply", 150, 600 * megabyte, 60 * time.Minute},
		{"capped at one hour", 1000, 10_000 * megabyte, 60 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Estimate(tt.commitCount, tt.bytes))
		})
	}
}

func TestAttemptBudget(t *testing.T) {
	policy := DefaultRetryPolicy()
	base := 10 * time.Minute

	assert.Equal(t, 10*time.Minute, policy.AttemptBudget(base, 1))
	assert.Equal(t, 20*time.Minute, policy.AttemptBudget(base, 2))
	assert.Equal(t, 30*time.Minute, policy.AttemptBudget(base, 3))

	// out-of-range attempts clamp instead of panicking
	assert.Equal(t, 10*time.Minute, policy.AttemptBudget(base, 0))
	assert.Equal(t, 30*time.Minute, policy.AttemptBudget(base, 7))
}

func TestToolConcurrency(t *testing.T) {
	assert.Equal(t, 8, toolConcurrency(10, 10*megabyte))
	assert.Equal(t, 4, toolConcurrency(60, 10*megabyte))
	assert.Equal(t, 4, toolConcurrency(10, 200*megabyte))
	assert.Equal(t, 2, toolConcurrency(150, 10*megabyte))
	assert.Equal(t, 2, toolConcurrency(10, 600*megabyte))
}
