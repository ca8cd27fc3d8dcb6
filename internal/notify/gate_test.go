package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpscan/fpscan/internal/findings"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func newRecordingDispatcher(expected int) *recordingDispatcher {
	return &recordingDispatcher{done: make(chan struct{}, expected)}
}

func (d *recordingDispatcher) Dispatch(org string, f *findings.Finding) error {
	d.mu.Lock()
	d.calls = append(d.calls, org)
	d.mu.Unlock()
	d.done <- struct{}{}
	return nil
}

func (d *recordingDispatcher) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-d.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for dispatch")
		}
	}
}

func notifiableFinding(t *testing.T) *findings.Finding {
	t.Helper()
	line := `{"Verified":true,"DetectorName":"AWS","Raw":"AKIAEXAMPLE","SourceMetadata":{"Data":{"Git":{"commit":"a6cbb35","file":"config.py"}}}}`
	f, ok := findings.ParseLine([]byte(line))
	require.True(t, ok)
	return f
}

func TestNotifyFirstExactlyOncePerOrg(t *testing.T) {
	d := newRecordingDispatcher(1)
	gate := NewGate(d, hclog.NewNullLogger())
	f := notifiableFinding(t)

	const n = 20
	fired := make(chan bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fired <- gate.NotifyFirst("robotcorp", f)
		}()
	}
	wg.Wait()
	close(fired)

	count := 0
	for ok := range fired {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one goroutine wins the gate")

	d.wait(t, 1)
	assert.Equal(t, []string{"robotcorp"}, d.calls)
}

func TestNotifyFirstIndependentOrgs(t *testing.T) {
	d := newRecordingDispatcher(2)
	gate := NewGate(d, hclog.NewNullLogger())
	f := notifiableFinding(t)

	assert.True(t, gate.NotifyFirst("robotcorp", f))
	assert.True(t, gate.NotifyFirst("othercorp", f))
	assert.False(t, gate.NotifyFirst("robotcorp", f))

	d.wait(t, 2)
	assert.ElementsMatch(t, []string{"robotcorp", "othercorp"}, d.calls)
}

func TestNotifyFirstSkipsIncompleteFindings(t *testing.T) {
	d := newRecordingDispatcher(1)
	gate := NewGate(d, hclog.NewNullLogger())

	tests := []struct {
		name string
		line string
	}{
		{"unverified", `{"Verified":false,"DetectorName":"AWS","Raw":"x","SourceMetadata":{"Data":{"Git":{"commit":"a"}}}}`},
		{"no detector", `{"Verified":true,"Raw":"x","SourceMetadata":{"Data":{"Git":{"commit":"a"}}}}`},
		{"no raw secret", `{"Verified":true,"DetectorName":"AWS","SourceMetadata":{"Data":{"Git":{"commit":"a"}}}}`},
		{"no commit", `{"Verified":true,"DetectorName":"AWS","Raw":"x","SourceMetadata":{"Data":{}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := findings.ParseLine([]byte(tt.line))
			require.True(t, ok)
			assert.False(t, gate.NotifyFirst("robotcorp", f))
		})
	}
	assert.False(t, gate.NotifyFirst("robotcorp", nil))
	assert.Empty(t, d.calls)

	// the org was never marked notified by the skipped findings
	assert.True(t, gate.NotifyFirst("robotcorp", notifiableFinding(t)))
}
