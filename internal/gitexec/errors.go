package gitexec

import (
	"errors"
	"fmt"
	"strings"
)

// CommandError wraps a failed git invocation with enough context to classify it.
type CommandError struct {
	Args     []string
	Stderr   string
	TimedOut bool
	Err      error
}

func (e *CommandError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("git command timed out: git %s", strings.Join(e.Args, " "))
	}
	return fmt.Sprintf("git command failed: git %s: %v: %s", strings.Join(e.Args, " "), e.Err, strings.TrimSpace(e.Stderr))
}

func (e *CommandError) Unwrap() error { return e.Err }

// upload-pack phrasings for a ref the remote no longer advertises
var unknownRefMarkers = []string{
	"not our ref",
	"couldn't find remote ref",
}

// IsUnknownRef reports whether err is a fetch failure for a ref the remote
// does not know. Such an event is unscannable but must not abort the
// remaining events of its repository.
func IsUnknownRef(err error) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	for _, marker := range unknownRefMarkers {
		if strings.Contains(cmdErr.Stderr, marker) {
			return true
		}
	}
	return false
}

// IsTimeout reports whether err is a git invocation killed by its deadline.
func IsTimeout(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr) && cmdErr.TimedOut
}
