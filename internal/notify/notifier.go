package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/fpscan/fpscan/internal/findings"
)

// ProcessNotifier launches an external command with the organization id and
// the path to a single-finding JSON file. The command runs in the background;
// its result is neither awaited nor interpreted. The temp file outlives the
// dispatch by a fixed TTL so the command has time to read it, then a
// detached timer removes it.
type ProcessNotifier struct {
	command string
	tempTTL time.Duration
	logger  hclog.Logger
}

// NewProcessNotifier returns a notifier invoking command. ttl bounds the
// lifetime of the handed-off finding file; zero means five minutes.
func NewProcessNotifier(command string, ttl time.Duration, logger hclog.Logger) *ProcessNotifier {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProcessNotifier{command: command, tempTTL: ttl, logger: logger}
}

// Dispatch writes the finding to a temp file and starts the notifier process.
func (n *ProcessNotifier) Dispatch(org string, f *findings.Finding) error {
	if n.command == "" {
		n.logger.Info("first verified finding for organization", "org", org)
		return nil
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode finding for notification: %w", err)
	}

	path := filepath.Join(os.TempDir(), "fpscan-notify-"+uuid.NewString()+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write notification file: %w", err)
	}

	cmd := exec.Command(n.command, org, path)
	if err := cmd.Start(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to start notifier process: %w", err)
	}

	// reap the process; expire the temp file on its own clock
	go cmd.Wait()
	time.AfterFunc(n.tempTTL, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			n.logger.Debug("failed to remove notification file", "path", path, "error", err)
		}
	})

	n.logger.Info("notification dispatched", "org", org, "command", n.command)
	return nil
}
