package logger

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/fpscan/fpscan/pkg/shared/config"
)

// NewLogger creates a named hclog.Logger. The FPSCAN_LOG_LEVEL environment
// variable takes priority over the configuration file; the default is INFO.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      os.Stdout,
		Level:       determineLogLevel(cfg),
	})
}

func determineLogLevel(cfg *config.Config) hclog.Level {
	if logLevelEnv := os.Getenv("FPSCAN_LOG_LEVEL"); logLevelEnv != "" {
		return parseLogLevel(strings.ToUpper(logLevelEnv))
	}
	if cfg != nil && cfg.Logger.Level != "" {
		return parseLogLevel(strings.ToUpper(cfg.Logger.Level))
	}
	return hclog.Info
}

func parseLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
