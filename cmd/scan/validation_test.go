package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpscan/fpscan/pkg/shared/config"
)

func TestValidateScanArgs(t *testing.T) {
	withDSN := &config.Config{}
	withDSN.EventsDB.DSN = "postgres://fpscan@localhost/fpevents"

	tests := []struct {
		name    string
		options RunOptionsScan
		cfg     *config.Config
		args    []string
		wantErr string
	}{
		{
			"events file source",
			RunOptionsScan{EventsFile: "events.csv", MaxWorkers: 4},
			&config.Config{},
			[]string{"robotcorp"},
			"",
		},
		{
			"dsn flag source",
			RunOptionsScan{DBConn: "postgres://localhost/db", MaxWorkers: 4},
			&config.Config{},
			[]string{"robotcorp"},
			"",
		},
		{
			"configured dsn source",
			RunOptionsScan{MaxWorkers: 4},
			withDSN,
			[]string{"robotcorp"},
			"",
		},
		{
			"missing org",
			RunOptionsScan{EventsFile: "events.csv", MaxWorkers: 4},
			&config.Config{},
			nil,
			"organization argument",
		},
		{
			"two orgs",
			RunOptionsScan{EventsFile: "events.csv", MaxWorkers: 4},
			&config.Config{},
			[]string{"a", "b"},
			"organization argument",
		},
		{
			"no event source",
			RunOptionsScan{MaxWorkers: 4},
			&config.Config{},
			[]string{"robotcorp"},
			"event source is required",
		},
		{
			"conflicting sources",
			RunOptionsScan{EventsFile: "events.csv", DBConn: "postgres://x", MaxWorkers: 4},
			&config.Config{},
			[]string{"robotcorp"},
			"mutually exclusive",
		},
		{
			"zero workers",
			RunOptionsScan{EventsFile: "events.csv", MaxWorkers: 0},
			&config.Config{},
			[]string{"robotcorp"},
			"--jobs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScanArgs(&tt.options, tt.cfg, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
