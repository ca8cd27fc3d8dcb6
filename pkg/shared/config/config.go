package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the root of the fpscan YAML configuration.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	HttpClient HttpClient `yaml:"http_client"`
	Git        Git        `yaml:"git"`
	Scanner    Scanner    `yaml:"scanner"`
	Workspace  Workspace  `yaml:"workspace"`
	EventsDB   EventsDB   `yaml:"events_db"`
	Notifier   Notifier   `yaml:"notifier"`
	Upload     Upload     `yaml:"upload"`
	Results    Results    `yaml:"results"`
}

type Logger struct {
	Level string `yaml:"level"`
}

type HttpClient struct {
	Debug            bool            `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TlsClientConfig  TlsClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TlsClientConfig struct {
	Verify bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Git configures the git CLI collaborator.
type Git struct {
	CommandTimeout time.Duration `yaml:"command_timeout"` // per git invocation, default 5m
	CloneDepth     int           `yaml:"clone_depth"`     // history limit for shallow clones, default 100
}

// Scanner configures the external secret-detection tool.
type Scanner struct {
	BinPath     string        `yaml:"bin_path"`     // default "trufflehog", resolved from PATH
	BaseTimeout time.Duration `yaml:"base_timeout"` // baseline scan budget, default 15m
	MaxTimeout  time.Duration `yaml:"max_timeout"`  // budget cap, default 60m
	MaxAttempts int           `yaml:"max_attempts"` // attempts on timeout, default 3
}

// Workspace configures disposable clone directories.
type Workspace struct {
	Root string `yaml:"root"` // default os.TempDir()
}

// EventsDB configures the optional Postgres force-push event store.
type EventsDB struct {
	DSN string `yaml:"dsn"`
}

// Notifier configures the external first-finding notification process.
type Notifier struct {
	Command string        `yaml:"command"`
	TempTTL time.Duration `yaml:"temp_ttl"` // lifetime of the single-finding temp file, default 5m
}

// Upload configures the S3 results upload.
type Upload struct {
	S3Bucket string `yaml:"s3_bucket"`
	S3Region string `yaml:"s3_region"`
}

// Results configures where findings files are written.
type Results struct {
	Dir string `yaml:"dir"`
}

// ValidateConfigPath checks that the given path points at a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// NewConfig loads the configuration file. A missing file is not an error:
// every section has a usable default, so the tool runs unconfigured.
func NewConfig(configPath string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, err
	}

	return config, nil
}
