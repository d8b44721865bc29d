package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/oactree/internal/models"
)

// Config is the daemon configuration. Defaults are overridden by config
// files (later files win), then environment variables, then CLI flags.
type Config struct {
	Logging   LoggingConfig    `toml:"logging"`
	Runner    RunnerConfig     `toml:"runner"`
	Schedules []ScheduleConfig `toml:"schedules"`
}

// LoggingConfig controls the arbor logger setup.
type LoggingConfig struct {
	Level      string   `toml:"level" validate:"omitempty,oneof=trace debug info warn error fatal"`
	Output     []string `toml:"output" validate:"dive,oneof=stdout console file"`
	Directory  string   `toml:"directory"`
	TimeFormat string   `toml:"time_format"`
}

// RunnerConfig controls engine behaviour for jobs run by the daemon.
type RunnerConfig struct {
	// Severity is the maximum engine log severity forwarded to the logger
	Severity string `toml:"severity"`
}

// ScheduleConfig runs a procedure file on a cron spec.
type ScheduleConfig struct {
	Name     string `toml:"name" validate:"required"`
	File     string `toml:"file" validate:"required"`
	Schedule string `toml:"schedule" validate:"required"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Runner: RunnerConfig{
			Severity: models.SeverityWarning.String(),
		},
	}
}

// LoadFromFiles merges defaults, the given config files in order and
// environment overrides, then validates the result.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("cannot parse config file %q: %w", path, err)
		}
	}
	applyEnvOverrides(config)
	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides maps OACTREE_* environment variables onto the config
func applyEnvOverrides(config *Config) {
	if level := os.Getenv("OACTREE_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}
	if output := os.Getenv("OACTREE_LOG_OUTPUT"); output != "" {
		config.Logging.Output = strings.Split(output, ",")
	}
	if severity := os.Getenv("OACTREE_SEVERITY"); severity != "" {
		config.Runner.Severity = strings.ToUpper(severity)
	}
}

// Validate checks the configuration struct constraints
func Validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if config.Runner.Severity != "" {
		if _, ok := models.SeverityFromString(config.Runner.Severity); !ok {
			return fmt.Errorf("invalid configuration: unknown severity %q", config.Runner.Severity)
		}
	}
	return nil
}
