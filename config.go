package shared

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the ambient settings, plus an optional list of
// managed threads to create. Durations use Go syntax ("250ms", "5s").
//
//	lock_timeout: 5s
//	debug: 1
//	stop_timeout: 2s
//	threads:
//	  - namespace: demo
//	    name: counter
//	    worker: counter
//	    options:
//	      scalar: 0
type Config struct {
	LockTimeout time.Duration  `yaml:"lock_timeout"`
	Debug       int            `yaml:"debug"`
	StopTimeout time.Duration  `yaml:"stop_timeout"`
	JoinTimeout time.Duration  `yaml:"join_timeout"`
	Threads     []ThreadConfig `yaml:"threads"`
}

// ThreadConfig declares one managed thread. Options use the constructor
// option names (scalar, array, hash, io, auto_detach, debug, trace); Worker
// names a worker body registered by the embedding program.
type ThreadConfig struct {
	Namespace string         `yaml:"namespace"`
	Name      string         `yaml:"name"`
	Worker    string         `yaml:"worker"`
	Args      []any          `yaml:"args"`
	Options   map[string]any `yaml:"options"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		LockTimeout: DefaultLockTimeout,
		StopTimeout: 5 * time.Second,
		JoinTimeout: 30 * time.Second,
	}
}

// LoadConfig reads and parses a YAML config file. Unknown fields are
// rejected, so typos surface as errors rather than silently ignored keys.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML config data over [DefaultConfig].
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Kind: KindValidation, Op: "config", Message: "failed to parse YAML", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and thread identities.
func (c *Config) Validate() error {
	if c.Debug < DebugOff || c.Debug > DebugTrace {
		return &Error{Kind: KindValidation, Op: "config", Message: fmt.Sprintf("debug must be between %d and %d, got %d", DebugOff, DebugTrace, c.Debug)}
	}
	if c.LockTimeout < 0 || c.StopTimeout < 0 || c.JoinTimeout < 0 {
		return &Error{Kind: KindValidation, Op: "config", Message: "timeouts must be non-negative"}
	}
	seen := make(map[[2]string]bool, len(c.Threads))
	for i, tc := range c.Threads {
		if tc.Namespace == "" || tc.Name == "" {
			return &Error{Kind: KindValidation, Op: "config", Message: fmt.Sprintf("threads[%d]: namespace and name are required", i)}
		}
		key := [2]string{tc.Namespace, tc.Name}
		if seen[key] {
			return &Error{Kind: KindValidation, Op: "config", Message: fmt.Sprintf("threads[%d]: duplicate thread %s::%s", i, tc.Namespace, tc.Name)}
		}
		seen[key] = true
	}
	return nil
}

// Options converts the ambient settings to object options.
func (c *Config) Options() []Option {
	return []Option{
		WithLockTimeout(c.LockTimeout),
		WithDebug(c.Debug),
	}
}
