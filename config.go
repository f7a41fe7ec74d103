package duplexer

import (
	"fmt"
	"io"
	"os"

	"github.com/itohio/duplexer/errors"
	"gopkg.in/yaml.v3"
)

// Config is the loosely typed bridge configuration, usually read from YAML.
//
//	errorBubbling: false
//	highWaterMark: 65536
//	framed: true
type Config struct {
	// ErrorBubbling must be a boolean when set. Unset means true.
	ErrorBubbling any  `yaml:"errorBubbling,omitempty"`
	HighWaterMark int  `yaml:"highWaterMark,omitempty"`
	Framed        bool `yaml:"framed,omitempty"`
}

// LoadConfig decodes and validates a YAML configuration. An empty document
// yields the zero Config.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate checks field types and ranges. A non boolean errorBubbling yields
// a *errors.TypeError.
func (c Config) Validate() error {
	if _, err := c.errorBubbling(); err != nil {
		return err
	}
	if c.HighWaterMark < 0 {
		return fmt.Errorf("%w: highWaterMark %d", errors.ErrBadArgument, c.HighWaterMark)
	}
	return nil
}

func (c Config) errorBubbling() (bool, error) {
	switch v := c.ErrorBubbling.(type) {
	case nil:
		return true, nil
	case bool:
		return v, nil
	default:
		return false, &errors.TypeError{Option: "errorBubbling", Value: v}
	}
}
