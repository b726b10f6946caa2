package stress

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/joeycumines/go-syncscope"
	"gopkg.in/yaml.v3"
)

// Primitives that may be stressed.
const (
	PrimitiveSemaphore = "semaphore"
	PrimitiveLatch     = "latch"
	PrimitiveBarrier   = "barrier"
)

// Platforms that workers may run on.
const (
	PlatformHost  = "host"
	PlatformFutex = "futex"
	PlatformLane  = "lane"
)

// ErrInvalidConfig is wrapped by every Config validation error.
var ErrInvalidConfig = errors.New(`stress: invalid config`)

// Config is a stress scenario, as loaded from YAML and overridden by flags.
type Config struct {
	Primitive  string `yaml:"primitive"`
	Platform   string `yaml:"platform"`
	Scope      string `yaml:"scope"`
	Workers    int    `yaml:"workers"`
	Iterations int    `yaml:"iterations"`
	// Permits is the semaphore maximum, and its initial count.
	Permits int64 `yaml:"permits"`
	// Groups is the number of lane groups, when Platform is "lane".
	// Workers must be a multiple of it.
	Groups  int  `yaml:"groups"`
	Metrics bool `yaml:"metrics"`
}

// DefaultConfig returns the baseline scenario.
func DefaultConfig() Config {
	return Config{
		Primitive:  PrimitiveSemaphore,
		Platform:   PlatformHost,
		Scope:      syncscope.ScopeSystem.String(),
		Workers:    8,
		Iterations: 1000,
		Permits:    2,
		Groups:     1,
	}
}

// LoadConfig decodes a YAML scenario onto cfg. Fields absent from the
// document keep their existing values, and unknown fields are rejected.
func LoadConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf(`stress: decode config: %w`, err)
	}
	return nil
}

// Validate reports every problem with the config.
func (c Config) Validate() error {
	var merr error
	if !slices.Contains([]string{PrimitiveSemaphore, PrimitiveLatch, PrimitiveBarrier}, c.Primitive) {
		merr = multierror.Append(merr, fmt.Errorf(`unknown primitive %q`, c.Primitive))
	}
	if !slices.Contains([]string{PlatformHost, PlatformFutex, PlatformLane}, c.Platform) {
		merr = multierror.Append(merr, fmt.Errorf(`unknown platform %q`, c.Platform))
	}
	if _, err := syncscope.ParseScope(c.Scope); err != nil {
		merr = multierror.Append(merr, err)
	}
	if c.Workers < 1 {
		merr = multierror.Append(merr, fmt.Errorf(`workers must be positive, got %d`, c.Workers))
	}
	if c.Iterations < 1 {
		merr = multierror.Append(merr, fmt.Errorf(`iterations must be positive, got %d`, c.Iterations))
	}
	if c.Primitive == PrimitiveSemaphore && c.Permits < 1 {
		merr = multierror.Append(merr, fmt.Errorf(`permits must be positive, got %d`, c.Permits))
	}
	if c.Platform == PlatformLane {
		if c.Groups < 1 {
			merr = multierror.Append(merr, fmt.Errorf(`groups must be positive, got %d`, c.Groups))
		} else if c.Workers%c.Groups != 0 {
			merr = multierror.Append(merr, fmt.Errorf(`workers (%d) must be a multiple of groups (%d)`, c.Workers, c.Groups))
		}
	}
	if merr != nil {
		return fmt.Errorf(`%w: %w`, ErrInvalidConfig, merr)
	}
	return nil
}
