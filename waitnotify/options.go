package waitnotify

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/logiface"
)

// engineOptions holds configuration options for Engine creation.
type engineOptions struct {
	platform       Platform
	logger         *logiface.Logger[logiface.Event]
	name           string
	backoff        Backoff
	slowWait       time.Duration
	scope          syncscope.Scope
	metricsEnabled bool
}

// Option configures an Engine instance. Primitives built on the engine
// accept the same options.
type Option interface {
	applyEngine(*engineOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyEngineFunc func(*engineOptions) error
}

func (o *optionImpl) applyEngine(opts *engineOptions) error {
	return o.applyEngineFunc(opts)
}

// WithScope sets the scope the engine must reach. Defaults to
// [syncscope.ScopeSystem].
func WithScope(scope syncscope.Scope) Option {
	return &optionImpl{func(opts *engineOptions) error {
		if !scope.Valid() {
			return fmt.Errorf(`waitnotify: scope %d: %w`, uint8(scope), syncscope.ErrInvalidScope)
		}
		opts.scope = scope
		return nil
	}}
}

// WithPlatform sets the execution platform of the callers of the engine.
// Defaults to [HostPlatform].
func WithPlatform(platform Platform) Option {
	return &optionImpl{func(opts *engineOptions) error {
		if platform == nil {
			return fmt.Errorf(`waitnotify: nil platform: %w`, syncscope.ErrInvalidOption)
		}
		opts.platform = platform
		return nil
	}}
}

// WithBackoff sets the escalation ladder used by waits. Defaults to
// [DefaultBackoff].
func WithBackoff(backoff Backoff) Option {
	return &optionImpl{func(opts *engineOptions) error {
		if err := backoff.validate(); err != nil {
			return err
		}
		opts.backoff = backoff
		return nil
	}}
}

// WithLogger attaches a structured logger. Contract violations are logged
// at the critical level before panicking, and waits that park for longer
// than the slow wait threshold are logged as warnings, rate limited.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *engineOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithMetrics enables metrics collection, accessible via Engine.Metrics.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *engineOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// WithSlowWaitThreshold sets the park duration above which a wait is
// logged. Zero (the default) disables slow wait logging.
func WithSlowWaitThreshold(threshold time.Duration) Option {
	return &optionImpl{func(opts *engineOptions) error {
		if threshold < 0 {
			return fmt.Errorf(`waitnotify: negative slow wait threshold %s: %w`, threshold, syncscope.ErrInvalidOption)
		}
		opts.slowWait = threshold
		return nil
	}}
}

// WithName sets a name, included in log events.
func WithName(name string) Option {
	return &optionImpl{func(opts *engineOptions) error {
		opts.name = name
		return nil
	}}
}

// resolveOptions applies Option instances to engineOptions.
func resolveOptions(opts []Option) (*engineOptions, error) {
	cfg := &engineOptions{
		platform: HostPlatform{},
		backoff:  DefaultBackoff(),
		scope:    syncscope.ScopeSystem,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyEngine(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
