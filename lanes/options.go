package lanes

import (
	"github.com/joeycumines/logiface"
)

// deviceOptions holds configuration options for Device creation.
type deviceOptions struct {
	logger   *logiface.Logger[logiface.Event]
	affinity bool
}

// Option configures a Device.
type Option interface {
	applyDevice(*deviceOptions) error
}

type optionImpl struct {
	applyDeviceFunc func(*deviceOptions) error
}

func (o *optionImpl) applyDevice(opts *deviceOptions) error {
	return o.applyDeviceFunc(opts)
}

// WithAffinity pins the lanes of each group to one CPU, where supported.
func WithAffinity(enabled bool) Option {
	return &optionImpl{func(opts *deviceOptions) error {
		opts.affinity = enabled
		return nil
	}}
}

// WithLogger attaches a structured logger, also passed to engines built with
// Device.EngineOptions.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *deviceOptions) error {
		opts.logger = logger
		return nil
	}}
}

func resolveOptions(opts []Option) (*deviceOptions, error) {
	cfg := &deviceOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyDevice(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
