// pkg/device/options.go
package device

import (
	"time"

	"go.uber.org/zap"

	"remote-client/internal/config"
	"remote-client/internal/link"
)

// options collects the per-session settings. Defaults come from the
// built-in configuration; there is no process-wide mutable state.
type options struct {
	serial     link.Config
	resetDelay time.Duration
	logger     *zap.Logger
}

// Option overrides one session setting.
type Option func(*options)

func defaultOptions() *options {
	cfg := config.Default()
	return newOptions(cfg)
}

func newOptions(cfg *config.Config) *options {
	return &options{
		serial: link.Config{
			BaudRate:     cfg.Serial.BaudRate,
			ReadTimeout:  cfg.Serial.ReadTimeout,
			WriteSpacing: cfg.Serial.WriteSpacing,
		},
		resetDelay: cfg.Serial.ResetDelay,
		logger:     zap.NewNop(),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithConfig seeds all settings from a loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		logger := o.logger
		*o = *newOptions(cfg)
		o.logger = logger
	}
}

// WithBaudRate sets the link baud rate.
func WithBaudRate(rate int) Option {
	return func(o *options) { o.serial.BaudRate = rate }
}

// WithReadTimeout sets how long a request waits for a response line.
func WithReadTimeout(timeout time.Duration) Option {
	return func(o *options) { o.serial.ReadTimeout = timeout }
}

// WithWriteSpacing sets the minimum spacing between consecutive writes.
func WithWriteSpacing(spacing time.Duration) Option {
	return func(o *options) { o.serial.WriteSpacing = spacing }
}

// WithResetDelay sets how long to wait after opening the port before the
// handshake, for boards that reboot when the port opens.
func WithResetDelay(delay time.Duration) Option {
	return func(o *options) { o.resetDelay = delay }
}

// WithLogger attaches a logger to the session and its link.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
