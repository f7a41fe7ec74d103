package duplexer

import (
	"log/slog"

	"github.com/itohio/duplexer/errors"
	"github.com/itohio/duplexer/stream"
)

type Option func(*Options) error

type Options struct {
	logger        *slog.Logger
	bubbling      bool
	highWaterMark int
	framed        bool
	unhandled     func(error)
}

func defaultOptions() Options {
	return Options{
		logger:        slog.Default(),
		bubbling:      true,
		highWaterMark: stream.DefaultHighWaterMark,
	}
}

func (o *Options) Config(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

func (o *Options) streamOptions() []stream.Option {
	opts := []stream.Option{
		stream.WithLogger(o.logger),
		stream.WithHighWaterMark(o.highWaterMark),
	}
	if o.unhandled != nil {
		opts = append(opts, stream.WithUnhandledError(o.unhandled))
	}
	if o.framed {
		opts = append(opts, stream.WithFraming())
	}
	return opts
}

// WithConfig applies a loosely typed configuration. Fields left at their zero
// value keep the current setting.
func WithConfig(cfg Config) Option {
	return func(o *Options) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.ErrorBubbling != nil {
			o.bubbling, _ = cfg.errorBubbling()
		}
		if cfg.HighWaterMark > 0 {
			o.highWaterMark = cfg.HighWaterMark
		}
		if cfg.Framed {
			o.framed = true
		}
		return nil
	}
}

// WithErrorBubbling controls whether Sink and Source errors are re-emitted by the bridge.
// Callers disabling it must register OnError on Sink and Source themselves.
func WithErrorBubbling(enabled bool) Option {
	return func(o *Options) error {
		o.bubbling = enabled
		return nil
	}
}

// WithHighWaterMark sets the buffer threshold of both halves of the bridge in bytes.
func WithHighWaterMark(size int) Option {
	return func(o *Options) error {
		if size < 0 {
			return errors.ErrBadArgument
		}
		o.highWaterMark = size
		return nil
	}
}

// WithLogger option configures Logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) error {
		if l == nil {
			return errors.ErrBadArgument
		}
		o.logger = l
		return nil
	}
}

// WithUnhandledError sets the function receiving errors that the bridge emits
// while nobody listens for them.
func WithUnhandledError(f func(error)) Option {
	return func(o *Options) error {
		if f == nil {
			return errors.ErrBadArgument
		}
		o.unhandled = f
		return nil
	}
}

// WithFraming makes Open exchange codec frames with the byte stream.
func WithFraming() Option {
	return func(o *Options) error {
		o.framed = true
		return nil
	}
}
