package stream

import (
	"log/slog"

	"github.com/itohio/duplexer/errors"
)

// DefaultHighWaterMark is the number of buffered bytes above which Push and
// Write start reporting backpressure.
const DefaultHighWaterMark = 16 * 1024

// DefaultBufferSize is the size of a single read issued by FromReader.
const DefaultBufferSize = 4096

type Option func(*Options) error

type Options struct {
	logger        *slog.Logger
	highWaterMark int
	bufferSize    int
	framing       bool
	writeErrors   bool
	unhandled     func(error)
}

func defaultOptions() Options {
	return Options{
		logger:        slog.Default(),
		highWaterMark: DefaultHighWaterMark,
		bufferSize:    DefaultBufferSize,
		writeErrors:   true,
	}
}

func (o *Options) Config(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	if o.unhandled == nil {
		log := o.logger
		o.unhandled = func(err error) {
			log.Error("unhandled stream error", "err", err)
		}
	}
	return nil
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

// WithHighWaterMark sets the backpressure threshold in bytes.
func WithHighWaterMark(size int) Option {
	return func(o *Options) error {
		if size < 0 {
			return errors.ErrBadArgument
		}
		o.highWaterMark = size
		return nil
	}
}

// WithBufferSize sets the size of reads performed by FromReader.
func WithBufferSize(size int) Option {
	return func(o *Options) error {
		if size <= 0 {
			return errors.ErrBadArgument
		}
		o.bufferSize = size
		return nil
	}
}

// WithFraming makes FromReader and ToWriter exchange codec frames instead of
// raw bytes, so chunk boundaries are preserved end to end.
func WithFraming() Option {
	return func(o *Options) error {
		o.framing = true
		return nil
	}
}

// WithUnhandledError sets the function receiving errors emitted while the
// stream has no error listener. By default such errors are logged.
func WithUnhandledError(f func(error)) Option {
	return func(o *Options) error {
		if f == nil {
			return errors.ErrBadArgument
		}
		o.unhandled = f
		return nil
	}
}

// WithWriteErrorEvents controls whether a failed write is emitted as an error
// event in addition to being passed to its callback. Disable it when the write
// function's target reports its own errors.
func WithWriteErrorEvents(enabled bool) Option {
	return func(o *Options) error {
		o.writeErrors = enabled
		return nil
	}
}
