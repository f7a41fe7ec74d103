package network

import (
	"time"

	"github.com/itohio/duplexer/errors"
)

type DialOptions struct {
	timeout time.Duration
}

type DialOpt func(*DialOptions) error

func (o *DialOptions) Config(opts ...DialOpt) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// Timeout returns the dial timeout, zero meaning none.
func (o DialOptions) Timeout() time.Duration {
	return o.timeout
}

// WithTimeout bounds the time spent dialing.
func WithTimeout(d time.Duration) DialOpt {
	return func(o *DialOptions) error {
		if d < 0 {
			return errors.ErrBadArgument
		}
		o.timeout = d
		return nil
	}
}

type SrvOptions struct {
	listening func(addr string)
}

type SrvOpt func(*SrvOptions) error

func (o *SrvOptions) Config(opts ...SrvOpt) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// Listening reports the bound address to the function set by WithListening.
func (o SrvOptions) Listening(addr string) {
	if o.listening != nil {
		o.listening(addr)
	}
}

// WithListening registers a function receiving the address a server is bound
// to once it accepts connections. Useful with port 0.
func WithListening(f func(addr string)) SrvOpt {
	return func(o *SrvOptions) error {
		if f == nil {
			return errors.ErrBadArgument
		}
		o.listening = f
		return nil
	}
}
