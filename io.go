package duplexer

import (
	"context"
	"io"

	"github.com/itohio/duplexer/errors"
	"github.com/itohio/duplexer/loop"
	"github.com/itohio/duplexer/stream"
)

type closeWriter interface {
	CloseWrite() error
}

// Open bridges the two directions of rw: a Sink writing to rw and a Source
// reading from it, both owned by l. Ending the writable half half-closes rw
// when it supports CloseWrite; Conn.Close closes rw if it is an io.Closer.
// Read returns errors of either direction even with error bubbling disabled.
func Open(ctx context.Context, l *loop.Loop, rw io.ReadWriter, opts ...Option) (*Conn, error) {
	if l == nil || rw == nil {
		return nil, errors.ErrBadArgument
	}
	opt := defaultOptions()
	if err := opt.Config(opts...); err != nil {
		return nil, err
	}
	sopts := opt.streamOptions()

	var w io.Writer = rw
	if _, ok := rw.(closeWriter); !ok {
		// hide Close so that finishing the sink does not stop reads
		w = struct{ io.Writer }{rw}
	}
	closer, _ := rw.(io.Closer)

	var (
		c   *Conn
		err error
	)
	doErr := l.Do(ctx, func() {
		var (
			sink   *stream.Writable
			source *stream.Readable
			b      *Bridge
		)
		sink, err = stream.ToWriter(l, w, sopts...)
		if err != nil {
			return
		}
		source, err = stream.FromReader(l, rw, sopts...)
		if err != nil {
			return
		}
		b, err = New(sink, source, opts...)
		if err != nil {
			return
		}
		c = newConn(ctx, l, b, closer)
		c.wire()
		if !opt.bubbling {
			sink.OnError(c.setErr)
			source.OnError(c.setErr)
		}
	})
	if doErr != nil {
		return nil, doErr
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
