package duplexer

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/itohio/duplexer/errors"
	"github.com/itohio/duplexer/loop"
)

var _ io.ReadWriteCloser = (*Conn)(nil)

// Conn adapts a Bridge owned by a loop to blocking io calls. Reads fetch one
// chunk from the bridge at a time, so an idle reader leaves backpressure to
// the bridge. Conn registers OnError on the bridge; the first error is
// returned by Read unless the readable half has already ended.
type Conn struct {
	ctx    context.Context
	l      *loop.Loop
	b      *Bridge
	closer io.Closer

	// owned by the loop
	wanting bool

	mu     sync.Mutex
	buf    []byte
	eof    bool
	closed bool
	err    error
	notify chan struct{}

	finished chan struct{}
	once     sync.Once
}

// NewConn registers on b from within l. b must be owned by l.
func NewConn(ctx context.Context, l *loop.Loop, b *Bridge) (*Conn, error) {
	if l == nil || b == nil {
		return nil, errors.ErrBadArgument
	}
	c := newConn(ctx, l, b, nil)
	if err := l.Do(ctx, c.wire); err != nil {
		return nil, err
	}
	return c, nil
}

func newConn(ctx context.Context, l *loop.Loop, b *Bridge, closer io.Closer) *Conn {
	return &Conn{
		ctx:      ctx,
		l:        l,
		b:        b,
		closer:   closer,
		notify:   make(chan struct{}, 1),
		finished: make(chan struct{}),
	}
}

func (c *Conn) wire() {
	c.b.OnError(c.onError)
	c.b.OnEnd(c.onEnd)
	c.b.OnFinish(func() { close(c.finished) })
	c.b.OnReadable(c.onReadable)
}

// Bridge returns the underlying bridge. It may only be used from the loop.
func (c *Conn) Bridge() *Bridge {
	return c.b
}

func (c *Conn) Read(p []byte) (int, error) {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return 0, errors.ErrClosed
		}
		if len(c.buf) > 0 {
			n := copy(p, c.buf)
			c.buf = c.buf[n:]
			c.mu.Unlock()
			return n, nil
		}
		if c.eof {
			c.mu.Unlock()
			return 0, io.EOF
		}
		if c.err != nil {
			err := c.err
			c.mu.Unlock()
			return 0, err
		}
		c.mu.Unlock()

		if !c.l.Post(c.fetch) {
			return 0, errors.ErrClosed
		}
		select {
		case <-c.ctx.Done():
			return 0, c.ctx.Err()
		case <-c.l.Done():
			return 0, errors.ErrClosed
		case <-c.notify:
		}
	}
}

// Write blocks until the sink has accepted p.
func (c *Conn) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	data := bytes.Clone(p)
	result := make(chan error, 1)
	if !c.l.Post(func() {
		c.b.Write(data, "", func(err error) { result <- err })
	}) {
		return 0, errors.ErrClosed
	}

	select {
	case <-c.ctx.Done():
		return 0, c.ctx.Err()
	case <-c.l.Done():
		return 0, errors.ErrClosed
	case err := <-result:
		if err != nil {
			return 0, err
		}
		return len(p), nil
	}
}

// CloseWrite ends the writable half of the bridge and waits until it finished.
func (c *Conn) CloseWrite() error {
	if !c.l.Post(c.b.End) {
		return errors.ErrClosed
	}
	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	case <-c.l.Done():
		return errors.ErrClosed
	case <-c.finished:
		return nil
	}
}

// Close ends the bridge without waiting and closes the underlying byte stream
// if the Conn was created by Open. Pending and later reads fail with ErrClosed.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.signal()

		c.l.Post(c.b.End)
		if c.closer != nil {
			err = c.closer.Close()
		}
	})
	return err
}

func (c *Conn) fetch() {
	c.mu.Lock()
	busy := len(c.buf) > 0 || c.err != nil || c.eof || c.closed
	c.mu.Unlock()
	if busy {
		c.signal()
		return
	}

	data, ok := c.b.Read()
	if !ok {
		c.wanting = true
		return
	}
	c.mu.Lock()
	c.buf = data
	c.mu.Unlock()
	c.signal()
}

func (c *Conn) onReadable() {
	if !c.wanting {
		return
	}
	c.wanting = false
	c.fetch()
}

func (c *Conn) onEnd() {
	c.mu.Lock()
	c.eof = true
	c.mu.Unlock()
	c.signal()
}

func (c *Conn) onError(err error) {
	c.setErr(err)
}

func (c *Conn) setErr(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
	c.signal()
}

func (c *Conn) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}
