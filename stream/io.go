package stream

import (
	"fmt"
	"io"
	"net"

	"github.com/itohio/duplexer/codec"
	"github.com/itohio/duplexer/errors"
	"github.com/itohio/duplexer/loop"
	pool "github.com/libp2p/go-buffer-pool"
)

// maxEmptyReads bounds consecutive (0, nil) reads of an unframed reader, as in bufio.
const maxEmptyReads = 100

var (
	buffers pool.BufferPool
)

// FromReader returns a Readable fed from rd. A goroutine performs one read
// per demand and hands the result to l, so nothing is read ahead of the
// consumer. Empty reads are retried without renewing demand. io.EOF ends the
// stream; any other error is emitted and ends the goroutine. The goroutine
// also exits when l stops.
func FromReader(l *loop.Loop, rd io.Reader, opts ...Option) (*Readable, error) {
	if l == nil || rd == nil {
		return nil, errors.ErrBadArgument
	}
	o := defaultOptions()
	if err := o.Config(opts...); err != nil {
		return nil, err
	}
	log := o.logger.With("module", "reader")

	demand := make(chan struct{}, 1)
	r := newReadable(func() {
		select {
		case demand <- struct{}{}:
		default:
		}
	}, o, newErrorEvent(o))

	go func() {
		ctx := l.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case <-demand:
			}

			data, err := readChunk(rd, o)
			for empty := 1; err == nil && len(data) == 0; empty++ {
				if !o.framing && empty >= maxEmptyReads {
					err = io.ErrNoProgress
					break
				}
				data, err = readChunk(rd, o)
			}
			if len(data) > 0 {
				l.Post(func() { r.Push(data) })
			}
			if err == nil {
				continue
			}

			if errors.Is(err, io.EOF) {
				log.Debug("reader ended")
				l.Post(r.PushEOF)
				return
			}
			if isExpectedClose(err) {
				log.Debug("reader closed", "err", err)
			} else {
				log.Error("read", "err", err)
			}
			err = fmt.Errorf("read: %w", err)
			l.Post(func() { r.EmitError(err) })
			return
		}
	}()

	return r, nil
}

func readChunk(rd io.Reader, o Options) ([]byte, error) {
	if o.framing {
		payload, err := codec.ReadChunk(rd)
		if err != nil {
			return nil, err
		}
		defer codec.Release(payload)
		return codec.DecodeChunk(payload)
	}

	buf := buffers.Get(o.bufferSize)
	defer buffers.Put(buf)
	n, err := rd.Read(buf)
	if n == 0 {
		return nil, err
	}
	data := make([]byte, n)
	copy(data, buf[:n])
	return data, err
}

type closeWriter interface {
	CloseWrite() error
}

// ToWriter returns a Writable whose chunks are written to wr by a goroutine,
// one at a time, completing each write on l. When the Writable finishes, wr
// is half-closed with CloseWrite if it has one, otherwise closed if it is an
// io.Closer.
func ToWriter(l *loop.Loop, wr io.Writer, opts ...Option) (*Writable, error) {
	if l == nil || wr == nil {
		return nil, errors.ErrBadArgument
	}
	o := defaultOptions()
	if err := o.Config(opts...); err != nil {
		return nil, err
	}
	log := o.logger.With("module", "writer")

	type job struct {
		data []byte
		done func(error)
	}
	jobs := make(chan job, 1)

	w := newWritable(func(data []byte, _ string, done func(error)) {
		jobs <- job{data: data, done: done}
	}, o, newErrorEvent(o))
	w.OnFinish(func() { close(jobs) })

	go func() {
		ctx := l.Context()
		for {
			var (
				j  job
				ok bool
			)
			select {
			case <-ctx.Done():
				return
			case j, ok = <-jobs:
			}
			if !ok {
				break
			}

			err := writeChunk(wr, j.data, o)
			if err != nil {
				if isExpectedClose(err) {
					log.Debug("writer closed", "err", err)
				} else {
					log.Error("write", "err", err)
				}
				err = fmt.Errorf("write: %w", err)
			}
			done := j.done
			l.Post(func() { done(err) })
		}

		var err error
		switch c := wr.(type) {
		case closeWriter:
			err = c.CloseWrite()
		case io.Closer:
			err = c.Close()
		}
		if err != nil && !isExpectedClose(err) {
			log.Error("close", "err", err)
			err = fmt.Errorf("close: %w", err)
			l.Post(func() { w.EmitError(err) })
		}
	}()

	return w, nil
}

func writeChunk(wr io.Writer, data []byte, o Options) error {
	if o.framing {
		return codec.WriteChunk(wr, data)
	}
	n, err := wr.Write(data)
	if err == nil && n != len(data) {
		err = errors.ErrNotEnoughBytes
	}
	return err
}

func isExpectedClose(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
