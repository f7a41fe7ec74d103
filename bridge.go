package duplexer

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/itohio/duplexer/errors"
	"github.com/itohio/duplexer/stream"
)

// Bridge is a duplex stream over a Sink and a Source.
//
// Writes are forwarded to the Sink one at a time with the caller's callback.
// Ending the bridge ends the Sink and a finishing Sink ends the bridge. The
// Source is drained on demand and its end ends the readable half. With error
// bubbling enabled, errors of Sink and Source are emitted by the bridge as is.
type Bridge struct {
	id       string
	log      *slog.Logger
	duplex   *stream.Duplex
	sink     Sink
	source   PullSource
	mode     SourceMode
	bubbling bool
	waiting  bool
}

// New bridges sink and source with the default configuration.
func New(sink Sink, source Producer, opts ...Option) (*Bridge, error) {
	return NewWithConfig(Config{}, sink, source, opts...)
}

// NewWithConfig bridges sink and source. source must be a PullSource or a
// PushSource; a PushSource is wrapped. Nothing is registered on sink or
// source unless construction succeeds.
func NewWithConfig(cfg Config, sink Sink, source Producer, opts ...Option) (*Bridge, error) {
	if sink == nil || source == nil {
		return nil, errors.ErrBadArgument
	}
	opt := defaultOptions()
	if err := opt.Config(append([]Option{WithConfig(cfg)}, opts...)...); err != nil {
		return nil, err
	}

	pull, isPull := source.(PullSource)
	push, isPush := source.(PushSource)
	if !isPull && !isPush {
		return nil, errors.ErrUnsupportedSource
	}

	b := &Bridge{
		id:       uuid.NewString(),
		sink:     sink,
		bubbling: opt.bubbling,
	}
	b.log = opt.logger.With("module", "bridge", "id", b.id)

	sopts := opt.streamOptions()
	duplex, err := stream.NewDuplex(b.pull, b.write, append(sopts, stream.WithWriteErrorEvents(false))...)
	if err != nil {
		return nil, err
	}
	b.duplex = duplex

	if isPull {
		b.source, b.mode = pull, NativePull
	} else {
		r, err := stream.Wrap(push, sopts...)
		if err != nil {
			return nil, err
		}
		b.source, b.mode = r, PushOnly
	}

	sink.OnFinish(b.onSinkFinish)
	b.duplex.OnFinish(b.onFinish)
	b.source.OnReadable(b.onReadable)
	b.source.OnEnd(b.onSourceEnd)
	if b.bubbling {
		sink.OnError(b.duplex.EmitError)
		b.source.OnError(b.duplex.EmitError)
	}

	b.log.Debug("bridge created", "mode", b.mode, "bubbling", b.bubbling)
	return b, nil
}

func (b *Bridge) ID() string {
	return b.id
}

// Mode reports whether the source is read natively or through the legacy adapter.
func (b *Bridge) Mode() SourceMode {
	return b.mode
}

func (b *Bridge) Write(data []byte, encoding string, done func(error)) bool {
	return b.duplex.Write(data, encoding, done)
}

func (b *Bridge) End() {
	b.duplex.End()
}

func (b *Bridge) Read() ([]byte, bool) {
	return b.duplex.Read()
}

func (b *Bridge) Pause() {
	b.duplex.Pause()
}

func (b *Bridge) Resume() {
	b.duplex.Resume()
}

func (b *Bridge) IsPaused() bool {
	return b.duplex.IsPaused()
}

func (b *Bridge) OnData(fn func([]byte)) {
	b.duplex.OnData(fn)
}

func (b *Bridge) OnReadable(fn func()) {
	b.duplex.OnReadable(fn)
}

func (b *Bridge) OnEnd(fn func()) {
	b.duplex.OnEnd(fn)
}

func (b *Bridge) OnFinish(fn func()) {
	b.duplex.OnFinish(fn)
}

func (b *Bridge) OnDrain(fn func()) {
	b.duplex.OnDrain(fn)
}

func (b *Bridge) OnError(fn func(error)) {
	b.duplex.OnError(fn)
}

// Finished reports whether the writable half has finished.
func (b *Bridge) Finished() bool {
	return b.duplex.Finished()
}

// Ended reports whether the readable half has ended.
func (b *Bridge) Ended() bool {
	return b.duplex.Ended()
}

func (b *Bridge) write(data []byte, encoding string, done func(error)) {
	b.sink.Write(data, encoding, done)
}

// pull moves everything the source has buffered to the readable half. If the
// source had nothing, the next readable notification of the source pulls again.
func (b *Bridge) pull() {
	reads := 0
	for {
		data, ok := b.source.Read()
		if !ok {
			break
		}
		b.duplex.Push(data)
		reads++
	}
	if reads == 0 {
		b.waiting = true
	}
}

func (b *Bridge) onReadable() {
	if !b.waiting {
		return
	}
	b.waiting = false
	b.pull()
}

func (b *Bridge) onSourceEnd() {
	b.log.Debug("source ended")
	b.duplex.PushEOF()
}

func (b *Bridge) onSinkFinish() {
	b.log.Debug("sink finished")
	b.duplex.End()
}

func (b *Bridge) onFinish() {
	b.log.Debug("bridge finished")
	b.sink.End()
}
