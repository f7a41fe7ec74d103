package stream

import "github.com/itohio/duplexer/errors"

// PushSource is a legacy producer that only announces data through
// notifications and cannot be asked for the next chunk.
type PushSource interface {
	OnData(func([]byte))
	OnEnd(func())
	OnError(func(error))
}

// Pauser is implemented by push sources that can hold back notifications.
type Pauser interface {
	Pause()
	Resume()
}

// Wrap adapts a push-only source to a Readable. Chunks are buffered as they
// are announced; if src implements Pauser it is paused while the buffer is at
// the high-water mark and resumed on the next demand. Errors of src are
// re-emitted by the returned Readable.
func Wrap(src PushSource, opts ...Option) (*Readable, error) {
	if src == nil {
		return nil, errors.ErrBadArgument
	}
	o := defaultOptions()
	if err := o.Config(opts...); err != nil {
		return nil, err
	}

	pauser, canPause := src.(Pauser)
	paused := false

	r := newReadable(func() {
		if paused {
			paused = false
			pauser.Resume()
		}
	}, o, newErrorEvent(o))

	src.OnData(func(data []byte) {
		if !r.Push(data) && canPause && !paused {
			paused = true
			pauser.Pause()
		}
	})
	src.OnEnd(r.PushEOF)
	src.OnError(r.EmitError)
	return r, nil
}
