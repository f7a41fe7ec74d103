// Package stream implements event driven readable and writable streams with
// backpressure, modelled on the two halves of a pipe.
//
// Streams hold no locks: each stream and everything wired to it must be used
// from a single goroutine, normally a loop.Loop. Events are emitted
// synchronously; listeners may call back into the stream that emitted them.
//
// A stream that emits an error while it has no error listener passes the error
// to its unhandled-error function (see WithUnhandledError), which logs it by
// default. Owners that do not forward a stream's errors elsewhere must
// register OnError themselves.
package stream

// Duplex is a Readable and a Writable sharing one error event.
type Duplex struct {
	*Readable
	*Writable
	errs *errorEvent
}

// NewDuplex creates a duplex whose readable half calls read on demand and
// whose writable half hands chunks to write.
func NewDuplex(read func(), write WriteFunc, opts ...Option) (*Duplex, error) {
	o := defaultOptions()
	if err := o.Config(opts...); err != nil {
		return nil, err
	}
	return newDuplex(read, write, o), nil
}

func newDuplex(read func(), write WriteFunc, o Options) *Duplex {
	errs := newErrorEvent(o)
	return &Duplex{
		Readable: newReadable(read, o, errs),
		Writable: newWritable(write, o, errs),
		errs:     errs,
	}
}

func (d *Duplex) OnError(fn func(error)) {
	d.errs.on(fn)
}

// EmitError delivers err to the error listeners.
func (d *Duplex) EmitError(err error) {
	d.errs.emit(err)
}

// NewPassThrough returns a duplex whose writes are pushed unchanged to its
// readable half. Ending the writable half ends the readable half. A write is
// completed only while the readable buffer is below the high-water mark, so a
// slow reader holds back the writer.
func NewPassThrough(opts ...Option) (*Duplex, error) {
	o := defaultOptions()
	if err := o.Config(opts...); err != nil {
		return nil, err
	}

	var (
		d       *Duplex
		pending func(error)
	)
	read := func() {
		if pending != nil {
			done := pending
			pending = nil
			done(nil)
		}
	}
	write := func(data []byte, _ string, done func(error)) {
		if d.Push(data) {
			done(nil)
			return
		}
		pending = done
	}

	d = newDuplex(read, write, o)
	d.OnFinish(d.PushEOF)
	return d, nil
}
