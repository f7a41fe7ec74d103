package stream

import (
	"github.com/itohio/duplexer/errors"
)

// WriteFunc performs one write and calls done exactly once when the chunk has
// been accepted or has failed. done may be called synchronously.
type WriteFunc func(data []byte, encoding string, done func(error))

type pendingWrite struct {
	data     []byte
	encoding string
	done     func(error)
}

// Writable is the producer side of a stream. Writes are handed to the write
// function one at a time, in order; later writes are queued until the
// previous one completes. Finish fires once after End, when every queued
// write has completed.
type Writable struct {
	write       WriteFunc
	hwm         int
	writeErrors bool

	queue     []pendingWrite
	length    int
	writing   bool
	flushing  bool
	needDrain bool
	ending    bool
	finished  bool

	finish event[struct{}]
	drain  event[struct{}]
	errs   *errorEvent
}

func NewWritable(write WriteFunc, opts ...Option) (*Writable, error) {
	if write == nil {
		return nil, errors.ErrBadArgument
	}
	o := defaultOptions()
	if err := o.Config(opts...); err != nil {
		return nil, err
	}
	return newWritable(write, o, newErrorEvent(o)), nil
}

func newWritable(write WriteFunc, o Options, errs *errorEvent) *Writable {
	return &Writable{
		write:       write,
		hwm:         o.highWaterMark,
		writeErrors: o.writeErrors,
		errs:        errs,
	}
}

// Write queues data for the write function. done, if not nil, is called with
// the write result. It returns false once the queued length reached the
// high-water mark; OnDrain listeners are notified when the queue empties.
func (w *Writable) Write(data []byte, encoding string, done func(error)) bool {
	if w.ending {
		err := errors.ErrWriteAfterEnd
		w.errs.emit(err)
		if done != nil {
			done(err)
		}
		return false
	}

	w.length += len(data)
	ok := w.length < w.hwm
	if !ok {
		w.needDrain = true
	}
	w.queue = append(w.queue, pendingWrite{data: data, encoding: encoding, done: done})
	w.flush()
	return ok
}

// End stops accepting writes. Finish follows once queued writes complete.
// Calling End again has no effect.
func (w *Writable) End() {
	if w.ending {
		return
	}
	w.ending = true
	w.maybeFinish()
}

func (w *Writable) OnFinish(fn func()) {
	w.finish.once(notify(fn))
}

func (w *Writable) OnDrain(fn func()) {
	w.drain.on(notify(fn))
}

func (w *Writable) OnError(fn func(error)) {
	w.errs.on(fn)
}

// EmitError delivers err to the error listeners.
func (w *Writable) EmitError(err error) {
	w.errs.emit(err)
}

// Finished reports whether the finish event has fired.
func (w *Writable) Finished() bool {
	return w.finished
}

// Len returns the number of bytes queued or in flight.
func (w *Writable) Len() int {
	return w.length
}

func (w *Writable) flush() {
	if w.flushing {
		return
	}
	w.flushing = true
	for !w.writing && len(w.queue) > 0 {
		p := w.queue[0]
		w.queue[0] = pendingWrite{}
		w.queue = w.queue[1:]
		w.writing = true
		w.write(p.data, p.encoding, w.completion(p))
	}
	w.flushing = false
}

func (w *Writable) completion(p pendingWrite) func(error) {
	called := false
	return func(err error) {
		if called {
			return
		}
		called = true
		w.writing = false
		w.length -= len(p.data)
		if err != nil && w.writeErrors {
			w.errs.emit(err)
		}
		if p.done != nil {
			p.done(err)
		}
		w.flush()
		w.afterWrite()
	}
}

func (w *Writable) afterWrite() {
	if w.writing || len(w.queue) > 0 {
		return
	}
	if w.needDrain {
		w.needDrain = false
		w.drain.emit(struct{}{})
	}
	w.maybeFinish()
}

func (w *Writable) maybeFinish() {
	if !w.ending || w.finished || w.writing || len(w.queue) > 0 {
		return
	}
	w.finished = true
	w.finish.emit(struct{}{})
}
