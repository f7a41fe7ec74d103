package stream

import (
	"github.com/itohio/duplexer/errors"
)

type flowState int8

const (
	flowUnset flowState = iota
	flowOn
	flowOff
)

// Readable is the consumer side of a stream. A producer feeds it with Push and
// PushEOF; the read function passed to NewReadable is called whenever the
// consumer wants more data than is buffered. Demand is issued once and
// renewed only after the next Push.
//
// A consumer either registers OnData (flowing mode: chunks are delivered as
// they arrive until Pause) or OnReadable and calls Read until it reports false.
// While a readable listener is registered, data listeners see the chunks
// returned by Read instead of starting to flow. OnEnd fires once, after
// PushEOF and after the consumer has taken every buffered chunk.
type Readable struct {
	read func()
	hwm  int

	buf    [][]byte
	length int
	flow   flowState

	ended            bool
	endEmitted       bool
	reading          bool
	inRead           bool
	draining         bool
	needReadable     bool
	emittingReadable bool

	data     event[[]byte]
	readable event[struct{}]
	end      event[struct{}]
	errs     *errorEvent
}

// NewReadable creates a Readable whose demand hook is read. A nil read means
// the producer pushes on its own schedule.
func NewReadable(read func(), opts ...Option) (*Readable, error) {
	o := defaultOptions()
	if err := o.Config(opts...); err != nil {
		return nil, err
	}
	return newReadable(read, o, newErrorEvent(o)), nil
}

func newReadable(read func(), o Options, errs *errorEvent) *Readable {
	if read == nil {
		read = func() {}
	}
	return &Readable{
		read: read,
		hwm:  o.highWaterMark,
		errs: errs,
	}
}

// Push appends a chunk for the consumer. Empty chunks only satisfy pending
// demand. It returns false once the buffer has reached the high-water mark.
func (r *Readable) Push(data []byte) bool {
	if r.ended {
		r.errs.emit(errors.ErrPushAfterEOF)
		return false
	}
	r.reading = false
	if len(data) > 0 {
		r.buf = append(r.buf, data)
		r.length += len(data)
	}
	if !r.inRead {
		r.deliver()
	}
	return r.length < r.hwm
}

// PushEOF marks the end of data. Subsequent calls are ignored.
func (r *Readable) PushEOF() {
	if r.ended {
		return
	}
	r.ended = true
	r.reading = false
	if r.inRead {
		return
	}
	if r.readable.len() > 0 {
		r.needReadable = true
	}
	r.deliver()
}

// Read returns the next buffered chunk, or false if none is buffered. In the
// latter case demand is issued and a readable event follows once data or the
// end arrives.
func (r *Readable) Read() ([]byte, bool) {
	if len(r.buf) == 0 {
		r.needReadable = true
		r.requestMore()
		if len(r.buf) == 0 {
			r.maybeEnd()
			return nil, false
		}
	}

	data := r.shift()
	if len(r.buf) == 0 {
		r.needReadable = true
	}
	if r.length < r.hwm {
		r.requestMore()
	}
	r.data.emit(data)
	return data, true
}

// Pause stops flowing mode. Buffered and future chunks wait for Resume or Read.
func (r *Readable) Pause() {
	r.flow = flowOff
}

// Resume switches to flowing mode and delivers buffered chunks.
func (r *Readable) Resume() {
	r.flow = flowOn
	r.flowLoop()
}

func (r *Readable) IsPaused() bool {
	return r.flow == flowOff
}

// OnData registers a chunk listener and switches to flowing mode unless the
// stream was paused explicitly or has a readable listener.
func (r *Readable) OnData(fn func([]byte)) {
	r.data.on(fn)
	if r.flow != flowOff && r.readable.len() == 0 {
		r.Resume()
	}
}

// OnReadable registers a listener for data becoming available to Read and
// issues demand. A flowing stream is paused; otherwise the flowing state is
// left as it is.
func (r *Readable) OnReadable(fn func()) {
	r.readable.on(notify(fn))
	if r.flow == flowOn {
		r.flow = flowOff
	}
	r.needReadable = true
	r.requestMore()
	r.emitReadable()
}

func (r *Readable) OnEnd(fn func()) {
	r.end.once(notify(fn))
}

func (r *Readable) OnError(fn func(error)) {
	r.errs.on(fn)
}

// EmitError delivers err to the error listeners.
func (r *Readable) EmitError(err error) {
	r.errs.emit(err)
}

// Len returns the number of buffered bytes.
func (r *Readable) Len() int {
	return r.length
}

// Ended reports whether the end event has fired.
func (r *Readable) Ended() bool {
	return r.endEmitted
}

func (r *Readable) deliver() {
	if r.flow == flowOn {
		r.flowLoop()
		return
	}
	r.emitReadable()
}

func (r *Readable) requestMore() {
	if r.reading || r.ended || r.inRead {
		return
	}
	r.reading = true
	r.inRead = true
	r.read()
	r.inRead = false
}

func (r *Readable) flowLoop() {
	if r.draining {
		return
	}
	r.draining = true
	defer func() { r.draining = false }()

	for r.flow == flowOn {
		if len(r.buf) == 0 {
			r.requestMore()
			if len(r.buf) == 0 {
				r.maybeEnd()
				return
			}
			continue
		}
		r.data.emit(r.shift())
	}
}

func (r *Readable) emitReadable() {
	if r.emittingReadable {
		return
	}
	r.emittingReadable = true
	defer func() { r.emittingReadable = false }()

	for r.needReadable && !r.endEmitted && (len(r.buf) > 0 || r.ended) {
		r.needReadable = false
		r.readable.emit(struct{}{})
	}
}

func (r *Readable) maybeEnd() {
	if !r.ended || r.endEmitted || len(r.buf) > 0 {
		return
	}
	r.endEmitted = true
	r.end.emit(struct{}{})
}

func (r *Readable) shift() []byte {
	data := r.buf[0]
	r.buf[0] = nil
	r.buf = r.buf[1:]
	r.length -= len(data)
	return data
}
