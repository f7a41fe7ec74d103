package stream

type listener[T any] struct {
	fn   func(T)
	once bool
}

// event is the listener list of one kind of notification. Listeners added
// while an event is being emitted are called from the next emission on.
type event[T any] struct {
	listeners []listener[T]
}

func (e *event[T]) on(fn func(T)) {
	e.listeners = append(e.listeners, listener[T]{fn: fn})
}

func (e *event[T]) once(fn func(T)) {
	e.listeners = append(e.listeners, listener[T]{fn: fn, once: true})
}

func (e *event[T]) len() int {
	return len(e.listeners)
}

// emit calls every listener with v and reports whether there were any.
func (e *event[T]) emit(v T) bool {
	ls := e.listeners
	if len(ls) == 0 {
		return false
	}

	kept := ls[:0:0]
	for _, l := range ls {
		if !l.once {
			kept = append(kept, l)
		}
	}
	e.listeners = kept

	for _, l := range ls {
		l.fn(v)
	}
	return true
}

func notify(fn func()) func(struct{}) {
	return func(struct{}) { fn() }
}

// errorEvent is shared by both halves of a duplex so that either side's
// failure reaches the same listeners.
type errorEvent struct {
	event[error]
	unhandled func(error)
}

func newErrorEvent(o Options) *errorEvent {
	return &errorEvent{unhandled: o.unhandled}
}

func (e *errorEvent) emit(err error) {
	if !e.event.emit(err) {
		e.unhandled(err)
	}
}
