package stream

import (
	"testing"

	"github.com/itohio/duplexer/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// asyncWriter holds every write until complete is called.
type asyncWriter struct {
	started []string
	pending []func(error)
}

func (a *asyncWriter) write(data []byte, _ string, done func(error)) {
	a.started = append(a.started, string(data))
	a.pending = append(a.pending, done)
}

func (a *asyncWriter) complete(err error) {
	done := a.pending[0]
	a.pending = a.pending[1:]
	done(err)
}

func TestWritable_Order(t *testing.T) {
	var written, completed []string
	w, err := NewWritable(func(data []byte, _ string, done func(error)) {
		written = append(written, string(data))
		done(nil)
	})
	require.NoError(t, err)

	for _, s := range []string{"a", "b", "c"} {
		s := s
		assert.True(t, w.Write([]byte(s), "", func(err error) {
			assert.NoError(t, err)
			completed = append(completed, s)
		}))
	}
	assert.Equal(t, []string{"a", "b", "c"}, written)
	assert.Equal(t, []string{"a", "b", "c"}, completed)
	assert.Equal(t, 0, w.Len())
}

func TestWritable_OneAtATime(t *testing.T) {
	a := &asyncWriter{}
	w, err := NewWritable(a.write)
	require.NoError(t, err)

	w.Write([]byte("a"), "", nil)
	w.Write([]byte("b"), "", nil)
	assert.Equal(t, []string{"a"}, a.started)
	assert.Equal(t, 2, w.Len())

	a.complete(nil)
	assert.Equal(t, []string{"a", "b"}, a.started)
	a.complete(nil)
	assert.Equal(t, 0, w.Len())
}

func TestWritable_Drain(t *testing.T) {
	a := &asyncWriter{}
	w, err := NewWritable(a.write, WithHighWaterMark(4))
	require.NoError(t, err)

	drained := 0
	w.OnDrain(func() { drained++ })

	assert.True(t, w.Write([]byte("ab"), "", nil))
	assert.False(t, w.Write([]byte("cd"), "", nil))
	a.complete(nil)
	assert.Equal(t, 0, drained)
	a.complete(nil)
	assert.Equal(t, 1, drained)
}

func TestWritable_FinishAfterPending(t *testing.T) {
	a := &asyncWriter{}
	w, err := NewWritable(a.write)
	require.NoError(t, err)

	finished := 0
	w.OnFinish(func() { finished++ })

	w.Write([]byte("a"), "", nil)
	w.End()
	assert.False(t, w.Finished())
	assert.Equal(t, 0, finished)

	a.complete(nil)
	assert.True(t, w.Finished())
	assert.Equal(t, 1, finished)

	w.End()
	assert.Equal(t, 1, finished)
}

func TestWritable_WriteAfterEnd(t *testing.T) {
	w, err := NewWritable(func(_ []byte, _ string, done func(error)) { done(nil) })
	require.NoError(t, err)

	var errs []error
	w.OnError(func(err error) { errs = append(errs, err) })
	w.End()

	var cbErr error
	assert.False(t, w.Write([]byte("x"), "", func(err error) { cbErr = err }))
	assert.ErrorIs(t, cbErr, errors.ErrWriteAfterEnd)
	assert.Equal(t, []error{errors.ErrWriteAfterEnd}, errs)
}

func TestWritable_WriteError(t *testing.T) {
	boom := errors.New("boom")
	w, err := NewWritable(func(_ []byte, _ string, done func(error)) { done(boom) })
	require.NoError(t, err)

	var errs []error
	w.OnError(func(err error) { errs = append(errs, err) })

	var cbErr error
	w.Write([]byte("x"), "utf8", func(err error) { cbErr = err })
	assert.Equal(t, boom, cbErr)
	assert.Equal(t, []error{boom}, errs)
}

func TestWritable_DoneCalledTwice(t *testing.T) {
	var done func(error)
	w, err := NewWritable(func(_ []byte, _ string, d func(error)) { done = d })
	require.NoError(t, err)

	calls := 0
	w.Write([]byte("x"), "", func(error) { calls++ })
	done(nil)
	done(nil)
	assert.Equal(t, 1, calls)
}

func TestNewWritable_Nil(t *testing.T) {
	_, err := NewWritable(nil)
	assert.ErrorIs(t, err, errors.ErrBadArgument)
}

func TestWritable_WriteErrorEventsDisabled(t *testing.T) {
	boom := errors.New("boom")
	var unhandled []error
	w, err := NewWritable(func(_ []byte, _ string, done func(error)) { done(boom) },
		WithWriteErrorEvents(false),
		WithUnhandledError(func(err error) { unhandled = append(unhandled, err) }),
	)
	require.NoError(t, err)

	var cbErr error
	w.Write([]byte("x"), "", func(err error) { cbErr = err })
	assert.Equal(t, boom, cbErr)
	assert.Empty(t, unhandled)
}
