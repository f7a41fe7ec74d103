package loop

import (
	"context"
	"testing"
	"time"

	"github.com/itohio/duplexer/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_PostOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	l := New(ctx, nil)
	defer l.Close()

	var order []int
	for i := 0; i < 100; i++ {
		i := i
		require.True(t, l.Post(func() { order = append(order, i) }))
	}
	require.NoError(t, l.Do(ctx, func() {}))

	require.Len(t, order, 100)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestLoop_PostFromTaskRunsNextTurn(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	l := New(ctx, nil)
	defer l.Close()

	var order []string
	done := make(chan struct{})
	l.Post(func() {
		l.Post(func() {
			order = append(order, "inner")
			close(done)
		})
		order = append(order, "outer")
	})

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("inner task did not run")
	}
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestLoop_PanicRecovered(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	l := New(ctx, nil)
	defer l.Close()

	l.Post(func() { panic("boom") })

	ran := false
	require.NoError(t, l.Do(ctx, func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_Close(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	l := New(ctx, nil)

	require.NoError(t, l.Close())
	_, ok := <-l.Done()
	assert.False(t, ok)

	assert.False(t, l.Post(func() {}))
	assert.ErrorIs(t, l.Do(ctx, func() {}), errors.ErrClosed)
	assert.False(t, l.Post(nil))
}

func TestLoop_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := New(ctx, nil)
	cancel()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.ErrorIs(t, l.Context().Err(), context.Canceled)
}

func TestLoop_DoContextExpired(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	l := New(ctx, nil)
	defer l.Close()

	block := make(chan struct{})
	l.Post(func() { <-block })

	short, shortCancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer shortCancel()
	assert.ErrorIs(t, l.Do(short, func() {}), context.DeadlineExceeded)
	close(block)
}
