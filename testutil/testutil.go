package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// FuncMock records that a callback was invoked. It may be called at most once.
type FuncMock struct {
	ctx    context.Context
	t      *testing.T
	name   string
	called chan struct{}
}

func NewFunc(ctx context.Context, t *testing.T, name string) FuncMock {
	return FuncMock{
		ctx:    ctx,
		t:      t,
		name:   name,
		called: make(chan struct{}),
	}
}

func (c FuncMock) F() {
	c.t.Log(c.name)
	close(c.called)
}

func (c FuncMock) FE(e error) func(error) {
	return func(err error) {
		assert.Equal(c.t, e, err, c.name)
		c.F()
	}
}

func (c FuncMock) WaitCalled() {
	assert.True(c.t, CtxRecv(c.ctx, c.called), c.name)
}

// WaitNotCalled waits for the mock context to expire and fails if the function was called meanwhile.
func (c FuncMock) WaitNotCalled() {
	assert.False(c.t, CtxRecv(c.ctx, c.called), c.name)
}

func (c FuncMock) Called() {
	assert.True(c.t, IsClosed(c.called), c.name)
}

func (c FuncMock) NotCalled() {
	assert.False(c.t, IsClosed(c.called), c.name)
}

func IsClosed[T any](c <-chan T) bool {
	select {
	case _, ok := <-c:
		return !ok
	default:
		return false
	}
}

func CtxRecv[T any](ctx context.Context, c <-chan T) bool {
	select {
	case <-ctx.Done():
		return false
	case <-c:
		return true
	}
}

// RecvValue waits for a single value from c. It reports false if ctx expires first or c is closed.
func RecvValue[T any](ctx context.Context, c <-chan T) (T, bool) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, false
	case v, ok := <-c:
		return v, ok
	}
}
