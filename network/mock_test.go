package network

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockDialer records dials together with the resolved timeout.
type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) Scheme() string {
	return m.Called().String(0)
}

func (m *MockDialer) Dial(ctx context.Context, peer Peer, opts ...DialOpt) (io.ReadWriteCloser, error) {
	var o DialOptions
	if err := o.Config(opts...); err != nil {
		return nil, err
	}
	args := m.Called(peer.String(), o.Timeout())
	rwc, _ := args.Get(0).(io.ReadWriteCloser)
	return rwc, args.Error(1)
}

type MockNode struct {
	MockDialer
}

func (m *MockNode) Serve(ctx context.Context, onConnect ConnectFunc, opts ...SrvOpt) error {
	return m.Called(ctx, onConnect).Error(0)
}

func newMockDialer(scheme string) *MockDialer {
	d := &MockDialer{}
	d.On("Scheme").Return(scheme)
	return d
}

func newMockNode(scheme string) *MockNode {
	n := &MockNode{}
	n.On("Scheme").Return(scheme)
	return n
}
