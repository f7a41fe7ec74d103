package network

import (
	"context"
	"io"

	"github.com/itohio/duplexer/errors"
	"golang.org/x/sync/errgroup"
)

var _ Node = (*Factory)(nil)

// Factory dispatches dials by peer scheme and serves on every registered server.
type Factory struct {
	dialers map[string]Dialer
	servers map[string]Server
}

func New(dialers ...Dialer) (*Factory, error) {
	dm := make(map[string]Dialer, len(dialers))
	sm := make(map[string]Server, len(dialers))
	for _, d := range dialers {
		if d == nil || d.Scheme() == "" {
			return nil, errors.ErrBadArgument
		}
		if _, ok := dm[d.Scheme()]; ok {
			return nil, errors.ErrDuplicate
		}
		dm[d.Scheme()] = d

		if s, isServer := d.(Server); isServer {
			sm[d.Scheme()] = s
		}
	}
	return &Factory{
		dialers: dm,
		servers: sm,
	}, nil
}

func (f *Factory) Scheme() string {
	return ""
}

func (f *Factory) Dial(ctx context.Context, peer Peer, o ...DialOpt) (io.ReadWriteCloser, error) {
	d, ok := f.dialers[peer.Scheme()]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return d.Dial(ctx, peer, o...)
}

// Serve runs every server until ctx is done or one of them fails.
func (f *Factory) Serve(ctx context.Context, onConnect ConnectFunc, o ...SrvOpt) error {
	eg, ctx := errgroup.WithContext(ctx)

	for _, s := range f.servers {
		eg.Go(func() error { return s.Serve(ctx, onConnect, o...) })
	}

	return eg.Wait()
}
