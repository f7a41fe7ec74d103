package net

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/itohio/duplexer/errors"
	"github.com/itohio/duplexer/network"
)

var _ network.Node = (*Node)(nil)

// Node dials and listens on stream oriented sockets: tcp, tcp4, tcp6 and unix.
type Node struct {
	log  *slog.Logger
	peer network.Peer
}

func New(log *slog.Logger, peer network.Peer) (*Node, error) {
	if log == nil {
		return nil, errors.ErrBadArgument
	}
	switch peer.Scheme() {
	case "tcp", "tcp4", "tcp6", "unix":
	default:
		return nil, errors.ErrBadArgument
	}
	return &Node{
		log:  log.With("module", "net", "scheme", peer.Scheme()),
		peer: peer,
	}, nil
}

func (f *Node) Scheme() string {
	return f.peer.Scheme()
}

// address returns host:port for IP sockets and the socket path for unix://.
func address(peer network.Peer) string {
	if strings.HasPrefix(peer.Scheme(), "unix") && peer.Address() == "" {
		return "/" + peer.Path()
	}
	return peer.Address()
}

func (f *Node) Dial(ctx context.Context, peer network.Peer, o ...network.DialOpt) (io.ReadWriteCloser, error) {
	if f.peer.Scheme() != peer.Scheme() {
		return nil, errors.ErrBadArgument
	}
	var opts network.DialOptions
	if err := opts.Config(o...); err != nil {
		return nil, err
	}

	f.log.Debug("Dialing", "peer", peer)
	d := net.Dialer{Timeout: opts.Timeout()}
	conn, err := d.DialContext(ctx, peer.Scheme(), address(peer))
	if err != nil {
		f.log.Error("Dial", "peer", peer, "err", err)
		return nil, err
	}

	return conn, nil
}

// Serve accepts connections until ctx is done. A connection rejected by
// onConnect is closed; the server keeps accepting.
func (f *Node) Serve(ctx context.Context, onConnect network.ConnectFunc, o ...network.SrvOpt) error {
	var opts network.SrvOptions
	if err := opts.Config(o...); err != nil {
		return err
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, f.peer.Scheme(), address(f.peer))
	if err != nil {
		return err
	}
	f.log.Info("Listen", "addr", listener.Addr(), "peer", f.peer)
	opts.Listening(listener.Addr().String())

	acceptErr := make(chan error, 1)
	go func() {
		defer close(acceptErr)
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() == nil {
					f.log.Error("Listen.Accept", "peer", f.peer, "err", err)
					acceptErr <- err
				}
				return
			}
			peer, err := network.NewPeer(f.Scheme(), conn.RemoteAddr().String(), "", nil)
			if err != nil {
				f.log.Error("Listen.Accept NewPeer", "peer", f.peer, "err", err)
				conn.Close()
				continue
			}
			if err := onConnect(peer, conn); err != nil {
				f.log.Error("Listen.onConnect", "peer", peer, "err", err)
				conn.Close()
			}
		}
	}()

	select {
	case <-ctx.Done():
		f.log.Info("Listen.Close", "peer", f.peer, "err", ctx.Err())
		listener.Close()
		<-acceptErr
		return nil
	case err := <-acceptErr:
		listener.Close()
		return err
	}
}
