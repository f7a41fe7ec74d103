// Package network opens byte streams to peers addressed by URL, such as
// tcp://host:port or serial://dev.ttyUSB0?baud=9600. The streams are usually
// bridged with duplexer.Open.
package network

import (
	"context"
	"io"
)

// Dialer interface describes objects that can dial a remote peer.
type Dialer interface {
	// Scheme returns the scheme this dialer handles
	Scheme() string
	// Dial dials the remote peer and returns a ReadWriteCloser object
	Dial(ctx context.Context, peer Peer, o ...DialOpt) (io.ReadWriteCloser, error)
}

// ConnectFunc is called for every accepted connection. It owns rwc.
type ConnectFunc func(peer Peer, rwc io.ReadWriteCloser) error

// Server interface describes objects that can listen for connections.
type Server interface {
	// Serve accepts connections until ctx is done.
	Serve(ctx context.Context, onConnect ConnectFunc, o ...SrvOpt) error
}

// Node interface describes both a dialer and a server.
type Node interface {
	Dialer
	Server
}
