package serial

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/tarm/serial"

	"github.com/itohio/duplexer/errors"
	"github.com/itohio/duplexer/network"
)

var _ network.Node = (*Node)(nil)

// Node opens serial ports. A peer such as serial://dev.ttyUSB0?baud=9600&bits=8&parity=N&stop=1
// refers to /dev/ttyUSB0.
type Node struct {
	peer network.Peer
}

func New(peer network.Peer) (*Node, error) {
	if peer.Scheme() == "" {
		return nil, errors.ErrBadArgument
	}
	return &Node{
		peer: peer,
	}, nil
}

func (f *Node) Scheme() string {
	return f.peer.Scheme()
}

func defaultConfig() *serial.Config {
	return &serial.Config{Baud: 115200}
}

// Config translates peer into a port configuration.
func Config(peer network.Peer) (*serial.Config, error) {
	cfg := defaultConfig()

	cfg.Name = strings.ReplaceAll(peer.Address(), ".", "/")
	if !strings.HasPrefix(cfg.Name, "/") && !strings.HasPrefix(strings.ToUpper(cfg.Name), "COM") {
		cfg.Name = "/" + cfg.Name
	}
	if baudS := peer.Values().Get("baud"); baudS != "" {
		baud, err := strconv.ParseInt(baudS, 10, 32)
		if err != nil {
			return nil, err
		}
		cfg.Baud = int(baud)
	}
	if parity := peer.Values().Get("parity"); parity != "" {
		cfg.Parity = serial.Parity(parity[0])
	}
	if stop := peer.Values().Get("stop"); stop != "" {
		switch stop {
		case "1":
			cfg.StopBits = serial.Stop1
		case "2":
			cfg.StopBits = serial.Stop2
		case "1.5":
			cfg.StopBits = serial.Stop1Half
		default:
			return nil, errors.ErrStopBits
		}
	}
	if bitsS := peer.Values().Get("bits"); bitsS != "" {
		bits, err := strconv.ParseInt(bitsS, 10, 8)
		if err != nil {
			return nil, err
		}
		cfg.Size = byte(bits)
	}
	return cfg, nil
}

func (f *Node) Dial(ctx context.Context, peer network.Peer, o ...network.DialOpt) (io.ReadWriteCloser, error) {
	if f.peer.Scheme() != peer.Scheme() {
		return nil, errors.ErrBadArgument
	}
	var opts network.DialOptions
	if err := opts.Config(o...); err != nil {
		return nil, err
	}

	cfg, err := Config(peer)
	if err != nil {
		return nil, err
	}

	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// Serve opens the node's own port and hands it to onConnect. A serial line has
// exactly one remote, so there is nothing to accept.
func (f *Node) Serve(ctx context.Context, onConnect network.ConnectFunc, o ...network.SrvOpt) error {
	var opts network.SrvOptions
	if err := opts.Config(o...); err != nil {
		return err
	}

	rwc, err := f.Dial(ctx, f.peer)
	if err != nil {
		return err
	}
	opts.Listening(f.peer.Address())

	return onConnect(f.peer, rwc)
}
