// Package duplexer composes a writable Sink and a readable Source into a
// single duplex Bridge. Writes go to the Sink, reads come from the Source and
// the completion and error signals of both are merged into the Bridge.
//
// A Bridge, its Sink and its Source are single goroutine objects; see package
// stream. Conn wraps a Bridge owned by a loop.Loop into a blocking
// io.ReadWriteCloser.
package duplexer

import (
	"github.com/itohio/duplexer/stream"
)

// Sink is the write side bridged by a Bridge. Finish must fire at most once.
type Sink interface {
	Write(data []byte, encoding string, done func(error)) bool
	End()
	OnFinish(func())
	OnError(func(error))
}

// Producer is what every source supports, whichever way it delivers data.
type Producer interface {
	OnEnd(func())
	OnError(func(error))
}

// PullSource hands out buffered chunks on demand. Read reports false when
// nothing is available; OnReadable listeners are called once more data or
// the end arrives.
type PullSource interface {
	Producer
	Read() ([]byte, bool)
	OnReadable(func())
}

// PushSource is a legacy source that only announces data. A Bridge wraps it
// with stream.Wrap.
type PushSource = stream.PushSource

// SourceMode tells how a Bridge reads its source.
type SourceMode int8

const (
	NativePull SourceMode = iota
	PushOnly
)

func (m SourceMode) String() string {
	switch m {
	case NativePull:
		return "native-pull"
	case PushOnly:
		return "push-only"
	default:
		return "unknown"
	}
}

var (
	_ Sink       = (*stream.Writable)(nil)
	_ PullSource = (*stream.Readable)(nil)
	_ PushSource = (*stream.Readable)(nil)
	_ Sink       = (*stream.Duplex)(nil)
	_ PullSource = (*stream.Duplex)(nil)
	_ Sink       = (*Bridge)(nil)
	_ PullSource = (*Bridge)(nil)
)
