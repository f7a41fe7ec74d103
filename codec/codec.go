// Package codec frames stream chunks so that their boundaries survive a byte
// oriented transport.
//
// Frame layout: 4 bytes magic number, 4 bytes payload size (both big endian),
// then the payload: a protobuf encoded wrapperspb.BytesValue holding the chunk.
package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/itohio/duplexer/errors"
	pool "github.com/libp2p/go-buffer-pool"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var (
	buffers pool.BufferPool
)

// Release returns a buffer obtained from EncodeChunk or ReadChunk to the pool.
func Release(b []byte) {
	buffers.Put(b)
}

// Size of the preamble: 4 bytes magic number, 4 bytes payload size
const PreambleSize = 4 + 4
const MagicNumber = 0xFADABEDA

// MaxFrameSize bounds the payload size accepted by ReadChunk.
const MaxFrameSize = 16 << 20

// FrameSize returns the encoded size of data including the preamble.
func FrameSize(data []byte) int {
	return proto.Size(wrapperspb.Bytes(data)) + PreambleSize
}

// EncodeChunk frames data into a pooled buffer.
func EncodeChunk(data []byte) ([]byte, error) {
	return AppendChunkTo(nil, data)
}

// AppendChunkTo appends a frame carrying data to buf. A nil buf is taken from the pool.
func AppendChunkTo(buf []byte, data []byte) ([]byte, error) {
	msg := wrapperspb.Bytes(data)
	size := proto.Size(msg)
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d", errors.ErrTooLarge, size)
	}

	if buf == nil {
		buf = buffers.Get(size + PreambleSize)
		buf = buf[:0]
	}

	buf = binary.BigEndian.AppendUint32(buf, MagicNumber)
	buf = binary.BigEndian.AppendUint32(buf, uint32(size))

	buf, err := proto.MarshalOptions{}.MarshalAppend(buf, msg)
	if err != nil {
		buffers.Put(buf)
		return nil, err
	}
	return buf, nil
}

// WriteChunk frames data and writes the frame with a single Write call.
func WriteChunk(w io.Writer, data []byte) error {
	buf, err := EncodeChunk(data)
	if err != nil {
		return err
	}
	defer Release(buf)

	n, err := w.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return errors.ErrNotEnoughBytes
	}
	return nil
}

// ReadChunk reads one frame and returns its payload in a pooled buffer. It
// returns io.EOF only if r ended cleanly between frames.
func ReadChunk(r io.Reader) ([]byte, error) {
	var preamble [PreambleSize]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, err
	}

	magic := binary.BigEndian.Uint32(preamble[:])
	if magic != MagicNumber {
		return nil, fmt.Errorf("%w: magic %#x", errors.ErrBadArgument, magic)
	}
	size := binary.BigEndian.Uint32(preamble[4:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d", errors.ErrTooLarge, size)
	}

	buf := buffers.Get(int(size))
	if _, err := io.ReadFull(r, buf); err != nil {
		buffers.Put(buf)
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: payload: %w", errors.ErrNotEnoughBytes, err)
	}
	return buf, nil
}

// DecodeChunk unmarshals a payload returned by ReadChunk. The returned slice
// does not alias payload.
func DecodeChunk(payload []byte) ([]byte, error) {
	var msg wrapperspb.BytesValue
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	return msg.GetValue(), nil
}
