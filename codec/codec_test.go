package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/itohio/duplexer/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func BenchmarkEncodeChunk(b *testing.B) {
	data := []byte("This is a test message")

	for i := 0; i < b.N; i++ {
		buf, err := EncodeChunk(data)
		if err != nil {
			b.Fatal("EncodeChunk failed:", err)
		}
		Release(buf)
	}
}

func BenchmarkReadChunk(b *testing.B) {
	frame, err := EncodeChunk([]byte("This is a test message"))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		payload, err := ReadChunk(bytes.NewReader(frame))
		if err != nil {
			b.Fatal("ReadChunk failed:", err)
		}
		if _, err := DecodeChunk(payload); err != nil {
			b.Fatal("DecodeChunk failed:", err)
		}
		Release(payload)
	}
}

func TestEncodeChunk(t *testing.T) {
	data := []byte("well hello there")
	buf, err := EncodeChunk(data)
	require.NoError(t, err)
	defer Release(buf)

	assert.Equal(t, FrameSize(data), len(buf))
	assert.Equal(t, uint32(MagicNumber), binary.BigEndian.Uint32(buf))
	assert.Equal(t, uint32(len(buf)-PreambleSize), binary.BigEndian.Uint32(buf[4:]))
}

func TestChunkStream(t *testing.T) {
	var wire bytes.Buffer
	chunks := []string{"H", "ello", "", "well hello there"}
	for _, c := range chunks {
		require.NoError(t, WriteChunk(&wire, []byte(c)))
	}

	for _, c := range chunks {
		payload, err := ReadChunk(&wire)
		require.NoError(t, err)
		data, err := DecodeChunk(payload)
		Release(payload)
		require.NoError(t, err)
		assert.Equal(t, c, string(data))
	}

	_, err := ReadChunk(&wire)
	assert.Equal(t, io.EOF, err)
}

func TestReadChunk_Corrupt(t *testing.T) {
	frame, err := EncodeChunk([]byte("payload"))
	require.NoError(t, err)
	defer Release(frame)

	tests := []struct {
		name  string
		input []byte
		err   error
	}{
		{
			name:  "bad magic",
			input: append([]byte{1, 2, 3, 4}, frame[4:]...),
			err:   errors.ErrBadArgument,
		},
		{
			name:  "truncated payload",
			input: frame[:len(frame)-2],
			err:   errors.ErrNotEnoughBytes,
		},
		{
			name:  "truncated preamble",
			input: frame[:3],
			err:   io.ErrUnexpectedEOF,
		},
		{
			name:  "too large",
			input: binary.BigEndian.AppendUint32(binary.BigEndian.AppendUint32(nil, MagicNumber), MaxFrameSize+1),
			err:   errors.ErrTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadChunk(bytes.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

func TestWriteChunk_Short(t *testing.T) {
	err := WriteChunk(shortWriter{}, []byte("payload"))
	assert.ErrorIs(t, err, errors.ErrNotEnoughBytes)
}
