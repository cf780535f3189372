package source

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderSourceChunks(t *testing.T) {
	src := NewReaderSource(strings.NewReader("hello world"), "test")
	assert.Equal(t, "test", src.Name())

	buf := make([]byte, 4)
	var got []string
	for {
		n, err := src.ReadChunk(context.Background(), buf)
		if err == io.EOF {
			assert.Zero(t, n)
			break
		}
		require.NoError(t, err)
		got = append(got, string(buf[:n]))
	}
	assert.Equal(t, []string{"hell", "o wo", "rld"}, got)

	n, err := src.ReadChunk(context.Background(), buf)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err, "EOF is sticky")
}

func TestReaderSourceDataWithEOF(t *testing.T) {
	src := NewReaderSource(iotest.DataErrReader(strings.NewReader("abc")), "test")
	buf := make([]byte, 16)

	n, err := src.ReadChunk(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))

	n, err = src.ReadChunk(context.Background(), buf)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func TestReaderSourceEmptyInput(t *testing.T) {
	src := NewReaderSource(strings.NewReader(""), "test")
	n, err := src.ReadChunk(context.Background(), make([]byte, 8))
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func TestReaderSourceError(t *testing.T) {
	boom := errors.New("boom")
	src := NewReaderSource(iotest.ErrReader(boom), "pipe")

	_, err := src.ReadChunk(context.Background(), make([]byte, 8))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "read pipe")
}

func TestReaderSourceTrailingBytesBeforeError(t *testing.T) {
	boom := errors.New("boom")
	src := NewReaderSource(io.MultiReader(strings.NewReader("xy"), iotest.ErrReader(boom)), "pipe")
	buf := make([]byte, 8)

	n, err := src.ReadChunk(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, "xy", string(buf[:n]))

	_, err = src.ReadChunk(context.Background(), buf)
	assert.ErrorIs(t, err, boom)
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, nil }

func TestReaderSourceNoProgress(t *testing.T) {
	src := NewReaderSource(emptyReader{}, "stuck")
	_, err := src.ReadChunk(context.Background(), make([]byte, 8))
	assert.ErrorIs(t, err, io.ErrNoProgress)
}

func TestReaderSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewReaderSource(strings.NewReader("data"), "test")
	_, err := src.ReadChunk(ctx, make([]byte, 8))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStdinSourceName(t *testing.T) {
	assert.Equal(t, "stdin", NewStdinSource().Name())
}
