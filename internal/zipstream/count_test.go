package zipstream

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountWriter(t *testing.T) {
	var buf bytes.Buffer
	cw := &countWriter{w: &buf}

	n, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = cw.Write([]byte(" world"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	assert.EqualValues(t, 11, cw.count)
	assert.Equal(t, "hello world", buf.String(), "content must pass through unchanged")
	assert.NoError(t, cw.err)
}

// shortWriter accepts part of a write, then fails.
type shortWriter struct {
	accept int
	err    error
}

func (s *shortWriter) Write(p []byte) (int, error) {
	if len(p) <= s.accept {
		s.accept -= len(p)
		return len(p), nil
	}
	n := s.accept
	s.accept = 0
	return n, s.err
}

func TestCountWriter_CountsAcceptedBytesOnly(t *testing.T) {
	boom := errors.New("disk full")
	cw := &countWriter{w: &shortWriter{accept: 3, err: boom}}

	n, err := cw.Write([]byte("hello"))
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 3, cw.count, "only bytes the sink accepted count")
	assert.ErrorIs(t, cw.err, boom)
}
