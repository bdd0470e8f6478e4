package zipstream

import "io"

// countWriter forwards every write to the wrapped writer unchanged and
// tallies the bytes the wrapped writer actually accepted. The tally drives
// the header offsets recorded in the central directory, so it counts what
// reached the sink, not what was requested. A failed write is remembered so
// callers can tell a sink failure apart from a compressor failure after the
// error has passed through the compressor.
type countWriter struct {
	w     io.Writer
	count int64
	err   error
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	if err != nil {
		cw.err = err
	}
	return n, err
}
