// Package sinks provides destinations for a finished archive byte stream.
//
// A sink consumes the stream with flow-controlled reads: the archive writer
// on the producing side of the pipe can only get as far ahead as the sink
// has accepted.
package sinks

import (
	"context"
	"io"
)

// Sink accepts a named byte stream and delivers it somewhere.
type Sink interface {
	// Name describes this sink and its destination for logging.
	Name() string

	// Kind identifies the sink type ("stream", "filesystem", "s3").
	Kind() string

	// Write delivers the full data stream under the given path. It returns
	// once the destination has accepted all bytes, or with the first error.
	Write(ctx context.Context, path string, data io.Reader) error

	// Close releases the sink after the last Write.
	Close(ctx context.Context) error
}
