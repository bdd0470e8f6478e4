// Package sources provides producers of entry content for an archive job.
//
// A source is opened once per entry; the resulting stream is read exactly
// once, front to back. Sources are not required to be re-readable, which is
// why the archive writer never reads one twice.
package sources

import (
	"context"
	"io"
)

// Source produces the content for one archive entry.
type Source interface {
	// Name describes this source and its origin for logging.
	Name() string

	// Open returns the content stream. The caller owns the closer.
	Open(ctx context.Context) (io.ReadCloser, error)
}
