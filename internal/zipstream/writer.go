package zipstream

import (
	"context"
	"hash/crc32"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
)

const copyBufferSize = 32 * 1024

// Writer streams a ZIP archive to an underlying sink writer. It owns the
// sink for its whole lifetime: nothing else may write to the sink between
// NewWriter and Close.
//
// Calls are sequential: AddFile must fully return before the next AddFile
// or Close, because every local header embeds the byte offset the stream
// has reached, and that offset is only well-defined with no write in
// flight. The Writer does not lock; serialization is the caller's contract.
//
// Any error during AddFile other than a NameError leaves unpatchable bytes
// in the sink. The Writer remembers such a failure and refuses all further
// use; the partial archive must be discarded.
type Writer struct {
	out      *countWriter
	comp     *flate.Writer
	buf      []byte
	dir      []*centralDirEntry
	modTime  uint16
	modDate  uint16
	closed   bool
	brokenBy error
}

// Option configures a Writer.
type Option func(*writerConfig)

type writerConfig struct {
	level    int
	modified time.Time
}

// WithCompressionLevel sets the DEFLATE level, from flate.BestSpeed to
// flate.BestCompression. The default is flate.DefaultCompression.
func WithCompressionLevel(level int) Option {
	return func(c *writerConfig) { c.level = level }
}

// WithModified stamps every entry with the given modification time. When
// unset, timestamp fields are zero and the output depends only on names and
// content.
func WithModified(t time.Time) Option {
	return func(c *writerConfig) { c.modified = t }
}

// NewWriter creates an archive writer streaming to w. It returns an error
// only for an invalid compression level.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	cfg := writerConfig{level: flate.DefaultCompression}
	for _, opt := range opts {
		opt(&cfg)
	}

	// The compressor is retargeted with Reset for every entry; the initial
	// destination is never written to.
	comp, err := flate.NewWriter(io.Discard, cfg.level)
	if err != nil {
		return nil, err
	}

	zw := &Writer{
		out:  &countWriter{w: w},
		comp: comp,
		buf:  make([]byte, copyBufferSize),
	}
	zw.modTime, zw.modDate = msdosTime(cfg.modified)
	return zw, nil
}

// Offset returns the number of bytes emitted to the sink so far.
func (w *Writer) Offset() int64 {
	return w.out.count
}

// Entries returns the number of entries added so far.
func (w *Writer) Entries() int {
	return len(w.dir)
}

// AddFile appends one entry to the archive: local file header, DEFLATE
// compressed content, and a data descriptor carrying the CRC-32 and sizes.
// Content is read exactly once; each chunk feeds the checksum and the
// compressor, and compressed output flows to the sink as it is produced, so
// memory use is bounded regardless of entry size.
//
// A NameError is returned before anything is written. Any later failure
// (content read, compression, sink write) is fatal to the Writer.
func (w *Writer) AddFile(ctx context.Context, name string, content io.Reader) error {
	if w.closed {
		return ErrClosed
	}
	if w.brokenBy != nil {
		return w.brokenBy
	}
	if err := validateName(name); err != nil {
		return err
	}
	if len(w.dir) >= MaxEntries {
		return ErrTooManyEntries
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	headerOffset := w.out.count
	if headerOffset > maxUint32 {
		return w.broken(ErrArchiveTooLarge)
	}
	if _, err := w.out.Write(encodeLocalHeader(name, w.modTime, w.modDate)); err != nil {
		return w.broken(&SinkError{Entry: name, Err: err})
	}

	compressed := &countWriter{w: w.out}
	w.comp.Reset(compressed)

	var (
		crc          uint32
		originalSize int64
	)
	for {
		if err := ctx.Err(); err != nil {
			return w.broken(&SourceError{Entry: name, Err: err})
		}
		n, rerr := content.Read(w.buf)
		if n > 0 {
			crc = crc32.Update(crc, crc32.IEEETable, w.buf[:n])
			originalSize += int64(n)
			if _, werr := w.comp.Write(w.buf[:n]); werr != nil {
				return w.broken(w.classifyCompressorError(name, werr))
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return w.broken(&SourceError{Entry: name, Err: rerr})
		}
	}
	// Flush the compressor's final block. Only after this are the
	// compressed size and checksum final.
	if err := w.comp.Close(); err != nil {
		return w.broken(w.classifyCompressorError(name, err))
	}

	if _, err := w.out.Write(encodeDataDescriptor(crc, uint32(compressed.count), uint32(originalSize))); err != nil {
		return w.broken(&SinkError{Entry: name, Err: err})
	}

	w.dir = append(w.dir, &centralDirEntry{
		name:             name,
		crc32:            crc,
		compressedSize:   uint32(compressed.count),
		uncompressedSize: uint32(originalSize),
		headerOffset:     uint32(headerOffset),
		modTime:          w.modTime,
		modDate:          w.modDate,
	})
	return nil
}

// Close writes the central directory and the end-of-central-directory
// record, completing the archive. An archive with zero entries is valid.
// Closing twice, like adding after Close, returns ErrClosed.
//
// Close does not close the sink writer; the sink outlives the archive
// stream and is the caller's to finish.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	if w.brokenBy != nil {
		return w.brokenBy
	}
	w.closed = true

	dirOffset := w.out.count
	for _, entry := range w.dir {
		if _, err := w.out.Write(entry.encode()); err != nil {
			return &SinkError{Entry: entry.name, Err: err}
		}
	}
	dirSize := w.out.count - dirOffset

	if _, err := w.out.Write(encodeDirectoryEnd(uint16(len(w.dir)), uint32(dirSize), uint32(dirOffset))); err != nil {
		return &SinkError{Err: err}
	}
	return nil
}

// broken records a fatal mid-stream failure so every later call returns it.
func (w *Writer) broken(err error) error {
	w.brokenBy = err
	return err
}

// classifyCompressorError tells a sink failure surfacing through the
// compressor apart from a failure of the compressor itself, using the error
// the counting writer recorded.
func (w *Writer) classifyCompressorError(name string, err error) error {
	if w.out.err != nil {
		return &SinkError{Entry: name, Err: w.out.err}
	}
	return &CompressError{Entry: name, Err: err}
}
