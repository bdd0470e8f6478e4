package zipstream

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when an entry is added after Close, or when Close is
// called twice.
var ErrClosed = errors.New("zipstream: archive writer is closed")

// ErrTooManyEntries is returned by AddFile when the archive already holds
// MaxEntries entries.
var ErrTooManyEntries = fmt.Errorf("zipstream: archive cannot hold more than %d entries", MaxEntries)

// ErrArchiveTooLarge is returned when a new entry would start past the
// largest offset the central directory can record.
var ErrArchiveTooLarge = errors.New("zipstream: archive exceeds 4 GiB and ZIP64 is not supported")

// NameError reports an entry name rejected before any bytes were written.
// The writer is left untouched and may keep being used with a corrected
// name.
type NameError struct {
	Name   string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("zipstream: invalid entry name %q: %s", e.Name, e.Reason)
}

// SourceError reports a failure reading entry content mid-stream. The
// archive bytes already written cannot be retracted, so the writer refuses
// further use.
type SourceError struct {
	Entry string
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("zipstream: failed to read content for %q: %v", e.Entry, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// CompressError reports a compressor failure mid-stream. Fatal to the
// writer, like SourceError.
type CompressError struct {
	Entry string
	Err   error
}

func (e *CompressError) Error() string {
	return fmt.Sprintf("zipstream: failed to compress %q: %v", e.Entry, e.Err)
}

func (e *CompressError) Unwrap() error { return e.Err }

// SinkError reports a failed write to the underlying sink. Fatal to the
// writer. Entry is empty when the failure happened while finalizing the
// archive rather than while writing a particular entry.
type SinkError struct {
	Entry string
	Err   error
}

func (e *SinkError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("zipstream: failed to write archive: %v", e.Err)
	}
	return fmt.Sprintf("zipstream: failed to write %q: %v", e.Entry, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }
