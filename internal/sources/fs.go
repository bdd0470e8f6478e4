package sources

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// FileSource reads entry content from a file.
type FileSource struct {
	fs   afero.Fs
	path string
}

func NewFileSource(fs afero.Fs, path string) *FileSource {
	return &FileSource{fs: fs, path: path}
}

// NewOsFileSource reads from the host filesystem.
func NewOsFileSource(path string) *FileSource {
	return NewFileSource(afero.NewOsFs(), path)
}

func (s *FileSource) Name() string {
	return fmt.Sprintf("file(%s)", s.path)
}

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", s.path, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory, not a file", s.path)
	}

	return f, nil
}
