package runner

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	v1 "github.com/zipmill/zipmill/apis/v1"
)

func TestParseArchiveJob(t *testing.T) {
	t.Run("valid manifest", func(t *testing.T) {
		job, err := ParseArchiveJob([]byte(`
kind: ArchiveJob
metadata:
  name: backup
spec:
  entries:
    - name: config.yaml
      file:
        path: /etc/app/config.yaml
    - name: status.json
      http:
        url: https://example.com/status
  output:
    file:
      path: out/backup.zip
`))
		require.NoError(t, err)
		assert.Equal(t, "backup", job.Metadata.Name)
		require.Len(t, job.Spec.Entries, 2)
		assert.Equal(t, "config.yaml", job.Spec.Entries[0].Name)
		require.NotNil(t, job.Spec.Entries[1].HTTP)
		assert.Equal(t, "https://example.com/status", job.Spec.Entries[1].HTTP.URL)
		require.NotNil(t, job.Spec.Output.File)
	})

	t.Run("wrong kind", func(t *testing.T) {
		_, err := ParseArchiveJob([]byte(`
kind: SomethingElse
metadata:
  name: backup
spec:
  entries:
    - name: a.txt
      file:
        path: a.txt
`))
		assert.ErrorContains(t, err, "failed to validate job")
	})

	t.Run("no entries", func(t *testing.T) {
		_, err := ParseArchiveJob([]byte(`
kind: ArchiveJob
metadata:
  name: backup
spec:
  entries: []
`))
		assert.ErrorContains(t, err, "failed to validate job")
	})

	t.Run("not yaml", func(t *testing.T) {
		_, err := ParseArchiveJob([]byte("{{nope"))
		assert.ErrorContains(t, err, "failed to unmarshal")
	})
}

func TestBuildEntrySource(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		_, err := buildEntrySource(v1.Entry{Name: "a.txt"})
		assert.ErrorContains(t, err, "no source specified")
	})

	t.Run("two sources", func(t *testing.T) {
		_, err := buildEntrySource(v1.Entry{
			Name: "a.txt",
			File: &v1.FileEntry{Path: "a.txt"},
			HTTP: &v1.HTTPEntry{URL: "https://example.com/a"},
		})
		assert.ErrorContains(t, err, "more than one source")
	})

	t.Run("file source", func(t *testing.T) {
		source, err := buildEntrySource(v1.Entry{Name: "a.txt", File: &v1.FileEntry{Path: "/tmp/a.txt"}})
		require.NoError(t, err)
		assert.Equal(t, "file(/tmp/a.txt)", source.Name())
	})
}

func writeInputFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunner_FileOutput(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	pathA := writeInputFile(t, inputDir, "a.txt", "alpha content")
	pathB := writeInputFile(t, inputDir, "b.txt", "beta content")

	job := v1.ArchiveJob{
		Kind:     "ArchiveJob",
		Metadata: v1.Metadata{Name: "bundle"},
		Spec: v1.ArchiveJobSpec{
			Entries: []v1.Entry{
				{Name: "docs/a.txt", File: &v1.FileEntry{Path: pathA}},
				{Name: "docs/b.txt", File: &v1.FileEntry{Path: pathB}},
			},
			Output: &v1.OutputSpec{
				File: &v1.FileSpec{Path: filepath.Join(outputDir, "bundle.zip")},
			},
		},
	}

	ctx := t.Context()
	r, err := New(ctx, zaptest.NewLogger(t), job)
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	zr, err := zip.OpenReader(filepath.Join(outputDir, "bundle.zip"))
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 2)
	assert.Equal(t, "docs/a.txt", zr.File[0].Name)
	assert.Equal(t, "docs/b.txt", zr.File[1].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "alpha content", string(content))
}

func TestRunner_StdoutOutput(t *testing.T) {
	inputDir := t.TempDir()
	path := writeInputFile(t, inputDir, "a.txt", "hello")

	job := v1.ArchiveJob{
		Kind:     "ArchiveJob",
		Metadata: v1.Metadata{Name: "bundle"},
		Spec: v1.ArchiveJobSpec{
			Entries: []v1.Entry{
				{Name: "a.txt", File: &v1.FileEntry{Path: path}},
			},
		},
	}

	var buf bytes.Buffer
	ctx := t.Context()
	r, err := New(ctx, zaptest.NewLogger(t), job, WithStdout(&buf))
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "a.txt", zr.File[0].Name)
}

func TestRunner_MissingInputFile(t *testing.T) {
	job := v1.ArchiveJob{
		Kind:     "ArchiveJob",
		Metadata: v1.Metadata{Name: "bundle"},
		Spec: v1.ArchiveJobSpec{
			Entries: []v1.Entry{
				{Name: "gone.txt", File: &v1.FileEntry{Path: filepath.Join(t.TempDir(), "gone.txt")}},
			},
		},
	}

	var buf bytes.Buffer
	ctx := t.Context()
	r, err := New(ctx, zaptest.NewLogger(t), job, WithStdout(&buf))
	require.NoError(t, err)

	err = r.Run(ctx)
	assert.ErrorContains(t, err, "failed to open source")
}

// stallingSink fails without consuming the stream, to prove the producing
// side is not left blocked on the pipe.
type stallingSink struct{}

func (s *stallingSink) Name() string { return "stalling" }
func (s *stallingSink) Kind() string { return "stalling" }
func (s *stallingSink) Write(context.Context, string, io.Reader) error {
	return errors.New("no space left")
}
func (s *stallingSink) Close(context.Context) error { return nil }

func TestRunner_SinkFailureUnblocksWriter(t *testing.T) {
	inputDir := t.TempDir()
	// Big enough that the pipe cannot absorb the archive in one buffer.
	data := bytes.Repeat([]byte("zipmill "), 64*1024)
	path := writeInputFile(t, inputDir, "big.bin", string(data))

	job := v1.ArchiveJob{
		Kind:     "ArchiveJob",
		Metadata: v1.Metadata{Name: "bundle"},
		Spec: v1.ArchiveJobSpec{
			Entries: []v1.Entry{
				{Name: "big.bin", File: &v1.FileEntry{Path: path}},
			},
		},
	}

	ctx := t.Context()
	r, err := New(ctx, zaptest.NewLogger(t), job, WithSink(&stallingSink{}))
	require.NoError(t, err)

	err = r.Run(ctx)
	assert.ErrorContains(t, err, "no space left")
}

func TestRunner_ArchiveOptions(t *testing.T) {
	inputDir := t.TempDir()
	path := writeInputFile(t, inputDir, "a.txt", "hello")

	level := 9
	modified := "2026-03-14T15:09:26Z"
	job := v1.ArchiveJob{
		Kind:     "ArchiveJob",
		Metadata: v1.Metadata{Name: "bundle"},
		Spec: v1.ArchiveJobSpec{
			Entries: []v1.Entry{
				{Name: "a.txt", File: &v1.FileEntry{Path: path}},
			},
			Archive: &v1.ArchiveSpec{
				CompressionLevel: &level,
				Modified:         &modified,
			},
		},
	}

	var buf bytes.Buffer
	ctx := t.Context()
	r, err := New(ctx, zaptest.NewLogger(t), job, WithStdout(&buf))
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, 2026, zr.File[0].Modified.Year())
}

func TestRunner_BadModifiedTimestamp(t *testing.T) {
	bad := "not-a-timestamp"
	job := v1.ArchiveJob{
		Kind:     "ArchiveJob",
		Metadata: v1.Metadata{Name: "bundle"},
		Spec: v1.ArchiveJobSpec{
			Entries: []v1.Entry{
				{Name: "a.txt", File: &v1.FileEntry{Path: "a.txt"}},
			},
			Archive: &v1.ArchiveSpec{Modified: &bad},
		},
	}

	_, err := New(t.Context(), zaptest.NewLogger(t), job)
	assert.ErrorContains(t, err, "failed to parse modified timestamp")
}
