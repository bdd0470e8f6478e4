package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	v1 "github.com/zipmill/zipmill/apis/v1"
	"github.com/zipmill/zipmill/internal/sinks"
	"github.com/zipmill/zipmill/internal/sources"
	"github.com/zipmill/zipmill/internal/zipstream"
)

var defaultValidator = validator.New(validator.WithRequiredStructEnabled())

// ParseArchiveJob parses a YAML (or JSON) manifest and validates it. It
// returns the job or an error carrying validator.ValidationErrors when the
// document is structurally wrong.
func ParseArchiveJob(data []byte) (v1.ArchiveJob, error) {
	var job v1.ArchiveJob
	if err := yaml.Unmarshal(data, &job); err != nil {
		return v1.ArchiveJob{}, fmt.Errorf("failed to unmarshal job data: %w", err)
	}

	if err := defaultValidator.Struct(job); err != nil {
		return v1.ArchiveJob{}, fmt.Errorf("failed to validate job: %w", err)
	}

	return job, nil
}

// jobEntry pairs an archive member name with its opened-on-demand source.
type jobEntry struct {
	name   string
	source sources.Source
}

// Runner executes one archive job: it streams every entry through the
// archive writer into the configured sink.
type Runner struct {
	logger      *zap.Logger
	job         v1.ArchiveJob
	entries     []jobEntry
	writerOpts  []zipstream.Option
	sink        sinks.Sink
	archivePath string
	stdout      io.Writer
}

// Option customizes a Runner.
type Option func(*Runner)

// WithStdout redirects stdout output, for tests.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) { r.stdout = w }
}

// WithSink substitutes the sink regardless of the job's output spec, for
// tests.
func WithSink(sink sinks.Sink) Option {
	return func(r *Runner) { r.sink = sink }
}

// New builds a runner for the given job: resolves every entry source, the
// archive writer options, and the destination sink.
func New(ctx context.Context, logger *zap.Logger, job v1.ArchiveJob, opts ...Option) (*Runner, error) {
	logger.Info("creating runner", zap.String("job_name", job.Metadata.Name), zap.Int("entries", len(job.Spec.Entries)))

	r := &Runner{
		logger: logger,
		job:    job,
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, entry := range job.Spec.Entries {
		source, err := buildEntrySource(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve source: %w", err)
		}
		r.entries = append(r.entries, jobEntry{name: entry.Name, source: source})
	}

	writerOpts, err := buildWriterOptions(job.Spec.Archive)
	if err != nil {
		return nil, fmt.Errorf("failed to build archive options: %w", err)
	}
	r.writerOpts = writerOpts

	if r.sink == nil {
		sink, archivePath, err := buildSink(ctx, job, r.stdout)
		if err != nil {
			return nil, fmt.Errorf("failed to build sink: %w", err)
		}
		r.sink = sink
		r.archivePath = archivePath
	} else if r.archivePath == "" {
		r.archivePath = job.Metadata.Name + ".zip"
	}

	return r, nil
}

func buildWriterOptions(spec *v1.ArchiveSpec) ([]zipstream.Option, error) {
	if spec == nil {
		return nil, nil
	}

	var opts []zipstream.Option
	if spec.CompressionLevel != nil {
		opts = append(opts, zipstream.WithCompressionLevel(*spec.CompressionLevel))
	}
	if spec.Modified != nil {
		modified, err := time.Parse(time.RFC3339, *spec.Modified)
		if err != nil {
			return nil, fmt.Errorf("failed to parse modified timestamp: %w", err)
		}
		opts = append(opts, zipstream.WithModified(modified))
	}
	return opts, nil
}

// buildSink resolves the job's output spec to a sink and the path the
// archive is written under. Stdout is the default destination.
func buildSink(ctx context.Context, job v1.ArchiveJob, stdout io.Writer) (sinks.Sink, string, error) {
	output := job.Spec.Output
	defaultName := job.Metadata.Name + ".zip"

	switch {
	case output == nil || output.Stdout != nil:
		return sinks.NewStreamSink(stdout), defaultName, nil

	case output.File != nil:
		dir := filepath.Dir(output.File.Path)
		sink, err := sinks.NewFilesystemSinkFromPath(dir)
		if err != nil {
			return nil, "", err
		}
		return sink, filepath.Base(output.File.Path), nil

	case output.S3 != nil:
		sink, err := sinks.NewS3Sink(ctx, sinks.S3Config{
			Bucket:          output.S3.Bucket,
			Region:          output.S3.Region,
			Endpoint:        output.S3.Endpoint,
			Prefix:          output.S3.Prefix,
			AccessKeyID:     output.S3.AccessKeyID,
			SecretAccessKey: output.S3.SecretAccessKey,
			ForcePathStyle:  output.S3.ForcePathStyle,
		})
		if err != nil {
			return nil, "", err
		}
		key := output.S3.Key
		if key == "" {
			key = defaultName
		}
		return sink, key, nil

	default:
		return nil, "", errors.New("output has no destination specified")
	}
}

// errSinkStopped closes the producing side of the pipe when the sink stops
// consuming before the archive is complete.
var errSinkStopped = errors.New("sink stopped consuming the archive")

// Run streams the archive. The writer produces into one end of a pipe while
// the sink drains the other, so the whole archive is never buffered and
// sink backpressure directly throttles compression.
func (r *Runner) Run(ctx context.Context) error {
	pr, pw := io.Pipe()

	sinkDone := make(chan error, 1)
	go func() {
		err := r.sink.Write(ctx, r.archivePath, pr)
		if err != nil {
			pr.CloseWithError(fmt.Errorf("%w: %w", errSinkStopped, err))
		} else {
			pr.CloseWithError(errSinkStopped)
		}
		sinkDone <- err
	}()

	if err := r.writeArchive(ctx, pw); err != nil {
		pw.CloseWithError(err)
		<-sinkDone
		return err
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close archive stream: %w", err)
	}

	if err := <-sinkDone; err != nil {
		return fmt.Errorf("failed to deliver archive: %w", err)
	}
	if err := r.sink.Close(ctx); err != nil {
		return fmt.Errorf("failed to close sink: %w", err)
	}

	r.logger.Info("archive complete",
		zap.String("destination", r.sink.Name()),
		zap.String("path", r.archivePath))
	return nil
}

func (r *Runner) writeArchive(ctx context.Context, w io.Writer) error {
	zw, err := zipstream.NewWriter(w, r.writerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create archive writer: %w", err)
	}

	for _, entry := range r.entries {
		logger := r.logger.With(zap.String("entry", entry.name), zap.String("source", entry.source.Name()))
		logger.Debug("adding entry")

		content, err := entry.source.Open(ctx)
		if err != nil {
			return fmt.Errorf("failed to open source for entry %q: %w", entry.name, err)
		}

		addErr := zw.AddFile(ctx, entry.name, content)
		if closeErr := content.Close(); closeErr != nil && addErr == nil {
			logger.Warn("failed to close entry source", zap.Error(closeErr))
		}
		if addErr != nil {
			return fmt.Errorf("failed to add entry %q: %w", entry.name, addErr)
		}

		logger.Debug("entry added", zap.Int64("archive_offset", zw.Offset()))
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}
