package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	v1 "github.com/zipmill/zipmill/apis/v1"
	"github.com/zipmill/zipmill/internal/runner"
)

var createCommand = &cli.Command{
	Name:      "create",
	Usage:     "Create a ZIP archive from a manifest or a list of files",
	ArgsUsage: "[files...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "manifest",
			Aliases: []string{"f"},
			Usage:   "Archive job manifest (YAML)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the archive to this path instead of stdout",
		},
		&cli.IntFlag{
			Name:  "level",
			Usage: "DEFLATE compression level (1 fastest to 9 best)",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		job, err := buildJob(command)
		if err != nil {
			return err
		}

		writesToStdout := job.Spec.Output == nil || job.Spec.Output.Stdout != nil
		if writesToStdout && isInteractive(ctx) && stdoutIsTerminal() {
			return fmt.Errorf("refusing to write a ZIP archive to a terminal; redirect stdout or pass --output")
		}

		r, err := runner.New(ctx, logger.Named("runner"), job)
		if err != nil {
			return fmt.Errorf("failed to create runner: %w", err)
		}

		if err := r.Run(ctx); err != nil {
			return fmt.Errorf("failed to run job: %w", err)
		}

		return nil
	},
}

// buildJob assembles the archive job from a manifest file, or from the
// positional file arguments when no manifest is given. Flags override the
// manifest's matching settings.
func buildJob(command *cli.Command) (v1.ArchiveJob, error) {
	var job v1.ArchiveJob

	if manifestPath := command.String("manifest"); manifestPath != "" {
		if command.Args().Len() > 0 {
			return v1.ArchiveJob{}, fmt.Errorf("pass either a manifest or file arguments, not both")
		}

		manifest, err := os.ReadFile(manifestPath)
		if err != nil {
			return v1.ArchiveJob{}, fmt.Errorf("failed to read manifest '%s': %w", manifestPath, err)
		}
		job, err = runner.ParseArchiveJob(manifest)
		if err != nil {
			return v1.ArchiveJob{}, fmt.Errorf("failed to parse manifest '%s': %w", manifestPath, err)
		}
	} else {
		if command.Args().Len() == 0 {
			return v1.ArchiveJob{}, fmt.Errorf("no manifest and no files provided")
		}

		job = v1.ArchiveJob{
			Kind:     "ArchiveJob",
			Metadata: v1.Metadata{Name: "archive"},
		}
		for _, arg := range command.Args().Slice() {
			job.Spec.Entries = append(job.Spec.Entries, v1.Entry{
				Name: entryNameForPath(arg),
				File: &v1.FileEntry{Path: arg},
			})
		}
	}

	if output := command.String("output"); output != "" {
		job.Spec.Output = &v1.OutputSpec{File: &v1.FileSpec{Path: output}}
	}
	if command.IsSet("level") {
		level := int(command.Int("level"))
		if job.Spec.Archive == nil {
			job.Spec.Archive = &v1.ArchiveSpec{}
		}
		job.Spec.Archive.CompressionLevel = &level
	}

	return job, nil
}

// entryNameForPath derives a ZIP entry name from a file path argument:
// slash-separated, relative, with no parent traversal.
func entryNameForPath(p string) string {
	name := path.Clean(filepath.ToSlash(p))
	name = strings.TrimPrefix(name, "/")
	if name == "." || strings.HasPrefix(name, "../") {
		return path.Base(filepath.ToSlash(p))
	}
	return name
}
