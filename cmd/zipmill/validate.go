package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/zipmill/zipmill/internal/runner"
)

var validateCommand = &cli.Command{
	Name:  "validate",
	Usage: "Validate an archive job manifest",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "manifest",
			UsageText: "The manifest file to validate",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		manifestPath := command.StringArg("manifest")
		if manifestPath == "" {
			return fmt.Errorf("no manifest file provided")
		}

		manifest, err := os.ReadFile(manifestPath)
		if err != nil {
			return fmt.Errorf("failed to read manifest '%s': %w", manifestPath, err)
		}

		logger.Debug("validating manifest", zap.String("manifest", manifestPath))

		if _, err := runner.ParseArchiveJob(manifest); err != nil {
			fmt.Println(formatValidationError(err))
			return fmt.Errorf("manifest '%s' is invalid", manifestPath)
		}

		fmt.Printf("✓ Manifest '%s' is valid\n", manifestPath)
		return nil
	},
}

func formatValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	var sb strings.Builder
	sb.WriteString("manifest validation failed:")
	for _, fieldErr := range validationErrs {
		sb.WriteString(fmt.Sprintf("\n  - field %s failed on the '%s' rule", fieldErr.Namespace(), fieldErr.Tag()))
	}
	return sb.String()
}
