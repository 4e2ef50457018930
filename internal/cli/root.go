// SPDX-License-Identifier: Apache-2.0

// Package cli implements the fieldmap command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gemaraproj/fieldmap/internal/logger"
	"github.com/gemaraproj/fieldmap/internal/mapping"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "fieldmap",
	Short: "Normalize extracted documents against field mapping profiles",
	Long: `fieldmap turns loosely structured extracted documents into the exact
shape a downstream system expects. A profile declares field mappings, computed
functions, array splits and array entries; fieldmap applies it to every order
of a document and reports data-quality problems as warnings.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogger,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setupLogger(cmd *cobra.Command, _ []string) error {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("getting log-level flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return fmt.Errorf("getting log-json flag: %w", err)
	}

	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(level)
	cfg.JSON = asJSON
	cfg.Output = cmd.ErrOrStderr()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.ContextWithLogger(ctx, logger.NewLogger(cfg)))
	return nil
}

// loadProfileFlag loads the profile named by the --profile flag. When
// required is false an empty flag yields a nil profile.
func loadProfileFlag(cmd *cobra.Command, required bool) (*mapping.Profile, error) {
	path, err := cmd.Flags().GetString("profile")
	if err != nil {
		return nil, fmt.Errorf("getting profile flag: %w", err)
	}
	if path == "" {
		if required {
			return nil, fmt.Errorf("--profile is required")
		}
		return nil, nil
	}
	p, err := mapping.LoadFile(path)
	if err != nil {
		return nil, err
	}
	logger.FromContext(cmd.Context()).Debug("profile loaded", "path", path, "name", p.Name)
	return p, nil
}
