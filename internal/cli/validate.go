// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gemaraproj/fieldmap/internal/logger"
	"github.com/gemaraproj/fieldmap/internal/mapping"
)

var errInvalidProfiles = errors.New("one or more profiles are invalid")

var validateCmd = &cobra.Command{
	Use:   "validate <profile>...",
	Short: "Validate mapping profiles",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logger.FromContext(cmd.Context())
	failed := 0
	for _, path := range args {
		p, err := mapping.LoadFile(path)
		if err != nil {
			failed++
			log.Error("invalid profile", "path", path, "err", err)
			cmd.Printf("FAIL %s: %v\n", path, err)
			continue
		}
		cmd.Printf("ok   %s (%s): %d mappings, %d functions, %d splits, %d entries\n",
			path, p.Name, len(p.FieldMappings), len(p.Functions), len(p.ArraySplits), len(p.ArrayEntries))
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errInvalidProfiles, failed, len(args))
	}
	return nil
}
