// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/spf13/cobra"

	"github.com/gemaraproj/fieldmap/internal/normalize"
)

var guidanceCmd = &cobra.Command{
	Use:   "guidance",
	Short: "Print extraction guidance for a profile",
	Long: `Print what an extractor must produce for a profile besides the document
itself: split rules, repeating rows, standalone array entry values with the
workflowData keys to store them under, and workflow-only fields.`,
	RunE: runGuidance,
}

func init() {
	guidanceCmd.Flags().StringP("profile", "p", "", "Path to the mapping profile (YAML or JSON)")
	guidanceCmd.Flags().StringP("output", "o", outputJSON, "Output format: json or yaml")
	rootCmd.AddCommand(guidanceCmd)
}

func runGuidance(cmd *cobra.Command, _ []string) error {
	profile, err := loadProfileFlag(cmd, true)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	return writeValue(cmd.OutOrStdout(), output, normalize.BuildGuidance(profile))
}
