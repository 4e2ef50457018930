// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gemaraproj/fieldmap/internal/logger"
	"github.com/gemaraproj/fieldmap/internal/metrics"
	"github.com/gemaraproj/fieldmap/internal/normalize"
	"github.com/gemaraproj/fieldmap/internal/server"
	"github.com/gemaraproj/fieldmap/internal/tool"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server exposing the normalize_document,
extraction_guidance and validate_profile tools.

By default the server communicates over stdio. Use --port to serve streamable
HTTP instead; Prometheus metrics are then available at /metrics.

Examples:
  # Stdio mode, every call carries its own profile
  fieldmap serve

  # HTTP mode with a default profile
  fieldmap serve --port 8080 --profile bol.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "P", 0, "HTTP port (0 = use stdio)")
	serveCmd.Flags().StringP("profile", "p", "", "Default mapping profile for tool calls that carry none")
	serveCmd.Flags().Bool("metrics", true, "Serve Prometheus metrics at /metrics in HTTP mode")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.FromContext(cmd.Context())

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	withMetrics, err := cmd.Flags().GetBool("metrics")
	if err != nil {
		return fmt.Errorf("getting metrics flag: %w", err)
	}
	profile, err := loadProfileFlag(cmd, false)
	if err != nil {
		return err
	}

	var reg *metrics.Registry
	if port > 0 && withMetrics {
		reg = metrics.NewRegistry()
	}
	tools := tool.NewToolset(profile, normalize.WithLogger(log), normalize.WithMetrics(reg))
	srv := server.New(version, tools, reg, log)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return srv.RunHTTP(cmd.Context(), addr)
	}
	return srv.Run(cmd.Context())
}
