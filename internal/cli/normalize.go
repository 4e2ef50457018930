// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/gemaraproj/fieldmap/internal/delimited"
	"github.com/gemaraproj/fieldmap/internal/logger"
	"github.com/gemaraproj/fieldmap/internal/mapping"
	"github.com/gemaraproj/fieldmap/internal/normalize"
	"github.com/gemaraproj/fieldmap/internal/source"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file...]",
	Short: "Normalize extracted documents",
	Long: `Normalize one or more extracted documents with a profile.

Documents are JSON or YAML, bare or wrapped as {document, workflowData}. With
no file arguments, or with "-", the document is read from stdin. Streams of
several documents (JSON lines, multi-document YAML) are normalized one by one.

Examples:
  fieldmap normalize --profile bol.yaml extracted.json
  fieldmap normalize --profile bol.yaml -o csv --delimiter ';' a.json b.json
  cat extracted.yaml | fieldmap normalize --profile bol.yaml -o yaml`,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringP("profile", "p", "", "Path to the mapping profile (YAML or JSON)")
	normalizeCmd.Flags().StringP("output", "o", outputJSON, "Output format: json, yaml or csv")
	normalizeCmd.Flags().String("format", "", "Input format hint: json or yaml (default: auto-detect)")
	normalizeCmd.Flags().String("delimiter", ",", "Field delimiter for csv output")
	normalizeCmd.Flags().IntP("concurrency", "c", 4, "Documents normalized in parallel")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	profile, err := loadProfileFlag(cmd, true)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	if len(args) == 0 {
		args = []string{"-"}
	}
	registry := source.Default()
	var inputs []normalize.Input
	for _, name := range args {
		src, err := readSource(cmd.InOrStdin(), name, format)
		if err != nil {
			return err
		}
		decoded, err := registry.Decode(ctx, src)
		if err != nil {
			return err
		}
		log.Debug("source decoded", "source", src.ID, "decoder", decoded.DecoderUsed, "documents", len(decoded.Inputs))
		inputs = append(inputs, decoded.Inputs...)
	}

	engine := normalize.New(profile, normalize.WithLogger(log))
	results, err := engine.NormalizeBatch(ctx, inputs, concurrency)
	if err != nil {
		return err
	}

	warnings := 0
	for _, r := range results {
		warnings += len(r.Warnings)
	}
	log.Info("normalization finished", "documents", len(results), "warnings", warnings)

	if output == outputCSV {
		delim, _ := cmd.Flags().GetString("delimiter")
		return writeCSV(cmd.OutOrStdout(), profile, results, delim)
	}
	if len(results) == 1 {
		return writeValue(cmd.OutOrStdout(), output, results[0])
	}
	return writeValue(cmd.OutOrStdout(), output, results)
}

func readSource(stdin io.Reader, name, format string) (source.Source, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return source.Source{}, fmt.Errorf("reading stdin: %w", err)
		}
		return source.Source{Content: data, Format: format, ID: "stdin"}, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return source.Source{}, fmt.Errorf("reading document: %w", err)
	}
	if format == "" {
		format = formatFromExt(name)
	}
	return source.Source{Content: data, Format: format, ID: name}, nil
}

func formatFromExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonl", ".ndjson":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

func writeCSV(w io.Writer, profile *mapping.Profile, results []*normalize.Result, delim string) error {
	r, size := utf8.DecodeRuneInString(delim)
	if size == 0 || size != len(delim) {
		return fmt.Errorf("%w: %q must be a single character", delimited.ErrInvalidDelimiter, delim)
	}
	cw, err := delimited.NewWriter(w, delimited.Columns(profile), r)
	if err != nil {
		return err
	}
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	for _, res := range results {
		if _, err := cw.WriteDocument(res.Document, profile.Root()); err != nil {
			return err
		}
	}
	return cw.Flush()
}
