// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/fieldmap/internal/normalize"
)

const profilePath = "../mapping/testdata/bill_of_lading.yaml"

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "", "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "fieldmap version test-version-1.0.0")
}

// ---------------------------------------------------------------------------
// normalize
// ---------------------------------------------------------------------------

func TestNormalizeCmd_JSONFile(t *testing.T) {
	doc := writeFile(t, "extracted.json", `{"orders": [{"doorNumber": "null", "pieces": 2, "poNumber": "PO-1"}]}`)

	out, err := execute(t, "", "normalize", "--profile", profilePath, "-o", "json", "--format", "", doc)
	require.NoError(t, err)

	var res normalize.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	orders := res.Document["orders"].([]any)
	require.Len(t, orders, 1)
	order := orders[0].(map[string]any)
	assert.NotContains(t, order, "doorNumber")
	assert.NotContains(t, order, "poNumber")
	assert.Len(t, order["barcodes"], 2)
	assert.Equal(t, "PO-1", res.WorkflowData[0]["poNumber"])
}

func TestNormalizeCmd_StdinStreamAsCSV(t *testing.T) {
	stdin := "{\"orders\": [{\"shipper\": {\"name\": \"acme, inc\"}, \"pieces\": 1}]}\n" +
		"{\"orders\": [{\"shipper\": {\"name\": \"globex\"}, \"pieces\": 2}]}\n"

	out, err := execute(t, stdin, "normalize", "--profile", profilePath, "-o", "csv", "--delimiter", ",", "--format", "")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "doorNumber,shipper.name,"))
	assert.Contains(t, lines[1], `"ACME, INC"`)
	assert.Contains(t, lines[2], "GLOBEX")
	assert.True(t, strings.HasSuffix(lines[2], ",1|1"), "barcodes.pieces joins fanned-out values: %s", lines[2])
}

func TestNormalizeCmd_Errors(t *testing.T) {
	doc := writeFile(t, "extracted.json", `{"orders": []}`)

	tests := []struct {
		name        string
		args        []string
		errContains string
	}{
		{
			name:        "missing profile",
			args:        []string{"normalize", "--profile", "", doc},
			errContains: "--profile is required",
		},
		{
			name:        "missing document",
			args:        []string{"normalize", "--profile", profilePath, filepath.Join(t.TempDir(), "nope.json")},
			errContains: "reading document",
		},
		{
			name:        "bad delimiter",
			args:        []string{"normalize", "--profile", profilePath, "-o", "csv", "--delimiter", ";;", doc},
			errContains: "invalid delimiter",
		},
		{
			name:        "bad output",
			args:        []string{"normalize", "--profile", profilePath, "-o", "xml", "--delimiter", ",", doc},
			errContains: "unsupported output format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

// ---------------------------------------------------------------------------
// guidance and validate
// ---------------------------------------------------------------------------

func TestGuidanceCmd(t *testing.T) {
	out, err := execute(t, "", "guidance", "--profile", profilePath, "-o", "json")
	require.NoError(t, err)

	var g normalize.Guidance
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Len(t, g.Splits, 1)
	assert.Equal(t, []string{"poNumber"}, g.WorkflowOnly)
}

func TestValidateCmd(t *testing.T) {
	bad := writeFile(t, "bad.yaml", "fieldMappings:\n  - fieldName: a\n    type: guess\n")

	out, err := execute(t, "", "validate", profilePath)
	require.NoError(t, err)
	assert.Contains(t, out, "ok   "+profilePath+" (bill-of-lading)")

	out, err = execute(t, "", "validate", profilePath, bad)
	require.ErrorIs(t, err, errInvalidProfiles)
	assert.Contains(t, out, "FAIL "+bad)
}
