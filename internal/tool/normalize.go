// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gemaraproj/fieldmap/internal/normalize"
	"github.com/gemaraproj/fieldmap/internal/source"
)

// MetadataNormalizeDocument describes the normalize_document tool.
var MetadataNormalizeDocument = &mcp.Tool{
	Name: "normalize_document",
	Description: "Normalize an extracted document against a field mapping profile. " +
		"The document is JSON or YAML, either bare or wrapped as {document, workflowData} where " +
		"workflowData carries workflow-only values and array entry values keyed as described by " +
		"extraction_guidance. Every order of the root collection is coerced, computed fields are " +
		"resolved, arrays are split and assembled, and empty values are pruned. " +
		"Data-quality problems never fail the call; they are returned as warnings.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw extracted document",
			},
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Format hint for the document. If omitted, auto-detection is used.",
				"enum":        []string{"json", "yaml"},
			},
			"profile": map[string]interface{}{
				"type":        "string",
				"description": "Mapping profile as YAML or JSON text. Optional when the server was started with a default profile.",
			},
			"source_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional identifier for the document (file path, URL, etc.) used in error messages.",
			},
		},
	},
}

// InputNormalizeDocument is the input for the NormalizeDocument tool.
type InputNormalizeDocument struct {
	Content  string `json:"content"`
	Format   string `json:"format"`
	Profile  string `json:"profile"`
	SourceID string `json:"source_id"`
}

// OutputNormalizeDocument is the output for the NormalizeDocument tool.
type OutputNormalizeDocument struct {
	// Results holds one entry per decoded document.
	Results []*normalize.Result `json:"results"`
	// DecoderUsed is the name of the decoder that was selected.
	DecoderUsed string `json:"decoder_used"`
	// Profile is the name of the applied profile.
	Profile string `json:"profile,omitempty"`
	// TotalWarnings sums the warnings of every result.
	TotalWarnings int `json:"total_warnings"`
}

// NormalizeDocument decodes the content and runs the engine over every
// document it holds.
func (t *Toolset) NormalizeDocument(ctx context.Context, _ *mcp.CallToolRequest, input InputNormalizeDocument) (*mcp.CallToolResult, OutputNormalizeDocument, error) {
	if input.Content == "" {
		return nil, OutputNormalizeDocument{}, fmt.Errorf("content is required")
	}
	profile, err := t.resolveProfile(input.Profile)
	if err != nil {
		return nil, OutputNormalizeDocument{}, err
	}

	sourceID := input.SourceID
	if sourceID == "" {
		sourceID = "unknown"
	}
	decoded, err := t.sources.Decode(ctx, source.Source{
		Content: []byte(input.Content),
		Format:  input.Format,
		ID:      sourceID,
	})
	if err != nil {
		return nil, OutputNormalizeDocument{}, err
	}

	engine := normalize.New(profile, t.opts...)
	results, err := engine.NormalizeBatch(ctx, decoded.Inputs, 0)
	if err != nil {
		return nil, OutputNormalizeDocument{}, err
	}

	out := OutputNormalizeDocument{
		Results:     results,
		DecoderUsed: decoded.DecoderUsed,
		Profile:     profile.Name,
	}
	for _, r := range results {
		out.TotalWarnings += len(r.Warnings)
	}
	return nil, out, nil
}
