// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gemaraproj/fieldmap/internal/normalize"
)

// MetadataExtractionGuidance describes the extraction_guidance tool.
var MetadataExtractionGuidance = &mcp.Tool{
	Name: "extraction_guidance",
	Description: "Describe what an extractor must produce for a mapping profile besides the document: " +
		"array split rules, rows for repeating array entries, standalone values for static array " +
		"entries with the workflowData keys to store them under, and workflow-only fields.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"profile": map[string]interface{}{
				"type":        "string",
				"description": "Mapping profile as YAML or JSON text. Optional when the server was started with a default profile.",
			},
		},
	},
}

// InputExtractionGuidance is the input for the ExtractionGuidance tool.
type InputExtractionGuidance struct {
	Profile string `json:"profile"`
}

// OutputExtractionGuidance is the output for the ExtractionGuidance tool.
type OutputExtractionGuidance struct {
	Profile  string             `json:"profile,omitempty"`
	Guidance normalize.Guidance `json:"guidance"`
}

// ExtractionGuidance builds the guidance for a profile.
func (t *Toolset) ExtractionGuidance(_ context.Context, _ *mcp.CallToolRequest, input InputExtractionGuidance) (*mcp.CallToolResult, OutputExtractionGuidance, error) {
	profile, err := t.resolveProfile(input.Profile)
	if err != nil {
		return nil, OutputExtractionGuidance{}, err
	}
	return nil, OutputExtractionGuidance{
		Profile:  profile.Name,
		Guidance: normalize.BuildGuidance(profile),
	}, nil
}
