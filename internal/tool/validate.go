// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gemaraproj/fieldmap/internal/mapping"
)

// MetadataValidateProfile describes the validate_profile tool.
var MetadataValidateProfile = &mcp.Tool{
	Name: "validate_profile",
	Description: "Check a mapping profile against the profile schema and its cross references " +
		"(function ids, required logic fields). Returns valid=false with the problems found " +
		"instead of failing the call.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"profile"},
		"properties": map[string]interface{}{
			"profile": map[string]interface{}{
				"type":        "string",
				"description": "Mapping profile as YAML or JSON text",
			},
		},
	},
}

// InputValidateProfile is the input for the ValidateProfile tool.
type InputValidateProfile struct {
	Profile string `json:"profile"`
}

// OutputValidateProfile is the output for the ValidateProfile tool.
type OutputValidateProfile struct {
	Valid bool   `json:"valid"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
	// Counts of the profile's records, set when valid.
	FieldMappings int `json:"field_mappings,omitempty"`
	Functions     int `json:"functions,omitempty"`
	ArraySplits   int `json:"array_splits,omitempty"`
	ArrayEntries  int `json:"array_entries,omitempty"`
}

// ValidateProfile loads a profile and reports whether it is usable.
func (t *Toolset) ValidateProfile(_ context.Context, _ *mcp.CallToolRequest, input InputValidateProfile) (*mcp.CallToolResult, OutputValidateProfile, error) {
	if input.Profile == "" {
		return nil, OutputValidateProfile{}, fmt.Errorf("profile is required")
	}
	p, err := mapping.Parse([]byte(input.Profile))
	if err != nil {
		return nil, OutputValidateProfile{Error: err.Error()}, nil
	}
	return nil, OutputValidateProfile{
		Valid:         true,
		Name:          p.Name,
		FieldMappings: len(p.FieldMappings),
		Functions:     len(p.Functions),
		ArraySplits:   len(p.ArraySplits),
		ArrayEntries:  len(p.ArrayEntries),
	}, nil
}
