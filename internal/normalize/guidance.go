// SPDX-License-Identifier: Apache-2.0

package normalize

import (
	"github.com/gemaraproj/fieldmap/internal/mapping"
	"github.com/gemaraproj/fieldmap/internal/split"
)

// FieldInstruction asks the extractor for one value stored under Key.
type FieldInstruction struct {
	Key         string           `json:"key"`
	Target      string           `json:"target"`
	Instruction string           `json:"instruction,omitempty"`
	DataType    mapping.DataType `json:"dataType,omitempty"`
}

// RowsInstruction asks the extractor for an array of rows stored under Key.
// Each row is an object keyed by the Fields' targets.
type RowsInstruction struct {
	Key         string             `json:"key"`
	Target      string             `json:"target"`
	Instruction string             `json:"instruction,omitempty"`
	Fields      []FieldInstruction `json:"fields"`
}

// Guidance tells an upstream extractor what to produce for a profile
// beyond the document itself.
type Guidance struct {
	Splits       []string           `json:"splits,omitempty"`
	Rows         []RowsInstruction  `json:"rows,omitempty"`
	Fields       []FieldInstruction `json:"fields,omitempty"`
	WorkflowOnly []string           `json:"workflowOnly,omitempty"`
}

// BuildGuidance derives extraction guidance from profile.
func BuildGuidance(profile *mapping.Profile) Guidance {
	var g Guidance
	if profile == nil {
		return g
	}
	for _, cfg := range profile.ArraySplits {
		g.Splits = append(g.Splits, split.Instruction(cfg))
	}
	for _, entry := range profile.ArrayEntries {
		if !entry.IsEnabled {
			continue
		}
		if entry.IsRepeating {
			rows := RowsInstruction{
				Key:         mapping.RowsKey(entry),
				Target:      entry.TargetArrayField,
				Instruction: entry.RepeatInstruction,
			}
			for _, f := range entry.Fields {
				if f.FieldType == mapping.EntryFieldExtracted {
					rows.Fields = append(rows.Fields, FieldInstruction{
						Key:         f.FieldName,
						Target:      f.FieldName,
						Instruction: f.ExtractionInstruction,
						DataType:    f.DataType,
					})
				}
			}
			g.Rows = append(g.Rows, rows)
			continue
		}
		for _, f := range entry.Fields {
			if f.FieldType != mapping.EntryFieldExtracted {
				continue
			}
			g.Fields = append(g.Fields, FieldInstruction{
				Key:         mapping.FieldKey(entry, f),
				Target:      entry.TargetArrayField + "." + f.FieldName,
				Instruction: f.ExtractionInstruction,
				DataType:    f.DataType,
			})
		}
	}
	for _, m := range profile.FieldMappings {
		if m.IsWorkflowOnly {
			g.WorkflowOnly = append(g.WorkflowOnly, m.FieldName)
		}
	}
	return g
}
