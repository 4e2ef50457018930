// SPDX-License-Identifier: Apache-2.0

package mapping

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
)

// Profile loading errors.
var (
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrUnknownFunction = errors.New("unknown function")
	ErrUnknownLogic    = errors.New("unknown function logic type")
)

//go:embed schema.cue
var schemaSource string

type rawFunction struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Logic map[string]any `json:"logic"`
}

type rawProfile struct {
	Name           string             `json:"name"`
	RootCollection string             `json:"rootCollection"`
	FieldMappings  []FieldMapping     `json:"fieldMappings"`
	Functions      []rawFunction      `json:"functions"`
	ArraySplits    []ArraySplitConfig `json:"arraySplits"`
	ArrayEntries   []ArrayEntryConfig `json:"arrayEntries"`
}

// LoadFile reads and parses a YAML or JSON profile.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON profile, validates it against the embedded
// schema and resolves function logic into its variant types.
func Parse(data []byte) (*Profile, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: failed to parse: %w", ErrInvalidProfile, err)
	}
	if tree == nil {
		tree = map[string]any{}
	}
	return FromTree(tree)
}

// FromTree builds a Profile from an already-decoded generic tree.
func FromTree(tree map[string]any) (*Profile, error) {
	if err := Validate(tree); err != nil {
		return nil, err
	}

	var raw rawProfile
	if err := decode(tree, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	p := &Profile{
		Name:           raw.Name,
		RootCollection: raw.RootCollection,
		FieldMappings:  raw.FieldMappings,
		ArraySplits:    raw.ArraySplits,
		ArrayEntries:   raw.ArrayEntries,
	}
	for _, rf := range raw.Functions {
		logic, err := decodeLogic(rf.Logic)
		if err != nil {
			return nil, fmt.Errorf("%w: function %q: %w", ErrInvalidProfile, rf.ID, err)
		}
		p.Functions = append(p.Functions, Function{ID: rf.ID, Name: rf.Name, Logic: logic})
	}

	applyDefaults(p)

	if err := checkReferences(p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	return p, nil
}

// Validate checks a generic profile tree against the embedded CUE schema.
func Validate(tree map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling profile schema: %w", err)
	}

	data := ctx.Encode(tree)
	if err := data.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, cueerrors.Details(err, nil))
	}

	def := schema.LookupPath(cue.ParsePath("#Profile"))
	if err := def.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.TrimSpace(cueerrors.Details(err, nil)))
	}
	return nil
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func decodeLogic(m map[string]any) (Logic, error) {
	kind, _ := m["type"].(string)
	switch LogicType(kind) {
	case LogicDate:
		var l DateLogic
		if err := decode(m, &l); err != nil {
			return nil, err
		}
		return l, nil
	case LogicConditional:
		var l ConditionalLogic
		if err := decode(m, &l); err != nil {
			return nil, err
		}
		return l, nil
	case LogicAddressLookup:
		var l AddressLookupLogic
		if err := decode(m, &l); err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLogic, kind)
	}
}

func applyDefaults(p *Profile) {
	for i := range p.FieldMappings {
		if p.FieldMappings[i].DataType == "" {
			p.FieldMappings[i].DataType = DataTypeString
		}
	}
	for i := range p.ArrayEntries {
		e := &p.ArrayEntries[i]
		for j := range e.Fields {
			if e.Fields[j].DataType == "" {
				e.Fields[j].DataType = DataTypeString
			}
		}
		if e.Conditions != nil && e.Conditions.Logic == "" {
			e.Conditions.Logic = LogicAnd
		}
	}
	for i := range p.Functions {
		if dl, ok := p.Functions[i].Logic.(DateLogic); ok {
			if dl.Source == "" {
				dl.Source = DateFromNow
			}
			if dl.Operation == "" {
				dl.Operation = DateAdd
			}
			if dl.OutputFormat == "" {
				dl.OutputFormat = FormatISODate
			}
			p.Functions[i].Logic = dl
		}
	}
}

func checkReferences(p *Profile) error {
	ids := make(map[string]bool, len(p.Functions))
	for _, fn := range p.Functions {
		if ids[fn.ID] {
			return fmt.Errorf("duplicate function id %q", fn.ID)
		}
		ids[fn.ID] = true
	}
	for _, m := range p.FieldMappings {
		if m.Type == ProvenanceFunction && !ids[m.FunctionID] {
			return fmt.Errorf("%w %q referenced by %q", ErrUnknownFunction, m.FunctionID, m.FieldName)
		}
	}
	for _, fn := range p.Functions {
		if dl, ok := fn.Logic.(DateLogic); ok && dl.Source == DateFromField && dl.FieldName == "" {
			return fmt.Errorf("function %q: date logic with source %q needs fieldName", fn.ID, DateFromField)
		}
	}
	return nil
}
