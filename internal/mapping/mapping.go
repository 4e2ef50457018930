// SPDX-License-Identifier: Apache-2.0

// Package mapping defines the declarative records that drive normalization:
// field mappings, reusable functions, predicates, array split rules and
// array entry definitions, bundled in a Profile.
package mapping

// Provenance says where a field mapping's value comes from.
type Provenance string

const (
	ProvenanceHardcoded  Provenance = "hardcoded"
	ProvenanceMapped     Provenance = "mapped"
	ProvenanceAI         Provenance = "ai"
	ProvenanceFunction   Provenance = "function"
	ProvenanceOrderEntry Provenance = "order_entry"
)

// DataType is the semantic type a value is coerced into.
type DataType string

const (
	DataTypeString    DataType = "string"
	DataTypeNumber    DataType = "number"
	DataTypeInteger   DataType = "integer"
	DataTypeBoolean   DataType = "boolean"
	DataTypeDatetime  DataType = "datetime"
	DataTypePhone     DataType = "phone"
	DataTypeZipPostal DataType = "zip_postal"
)

// DefaultRootCollection is the document key holding the orders.
const DefaultRootCollection = "orders"

// FieldMapping writes one value at a dotted path of every order.
type FieldMapping struct {
	FieldName      string     `json:"fieldName"`
	Type           Provenance `json:"type"`
	Value          any        `json:"value,omitempty"`
	DataType       DataType   `json:"dataType,omitempty"`
	MaxLength      int        `json:"maxLength,omitempty"`
	DateOnly       bool       `json:"dateOnly,omitempty"`
	RemoveIfNull   bool       `json:"removeIfNull,omitempty"`
	IsWorkflowOnly bool       `json:"isWorkflowOnly,omitempty"`
	FunctionID     string     `json:"functionId,omitempty"`
}

// SourcePath returns the order path a mapped value is read from. Mapped
// rules may name a different source path in Value; everything else reads
// the target path itself.
func (m FieldMapping) SourcePath() string {
	if m.Type == ProvenanceMapped {
		if s, ok := m.Value.(string); ok && s != "" {
			return s
		}
	}
	return m.FieldName
}

// Operator names a predicate comparison.
type Operator string

const (
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "not_equals"
	OpIn         Operator = "in"
	OpNotIn      Operator = "not_in"
	OpGreater    Operator = "greater_than"
	OpLess       Operator = "less_than"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpIsEmpty    Operator = "is_empty"
	OpIsNotEmpty Operator = "is_not_empty"
)

// Predicate compares the value at Field against Value.
type Predicate struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// SplitStrategy selects how ArraySplitConfig distributes a quantity.
type SplitStrategy string

const (
	SplitOnePerEntry  SplitStrategy = "one_per_entry"
	SplitDivideEvenly SplitStrategy = "divide_evenly"
)

// ArraySplitConfig ties the cardinality of an output array to a scalar
// quantity field.
type ArraySplitConfig struct {
	TargetArrayField      string        `json:"targetArrayField"`
	SplitBasedOnField     string        `json:"splitBasedOnField"`
	SplitStrategy         SplitStrategy `json:"splitStrategy"`
	DefaultToOneIfMissing bool          `json:"defaultToOneIfMissing,omitempty"`
}

// EntryFieldType says where an array entry field's value comes from.
type EntryFieldType string

const (
	EntryFieldHardcoded EntryFieldType = "hardcoded"
	EntryFieldExtracted EntryFieldType = "extracted"
	EntryFieldMapped    EntryFieldType = "mapped"
)

// ConditionLogic combines the rules of an EntryConditions block.
type ConditionLogic string

const (
	LogicAnd ConditionLogic = "AND"
	LogicOr  ConditionLogic = "OR"
)

// EntryConditions gates a static array entry.
type EntryConditions struct {
	Enabled bool           `json:"enabled"`
	Logic   ConditionLogic `json:"logic,omitempty"`
	Rules   []Predicate    `json:"rules,omitempty"`
}

// ArrayEntryField is one column of a constructed array row.
type ArrayEntryField struct {
	FieldName             string         `json:"fieldName"`
	FieldType             EntryFieldType `json:"fieldType"`
	HardcodedValue        any            `json:"hardcodedValue,omitempty"`
	ExtractionInstruction string         `json:"extractionInstruction,omitempty"`
	DataType              DataType       `json:"dataType,omitempty"`
	// SourceField is the order path read by mapped fields.
	SourceField string `json:"sourceField,omitempty"`
}

// ArrayEntryConfig contributes rows to the array at TargetArrayField.
// Static entries add one row at EntryOrder; repeating entries add one row
// per pre-extracted source row.
type ArrayEntryConfig struct {
	ID                string            `json:"id,omitempty"`
	TargetArrayField  string            `json:"targetArrayField"`
	EntryOrder        int               `json:"entryOrder"`
	IsEnabled         bool              `json:"isEnabled"`
	Fields            []ArrayEntryField `json:"fields"`
	Conditions        *EntryConditions  `json:"conditions,omitempty"`
	IsRepeating       bool              `json:"isRepeating,omitempty"`
	RepeatInstruction string            `json:"repeatInstruction,omitempty"`
}

// Profile is the complete rule set applied to a document.
type Profile struct {
	Name           string             `json:"name,omitempty"`
	RootCollection string             `json:"rootCollection,omitempty"`
	FieldMappings  []FieldMapping     `json:"fieldMappings,omitempty"`
	Functions      []Function         `json:"functions,omitempty"`
	ArraySplits    []ArraySplitConfig `json:"arraySplits,omitempty"`
	ArrayEntries   []ArrayEntryConfig `json:"arrayEntries,omitempty"`
}

// Root returns the root collection key.
func (p *Profile) Root() string {
	if p.RootCollection == "" {
		return DefaultRootCollection
	}
	return p.RootCollection
}

// Function looks up a function by id.
func (p *Profile) Function(id string) (Function, bool) {
	for _, fn := range p.Functions {
		if fn.ID == id {
			return fn, true
		}
	}
	return Function{}, false
}

// ArrayTargets returns every path owned by an array split or array entry
// rule, in first-seen order.
func (p *Profile) ArrayTargets() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range p.ArraySplits {
		add(s.TargetArrayField)
	}
	for _, e := range p.ArrayEntries {
		add(e.TargetArrayField)
	}
	return out
}
