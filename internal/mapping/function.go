// SPDX-License-Identifier: Apache-2.0

package mapping

// LogicType discriminates the Logic variants.
type LogicType string

const (
	LogicDate          LogicType = "date"
	LogicConditional   LogicType = "conditional"
	LogicAddressLookup LogicType = "address_lookup"
)

// Function is a named, reusable computation referenced by FieldMapping.FunctionID.
type Function struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Logic Logic  `json:"logic"`
}

// Logic is implemented by DateLogic, ConditionalLogic and AddressLookupLogic.
type Logic interface {
	LogicType() LogicType
}

// DateSource selects the base date of a DateLogic.
type DateSource string

const (
	DateFromNow   DateSource = "current_date"
	DateFromField DateSource = "field"
)

// DateOperation is the direction of a day offset.
type DateOperation string

const (
	DateAdd      DateOperation = "add"
	DateSubtract DateOperation = "subtract"
)

// Output formats understood by DateLogic.
const (
	FormatISODate  = "YYYY-MM-DD"
	FormatUSSlash  = "MM/DD/YYYY"
	FormatEUSlash  = "DD/MM/YYYY"
	FormatUSDash   = "MM-DD-YYYY"
	FormatDateTime = "YYYY-MM-DDTHH:mm:ss"
)

// DateLogic offsets a base date by a number of days.
type DateLogic struct {
	Type         LogicType     `json:"type"`
	Source       DateSource    `json:"source,omitempty"`
	FieldName    string        `json:"fieldName,omitempty"`
	Operation    DateOperation `json:"operation,omitempty"`
	Days         int           `json:"days,omitempty"`
	OutputFormat string        `json:"outputFormat,omitempty"`
}

func (DateLogic) LogicType() LogicType { return LogicDate }

// ConditionalRule yields Then when If and every AdditionalConditions hold.
type ConditionalRule struct {
	If                   Predicate   `json:"if"`
	AdditionalConditions []Predicate `json:"additionalConditions,omitempty"`
	Then                 any         `json:"then"`
}

// ConditionalLogic picks the first matching rule, or Default.
type ConditionalLogic struct {
	Type       LogicType         `json:"type"`
	Conditions []ConditionalRule `json:"conditions"`
	Default    any               `json:"default,omitempty"`
}

func (ConditionalLogic) LogicType() LogicType { return LogicConditional }

// AddressLookupLogic delegates to an external address service.
type AddressLookupLogic struct {
	Type LogicType `json:"type"`
	// SourceField is the order path holding the address text to resolve.
	SourceField string `json:"sourceField,omitempty"`
	// Component names the part of the resolved address to return
	// (e.g. "postalCode", "city", "province").
	Component string `json:"component,omitempty"`
}

func (AddressLookupLogic) LogicType() LogicType { return LogicAddressLookup }
