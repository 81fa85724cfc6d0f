package types

// Operator filter condition
type Operator string

const (
	OpEquals         Operator = "EQUALS"
	OpNotEquals      Operator = "NOT_EQUALS"
	OpContains       Operator = "CONTAINS"
	OpNotContains    Operator = "NOT_CONTAINS"
	OpStartsWith     Operator = "STARTS_WITH"
	OpEndsWith       Operator = "ENDS_WITH"
	OpGreater        Operator = "GREATER"
	OpLesser         Operator = "LESSER"
	OpGreaterOrEqual Operator = "GREATER_OR_EQUAL"
	OpLesserOrEqual  Operator = "LESSER_OR_EQUAL"
	OpEmpty          Operator = "EMPTY"
	OpNotEmpty       Operator = "NOT_EMPTY"
	OpIn             Operator = "IN"
)

// FieldType value type of searchable field
type FieldType string

const (
	FieldString    FieldType = "string"
	FieldNumber    FieldType = "number"
	FieldDate      FieldType = "date"
	FieldEnum      FieldType = "enum"
	FieldReference FieldType = "reference"
	FieldList      FieldType = "list"
)

// Filter one filter condition; filters are joined with AND
type Filter struct {
	Field     string      `json:"field" validate:"required"`
	Condition Operator    `json:"condition" validate:"required"`
	Value     interface{} `json:"value,omitempty"`
}

// SearchField searchable field description
type SearchField struct {
	Field     string     `json:"field"`
	Label     string     `json:"label"`
	Type      FieldType  `json:"type"`
	Operators []Operator `json:"conditions"`
	Values    []string   `json:"value,omitempty"`
}
