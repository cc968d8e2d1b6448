package catalog

type Field struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"` // string, text, int, decimal, date
	Required   bool     `json:"required,omitempty"`
	Enum       []string `json:"enum,omitempty"`
	Precision  int      `json:"precision,omitempty"`
	Nullable   bool     `json:"nullable,omitempty"`
	NaturalKey bool     `json:"natural_key,omitempty"`
}

// IsNumeric reports whether the field carries a numeric value subject to the
// non-negativity rule.
func (f Field) IsNumeric() bool {
	return f.Type == "int" || f.Type == "decimal"
}
