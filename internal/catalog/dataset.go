package catalog

type Dataset struct {
	Kind   Kind    `json:"kind"`
	Table  string  `json:"table"`
	Fields []Field `json:"fields"`
}

// GetField returns a pointer to the field with the given name, or nil.
func (d *Dataset) GetField(name string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// HasField returns true if the dataset has a field with the given name.
func (d *Dataset) HasField(name string) bool {
	return d.GetField(name) != nil
}

// FieldNames returns all field names in declaration order.
func (d *Dataset) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// RequiredFields returns the fields an upload must supply.
func (d *Dataset) RequiredFields() []Field {
	var fields []Field
	for _, f := range d.Fields {
		if f.Required {
			fields = append(fields, f)
		}
	}
	return fields
}

// NaturalKey returns the column set that identifies a row for dedup
// during merge uploads.
func (d *Dataset) NaturalKey() []string {
	var cols []string
	for _, f := range d.Fields {
		if f.NaturalKey {
			cols = append(cols, f.Name)
		}
	}
	return cols
}
