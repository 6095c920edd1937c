// internal/features/vector.go
package features

import "loan-risk-workers/internal/schema"

// Vector is one application's feature row laid out in model order. Slots for
// columns the schema does not contain are silently skipped, so a transformer
// built for a wider feature set still produces a valid row for a narrower
// model.
type Vector struct {
	schema *schema.ColumnSchema
	values []float64
}

// NewVector allocates a zeroed feature row over the given schema.
func NewVector(s *schema.ColumnSchema) *Vector {
	return &Vector{
		schema: s,
		values: make([]float64, s.Len()),
	}
}

// Set assigns a value to the named column. It reports whether the column
// exists in the schema; unknown columns are ignored.
func (v *Vector) Set(column string, value float64) bool {
	i, ok := v.schema.Index(column)
	if !ok {
		return false
	}
	v.values[i] = value
	return true
}

// Get returns the value of the named column, or 0 for unknown columns.
func (v *Vector) Get(column string) float64 {
	i, ok := v.schema.Index(column)
	if !ok {
		return 0
	}
	return v.values[i]
}

// Values returns the backing slice in model order. Callers that normalize in
// place mutate the vector itself.
func (v *Vector) Values() []float64 {
	return v.values
}

// Schema returns the column schema the vector was built over.
func (v *Vector) Schema() *schema.ColumnSchema {
	return v.schema
}

// Clone returns an independent copy of the vector.
func (v *Vector) Clone() *Vector {
	out := &Vector{
		schema: v.schema,
		values: make([]float64, len(v.values)),
	}
	copy(out.values, v.values)
	return out
}
