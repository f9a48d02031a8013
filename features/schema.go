package features

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Schema is the ordered column list a trained model expects, captured at
// training time and immutable for the model's lifetime. The model is
// schema-positional: a misaligned or missing column silently corrupts every
// prediction, so vectors are always built against a Schema, never ad hoc.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema builds a schema from the training-time column list. Empty lists,
// blank names and duplicates are construction errors, not warnings - a
// defective schema must never reach prediction.
func NewSchema(columns []string) (*Schema, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("schema has no columns")
	}
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("schema column %d is blank", i)
		}
		if prev, dup := index[col]; dup {
			return nil, fmt.Errorf("schema column %q duplicated at positions %d and %d", col, prev, i)
		}
		index[col] = i
	}
	return &Schema{columns: columns, index: index}, nil
}

// Columns returns the column names in schema order.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Index returns the position of col, or false when the schema lacks it.
func (s *Schema) Index(col string) (int, bool) {
	i, ok := s.index[col]
	return i, ok
}

// ColumnsWithPrefix returns the schema columns starting with prefix, in
// schema order. Used to enumerate one-hot column families (incident_, dir_,
// day_).
func (s *Schema) ColumnsWithPrefix(prefix string) []string {
	var out []string
	for _, col := range s.columns {
		if strings.HasPrefix(col, prefix) {
			out = append(out, col)
		}
	}
	return out
}

// Vector is one reconstructed feature row, aligned to its schema. Created
// per prediction call and discarded after use.
type Vector struct {
	schema *Schema
	values []float64
}

// newVector allocates a zero-filled vector over schema.
func newVector(schema *Schema) *Vector {
	return &Vector{schema: schema, values: make([]float64, schema.Len())}
}

func (v *Vector) set(col string, value float64) {
	if i, ok := v.schema.Index(col); ok {
		v.values[i] = value
	}
}

// Values returns the feature values in schema column order, the shape the
// model consumes.
func (v *Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Value returns the value of col, or false when the schema lacks it.
func (v *Vector) Value(col string) (float64, bool) {
	i, ok := v.schema.Index(col)
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Columns returns the vector's column names in schema order.
func (v *Vector) Columns() []string {
	return v.schema.Columns()
}

// MarshalJSON writes the vector as an object with keys in schema order, so
// serialized vectors stay positionally readable.
func (v *Vector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range v.schema.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(v.values[i])
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", col, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
