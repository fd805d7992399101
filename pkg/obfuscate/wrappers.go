package obfuscate

import (
	"io"

	"github.com/sqlvibe/obfuscate/internal/OB"
)

// ArrayModel wraps an inner Model for the element type of an Array
// column. Training and generation operate on the flattened inner column;
// Offsets are copied through unchanged, so array lengths are never
// altered by obfuscation.
type ArrayModel struct {
	Inner Model
}

func NewArrayModel(inner Model) *ArrayModel { return &ArrayModel{Inner: inner} }

func (m *ArrayModel) Train(col ColumnView) error {
	c, ok := col.(*ArrayColumn)
	if !ok {
		return OB.Errorf(OB.ErrTypeMismatch, "ArrayModel: expected ArrayColumn, got %T", col)
	}
	return m.Inner.Train(c.Inner)
}

func (m *ArrayModel) Finalize() error { return m.Inner.Finalize() }
func (m *ArrayModel) UpdateSeed()     { m.Inner.UpdateSeed() }

func (m *ArrayModel) Generate(col ColumnView) (ColumnView, error) {
	c, ok := col.(*ArrayColumn)
	if !ok {
		return nil, OB.Errorf(OB.ErrTypeMismatch, "ArrayModel: expected ArrayColumn, got %T", col)
	}
	newInner, err := m.Inner.Generate(c.Inner)
	if err != nil {
		return nil, err
	}
	offsets := make([]int, len(c.Offsets))
	copy(offsets, c.Offsets)
	return &ArrayColumn{Inner: newInner, Offsets: offsets}, nil
}

func (m *ArrayModel) Serialize(w io.Writer) error   { return m.Inner.Serialize(w) }
func (m *ArrayModel) Deserialize(r io.Reader) error { return m.Inner.Deserialize(r) }

// NullableModel wraps an inner Model for the element type of a Nullable
// column. The inner column carries a (possibly placeholder) value for
// every row including nulls; the inner model trains/generates over all
// of them, and the null mask is copied through unchanged so a row that
// was null stays null.
type NullableModel struct {
	Inner Model
}

func NewNullableModel(inner Model) *NullableModel { return &NullableModel{Inner: inner} }

func (m *NullableModel) Train(col ColumnView) error {
	c, ok := col.(*NullableColumn)
	if !ok {
		return OB.Errorf(OB.ErrTypeMismatch, "NullableModel: expected NullableColumn, got %T", col)
	}
	return m.Inner.Train(c.Inner)
}

func (m *NullableModel) Finalize() error { return m.Inner.Finalize() }
func (m *NullableModel) UpdateSeed()     { m.Inner.UpdateSeed() }

func (m *NullableModel) Generate(col ColumnView) (ColumnView, error) {
	c, ok := col.(*NullableColumn)
	if !ok {
		return nil, OB.Errorf(OB.ErrTypeMismatch, "NullableModel: expected NullableColumn, got %T", col)
	}
	newInner, err := m.Inner.Generate(c.Inner)
	if err != nil {
		return nil, err
	}
	nulls := make([]bool, len(c.Nulls))
	copy(nulls, c.Nulls)
	return &NullableColumn{Inner: newInner, Nulls: nulls}, nil
}

func (m *NullableModel) Serialize(w io.Writer) error   { return m.Inner.Serialize(w) }
func (m *NullableModel) Deserialize(r io.Reader) error { return m.Inner.Deserialize(r) }
