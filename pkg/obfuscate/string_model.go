package obfuscate

import (
	"encoding/binary"
	"io"

	"github.com/sqlvibe/obfuscate/internal/OB"
)

// stringGenerateSlack is the factor by which the scratch generation
// buffer exceeds the desired (transformed) length, since the Markov walk may
// write a few bytes past desiredSize before the end-bias/word-boundary
// stop condition kicks in.
const stringGenerateSlack = 2

// StringModel obfuscates free-form strings with a trained mixed-order
// Markov model, so the obfuscated values look like the training corpus's
// language (word lengths, character frequencies, N-gram structure)
// without reproducing any single source string.
type StringModel struct {
	Seed  uint64
	Table *OB.Table
}

// NewStringModel creates a StringModel with an empty Markov table
// configured by params.
func NewStringModel(seed uint64, params OB.MarkovModelParameters) *StringModel {
	return &StringModel{Seed: seed, Table: OB.NewTable(params)}
}

func (m *StringModel) Train(col ColumnView) error {
	c, ok := col.(*StringColumn)
	if !ok {
		return OB.Errorf(OB.ErrTypeMismatch, "StringModel: expected StringColumn, got %T", col)
	}
	for _, s := range c.Values {
		m.Table.Consume([]byte(s))
	}
	return nil
}

func (m *StringModel) Finalize() error {
	m.Table.Finalize()
	return nil
}

func (m *StringModel) UpdateSeed() { m.Seed = OB.Hash(m.Seed) }

func (m *StringModel) Generate(col ColumnView) (ColumnView, error) {
	c, ok := col.(*StringColumn)
	if !ok {
		return nil, OB.Errorf(OB.ErrTypeMismatch, "StringModel: expected StringColumn, got %T", col)
	}
	out := make([]string, len(c.Values))
	for i, s := range c.Values {
		src := []byte(s)
		desired := int(OB.Transform(uint64(len(src)), m.Seed))
		if desired == 0 {
			out[i] = ""
			continue
		}
		buf := make([]byte, desired*stringGenerateSlack)
		n, err := m.Table.Generate(buf, desired, m.Seed, src)
		if err != nil {
			return nil, err
		}
		out[i] = string(buf[:n])
	}
	return &StringColumn{Values: out}, nil
}

func (m *StringModel) Serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, m.Seed); err != nil {
		return err
	}
	return m.Table.Serialize(w)
}

func (m *StringModel) Deserialize(r io.Reader) error {
	if err := binary.Read(r, binary.LittleEndian, &m.Seed); err != nil {
		return err
	}
	if m.Table == nil {
		m.Table = &OB.Table{}
	}
	return m.Table.Deserialize(r)
}
