package obfuscate

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sqlvibe/obfuscate/internal/OB"
	"github.com/sqlvibe/obfuscate/internal/log"
)

// formatVersion is the persisted model stream's version byte. Bumping it
// is a breaking change to every stream written so far.
const formatVersion uint8 = 0

// typeSignature renders a column's declared type as the string the
// persisted stream records for it, e.g. "FixedString(16)",
// "Array(UInt32)", "Nullable(String)". Deserialize compares this against
// the current schema to catch a loaded model being applied to the wrong
// table shape.
func typeSignature(def ColumnDef) string {
	switch def.Type {
	case TypeFixedString:
		return fmt.Sprintf("FixedString(%d)", def.Width)
	case TypeArray:
		return fmt.Sprintf("Array(%s)", typeSignature(*def.Inner))
	case TypeNullable:
		return fmt.Sprintf("Nullable(%s)", typeSignature(*def.Inner))
	default:
		return def.Type.String()
	}
}

// Obfuscator trains and applies one Model per column of a Schema,
// fanning Train/Finalize/Generate/UpdateSeed calls across all of them
// and framing their combined state for persistence.
type Obfuscator struct {
	Schema   Schema
	RootSeed uint64
	Params   OB.MarkovModelParameters
	Calendar Calendar
	Logger   *log.Logger

	models     []Model
	sourceRows uint64
}

// NewObfuscator builds an Obfuscator with a freshly constructed Model per
// column of schema, seeded from rootSeed via ColumnSeed. cal and logger
// may both be nil (cal defaults to UTCCalendar{}; logger disables
// progress notices).
func NewObfuscator(schema Schema, rootSeed uint64, params OB.MarkovModelParameters, cal Calendar, logger *log.Logger) (*Obfuscator, error) {
	if cal == nil {
		cal = UTCCalendar{}
	}
	models := make([]Model, len(schema.Columns))
	for i, def := range schema.Columns {
		seed := ColumnSeed(rootSeed, def.Name)
		m, err := NewModel(def, seed, params, cal)
		if err != nil {
			return nil, err
		}
		models[i] = m
	}
	return &Obfuscator{
		Schema:   schema,
		RootSeed: rootSeed,
		Params:   params,
		Calendar: cal,
		Logger:   logger,
		models:   models,
	}, nil
}

// SourceRows reports the total row count trained so far.
func (o *Obfuscator) SourceRows() uint64 { return o.sourceRows }

// Train folds one batch of columns (same order as Schema.Columns) into
// every column's model.
func (o *Obfuscator) Train(cols []ColumnView) error {
	if len(cols) != len(o.models) {
		return OB.Errorf(OB.ErrSchemaMismatch, "Train: expected %d columns, got %d", len(o.models), len(cols))
	}
	if len(cols) > 0 {
		o.sourceRows += uint64(cols[0].Len())
	}
	for i, c := range cols {
		if err := o.models[i].Train(c); err != nil {
			return err
		}
		if o.Logger != nil {
			o.Logger.Debugf("trained column %q (%d rows)", o.Schema.Columns[i].Name, c.Len())
		}
	}
	return nil
}

// Finalize finalizes every column's model. Call once, after all Train
// calls, before the first Generate call.
func (o *Obfuscator) Finalize() error {
	for i, m := range o.models {
		if err := m.Finalize(); err != nil {
			return err
		}
		if o.Logger != nil {
			o.Logger.Infof("finalized column %q", o.Schema.Columns[i].Name)
		}
	}
	return nil
}

// Generate produces one obfuscated column per input column, in the same
// order as Schema.Columns.
func (o *Obfuscator) Generate(cols []ColumnView) ([]ColumnView, error) {
	if len(cols) != len(o.models) {
		return nil, OB.Errorf(OB.ErrSchemaMismatch, "Generate: expected %d columns, got %d", len(o.models), len(cols))
	}
	out := make([]ColumnView, len(cols))
	for i, c := range cols {
		g, err := o.models[i].Generate(c)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// UpdateSeed rotates every column's model seed, so a subsequent Generate
// pass over the same source columns doesn't reproduce prior output.
func (o *Obfuscator) UpdateSeed() {
	for _, m := range o.models {
		m.UpdateSeed()
	}
	if o.Logger != nil {
		o.Logger.Infof("rotated seeds for %d columns", len(o.models))
	}
}

func writeLengthPrefixedString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readLengthPrefixedString(r io.Reader) (string, error) {
	var length uint64
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Serialize writes the version byte, source row count, column count,
// each column's type signature, and finally each column's model state in
// schema order.
func (o *Obfuscator) Serialize(w io.Writer) error {
	if _, err := w.Write([]byte{formatVersion}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, o.sourceRows); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(o.Schema.Columns))); err != nil {
		return err
	}
	for _, def := range o.Schema.Columns {
		if err := writeLengthPrefixedString(w, typeSignature(def)); err != nil {
			return err
		}
	}
	for _, m := range o.models {
		if err := m.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads a stream written by Serialize into this Obfuscator,
// which must already have been constructed (via NewObfuscator) against
// the schema the stream is expected to match. A version, column-count, or
// type-signature mismatch is reported as ErrFormatVersion/
// ErrSchemaMismatch without touching any model state.
func (o *Obfuscator) Deserialize(r io.Reader) error {
	var version [1]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return err
	}
	if version[0] != formatVersion {
		return OB.Errorf(OB.ErrFormatVersion, "obfuscate: unknown format version %d", version[0])
	}

	var sourceRows uint64
	if err := binary.Read(r, binary.LittleEndian, &sourceRows); err != nil {
		return err
	}

	var columnCount uint64
	if err := binary.Read(r, binary.LittleEndian, &columnCount); err != nil {
		return err
	}
	if int(columnCount) != len(o.Schema.Columns) {
		return OB.Errorf(OB.ErrSchemaMismatch, "obfuscate: stream has %d columns, schema has %d", columnCount, len(o.Schema.Columns))
	}

	for i, def := range o.Schema.Columns {
		sig, err := readLengthPrefixedString(r)
		if err != nil {
			return err
		}
		want := typeSignature(def)
		if sig != want {
			return OB.Errorf(OB.ErrSchemaMismatch, "obfuscate: column %d (%s): stream type %q != schema type %q", i, def.Name, sig, want)
		}
	}

	for _, m := range o.models {
		if err := m.Deserialize(r); err != nil {
			return err
		}
	}

	o.sourceRows = sourceRows
	return nil
}
