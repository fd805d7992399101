// Package obfuscate implements a deterministic, statistics-preserving
// obfuscator for tabular datasets: the same (seed, schema, values) always
// produces the same obfuscated output, and common aggregate properties of
// each column (cardinality, magnitude distribution, string length
// distribution, null/zero probability, calendar date, UTF-8 validity) are
// preserved without revealing the original values.
package obfuscate

import "github.com/google/uuid"

// DataType names a declared column type for schema and dispatch purposes.
type DataType int

const (
	TypeUInt8 DataType = iota
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeDate
	TypeDateTime
	TypeString
	TypeFixedString
	TypeUUID
	TypeArray
	TypeNullable
)

func (t DataType) String() string {
	switch t {
	case TypeUInt8:
		return "UInt8"
	case TypeUInt16:
		return "UInt16"
	case TypeUInt32:
		return "UInt32"
	case TypeUInt64:
		return "UInt64"
	case TypeInt8:
		return "Int8"
	case TypeInt16:
		return "Int16"
	case TypeInt32:
		return "Int32"
	case TypeInt64:
		return "Int64"
	case TypeFloat32:
		return "Float32"
	case TypeFloat64:
		return "Float64"
	case TypeDate:
		return "Date"
	case TypeDateTime:
		return "DateTime"
	case TypeString:
		return "String"
	case TypeFixedString:
		return "FixedString"
	case TypeUUID:
		return "UUID"
	case TypeArray:
		return "Array"
	case TypeNullable:
		return "Nullable"
	default:
		return "Unknown"
	}
}

// ColumnDef names one column of a Schema.
type ColumnDef struct {
	Name string
	Type DataType
	// Width is the declared byte width of a FixedString column; ignored
	// for every other type.
	Width int
	// Inner is the element type of an Array or Nullable column.
	Inner *ColumnDef
}

// Schema is an ordered list of column definitions.
type Schema struct {
	Columns []ColumnDef
}

// ColumnView is implemented by every concrete column type. Len reports
// the row count, including nulls (a NullableColumn counts the entries of
// its null mask; its inner column holds one value per row, null or not —
// see NullableColumn).
type ColumnView interface {
	Len() int
	DataType() DataType
}

type UInt8Column struct{ Values []uint8 }

func (c *UInt8Column) Len() int { return len(c.Values) }
func (c *UInt8Column) DataType() DataType { return TypeUInt8 }

type UInt16Column struct{ Values []uint16 }

func (c *UInt16Column) Len() int { return len(c.Values) }
func (c *UInt16Column) DataType() DataType { return TypeUInt16 }

type UInt32Column struct{ Values []uint32 }

func (c *UInt32Column) Len() int { return len(c.Values) }
func (c *UInt32Column) DataType() DataType { return TypeUInt32 }

type UInt64Column struct{ Values []uint64 }

func (c *UInt64Column) Len() int { return len(c.Values) }
func (c *UInt64Column) DataType() DataType { return TypeUInt64 }

type Int8Column struct{ Values []int8 }

func (c *Int8Column) Len() int { return len(c.Values) }
func (c *Int8Column) DataType() DataType { return TypeInt8 }

type Int16Column struct{ Values []int16 }

func (c *Int16Column) Len() int { return len(c.Values) }
func (c *Int16Column) DataType() DataType { return TypeInt16 }

type Int32Column struct{ Values []int32 }

func (c *Int32Column) Len() int { return len(c.Values) }
func (c *Int32Column) DataType() DataType { return TypeInt32 }

type Int64Column struct{ Values []int64 }

func (c *Int64Column) Len() int { return len(c.Values) }
func (c *Int64Column) DataType() DataType { return TypeInt64 }

type Float32Column struct{ Values []float32 }

func (c *Float32Column) Len() int { return len(c.Values) }
func (c *Float32Column) DataType() DataType { return TypeFloat32 }

type Float64Column struct{ Values []float64 }

func (c *Float64Column) Len() int { return len(c.Values) }
func (c *Float64Column) DataType() DataType { return TypeFloat64 }

// DateColumn stores day-precision dates as days since the Unix epoch.
type DateColumn struct{ Values []int32 }

func (c *DateColumn) Len() int { return len(c.Values) }
func (c *DateColumn) DataType() DataType { return TypeDate }

// DateTimeColumn stores second-precision timestamps as seconds since the
// Unix epoch.
type DateTimeColumn struct{ Values []uint32 }

func (c *DateTimeColumn) Len() int { return len(c.Values) }
func (c *DateTimeColumn) DataType() DataType { return TypeDateTime }

// StringColumn stores variable-length strings.
type StringColumn struct{ Values []string }

func (c *StringColumn) Len() int { return len(c.Values) }
func (c *StringColumn) DataType() DataType { return TypeString }

// FixedStringColumn stores N rows of exactly Width bytes each, packed
// contiguously in Data (length N*Width).
type FixedStringColumn struct {
	Width int
	Data  []byte
}

func (c *FixedStringColumn) Len() int {
	if c.Width == 0 {
		return 0
	}
	return len(c.Data) / c.Width
}
func (c *FixedStringColumn) DataType() DataType { return TypeFixedString }

// Row returns row i's bytes as a sub-slice of Data (not a copy).
func (c *FixedStringColumn) Row(i int) []byte {
	return c.Data[i*c.Width : (i+1)*c.Width]
}

// UUIDColumn stores parsed UUID values.
type UUIDColumn struct{ Values []uuid.UUID }

func (c *UUIDColumn) Len() int { return len(c.Values) }
func (c *UUIDColumn) DataType() DataType { return TypeUUID }

// ArrayColumn is a variable-length array of an inner column type. Offsets
// has length Len()+1; element i occupies Inner rows [Offsets[i],
// Offsets[i+1]).
type ArrayColumn struct {
	Inner   ColumnView
	Offsets []int
}

func (c *ArrayColumn) Len() int {
	if len(c.Offsets) == 0 {
		return 0
	}
	return len(c.Offsets) - 1
}
func (c *ArrayColumn) DataType() DataType { return TypeArray }

// NullableColumn wraps an inner column with a per-row null mask. Inner
// holds a value (possibly a zero value) for every row, null or not, so
// that Inner.Len() always equals len(Nulls).
type NullableColumn struct {
	Inner ColumnView
	Nulls []bool
}

func (c *NullableColumn) Len() int { return len(c.Nulls) }
func (c *NullableColumn) DataType() DataType { return TypeNullable }
