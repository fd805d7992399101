package obfuscate

import (
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sqlvibe/obfuscate/internal/OB"
)

// IdentityModel passes its input through unchanged. It is used for
// columns whose values must never be permuted at all (Date columns: the
// calendar-date invariant requires the date itself survive exactly, and
// DateTimeModel already handles the time-of-day component separately).
type IdentityModel struct{}

func NewIdentityModel() *IdentityModel { return &IdentityModel{} }

func (*IdentityModel) Train(ColumnView) error   { return nil }
func (*IdentityModel) Finalize() error          { return nil }
func (*IdentityModel) UpdateSeed()              {}
func (*IdentityModel) Serialize(io.Writer) error { return nil }
func (*IdentityModel) Deserialize(io.Reader) error { return nil }

func (*IdentityModel) Generate(col ColumnView) (ColumnView, error) {
	switch c := col.(type) {
	case *DateColumn:
		out := make([]int32, len(c.Values))
		copy(out, c.Values)
		return &DateColumn{Values: out}, nil
	case *DateTimeColumn:
		out := make([]uint32, len(c.Values))
		copy(out, c.Values)
		return &DateTimeColumn{Values: out}, nil
	default:
		return nil, OB.Errorf(OB.ErrTypeMismatch, "IdentityModel: unsupported column type %T", col)
	}
}

// UnsignedIntegerModel applies the magnitude-class-preserving Transform
// permutation to every value of an unsigned integer column.
type UnsignedIntegerModel struct {
	Seed uint64
}

func NewUnsignedIntegerModel(seed uint64) *UnsignedIntegerModel {
	return &UnsignedIntegerModel{Seed: seed}
}

func (m *UnsignedIntegerModel) Train(ColumnView) error { return nil }
func (m *UnsignedIntegerModel) Finalize() error        { return nil }
func (m *UnsignedIntegerModel) UpdateSeed()            { m.Seed = OB.Hash(m.Seed) }

func (m *UnsignedIntegerModel) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, m.Seed)
}

func (m *UnsignedIntegerModel) Deserialize(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, &m.Seed)
}

func (m *UnsignedIntegerModel) Generate(col ColumnView) (ColumnView, error) {
	switch c := col.(type) {
	case *UInt8Column:
		out := make([]uint8, len(c.Values))
		for i, v := range c.Values {
			out[i] = uint8(OB.Transform(uint64(v), m.Seed))
		}
		return &UInt8Column{Values: out}, nil
	case *UInt16Column:
		out := make([]uint16, len(c.Values))
		for i, v := range c.Values {
			out[i] = uint16(OB.Transform(uint64(v), m.Seed))
		}
		return &UInt16Column{Values: out}, nil
	case *UInt32Column:
		out := make([]uint32, len(c.Values))
		for i, v := range c.Values {
			out[i] = uint32(OB.Transform(uint64(v), m.Seed))
		}
		return &UInt32Column{Values: out}, nil
	case *UInt64Column:
		out := make([]uint64, len(c.Values))
		for i, v := range c.Values {
			out[i] = OB.Transform(v, m.Seed)
		}
		return &UInt64Column{Values: out}, nil
	default:
		return nil, OB.Errorf(OB.ErrTypeMismatch, "UnsignedIntegerModel: unsupported column type %T", col)
	}
}

// SignedIntegerModel is the sign-preserving counterpart of
// UnsignedIntegerModel.
type SignedIntegerModel struct {
	Seed uint64
}

func NewSignedIntegerModel(seed uint64) *SignedIntegerModel {
	return &SignedIntegerModel{Seed: seed}
}

func (m *SignedIntegerModel) Train(ColumnView) error { return nil }
func (m *SignedIntegerModel) Finalize() error        { return nil }
func (m *SignedIntegerModel) UpdateSeed()            { m.Seed = OB.Hash(m.Seed) }

func (m *SignedIntegerModel) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, m.Seed)
}

func (m *SignedIntegerModel) Deserialize(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, &m.Seed)
}

func (m *SignedIntegerModel) Generate(col ColumnView) (ColumnView, error) {
	switch c := col.(type) {
	case *Int8Column:
		out := make([]int8, len(c.Values))
		for i, v := range c.Values {
			out[i] = int8(OB.TransformSigned(int64(v), m.Seed))
		}
		return &Int8Column{Values: out}, nil
	case *Int16Column:
		out := make([]int16, len(c.Values))
		for i, v := range c.Values {
			out[i] = int16(OB.TransformSigned(int64(v), m.Seed))
		}
		return &Int16Column{Values: out}, nil
	case *Int32Column:
		out := make([]int32, len(c.Values))
		for i, v := range c.Values {
			out[i] = int32(OB.TransformSigned(int64(v), m.Seed))
		}
		return &Int32Column{Values: out}, nil
	case *Int64Column:
		out := make([]int64, len(c.Values))
		for i, v := range c.Values {
			out[i] = OB.TransformSigned(v, m.Seed)
		}
		return &Int64Column{Values: out}, nil
	default:
		return nil, OB.Errorf(OB.ErrTypeMismatch, "SignedIntegerModel: unsupported column type %T", col)
	}
}

type floatBits interface{ ~float32 | ~float64 }

func floatMantissaTransform[F floatBits](v F, seed uint64) F {
	switch x := any(v).(type) {
	case float32:
		return any(math.Float32frombits(OB.TransformMantissa32(math.Float32bits(x), seed))).(F)
	case float64:
		return any(math.Float64frombits(OB.TransformMantissa64(math.Float64bits(x), seed))).(F)
	default:
		panic("obfuscate: unsupported float type")
	}
}

// floatWalk carries the delta-from-previous-value continuity state a
// FloatModel needs: the transformed output is the previous output plus a
// mantissa-permuted version of (current - previous), so that locally
// similar source values (small deltas) produce locally similar output.
type floatWalk[F floatBits] struct {
	seed    uint64
	srcPrev F
	resPrev F
}

func (w *floatWalk[F]) next(src F) F {
	f := float64(src)
	if math.IsNaN(f) {
		return src
	}
	delta := src - w.srcPrev
	var res F
	d := float64(delta)
	if !math.IsNaN(d) && !math.IsInf(d, 0) {
		res = w.resPrev + floatMantissaTransform(delta, w.seed)
	} else {
		res = floatMantissaTransform(src, w.seed)
	}
	w.srcPrev = src
	w.resPrev = res
	return res
}

func (w *floatWalk[F]) generate(src []F) []F {
	out := make([]F, len(src))
	for i, v := range src {
		out[i] = w.next(v)
	}
	return out
}

// Float32Model is the float32 instantiation of the generic delta-walk
// mantissa transform.
type Float32Model struct {
	walk floatWalk[float32]
}

func NewFloat32Model(seed uint64) *Float32Model {
	return &Float32Model{walk: floatWalk[float32]{seed: seed}}
}

func (m *Float32Model) Train(ColumnView) error { return nil }
func (m *Float32Model) Finalize() error        { return nil }
func (m *Float32Model) UpdateSeed()            { m.walk.seed = OB.Hash(m.walk.seed) }

func (m *Float32Model) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, m.walk.seed)
}

func (m *Float32Model) Deserialize(r io.Reader) error {
	m.walk = floatWalk[float32]{}
	return binary.Read(r, binary.LittleEndian, &m.walk.seed)
}

func (m *Float32Model) Generate(col ColumnView) (ColumnView, error) {
	c, ok := col.(*Float32Column)
	if !ok {
		return nil, OB.Errorf(OB.ErrTypeMismatch, "Float32Model: expected Float32Column, got %T", col)
	}
	return &Float32Column{Values: m.walk.generate(c.Values)}, nil
}

// Float64Model is the float64 instantiation of the generic delta-walk
// mantissa transform.
type Float64Model struct {
	walk floatWalk[float64]
}

func NewFloat64Model(seed uint64) *Float64Model {
	return &Float64Model{walk: floatWalk[float64]{seed: seed}}
}

func (m *Float64Model) Train(ColumnView) error { return nil }
func (m *Float64Model) Finalize() error        { return nil }
func (m *Float64Model) UpdateSeed()            { m.walk.seed = OB.Hash(m.walk.seed) }

func (m *Float64Model) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, m.walk.seed)
}

func (m *Float64Model) Deserialize(r io.Reader) error {
	m.walk = floatWalk[float64]{}
	return binary.Read(r, binary.LittleEndian, &m.walk.seed)
}

func (m *Float64Model) Generate(col ColumnView) (ColumnView, error) {
	c, ok := col.(*Float64Column)
	if !ok {
		return nil, OB.Errorf(OB.ErrTypeMismatch, "Float64Model: expected Float64Column, got %T", col)
	}
	return &Float64Column{Values: m.walk.generate(c.Values)}, nil
}

// DateTimeModel leaves the calendar date of every timestamp as is (per
// Calendar) and applies a pseudorandom permutation to the time
// difference from the previous row's value, within the same log2
// magnitude class, so that locally close source timestamps (e.g.
// consecutive log lines) stay locally close in the output.
type DateTimeModel struct {
	Seed     uint64
	Calendar Calendar
	srcPrev  uint32
	resPrev  uint32
}

func NewDateTimeModel(seed uint64, cal Calendar) *DateTimeModel {
	if cal == nil {
		cal = UTCCalendar{}
	}
	return &DateTimeModel{Seed: seed, Calendar: cal}
}

func (m *DateTimeModel) Train(ColumnView) error { return nil }
func (m *DateTimeModel) Finalize() error        { return nil }
func (m *DateTimeModel) UpdateSeed()            { m.Seed = OB.Hash(m.Seed) }

func (m *DateTimeModel) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, m.Seed)
}

func (m *DateTimeModel) Deserialize(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, &m.Seed)
}

const secondsPerDay = 86400

func (m *DateTimeModel) Generate(col ColumnView) (ColumnView, error) {
	c, ok := col.(*DateTimeColumn)
	if !ok {
		return nil, OB.Errorf(OB.ErrTypeMismatch, "DateTimeModel: expected DateTimeColumn, got %T", col)
	}
	out := make([]uint32, len(c.Values))
	for i, v := range c.Values {
		srcDate := uint32(m.Calendar.StartOfDay(time.Unix(int64(v), 0).UTC()).Unix())

		srcDiff := int64(int32(v - m.srcPrev))
		resDiff := int32(OB.TransformSigned(srcDiff, m.Seed))

		newDatetime := m.resPrev + uint32(resDiff)
		newDate := uint32(m.Calendar.StartOfDay(time.Unix(int64(newDatetime), 0).UTC()).Unix())
		newTime := newDatetime - newDate
		out[i] = srcDate + newTime

		m.srcPrev = v
		m.resPrev = out[i]
	}
	return &DateTimeColumn{Values: out}, nil
}

// fixedStringWordChars is the 64-entry overlay alphabet used to keep
// word-like positions of a FixedString looking word-like after
// obfuscation (digit/letter/underscore bytes in the source map to a byte
// from this alphabet, not an arbitrary hash byte). Every entry is a word
// character; '0' appears twice, which makes the alphabet 64 entries long.
const fixedStringWordChars = "_01234567890abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func isWordCharASCII(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// transformFixedString obfuscates one fixed-width row. Rows are filled
// left to right with successive 128-bit digest chunks; once fewer than
// 16 bytes remain, the last chunk is written tail-aligned to the row's
// end for rows of 16 bytes or more (so it may overlap the previous
// chunk — the overlapping write wins), and truncated in place for rows
// under 16 bytes (there is no previous chunk to align against). A final
// pass overlays word-looking bytes from fixedStringWordChars so strings
// that looked like words still do.
func transformFixedString(src []byte, seed uint64) []byte {
	size := len(src)
	dst := make([]byte, size)
	rowSeed := OB.Hash(seed, src)

	pos := 0
	for i := uint64(0); pos < size; i++ {
		lo, hi := OB.Hash128(rowSeed, i)
		var checksum [16]byte
		binary.LittleEndian.PutUint64(checksum[0:8], lo)
		binary.LittleEndian.PutUint64(checksum[8:16], hi)

		if size >= 16 {
			hashDst := pos
			if end := size - 16; hashDst > end {
				hashDst = end
			}
			copy(dst[hashDst:hashDst+16], checksum[:])
		} else {
			copy(dst[0:size], checksum[:size])
		}
		pos += 16
	}

	for j := 0; j < size; j++ {
		if isWordCharASCII(src[j]) {
			dst[j] = fixedStringWordChars[int(dst[j])%len(fixedStringWordChars)]
		}
	}
	return dst
}

// FixedStringModel obfuscates fixed-width byte rows.
type FixedStringModel struct {
	Seed uint64
}

func NewFixedStringModel(seed uint64) *FixedStringModel {
	return &FixedStringModel{Seed: seed}
}

func (m *FixedStringModel) Train(ColumnView) error { return nil }
func (m *FixedStringModel) Finalize() error        { return nil }
func (m *FixedStringModel) UpdateSeed()            { m.Seed = OB.Hash(m.Seed) }

func (m *FixedStringModel) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, m.Seed)
}

func (m *FixedStringModel) Deserialize(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, &m.Seed)
}

func (m *FixedStringModel) Generate(col ColumnView) (ColumnView, error) {
	c, ok := col.(*FixedStringColumn)
	if !ok {
		return nil, OB.Errorf(OB.ErrTypeMismatch, "FixedStringModel: expected FixedStringColumn, got %T", col)
	}
	n := c.Len()
	out := &FixedStringColumn{Width: c.Width, Data: make([]byte, len(c.Data))}
	for i := 0; i < n; i++ {
		row := transformFixedString(c.Row(i), m.Seed)
		copy(out.Data[i*c.Width:(i+1)*c.Width], row)
	}
	return out, nil
}

// UUIDModel obfuscates UUID values while preserving their version and
// variant nibbles, so obfuscated values remain well-formed UUIDs of the
// same version as their source.
type UUIDModel struct {
	Seed uint64
}

func NewUUIDModel(seed uint64) *UUIDModel { return &UUIDModel{Seed: seed} }

func (m *UUIDModel) Train(ColumnView) error { return nil }
func (m *UUIDModel) Finalize() error        { return nil }
func (m *UUIDModel) UpdateSeed()            { m.Seed = OB.Hash(m.Seed) }

func (m *UUIDModel) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, m.Seed)
}

func (m *UUIDModel) Deserialize(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, &m.Seed)
}

const (
	uuidVersionMask = uint64(0x000000000000f000)
	uuidVariantMask = uint64(0xe000000000000000)
)

func transformUUID(id uuid.UUID, seed uint64) uuid.UUID {
	hi := binary.BigEndian.Uint64(id[0:8])
	lo := binary.BigEndian.Uint64(id[8:16])

	newHi, newLo := OB.Hash128(seed, hi, lo)
	newHi = (newHi &^ uuidVersionMask) | (hi & uuidVersionMask)
	newLo = (newLo &^ uuidVariantMask) | (lo & uuidVariantMask)

	var out uuid.UUID
	binary.BigEndian.PutUint64(out[0:8], newHi)
	binary.BigEndian.PutUint64(out[8:16], newLo)
	return out
}

func (m *UUIDModel) Generate(col ColumnView) (ColumnView, error) {
	c, ok := col.(*UUIDColumn)
	if !ok {
		return nil, OB.Errorf(OB.ErrTypeMismatch, "UUIDModel: expected UUIDColumn, got %T", col)
	}
	out := make([]uuid.UUID, len(c.Values))
	for i, v := range c.Values {
		out[i] = transformUUID(v, m.Seed)
	}
	return &UUIDColumn{Values: out}, nil
}
