package obfuscate

import (
	"fmt"
	"testing"

	"github.com/sqlvibe/obfuscate/internal/OB"
)

func TestNewModelDispatchesScalarTypes(t *testing.T) {
	params := OB.DefaultMarkovModelParameters()
	cases := []struct {
		def  ColumnDef
		want string
	}{
		{ColumnDef{Name: "a", Type: TypeUInt32}, "*obfuscate.UnsignedIntegerModel"},
		{ColumnDef{Name: "b", Type: TypeInt64}, "*obfuscate.SignedIntegerModel"},
		{ColumnDef{Name: "c", Type: TypeFloat32}, "*obfuscate.Float32Model"},
		{ColumnDef{Name: "d", Type: TypeFloat64}, "*obfuscate.Float64Model"},
		{ColumnDef{Name: "e", Type: TypeDate}, "*obfuscate.IdentityModel"},
		{ColumnDef{Name: "f", Type: TypeDateTime}, "*obfuscate.DateTimeModel"},
		{ColumnDef{Name: "g", Type: TypeString}, "*obfuscate.StringModel"},
		{ColumnDef{Name: "h", Type: TypeFixedString, Width: 8}, "*obfuscate.FixedStringModel"},
		{ColumnDef{Name: "i", Type: TypeUUID}, "*obfuscate.UUIDModel"},
	}
	for _, c := range cases {
		m, err := NewModel(c.def, 1, params, nil)
		if err != nil {
			t.Fatalf("%s: %v", c.def.Name, err)
		}
		if got := fmt.Sprintf("%T", m); got != c.want {
			t.Errorf("%s: got model type %s, want %s", c.def.Name, got, c.want)
		}
	}
}

func TestNewModelArrayWrapsInner(t *testing.T) {
	def := ColumnDef{Name: "tags", Type: TypeArray, Inner: &ColumnDef{Type: TypeString}}
	m, err := NewModel(def, 1, OB.DefaultMarkovModelParameters(), nil)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if _, ok := m.(*ArrayModel); !ok {
		t.Fatalf("expected *ArrayModel, got %T", m)
	}
}

func TestNewModelNullableWrapsInner(t *testing.T) {
	def := ColumnDef{Name: "maybe", Type: TypeNullable, Inner: &ColumnDef{Type: TypeUInt8}}
	m, err := NewModel(def, 1, OB.DefaultMarkovModelParameters(), nil)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if _, ok := m.(*NullableModel); !ok {
		t.Fatalf("expected *NullableModel, got %T", m)
	}
}

func TestNewModelArrayPassesSeedThroughUnchanged(t *testing.T) {
	def := ColumnDef{Name: "tags", Type: TypeArray, Inner: &ColumnDef{Type: TypeUInt32}}
	m, err := NewModel(def, 5, OB.DefaultMarkovModelParameters(), nil)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	arr := m.(*ArrayModel)
	inner := arr.Inner.(*UnsignedIntegerModel)
	want := NewUnsignedIntegerModel(5)
	if inner.Seed != want.Seed {
		t.Fatalf("Array inner model seed = %d, want column seed %d unchanged", inner.Seed, want.Seed)
	}
}

func TestNewModelNullablePassesSeedThroughUnchanged(t *testing.T) {
	def := ColumnDef{Name: "maybe", Type: TypeNullable, Inner: &ColumnDef{Type: TypeUInt8}}
	m, err := NewModel(def, 5, OB.DefaultMarkovModelParameters(), nil)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	nul := m.(*NullableModel)
	inner := nul.Inner.(*UnsignedIntegerModel)
	want := NewUnsignedIntegerModel(5)
	if inner.Seed != want.Seed {
		t.Fatalf("Nullable inner model seed = %d, want column seed %d unchanged", inner.Seed, want.Seed)
	}
}

func TestNewModelArrayWithoutInnerFails(t *testing.T) {
	def := ColumnDef{Name: "broken", Type: TypeArray}
	if _, err := NewModel(def, 1, OB.DefaultMarkovModelParameters(), nil); err == nil {
		t.Fatal("expected an error for an Array column with no inner type")
	}
}

func TestNewModelUnsupportedType(t *testing.T) {
	def := ColumnDef{Name: "x", Type: DataType(999)}
	_, err := NewModel(def, 1, OB.DefaultMarkovModelParameters(), nil)
	if err == nil {
		t.Fatal("expected an error for an unsupported declared type")
	}
	if OB.CodeOf(err) != OB.ErrUnsupportedType {
		t.Fatalf("expected ErrUnsupportedType, got %v", OB.CodeOf(err))
	}
}
