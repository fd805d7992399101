package obfuscate

import "github.com/sqlvibe/obfuscate/internal/OB"

// NewModel builds the Model for one declared column, dispatching on its
// DataType. Array and Nullable columns recurse into def.Inner to build
// their wrapped element model.
func NewModel(def ColumnDef, seed uint64, params OB.MarkovModelParameters, cal Calendar) (Model, error) {
	switch def.Type {
	case TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64:
		return NewUnsignedIntegerModel(seed), nil
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return NewSignedIntegerModel(seed), nil
	case TypeFloat32:
		return NewFloat32Model(seed), nil
	case TypeFloat64:
		return NewFloat64Model(seed), nil
	case TypeDate:
		return NewIdentityModel(), nil
	case TypeDateTime:
		return NewDateTimeModel(seed, cal), nil
	case TypeString:
		return NewStringModel(seed, params), nil
	case TypeFixedString:
		return NewFixedStringModel(seed), nil
	case TypeUUID:
		return NewUUIDModel(seed), nil
	case TypeArray:
		if def.Inner == nil {
			return nil, OB.Errorf(OB.ErrUnsupportedType, "NewModel: Array column %q has no inner type", def.Name)
		}
		inner, err := NewModel(*def.Inner, seed, params, cal)
		if err != nil {
			return nil, err
		}
		return NewArrayModel(inner), nil
	case TypeNullable:
		if def.Inner == nil {
			return nil, OB.Errorf(OB.ErrUnsupportedType, "NewModel: Nullable column %q has no inner type", def.Name)
		}
		inner, err := NewModel(*def.Inner, seed, params, cal)
		if err != nil {
			return nil, err
		}
		return NewNullableModel(inner), nil
	default:
		return nil, OB.Errorf(OB.ErrUnsupportedType, "NewModel: unsupported declared type %s for column %q", def.Type, def.Name)
	}
}
