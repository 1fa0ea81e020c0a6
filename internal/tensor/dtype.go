// Package tensor provides the generic tensor type and the backend contract
// used by the sentiment classifier's numerical stack.
package tensor

// DType is a constraint for supported tensor element types.
//
// Floating point types carry activations and parameters, integer types carry
// token indices.
type DType interface {
	float32 | float64 | int32 | int64
}

// DataType is the runtime tag of a tensor's element type.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
)

// Size returns the byte size of one element.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	default:
		panic("unknown data type")
	}
}

// IsFloat reports whether the type is a floating point type.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	default:
		return "unknown"
	}
}

// ParseDataType is the inverse of DataType.String.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32":
		return Float32, true
	case "float64":
		return Float64, true
	case "int32":
		return Int32, true
	case "int64":
		return Int64, true
	default:
		return 0, false
	}
}

// DataTypeOf returns the runtime tag for T.
func DataTypeOf[T DType]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	default:
		panic("unsupported type")
	}
}
