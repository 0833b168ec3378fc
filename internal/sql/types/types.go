package types

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TypeID represents the internal ID of a data type
type TypeID uint16

const (
	TypeIDInvalid TypeID = iota
	TypeIDInteger
	TypeIDBigInt
	TypeIDSmallInt
	TypeIDBoolean
	TypeIDVarchar
	TypeIDText
	TypeIDFloat
	TypeIDDouble
)

var typeNames = map[TypeID]string{
	TypeIDInvalid:  "INVALID",
	TypeIDInteger:  "INTEGER",
	TypeIDBigInt:   "BIGINT",
	TypeIDSmallInt: "SMALLINT",
	TypeIDBoolean:  "BOOLEAN",
	TypeIDVarchar:  "VARCHAR",
	TypeIDText:     "TEXT",
	TypeIDFloat:    "FLOAT",
	TypeIDDouble:   "DOUBLE",
}

// Name returns the SQL name of the type (e.g., "INTEGER", "VARCHAR")
func (t TypeID) Name() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

func (t TypeID) String() string {
	return t.Name()
}

// ParseTypeID maps a SQL type name back to its TypeID.
func ParseTypeID(name string) (TypeID, error) {
	for id, n := range typeNames {
		if n == name {
			return id, nil
		}
	}
	return TypeIDInvalid, fmt.Errorf("unknown type name %q", name)
}

// MarshalJSON encodes the type by name.
func (t TypeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Name())
}

// UnmarshalJSON decodes a type name.
func (t *TypeID) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	id, err := ParseTypeID(name)
	if err != nil {
		return err
	}
	*t = id
	return nil
}

// Value represents a SQL value that can be NULL
type Value struct {
	Data interface{}
	Null bool
}

// NewValue creates a non-null value
func NewValue(data interface{}) Value {
	return Value{Data: data, Null: false}
}

// NewNullValue creates a null value
func NewNullValue() Value {
	return Value{Data: nil, Null: true}
}

// NewIntegerValue creates an INTEGER value.
func NewIntegerValue(v int32) Value { return NewValue(v) }

// NewBigIntValue creates a BIGINT value.
func NewBigIntValue(v int64) Value { return NewValue(v) }

// NewBooleanValue creates a BOOLEAN value.
func NewBooleanValue(v bool) Value { return NewValue(v) }

// NewTextValue creates a TEXT value.
func NewTextValue(v string) Value { return NewValue(v) }

// NewDoubleValue creates a DOUBLE value.
func NewDoubleValue(v float64) Value { return NewValue(v) }

// IsNull returns true if the value is NULL
func (v Value) IsNull() bool {
	return v.Null
}

// String returns a string representation of the value
func (v Value) String() string {
	if v.Null {
		return "NULL"
	}
	return fmt.Sprintf("%v", v.Data)
}

// TypeID returns the type of the value based on its underlying Go type.
// NULL values have no type.
func (v Value) TypeID() TypeID {
	if v.Null {
		return TypeIDInvalid
	}
	switch v.Data.(type) {
	case int16:
		return TypeIDSmallInt
	case int32:
		return TypeIDInteger
	case int64:
		return TypeIDBigInt
	case bool:
		return TypeIDBoolean
	case string:
		return TypeIDText
	case float32:
		return TypeIDFloat
	case float64:
		return TypeIDDouble
	default:
		return TypeIDInvalid
	}
}

// Equal reports structural equality. Two NULLs are equal here; this is
// identity of plan constants, not SQL three-valued comparison.
func (v Value) Equal(other Value) bool {
	if v.Null || other.Null {
		return v.Null == other.Null
	}
	typ := v.TypeID()
	if typ == TypeIDInvalid || typ != other.TypeID() {
		return false
	}
	return v.Data == other.Data
}

// AppendHash appends a canonical byte encoding of the value to buf.
func (v Value) AppendHash(buf []byte) []byte {
	if v.Null {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(v.TypeID()))
	switch d := v.Data.(type) {
	case int16:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(d))
	case int32:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(d))
	case int64:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(d))
	case bool:
		if d {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case string:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(d)))
		buf = append(buf, d...)
	case float32:
		// -0 == +0, so both must hash alike.
		if d == 0 {
			d = 0
		}
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(d))
	case float64:
		if d == 0 {
			d = 0
		}
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(d))
	}
	return buf
}

// Validate reports whether v can be held as a plan constant. Non-null data
// must have a supported Go type, and floats must be finite because NaN is
// not equal to itself and neither NaN nor infinity has a JSON encoding.
func (v Value) Validate() error {
	if v.Null {
		return nil
	}
	var f float64
	switch d := v.Data.(type) {
	case float32:
		f = float64(d)
	case float64:
		f = d
	default:
		if v.TypeID() == TypeIDInvalid {
			return fmt.Errorf("unsupported Go type %T", v.Data)
		}
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%s value %v is not finite", v.TypeID(), f)
	}
	return nil
}

// Hash returns the hash of the value.
func (v Value) Hash() uint64 {
	return xxhash.Sum64(v.AppendHash(nil))
}

type valueDocument struct {
	Type TypeID              `json:"type"`
	Null bool                `json:"null,omitempty"`
	Data jsoniter.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the value together with its type so that numeric
// widths survive a round trip.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Null {
		return json.Marshal(valueDocument{Null: true})
	}
	typ := v.TypeID()
	if typ == TypeIDInvalid {
		return nil, fmt.Errorf("cannot encode value of Go type %T", v.Data)
	}
	data, err := json.Marshal(v.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(valueDocument{Type: typ, Data: data})
}

// UnmarshalJSON decodes a value written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var doc valueDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Null {
		*v = NewNullValue()
		return nil
	}
	if len(doc.Data) == 0 {
		return fmt.Errorf("value of type %s has no data", doc.Type)
	}

	var decoded interface{}
	var err error
	switch doc.Type {
	case TypeIDSmallInt:
		var d int16
		err = json.Unmarshal(doc.Data, &d)
		decoded = d
	case TypeIDInteger:
		var d int32
		err = json.Unmarshal(doc.Data, &d)
		decoded = d
	case TypeIDBigInt:
		var d int64
		err = json.Unmarshal(doc.Data, &d)
		decoded = d
	case TypeIDBoolean:
		var d bool
		err = json.Unmarshal(doc.Data, &d)
		decoded = d
	case TypeIDText, TypeIDVarchar:
		var d string
		err = json.Unmarshal(doc.Data, &d)
		decoded = d
	case TypeIDFloat:
		var d float32
		err = json.Unmarshal(doc.Data, &d)
		decoded = d
	case TypeIDDouble:
		var d float64
		err = json.Unmarshal(doc.Data, &d)
		decoded = d
	default:
		return fmt.Errorf("unsupported value type %s", doc.Type)
	}
	if err != nil {
		return fmt.Errorf("invalid %s data: %w", doc.Type, err)
	}
	*v = NewValue(decoded)
	return nil
}
