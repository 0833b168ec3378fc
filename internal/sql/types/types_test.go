package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/quantaplan/internal/testutil"
)

func TestTypeIDNames(t *testing.T) {
	testutil.AssertEqual(t, "INTEGER", TypeIDInteger.Name())
	testutil.AssertEqual(t, "TEXT", TypeIDText.String())

	id, err := ParseTypeID("BIGINT")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, TypeIDBigInt, id)

	_, err = ParseTypeID("GEOMETRY")
	testutil.AssertError(t, err)
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same integer", NewIntegerValue(10), NewIntegerValue(10), true},
		{"different integer", NewIntegerValue(10), NewIntegerValue(11), false},
		{"integer vs bigint", NewIntegerValue(10), NewBigIntValue(10), false},
		{"both null", NewNullValue(), NewNullValue(), true},
		{"null vs value", NewNullValue(), NewTextValue(""), false},
		{"text", NewTextValue("abc"), NewTextValue("abc"), true},
		{"unsupported data", NewValue([]int{1}), NewValue([]int{1}), false},
		{"signed zero double", NewDoubleValue(0), NewDoubleValue(math.Copysign(0, -1)), true},
		{"signed zero float", NewValue(float32(0)), NewValue(float32(math.Copysign(0, -1))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			if tt.want {
				assert.Equal(t, tt.a.Hash(), tt.b.Hash())
			}
		})
	}
}

func TestValueJSONKeepsWidth(t *testing.T) {
	values := []Value{
		NewIntegerValue(-7),
		NewBigIntValue(1 << 40),
		NewBooleanValue(true),
		NewTextValue("it's"),
		NewDoubleValue(2.5),
		NewNullValue(),
	}

	for _, v := range values {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var decoded Value
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, v.Equal(decoded), "value %v decoded as %v", v, decoded)
		assert.Equal(t, v.TypeID(), decoded.TypeID())
	}
}

func TestValueJSONErrors(t *testing.T) {
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`{"type":"INTEGER"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"INTEGER","data":"x"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"BLOB","data":1}`), &v))

	_, err := json.Marshal(NewValue(struct{}{}))
	assert.Error(t, err)
}

func TestValueValidate(t *testing.T) {
	valid := []Value{
		NewNullValue(),
		NewIntegerValue(1),
		NewValue(int16(2)),
		NewTextValue(""),
		NewDoubleValue(math.Copysign(0, -1)),
		NewValue(float32(1.5)),
	}
	for _, v := range valid {
		assert.NoError(t, v.Validate(), "value %v", v)
	}

	invalid := []Value{
		NewValue(5),
		NewValue([]byte("x")),
		NewDoubleValue(math.NaN()),
		NewDoubleValue(math.Inf(-1)),
		NewValue(float32(math.Inf(1))),
	}
	for _, v := range invalid {
		assert.Error(t, v.Validate(), "value %v", v)
	}
}
