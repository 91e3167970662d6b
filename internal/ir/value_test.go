package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalBinaryFolding(t *testing.T) {
	tests := []struct {
		name  string
		op    string
		left  Value
		right Value
		want  Value
	}{
		{"int addition", "+", Number(2), Number(3), Number(5)},
		{"string concatenation", "+", String("a"), Number(1), String("a1")},
		{"number then string", "+", Number(1.5), String("x"), String("1.5x")},
		{"bool addition", "+", Bool(true), Number(1), Number(2)},
		{"null addition", "+", Null(), Number(4), Number(4)},
		{"subtraction of numeric string", "-", String("10"), Number(4), Number(6)},
		{"division", "/", Number(7), Number(2), Number(3.5)},
		{"remainder keeps dividend sign", "%", Number(-7), Number(3), Number(-1)},
		{"power", "**", Number(2), Number(10), Number(1024)},
		{"less than", "<", Number(1), Number(2), Bool(true)},
		{"string ordering", "<", String("b"), String("a"), Bool(false)},
		{"numeric string ordering", ">", String("10"), Number(9), Bool(true)},
		{"loose equality across kinds", "==", String("1"), Number(1), Bool(true)},
		{"null equals undefined", "==", Null(), Undefined(), Bool(true)},
		{"null is not zero", "==", Null(), Number(0), Bool(false)},
		{"strict equality across kinds", "===", String("1"), Number(1), Bool(false)},
		{"strict inequality", "!==", Number(1), Number(2), Bool(true)},
		{"bitwise and", "&", Number(6), Number(3), Number(2)},
		{"bitwise or truncates", "|", Number(1.9), Number(0), Number(1)},
		{"xor", "^", Number(5), Number(1), Number(4)},
		{"shift left wraps", "<<", Number(1), Number(31), Number(-2147483648)},
		{"shift count masked", "<<", Number(1), Number(33), Number(2)},
		{"arithmetic shift", ">>", Number(-8), Number(1), Number(-4)},
		{"logical shift", ">>>", Number(-1), Number(0), Number(4294967295)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EvalBinary(tt.op, tt.left, tt.right)
			require.True(t, ok)
			assert.True(t, StrictEquals(tt.want, got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestEvalBinaryNaNComparisons(t *testing.T) {
	nan := Number(math.NaN())
	for _, op := range []string{"<", "<=", ">", ">="} {
		got, ok := EvalBinary(op, nan, Number(1))
		require.True(t, ok)
		assert.False(t, got.ToBoolean(), op)
	}

	got, _ := EvalBinary("==", nan, nan)
	assert.False(t, got.ToBoolean())
}

func TestEvalBinaryUnfoldable(t *testing.T) {
	_, ok := EvalBinary("instanceof", Number(1), Number(2))
	assert.False(t, ok)
}

func TestEvalUnary(t *testing.T) {
	tests := []struct {
		op   string
		in   Value
		want Value
	}{
		{"-", Number(3), Number(-3)},
		{"+", String("42"), Number(42)},
		{"!", String(""), Bool(true)},
		{"~", Number(0), Number(-1)},
		{"typeof", Null(), String("object")},
		{"typeof", Number(1), String("number")},
		{"void", Number(1), Undefined()},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			got, ok := EvalUnary(tt.op, tt.in)
			require.True(t, ok)
			assert.True(t, StrictEquals(tt.want, got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		5:            "5",
		-0.5:         "-0.5",
		0.1:          "0.1",
		1e21:         "1e+21",
		1.5e-7:       "1.5e-7",
		123456789012: "123456789012",
		math.Inf(-1): "-Infinity",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatNumber(in))
	}
	assert.Equal(t, "NaN", FormatNumber(math.NaN()))
}

func TestStringToNumber(t *testing.T) {
	assert.Equal(t, 0.0, String("  ").ToNumber())
	assert.Equal(t, 255.0, String("0xff").ToNumber())
	assert.Equal(t, 12.5, String(" 12.5\n").ToNumber())
	assert.Equal(t, math.Inf(-1), String("-Infinity").ToNumber())
	assert.True(t, math.IsNaN(String("12px").ToNumber()))
	assert.True(t, math.IsNaN(String("inf").ToNumber()))
	assert.True(t, math.IsNaN(Undefined().ToNumber()))
}

func TestValueType(t *testing.T) {
	assert.Equal(t, TypeInt32, Number(7).Type())
	assert.Equal(t, TypeFloat, Number(0.5).Type())
	assert.Equal(t, TypeFloat, Number(4294967295).Type())
	assert.Equal(t, TypeString, String("s").Type())
	assert.Equal(t, TypeBool, Bool(false).Type())
	assert.Equal(t, TypeObject, Null().Type())
	assert.Equal(t, TypeUndefined, Undefined().Type())
}

func TestFromJSON(t *testing.T) {
	v, err := FromJSON(float64(3))
	require.NoError(t, err)
	assert.True(t, StrictEquals(Number(3), v))

	v, err = FromJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, ValueNull, v.Kind())

	_, err = FromJSON(map[string]any{})
	require.Error(t, err)
}
