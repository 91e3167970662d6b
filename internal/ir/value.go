package ir

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ValueKind enumerates the primitive kinds a compile-time value can take.
type ValueKind uint8

const (
	ValueUndefined ValueKind = iota
	ValueNull
	ValueBool
	ValueNumber
	ValueString
)

// Value is a compile-time value with the source language's primitive
// semantics. The zero Value is undefined.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{} }

// Null returns the null value.
func Null() Value { return Value{kind: ValueNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: ValueBool, b: b} }

// Number wraps a double.
func Number(f float64) Value { return Value{kind: ValueNumber, num: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: ValueString, str: s} }

// FromJSON converts a decoded JSON scalar (as produced by encoding/json or
// yaml.v3) into a Value.
func FromJSON(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(val), nil
	case float64:
		return Number(val), nil
	case int:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case string:
		return String(val), nil
	default:
		return Value{}, fmt.Errorf("unsupported literal value of type %T", v)
	}
}

// Kind returns the value's primitive kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsString reports whether v holds a string.
func (v Value) IsString() bool { return v.kind == ValueString }

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.kind == ValueNumber }

// Type returns the primitive type a literal of this value is tagged with.
func (v Value) Type() Type {
	switch v.kind {
	case ValueNumber:
		if isInt32(v.num) {
			return TypeInt32
		}
		return TypeFloat
	case ValueBool:
		return TypeBool
	case ValueString:
		return TypeString
	case ValueNull:
		return TypeObject
	default:
		return TypeUndefined
	}
}

func isInt32(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f) &&
		f >= math.MinInt32 && f <= math.MaxInt32
}

// ToNumber applies the language's numeric conversion.
func (v Value) ToNumber() float64 {
	switch v.kind {
	case ValueNull:
		return 0
	case ValueBool:
		if v.b {
			return 1
		}
		return 0
	case ValueNumber:
		return v.num
	case ValueString:
		return stringToNumber(v.str)
	default:
		return math.NaN()
	}
}

// ToBoolean applies the language's truthiness rules.
func (v Value) ToBoolean() bool {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case ValueString:
		return v.str != ""
	default:
		return false
	}
}

// String returns the language's string conversion of v.
func (v Value) String() string {
	switch v.kind {
	case ValueNull:
		return "null"
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueNumber:
		return FormatNumber(v.num)
	case ValueString:
		return v.str
	default:
		return "undefined"
	}
}

// ToInt32 applies the 32-bit signed integer conversion used by bitwise operators.
func (v Value) ToInt32() int32 {
	return int32(v.ToUint32())
}

// ToUint32 applies the 32-bit unsigned integer conversion.
func (v Value) ToUint32() uint32 {
	f := v.ToNumber()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Mod(math.Trunc(f), 4294967296)
	if f < 0 {
		f += 4294967296
	}
	return uint32(f)
}

var jsWhitespace = " \t\n\v\f\r\u00a0\u1680\u2000\u2001\u2002\u2003\u2004\u2005\u2006\u2007\u2008\u2009\u200a\u2028\u2029\u202f\u205f\u3000\ufeff"

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func stringToNumber(s string) float64 {
	s = strings.Trim(s, jsWhitespace)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// FormatNumber renders a double the way the language's Number-to-String
// conversion does.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	exp = strings.TrimLeft(exp[1:], "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + string(sign) + exp
}

// StrictEquals implements ===.
func StrictEquals(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case ValueNumber:
		return a.num == b.num
	case ValueString:
		return a.str == b.str
	case ValueBool:
		return a.b == b.b
	default:
		return true
	}
}

// LooseEquals implements ==.
func LooseEquals(a, b Value) bool {
	if a.kind == b.kind {
		return StrictEquals(a, b)
	}
	nullish := func(v Value) bool { return v.kind == ValueNull || v.kind == ValueUndefined }
	if nullish(a) || nullish(b) {
		return nullish(a) && nullish(b)
	}
	// every remaining pairing compares numerically
	return a.ToNumber() == b.ToNumber()
}

// lessThan returns (a < b, defined). defined is false when a NaN is involved.
func lessThan(a, b Value) (bool, bool) {
	if a.kind == ValueString && b.kind == ValueString {
		return compareUTF16(a.str, b.str) < 0, true
	}
	x, y := a.ToNumber(), b.ToNumber()
	if math.IsNaN(x) || math.IsNaN(y) {
		return false, false
	}
	return x < y, true
}

// compareUTF16 orders strings by UTF-16 code units, as the language does
// for relational comparison and RFC 8785 does for object keys.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// EvalBinary evaluates a binary operator over two compile-time values. The
// second result is false for operators that cannot be folded.
func EvalBinary(op string, l, r Value) (Value, bool) {
	switch op {
	case "+":
		if l.kind == ValueString || r.kind == ValueString {
			return String(l.String() + r.String()), true
		}
		return Number(l.ToNumber() + r.ToNumber()), true
	case "-":
		return Number(l.ToNumber() - r.ToNumber()), true
	case "*":
		return Number(l.ToNumber() * r.ToNumber()), true
	case "/":
		return Number(l.ToNumber() / r.ToNumber()), true
	case "%":
		return Number(math.Mod(l.ToNumber(), r.ToNumber())), true
	case "**":
		x, y := l.ToNumber(), r.ToNumber()
		if math.IsNaN(y) || (math.Abs(x) == 1 && math.IsInf(y, 0)) {
			return Number(math.NaN()), true
		}
		return Number(math.Pow(x, y)), true
	case "<":
		lt, _ := lessThan(l, r)
		return Bool(lt), true
	case ">":
		gt, _ := lessThan(r, l)
		return Bool(gt), true
	case "<=":
		gt, ok := lessThan(r, l)
		return Bool(ok && !gt), true
	case ">=":
		lt, ok := lessThan(l, r)
		return Bool(ok && !lt), true
	case "==":
		return Bool(LooseEquals(l, r)), true
	case "!=":
		return Bool(!LooseEquals(l, r)), true
	case "===":
		return Bool(StrictEquals(l, r)), true
	case "!==":
		return Bool(!StrictEquals(l, r)), true
	case "&":
		return Number(float64(l.ToInt32() & r.ToInt32())), true
	case "|":
		return Number(float64(l.ToInt32() | r.ToInt32())), true
	case "^":
		return Number(float64(l.ToInt32() ^ r.ToInt32())), true
	case "<<":
		return Number(float64(l.ToInt32() << (r.ToUint32() & 31))), true
	case ">>":
		return Number(float64(l.ToInt32() >> (r.ToUint32() & 31))), true
	case ">>>":
		return Number(float64(l.ToUint32() >> (r.ToUint32() & 31))), true
	}
	return Value{}, false
}

// EvalUnary evaluates a non-mutating unary operator over a compile-time value.
func EvalUnary(op string, v Value) (Value, bool) {
	switch op {
	case "-":
		return Number(-v.ToNumber()), true
	case "+":
		return Number(v.ToNumber()), true
	case "!":
		return Bool(!v.ToBoolean()), true
	case "~":
		return Number(float64(^v.ToInt32())), true
	case "void":
		return Undefined(), true
	case "typeof":
		switch v.kind {
		case ValueUndefined:
			return String("undefined"), true
		case ValueNull:
			return String("object"), true
		case ValueBool:
			return String("boolean"), true
		case ValueNumber:
			return String("number"), true
		default:
			return String("string"), true
		}
	}
	return Value{}, false
}
