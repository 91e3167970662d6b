package codegen

import "github.com/roach88/jsc/internal/ir"

var binaryNames = map[string]string{
	"+": "add", "-": "sub", "*": "mul", "%": "mod", "/": "div", "**": "pow",
	"<": "lt", "<=": "leq", ">": "gt", ">=": "geq",
	"==": "eq", "!=": "neq", "===": "seq", "!==": "sneq",
	"|": "or", "&": "and", "^": "xor",
	"<<": "shl", ">>": "shr", ">>>": "sru",
}

var unaryNames = map[string]string{
	"!": "not", "~": "bitnot", "-": "neg", "+": "pos", "typeof": "typeof",
}

// updateName names the runtime increment/decrement helper.
func updateName(op string, prefix bool) string {
	name := "inc"
	if op == "--" {
		name = "dec"
	}
	if prefix {
		return "pre" + name
	}
	return name
}

// cType is the C++ declaration type of a slot with static type t.
func cType(t ir.Type) string {
	switch t {
	case ir.TypeInt32:
		return "int32_t"
	case ir.TypeUint32:
		return "uint32_t"
	case ir.TypeFloat:
		return "js::Float"
	case ir.TypeString:
		return "js::BufferRef"
	case ir.TypeBool:
		return "bool"
	}
	return "js::Local"
}

func numeric(t ir.Type) bool {
	return t.IsInteger() || t == ir.TypeBool || t == ir.TypeFloat
}

func integral(t ir.Type) bool {
	return t.IsInteger() || t == ir.TypeBool
}

// binaryType infers the result type of l op r.
func binaryType(op string, l, r ir.Type) ir.Type {
	switch op {
	case "+":
		switch {
		case l == ir.TypeString || r == ir.TypeString:
			return ir.TypeString
		case !numeric(l) || !numeric(r):
			return ir.TypeUnknown
		case l == ir.TypeFloat || r == ir.TypeFloat:
			return ir.TypeFloat
		case l == ir.TypeUint32 && r == ir.TypeUint32:
			return ir.TypeUint32
		}
		return ir.TypeInt32
	case "-", "*", "%", "/":
		switch {
		case l == ir.TypeUint32 && r == ir.TypeUint32:
			return ir.TypeUint32
		case integral(l) && integral(r):
			return ir.TypeInt32
		}
		return ir.TypeFloat
	case "**":
		return ir.TypeFloat
	case "<", "<=", ">", ">=", "==", "!=", "===", "!==":
		return ir.TypeBool
	case ">>>":
		return ir.TypeUint32
	}
	return ir.TypeInt32
}

// unaryType infers the result type of a non-mutating unary operator.
func unaryType(op string) ir.Type {
	switch op {
	case "~":
		return ir.TypeInt32
	case "!":
		return ir.TypeBool
	case "typeof":
		return ir.TypeUnknown
	}
	return ir.TypeFloat
}
