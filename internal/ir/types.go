package ir

// Type is the static type tag the generator infers for a storage slot.
type Type uint8

const (
	// TypeUnknown selects the most general dynamic representation.
	TypeUnknown Type = iota
	TypeInt32
	TypeUint32
	TypeFloat
	TypeBool
	TypeString
	TypeObject
	TypeUndefined
)

var typeNames = [...]string{
	TypeUnknown:   "unknown",
	TypeInt32:     "int32",
	TypeUint32:    "uint32",
	TypeFloat:     "float",
	TypeBool:      "bool",
	TypeString:    "string",
	TypeObject:    "object",
	TypeUndefined: "undefined",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// IsInteger reports whether t is one of the 32-bit integer types.
func (t Type) IsInteger() bool {
	return t == TypeInt32 || t == TypeUint32
}

// Kind classifies a Var.
type Kind uint8

const (
	KindVar Kind = iota
	KindLet
	KindConst
	// KindCapture mirrors a Var owned by an enclosing method.
	KindCapture
	// KindCache binds a constant property of the method's this object.
	KindCache
)

var kindNames = [...]string{
	KindVar:     "var",
	KindLet:     "let",
	KindConst:   "const",
	KindCapture: "capture",
	KindCache:   "cache",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "var"
}

// ParseKind maps a declaration keyword to its Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "var":
		return KindVar, true
	case "let":
		return KindLet, true
	case "const":
		return KindConst, true
	}
	return KindVar, false
}
