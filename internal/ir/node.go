package ir

import "fmt"

// ID addresses a node in its Program's arena. The zero ID never names a node.
type ID uint32

// NoID is the absent reference.
const NoID ID = 0

// IsValid reports whether id names a node.
func (id ID) IsValid() bool { return id != NoID }

// Ref names the target of a LookUp: either a source-level name or, for
// synthesized references, the id of a specific Var/Method/Scope.
type Ref struct {
	Name string
	ID   ID
}

// ByName builds a name reference.
func ByName(name string) Ref { return Ref{Name: name} }

// ByID builds an identity reference.
func ByID(id ID) Ref { return Ref{ID: id} }

func (r Ref) String() string {
	if r.ID.IsValid() {
		return fmt.Sprintf("#%d", r.ID)
	}
	return r.Name
}

// Node is the closed set of IR variants. Only types declared in this
// package can satisfy it.
type Node interface {
	ID() ID
	Parent() ID
	Loc() Location
	SetLoc(Location)
	Program() *Program
	node() *header
}

type header struct {
	id     ID
	parent ID
	loc    Location
	prog   *Program
}

func (h *header) ID() ID              { return h.id }
func (h *header) Parent() ID          { return h.parent }
func (h *header) Loc() Location       { return h.loc }
func (h *header) SetLoc(loc Location) { h.loc = loc }
func (h *header) Program() *Program   { return h.prog }
func (h *header) node() *header       { return h }

// Pop discards the top of the operand stack.
type Pop struct{ header }

// Deref resolves the pending reference on top of the operand stack.
type Deref struct{ header }

// Return leaves the current method, with the top of stack when HasValue.
type Return struct {
	header
	HasValue bool
}

// Break jumps to the exit of Target.
type Break struct {
	header
	Target ID
}

// Continue jumps to the per-iteration step of Target.
type Continue struct {
	header
	Target ID
}

// ArrayLiteral pops Length elements and pushes a new array.
type ArrayLiteral struct {
	header
	Length int
}

// ObjectLiteral pops Length key/value pairs and pushes a new object.
type ObjectLiteral struct {
	header
	Length    int
	Construct bool
}

// Call pops Argc arguments and a callee.
type Call struct {
	header
	Argc          int
	IsNew         bool
	IsForward     bool
	DiscardResult bool
}

// Assign pops a value and a LookUp and stores through the LookUp.
// Only an Init assign may store into a const.
type Assign struct {
	header
	Op   string
	Init bool
}

// Binary pops two operands and pushes the result. The "." and "[]"
// operators produce a property LookUp instead of a value.
type Binary struct {
	header
	Op string
}

// Unary pops one operand and pushes the result.
type Unary struct {
	header
	Op     string
	Prefix bool
}

// LookUp is a pending reference. With no Container it resolves lexically
// from its parent scope; otherwise it names the Key property of Container.
type LookUp struct {
	header
	Ref       Ref
	Container ID
	Key       ID
}

// IsProperty reports whether the LookUp addresses an object property.
func (l *LookUp) IsProperty() bool { return l.Container.IsValid() && l.Key.IsValid() }

// Literal carries a compile-time value.
type Literal struct {
	header
	Value Value
}

// Type is the primitive type tag of the literal's value.
func (l *Literal) Type() Type { return l.Value.Type() }
