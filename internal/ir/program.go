package ir

import (
	"slices"

	"github.com/roach88/jsc/internal/estree"
)

// MainName is the name of the implicit top-level method.
const MainName = "_main"

// ResourcesName is the well-known root of resource lookups.
const ResourcesName = "R"

// Program owns every node of one compilation. Node ids are indexes into
// its arena and are never reused.
type Program struct {
	nodes []Node

	Main      ID
	Resources ID

	Strings *StringTable

	resources map[string]*Resource

	// Sources lists the syntax trees lowered so far, in inclusion order.
	Sources []Source
}

// Source is one lowered translation unit.
type Source struct {
	File string
	Tree *estree.Node
}

// NewProgram creates a program with its main method and resources var.
func NewProgram() *Program {
	p := &Program{
		nodes:     []Node{nil},
		Strings:   NewStringTable(),
		resources: make(map[string]*Resource),
	}
	main := p.NewMethod(MainName)
	p.Main = main.id
	r := p.NewVar(KindVar, ResourcesName)
	main.Add(r)
	p.Resources = r.id
	return p
}

func alloc[T Node](p *Program, n T) T {
	h := n.node()
	h.id = ID(len(p.nodes))
	h.prog = p
	p.nodes = append(p.nodes, n)
	return n
}

// Len returns the number of allocated nodes.
func (p *Program) Len() int { return len(p.nodes) - 1 }

// Node returns the node with the given id, or nil.
func (p *Program) Node(id ID) Node {
	if !id.IsValid() || int(id) >= len(p.nodes) {
		return nil
	}
	return p.nodes[id]
}

// Var returns the Var with the given id, or nil.
func (p *Program) Var(id ID) *Var {
	v, _ := p.Node(id).(*Var)
	return v
}

// Method returns the Method with the given id, or nil.
func (p *Program) Method(id ID) *Method {
	m, _ := p.Node(id).(*Method)
	return m
}

// Scope returns the Scope with the given id, or the scope part of a Method.
func (p *Program) Scope(id ID) *Scope {
	switch n := p.Node(id).(type) {
	case *Scope:
		return n
	case *Method:
		return &n.Scope
	}
	return nil
}

// MainMethod returns the implicit top-level method.
func (p *Program) MainMethod() *Method { return p.Method(p.Main) }

// OwnerMethod returns the method whose scope tree owns n.
func (p *Program) OwnerMethod(n Node) *Method {
	scope := p.Scope(n.Parent())
	if scope == nil {
		return nil
	}
	return p.Method(scope.method)
}

// AddSource records a lowered translation unit.
func (p *Program) AddSource(file string, tree *estree.Node) {
	p.Sources = append(p.Sources, Source{File: file, Tree: tree})
}

// NewVar allocates an unattached Var.
func (p *Program) NewVar(kind Kind, name string) *Var {
	return alloc(p, &Var{Kind: kind, Name: name})
}

// NewScope allocates an unattached Scope.
func (p *Program) NewScope() *Scope {
	return p.newScope()
}

func (p *Program) newScope() *Scope {
	s := alloc(p, &Scope{})
	s.method = NoID
	return s
}

// NewMethod allocates a Method together with its args and this vars.
func (p *Program) NewMethod(name string) *Method {
	m := alloc(p, &Method{Name: name})
	m.method = m.id
	m.Returnable = true
	m.Debug = name
	args := p.NewVar(KindVar, "")
	m.Add(args)
	m.Args = args.id
	that := p.NewVar(KindConst, "this")
	m.Add(that)
	m.This = that.id
	return m
}

func (p *Program) NewPop() *Pop     { return alloc(p, &Pop{}) }
func (p *Program) NewDeref() *Deref { return alloc(p, &Deref{}) }

func (p *Program) NewReturn(hasValue bool) *Return {
	return alloc(p, &Return{HasValue: hasValue})
}

func (p *Program) NewBreak(target ID) *Break { return alloc(p, &Break{Target: target}) }

func (p *Program) NewContinue(target ID) *Continue {
	return alloc(p, &Continue{Target: target})
}

func (p *Program) NewArrayLiteral(length int) *ArrayLiteral {
	return alloc(p, &ArrayLiteral{Length: length})
}

func (p *Program) NewObjectLiteral(length int, construct bool) *ObjectLiteral {
	return alloc(p, &ObjectLiteral{Length: length, Construct: construct})
}

func (p *Program) NewCall(argc int, isNew, isForward, discard bool) *Call {
	return alloc(p, &Call{Argc: argc, IsNew: isNew, IsForward: isForward, DiscardResult: discard})
}

func (p *Program) NewAssign(op string) *Assign { return alloc(p, &Assign{Op: op}) }

// NewInit allocates the "=" Assign of a declaration's initial value.
func (p *Program) NewInit() *Assign { return alloc(p, &Assign{Op: "=", Init: true}) }

func (p *Program) NewBinary(op string) *Binary { return alloc(p, &Binary{Op: op}) }

func (p *Program) NewUnary(op string, prefix bool) *Unary {
	return alloc(p, &Unary{Op: op, Prefix: prefix})
}

func (p *Program) NewLookUp(ref Ref) *LookUp { return alloc(p, &LookUp{Ref: ref}) }

// NewProperty builds a LookUp of key on container.
func (p *Program) NewProperty(container, key ID) *LookUp {
	return alloc(p, &LookUp{Container: container, Key: key})
}

func (p *Program) NewLiteral(v Value) *Literal { return alloc(p, &Literal{Value: v}) }

// Resource is a named blob referenced through R.
type Resource struct {
	Name string
	// Builtin resources are provided by the runtime and emit nothing.
	Builtin bool
	// Hex is a raw payload as hex digits.
	Hex string
	// Array is a structured payload.
	Array *ResourceArray
}

// ResourceArray is a typed scalar array.
type ResourceArray struct {
	// Type is the C element type, uintptr_t when empty.
	Type  string
	Items []ResourceItem
}

// ElemType returns the declared element type.
func (a *ResourceArray) ElemType() string {
	if a.Type == "" {
		return "uintptr_t"
	}
	return a.Type
}

// ResourceItemKind tags a ResourceItem.
type ResourceItemKind uint8

const (
	ItemNumber ResourceItemKind = iota
	ItemHash
	ItemRef
)

// ResourceItem is one array element: a number, a string hash, or a
// reference to another resource plus an optional offset.
type ResourceItem struct {
	Kind      ResourceItemKind
	Number    int64
	Hash      string
	Ref       string
	Offset    int64
	HasOffset bool
}

// SetResource declares or replaces a resource.
func (p *Program) SetResource(r *Resource) {
	p.resources[r.Name] = r
}

// Resource returns the named resource.
func (p *Program) Resource(name string) (*Resource, bool) {
	r, ok := p.resources[name]
	return r, ok
}

// ResourceNames returns every declared resource name, sorted.
func (p *Program) ResourceNames() []string {
	names := make([]string, 0, len(p.resources))
	for name := range p.resources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
