package ir

import (
	"fmt"
	"slices"
)

// Scope is an ordered block of IR with its own binding index.
//
// A transparent scope forwards declarations and lookups to the nearest
// non-transparent ancestor. The five region sub-scopes (PreEnter,
// EnterCondition, FailEnter, PreLoop, LoopCondition) are always transparent
// and share the owning scope's method.
type Scope struct {
	header

	// Label is the source statement label, matched by labeled break/continue.
	Label string
	// Debug tags generated comments.
	Debug string

	method ID

	children  []ID
	variables []ID

	names    map[string]ID
	ids      map[ID]struct{}
	bindings []ID

	Transparent bool
	Breakable   bool
	Continuable bool
	Returnable  bool
	HasBreak    bool
	HasContinue bool

	PreEnter       ID
	EnterCondition ID
	FailEnter      ID
	PreLoop        ID
	LoopCondition  ID
}

// Method returns the id of the method owning this scope.
func (s *Scope) Method() ID { return s.method }

// Children lists the scope's IR in emission order.
func (s *Scope) Children() []ID { return s.children }

// Variables lists the vars declared directly in this scope.
func (s *Scope) Variables() []ID { return s.variables }

// Bindings lists every Var, Method and Scope registered in this scope's
// index, in insertion order.
func (s *Scope) Bindings() []ID { return s.bindings }

// Tag builds a scope-unique identifier such as a jump label.
func (s *Scope) Tag(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, s.id)
}

// IsLoop reports whether the scope re-enters its condition.
func (s *Scope) IsLoop() bool { return s.LoopCondition.IsValid() }

// registrar is the nearest non-transparent scope, where bindings live.
func (s *Scope) registrar() *Scope {
	for s.Transparent && s.parent.IsValid() {
		s = s.prog.Scope(s.parent)
	}
	return s
}

func (s *Scope) bind(id ID, name string) {
	if s.names == nil {
		s.names = make(map[string]ID)
		s.ids = make(map[ID]struct{})
	}
	if name != "" {
		s.names[name] = id
	}
	if _, ok := s.ids[id]; !ok {
		s.ids[id] = struct{}{}
		s.bindings = append(s.bindings, id)
	}
}

// Add inserts n. Vars and Methods are registered and stored in the
// nearest non-transparent scope; nested Scopes are registered there but
// stay in this scope's child list so their code lands where it was lowered.
// Any other node is appended to this scope's children.
func (s *Scope) Add(n Node) {
	switch n := n.(type) {
	case *Var:
		r := s.registrar()
		r.bind(n.id, n.Name)
		n.parent = r.id
		r.variables = append(r.variables, n.id)
	case *Method:
		r := s.registrar()
		r.bind(n.id, n.Name)
		n.parent = r.id
		r.children = append(r.children, n.id)
	case *Scope:
		s.registrar().bind(n.id, "")
		n.parent = s.id
		n.method = s.method
		s.children = append(s.children, n.id)
	default:
		n.node().parent = s.id
		s.children = append(s.children, n.ID())
	}
}

// Remove unregisters v from the scope that owns it.
func (s *Scope) Remove(v *Var) {
	r := s.registrar()
	if v.parent != r.id {
		return
	}
	if id, ok := r.names[v.Name]; ok && id == v.id {
		delete(r.names, v.Name)
	}
	delete(r.ids, v.id)
	r.bindings = slices.DeleteFunc(r.bindings, func(id ID) bool { return id == v.id })
	if i := slices.Index(r.variables, v.id); i >= 0 {
		last := len(r.variables) - 1
		r.variables[i] = r.variables[last]
		r.variables = r.variables[:last]
	}
	v.parent = NoID
}

// Rename rebinds v under a new name.
func (s *Scope) Rename(v *Var, name string) {
	r := s.registrar()
	if v.parent != r.id {
		v.Name = name
		return
	}
	if id, ok := r.names[v.Name]; ok && id == v.id {
		delete(r.names, v.Name)
	}
	v.Name = name
	if name != "" {
		r.bind(v.id, name)
	}
}

func (s *Scope) local(ref Ref) Node {
	if ref.ID.IsValid() {
		if _, ok := s.ids[ref.ID]; ok {
			return s.prog.Node(ref.ID)
		}
		return nil
	}
	if id, ok := s.names[ref.Name]; ok {
		return s.prog.Node(id)
	}
	return nil
}

// Find resolves ref in this scope, and up the scope chain when recursive.
// A Var or Method owned by a different, non-top-level method is captured
// into this scope's method before it is returned.
func (s *Scope) Find(ref Ref, recursive bool) Node {
	if s.Transparent && s.parent.IsValid() {
		return s.prog.Scope(s.parent).Find(ref, recursive)
	}
	if n := s.local(ref); n != nil {
		return n
	}
	if !recursive || !s.parent.IsValid() {
		return nil
	}
	found := s.prog.Scope(s.parent).Find(ref, true)
	if found == nil {
		return nil
	}
	switch found.(type) {
	case *Var, *Method:
	default:
		return found
	}
	owner := s.prog.OwnerMethod(found)
	if owner == nil || owner.id == s.method || !owner.parent.IsValid() {
		return found
	}
	return s.prog.Method(s.method).Capture(found)
}

func (s *Scope) region(slot *ID, name string) *Scope {
	if slot.IsValid() {
		return s.prog.Scope(*slot)
	}
	sub := s.prog.newScope()
	sub.Transparent = true
	sub.parent = s.id
	sub.method = s.method
	sub.Debug = s.Debug + "(" + name + ")"
	*slot = sub.id
	return sub
}

// AddPreEnter returns the region run once before the first test.
func (s *Scope) AddPreEnter() *Scope { return s.region(&s.PreEnter, "preEnter") }

// AddEnterCondition returns the region computing the entry test.
func (s *Scope) AddEnterCondition() *Scope {
	return s.region(&s.EnterCondition, "enterCondition")
}

// AddFailEnter returns the region run when the entry test fails.
func (s *Scope) AddFailEnter() *Scope { return s.region(&s.FailEnter, "failEnter") }

// AddPreLoop returns the per-iteration step region.
func (s *Scope) AddPreLoop() *Scope { return s.region(&s.PreLoop, "preLoop") }

// AddLoopCondition returns the region deciding whether to re-enter.
func (s *Scope) AddLoopCondition() *Scope {
	return s.region(&s.LoopCondition, "loopCondition")
}
