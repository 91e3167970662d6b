package ir

// Var is a single storage slot.
type Var struct {
	header

	Kind Kind
	Name string

	// Prop is the this-property a KindCache var is bound to.
	Prop string

	// Context is the defining method's context Var for KindCapture vars.
	Context ID

	Reads  int
	Writes int

	// DeclType is the static type the slot is declared with.
	DeclType Type

	ctv    Value
	hasCTV bool

	derefs   []string
	derefSet map[string]struct{}
}

// Named reports whether the var carries a source-level name.
func (v *Var) Named() bool { return v.Name != "" }

// CTV returns the var's compile-time value, if any.
func (v *Var) CTV() (Value, bool) { return v.ctv, v.hasCTV }

// SetCTV records a compile-time value. A const var accepts exactly one.
func (v *Var) SetCTV(val Value) error {
	if v.Kind == KindConst && v.hasCTV {
		return Errorf(ErrContract, v.loc, "compile-time value of const %q assigned twice", v.Name)
	}
	v.ctv = val
	v.hasCTV = true
	return nil
}

// ClearCTV forgets a non-const var's compile-time value.
func (v *Var) ClearCTV() {
	if v.Kind == KindConst {
		return
	}
	v.ctv = Value{}
	v.hasCTV = false
}

// Type returns the CTV's type when known, else the declared type.
func (v *Var) Type() Type {
	if v.hasCTV {
		return v.ctv.Type()
	}
	return v.DeclType
}

// AddDeref records a constant property name read off this var.
func (v *Var) AddDeref(name string) {
	if _, ok := v.derefSet[name]; ok {
		return
	}
	if v.derefSet == nil {
		v.derefSet = make(map[string]struct{})
	}
	v.derefSet[name] = struct{}{}
	v.derefs = append(v.derefs, name)
}

// Derefs lists recorded property names in first-seen order.
func (v *Var) Derefs() []string {
	return v.derefs
}
