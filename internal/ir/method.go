package ir

// Method is a callable unit: a returnable Scope with an argument bag and a
// this slot.
type Method struct {
	Scope

	Name string

	// Args and This are the implicit parameter vars.
	Args ID
	This ID

	IsNative bool
	IsClass  bool

	// Context is the heap record shared with nested closures. It exists
	// only once something owned by this method has been captured.
	Context ID

	captures     map[ID]ID
	mirrors      map[ID]ID
	captureOrder []ID

	captured      map[ID]struct{}
	capturedOrder []ID

	cache map[string]ID
}

// Capture mirrors ext, which is owned by an enclosing method, into this
// method. Capturing the same node twice returns the same Var.
func (m *Method) Capture(ext Node) *Var {
	if id, ok := m.mirrors[ext.ID()]; ok {
		return m.prog.Var(id)
	}
	v := m.prog.NewVar(KindCapture, nameOf(ext))
	v.SetLoc(ext.Loc())
	if definer := m.prog.OwnerMethod(ext); definer != nil {
		v.Context = definer.SetCaptured(ext)
	}
	m.Add(v)
	if m.captures == nil {
		m.captures = make(map[ID]ID)
		m.mirrors = make(map[ID]ID)
	}
	m.captures[v.id] = ext.ID()
	m.mirrors[ext.ID()] = v.id
	m.captureOrder = append(m.captureOrder, v.id)
	return v
}

// SetCaptured marks a node this method owns as shared with a closure and
// returns the context var holding it.
func (m *Method) SetCaptured(n Node) ID {
	if !m.Context.IsValid() {
		ctx := m.prog.NewVar(KindVar, "")
		ctx.SetLoc(m.loc)
		m.Add(ctx)
		m.Context = ctx.id
		m.captured = make(map[ID]struct{})
	}
	if _, ok := m.captured[n.ID()]; !ok {
		m.captured[n.ID()] = struct{}{}
		m.capturedOrder = append(m.capturedOrder, n.ID())
	}
	return m.Context
}

// Captures lists this method's capture vars in creation order.
func (m *Method) Captures() []ID { return m.captureOrder }

// CaptureSource returns the original node a capture var mirrors.
func (m *Method) CaptureSource(captureVar ID) ID { return m.captures[captureVar] }

// HasCaptures reports whether calling this method needs a closure record.
func (m *Method) HasCaptures() bool { return len(m.captureOrder) > 0 }

// Captured lists the nodes this method shares through its context.
func (m *Method) Captured() []ID { return m.capturedOrder }

// IsCaptured reports whether id is shared through this method's context.
func (m *Method) IsCaptured(id ID) bool {
	_, ok := m.captured[id]
	return ok
}

// Cached returns the cache var bound to this.prop, creating it on first use.
func (m *Method) Cached(prop string) *Var {
	if id, ok := m.cache[prop]; ok {
		return m.prog.Var(id)
	}
	v := m.prog.NewVar(KindCache, "")
	v.Prop = prop
	v.SetLoc(m.loc)
	m.Add(v)
	if m.cache == nil {
		m.cache = make(map[string]ID)
	}
	m.cache[prop] = v.id
	return v
}

// GuessObjectSize counts the distinct constant properties read or written
// on this across the method and every non-class method nested in it.
func (m *Method) GuessObjectSize() int {
	return len(m.collectDerefs(make(map[string]struct{}), make(map[ID]struct{})))
}

func (m *Method) collectDerefs(seen map[string]struct{}, visited map[ID]struct{}) map[string]struct{} {
	if _, ok := visited[m.id]; ok {
		return seen
	}
	visited[m.id] = struct{}{}
	if that := m.prog.Var(m.This); that != nil {
		for _, name := range that.Derefs() {
			seen[name] = struct{}{}
		}
	}
	for _, id := range m.bindings {
		if member := m.prog.Method(id); member != nil && !member.IsClass {
			member.collectDerefs(seen, visited)
		}
	}
	return seen
}

func nameOf(n Node) string {
	switch n := n.(type) {
	case *Var:
		return n.Name
	case *Method:
		return n.Name
	}
	return ""
}
