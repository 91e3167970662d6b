package codegen

import (
	"fmt"

	"github.com/roach88/jsc/internal/ir"
)

// emitMethod renders m's definition and queues its forward declaration.
func (g *generator) emitMethod(m *ir.Method) error {
	name := g.encode(m)
	g.forward = append(g.forward, fmt.Sprintf("js::Local %s(js::Local&, bool);", name))
	if m.IsNative {
		return nil
	}

	prevMethod, prevStack := g.method, g.stack
	g.method, g.stack = m, nil
	defer func() { g.method, g.stack = prevMethod, prevStack }()

	body, err := g.block(&m.Scope, m)
	if err != nil {
		return err
	}
	args := g.prog.Var(m.Args)
	g.bodies = append(g.bodies, "", fmt.Sprintf("js::Local %s(js::Local& %s, bool isNew)", name, g.encode(args)))
	g.bodies = append(g.bodies, body...)
	return nil
}

// block renders a non-transparent scope. m is set when s is the body of m.
//
// Nested methods are generated before the scope's own code so that the
// captures they discover are known when the scope creates closures and
// declares its locals.
func (g *generator) block(s *ir.Scope, m *ir.Method) ([]string, error) {
	for _, id := range s.Children() {
		if nested := g.prog.Method(id); nested != nil {
			if err := g.emitMethod(nested); err != nil {
				return nil, err
			}
		}
	}

	var head, body, tail []string
	loop := s.IsLoop()
	fail := s.Tag("failEnter")
	enter := s.Tag("enterCondition")

	if s.PreEnter.IsValid() {
		code, err := g.region(s.PreEnter)
		if err != nil {
			return nil, err
		}
		head = append(head, code...)
	}
	if loop {
		head = append(head, enter+":;")
	}
	if s.EnterCondition.IsValid() {
		code, cond, err := g.condition(s, s.EnterCondition)
		if err != nil {
			return nil, err
		}
		head = append(head, code...)
		if c, ok := constant(cond); ok {
			if !c.ToBoolean() {
				head = append(head, fmt.Sprintf("goto %s;", fail))
			}
		} else {
			head = append(head, fmt.Sprintf("if (!js::to<bool>(%s)) goto %s;", g.encode(cond), fail))
		}
	}

	var last ir.Node
	for _, id := range s.Children() {
		child := g.prog.Node(id)
		if _, ok := child.(*ir.Method); ok {
			continue
		}
		code, err := g.node(child)
		if err != nil {
			return nil, err
		}
		body = append(body, code...)
		last = child
	}

	switch {
	case loop:
		if s.HasContinue {
			body = append(body, s.Tag("preLoop")+":;")
		}
		if s.PreLoop.IsValid() {
			code, err := g.region(s.PreLoop)
			if err != nil {
				return nil, err
			}
			body = append(body, code...)
		}
		code, cond, err := g.condition(s, s.LoopCondition)
		if err != nil {
			return nil, err
		}
		body = append(body, code...)
		if c, ok := constant(cond); ok {
			if c.ToBoolean() {
				body = append(body, fmt.Sprintf("goto %s;", enter))
			}
		} else {
			body = append(body, fmt.Sprintf("if (js::to<bool>(%s)) goto %s;", g.encode(cond), enter))
		}
		tail = append(tail, fail+":;")
	case s.FailEnter.IsValid():
		code, err := g.region(s.FailEnter)
		if err != nil {
			return nil, err
		}
		after := s.Tag("afterFail")
		tail = append(tail, fmt.Sprintf("goto %s;", after), fail+":;")
		tail = append(tail, code...)
		tail = append(tail, after+":;")
	}

	if m != nil {
		if _, ok := last.(*ir.Return); !ok {
			body = append(body, "return {};")
		}
	}

	setup, err := g.declarations(s, m)
	if err != nil {
		return nil, err
	}

	var out []string
	if m == nil && s.Debug != "" {
		out = append(out, "// begin "+s.Debug)
	}
	out = append(out, "{")
	out = append(out, setup...)
	out = append(out, head...)
	out = append(out, body...)
	out = append(out, tail...)
	out = append(out, "}")
	if !loop && !s.FailEnter.IsValid() && (s.EnterCondition.IsValid() || s.HasBreak) {
		out = append(out, fail+":;")
	}
	if m == nil && s.Debug != "" {
		out = append(out, "// end "+s.Debug)
	}
	return out, nil
}

// region renders a transparent control-flow region inline.
func (g *generator) region(id ir.ID) ([]string, error) {
	s := g.prog.Scope(id)
	if s == nil {
		return nil, ir.Errorf(ir.ErrContract, ir.Location{}, "missing region #%d", id)
	}
	var out []string
	for _, child := range s.Children() {
		n := g.prog.Node(child)
		if _, ok := n.(*ir.Method); ok {
			continue
		}
		code, err := g.node(n)
		if err != nil {
			return nil, err
		}
		out = append(out, code...)
	}
	return out, nil
}

// condition renders a test region and pops the value it leaves.
func (g *generator) condition(s *ir.Scope, id ir.ID) ([]string, ir.Node, error) {
	code, err := g.region(id)
	if err != nil {
		return nil, nil, err
	}
	top, err := g.pop(s)
	if err != nil {
		return nil, nil, err
	}
	more, v, err := g.resolve(s, top)
	if err != nil {
		return nil, nil, err
	}
	return append(code, more...), v, nil
}

// declarations renders the setup of s: for a method body its context
// record and this binding, then every local. Named vars of any block
// owned by the main method are hoisted to file scope instead.
func (g *generator) declarations(s *ir.Scope, m *ir.Method) ([]string, error) {
	var setup, decls, shared []string
	inMain := s.Method() == g.prog.Main

	if m != nil {
		if ctx := g.prog.Var(m.Context); ctx != nil {
			parent := ""
			if m.HasCaptures() {
				parent = ", " + g.encode(g.prog.Var(m.Args))
			}
			setup = append(setup,
				g.declare(ctx),
				fmt.Sprintf("%s = js::alloc(%d%s);", g.encode(ctx), len(m.Captured()), parent),
			)
			for _, id := range m.Captured() {
				fn := g.prog.Method(id)
				if fn == nil {
					continue
				}
				value := g.encode(fn)
				if fn.HasCaptures() {
					code, rec, err := g.closureRecord(fn)
					if err != nil {
						return nil, err
					}
					shared = append(shared, code...)
					value = g.encode(rec)
				}
				shared = append(shared, fmt.Sprintf("js::set(%s, %s, %s);", g.encode(ctx), g.slot(fn), value))
			}
		}
		if that := g.prog.Var(m.This); that.Reads > 0 || that.Writes > 0 {
			setup = append(setup,
				g.declare(that),
				fmt.Sprintf("js::initThis(%s, %s, %d, isNew);", g.encode(that), g.encode(g.prog.Var(m.Args)), m.GuessObjectSize()),
			)
		}
	}

	for _, id := range s.Variables() {
		if m != nil && (id == m.Args || id == m.This || id == m.Context) {
			continue
		}
		if id == g.prog.Resources {
			continue
		}
		v := g.prog.Var(id)
		line := g.declaration(v, m)
		if inMain && v.Named() && v.Kind != ir.KindCapture && v.Kind != ir.KindCache {
			g.fileScope = append(g.fileScope, line)
			continue
		}
		decls = append(decls, line)
	}

	setup = append(setup, decls...)
	return append(setup, shared...), nil
}

// declaration renders the declaration of v, owned by the method being
// generated.
func (g *generator) declaration(v *ir.Var, m *ir.Method) string {
	method := g.method
	if m != nil {
		method = m
	}
	name := g.encode(v)
	switch {
	case v.Kind == ir.KindCapture:
		return fmt.Sprintf("js::Tagged& %s = *js::getTaggedPtr(js::to<js::Object*>(%s), %s, true);",
			name, g.encode(g.prog.Var(method.Args)), g.slot(v))
	case v.Kind == ir.KindCache:
		return fmt.Sprintf("js::Tagged& %s = *js::getTaggedPtr(%s.object(), %s, true, true);",
			name, g.encode(g.prog.Var(method.This)), g.literal(ir.String(v.Prop), true))
	case method.IsCaptured(v.ID()):
		ctx := g.prog.Var(method.Context)
		return fmt.Sprintf("js::Tagged& %s = *js::set(%s, %s, {});",
			name, g.encode(ctx), g.slot(v))
	}
	return g.declare(v)
}

// slot returns the context key of a captured node. Capture vars share the
// key of the node they mirror, followed back to its owner.
func (g *generator) slot(n ir.Node) string {
	for {
		v, ok := n.(*ir.Var)
		if !ok || v.Kind != ir.KindCapture {
			break
		}
		owner := g.prog.OwnerMethod(v)
		if owner == nil {
			break
		}
		src := g.prog.Node(owner.CaptureSource(v.ID()))
		if src == nil {
			break
		}
		n = src
	}
	var name string
	switch n := n.(type) {
	case *ir.Var:
		name = n.Name
	case *ir.Method:
		name = n.Name
	}
	return g.literal(ir.String(fmt.Sprintf("%s/%d", name, n.ID())), true)
}

func (g *generator) declare(v *ir.Var) string {
	return fmt.Sprintf("%s %s; // %s", cType(v.DeclType), g.encode(v), v.Kind)
}
