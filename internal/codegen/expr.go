package codegen

import (
	"fmt"

	"github.com/roach88/jsc/internal/ir"
)

// resolve turns an operand into a value, emitting any loads it needs.
func (g *generator) resolve(at, n ir.Node) ([]string, ir.Node, error) {
	g.push(n)
	lines, err := g.deref(at)
	if err != nil {
		return nil, nil, err
	}
	v, err := g.pop(at)
	return lines, v, err
}

// deref replaces a pending LookUp on top of the stack by its value.
// Methods that need a closure record are materialized as well.
func (g *generator) deref(at ir.Node) ([]string, error) {
	top, err := g.pop(at)
	if err != nil {
		return nil, err
	}
	switch n := top.(type) {
	case *ir.LookUp:
		return g.derefLookUp(n)
	case *ir.Method:
		if !n.HasCaptures() {
			g.push(n)
			return nil, nil
		}
		return g.closure(n)
	}
	g.push(top)
	return nil, nil
}

func (g *generator) derefLookUp(l *ir.LookUp) ([]string, error) {
	if !l.Container.IsValid() {
		found, err := g.find(l)
		if err != nil {
			return nil, err
		}
		return g.deref(g.pushed(found))
	}
	if !l.Key.IsValid() {
		// a member of the scope Container, such as a class constructor
		scope := g.prog.Scope(l.Container)
		if scope == nil {
			return nil, ir.Errorf(ir.ErrContract, l.Loc(), "lookup container #%d is not a scope", l.Container)
		}
		found := scope.Find(l.Ref, false)
		if found == nil {
			return nil, ir.Errorf(ir.ErrReference, l.Loc(), "%s is not defined", l.Ref)
		}
		return g.deref(g.pushed(found))
	}

	ctx := g.prog.Node(l.Container)
	if v, ok := ctx.(*ir.Var); ok && v.ID() == g.method.This {
		if lit, ok := g.prog.Node(l.Key).(*ir.Literal); ok {
			v.Reads++
			v.AddDeref(lit.Value.String())
			g.push(g.method.Cached(lit.Value.String()))
			return nil, nil
		}
	}
	expr, err := g.property(l)
	if err != nil {
		return nil, err
	}
	tmp := g.temp(ir.TypeUnknown)
	g.push(tmp)
	return []string{fmt.Sprintf("%s = %s;", g.encode(tmp), expr)}, nil
}

// pushed pushes n and returns the node deref should report errors at.
func (g *generator) pushed(n ir.Node) ir.Node {
	g.push(n)
	return n
}

// find resolves a lexical LookUp from the scope it was emitted in.
func (g *generator) find(l *ir.LookUp) (ir.Node, error) {
	scope := g.prog.Scope(l.Parent())
	if scope == nil {
		return nil, ir.Errorf(ir.ErrContract, l.Loc(), "lookup of %s is detached", l.Ref)
	}
	found := scope.Find(l.Ref, true)
	switch n := found.(type) {
	case nil:
		return nil, ir.Errorf(ir.ErrReference, l.Loc(), "%s is not defined", l.Ref)
	case *ir.Var:
		n.Reads++
	case *ir.Method:
	default:
		return nil, g.errorf(l, "%s is not a value", l.Ref)
	}
	return found, nil
}

// property renders a read of a property LookUp.
func (g *generator) property(l *ir.LookUp) (string, error) {
	key := g.prog.Node(l.Key)
	lit, constKey := key.(*ir.Literal)
	switch ctx := g.prog.Node(l.Container).(type) {
	case *ir.Var:
		ctx.Reads++
		if constKey {
			ctx.AddDeref(lit.Value.String())
		}
		if ctx.ID() == g.prog.Resources {
			if !constKey {
				return "", g.errorf(l, "resources must be referenced by a constant name")
			}
			name := lit.Value.String()
			if _, ok := g.prog.Resource(name); !ok {
				return "", g.errorf(l, "no resource named %s", name)
			}
			return fmt.Sprintf("RESOURCEREF(%s)", name), nil
		}
		return fmt.Sprintf("js::get(%s, %s)", g.encode(ctx), g.key(key)), nil
	case *ir.Literal:
		return fmt.Sprintf("js::get(%s, %s)", g.encode(ctx), g.key(key)), nil
	case *ir.Method:
		return "", g.errorf(l, "properties of function %s are not supported", ctx.Name)
	}
	return "", ir.Errorf(ir.ErrContract, l.Loc(), "property lookup on #%d", l.Container)
}

// closure wraps m in a record whose prototype is the current context.
func (g *generator) closure(m *ir.Method) ([]string, error) {
	lines, tmp, err := g.closureRecord(m)
	if err != nil {
		return nil, err
	}
	g.push(tmp)
	return lines, nil
}

func (g *generator) closureRecord(m *ir.Method) ([]string, *ir.Var, error) {
	ctx := g.prog.Var(g.method.Context)
	if ctx == nil {
		return nil, nil, ir.Errorf(ir.ErrContract, m.Loc(), "closure %s created outside its defining method", m.Name)
	}
	tmp := g.temp(ir.TypeUnknown)
	return []string{
		fmt.Sprintf("%s = js::alloc(1, %s);", g.encode(tmp), g.encode(ctx)),
		fmt.Sprintf("js::set(%s, %s, %s);", g.encode(tmp), g.literal(ir.String("//method"), true), g.encode(m)),
	}, tmp, nil
}

func (g *generator) assign(n *ir.Assign) ([]string, error) {
	right, err := g.pop(n)
	if err != nil {
		return nil, err
	}
	target, err := g.pop(n)
	if err != nil {
		return nil, err
	}
	l, ok := target.(*ir.LookUp)
	if !ok {
		return nil, g.errorf(n, "invalid assignment left-hand side")
	}
	lines, right, err := g.resolve(n, right)
	if err != nil {
		return nil, err
	}

	if n.Op != "=" {
		code, current, err := g.resolve(n, l)
		if err != nil {
			return nil, err
		}
		lines = append(lines, code...)
		code, right, err = g.apply(n, n.Op[:len(n.Op)-1], current, right)
		if err != nil {
			return nil, err
		}
		lines = append(lines, code...)
	}

	code, err := g.store(n, l, right)
	if err != nil {
		return nil, err
	}
	g.push(right)
	return append(lines, code...), nil
}

// store writes value through l.
func (g *generator) store(at ir.Node, l *ir.LookUp, value ir.Node) ([]string, error) {
	if l.IsProperty() {
		key := g.prog.Node(l.Key)
		lit, constKey := key.(*ir.Literal)
		ctx, ok := g.prog.Node(l.Container).(*ir.Var)
		switch {
		case !ok:
			return nil, g.errorf(at, "cannot assign a property of a non-object")
		case ctx.ID() == g.prog.Resources:
			return nil, g.errorf(at, "resources are read-only")
		}
		ctx.Reads++
		if !constKey {
			return []string{fmt.Sprintf("js::set(%s, %s, %s);", g.encode(ctx), g.encode(key), g.encode(value))}, nil
		}
		name := lit.Value.String()
		ctx.AddDeref(name)
		if ctx.ID() == g.method.This {
			cache := g.method.Cached(name)
			cache.Writes++
			return []string{fmt.Sprintf("%s = %s;", g.encode(cache), g.encode(value))}, nil
		}
		return []string{fmt.Sprintf("js::set(%s, %s, %s);", g.encode(ctx), g.key(key), g.encode(value))}, nil
	}

	if l.Container.IsValid() {
		return nil, g.errorf(at, "invalid assignment left-hand side")
	}
	found, err := g.find(l)
	if err != nil {
		return nil, err
	}
	v, ok := found.(*ir.Var)
	if !ok {
		return nil, g.errorf(at, "cannot assign to function %s", l.Ref)
	}
	if v.Kind == ir.KindConst {
		if a, ok := at.(*ir.Assign); !ok || !a.Init {
			return nil, ir.Errorf(ir.ErrSyntax, at.Loc(), "invalid assignment target: %s is const", v.Name)
		}
		if val, ok := constant(value); ok {
			if err := v.SetCTV(val); err != nil {
				return nil, err
			}
		}
		v.DeclType = typeOf(value)
	}
	v.Writes++
	return []string{fmt.Sprintf("%s = %s;", g.encode(v), g.encode(value))}, nil
}

func (g *generator) binary(n *ir.Binary) ([]string, error) {
	right, err := g.pop(n)
	if err != nil {
		return nil, err
	}
	left, err := g.pop(n)
	if err != nil {
		return nil, err
	}
	lines, left, err := g.resolve(n, left)
	if err != nil {
		return nil, err
	}
	code, right, err := g.resolve(n, right)
	if err != nil {
		return nil, err
	}
	lines = append(lines, code...)

	if n.Op == "." || n.Op == "[]" {
		g.push(g.prog.NewProperty(left.ID(), right.ID()))
		return lines, nil
	}
	code, result, err := g.apply(n, n.Op, left, right)
	if err != nil {
		return nil, err
	}
	g.push(result)
	return append(lines, code...), nil
}

// apply computes left op right, folding when both sides are constant.
func (g *generator) apply(at ir.Node, op string, left, right ir.Node) ([]string, ir.Node, error) {
	name, ok := binaryNames[op]
	if !ok {
		return nil, nil, g.errorf(at, "unsupported binary operator %s", op)
	}
	if l, ok := constant(left); ok {
		if r, ok := constant(right); ok {
			if v, ok := ir.EvalBinary(op, l, r); ok {
				lit := g.prog.NewLiteral(v)
				lit.SetLoc(at.Loc())
				return nil, lit, nil
			}
		}
	}
	tmp := g.temp(binaryType(op, typeOf(left), typeOf(right)))
	tmp.Writes++
	return []string{fmt.Sprintf("js::op_%s(%s, %s, %s);", name, g.encode(tmp), g.encode(left), g.encode(right))}, tmp, nil
}

func (g *generator) unary(n *ir.Unary) ([]string, error) {
	operand, err := g.pop(n)
	if err != nil {
		return nil, err
	}
	if n.Op == "++" || n.Op == "--" {
		l, ok := operand.(*ir.LookUp)
		if !ok {
			return nil, g.errorf(n, "invalid %s operand", n.Op)
		}
		return g.update(n, l)
	}

	lines, v, err := g.resolve(n, operand)
	if err != nil {
		return nil, err
	}
	if c, ok := constant(v); ok {
		if folded, ok := ir.EvalUnary(n.Op, c); ok {
			lit := g.prog.NewLiteral(folded)
			lit.SetLoc(n.Loc())
			g.push(lit)
			return lines, nil
		}
	}
	if n.Op == "void" {
		g.push(g.prog.NewLiteral(ir.Undefined()))
		return lines, nil
	}
	name, ok := unaryNames[n.Op]
	if !ok {
		return nil, g.errorf(n, "unsupported unary operator %s", n.Op)
	}
	tmp := g.temp(unaryType(n.Op))
	tmp.Writes++
	g.push(tmp)
	return append(lines, fmt.Sprintf("js::op_%s(%s, %s); // %s", name, g.encode(tmp), g.encode(v), n.Op)), nil
}

// update emits ++/--. The runtime helper mutates its second argument and
// writes the expression result to the first; properties go through a
// load and a store.
func (g *generator) update(n *ir.Unary, l *ir.LookUp) ([]string, error) {
	name := updateName(n.Op, n.Prefix)
	tmp := g.temp(ir.TypeFloat)
	tmp.Writes++

	if !l.IsProperty() {
		if l.Container.IsValid() {
			return nil, g.errorf(n, "invalid %s operand", n.Op)
		}
		found, err := g.find(l)
		if err != nil {
			return nil, err
		}
		v, ok := found.(*ir.Var)
		switch {
		case !ok:
			return nil, g.errorf(n, "cannot assign to function %s", l.Ref)
		case v.Kind == ir.KindConst:
			return nil, ir.Errorf(ir.ErrSyntax, n.Loc(), "invalid assignment target: %s is const", v.Name)
		}
		v.Writes++
		g.push(tmp)
		return []string{fmt.Sprintf("js::op_%s(%s, %s); // %s", name, g.encode(tmp), g.encode(v), n.Op)}, nil
	}

	lines, current, err := g.resolve(n, l)
	if err != nil {
		return nil, err
	}
	lines = append(lines, fmt.Sprintf("js::op_%s(%s, %s); // %s", name, g.encode(tmp), g.encode(current), n.Op))
	if cache, ok := current.(*ir.Var); !ok || cache.Kind != ir.KindCache {
		code, err := g.store(n, l, current)
		if err != nil {
			return nil, err
		}
		lines = append(lines, code...)
	}
	g.push(tmp)
	return lines, nil
}

func (g *generator) array(n *ir.ArrayLiteral) ([]string, error) {
	elems, lines, err := g.popValues(n, n.Length)
	if err != nil {
		return nil, err
	}
	tmp := g.temp(ir.TypeObject)
	arr := g.encode(tmp)
	lines = append(lines, fmt.Sprintf("%s = js::arguments(%d);", arr, n.Length))
	for i, e := range elems {
		lines = append(lines, fmt.Sprintf("js::set(%s, %s, %s);", arr, g.literal(ir.Number(float64(i)), true), g.encode(e)))
	}
	g.push(tmp)
	return lines, nil
}

func (g *generator) object(n *ir.ObjectLiteral) ([]string, error) {
	pairs, lines, err := g.popValues(n, 2*n.Length)
	if err != nil {
		return nil, err
	}
	tmp := g.temp(ir.TypeObject)
	obj := g.encode(tmp)
	lines = append(lines, fmt.Sprintf("%s = js::alloc(%d);", obj, n.Length))
	for i := 0; i < len(pairs); i += 2 {
		lines = append(lines, fmt.Sprintf("js::set(%s, %s, %s);", obj, g.key(pairs[i]), g.encode(pairs[i+1])))
	}
	g.push(tmp)
	return lines, nil
}

// popValues pops count operands, returned in push order, resolving each.
func (g *generator) popValues(at ir.Node, count int) ([]ir.Node, []string, error) {
	values := make([]ir.Node, count)
	for i := count - 1; i >= 0; i-- {
		v, err := g.pop(at)
		if err != nil {
			return nil, nil, err
		}
		values[i] = v
	}
	var lines []string
	for i, v := range values {
		code, resolved, err := g.resolve(at, v)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, code...)
		values[i] = resolved
	}
	return values, lines, nil
}

func (g *generator) call(n *ir.Call) ([]string, error) {
	if n.IsForward {
		callee, err := g.pop(n)
		if err != nil {
			return nil, err
		}
		lines, fn, err := g.resolve(n, callee)
		if err != nil {
			return nil, err
		}
		args := g.prog.Var(g.method.Args)
		return append(lines, fmt.Sprintf("js::call(%s, %s, false);", g.encode(fn), g.encode(args))), nil
	}

	argv := make([]ir.Node, n.Argc)
	for i := n.Argc - 1; i >= 0; i-- {
		v, err := g.pop(n)
		if err != nil {
			return nil, err
		}
		argv[i] = v
	}
	callee, err := g.pop(n)
	if err != nil {
		return nil, err
	}
	var container ir.Node
	if l, ok := callee.(*ir.LookUp); ok && l.IsProperty() {
		container = g.prog.Node(l.Container)
	}

	args := g.argsVar()
	bag := g.encode(args)
	var lines, sets []string
	for i, a := range argv {
		code, v, err := g.resolve(n, a)
		if err != nil {
			return nil, err
		}
		lines = append(lines, code...)
		sets = append(sets, fmt.Sprintf("js::set(%s, %s, %s);", bag, g.literal(ir.Number(float64(i)), true), g.encode(v)))
	}
	code, fn, err := g.resolve(n, callee)
	if err != nil {
		return nil, err
	}
	lines = append(lines, code...)

	argc := n.Argc
	switch {
	case n.IsNew:
		argc++
	case container != nil:
		sets = append(sets, fmt.Sprintf("js::set(%s, %s, %s);", bag, g.literal(ir.String("this"), true), g.encode(container)))
		argc++
	}

	assign := ""
	if n.DiscardResult {
		g.push(g.discarded)
	} else {
		ret := g.temp(ir.TypeUnknown)
		ret.Writes++
		assign = g.encode(ret) + " = "
		g.push(ret)
	}

	lines = append(lines, fmt.Sprintf("%s = js::arguments(%d);", bag, argc))
	lines = append(lines, sets...)
	return append(lines,
		fmt.Sprintf("%sjs::call(%s, %s, %t);", assign, g.encode(fn), bag, n.IsNew),
		bag+".reset();",
	), nil
}

// argsVar returns the current method's reusable argument bag. Arguments
// are fully evaluated before the bag is filled, so one bag per method is
// never live twice.
func (g *generator) argsVar() *ir.Var {
	if v, ok := g.args[g.method.ID()]; ok {
		return v
	}
	v := g.temp(ir.TypeUnknown)
	g.args[g.method.ID()] = v
	return v
}
