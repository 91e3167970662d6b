// Package codegen renders a lowered Program as goto-structured C++ against
// the js:: runtime.
//
// The generator replays each method's IR over an operand stack. Values on
// the stack are Literals, Vars, Methods or pending LookUps; every emitted
// instruction reads already-resolved operands and writes a fresh temporary.
// Structured control flow is flattened into labels and gotos per Scope.
package codegen

import (
	"fmt"

	"github.com/roach88/jsc/internal/ir"
)

// Options configures one generation run.
type Options struct {
	// Platform selects the output template. Unknown names use "std".
	Platform string
	// Globals are top-level names emitted under their source name so the
	// platform glue can reach them.
	Globals []string
	// Strings are interned up front and always get an alias.
	Strings []string
}

// builtinStrings are interned first, in this order, so their aliases are
// stable across programs.
var builtinStrings = []string{
	"", "buffer", "length", "__proto__", "this", "undefined",
	"[Object]", "[Resource]", "[Array]", "[Function]",
	"null", "true", "false",
}

type generator struct {
	prog *ir.Program
	opts Options

	globals map[ir.ID]bool
	method  *ir.Method
	stack   []ir.Node
	// args is the argument bag reused by every call in a method.
	args map[ir.ID]*ir.Var
	// discarded stands in for the result of a call nobody reads.
	discarded *ir.Literal

	fileScope []string
	forward   []string
	bodies    []string
}

// Generate renders p as C++ source for opts.Platform.
//
// Generation records types, compile-time values and captures on p, so a
// program can only be generated once.
func Generate(p *ir.Program, opts Options) (string, error) {
	if len(p.Strings.Entries()) != 0 {
		return "", ir.Errorf(ir.ErrContract, ir.Location{}, "program has already been generated")
	}
	g := &generator{
		prog:      p,
		opts:      opts,
		globals:   make(map[ir.ID]bool),
		args:      make(map[ir.ID]*ir.Var),
		discarded: p.NewLiteral(ir.Undefined()),
	}
	g.intern()
	main := p.MainMethod()
	for _, name := range opts.Globals {
		n := main.Find(ir.ByName(name), false)
		if n == nil {
			v := p.NewVar(ir.KindVar, name)
			main.Add(v)
			n = v
		}
		g.globals[n.ID()] = true
	}

	if err := g.emitMethod(main); err != nil {
		return "", err
	}
	return g.render()
}

func (g *generator) intern() {
	for _, s := range builtinStrings {
		g.prog.Strings.Alias(s)
	}
	for i := 0; i <= 32; i++ {
		g.prog.Strings.Alias(fmt.Sprint(i))
	}
	g.prog.Strings.Alias("//new")
	g.prog.Strings.Alias("//method")
	for _, s := range g.opts.Strings {
		g.prog.Strings.Alias(s)
	}
}

func (g *generator) errorf(n ir.Node, format string, args ...any) error {
	var loc ir.Location
	if n != nil {
		loc = n.Loc()
	}
	return ir.Errorf(ir.ErrCodegen, loc, format, args...)
}

func (g *generator) push(n ir.Node) { g.stack = append(g.stack, n) }

func (g *generator) pop(at ir.Node) (ir.Node, error) {
	if len(g.stack) == 0 {
		return nil, ir.Errorf(ir.ErrContract, at.Loc(), "operand stack underflow")
	}
	n := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return n, nil
}

// temp declares a fresh anonymous var in the current method.
func (g *generator) temp(typ ir.Type) *ir.Var {
	v := g.prog.NewVar(ir.KindVar, "")
	v.DeclType = typ
	g.method.Add(v)
	return v
}

// node emits one IR node of the current method.
func (g *generator) node(n ir.Node) ([]string, error) {
	switch n := n.(type) {
	case *ir.Scope:
		return g.block(n, nil)
	case *ir.Method:
		return nil, nil
	case *ir.LookUp, *ir.Literal:
		g.push(n)
		return nil, nil
	case *ir.Pop:
		_, err := g.pop(n)
		return nil, err
	case *ir.Deref:
		return g.deref(n)
	case *ir.Return:
		return g.ret(n)
	case *ir.Break:
		target := g.prog.Scope(n.Target)
		if target == nil {
			return nil, ir.Errorf(ir.ErrContract, n.Loc(), "break without target")
		}
		return []string{fmt.Sprintf("goto %s; // break", exitLabel(target))}, nil
	case *ir.Continue:
		target := g.prog.Scope(n.Target)
		if target == nil {
			return nil, ir.Errorf(ir.ErrContract, n.Loc(), "continue without target")
		}
		return []string{fmt.Sprintf("goto %s; // continue", target.Tag("preLoop"))}, nil
	case *ir.ArrayLiteral:
		return g.array(n)
	case *ir.ObjectLiteral:
		return g.object(n)
	case *ir.Call:
		return g.call(n)
	case *ir.Assign:
		return g.assign(n)
	case *ir.Binary:
		return g.binary(n)
	case *ir.Unary:
		return g.unary(n)
	}
	return nil, g.errorf(n, "no writer for %T", n)
}

func (g *generator) ret(n *ir.Return) ([]string, error) {
	if !n.HasValue {
		return []string{"return {};"}, nil
	}
	top, err := g.pop(n)
	if err != nil {
		return nil, err
	}
	lines, v, err := g.resolve(n, top)
	if err != nil {
		return nil, err
	}
	return append(lines, fmt.Sprintf("return {%s};", g.encode(v))), nil
}

// exitLabel is the jump target leaving s. An if with an else branch exits
// past the else, every other scope through its failEnter label.
func exitLabel(s *ir.Scope) string {
	if !s.IsLoop() && s.FailEnter.IsValid() {
		return s.Tag("afterFail")
	}
	return s.Tag("failEnter")
}
