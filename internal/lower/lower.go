// Package lower converts an ESTree program into IR.
//
// Expressions are linearized onto an operand stack: every expression pushes
// either a pending LookUp or a value, and Deref is emitted wherever the
// consumer needs the value rather than the reference. Structured statements
// become Scopes using the five control-flow regions.
package lower

import (
	"github.com/roach88/jsc/internal/estree"
	"github.com/roach88/jsc/internal/ir"
)

// DirectiveHandler receives bare string-literal statements. Returning
// skipRest drops the remaining statements of the enclosing block.
type DirectiveHandler interface {
	Directive(text string) (skipRest bool, err error)
}

// DirectiveFunc adapts a function to DirectiveHandler.
type DirectiveFunc func(text string) (bool, error)

// Directive calls f.
func (f DirectiveFunc) Directive(text string) (bool, error) { return f(text) }

// Lower lowers root, which must be a Program node, into p's main method.
// The first error aborts lowering; the program must then be discarded.
func Lower(p *ir.Program, file string, root *estree.Node, directives DirectiveHandler) error {
	if root == nil || root.Type != "Program" {
		return ir.Errorf(ir.ErrSyntax, ir.Location{File: file}, "expected a Program node")
	}
	l := &lowerer{
		prog:       p,
		loc:        ir.Location{File: file},
		directives: directives,
	}
	if err := l.program(root); err != nil {
		return err
	}
	p.AddSource(file, root)
	return nil
}

type lowerer struct {
	prog  *ir.Program
	scope *ir.Scope
	stack []*ir.Scope
	loc   ir.Location

	directives DirectiveHandler
	// skip is set by a directive that cancels the rest of its block.
	skip bool
}

func (l *lowerer) errorf(format string, args ...any) error {
	return ir.Errorf(ir.ErrSyntax, l.loc, format, args...)
}

// at moves the current location to n and returns a func restoring it.
func (l *lowerer) at(n *estree.Node) func() {
	prev := l.loc
	if n != nil && n.Loc != nil {
		l.loc.Line = n.Loc.Start.Line
		l.loc.Column = n.Loc.Start.Column
	}
	return func() { l.loc = prev }
}

// push makes s the current scope while fn runs.
func (l *lowerer) push(s *ir.Scope, fn func() error) error {
	prev := l.scope
	l.scope = s
	l.stack = append(l.stack, s)
	err := fn()
	l.stack = l.stack[:len(l.stack)-1]
	l.scope = prev
	return err
}

// emit appends nodes to the current scope, stamped with the current location.
func (l *lowerer) emit(nodes ...ir.Node) {
	for _, n := range nodes {
		n.SetLoc(l.loc)
		l.scope.Add(n)
	}
}

func (l *lowerer) lookup(name string) *ir.LookUp { return l.prog.NewLookUp(ir.ByName(name)) }

func (l *lowerer) lookupID(id ir.ID) *ir.LookUp { return l.prog.NewLookUp(ir.ByID(id)) }

func (l *lowerer) literal(v ir.Value) *ir.Literal { return l.prog.NewLiteral(v) }

func (l *lowerer) method() *ir.Method { return l.prog.Method(l.scope.Method()) }

// assignTo emits "target = <top of stack>" for a var addressed by id,
// where value pushes the right-hand side.
func (l *lowerer) assignTo(id ir.ID, value func() error) error {
	l.emit(l.lookupID(id))
	if err := value(); err != nil {
		return err
	}
	l.emit(l.prog.NewDeref(), l.prog.NewAssign("="), l.prog.NewPop())
	return nil
}

func (l *lowerer) program(n *estree.Node) error {
	defer l.at(n)()
	return l.push(&l.prog.MainMethod().Scope, func() error {
		return l.statements(n.Body)
	})
}

// statements lowers a statement list, honoring directive cancellation.
func (l *lowerer) statements(list []*estree.Node) error {
	for _, stmt := range list {
		if err := l.statement(stmt); err != nil {
			return err
		}
		if l.skip {
			l.skip = false
			break
		}
	}
	return nil
}
