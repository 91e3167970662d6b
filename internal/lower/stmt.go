package lower

import (
	"errors"

	"github.com/roach88/jsc/internal/estree"
	"github.com/roach88/jsc/internal/ir"
)

// statement lowers one statement into the current scope.
func (l *lowerer) statement(n *estree.Node) error {
	return l.labeledStatement(n, nil)
}

// labeledStatement lowers n, reusing block as the statement's own scope
// when n is a block or a control statement. block carries a label.
func (l *lowerer) labeledStatement(n *estree.Node, block *ir.Scope) error {
	if n == nil {
		return nil
	}
	defer l.at(n)()

	switch n.Type {
	case "BlockStatement":
		return l.blockStatement(n, block)
	case "IfStatement":
		return l.ifStatement(n, block)
	case "WhileStatement":
		return l.whileStatement(n, block)
	case "DoWhileStatement":
		return l.doWhileStatement(n, block)
	case "ForStatement":
		return l.forStatement(n, block)
	case "ForOfStatement":
		return l.forOfStatement(n, block)
	case "LabeledStatement":
		return l.label(n, block)
	}

	if block != nil {
		// a labeled simple statement still gets a scope so break can target it
		l.attach(block)
		return l.push(block, func() error { return l.simpleStatement(n) })
	}
	return l.simpleStatement(n)
}

func (l *lowerer) simpleStatement(n *estree.Node) error {
	switch n.Type {
	case "EmptyStatement":
		return nil
	case "ExpressionStatement":
		return l.expressionStatement(n)
	case "VariableDeclaration":
		return l.variableDeclaration(n)
	case "FunctionDeclaration":
		_, err := l.function(n, "")
		return err
	case "ClassDeclaration":
		_, err := l.class(n)
		return err
	case "ReturnStatement":
		return l.returnStatement(n)
	case "BreakStatement":
		return l.jump(n, true)
	case "ContinueStatement":
		return l.jump(n, false)
	}
	return l.errorf("unsupported statement %s", n.Type)
}

// attach adds a scope created ahead of time to the current scope.
func (l *lowerer) attach(s *ir.Scope) {
	if !s.Parent().IsValid() {
		s.SetLoc(l.loc)
		l.scope.Add(s)
	}
}

// newBlock returns block, or a fresh scope, attached to the current scope.
func (l *lowerer) newBlock(block *ir.Scope, debug string) *ir.Scope {
	if block == nil {
		block = l.prog.NewScope()
	}
	if block.Debug == "" {
		block.Debug = debug
	}
	l.attach(block)
	return block
}

func (l *lowerer) blockStatement(n *estree.Node, block *ir.Scope) error {
	block = l.newBlock(block, "block")
	return l.push(block, func() error { return l.statements(n.Body) })
}

// body lowers a statement into block itself: a block statement shares
// block's scope rather than opening a nested one.
func (l *lowerer) body(n *estree.Node, block *ir.Scope) error {
	return l.push(block, func() error {
		if n != nil && n.Type == "BlockStatement" {
			defer l.at(n)()
			return l.statements(n.Body)
		}
		// a lone statement is its own block, so a skip ends with it
		err := l.statement(n)
		l.skip = false
		return err
	})
}

func (l *lowerer) label(n *estree.Node, block *ir.Scope) error {
	if block == nil {
		block = l.prog.NewScope()
	}
	block.Label = n.Label.Name
	block.Debug = n.Label.Name
	block.Breakable = true
	return l.labeledStatement(n.Single(), block)
}

// condition lowers a test expression into region, leaving its value on
// the stack for the generator's branch.
func (l *lowerer) condition(region *ir.Scope, test *estree.Node) error {
	return l.push(region, func() error {
		if err := l.expr(test); err != nil {
			return err
		}
		l.emit(l.prog.NewDeref())
		return nil
	})
}

// always marks region as unconditionally true.
func (l *lowerer) always(region *ir.Scope) {
	lit := l.literal(ir.Bool(true))
	lit.SetLoc(l.loc)
	region.Add(lit)
}

func (l *lowerer) ifStatement(n *estree.Node, block *ir.Scope) error {
	block = l.newBlock(block, "if")
	if err := l.condition(block.AddEnterCondition(), n.Test); err != nil {
		return err
	}
	if n.Alternate != nil {
		err := l.push(block.AddFailEnter(), func() error {
			err := l.statement(n.Alternate)
			l.skip = false
			return err
		})
		if err != nil {
			return err
		}
	}
	return l.body(n.Consequent, block)
}

func (l *lowerer) loop(block *ir.Scope, debug string) *ir.Scope {
	block = l.newBlock(block, debug)
	block.Breakable = true
	block.Continuable = true
	return block
}

func (l *lowerer) whileStatement(n *estree.Node, block *ir.Scope) error {
	block = l.loop(block, "while")
	if err := l.condition(block.AddEnterCondition(), n.Test); err != nil {
		return err
	}
	l.always(block.AddLoopCondition())
	return l.body(n.Single(), block)
}

func (l *lowerer) doWhileStatement(n *estree.Node, block *ir.Scope) error {
	block = l.loop(block, "doWhile")
	if err := l.condition(block.AddLoopCondition(), n.Test); err != nil {
		return err
	}
	return l.body(n.Single(), block)
}

func (l *lowerer) forStatement(n *estree.Node, block *ir.Scope) error {
	block = l.loop(block, "for")
	return l.push(block, func() error {
		if n.Init != nil {
			err := l.push(block.AddPreEnter(), func() error {
				if n.Init.Type == "VariableDeclaration" {
					return l.statement(n.Init)
				}
				if err := l.expr(n.Init); err != nil {
					return err
				}
				l.emit(l.prog.NewPop())
				return nil
			})
			if err != nil {
				return err
			}
		}
		if n.Test != nil {
			if err := l.condition(block.AddEnterCondition(), n.Test); err != nil {
				return err
			}
		}
		if n.Update != nil {
			err := l.push(block.AddPreLoop(), func() error {
				if err := l.expr(n.Update); err != nil {
					return err
				}
				l.emit(l.prog.NewPop())
				return nil
			})
			if err != nil {
				return err
			}
		}
		l.always(block.AddLoopCondition())
		return l.body(n.Single(), block)
	})
}

// forOfStatement desugars iteration over an array-like value into an index
// loop: arr = right; it = 0; while (it < arr.length) { x = arr[it]; ... it += 1 }.
func (l *lowerer) forOfStatement(n *estree.Node, block *ir.Scope) error {
	block = l.loop(block, "forOf")
	return l.push(block, func() error {
		arr := l.prog.NewVar(ir.KindVar, "")
		arr.SetLoc(l.loc)
		block.Add(arr)
		it := l.prog.NewVar(ir.KindVar, "")
		it.SetLoc(l.loc)
		block.Add(it)

		var val ir.Node
		declared := false
		err := l.push(block.AddPreEnter(), func() error {
			if err := l.assignTo(it.ID(), func() error {
				l.emit(l.literal(ir.Number(0)))
				return nil
			}); err != nil {
				return err
			}
			if err := l.assignTo(arr.ID(), func() error { return l.expr(n.Right) }); err != nil {
				return err
			}

			var name string
			switch left := n.Left; {
			case left == nil:
				return l.errorf("for-of without a binding")
			case left.Type == "Identifier":
				name = left.Name
			case left.Type == "VariableDeclaration" && len(left.Declarations) == 1 && left.Declarations[0].ID != nil && left.Declarations[0].ID.Type == "Identifier":
				if left.Declarations[0].Init != nil {
					return l.errorf("for-of binding cannot have an initializer")
				}
				if err := l.statement(left); err != nil {
					return err
				}
				name = left.Declarations[0].ID.Name
				declared = true
			default:
				return l.errorf("unsupported for-of binding %s", left.Type)
			}
			if val = l.scope.Find(ir.ByName(name), true); val == nil {
				return ir.Errorf(ir.ErrReference, l.loc, "%s is not defined", name)
			}
			return nil
		})
		if err != nil {
			return err
		}

		err = l.push(block.AddEnterCondition(), func() error {
			l.emit(
				l.lookupID(it.ID()), l.prog.NewDeref(),
				l.lookupID(arr.ID()), l.prog.NewDeref(),
				l.literal(ir.String("length")), l.prog.NewBinary("."), l.prog.NewDeref(),
				l.prog.NewBinary("<"),
			)
			return nil
		})
		if err != nil {
			return err
		}

		err = l.push(block.AddPreLoop(), func() error {
			l.emit(l.lookupID(it.ID()), l.literal(ir.Number(1)), l.prog.NewAssign("+="), l.prog.NewPop())
			return nil
		})
		if err != nil {
			return err
		}
		l.always(block.AddLoopCondition())

		var store *ir.Assign
		if declared {
			store = l.prog.NewInit()
		} else {
			store = l.prog.NewAssign("=")
		}
		l.emit(
			l.lookupID(val.ID()),
			l.lookupID(arr.ID()), l.prog.NewDeref(),
			l.lookupID(it.ID()), l.prog.NewDeref(),
			l.prog.NewBinary("[]"), l.prog.NewDeref(),
			store, l.prog.NewPop(),
		)
		return l.body(n.Single(), block)
	})
}

// jump lowers break (isBreak) or continue. An unlabeled jump targets the
// innermost loop; a labeled one the innermost scope carrying the label.
// The search does not leave the current method.
func (l *lowerer) jump(n *estree.Node, isBreak bool) error {
	label := ""
	if n.Label != nil {
		label = n.Label.Name
	}
	for i := len(l.stack) - 1; i >= 0; i-- {
		target := l.stack[i]
		if target.ID() == target.Method() {
			break
		}
		if label != "" && target.Label != label {
			continue
		}
		if isBreak {
			if !target.Breakable || (label == "" && !target.Continuable) {
				continue
			}
			target.HasBreak = true
			l.emit(l.prog.NewBreak(target.ID()))
			return nil
		}
		if !target.Continuable {
			continue
		}
		target.HasContinue = true
		l.emit(l.prog.NewContinue(target.ID()))
		return nil
	}

	keyword := "continue"
	if isBreak {
		keyword = "break"
	}
	if label != "" {
		return l.errorf("undefined label %q for %s", label, keyword)
	}
	return l.errorf("illegal %s statement", keyword)
}

func (l *lowerer) returnStatement(n *estree.Node) error {
	if n.Argument != nil {
		if err := l.expr(n.Argument); err != nil {
			return err
		}
		l.emit(l.prog.NewDeref())
	}
	l.emit(l.prog.NewReturn(n.Argument != nil))
	return nil
}

func (l *lowerer) expressionStatement(n *estree.Node) error {
	e := n.Expr
	if e == nil {
		return l.errorf("expression statement without expression")
	}
	if e.Type == "Literal" {
		if text, ok := e.Value.(string); ok {
			return l.directive(text)
		}
	}
	var err error
	switch e.Type {
	case "CallExpression":
		err = l.call(e, false, true)
	case "NewExpression":
		err = l.call(e, true, true)
	default:
		err = l.expr(e)
	}
	if err != nil {
		return err
	}
	l.emit(l.prog.NewPop())
	return nil
}

func (l *lowerer) directive(text string) error {
	if l.directives == nil {
		return nil
	}
	skip, err := l.directives.Directive(text)
	if err != nil {
		var diag *ir.Error
		if errors.As(err, &diag) {
			return err
		}
		return ir.Errorf(ir.ErrSyntax, l.loc, "directive %q: %v", text, err)
	}
	if skip {
		l.skip = true
	}
	return nil
}

func (l *lowerer) variableDeclaration(n *estree.Node) error {
	kind, ok := ir.ParseKind(n.Kind)
	if !ok || (kind != ir.KindVar && kind != ir.KindLet && kind != ir.KindConst) {
		return l.errorf("unsupported declaration kind %q", n.Kind)
	}
	for _, d := range n.Declarations {
		if err := l.declarator(d, kind); err != nil {
			return err
		}
	}
	return nil
}

func (l *lowerer) declarator(n *estree.Node, kind ir.Kind) error {
	defer l.at(n)()
	if n.ID == nil || n.ID.Type != "Identifier" {
		typ := "nothing"
		if n.ID != nil {
			typ = n.ID.Type
		}
		return l.errorf("unsupported declarator %s", typ)
	}
	name := n.ID.Name

	target := l.scope
	if kind == ir.KindVar {
		target = &l.method().Scope
	}
	switch prev := target.Find(ir.ByName(name), false).(type) {
	case nil:
		v := l.prog.NewVar(kind, name)
		v.SetLoc(l.loc)
		target.Add(v)
	case *ir.Var:
		if kind != ir.KindVar || prev.Kind != ir.KindVar {
			return l.errorf("redeclaration of %s %s", prev.Kind, name)
		}
	default:
		return l.errorf("redeclaration of %s", name)
	}

	if n.Init == nil {
		return nil
	}
	l.emit(l.lookup(name))
	if err := l.expr(n.Init); err != nil {
		return err
	}
	l.emit(l.prog.NewDeref(), l.prog.NewInit(), l.prog.NewPop())
	return nil
}
