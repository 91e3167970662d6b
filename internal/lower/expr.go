package lower

import (
	"github.com/roach88/jsc/internal/estree"
	"github.com/roach88/jsc/internal/ir"
)

// expr lowers an expression, leaving exactly one operand on the stack.
func (l *lowerer) expr(n *estree.Node) error {
	if n == nil {
		return l.errorf("missing expression")
	}
	defer l.at(n)()

	switch n.Type {
	case "Identifier":
		if n.Name == "undefined" {
			l.emit(l.literal(ir.Undefined()))
		} else {
			l.emit(l.lookup(n.Name))
		}
		return nil
	case "ThisExpression":
		l.emit(l.lookup("this"))
		return nil
	case "Literal":
		return l.literalExpr(n)
	case "ArrayExpression":
		return l.array(n)
	case "ObjectExpression":
		return l.object(n)
	case "UnaryExpression":
		return l.unary(n)
	case "UpdateExpression":
		return l.update(n)
	case "BinaryExpression":
		return l.binary(n)
	case "LogicalExpression":
		return l.logical(n)
	case "ConditionalExpression":
		return l.conditional(n)
	case "SequenceExpression":
		return l.sequence(n)
	case "AssignmentExpression":
		return l.assign(n)
	case "MemberExpression":
		return l.member(n)
	case "CallExpression":
		return l.call(n, false, false)
	case "NewExpression":
		return l.call(n, true, false)
	case "FunctionExpression", "ArrowFunctionExpression":
		m, err := l.function(n, "")
		if err != nil {
			return err
		}
		l.emit(l.lookupID(m.ID()))
		return nil
	case "ClassExpression":
		m, err := l.class(n)
		if err != nil {
			return err
		}
		l.emit(l.lookupID(m.ID()))
		return nil
	}
	return l.errorf("unsupported expression %s", n.Type)
}

// value lowers n and dereferences the result.
func (l *lowerer) value(n *estree.Node) error {
	if err := l.expr(n); err != nil {
		return err
	}
	l.emit(l.prog.NewDeref())
	return nil
}

func (l *lowerer) literalExpr(n *estree.Node) error {
	if n.Regex != nil {
		return l.errorf("regular expression literals are not supported")
	}
	v, err := ir.FromJSON(n.Value)
	if err != nil {
		return l.errorf("literal: %v", err)
	}
	l.emit(l.literal(v))
	return nil
}

func (l *lowerer) array(n *estree.Node) error {
	for _, el := range n.Elements {
		if el == nil {
			l.emit(l.literal(ir.Undefined()))
			continue
		}
		if el.Type == "SpreadElement" {
			return l.errorf("spread elements are not supported")
		}
		if err := l.value(el); err != nil {
			return err
		}
	}
	l.emit(l.prog.NewArrayLiteral(len(n.Elements)))
	return nil
}

func (l *lowerer) object(n *estree.Node) error {
	for _, prop := range n.Properties {
		if prop.Type != "Property" {
			return l.errorf("unsupported object member %s", prop.Type)
		}
		if prop.Kind != "" && prop.Kind != "init" {
			return l.errorf("%s accessors are not supported", prop.Kind)
		}
		if err := l.propertyKey(prop); err != nil {
			return err
		}
		if err := l.value(prop.ValueNode); err != nil {
			return err
		}
	}
	l.emit(l.prog.NewObjectLiteral(len(n.Properties), false))
	return nil
}

// propertyKey pushes an object literal key. Static keys become literals.
func (l *lowerer) propertyKey(prop *estree.Node) error {
	key := prop.Key
	switch {
	case key == nil:
		return l.errorf("property without key")
	case prop.Computed:
		return l.value(key)
	case key.Type == "Identifier":
		l.emit(l.literal(ir.String(key.Name)))
		return nil
	case key.Type == "Literal":
		return l.literalExpr(key)
	}
	return l.errorf("unsupported property key %s", key.Type)
}

func (l *lowerer) unary(n *estree.Node) error {
	switch n.Operator {
	case "-", "+", "!", "~", "typeof", "void":
	default:
		return l.errorf("unsupported unary operator %s", n.Operator)
	}
	if err := l.value(n.Argument); err != nil {
		return err
	}
	l.emit(l.prog.NewUnary(n.Operator, true))
	return nil
}

// assignable reports whether n may appear on the left of an assignment.
func assignable(n *estree.Node) bool {
	return n != nil && (n.Type == "Identifier" && n.Name != "undefined" || n.Type == "MemberExpression")
}

func (l *lowerer) update(n *estree.Node) error {
	if !assignable(n.Argument) {
		return l.errorf("invalid %s operand", n.Operator)
	}
	if err := l.expr(n.Argument); err != nil {
		return err
	}
	l.emit(l.prog.NewUnary(n.Operator, n.Prefix))
	return nil
}

var binaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"<": true, "<=": true, ">": true, ">=": true,
	"==": true, "!=": true, "===": true, "!==": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true, ">>>": true,
}

func (l *lowerer) binary(n *estree.Node) error {
	if !binaryOps[n.Operator] {
		return l.errorf("unsupported binary operator %s", n.Operator)
	}
	if err := l.value(n.Left); err != nil {
		return err
	}
	if err := l.value(n.Right); err != nil {
		return err
	}
	l.emit(l.prog.NewBinary(n.Operator))
	return nil
}

// temp declares an anonymous var in the current scope.
func (l *lowerer) temp() *ir.Var {
	v := l.prog.NewVar(ir.KindVar, "")
	v.SetLoc(l.loc)
	l.scope.Add(v)
	return v
}

// logical desugars a && b into: t = a; if (t) t = b; and a || b into:
// t = a; if (t) {} else t = b. The temporary is the result.
func (l *lowerer) logical(n *estree.Node) error {
	if n.Operator != "&&" && n.Operator != "||" {
		return l.errorf("unsupported logical operator %s", n.Operator)
	}
	tmp := l.temp()
	if err := l.assignTo(tmp.ID(), func() error { return l.expr(n.Left) }); err != nil {
		return err
	}

	block := l.newBlock(nil, n.Operator)
	err := l.push(block.AddEnterCondition(), func() error {
		l.emit(l.lookupID(tmp.ID()), l.prog.NewDeref())
		return nil
	})
	if err != nil {
		return err
	}
	rhs := block
	if n.Operator == "||" {
		rhs = block.AddFailEnter()
	}
	err = l.push(rhs, func() error {
		return l.assignTo(tmp.ID(), func() error { return l.expr(n.Right) })
	})
	if err != nil {
		return err
	}

	l.emit(l.lookupID(tmp.ID()))
	return nil
}

func (l *lowerer) conditional(n *estree.Node) error {
	tmp := l.temp()
	block := l.newBlock(nil, "?:")
	if err := l.condition(block.AddEnterCondition(), n.Test); err != nil {
		return err
	}
	err := l.push(block, func() error {
		return l.assignTo(tmp.ID(), func() error { return l.expr(n.Consequent) })
	})
	if err != nil {
		return err
	}
	err = l.push(block.AddFailEnter(), func() error {
		return l.assignTo(tmp.ID(), func() error { return l.expr(n.Alternate) })
	})
	if err != nil {
		return err
	}
	l.emit(l.lookupID(tmp.ID()))
	return nil
}

func (l *lowerer) sequence(n *estree.Node) error {
	if len(n.Expressions) == 0 {
		return l.errorf("empty sequence expression")
	}
	last := len(n.Expressions) - 1
	for i, e := range n.Expressions {
		if err := l.expr(e); err != nil {
			return err
		}
		if i < last {
			l.emit(l.prog.NewPop())
		}
	}
	return nil
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true, ">>>=": true,
}

func (l *lowerer) assign(n *estree.Node) error {
	if !assignOps[n.Operator] {
		return l.errorf("unsupported assignment operator %s", n.Operator)
	}
	if !assignable(n.Left) {
		typ := "nothing"
		if n.Left != nil {
			typ = n.Left.Type
		}
		return l.errorf("invalid assignment target %s", typ)
	}
	if err := l.expr(n.Left); err != nil {
		return err
	}
	if err := l.value(n.Right); err != nil {
		return err
	}
	l.emit(l.prog.NewAssign(n.Operator))
	return nil
}

// member lowers obj.key and obj[key] into a property reference.
func (l *lowerer) member(n *estree.Node) error {
	if n.Object != nil && n.Object.Type == "Super" {
		return l.errorf("super is not supported")
	}
	if err := l.value(n.Object); err != nil {
		return err
	}
	if n.Computed {
		if err := l.value(n.Property); err != nil {
			return err
		}
		l.emit(l.prog.NewBinary("[]"))
		return nil
	}
	if n.Property == nil || n.Property.Type != "Identifier" {
		return l.errorf("unsupported member property")
	}
	l.emit(l.literal(ir.String(n.Property.Name)), l.prog.NewBinary("."))
	return nil
}

// call lowers a call or construction. discard marks a statement-level
// call whose result is never read.
func (l *lowerer) call(n *estree.Node, isNew, discard bool) error {
	defer l.at(n)()
	if n.Callee != nil && n.Callee.Type == "Super" {
		return l.errorf("super calls are not supported")
	}
	if err := l.expr(n.Callee); err != nil {
		return err
	}
	for _, arg := range n.Arguments {
		if arg.Type == "SpreadElement" {
			return l.errorf("spread arguments are not supported")
		}
		if err := l.value(arg); err != nil {
			return err
		}
	}
	l.emit(l.prog.NewCall(len(n.Arguments), isNew, false, discard))
	return nil
}
