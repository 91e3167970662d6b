package lower

import (
	"github.com/roach88/jsc/internal/estree"
	"github.com/roach88/jsc/internal/ir"
)

// function lowers a function declaration, expression or arrow into a new
// Method added to the current scope. name overrides the node's own id.
func (l *lowerer) function(n *estree.Node, name string) (*ir.Method, error) {
	defer l.at(n)()
	if n.Generator || n.Async {
		return nil, l.errorf("generator and async functions are not supported")
	}
	if name == "" && n.ID != nil {
		name = n.ID.Name
	}
	m := l.prog.NewMethod(name)
	m.SetLoc(l.loc)
	l.scope.Add(m)

	err := l.push(&m.Scope, func() error {
		if err := l.parameters(m, n); err != nil {
			return err
		}
		body := n.Single()
		if body == nil {
			return l.errorf("function without body")
		}
		if n.Expression && body.Type != "BlockStatement" {
			if err := l.value(body); err != nil {
				return err
			}
			l.emit(l.prog.NewReturn(true))
			return nil
		}
		defer l.at(body)()
		return l.statements(body.Body)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// parameters binds each parameter from the argument bag. An argument
// count is only materialized when a default value needs it, and an
// arguments var only when the body refers to it.
func (l *lowerer) parameters(m *ir.Method, n *estree.Node) error {
	needsArgc := false
	for _, p := range n.Params {
		switch {
		case p.Type == "Identifier":
		case p.Type == "AssignmentPattern" && p.Left != nil && p.Left.Type == "Identifier":
			needsArgc = true
		default:
			return l.errorf("unsupported parameter %s", p.Type)
		}
	}
	needsArgs := n.Type != "ArrowFunctionExpression" && usesArguments(n)

	bag := m.Args
	if needsArgs {
		args := l.prog.NewVar(ir.KindVar, "arguments")
		args.SetLoc(l.loc)
		m.Add(args)
		bag = args.ID()
		l.emit(l.lookupID(bag), l.lookupID(m.Args), l.prog.NewDeref(), l.prog.NewAssign("="), l.prog.NewPop())
	}

	var argc *ir.Var
	if needsArgc {
		argc = l.temp()
		err := l.assignTo(argc.ID(), func() error {
			l.emit(l.lookupID(m.Args), l.prog.NewDeref(), l.literal(ir.String("length")), l.prog.NewBinary("."))
			return nil
		})
		if err != nil {
			return err
		}
	}

	for index, p := range n.Params {
		if err := l.parameter(m, bag, argc, index, p); err != nil {
			return err
		}
	}
	return nil
}

func (l *lowerer) parameter(m *ir.Method, bag ir.ID, argc *ir.Var, index int, p *estree.Node) error {
	defer l.at(p)()
	name := p.Name
	if p.Type == "AssignmentPattern" {
		name = p.Left.Name
	}
	if prev := m.Find(ir.ByName(name), false); prev != nil {
		return l.errorf("duplicate parameter %s", name)
	}
	v := l.prog.NewVar(ir.KindVar, name)
	v.SetLoc(l.loc)
	m.Add(v)

	err := l.assignTo(v.ID(), func() error {
		l.emit(l.lookupID(bag), l.prog.NewDeref(), l.literal(ir.Number(float64(index))), l.prog.NewBinary("."))
		return nil
	})
	if err != nil || p.Type != "AssignmentPattern" {
		return err
	}
	return l.defaultValue(v, argc, index, p.Right)
}

// defaultValue emits: if (argc <= index) v = value.
func (l *lowerer) defaultValue(v, argc *ir.Var, index int, value *estree.Node) error {
	block := l.newBlock(nil, "default")
	err := l.push(block.AddEnterCondition(), func() error {
		l.emit(
			l.lookupID(argc.ID()), l.prog.NewDeref(),
			l.literal(ir.Number(float64(index))),
			l.prog.NewBinary("<="),
		)
		return nil
	})
	if err != nil {
		return err
	}
	return l.push(block, func() error {
		return l.assignTo(v.ID(), func() error { return l.expr(value) })
	})
}

// usesArguments reports whether fn's body refers to arguments, looking
// through arrow functions but not into nested ordinary functions.
func usesArguments(fn *estree.Node) bool {
	found := false
	for _, stmt := range fn.Body {
		estree.Walk(stmt, func(n *estree.Node) bool {
			if found {
				return false
			}
			switch n.Type {
			case "FunctionDeclaration", "FunctionExpression", "ClassDeclaration", "ClassExpression":
				return false
			case "Identifier":
				if n.Name == "arguments" {
					found = true
				}
			case "MemberExpression":
				// obj.arguments is a property name, not a reference
				if !n.Computed {
					estree.Walk(n.Object, func(c *estree.Node) bool {
						if c.Type == "Identifier" && c.Name == "arguments" {
							found = true
						}
						return !found && c.Type != "FunctionExpression" && c.Type != "FunctionDeclaration"
					})
					return false
				}
			}
			return true
		})
	}
	return found
}

// class lowers a class into a Method that installs every member on this
// and then forwards its arguments to the constructor, if any.
func (l *lowerer) class(n *estree.Node) (*ir.Method, error) {
	defer l.at(n)()
	if n.SuperClass != nil {
		return nil, l.errorf("class inheritance is not supported")
	}
	name := ""
	if n.ID != nil {
		name = n.ID.Name
	}
	clazz := l.prog.NewMethod(name)
	clazz.IsClass = true
	clazz.SetLoc(l.loc)
	l.scope.Add(clazz)

	err := l.push(&clazz.Scope, func() error {
		var members []*ir.Method
		if body := n.Single(); body != nil {
			for _, member := range body.Body {
				m, err := l.classMember(member)
				if err != nil {
					return err
				}
				members = append(members, m)
			}
		}

		that := l.prog.Var(clazz.This)
		var ctor *ir.Method
		for _, m := range members {
			if m.Name == "constructor" {
				ctor = m
			}
			that.AddDeref(m.Name)
			l.emit(
				l.lookup("this"), l.prog.NewDeref(),
				l.literal(ir.String(m.Name)), l.prog.NewBinary("."),
				l.lookupID(m.ID()), l.prog.NewDeref(),
				l.prog.NewAssign("="), l.prog.NewPop(),
			)
		}
		if ctor != nil {
			callee := l.lookup("constructor")
			callee.Container = clazz.ID()
			l.emit(callee, l.prog.NewCall(0, true, true, true))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clazz, nil
}

func (l *lowerer) classMember(n *estree.Node) (*ir.Method, error) {
	defer l.at(n)()
	if n.Type != "MethodDefinition" {
		return nil, l.errorf("unsupported class member %s", n.Type)
	}
	switch n.Kind {
	case "", "method", "constructor":
	default:
		return nil, l.errorf("%s accessors are not supported", n.Kind)
	}
	if n.Computed || n.Key == nil {
		return nil, l.errorf("computed class member names are not supported")
	}
	var name string
	switch n.Key.Type {
	case "Identifier":
		name = n.Key.Name
	case "Literal":
		s, ok := n.Key.Value.(string)
		if !ok {
			return nil, l.errorf("unsupported class member name")
		}
		name = s
	default:
		return nil, l.errorf("unsupported class member name %s", n.Key.Type)
	}
	if prev := l.scope.Find(ir.ByName(name), false); prev != nil {
		return nil, l.errorf("duplicate class member %s", name)
	}
	if n.ValueNode == nil {
		return nil, l.errorf("class member %s has no body", name)
	}
	return l.function(n.ValueNode, name)
}
