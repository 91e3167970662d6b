package estree

// Builders for hand-assembled trees. They produce the same shapes the
// external parser emits, without locations unless At is applied.

// At sets the node's start position and returns it.
func At(n *Node, line, column int) *Node {
	n.Loc = &SourceLocation{Start: Position{Line: line, Column: column}, End: Position{Line: line, Column: column}}
	return n
}

func Program(body ...*Node) *Node {
	return &Node{Type: "Program", Body: body}
}

func Ident(name string) *Node { return &Node{Type: "Identifier", Name: name} }

func Num(f float64) *Node { return &Node{Type: "Literal", Value: f, HasValue: true} }

func Str(s string) *Node { return &Node{Type: "Literal", Value: s, HasValue: true} }

func Boolean(b bool) *Node { return &Node{Type: "Literal", Value: b, HasValue: true} }

func Null() *Node { return &Node{Type: "Literal", HasValue: true} }

func This() *Node { return &Node{Type: "ThisExpression"} }

// Decl declares a single binding: kind is var, let or const.
func Decl(kind, name string, init *Node) *Node {
	return &Node{
		Type: "VariableDeclaration",
		Kind: kind,
		Declarations: []*Node{{
			Type: "VariableDeclarator",
			ID:   Ident(name),
			Init: init,
		}},
	}
}

func ExprStmt(e *Node) *Node { return &Node{Type: "ExpressionStatement", Expr: e} }

func Assign(op string, left, right *Node) *Node {
	return &Node{Type: "AssignmentExpression", Operator: op, Left: left, Right: right}
}

func Binary(op string, left, right *Node) *Node {
	return &Node{Type: "BinaryExpression", Operator: op, Left: left, Right: right}
}

func Logical(op string, left, right *Node) *Node {
	return &Node{Type: "LogicalExpression", Operator: op, Left: left, Right: right}
}

func Unary(op string, arg *Node) *Node {
	return &Node{Type: "UnaryExpression", Operator: op, Prefix: true, Argument: arg}
}

func Update(op string, prefix bool, arg *Node) *Node {
	return &Node{Type: "UpdateExpression", Operator: op, Prefix: prefix, Argument: arg}
}

// Member builds obj.prop.
func Member(obj *Node, prop string) *Node {
	return &Node{Type: "MemberExpression", Object: obj, Property: Ident(prop)}
}

// Index builds obj[key].
func Index(obj, key *Node) *Node {
	return &Node{Type: "MemberExpression", Object: obj, Property: key, Computed: true}
}

func Call(callee *Node, args ...*Node) *Node {
	return &Node{Type: "CallExpression", Callee: callee, Arguments: args}
}

func NewExpr(callee *Node, args ...*Node) *Node {
	return &Node{Type: "NewExpression", Callee: callee, Arguments: args}
}

func Block(body ...*Node) *Node {
	return &Node{Type: "BlockStatement", Body: body}
}

func If(test, consequent, alternate *Node) *Node {
	return &Node{Type: "IfStatement", Test: test, Consequent: consequent, Alternate: alternate}
}

func While(test, body *Node) *Node {
	return &Node{Type: "WhileStatement", Test: test, Body: []*Node{body}}
}

func DoWhile(body, test *Node) *Node {
	return &Node{Type: "DoWhileStatement", Test: test, Body: []*Node{body}}
}

func For(init, test, update, body *Node) *Node {
	return &Node{Type: "ForStatement", Init: init, Test: test, Update: update, Body: []*Node{body}}
}

func ForOf(left, right, body *Node) *Node {
	return &Node{Type: "ForOfStatement", Left: left, Right: right, Body: []*Node{body}}
}

func Break(label string) *Node {
	n := &Node{Type: "BreakStatement"}
	if label != "" {
		n.Label = Ident(label)
	}
	return n
}

func Continue(label string) *Node {
	n := &Node{Type: "ContinueStatement"}
	if label != "" {
		n.Label = Ident(label)
	}
	return n
}

func Labeled(label string, body *Node) *Node {
	return &Node{Type: "LabeledStatement", Label: Ident(label), Body: []*Node{body}}
}

func Return(arg *Node) *Node {
	return &Node{Type: "ReturnStatement", Argument: arg}
}

// Func builds a function declaration.
func Func(name string, params []*Node, body ...*Node) *Node {
	return &Node{Type: "FunctionDeclaration", ID: Ident(name), Params: params, Body: []*Node{Block(body...)}}
}

// FuncExpr builds an anonymous function expression.
func FuncExpr(params []*Node, body ...*Node) *Node {
	return &Node{Type: "FunctionExpression", Params: params, Body: []*Node{Block(body...)}}
}

// Arrow builds an arrow function with a concise expression body.
func Arrow(params []*Node, body *Node) *Node {
	return &Node{Type: "ArrowFunctionExpression", Params: params, Body: []*Node{body}, Expression: true}
}

func Class(name string, members ...*Node) *Node {
	return &Node{Type: "ClassDeclaration", ID: Ident(name), Body: []*Node{{Type: "ClassBody", Body: members}}}
}

// MethodDef builds a class member; name "constructor" yields the constructor.
func MethodDef(name string, params []*Node, body ...*Node) *Node {
	kind := "method"
	if name == "constructor" {
		kind = "constructor"
	}
	return &Node{Type: "MethodDefinition", Kind: kind, Key: Ident(name), ValueNode: FuncExpr(params, body...)}
}

func Array(elements ...*Node) *Node {
	return &Node{Type: "ArrayExpression", Elements: elements}
}

func Object(props ...*Node) *Node {
	return &Node{Type: "ObjectExpression", Properties: props}
}

// Prop builds a non-computed key: value property.
func Prop(key string, value *Node) *Node {
	return &Node{Type: "Property", Kind: "init", Key: Ident(key), ValueNode: value}
}

func Cond(test, consequent, alternate *Node) *Node {
	return &Node{Type: "ConditionalExpression", Test: test, Consequent: consequent, Alternate: alternate}
}

func Seq(exprs ...*Node) *Node {
	return &Node{Type: "SequenceExpression", Expressions: exprs}
}

// Default builds a defaulted parameter.
func Default(name string, value *Node) *Node {
	return &Node{Type: "AssignmentPattern", Left: Ident(name), Right: value}
}

// Params is shorthand for a list of plain identifier parameters.
func Params(names ...string) []*Node {
	out := make([]*Node, len(names))
	for i, name := range names {
		out[i] = Ident(name)
	}
	return out
}
