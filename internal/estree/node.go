// Package estree decodes the position-annotated ESTree JSON produced by an
// external JavaScript parser (for example `esprima --loc` or
// `acorn --locations`).
package estree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Position is a 1-based line and 0-based column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SourceLocation spans a node.
type SourceLocation struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Regex describes a regular-expression literal.
type Regex struct {
	Pattern string `json:"pattern"`
	Flags   string `json:"flags"`
}

// Node is one ESTree node. Fields not used by a node type stay zero.
//
// ESTree reuses "body" for both statement lists and single statements, and
// "value" for both literal values and child nodes. Body always decodes to a
// slice; Value holds a literal's scalar and ValueNode a child node.
type Node struct {
	Type string          `json:"type"`
	Loc  *SourceLocation `json:"loc,omitempty"`

	Name     string `json:"name,omitempty"`
	Raw      string `json:"raw,omitempty"`
	Regex    *Regex `json:"regex,omitempty"`
	Operator string `json:"operator,omitempty"`
	Kind     string `json:"kind,omitempty"`

	Prefix     bool `json:"prefix,omitempty"`
	Computed   bool `json:"computed,omitempty"`
	Static     bool `json:"static,omitempty"`
	Expression bool `json:"-"`
	Generator  bool `json:"generator,omitempty"`
	Async      bool `json:"async,omitempty"`
	Shorthand  bool `json:"shorthand,omitempty"`
	Method     bool `json:"method,omitempty"`

	// Expr is an ExpressionStatement's expression. ESTree also uses
	// "expression" as a boolean flag on arrow functions; see Expression.
	Expr *Node `json:"-"`

	ID         *Node `json:"id,omitempty"`
	Init       *Node `json:"init,omitempty"`
	Test       *Node `json:"test,omitempty"`
	Consequent *Node `json:"-"`
	Alternate  *Node `json:"alternate,omitempty"`
	Update     *Node `json:"update,omitempty"`
	Left       *Node `json:"left,omitempty"`
	Right      *Node `json:"right,omitempty"`
	Argument   *Node `json:"argument,omitempty"`
	Object     *Node `json:"object,omitempty"`
	Property   *Node `json:"property,omitempty"`
	Callee     *Node `json:"callee,omitempty"`
	Key        *Node `json:"key,omitempty"`
	Label      *Node `json:"label,omitempty"`
	SuperClass *Node `json:"superClass,omitempty"`

	Params       []*Node `json:"params,omitempty"`
	Arguments    []*Node `json:"arguments,omitempty"`
	Elements     []*Node `json:"elements,omitempty"`
	Properties   []*Node `json:"properties,omitempty"`
	Declarations []*Node `json:"declarations,omitempty"`
	Expressions  []*Node `json:"expressions,omitempty"`
	Cases        []*Node `json:"cases,omitempty"`

	// Statements holds a SwitchCase's consequent list.
	Statements []*Node `json:"-"`

	Body      []*Node `json:"-"`
	Value     any     `json:"-"`
	ValueNode *Node   `json:"-"`
	HasValue  bool    `json:"-"`
}

// UnmarshalJSON decodes the polymorphic body and value fields.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	aux := struct {
		*plain
		Body       json.RawMessage `json:"body"`
		Value      json.RawMessage `json:"value"`
		Consequent json.RawMessage `json:"consequent"`
		Expression json.RawMessage `json:"expression"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	expression := bytes.TrimSpace(aux.Expression)
	switch {
	case len(expression) == 0 || bytes.Equal(expression, []byte("null")):
	case expression[0] == '{':
		if err := json.Unmarshal(expression, &n.Expr); err != nil {
			return fmt.Errorf("%s.expression: %w", n.Type, err)
		}
	default:
		if err := json.Unmarshal(expression, &n.Expression); err != nil {
			return fmt.Errorf("%s.expression: %w", n.Type, err)
		}
	}

	consequent := bytes.TrimSpace(aux.Consequent)
	switch {
	case len(consequent) == 0 || bytes.Equal(consequent, []byte("null")):
	case consequent[0] == '[':
		if err := json.Unmarshal(consequent, &n.Statements); err != nil {
			return fmt.Errorf("%s.consequent: %w", n.Type, err)
		}
	default:
		if err := json.Unmarshal(consequent, &n.Consequent); err != nil {
			return fmt.Errorf("%s.consequent: %w", n.Type, err)
		}
	}

	body := bytes.TrimSpace(aux.Body)
	switch {
	case len(body) == 0 || bytes.Equal(body, []byte("null")):
	case body[0] == '[':
		if err := json.Unmarshal(body, &n.Body); err != nil {
			return fmt.Errorf("%s.body: %w", n.Type, err)
		}
	default:
		var single Node
		if err := json.Unmarshal(body, &single); err != nil {
			return fmt.Errorf("%s.body: %w", n.Type, err)
		}
		n.Body = []*Node{&single}
	}

	value := bytes.TrimSpace(aux.Value)
	if len(value) == 0 {
		return nil
	}
	n.HasValue = true
	if value[0] == '{' {
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(value, &probe); err == nil && probe.Type != "" {
			var child Node
			if err := json.Unmarshal(value, &child); err != nil {
				return fmt.Errorf("%s.value: %w", n.Type, err)
			}
			n.ValueNode = &child
			return nil
		}
	}
	// regex literals carry an empty object here; Regex describes them
	if err := json.Unmarshal(value, &n.Value); err != nil {
		return fmt.Errorf("%s.value: %w", n.Type, err)
	}
	return nil
}

// MarshalJSON re-emits the node in ESTree shape.
func (n *Node) MarshalJSON() ([]byte, error) {
	type plain Node
	aux := struct {
		*plain
		Body       any `json:"body,omitempty"`
		Value      any `json:"value,omitempty"`
		Consequent any `json:"consequent,omitempty"`
		Expression any `json:"expression,omitempty"`
	}{plain: (*plain)(n)}
	switch {
	case n.Expr != nil:
		aux.Expression = n.Expr
	case n.Expression:
		aux.Expression = true
	}
	switch {
	case n.Consequent != nil:
		aux.Consequent = n.Consequent
	case n.Type == "SwitchCase":
		aux.Consequent = n.Statements
	}
	switch {
	case n.Type == "Program" || n.Type == "BlockStatement" || n.Type == "ClassBody":
		body := n.Body
		if body == nil {
			body = []*Node{}
		}
		aux.Body = body
	case len(n.Body) > 0:
		aux.Body = n.Body[0]
	}
	switch {
	case n.ValueNode != nil:
		aux.Value = n.ValueNode
	case n.HasValue && n.Value == nil:
		aux.Value = json.RawMessage("null")
	case n.HasValue:
		aux.Value = n.Value
	}
	return json.Marshal(aux)
}

// Single returns the only body node, for statements with a non-list body.
func (n *Node) Single() *Node {
	if len(n.Body) == 0 {
		return nil
	}
	return n.Body[0]
}

// Line returns the start line, or 0 when the node carries no location.
func (n *Node) Line() int {
	if n == nil || n.Loc == nil {
		return 0
	}
	return n.Loc.Start.Line
}

// Column returns the start column.
func (n *Node) Column() int {
	if n == nil || n.Loc == nil {
		return 0
	}
	return n.Loc.Start.Column
}

// Children lists every direct child node in source field order.
func (n *Node) Children() []*Node {
	var out []*Node
	add := func(c ...*Node) {
		for _, child := range c {
			if child != nil {
				out = append(out, child)
			}
		}
	}
	add(n.ID, n.SuperClass, n.Key, n.Label, n.Init, n.Test, n.Left, n.Right, n.Object, n.Property, n.Callee)
	add(n.Params...)
	add(n.Declarations...)
	add(n.Arguments...)
	add(n.Elements...)
	add(n.Properties...)
	add(n.Expressions...)
	add(n.Cases...)
	add(n.Update, n.Argument, n.Expr, n.ValueNode)
	add(n.Body...)
	add(n.Consequent)
	add(n.Statements...)
	add(n.Alternate)
	return out
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// Parse decodes an ESTree Program.
func Parse(data []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode estree: %w", err)
	}
	if root.Type != "Program" {
		return nil, fmt.Errorf("decode estree: root node is %q, want Program", root.Type)
	}
	return &root, nil
}
