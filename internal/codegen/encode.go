package codegen

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/jsc/internal/ir"
)

// encode renders an operand as a C++ expression. LookUps must have been
// resolved first.
func (g *generator) encode(n ir.Node) string {
	switch n := n.(type) {
	case *ir.Literal:
		return g.literal(n.Value, false)
	case *ir.Method:
		if n.IsNative && n.Name != "" || g.globals[n.ID()] {
			return n.Name
		}
		return symbol(n.ID(), n.Name)
	case *ir.Var:
		if g.globals[n.ID()] {
			return n.Name
		}
		return symbol(n.ID(), n.Name)
	}
	return fmt.Sprintf("/* %T */", n)
}

func symbol(id ir.ID, name string) string {
	if name == "" {
		return fmt.Sprintf("_%d", id)
	}
	return fmt.Sprintf("_%d/*%s*/", id, name)
}

// key renders a property key. Constant keys use their string alias.
func (g *generator) key(n ir.Node) string {
	if lit, ok := n.(*ir.Literal); ok {
		return g.literal(lit.Value, true)
	}
	return g.encode(n)
}

// literal renders a compile-time value. With reg set the value is
// converted to a string and referenced through its alias.
func (g *generator) literal(v ir.Value, reg bool) string {
	if reg {
		return g.prog.Strings.Alias(v.String())
	}
	switch v.Kind() {
	case ir.ValueString:
		return fmt.Sprintf("js::BufferRef{stringTable[%d]}", g.prog.Strings.Intern(v.String()))
	case ir.ValueNull:
		return "(js::Object*){}"
	case ir.ValueUndefined:
		return "js::Local{}"
	case ir.ValueBool:
		return "bool(" + v.String() + ")"
	}
	f := v.ToNumber()
	switch {
	case v.Type() == ir.TypeInt32:
		return fmt.Sprintf("int32_t(%d)", int32(f))
	case math.IsNaN(f):
		return "js::Float(NAN)"
	case math.IsInf(f, 1):
		return "js::Float(INFINITY)"
	case math.IsInf(f, -1):
		return "js::Float(-INFINITY)"
	}
	s := ir.FormatNumber(f)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return "js::Float(" + s + "f)"
}

// constant returns the compile-time value of an operand, if it has one.
func constant(n ir.Node) (ir.Value, bool) {
	switch n := n.(type) {
	case *ir.Literal:
		return n.Value, true
	case *ir.Var:
		return n.CTV()
	}
	return ir.Value{}, false
}

// typeOf returns the static type of an operand.
func typeOf(n ir.Node) ir.Type {
	switch n := n.(type) {
	case *ir.Literal:
		return n.Type()
	case *ir.Var:
		return n.Type()
	case *ir.Method:
		return ir.TypeObject
	}
	return ir.TypeUnknown
}

// cString quotes s as a C string literal. Bytes outside printable ASCII
// use three-digit octal escapes, which cannot swallow a following digit.
func cString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '?' && i > 0 && s[i-1] == '?':
			// breaks trigraphs
			b.WriteString(`\?`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\%03o`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
