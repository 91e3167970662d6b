package codegen

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/roach88/jsc/internal/estree"
	"github.com/roach88/jsc/internal/ir"
	"github.com/roach88/jsc/internal/lower"
)

// compile lowers body into a fresh program, lets setup register natives
// or resources, and generates it.
func compile(t *testing.T, setup func(*ir.Program), opts Options, body ...*Node) (string, error) {
	t.Helper()
	p := ir.NewProgram()
	if setup != nil {
		setup(p)
	}
	require.NoError(t, lower.Lower(p, "test.js", Program(body...), nil))
	return Generate(p, opts)
}

func mustCompile(t *testing.T, setup func(*ir.Program), opts Options, body ...*Node) string {
	t.Helper()
	out, err := compile(t, setup, opts, body...)
	require.NoError(t, err)
	return out
}

func natives(names ...string) func(*ir.Program) {
	return func(p *ir.Program) {
		for _, name := range names {
			m := p.NewMethod(name)
			m.IsNative = true
			p.MainMethod().Add(m)
		}
	}
}

func TestWhileLoopTestsOnceAndJumpsBack(t *testing.T) {
	out := mustCompile(t, nil, Options{},
		Decl("let", "x", Num(2)),
		While(Ident("x"), Block(ExprStmt(Assign("=", Ident("x"), Binary("-", Ident("x"), Num(1)))))),
	)

	assert.Equal(t, 1, strings.Count(out, "if (!js::to<bool>("), "one entry test")
	assert.Equal(t, 1, strings.Count(out, "goto enterCondition_"), "one back-edge")
	assert.Contains(t, out, "js::op_sub(")
	assert.Regexp(t, `enterCondition_\d+:;`, out)
	assert.Regexp(t, `failEnter_\d+:;`, out)
	assert.Contains(t, out, "/*x*/ = int32_t(2);")
}

func TestConstantFoldingEmitsNoInstructions(t *testing.T) {
	out := mustCompile(t, nil, Options{},
		Decl("const", "a", Binary("+", Num(2), Num(3))),
		Decl("let", "b", Binary("*", Ident("a"), Num(4))),
		Decl("let", "c", Unary("-", Ident("a"))),
		Decl("let", "s", Binary("+", Str("n="), Ident("a"))),
	)

	assert.NotContains(t, out, "js::op_")
	assert.Contains(t, out, "/*a*/ = int32_t(5);")
	assert.Contains(t, out, "/*b*/ = int32_t(20);")
	assert.Contains(t, out, "/*c*/ = int32_t(-5);")
	assert.Contains(t, out, `"n=5"`)
	// a const keeps the type of its value
	assert.Regexp(t, `int32_t _\d+/\*a\*/; // const`, out)
}

func TestStaticLoopConditions(t *testing.T) {
	t.Run("while true", func(t *testing.T) {
		out := mustCompile(t, nil, Options{}, While(Boolean(true), Block(Break(""))))
		assert.NotContains(t, out, "if (!js::to<bool>")
		assert.Contains(t, out, "goto enterCondition_")
		assert.Regexp(t, `goto failEnter_\d+; // break`, out)
	})
	t.Run("do while false", func(t *testing.T) {
		out := mustCompile(t, nil, Options{},
			Decl("let", "n", Num(0)),
			DoWhile(Block(ExprStmt(Update("++", false, Ident("n")))), Boolean(false)),
		)
		assert.NotContains(t, out, "goto enterCondition_")
		assert.Contains(t, out, "js::op_inc(")
	})
	t.Run("constant false if", func(t *testing.T) {
		out := mustCompile(t, nil, Options{},
			Decl("const", "on", Boolean(false)),
			If(Ident("on"), Block(), nil),
		)
		assert.NotContains(t, out, "if (!js::to<bool>")
		assert.Regexp(t, `goto failEnter_\d+;`, out)
	})
}

func TestIfElseLayout(t *testing.T) {
	out := mustCompile(t, nil, Options{},
		Decl("let", "x", Num(1)),
		If(Ident("x"),
			Block(ExprStmt(Assign("=", Ident("x"), Num(2)))),
			Block(ExprStmt(Assign("=", Ident("x"), Num(3))))),
	)

	fail := regexp.MustCompile(`if \(!js::to<bool>\([^)]*\)\) goto (failEnter_\d+);`).FindStringSubmatch(out)
	require.Len(t, fail, 2)
	skip := regexp.MustCompile(`goto (afterFail_\d+);`).FindStringSubmatch(out)
	require.Len(t, skip, 2)

	iThen := strings.Index(out, "= int32_t(2);")
	iSkip := strings.Index(out, skip[0])
	iFail := strings.Index(out, fail[1]+":;")
	iElse := strings.Index(out, "= int32_t(3);")
	iAfter := strings.Index(out, skip[1]+":;")
	assert.True(t, iThen < iSkip && iSkip < iFail && iFail < iElse && iElse < iAfter, out)
}

func TestLabeledBreakLeavesElse(t *testing.T) {
	out := mustCompile(t, nil, Options{},
		Decl("let", "x", Num(1)),
		Labeled("done", If(Ident("x"), Block(Break("done")), Block())),
	)
	assert.Regexp(t, `goto afterFail_\d+; // break`, out)
}

func TestContinueEmitsStepLabel(t *testing.T) {
	out := mustCompile(t, nil, Options{},
		For(Decl("let", "i", Num(0)), Binary("<", Ident("i"), Num(3)), Update("++", false, Ident("i")),
			Block(Continue(""))),
	)
	label := regexp.MustCompile(`goto (preLoop_\d+); // continue`).FindStringSubmatch(out)
	require.Len(t, label, 2)
	assert.Contains(t, out, label[1]+":;")
	assert.Contains(t, out, "js::op_lt(")
	assert.Regexp(t, `bool _\d+; // var`, out)
}

func TestConstRejectsLaterStores(t *testing.T) {
	tests := []struct {
		name string
		stmt *Node
	}{
		{"conditional assign", If(Ident("b"), ExprStmt(Assign("=", Ident("c"), Num(3))), nil)},
		{"compound", ExprStmt(Assign("+=", Ident("c"), Num(1)))},
		{"update", ExprStmt(Update("++", false, Ident("c")))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, nil, Options{},
				Decl("let", "a", nil), Decl("let", "b", nil),
				Decl("const", "c", Ident("a")),
				tt.stmt,
				ExprStmt(Binary("+", Ident("c"), Num(1))),
			)
			require.Error(t, err)
			assert.True(t, ir.IsKind(err, ir.ErrSyntax))
			assert.Contains(t, err.Error(), "invalid assignment target: c is const")
		})
	}

	// the initializer alone keeps its value
	out := mustCompile(t, nil, Options{},
		Decl("let", "a", nil),
		Decl("const", "c", Ident("a")),
		ExprStmt(Assign("=", Ident("a"), Binary("+", Ident("c"), Num(1)))),
	)
	assert.Contains(t, out, "js::op_add(")
}

func TestReferenceError(t *testing.T) {
	_, err := compile(t, nil, Options{}, ExprStmt(At(Assign("=", Ident("y"), Num(1)), 4, 2)))
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrReference))
	assert.Contains(t, err.Error(), "y is not defined")
	assert.Contains(t, err.Error(), "test.js:4:2")
}

func TestCallsUseArgumentBag(t *testing.T) {
	out := mustCompile(t, natives("print"), Options{},
		ExprStmt(Call(Ident("print"), Str("hello"))),
		Decl("let", "r", Call(Ident("print"), Num(1), Num(2))),
	)

	assert.Contains(t, out, "js::Local print(js::Local&, bool);")
	assert.Regexp(t, `\n\s*js::call\(print, _\d+, false\);`, out, "discarded result")
	assert.Regexp(t, `_\d+ = js::call\(print, _\d+, false\);`, out)
	assert.Contains(t, out, "js::arguments(1);")
	assert.Contains(t, out, "js::arguments(2);")
	assert.Contains(t, out, ", V_1, int32_t(2));")
	assert.Equal(t, 2, strings.Count(out, ".reset();"))
	assert.Contains(t, out, `STRDECL(_str48, 6, "hello");`)
	assert.Contains(t, out, "js::BufferRef{stringTable[48]}")
}

func TestMethodCallPassesThis(t *testing.T) {
	out := mustCompile(t, nil, Options{},
		Decl("let", "obj", Object(Prop("f", FuncExpr(nil)))),
		ExprStmt(Call(Member(Ident("obj"), "f"), Num(1))),
	)
	assert.Contains(t, out, "js::alloc(1);")
	assert.Regexp(t, `js::set\(_\d+, V_f, _\d+\);`, out)
	assert.Regexp(t, `_\d+ = js::get\(_\d+/\*obj\*/, V_f\);`, out)
	assert.Regexp(t, `js::set\(_\d+, V_this, _\d+/\*obj\*/\);`, out)
	assert.Contains(t, out, "js::arguments(2);")
}

func TestClosureCapturesThroughContext(t *testing.T) {
	out := mustCompile(t, nil, Options{},
		Func("outer", nil,
			Decl("let", "n", Num(0)),
			Return(Arrow(nil, Ident("n"))),
		),
	)

	assert.Regexp(t, `_\d+ = js::alloc\(1\);`, out, "context record")
	assert.Regexp(t, `js::Tagged& _\d+/\*n\*/ = \*js::set\(_\d+, V_n_47_\d+, \{\}\);`, out)
	assert.Regexp(t, `js::Tagged& _\d+/\*n\*/ = \*js::getTaggedPtr\(js::to<js::Object\*>\(_\d+\), V_n_47_\d+, true\);`, out)
	assert.Regexp(t, `_\d+ = js::alloc\(1, _\d+\);`, out, "closure record")
	assert.Contains(t, out, "V__47__47_method")
}

func TestSiblingCapturesUseDistinctSlots(t *testing.T) {
	out := mustCompile(t, nil, Options{},
		Func("outer", nil,
			Decl("let", "f", nil),
			Decl("let", "g", nil),
			Block(Decl("let", "x", Num(1)), ExprStmt(Assign("=", Ident("f"), Arrow(nil, Ident("x"))))),
			Block(Decl("let", "x", Num(2)), ExprStmt(Assign("=", Ident("g"), Arrow(nil, Ident("x"))))),
		),
	)

	assert.Regexp(t, `_\d+ = js::alloc\(2\);`, out, "one slot per x")
	slots := regexp.MustCompile(`\*js::set\(_\d+, (V_x_47_\d+), \{\}\);`).FindAllStringSubmatch(out, -1)
	require.Len(t, slots, 2)
	assert.NotEqual(t, slots[0][1], slots[1][1])
	for _, slot := range slots {
		assert.Regexp(t, `getTaggedPtr\(js::to<js::Object\*>\(_\d+\), `+slot[1]+`, true\);`, out)
	}
}

// Closures read main's block locals directly, so they live at file scope.
func TestMainBlockLocalsAreHoisted(t *testing.T) {
	out := mustCompile(t, nil, Options{},
		Decl("let", "f", nil),
		Block(
			Decl("let", "x", Num(1)),
			ExprStmt(Assign("=", Ident("f"), Arrow(nil, Ident("x")))),
		),
	)

	assert.Regexp(t, `(?m)^js::Local _\d+/\*x\*/; // let$`, out)
	assert.Len(t, regexp.MustCompile(`_\d+/\*x\*/; // let`).FindAllString(out, -1), 1, "declared once")
	assert.NotContains(t, out, "getTaggedPtr")
	assert.NotContains(t, out, "js::alloc(")
}

func TestThisPropertiesAreCached(t *testing.T) {
	out := mustCompile(t, nil, Options{},
		Class("P",
			MethodDef("constructor", nil, ExprStmt(Assign("=", Member(This(), "x"), Num(1)))),
			MethodDef("get", nil, Return(Member(This(), "x"))),
		),
	)

	assert.Contains(t, out, "js::initThis(")
	assert.Regexp(t, `js::Tagged& _\d+ = \*js::getTaggedPtr\(_\d+/\*this\*/\.object\(\), V_x, true, true\);`, out)
	assert.Regexp(t, `js::call\(_\d+/\*constructor\*/, _\d+, false\);`, out)
}

func TestResources(t *testing.T) {
	withTiles := func(p *ir.Program) {
		p.SetResource(&ir.Resource{Name: "tiles", Hex: "0aff"})
		p.SetResource(&ir.Resource{Name: "font", Builtin: true})
		p.SetResource(&ir.Resource{Name: "map", Array: &ir.ResourceArray{
			Type:  "uint8_t",
			Items: []ir.ResourceItem{{Kind: ir.ItemNumber, Number: 7}, {Kind: ir.ItemRef, Ref: "gfx/tiles.png", Offset: 2, HasOffset: true}},
		}})
	}

	out := mustCompile(t, withTiles, Options{}, Decl("let", "t", Member(Ident("R"), "tiles")))
	assert.Contains(t, out, "= RESOURCEREF(tiles);")
	assert.Contains(t, out, "RESOURCEDECL(tiles) = {10,255};")
	assert.Contains(t, out, "extern const uint8_t map[];")
	assert.Contains(t, out, "const uint8_t map[] = {7,uint8_t(uintptr_t((tiles + 2)) >>  0),")
	assert.NotContains(t, out, "RESOURCEDECL(font)")

	_, err := compile(t, withTiles, Options{}, Decl("let", "t", Member(Ident("R"), "missing")))
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrCodegen))
	assert.Contains(t, err.Error(), "no resource named missing")
}

func TestGlobalsKeepTheirNames(t *testing.T) {
	out := mustCompile(t, nil, Options{Globals: []string{"score"}},
		ExprStmt(Assign("=", Ident("score"), Num(5))),
	)
	assert.Contains(t, out, "js::Local score; // var")
	assert.Contains(t, out, "score = int32_t(5);")
}

func TestPlatformTemplates(t *testing.T) {
	body := []*Node{
		Func("init", nil), Func("update", nil), Func("render", nil),
	}
	out := mustCompile(t, nil, Options{Platform: "pico"}, body...)
	assert.Contains(t, out, `#include "pico.h"`)
	assert.Regexp(t, `js::call\(_\d+/\*init\*/, args, false\);`, out)
	assert.NotContains(t, out, "$[[")

	_, err := compile(t, nil, Options{Platform: "pico"}, Func("init", nil))
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.ErrCodegen))
	assert.Contains(t, err.Error(), "could not find render, update required by platform pico")

	std := mustCompile(t, nil, Options{Platform: "nonesuch"}, body...)
	assert.Contains(t, std, `#include "js.hpp"`)
	assert.Contains(t, std, "int main() {")
	assert.Contains(t, std, "#define V_length js::BufferRef{stringTable[2]}")
}

func TestLogicalTemporariesAreLocals(t *testing.T) {
	out := mustCompile(t, nil, Options{},
		Decl("let", "a", nil),
		Decl("let", "r", Logical("&&", Ident("a"), Boolean(true))),
	)
	assert.NotContains(t, out, "bool _")
	assert.Contains(t, out, "= bool(true);")
}

func TestGenerateIsDeterministic(t *testing.T) {
	build := func() []*Node {
		return []*Node{
			Decl("let", "xs", Array(Num(1), Num(2.5), Str("a"))),
			ForOf(Decl("const", "v", nil), Ident("xs"), Block(ExprStmt(Assign("+=", Ident("xs"), Ident("v"))))),
			Func("f", Params("a", "b"), Return(Logical("||", Ident("a"), Ident("b")))),
		}
	}
	first := mustCompile(t, nil, Options{}, build()...)
	second := mustCompile(t, nil, Options{}, build()...)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "js::Float(2.5f)")
}

func TestGenerateTwiceFails(t *testing.T) {
	p := ir.NewProgram()
	require.NoError(t, lower.Lower(p, "a.js", Program(), nil))
	_, err := Generate(p, Options{})
	require.NoError(t, err)
	_, err = Generate(p, Options{})
	assert.True(t, ir.IsKind(err, ir.ErrContract))
}
