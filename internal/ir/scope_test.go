package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindVarHoistingAndBlockIsolation(t *testing.T) {
	p := NewProgram()
	fn := p.NewMethod("f")
	p.MainMethod().Add(fn)

	blockA := p.NewScope()
	fn.Add(blockA)
	blockB := p.NewScope()
	fn.Add(blockB)

	// var goes to the method, let stays in its block
	hoisted := p.NewVar(KindVar, "h")
	fn.Add(hoisted)
	local := p.NewVar(KindLet, "l")
	blockA.Add(local)

	assert.Same(t, hoisted, blockB.Find(ByName("h"), true))
	assert.Same(t, local, blockA.Find(ByName("l"), true))
	assert.Nil(t, blockB.Find(ByName("l"), true), "block-scoped name must not leak into a sibling")
	assert.Nil(t, fn.Find(ByName("l"), false))
}

func TestTransparentScopeForwardsRegistration(t *testing.T) {
	p := NewProgram()
	main := p.MainMethod()
	loop := p.NewScope()
	main.Add(loop)

	pre := loop.AddPreEnter()
	assert.True(t, pre.Transparent)
	assert.Equal(t, loop.ID(), pre.Parent())
	assert.Equal(t, loop.Method(), pre.Method())

	i := p.NewVar(KindLet, "i")
	pre.Add(i)

	assert.Equal(t, loop.ID(), i.Parent(), "declaration lands in the non-transparent owner")
	assert.Contains(t, loop.Variables(), i.ID())
	assert.Empty(t, pre.Variables())
	assert.Same(t, i, pre.Find(ByName("i"), false))

	// plain expressions stay in the region itself
	pop := p.NewPop()
	pre.Add(pop)
	assert.Equal(t, []ID{pop.ID()}, pre.Children())
	assert.Equal(t, pre.ID(), pop.Parent())
}

func TestRegionsAreCreatedOnce(t *testing.T) {
	p := NewProgram()
	s := p.NewScope()
	p.MainMethod().Add(s)

	first := s.AddEnterCondition()
	second := s.AddEnterCondition()
	assert.Same(t, first, second)
	assert.Equal(t, first.ID(), s.EnterCondition)
}

func TestFindByID(t *testing.T) {
	p := NewProgram()
	main := p.MainMethod()
	anon := p.NewVar(KindVar, "")
	main.Add(anon)

	inner := p.NewScope()
	main.Add(inner)

	assert.Same(t, anon, inner.Find(ByID(anon.ID()), true))
	assert.Nil(t, inner.Find(ByID(anon.ID()), false))
}

func TestCaptureSharesContext(t *testing.T) {
	p := NewProgram()
	outer := p.NewMethod("outer")
	p.MainMethod().Add(outer)
	counter := p.NewVar(KindLet, "counter")
	outer.Add(counter)

	inner := p.NewMethod("inner")
	outer.Add(inner)
	body := p.NewScope()
	inner.Add(body)

	found := body.Find(ByName("counter"), true)
	require.NotNil(t, found)
	capture, ok := found.(*Var)
	require.True(t, ok)

	assert.Equal(t, KindCapture, capture.Kind)
	assert.Equal(t, "counter", capture.Name)
	assert.Equal(t, inner.ID(), capture.Parent())
	assert.Equal(t, counter.ID(), inner.CaptureSource(capture.ID()))
	assert.True(t, inner.HasCaptures())

	require.True(t, outer.Context.IsValid())
	assert.Equal(t, outer.Context, capture.Context)
	assert.True(t, outer.IsCaptured(counter.ID()))
	assert.Contains(t, outer.Variables(), outer.Context)

	// a second lookup reuses the same capture and context
	again := body.Find(ByName("counter"), true)
	assert.Same(t, capture, again)
	assert.Len(t, outer.Captured(), 1)
	assert.Len(t, inner.Captures(), 1)

	// the defining method keeps seeing its own var
	assert.Same(t, counter, outer.Find(ByName("counter"), true))
}

func TestCaptureAcrossTwoLevels(t *testing.T) {
	p := NewProgram()
	a := p.NewMethod("a")
	p.MainMethod().Add(a)
	x := p.NewVar(KindVar, "x")
	a.Add(x)
	b := p.NewMethod("b")
	a.Add(b)
	c := p.NewMethod("c")
	b.Add(c)

	found := c.Find(ByName("x"), true).(*Var)
	assert.Equal(t, KindCapture, found.Kind)

	middle := b.Find(ByName("x"), false).(*Var)
	assert.Equal(t, KindCapture, middle.Kind, "intermediate method mirrors the var too")
	assert.Equal(t, middle.ID(), c.CaptureSource(found.ID()))
	assert.Equal(t, x.ID(), b.CaptureSource(middle.ID()))
	assert.True(t, b.Context.IsValid())
	assert.True(t, a.Context.IsValid())
}

func TestMainVarsAreNotCaptured(t *testing.T) {
	p := NewProgram()
	main := p.MainMethod()
	g := p.NewVar(KindVar, "g")
	main.Add(g)
	fn := p.NewMethod("fn")
	main.Add(fn)

	assert.Same(t, g, fn.Find(ByName("g"), true))
	assert.False(t, main.Context.IsValid())
	assert.False(t, fn.HasCaptures())
}

func TestRemoveAndRename(t *testing.T) {
	p := NewProgram()
	main := p.MainMethod()
	a := p.NewVar(KindVar, "a")
	b := p.NewVar(KindVar, "b")
	c := p.NewVar(KindVar, "c")
	main.Add(a)
	main.Add(b)
	main.Add(c)

	main.Remove(a)
	assert.Nil(t, main.Find(ByName("a"), false))
	assert.Nil(t, main.Find(ByID(a.ID()), false))
	assert.NotContains(t, main.Variables(), a.ID())
	assert.NotContains(t, main.Bindings(), a.ID())
	assert.ElementsMatch(t, []ID{p.MainMethod().Args, p.MainMethod().This, p.Resources, b.ID(), c.ID()}, main.Variables())

	main.Rename(b, "bee")
	assert.Nil(t, main.Find(ByName("b"), false))
	assert.Same(t, b, main.Find(ByName("bee"), false))
}

func TestConstCTVAssignedOnce(t *testing.T) {
	p := NewProgram()
	k := p.NewVar(KindConst, "k")
	p.MainMethod().Add(k)

	require.NoError(t, k.SetCTV(Number(4)))
	v, ok := k.CTV()
	require.True(t, ok)
	assert.True(t, StrictEquals(Number(4), v))
	assert.Equal(t, TypeInt32, k.Type())

	err := k.SetCTV(Number(5))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrContract))

	k.ClearCTV()
	_, ok = k.CTV()
	assert.True(t, ok, "const values cannot be cleared")

	mutable := p.NewVar(KindLet, "m")
	require.NoError(t, mutable.SetCTV(Number(1)))
	require.NoError(t, mutable.SetCTV(Number(2)))
	mutable.ClearCTV()
	_, ok = mutable.CTV()
	assert.False(t, ok)
}

func TestGuessObjectSizeCountsNamesOnce(t *testing.T) {
	p := NewProgram()
	class := p.NewMethod("Sprite")
	class.IsClass = true
	p.MainMethod().Add(class)

	update := p.NewMethod("update")
	class.Add(update)
	render := p.NewMethod("render")
	class.Add(render)
	nested := p.NewMethod("Inner")
	nested.IsClass = true
	class.Add(nested)

	p.Var(class.This).AddDeref("x")
	p.Var(class.This).AddDeref("update")
	p.Var(update.This).AddDeref("x")
	p.Var(update.This).AddDeref("y")
	p.Var(render.This).AddDeref("y")
	p.Var(render.This).AddDeref("x")
	p.Var(nested.This).AddDeref("ignored")

	assert.Equal(t, 3, class.GuessObjectSize())
}

func TestCachedVarIsReused(t *testing.T) {
	p := NewProgram()
	m := p.NewMethod("m")
	p.MainMethod().Add(m)

	x := m.Cached("x")
	assert.Equal(t, KindCache, x.Kind)
	assert.Equal(t, "x", x.Prop)
	assert.Same(t, x, m.Cached("x"))
	assert.NotSame(t, x, m.Cached("y"))
}

func TestStringTableInterning(t *testing.T) {
	st := NewStringTable()

	first := st.Intern("hello")
	second := st.Intern("hello")
	assert.Equal(t, first, second)
	assert.Equal(t, AliasFor("hello"), st.Alias("hello"))
	assert.Equal(t, st.Alias("hello"), st.Alias("hello"))
	assert.Len(t, st.Entries(), 1)

	idx, ok := st.AliasIndex(st.Alias("hello"))
	require.True(t, ok)
	assert.Equal(t, first, idx)
}

func TestAliasesDoNotCollide(t *testing.T) {
	texts := []string{"", "a b", "a_b", "a_32_b", "a32b", "//method", "__proto__", "0", "length", "a.b", "a-b"}
	seen := make(map[string]string)
	for _, text := range texts {
		alias := AliasFor(text)
		prev, dup := seen[alias]
		assert.False(t, dup, "%q and %q share alias %s", prev, text, alias)
		seen[alias] = text
	}
	assert.Equal(t, "V_this", AliasFor("this"))
	assert.Equal(t, "V_0", AliasFor("0"))
}

func TestDumpIsCanonical(t *testing.T) {
	p := NewProgram()
	loop := p.NewScope()
	p.MainMethod().Add(loop)
	loop.AddEnterCondition().Add(p.NewLiteral(Bool(true)))
	loop.AddLoopCondition().Add(p.NewLiteral(Number(0.5)))

	a, err := MarshalDump(p)
	require.NoError(t, err)
	b, err := MarshalDump(p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, string(a), `"loop_condition"`)
	assert.Contains(t, string(a), `"value":"0.5"`)
}
