package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefineAssignsSequentialSlots(t *testing.T) {
	tbl := New()
	a, ok := tbl.Define("a", false)
	assert.True(t, ok)
	assert.Equal(t, 0, a.Slot)

	b, ok := tbl.Define("b", true)
	assert.True(t, ok)
	assert.Equal(t, 1, b.Slot)
	assert.True(t, b.IsRef)
}

func TestDuplicateInSameScopeFails(t *testing.T) {
	tbl := New()
	_, ok := tbl.Define("a", false)
	assert.True(t, ok)
	_, ok = tbl.Define("a", false)
	assert.False(t, ok)
}

func TestShadowingAcrossScopesSucceeds(t *testing.T) {
	tbl := New()
	outer, ok := tbl.Define("a", false)
	assert.True(t, ok)

	tbl.PushScope()
	inner, ok := tbl.Define("a", false)
	assert.True(t, ok)
	assert.NotEqual(t, outer.Slot, inner.Slot)

	sym, ok := tbl.Resolve("a")
	assert.True(t, ok)
	assert.Equal(t, inner.Slot, sym.Slot)

	popped := tbl.PopScope()
	assert.Len(t, popped, 1)
	assert.Equal(t, "a", popped[0].Name)

	sym, ok = tbl.Resolve("a")
	assert.True(t, ok)
	assert.Equal(t, outer.Slot, sym.Slot)
}

func TestPopScopeRemovesEntries(t *testing.T) {
	tbl := New()
	tbl.PushScope()
	tbl.Define("x", false)
	tbl.Define("y", false)
	assert.Equal(t, 2, tbl.Count())
	tbl.PopScope()
	assert.Equal(t, 0, tbl.Count())
	_, ok := tbl.Resolve("x")
	assert.False(t, ok)
}

func TestResolveUndefinedFails(t *testing.T) {
	tbl := New()
	_, ok := tbl.Resolve("nope")
	assert.False(t, ok)
}

func TestTableFullRejectsDefine(t *testing.T) {
	tbl := New()
	for i := 0; i < MaxSymbols; i++ {
		_, ok := tbl.Define(string(rune('a'+i%26))+string(rune(i)), false)
		assert.True(t, ok)
	}
	_, ok := tbl.Define("overflow", false)
	assert.False(t, ok)
}
