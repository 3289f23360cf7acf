package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFalsyLaw(t *testing.T) {
	assert.True(t, Nil().IsFalsy())
	assert.True(t, Bool(false).IsFalsy())
	assert.False(t, Bool(true).IsFalsy())
	assert.False(t, Number(0).IsFalsy())
	assert.False(t, FromObject(NewString("")).IsFalsy())
}

func TestIsInt(t *testing.T) {
	assert.True(t, Number(3).IsInt())
	assert.True(t, Number(-2).IsInt())
	assert.False(t, Number(3.5).IsInt())
	assert.False(t, Nil().IsInt())
}

func TestRetainReleaseCycle(t *testing.T) {
	s := NewString("hi")
	v := FromObject(s)
	assert.Equal(t, 1, s.rc)

	Retain(v)
	assert.Equal(t, 2, s.rc)

	Release(v)
	assert.Equal(t, 1, s.rc)

	Release(v)
	assert.Equal(t, 0, s.rc)
}

func TestRefIsNonOwning(t *testing.T) {
	s := NewString("hi")
	slot := FromObject(s)
	ref := NewRef(&slot)
	assert.Equal(t, 1, s.rc, "constructing or discarding a Ref must never retain or release")
	assert.Same(t, s, ref.AsRef().AsString())
}

func TestPrintVsInspectStrings(t *testing.T) {
	s := FromObject(NewString("hi"))
	defer Release(s)
	assert.Equal(t, "hi", s.Print())
	assert.Equal(t, `"hi"`, s.Inspect())
}

func TestInspectArrayQuotesStringElements(t *testing.T) {
	arr, err := NewArrayWithCapacity(2)
	assert.NoError(t, err)
	str := NewString("x")
	_ = arr.Append(FromObject(str))
	Release(FromObject(str)) // Append retained its own reference
	v := FromObject(arr)
	assert.Equal(t, `["x"]`, v.Inspect())
}

func TestRangeInspect(t *testing.T) {
	r := FromObject(NewRange(1, 4))
	assert.Equal(t, "1..4", r.Inspect())
}

func TestNewArrayWithCapacityAboveMaximumWrapsCause(t *testing.T) {
	_, err := NewArrayWithCapacity(MaxCapacity + 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "array capacity exceeds maximum")
	assert.Contains(t, err.Error(), errCapacityExceeded.Error())
}

func TestArrayGrowCapacity(t *testing.T) {
	assert.Equal(t, MinCapacity, growCapacity(1))
	assert.Equal(t, MinCapacity, growCapacity(MinCapacity))
	assert.Equal(t, MinCapacity*2, growCapacity(MinCapacity+1))
}
