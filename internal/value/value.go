// Package value implements the tagged Value union, its reference-counted
// heap objects (String, Range, Array), and the non-owning Ref borrow used
// for inout bindings and element references.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxCapacity bounds the growth of an Array backing store; an attempt to
// grow past it is a RANGE error. Strings are not checked against it.
const MaxCapacity = 1 << 30

// MinCapacity is the smallest capacity NewArrayWithCapacity allocates.
const MinCapacity = 1 << 3

// Kind identifies a Value's variant.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindRange
	KindArray
	KindRef
)

const flagFalsy = 0x01
const flagObject = 0x02

// Value is the tagged union every stack slot and constant-pool entry
// holds. Heap-backed variants (String, Array, Range) carry a pointer to a
// reference-counted Object; Ref is a non-owning borrow of another slot.
type Value struct {
	kind    Kind
	flags   int
	asBool  bool
	asNum   float64
	obj     Object
	asRef   *Value
}

// Object is the common header every heap-allocated value embeds.
type Object interface {
	refs() *int
}

func retain(o Object) {
	if o == nil {
		return
	}
	*o.refs()++
}

// Release decrements v's refcount if v owns a heap object, freeing nothing
// itself — callers observe refs() dropping to zero as the signal that the
// object is now unreachable and may be discarded by the Go garbage
// collector once no slot still points to it.
func Release(v Value) {
	if v.obj == nil {
		return
	}
	*v.obj.refs()--
}

// Retain increments v's refcount if v owns a heap object. Every push onto
// the operand stack of a value read from another slot must pair with a
// Retain; every slot overwrite or pop must pair with a Release of the old
// contents.
func Retain(v Value) {
	retain(v.obj)
}

// Nil is the nil value.
func Nil() Value { return Value{kind: KindNil, flags: flagFalsy} }

// Bool constructs a boolean value; false is falsy.
func Bool(b bool) Value {
	v := Value{kind: KindBool, asBool: b}
	if !b {
		v.flags = flagFalsy
	}
	return v
}

// Number constructs a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, asNum: n}
}

// Kind reports v's variant.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsString() bool { return v.kind == KindString }
func (v Value) IsRange() bool  { return v.kind == KindRange }
func (v Value) IsArray() bool  { return v.kind == KindArray }
func (v Value) IsRef() bool    { return v.kind == KindRef }

// IsInt reports whether a numeric value holds an integral quantity (no
// distinct integer variant exists; this is derived by comparison).
func (v Value) IsInt() bool {
	return v.kind == KindNumber && v.asNum == float64(int64(v.asNum))
}

// IsFalsy reports whether v is nil or false; every other value is truthy.
func (v Value) IsFalsy() bool { return v.flags&flagFalsy != 0 }

func (v Value) AsBool() bool       { return v.asBool }
func (v Value) AsNumber() float64  { return v.asNum }
func (v Value) AsInt() int64       { return int64(v.asNum) }
func (v Value) AsString() *String  { return v.obj.(*String) }
func (v Value) AsRange() *Range    { return v.obj.(*Range) }
func (v Value) AsArray() *Array    { return v.obj.(*Array) }
func (v Value) AsRef() *Value      { return v.asRef }

// TypeName returns the name used in TYPE-error messages.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "Nil"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindRange:
		return "Range"
	case KindArray:
		return "Array"
	case KindRef:
		return "Ref"
	default:
		return "Unknown"
	}
}

// FromObject wraps a heap object (String, Range, or Array) in a Value,
// tagging it with the matching Kind. The caller is responsible for the
// retain discipline around the returned Value.
func FromObject(o Object) Value {
	v := Value{obj: o, flags: flagObject}
	switch o.(type) {
	case *String:
		v.kind = KindString
	case *Range:
		v.kind = KindRange
	case *Array:
		v.kind = KindArray
	default:
		panic("value: unknown object type")
	}
	return v
}

// NewRef builds a non-owning borrow of slot. Refs are never retained or
// released: their validity is bounded by the lifetime of the slot they
// point into.
func NewRef(slot *Value) Value {
	return Value{kind: KindRef, asRef: slot}
}

// Print renders v the way the command-line driver prints the VM's final
// top-of-stack result: strings are written as raw bytes, not quoted.
func (v Value) Print() string {
	if v.kind == KindString {
		return v.AsString().String()
	}
	return v.Inspect()
}

// Inspect renders v for nested/container printing: the shortest
// round-trippable decimal for numbers, quoted strings, start..end ranges,
// bracketed arrays of quoted elements.
func (v Value) Inspect() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.asBool {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.asNum, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.AsString().String())
	case KindRange:
		r := v.AsRange()
		return fmt.Sprintf("%d..%d", r.Start, r.End)
	case KindArray:
		arr := v.AsArray()
		parts := make([]string, arr.Len())
		for i := 0; i < arr.Len(); i++ {
			parts[i] = arr.Get(i).Inspect()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindRef:
		return v.asRef.Inspect()
	default:
		return "<invalid>"
	}
}
