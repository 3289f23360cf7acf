// Package vm implements the bytecode chunk, the recursive-descent
// compiler that emits it, and the stack-and-slots virtual machine that
// executes it.
package vm

import "github.com/fabiosvm/akwan/internal/value"

// Op is a single bytecode opcode. Its numeric encoding is an
// implementation detail; only the semantic effect table it backs is
// normative.
type Op byte

const (
	OpNil Op = iota
	OpFalse
	OpTrue
	OpInt           // imm: u8 literal value
	OpConst         // imm: u8 constant-pool index
	OpRange         // pop end, pop start; push Range
	OpArray         // imm: u8 element count
	OpLocalRef      // imm: u8 slot
	OpPop
	OpGetLocal      // imm: u8 slot
	OpSetLocal      // imm: u8 slot
	OpGetLocalByRef // imm: u8 slot
	OpSetLocalByRef // imm: u8 slot
	OpGetElement
	OpElementRef
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpReturn
)

var opNames = map[Op]string{
	OpNil: "NIL", OpFalse: "FALSE", OpTrue: "TRUE", OpInt: "INT",
	OpConst: "CONST", OpRange: "RANGE", OpArray: "ARRAY",
	OpLocalRef: "LOCAL_REF", OpPop: "POP", OpGetLocal: "GET_LOCAL",
	OpSetLocal: "SET_LOCAL", OpGetLocalByRef: "GET_LOCAL_BY_REF",
	OpSetLocalByRef: "SET_LOCAL_BY_REF", OpGetElement: "GET_ELEMENT",
	OpElementRef: "ELEMENT_REF", OpAdd: "ADD", OpSub: "SUB", OpMul: "MUL",
	OpDiv: "DIV", OpMod: "MOD", OpNeg: "NEG", OpReturn: "RETURN",
}

func (op Op) String() string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return "UNKNOWN"
}

// HasImmediate reports whether op is followed by a single immediate byte.
func (op Op) HasImmediate() bool {
	switch op {
	case OpInt, OpConst, OpArray, OpLocalRef, OpGetLocal, OpSetLocal,
		OpGetLocalByRef, OpSetLocalByRef:
		return true
	default:
		return false
	}
}

// MaxConstants is the constant pool's hard ceiling: indices are one byte.
const MaxConstants = 256

// Chunk is a compilation unit: a byte-coded instruction stream plus an
// ordered constant pool.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Lines     []int // Lines[i] is the source line instruction byte i belongs to
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// EmitOpcode appends an opcodeless instruction byte and returns its offset.
func (c *Chunk) EmitOpcode(op Op, line int) int {
	c.Code = append(c.Code, byte(op))
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// EmitByte appends a raw immediate byte following the last opcode.
func (c *Chunk) EmitByte(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends v to the constant pool and returns its index, or
// reports ok=false if the pool is already at MaxConstants. The chunk
// retains v; Release drops that reference when the chunk is torn down.
func (c *Chunk) AddConstant(v value.Value) (index int, ok bool) {
	if len(c.Constants) >= MaxConstants {
		return 0, false
	}
	value.Retain(v)
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1, true
}

// Release drops the chunk's ownership of its constant pool, releasing
// each constant exactly once.
func (c *Chunk) Release() {
	for _, v := range c.Constants {
		value.Release(v)
	}
	c.Constants = nil
}
