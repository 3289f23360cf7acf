package vm

import (
	"math"

	"github.com/fabiosvm/akwan/internal/diagnostics"
	"github.com/fabiosvm/akwan/internal/value"
)

// DefaultStackSize is the operand-stack capacity a VM allocates when none
// is specified.
const DefaultStackSize = 256

// VM is a stack-and-slots interpreter: the operand stack doubles as the
// storage for a chunk's named variables, since this language has no
// nested call frames.
type VM struct {
	stack []value.Value
	sp    int
}

// New allocates a VM with room for stackSize operand slots.
func New(stackSize int) *VM {
	if stackSize <= 0 {
		stackSize = DefaultStackSize
	}
	return &VM{stack: make([]value.Value, stackSize)}
}

func (vm *VM) push(v value.Value) error {
	if vm.sp >= len(vm.stack) {
		return diagnostics.New(diagnostics.Range, 0, 0, "stack overflow")
	}
	vm.stack[vm.sp] = v
	vm.sp++
	return nil
}

func (vm *VM) pop() value.Value {
	vm.sp--
	v := vm.stack[vm.sp]
	vm.stack[vm.sp] = value.Value{}
	return v
}

func (vm *VM) peek(distanceFromTop int) value.Value {
	return vm.stack[vm.sp-1-distanceFromTop]
}

// Run executes chunk from an empty stack and returns its final top-of-stack
// result (the value a bare RETURN leaves behind).
func (vm *VM) Run(chunk *Chunk) (value.Value, error) {
	vm.sp = 0
	return vm.run(chunk)
}

func (vm *VM) run(chunk *Chunk) (value.Value, error) {
	ip := 0
	code := chunk.Code
	for ip < len(code) {
		line := chunk.Lines[ip]
		op := Op(code[ip])
		ip++

		switch op {
		case OpNil:
			if err := vm.push(value.Nil()); err != nil {
				return value.Value{}, err
			}

		case OpFalse:
			if err := vm.push(value.Bool(false)); err != nil {
				return value.Value{}, err
			}

		case OpTrue:
			if err := vm.push(value.Bool(true)); err != nil {
				return value.Value{}, err
			}

		case OpInt:
			n := code[ip]
			ip++
			if err := vm.push(value.Number(float64(n))); err != nil {
				return value.Value{}, err
			}

		case OpConst:
			idx := code[ip]
			ip++
			v := chunk.Constants[idx]
			value.Retain(v)
			if err := vm.push(v); err != nil {
				return value.Value{}, err
			}

		case OpRange:
			end := vm.pop()
			start := vm.pop()
			if !start.IsNumber() || !start.IsInt() || !end.IsNumber() || !end.IsInt() {
				return value.Value{}, diagnostics.Newf(diagnostics.Type, line, 0,
					"cannot create a range with %s and %s", start.TypeName(), end.TypeName())
			}
			r := value.FromObject(value.NewRange(start.AsInt(), end.AsInt()))
			if err := vm.push(r); err != nil {
				return value.Value{}, err
			}

		case OpArray:
			n := int(code[ip])
			ip++
			arr, err := value.NewArrayWithCapacity(n)
			if err != nil {
				return value.Value{}, err
			}
			elems := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = vm.pop()
			}
			for _, e := range elems {
				_ = arr.Append(e) // capacity already reserved, cannot fail here
				value.Release(e)  // Append retained its own reference
			}
			if err := vm.push(value.FromObject(arr)); err != nil {
				return value.Value{}, err
			}

		case OpLocalRef:
			slot := code[ip]
			ip++
			if err := vm.push(value.NewRef(&vm.stack[slot])); err != nil {
				return value.Value{}, err
			}

		case OpPop:
			v := vm.pop()
			value.Release(v)

		case OpGetLocal:
			slot := code[ip]
			ip++
			v := vm.stack[slot]
			value.Retain(v)
			if err := vm.push(v); err != nil {
				return value.Value{}, err
			}

		case OpSetLocal:
			slot := code[ip]
			ip++
			v := vm.peek(0)
			value.Retain(v)
			old := vm.stack[slot]
			vm.stack[slot] = v
			value.Release(old)
			value.Release(vm.pop())

		case OpGetLocalByRef:
			slot := code[ip]
			ip++
			ref := vm.stack[slot]
			target := *ref.AsRef()
			value.Retain(target)
			if err := vm.push(target); err != nil {
				return value.Value{}, err
			}

		case OpSetLocalByRef:
			slot := code[ip]
			ip++
			ref := vm.stack[slot]
			v := vm.peek(0)
			value.Retain(v)
			target := ref.AsRef()
			old := *target
			*target = v
			value.Release(old)
			value.Release(vm.pop())

		case OpGetElement:
			idx := vm.pop()
			container := vm.pop()
			elem, err := elementAt(container, idx, line)
			if err != nil {
				value.Release(idx)
				value.Release(container)
				return value.Value{}, err
			}
			value.Retain(elem)
			value.Release(container)
			if err := vm.push(elem); err != nil {
				return value.Value{}, err
			}

		case OpElementRef:
			idx := vm.pop()
			container := vm.pop()
			if !container.IsArray() {
				value.Release(container)
				return value.Value{}, diagnostics.Newf(diagnostics.Type, line, 0,
					"cannot take a reference into a %s", container.TypeName())
			}
			arr := container.AsArray()
			i, err := indexOf(idx, arr.Len(), line)
			if err != nil {
				value.Release(container)
				return value.Value{}, err
			}
			ref := value.NewRef(arr.Slot(i))
			value.Release(container)
			if err := vm.push(ref); err != nil {
				return value.Value{}, err
			}

		case OpAdd, OpSub, OpMul, OpDiv, OpMod:
			rhs := vm.pop()
			lhs := vm.pop()
			result, err := binaryOp(op, lhs, rhs, line)
			value.Release(lhs)
			value.Release(rhs)
			if err != nil {
				return value.Value{}, err
			}
			if err := vm.push(result); err != nil {
				return value.Value{}, err
			}

		case OpNeg:
			v := vm.pop()
			if !v.IsNumber() {
				value.Release(v)
				return value.Value{}, diagnostics.Newf(diagnostics.Type, line, 0,
					"cannot negate %s", v.TypeName())
			}
			result := value.Number(-v.AsNumber())
			value.Release(v)
			if err := vm.push(result); err != nil {
				return value.Value{}, err
			}

		case OpReturn:
			return vm.pop(), nil

		default:
			return value.Value{}, diagnostics.Newf(diagnostics.Semantic, line, 0,
				"unknown opcode %d", byte(op))
		}
	}
	return value.Nil(), nil
}

// indexOf validates idx as an in-bounds integer index into a container of
// the given length, returning it as an int.
func indexOf(idx value.Value, length int, line int) (int, error) {
	if !idx.IsNumber() || !idx.IsInt() {
		return 0, diagnostics.New(diagnostics.Type, line, 0, "index must be an integer")
	}
	i := idx.AsInt()
	if i < 0 || i >= int64(length) {
		return 0, diagnostics.Newf(diagnostics.Range, line, 0, "index %d out of bounds (length %d)", i, length)
	}
	return int(i), nil
}

// elementAt resolves GET_ELEMENT, which only operates on arrays — the
// language has no for-loop to drive off a Range, so ranges are not an
// indexable container.
func elementAt(container, idx value.Value, line int) (value.Value, error) {
	if !container.IsArray() {
		return value.Value{}, diagnostics.Newf(diagnostics.Type, line, 0,
			"cannot index into %s", container.TypeName())
	}
	arr := container.AsArray()
	i, err := indexOf(idx, arr.Len(), line)
	if err != nil {
		return value.Value{}, err
	}
	return arr.Get(i), nil
}

// binaryOp evaluates ADD/SUB/MUL/DIV/MOD. Both operands must be numbers;
// each operator reports its own phrasing on a type mismatch, matching the
// wording of the reference implementation's per-opcode handlers.
func binaryOp(op Op, lhs, rhs value.Value, line int) (value.Value, error) {
	if !lhs.IsNumber() || !rhs.IsNumber() {
		return value.Value{}, typeMismatch(op, lhs, rhs, line)
	}
	a, b := lhs.AsNumber(), rhs.AsNumber()
	switch op {
	case OpAdd:
		return value.Number(a + b), nil
	case OpSub:
		return value.Number(a - b), nil
	case OpMul:
		return value.Number(a * b), nil
	case OpDiv:
		return value.Number(a / b), nil
	case OpMod:
		return value.Number(math.Mod(a, b)), nil
	default:
		panic("vm: binaryOp called with a non-arithmetic opcode")
	}
}

func typeMismatch(op Op, lhs, rhs value.Value, line int) error {
	switch op {
	case OpAdd:
		return diagnostics.Newf(diagnostics.Type, line, 0, "cannot add %s and %s", lhs.TypeName(), rhs.TypeName())
	case OpSub:
		return diagnostics.Newf(diagnostics.Type, line, 0, "cannot subtract %s from %s", rhs.TypeName(), lhs.TypeName())
	case OpMul:
		return diagnostics.Newf(diagnostics.Type, line, 0, "cannot multiply %s by %s", lhs.TypeName(), rhs.TypeName())
	case OpDiv:
		return diagnostics.Newf(diagnostics.Type, line, 0, "cannot divide %s by %s", lhs.TypeName(), rhs.TypeName())
	case OpMod:
		return diagnostics.Newf(diagnostics.Type, line, 0, "cannot calculate the modulus of %s by %s", lhs.TypeName(), rhs.TypeName())
	default:
		return diagnostics.Newf(diagnostics.Type, line, 0, "cannot operate on %s and %s", lhs.TypeName(), rhs.TypeName())
	}
}
