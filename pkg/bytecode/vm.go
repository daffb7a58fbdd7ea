package bytecode

import (
	"github.com/zegevlier/infi-aoc-2024/pkg/grid"
)

// VM executes programs against one point at a time.
type VM struct {
	// Current execution state
	prog  *Program   // Program being executed
	pc    int        // Program counter
	stack []int32    // Evaluation stack
	point grid.Point // Coordinates read by push x/y/z

	// Steps counts instructions executed across every Execute call.
	Steps uint64

	// Debug/trace mode
	Trace bool
}

// NewVM creates a new VM instance.
func NewVM() *VM {
	return &VM{
		stack: make([]int32, 0, 16),
	}
}

// Execute runs p with pt as the current point and returns the value popped by
// the first ret. The stack starts empty on every call. Values are 32-bit and
// add wraps on overflow.
func (vm *VM) Execute(p *Program, pt grid.Point) (int32, error) {
	vm.prog = p
	vm.pc = 0
	vm.stack = vm.stack[:0]
	vm.point = pt

	return vm.run()
}

// run is the main execution loop.
func (vm *VM) run() (int32, error) {
	for {
		in, ok := vm.prog.At(vm.pc)
		if !ok {
			return 0, vm.fault(0, ErrPCOutOfRange)
		}
		vm.Steps++

		if vm.Trace {
			log.Debugf("[%04d] %-10s point=%v stack=%v", vm.pc, in, vm.point, vm.stack)
		}

		switch in.Op {
		case OpPush:
			vm.push(vm.operand(in.Operand))
			vm.pc++

		case OpAdd:
			a, ok := vm.pop()
			if !ok {
				return 0, vm.fault(in.Op, ErrStackUnderflow)
			}
			b, ok := vm.pop()
			if !ok {
				return 0, vm.fault(in.Op, ErrStackUnderflow)
			}
			vm.push(a + b)
			vm.pc++

		case OpJmpos:
			cond, ok := vm.pop()
			if !ok {
				return 0, vm.fault(in.Op, ErrStackUnderflow)
			}
			vm.pc++
			if cond >= 0 {
				vm.pc += int(in.Offset)
			}

		case OpRet:
			result, ok := vm.pop()
			if !ok {
				return 0, vm.fault(in.Op, ErrStackUnderflow)
			}
			return result, nil

		default:
			return 0, vm.fault(in.Op, ErrUnknownOpcode)
		}
	}
}

func (vm *VM) operand(o Operand) int32 {
	switch o.Kind {
	case OperandX:
		return int32(vm.point.X)
	case OperandY:
		return int32(vm.point.Y)
	case OperandZ:
		return int32(vm.point.Z)
	default:
		return o.Value
	}
}

func (vm *VM) push(v int32) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() (int32, bool) {
	n := len(vm.stack)
	if n == 0 {
		return 0, false
	}
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v, true
}

func (vm *VM) fault(op Opcode, err error) *RuntimeError {
	return &RuntimeError{PC: vm.pc, Op: op, Point: vm.point, Err: err}
}
