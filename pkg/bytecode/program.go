package bytecode

import (
	"crypto/sha256"
	"fmt"
	"strconv"
)

// OperandKind selects where a push takes its value from.
type OperandKind uint8

const (
	// OperandLiteral pushes Operand.Value.
	OperandLiteral OperandKind = iota

	// OperandX pushes the X component of the current point.
	OperandX

	// OperandY pushes the Y component of the current point.
	OperandY

	// OperandZ pushes the Z component of the current point.
	OperandZ
)

// String returns the listing spelling of an axis kind, or "literal".
func (k OperandKind) String() string {
	switch k {
	case OperandLiteral:
		return "literal"
	case OperandX:
		return "x"
	case OperandY:
		return "y"
	case OperandZ:
		return "z"
	default:
		return fmt.Sprintf("OperandKind(%d)", k)
	}
}

// Operand is the argument of a push.
type Operand struct {
	Kind  OperandKind
	Value int32 // Only meaningful for OperandLiteral
}

// Literal returns a literal operand.
func Literal(v int32) Operand {
	return Operand{Kind: OperandLiteral, Value: v}
}

// Axis operands.
var (
	AxisX = Operand{Kind: OperandX}
	AxisY = Operand{Kind: OperandY}
	AxisZ = Operand{Kind: OperandZ}
)

// String returns the operand as it appears in a listing.
func (o Operand) String() string {
	if o.Kind == OperandLiteral {
		return strconv.Itoa(int(o.Value))
	}
	return o.Kind.String()
}

// Instruction is a single decoded instruction. Op selects which of the other
// fields is meaningful: Operand for OpPush, Offset for OpJmpos.
type Instruction struct {
	Op      Opcode
	Operand Operand
	Offset  int32
}

// Push builds a push instruction.
func Push(o Operand) Instruction { return Instruction{Op: OpPush, Operand: o} }

// Add builds an add instruction.
func Add() Instruction { return Instruction{Op: OpAdd} }

// Jmpos builds a conditional jump skipping offset instructions when taken.
func Jmpos(offset int32) Instruction { return Instruction{Op: OpJmpos, Offset: offset} }

// Ret builds a return instruction.
func Ret() Instruction { return Instruction{Op: OpRet} }

// String returns the instruction in listing form, e.g. "push x" or "jmpos -3".
func (in Instruction) String() string {
	switch in.Op {
	case OpPush:
		return "push " + in.Operand.String()
	case OpJmpos:
		return "jmpos " + strconv.Itoa(int(in.Offset))
	default:
		return in.Op.String()
	}
}

// Program is a decoded instruction sequence. It is never modified after
// decoding and may be shared by any number of VMs.
type Program struct {
	Instructions []Instruction
}

// NewProgram wraps an instruction sequence.
func NewProgram(instructions ...Instruction) *Program {
	return &Program{Instructions: instructions}
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// At returns the instruction at pc and whether pc is in range.
func (p *Program) At(pc int) (Instruction, bool) {
	if pc < 0 || pc >= len(p.Instructions) {
		return Instruction{}, false
	}
	return p.Instructions[pc], true
}

// Hash returns the SHA-256 of the program's canonical listing. Two programs
// that decode to the same instructions hash identically regardless of the
// whitespace or axis case used in their source.
func (p *Program) Hash() [32]byte {
	return sha256.Sum256([]byte(p.Listing()))
}

// HashString returns Hash as lowercase hex.
func (p *Program) HashString() string {
	return fmt.Sprintf("%x", p.Hash())
}
