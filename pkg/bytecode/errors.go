package bytecode

import (
	"errors"
	"fmt"

	"github.com/zegevlier/infi-aoc-2024/pkg/grid"
)

var (
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrMissingOperand = errors.New("missing operand")
	ErrBadInteger     = errors.New("operand is not an integer")
	ErrStackUnderflow = errors.New("pop from empty stack")
	ErrPCOutOfRange   = errors.New("program counter out of range")
)

// DecodeError is returned when a listing line cannot be decoded. Line is
// 1-based; it is 0 when the error came from DecodeLine directly.
type DecodeError struct {
	Line int
	Text string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("decode error on line %d %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("decode error %q: %v", e.Text, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RuntimeError is a fault raised while executing a program at one point.
// These always mean the program itself is malformed.
type RuntimeError struct {
	PC    int
	Op    Opcode // Zero when the fault is a fetch outside the program
	Point grid.Point
	Err   error
}

func (e *RuntimeError) Error() string {
	if e.Op == 0 {
		return fmt.Sprintf("runtime error @ pc %d point %v: %v", e.PC, e.Point, e.Err)
	}
	return fmt.Sprintf("runtime error @ pc %d point %v: %s: %v", e.PC, e.Point, e.Op, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
