package bytecode

import (
	"fmt"
	"sort"
)

// Opcode represents a bytecode instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Stack (0x10-0x1F)
	// ========================================================================

	OpPush Opcode = 0x10 // Push an axis or literal: push <operand>

	// ========================================================================
	// Arithmetic (0x50-0x5F)
	// ========================================================================

	OpAdd Opcode = 0x50 // Pop two, push sum

	// ========================================================================
	// Control flow (0x80-0x8F)
	// ========================================================================

	OpJmpos Opcode = 0x81 // Pop one, skip <offset> more if it was >= 0: jmpos <offset>

	// ========================================================================
	// Return (0xF0-0xFF)
	// ========================================================================

	OpRet Opcode = 0xF0 // Pop one and halt with it as the result
)

// OpcodeInfo provides metadata about each opcode for debugging and validation.
type OpcodeInfo struct {
	Mnemonic  string // Listing spelling
	StackPop  int    // How many values popped from stack
	StackPush int    // How many values pushed to stack
	Operands  int    // Number of operand tokens following the mnemonic
	Summary   string // One-line description for tooling
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpPush:  {"push", 0, 1, 1, "Push x, y or z of the current point, or an integer literal."},
	OpAdd:   {"add", 2, 1, 0, "Pop two values and push their sum."},
	OpJmpos: {"jmpos", 1, 0, 1, "Pop a value; if it is >= 0, skip the given number of instructions."},
	OpRet:   {"ret", 1, 0, 0, "Pop a value and halt, yielding it as the program's result."},
}

// mnemonics is the reverse index of opcodeInfoTable.
var mnemonics = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeInfoTable))
	for op, info := range opcodeInfoTable {
		m[info.Mnemonic] = op
	}
	return m
}()

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with mnemonic "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Mnemonic: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// LookupMnemonic returns the opcode spelled s. Matching is case-sensitive.
func LookupMnemonic(s string) (Opcode, bool) {
	op, ok := mnemonics[s]
	return op, ok
}

// String returns the listing mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Mnemonic
}

// Operands returns the number of operand tokens this opcode takes.
func (op Opcode) Operands() int {
	return GetOpcodeInfo(op).Operands
}

// IsJump returns true if this opcode can move the program counter by more
// than one.
func (op Opcode) IsJump() bool {
	return op >= 0x80 && op <= 0x8F
}

// IsReturn returns true if this opcode terminates execution.
func (op Opcode) IsReturn() bool {
	return op >= 0xF0
}

// AllOpcodes returns every defined opcode in ascending order.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	sort.Slice(opcodes, func(i, j int) bool { return opcodes[i] < opcodes[j] })
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
