// Package bytecode implements the calibration stack machine: its four-opcode
// instruction set, the line-oriented listing format programs are written in,
// and the interpreter that runs a program against a single grid coordinate.
//
// # Listing format
//
// A program is a text file with exactly one instruction per line. Tokens are
// separated by whitespace; the first token is the mnemonic and is matched
// case-sensitively:
//
//	push <x|y|z|int>   push an axis of the current point, or a literal
//	add                pop two values, push their sum
//	jmpos <int>        pop one value; if it is >= 0 skip <int> instructions
//	ret                pop one value and halt with it as the result
//
// The axis names after push are matched case-insensitively. There is no
// comment syntax and blank lines are rejected.
//
// # Execution model
//
// The program counter starts at 0 and every instruction advances it by one.
// A taken jmpos advances it by an additional offset, so "jmpos 1" skips the
// next instruction and "jmpos -2" re-runs the previous one. Execution stops at
// the first ret. A program that pops an empty stack or runs off either end
// of its instruction list fails with a *RuntimeError; there is no step limit,
// so a program that loops forever never returns.
//
// # Architecture Overview
//
//   - Opcodes: the instruction set with per-opcode metadata (mnemonic, stack
//     effect, operand count) used by the decoder, disassembler and editor
//     tooling.
//
//   - Decoder: turns listing text into a Program, aborting on the first
//     malformed line with a *DecodeError.
//
//   - Program: an immutable instruction sequence shared by every execution.
//     Its Listing is canonical, and its Hash identifies it in snapshots and
//     run history.
//
//   - VM: the interpreter. A VM holds a reusable evaluation stack and is not
//     safe for concurrent use; run one VM per goroutine.
package bytecode
