package bytecode

import (
	"fmt"
	"strings"
)

// Listing returns the program in canonical listing form: one instruction per
// line, lowercase axes, single spaces, trailing newline. Decoding the listing
// yields an identical program.
func (p *Program) Listing() string {
	var sb strings.Builder
	for _, in := range p.Instructions {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Disassemble returns a human-readable annotated listing for the program.
func (p *Program) Disassemble() string {
	return p.DisassembleWithName("")
}

// DisassembleWithName returns an annotated listing with a name header.
func (p *Program) DisassembleWithName(name string) string {
	var sb strings.Builder

	// Header
	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; %d instructions, hash %.12s\n", p.Len(), p.HashString()))

	warnings := Check(p)
	if len(warnings) > 0 {
		sb.WriteString("; Warnings:\n")
		for _, w := range warnings {
			sb.WriteString(fmt.Sprintf(";   %s\n", w))
		}
	}
	sb.WriteString("\n")

	for _, line := range p.DisassembleToLines() {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

// DisassembleInstruction returns one annotated line for the instruction at pc.
func (p *Program) DisassembleInstruction(pc int) string {
	in, ok := p.At(pc)
	if !ok {
		return fmt.Sprintf("%04d  <end of program>", pc)
	}
	line := fmt.Sprintf("%04d  %-12s", pc, in)
	if in.Op.IsJump() {
		line += fmt.Sprintf(" ; if >= 0 -> %04d", pc+1+int(in.Offset))
	}
	return strings.TrimRight(line, " ")
}

// DisassembleToLines returns the annotated instructions as separate lines.
func (p *Program) DisassembleToLines() []string {
	lines := make([]string, 0, p.Len())
	for pc := range p.Instructions {
		lines = append(lines, p.DisassembleInstruction(pc))
	}
	return lines
}

// Warning is a static finding about a program that decoded successfully but
// will fault, or may fault, when executed.
type Warning struct {
	PC      int // Instruction the warning refers to
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%04d: %s", w.PC, w.Message)
}

// Check looks for jumps that leave the program and for control falling off
// the end. The VM does not need these checks; they exist for tooling.
func Check(p *Program) []Warning {
	var warnings []Warning
	if p.Len() == 0 {
		return []Warning{{PC: 0, Message: "empty program"}}
	}
	for pc, in := range p.Instructions {
		if !in.Op.IsJump() {
			continue
		}
		target := pc + 1 + int(in.Offset)
		if target < 0 || target >= p.Len() {
			warnings = append(warnings, Warning{
				PC:      pc,
				Message: fmt.Sprintf("jump target %d is outside the program (0-%d)", target, p.Len()-1),
			})
		}
	}
	last := p.Len() - 1
	if !p.Instructions[last].Op.IsReturn() {
		warnings = append(warnings, Warning{
			PC:      last,
			Message: "last instruction is not ret; execution can run past the end",
		})
	}
	return warnings
}
