package bytecode

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDisassembleEmpty(t *testing.T) {
	p := NewProgram()

	output := p.Disassemble()

	if !strings.Contains(output, "; 0 instructions") {
		t.Errorf("Disassembly missing header:\n%s", output)
	}
	if !strings.Contains(output, "empty program") {
		t.Errorf("Disassembly missing empty program warning:\n%s", output)
	}
}

func TestDisassembleSimple(t *testing.T) {
	p := NewProgram(Push(AxisX), Push(Literal(-3)), Add(), Ret())

	output := p.Disassemble()

	for _, want := range []string{"push x", "push -3", "add", "ret"} {
		if !strings.Contains(output, want) {
			t.Errorf("Missing %q in:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Warnings") {
		t.Errorf("well-formed program should have no warnings:\n%s", output)
	}
}

func TestDisassembleWithName(t *testing.T) {
	p := NewProgram(Push(AxisY), Ret())

	output := p.DisassembleWithName("input_program.txt")

	if !strings.HasPrefix(output, "; === input_program.txt ===\n") {
		t.Errorf("missing name header:\n%s", output)
	}
	if !strings.Contains(output, p.HashString()[:12]) {
		t.Errorf("missing hash prefix:\n%s", output)
	}
}

func TestDisassembleToLines(t *testing.T) {
	p := NewProgram(Push(AxisZ), Jmpos(1), Push(Literal(0)), Ret(), Ret())

	want := []string{
		"0000  push z",
		"0001  jmpos 1      ; if >= 0 -> 0003",
		"0002  push 0",
		"0003  ret",
		"0004  ret",
	}
	if diff := cmp.Diff(want, p.DisassembleToLines()); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestDisassembleInstructionPastEnd(t *testing.T) {
	p := NewProgram(Ret())
	if got := p.DisassembleInstruction(3); got != "0003  <end of program>" {
		t.Errorf("got %q", got)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		prog *Program
		want []int // PCs of expected warnings
	}{
		{"clean", NewProgram(Push(AxisX), Jmpos(1), Ret(), Ret()), nil},
		{"empty", NewProgram(), []int{0}},
		{"jump past end", NewProgram(Push(AxisX), Jmpos(4), Ret()), []int{1}},
		{"jump before start", NewProgram(Push(AxisX), Jmpos(-3), Ret()), []int{1}},
		{"jump to self", NewProgram(Push(AxisX), Jmpos(-1), Ret()), nil},
		{"no final ret", NewProgram(Push(AxisX), Ret(), Push(AxisY)), []int{2}},
		{"both", NewProgram(Push(AxisX), Jmpos(9), Add()), []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			for _, w := range Check(tt.prog) {
				got = append(got, w.PC)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("warning PCs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{PC: 7, Message: "oops"}
	if got := w.String(); got != "0007: oops" {
		t.Errorf("String() = %q", got)
	}
}
