package sky

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/zegevlier/infi-aoc-2024/pkg/bytecode"
)

func TestSurveyTwoWalls(t *testing.T) {
	prog := mustDecode(t, twoWalls)

	report, err := Survey(context.Background(), prog, Options{Workers: 3})
	if err != nil {
		t.Fatalf("Survey failed: %v", err)
	}
	if report.Calibration != 1800 {
		t.Errorf("Calibration = %d, want 1800", report.Calibration)
	}
	if report.Clouds != 2 {
		t.Errorf("Clouds = %d, want 2", report.Clouds)
	}
	if report.LargestCloud != 900 {
		t.Errorf("LargestCloud = %d, want 900", report.LargestCloud)
	}
	if report.Workers != 3 {
		t.Errorf("Workers = %d, want 3", report.Workers)
	}
	if report.ProgramHash != prog.HashString() {
		t.Errorf("ProgramHash = %s, want %s", report.ProgramHash, prog.HashString())
	}
	if report.Duration() < report.EvalDuration {
		t.Error("Duration should include evaluation time")
	}
}

func TestSurveyConstantProgram(t *testing.T) {
	report, err := Survey(context.Background(), mustDecode(t, constantEight), Options{})
	if err != nil {
		t.Fatalf("Survey failed: %v", err)
	}

	var buf bytes.Buffer
	n, err := report.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	want := "Calibration number: 216000\nClouds: 1\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
	if n != int64(len(want)) {
		t.Errorf("WriteTo returned %d, want %d", n, len(want))
	}
}

func TestSurveyNoActiveCells(t *testing.T) {
	report, err := Survey(context.Background(), mustDecode(t, "push 0\nret\n"), Options{})
	if err != nil {
		t.Fatalf("Survey failed: %v", err)
	}
	if report.Calibration != 0 || report.Clouds != 0 || report.LargestCloud != 0 {
		t.Errorf("got calibration %d, clouds %d, largest %d; want all zero",
			report.Calibration, report.Clouds, report.LargestCloud)
	}
}

func TestSurveyPropagatesFault(t *testing.T) {
	report, err := Survey(context.Background(), mustDecode(t, "add\nret\n"), Options{})
	if report != nil {
		t.Error("partial report returned")
	}
	if !errors.Is(err, bytecode.ErrStackUnderflow) {
		t.Errorf("err = %v, want ErrStackUnderflow", err)
	}
}
