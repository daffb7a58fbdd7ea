package bytecode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cloudcal.bytecode")

// DecodeLine decodes a single listing line into an instruction.
func DecodeLine(line string) (Instruction, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Instruction{}, &DecodeError{Text: line, Err: ErrUnknownOpcode}
	}

	op, ok := LookupMnemonic(fields[0])
	if !ok {
		return Instruction{}, &DecodeError{
			Text: line,
			Err:  fmt.Errorf("%w: %q", ErrUnknownOpcode, fields[0]),
		}
	}

	if len(fields) < 1+op.Operands() {
		return Instruction{}, &DecodeError{
			Text: line,
			Err:  fmt.Errorf("%w: %s takes %d", ErrMissingOperand, op, op.Operands()),
		}
	}

	switch op {
	case OpPush:
		operand, err := decodeOperand(fields[1])
		if err != nil {
			return Instruction{}, &DecodeError{Text: line, Err: err}
		}
		return Push(operand), nil

	case OpJmpos:
		offset, err := decodeInt(fields[1])
		if err != nil {
			return Instruction{}, &DecodeError{Text: line, Err: err}
		}
		return Jmpos(offset), nil

	case OpAdd:
		return Add(), nil

	default:
		return Ret(), nil
	}
}

func decodeOperand(tok string) (Operand, error) {
	switch strings.ToLower(tok) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	v, err := decodeInt(tok)
	if err != nil {
		return Operand{}, err
	}
	return Literal(v), nil
}

// decodeInt parses a signed 32-bit decimal. Values outside int32 are
// rejected rather than truncated.
func decodeInt(tok string) (int32, error) {
	v, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadInteger, tok)
	}
	return int32(v), nil
}

// Decode reads a whole listing, one instruction per line. The first bad line
// aborts decoding; no partial program is returned.
func Decode(r io.Reader) (*Program, error) {
	var instructions []Instruction
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		in, err := DecodeLine(text)
		if err != nil {
			de := err.(*DecodeError)
			de.Line = lineNo
			return nil, de
		}
		instructions = append(instructions, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading listing: %w", err)
	}
	return NewProgram(instructions...), nil
}

// DecodeString decodes a listing held in memory.
func DecodeString(src string) (*Program, error) {
	return Decode(strings.NewReader(src))
}

// DecodeFile decodes the listing stored at path.
func DecodeFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("loaded %s: %d instructions, hash %.12s", path, p.Len(), p.HashString())
	return p, nil
}
