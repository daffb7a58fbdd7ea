// Package snapshot stores the result of a survey on disk: the program that
// produced it, the two aggregate results, and the full active grid, so a run
// can be inspected and its cloud count re-derived later without evaluating
// the program again.
//
// Snapshots are encoded as canonical CBOR. The active grid is bit-packed in
// x-major index order, least significant bit first.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/zegevlier/infi-aoc-2024/pkg/bytecode"
	"github.com/zegevlier/infi-aoc-2024/pkg/grid"
	"github.com/zegevlier/infi-aoc-2024/pkg/sky"
)

// Version is the snapshot format version written by this package.
const Version = 1

// packedSize is the length of the bit-packed active grid.
const packedSize = (grid.Cells + 7) / 8

var (
	ErrVersion  = errors.New("unsupported snapshot version")
	ErrCorrupt  = errors.New("corrupt snapshot")
	ErrMismatch = errors.New("snapshot does not match its contents")
)

// Snapshot is a stored survey result.
type Snapshot struct {
	Version      uint8    `cbor:"1,keyasint"`
	ProgramHash  [32]byte `cbor:"2,keyasint"`
	Listing      string   `cbor:"3,keyasint"` // canonical program source
	Calibration  int64    `cbor:"4,keyasint"`
	Clouds       int64    `cbor:"5,keyasint"`
	LargestCloud int64    `cbor:"6,keyasint,omitempty"`
	Active       []byte   `cbor:"7,keyasint"` // bit-packed, x-major
}

// New builds a snapshot of report, which must have been produced by prog.
func New(prog *bytecode.Program, report *sky.Report) *Snapshot {
	return &Snapshot{
		Version:      Version,
		ProgramHash:  prog.Hash(),
		Listing:      prog.Listing(),
		Calibration:  int64(report.Calibration),
		Clouds:       int64(report.Clouds),
		LargestCloud: int64(report.LargestCloud),
		Active:       Pack(report.Active),
	}
}

// Pack bit-packs an active grid.
func Pack(active *grid.Grid[bool]) []byte {
	packed := make([]byte, packedSize)
	for i := range grid.Cells {
		if active.At(grid.FromIndex(i)) {
			packed[i>>3] |= 1 << (i & 7)
		}
	}
	return packed
}

// Unpack is the inverse of Pack.
func Unpack(packed []byte) (*grid.Grid[bool], error) {
	if len(packed) != packedSize {
		return nil, fmt.Errorf("%w: active grid is %d bytes, want %d", ErrCorrupt, len(packed), packedSize)
	}
	active := grid.New[bool]()
	for i := range grid.Cells {
		if packed[i>>3]&(1<<(i&7)) != 0 {
			active.Set(grid.FromIndex(i), true)
		}
	}
	return active, nil
}

// ActiveGrid rebuilds the stored active grid.
func (s *Snapshot) ActiveGrid() (*grid.Grid[bool], error) {
	return Unpack(s.Active)
}

// Program decodes the stored listing and checks it against ProgramHash.
func (s *Snapshot) Program() (*bytecode.Program, error) {
	prog, err := bytecode.DecodeString(s.Listing)
	if err != nil {
		return nil, fmt.Errorf("%w: stored listing: %w", ErrCorrupt, err)
	}
	if h := prog.Hash(); h != s.ProgramHash {
		return nil, fmt.Errorf("%w: program hash %x, stored %x", ErrMismatch, h[:6], s.ProgramHash[:6])
	}
	return prog, nil
}

// Recount counts the clouds in the stored active grid from scratch.
func (s *Snapshot) Recount() (int, error) {
	active, err := s.ActiveGrid()
	if err != nil {
		return 0, err
	}
	return sky.CountClouds(active, grid.New[bool]()), nil
}

// Verify checks that the stored program hashes to ProgramHash and that the
// stored active grid yields the stored cloud count.
func (s *Snapshot) Verify() error {
	if _, err := s.Program(); err != nil {
		return err
	}
	clouds, err := s.Recount()
	if err != nil {
		return err
	}
	if int64(clouds) != s.Clouds {
		return fmt.Errorf("%w: active grid has %d clouds, stored %d", ErrMismatch, clouds, s.Clouds)
	}
	return nil
}
