// Package grid holds the integer cell and box records exchanged between the
// refinement engine and a hierarchical basis.
package grid

import (
	"fmt"
	"strings"
)

// Cell is a multi-index naming one elementary domain element at a given level.
type Cell []int

// Equal reports whether c and other name the same element.
func (c Cell) Equal(other Cell) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Upper returns the exclusive upper corner of the cell (c + 1 in every dimension).
func (c Cell) Upper() []int {
	upp := make([]int, len(c))
	for i, v := range c {
		upp[i] = v + 1
	}
	return upp
}

// Box is a refinement instruction: activate the breakpoint-index range
// [Lower, Upper] at Level.
type Box struct {
	Level int   `json:"level"`
	Lower []int `json:"lower"`
	Upper []int `json:"upper"`
}

// Dim returns the dimensionality of the box.
func (b Box) Dim() int {
	return len(b.Lower)
}

// Validate checks the box is well formed for a d-dimensional domain.
func (b Box) Validate(d int) error {
	if len(b.Lower) != d || len(b.Upper) != d {
		return fmt.Errorf("box has %d/%d corners, want %d", len(b.Lower), len(b.Upper), d)
	}
	if b.Level < 0 {
		return fmt.Errorf("box level %d is negative", b.Level)
	}
	for i := 0; i < d; i++ {
		if b.Lower[i] < 0 {
			return fmt.Errorf("box lower corner %d is negative in dimension %d", b.Lower[i], i)
		}
		if b.Lower[i] > b.Upper[i] {
			return fmt.Errorf("box lower corner %d exceeds upper corner %d in dimension %d",
				b.Lower[i], b.Upper[i], i)
		}
	}
	return nil
}

// String renders the box as "L3 [0 2]-[4 6]".
func (b Box) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "L%d %v-%v", b.Level, b.Lower, b.Upper)
	return sb.String()
}
