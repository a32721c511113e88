package solvent

import "fmt"

// FSort describes a floating-point sort by its exponent and significand
// widths. The significand width includes the hidden bit.
type FSort struct {
	EBits uint
	SBits uint
}

// Standard floating-point sorts.
var (
	FSortFloat  = FSort{EBits: 8, SBits: 24}
	FSortDouble = FSort{EBits: 11, SBits: 53}
)

// FSortFromLength returns the standard sort with the given total width.
func FSortFromLength(n uint) (FSort, error) {
	switch n {
	case 32:
		return FSortFloat, nil
	case 64:
		return FSortDouble, nil
	default:
		return FSort{}, fmt.Errorf("no standard floating-point sort of width %d", n)
	}
}

// Length returns the total bit width of the sort.
func (s FSort) Length() uint { return s.EBits + s.SBits }

// String returns the string representation of the sort.
func (s FSort) String() string { return fmt.Sprintf("fp(%d,%d)", s.EBits, s.SBits) }

// RoundingMode represents an IEEE-754 rounding mode. Rounding modes appear
// as leading arguments of floating-point arithmetic nodes.
type RoundingMode string

// Available rounding modes.
const (
	RNE RoundingMode = "RNE" // round nearest, ties to even
	RNA RoundingMode = "RNA" // round nearest, ties away from zero
	RTP RoundingMode = "RTP" // round toward positive
	RTN RoundingMode = "RTN" // round toward negative
	RTZ RoundingMode = "RTZ" // round toward zero
)
