// Package freezing converts sucrose equivalents into a freezing point
// depression using the Leighton reference table.
package freezing

import (
	"fmt"
	"math"
	"sort"
)

// Point is one breakpoint of the reference table.
type Point struct {
	// SE is grams of sucrose (or sucrose equivalent) per 100 g water.
	SE float64
	// FPD is the freezing point depression in °C.
	FPD float64
}

// leighton is the freezing point depression of sucrose solutions as
// published by Leighton (1927, J. Dairy Sci. 10:300) and reproduced in
// Goff & Hartel, Ice Cream, Table 6.1.
var leighton = []Point{
	{0, 0},
	{3, 0.18}, {6, 0.35}, {9, 0.53}, {12, 0.72}, {15, 0.90},
	{18, 1.10}, {21, 1.29}, {24, 1.47}, {27, 1.67}, {30, 1.86},
	{33, 2.03}, {36, 2.21}, {39, 2.40}, {42, 2.60}, {45, 2.78},
	{48, 2.99}, {51, 3.20}, {54, 3.42}, {57, 3.63}, {60, 3.85},
	{63, 4.10}, {66, 4.33}, {69, 4.54}, {72, 4.77}, {75, 5.00},
	{78, 5.26}, {81, 5.53}, {84, 5.77}, {87, 5.99}, {90, 6.23},
	{93, 6.50}, {96, 6.80}, {99, 7.04}, {102, 7.32}, {105, 7.56},
	{108, 7.80}, {111, 8.04}, {114, 8.33}, {117, 8.62}, {120, 8.92},
}

// Depression is the result of a table lookup.
type Depression struct {
	FPDSE float64
	// Clamped is set when the input exceeded the tabulated range and the
	// last tabulated value was returned instead of extrapolating.
	Clamped bool
}

// Table returns a copy of the reference table.
func Table() []Point {
	out := make([]Point, len(leighton))
	copy(out, leighton)
	return out
}

// MaxSE returns the highest tabulated sucrose equivalent concentration.
func MaxSE() float64 {
	return leighton[len(leighton)-1].SE
}

// DepressionFromSE interpolates the freezing point depression for the given
// sucrose equivalents per 100 g water. Inputs beyond the table are clamped.
func DepressionFromSE(se float64) (Depression, error) {
	if se < 0 || math.IsNaN(se) {
		return Depression{}, fmt.Errorf("sucrose equivalents must be a non-negative number, got %v", se)
	}
	last := leighton[len(leighton)-1]
	if se > last.SE {
		return Depression{FPDSE: last.FPD, Clamped: true}, nil
	}

	// First breakpoint at or above se.
	i := sort.Search(len(leighton), func(i int) bool { return leighton[i].SE >= se })
	if leighton[i].SE == se {
		return Depression{FPDSE: leighton[i].FPD}, nil
	}
	lo, hi := leighton[i-1], leighton[i]
	frac := (se - lo.SE) / (hi.SE - lo.SE)
	return Depression{FPDSE: lo.FPD + frac*(hi.FPD-lo.FPD)}, nil
}
