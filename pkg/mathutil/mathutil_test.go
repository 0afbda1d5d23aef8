package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Nearly two hundredths", 0.019, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(3.14159, 3); math.Abs(got-3.142) > 1e-9 {
		t.Errorf("RoundTo(3.14159, 3) = %v, expected 3.142", got)
	}
	if got := RoundTo(1234.5, 0); got != 1235 {
		t.Errorf("RoundTo(1234.5, 0) = %v, expected 1235", got)
	}
}

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Zero", 0, true},
		{"Negative", -12.5, true},
		{"NaN", math.NaN(), false},
		{"Positive infinity", math.Inf(1), false},
		{"Negative infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinite(tt.input); got != tt.expected {
				t.Errorf("IsFinite(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		a, b, tol float64
		expected  bool
	}{
		{"Equal", 5, 5, 0, true},
		{"Inside", 5, 5.4, 0.5, true},
		{"On the edge", 5, 5.5, 0.5, true},
		{"Outside", 5, 5.6, 0.5, false},
		{"Negative side", 5, 4.4, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinTolerance(tt.a, tt.b, tt.tol); got != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v", tt.a, tt.b, tt.tol, got, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{"Below", -1, 0},
		{"Inside", 4, 4},
		{"Above", 12, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.value, 0, 10); got != tt.expected {
				t.Errorf("Clamp(%v, 0, 10) = %v, expected %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestCalculatePercentage(t *testing.T) {
	if got := CalculatePercentage(35, 1000); math.Abs(got-3.5) > 1e-9 {
		t.Errorf("CalculatePercentage(35, 1000) = %v, expected 3.5", got)
	}
	if got := CalculatePercentage(10, 0); got != 0 {
		t.Errorf("CalculatePercentage with zero total = %v, expected 0", got)
	}
}

func TestApplyPercentage(t *testing.T) {
	if got := ApplyPercentage(650, 3.25); math.Abs(got-21.125) > 1e-9 {
		t.Errorf("ApplyPercentage(650, 3.25) = %v, expected 21.125", got)
	}
}

func TestSafeDivide(t *testing.T) {
	if got := SafeDivide(9, 3); got != 3 {
		t.Errorf("SafeDivide(9, 3) = %v, expected 3", got)
	}
	if got := SafeDivide(9, 0); got != 0 {
		t.Errorf("SafeDivide(9, 0) = %v, expected 0", got)
	}
}
