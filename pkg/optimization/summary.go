// Package optimization provides shared data structures for balancing results.
package optimization

import "math"

// Action is what a balancing run did to one ingredient.
type Action string

const (
	ActionAdd      Action = "add"
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionRemove   Action = "remove"
)

// Priority ranks how much an adjustment matters to the result.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// MinAdjustmentGrams is the smallest change reported as an adjustment.
const MinAdjustmentGrams = 0.5

// Adjustment captures the change made to a single ingredient.
type Adjustment struct {
	IngredientID string   `json:"ingredient_id"`
	Ingredient   string   `json:"ingredient"`
	Action       Action   `json:"action"`
	Original     float64  `json:"original_g"`
	Value        float64  `json:"value_g"`
	Delta        float64  `json:"delta_g"`
	Reason       string   `json:"reason"`
	Priority     Priority `json:"priority"`
}

// NewAdjustment classifies a change from original to value grams. It
// returns false when the change is too small to report.
func NewAdjustment(id, name string, original, value float64) (Adjustment, bool) {
	delta := value - original
	if math.Abs(delta) < MinAdjustmentGrams {
		return Adjustment{}, false
	}
	adj := Adjustment{
		IngredientID: id,
		Ingredient:   name,
		Original:     original,
		Value:        value,
		Delta:        delta,
	}
	switch {
	case original <= 0:
		adj.Action = ActionAdd
	case value < MinAdjustmentGrams:
		adj.Action = ActionRemove
	case delta > 0:
		adj.Action = ActionIncrease
	default:
		adj.Action = ActionDecrease
	}
	adj.Priority = priorityOf(adj.Action, original, delta)
	return adj, true
}

func priorityOf(action Action, original, delta float64) Priority {
	if action == ActionAdd || action == ActionRemove {
		return PriorityHigh
	}
	share := math.Abs(delta) / original
	switch {
	case share >= 0.10:
		return PriorityHigh
	case share >= 0.02:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Deviation compares a targeted parameter with the value reached.
type Deviation struct {
	Parameter string  `json:"parameter"`
	Target    float64 `json:"target"`
	Achieved  float64 `json:"achieved"`
	Deviation float64 `json:"deviation"`
}

// Diagnostics summarize how a balancing run went.
type Diagnostics struct {
	Iterations   int      `json:"iterations"`
	Converged    bool     `json:"converged"`
	MaxDeviation float64  `json:"max_deviation"`
	Objective    float64  `json:"objective,omitempty"`
	Notes        []string `json:"notes,omitempty"`
}

// MaxAbsDeviation returns the largest absolute deviation in the list.
func MaxAbsDeviation(deviations []Deviation) float64 {
	worst := 0.0
	for _, d := range deviations {
		if v := math.Abs(d.Deviation); v > worst {
			worst = v
		}
	}
	return worst
}
