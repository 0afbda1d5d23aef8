package optimization

import "testing"

func TestNewAdjustment(t *testing.T) {
	tests := []struct {
		name         string
		original     float64
		value        float64
		wantOK       bool
		wantAction   Action
		wantPriority Priority
	}{
		{name: "below threshold", original: 100, value: 100.3, wantOK: false},
		{name: "add", original: 0, value: 25, wantOK: true, wantAction: ActionAdd, wantPriority: PriorityHigh},
		{name: "remove", original: 40, value: 0, wantOK: true, wantAction: ActionRemove, wantPriority: PriorityHigh},
		{name: "large increase", original: 100, value: 115, wantOK: true, wantAction: ActionIncrease, wantPriority: PriorityHigh},
		{name: "medium decrease", original: 100, value: 95, wantOK: true, wantAction: ActionDecrease, wantPriority: PriorityMedium},
		{name: "small increase", original: 500, value: 505, wantOK: true, wantAction: ActionIncrease, wantPriority: PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj, ok := NewAdjustment("id", "Ingredient", tt.original, tt.value)
			if ok != tt.wantOK {
				t.Fatalf("NewAdjustment ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if adj.Action != tt.wantAction {
				t.Errorf("Action = %s, want %s", adj.Action, tt.wantAction)
			}
			if adj.Priority != tt.wantPriority {
				t.Errorf("Priority = %s, want %s", adj.Priority, tt.wantPriority)
			}
			if adj.Delta != tt.value-tt.original {
				t.Errorf("Delta = %v, want %v", adj.Delta, tt.value-tt.original)
			}
		})
	}
}

func TestMaxAbsDeviation(t *testing.T) {
	got := MaxAbsDeviation([]Deviation{{Deviation: 0.2}, {Deviation: -0.7}, {Deviation: 0.4}})
	if got != 0.7 {
		t.Fatalf("MaxAbsDeviation = %v, want 0.7", got)
	}
	if MaxAbsDeviation(nil) != 0 {
		t.Fatal("MaxAbsDeviation of nil should be 0")
	}
}
