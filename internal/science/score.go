package science

// Score is the overall quality of a mix.
type Score struct {
	Score float64 `json:"score"`
	Grade string  `json:"grade"`
	Color string  `json:"color"`
}

var severityPoints = map[Severity]float64{
	SeverityOptimal:    100,
	SeverityAcceptable: 75,
	SeverityWarning:    40,
	SeverityCritical:   0,
}

// QualityScore condenses validation results into a 0-100 score: the
// importance weighted mean of the per parameter severity points.
func QualityScore(results []Result) Score {
	var weighted, total float64
	for _, r := range results {
		weighted += r.Weight * severityPoints[r.Severity]
		total += r.Weight
	}
	if total == 0 {
		return gradeOf(0)
	}
	return gradeOf(weighted / total)
}

func gradeOf(score float64) Score {
	switch {
	case score >= 90:
		return Score{Score: score, Grade: "A", Color: "success"}
	case score >= 75:
		return Score{Score: score, Grade: "B", Color: "success"}
	case score >= 60:
		return Score{Score: score, Grade: "C", Color: "warning"}
	case score >= 40:
		return Score{Score: score, Grade: "D", Color: "warning"}
	default:
		return Score{Score: score, Grade: "F", Color: "destructive"}
	}
}
