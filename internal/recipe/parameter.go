package recipe

import (
	"fmt"
	"strings"
)

// Parameter names a tracked composition figure of a mix.
type Parameter string

const (
	ParamTotalSolids Parameter = "total_solids"
	ParamFat         Parameter = "fat"
	ParamMSNF        Parameter = "msnf"
	ParamTotalSugars Parameter = "total_sugars"
	ParamSP          Parameter = "sp"
	ParamPAC         Parameter = "pac"
	ParamFPDT        Parameter = "fpdt"
)

// Parameters lists every parameter in evaluation order.
var Parameters = []Parameter{ParamTotalSolids, ParamFat, ParamMSNF, ParamTotalSugars, ParamSP, ParamPAC, ParamFPDT}

// ParseParameter maps a user supplied name onto a Parameter. A trailing
// "_pct" is accepted so that metric field names can be used directly.
func ParseParameter(value string) (Parameter, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.TrimSuffix(normalized, "_pct")
	switch normalized {
	case "ts", "solids":
		return ParamTotalSolids, nil
	case "sugars", "totalsugars":
		return ParamTotalSugars, nil
	}
	for _, p := range Parameters {
		if string(p) == normalized {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownParameter, value)
}

// Linear reports whether the parameter is a mass-weighted average of per
// ingredient values, which is what the balancer can target. Freezing point
// depression goes through the Leighton table and is not linear in grams.
func (p Parameter) Linear() bool {
	return p != ParamFPDT
}

// Label returns a short display name for the parameter.
func (p Parameter) Label() string {
	switch p {
	case ParamTotalSolids:
		return "total solids"
	case ParamFat:
		return "fat"
	case ParamMSNF:
		return "MSNF"
	case ParamTotalSugars:
		return "total sugars"
	case ParamSP:
		return "sweetness (SP)"
	case ParamPAC:
		return "anti-freezing power (PAC)"
	case ParamFPDT:
		return "freezing point depression"
	default:
		return string(p)
	}
}

// Unit returns the display unit for values of the parameter.
func (p Parameter) Unit() string {
	if p == ParamFPDT {
		return "°C"
	}
	if p == ParamSP || p == ParamPAC {
		return ""
	}
	return "%"
}

// Targets maps parameters onto desired values.
type Targets map[Parameter]float64

// Ordered returns the targeted parameters in the fixed Parameters order.
func (t Targets) Ordered() []Parameter {
	var out []Parameter
	for _, p := range Parameters {
		if _, ok := t[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ParseTargets converts a name keyed map, as read from files or requests,
// into Targets.
func ParseTargets(raw map[string]float64) (Targets, error) {
	targets := make(Targets, len(raw))
	for name, value := range raw {
		p, err := ParseParameter(name)
		if err != nil {
			return nil, err
		}
		targets[p] = value
	}
	return targets, nil
}
