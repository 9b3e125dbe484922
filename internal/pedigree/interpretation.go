package pedigree

// Level is a named band of inbreeding percentage.
type Level string

// Inbreeding bands, lowest first.
const (
	LevelNone     Level = "none"
	LevelVeryLow  Level = "very_low"
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
	LevelVeryHigh Level = "very_high"
)

// Interpretation is the presentation metadata attached to a COI result.
type Interpretation struct {
	Level       Level  `json:"level"`
	Description string `json:"description"`
	Guidance    string `json:"guidance"`
}

var bands = []struct {
	below float64
	Interpretation
}{
	{3.125, Interpretation{LevelVeryLow, "Very low inbreeding", "Typical of outcrossed pedigrees; no action needed"}},
	{6.25, Interpretation{LevelLow, "Low inbreeding", "Comparable to second-cousin matings; acceptable for most breeding programmes"}},
	{12.5, Interpretation{LevelModerate, "Moderate inbreeding", "Comparable to first-cousin matings; monitor genetic diversity"}},
	{25.0, Interpretation{LevelHigh, "High inbreeding", "Comparable to half-sibling matings; consider outcrossing"}},
}

var (
	noneInterpretation     = Interpretation{LevelNone, "No common ancestors found within the analysed generations", "No inbreeding detected in the analysed pedigree"}
	veryHighInterpretation = Interpretation{LevelVeryHigh, "Very high inbreeding", "Comparable to full-sibling or parent-offspring matings; avoid further close breeding"}
)

// Interpret bands a COI percentage.
func Interpret(percentage float64) Interpretation {
	if percentage <= 0 {
		return noneInterpretation
	}
	for _, b := range bands {
		if percentage < b.below {
			return b.Interpretation
		}
	}
	return veryHighInterpretation
}
