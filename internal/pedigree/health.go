package pedigree

import "pedigreecore/pkg/domain"

// HealthStatus is the overall verdict across an individual's health tests.
type HealthStatus string

// Health verdicts, worst first.
const (
	HealthConcern HealthStatus = "concern"
	HealthWarning HealthStatus = "warning"
	HealthGood    HealthStatus = "good"
	HealthUnknown HealthStatus = "unknown"
)

// HealthSummary is the verdict with a short explanation.
type HealthSummary struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message"`
}

var (
	concernResults = map[string]struct{}{"-/-": {}, "D": {}, "E": {}, "2": {}, "3": {}, "affected": {}}
	warningResults = map[string]struct{}{"B": {}, "1": {}, "carrier": {}}
	goodResults    = map[string]struct{}{"+/+": {}, "A": {}, "0": {}, "clear": {}}
)

// SummarizeHealth picks the worst recognised result: any concern wins over any
// warning, which wins over any good result. Results are matched exactly.
func SummarizeHealth(tests []domain.HealthTest) HealthSummary {
	if len(tests) == 0 {
		return HealthSummary{Status: HealthUnknown, Message: "No health tests recorded"}
	}
	var concern, warning, good bool
	for _, t := range tests {
		if _, ok := concernResults[t.Result]; ok {
			concern = true
		}
		if _, ok := warningResults[t.Result]; ok {
			warning = true
		}
		if _, ok := goodResults[t.Result]; ok {
			good = true
		}
	}
	switch {
	case concern:
		return HealthSummary{Status: HealthConcern, Message: "Some health concerns detected"}
	case warning:
		return HealthSummary{Status: HealthWarning, Message: "Carrier status or minor concerns"}
	case good:
		return HealthSummary{Status: HealthGood, Message: "Good health test results"}
	default:
		return HealthSummary{Status: HealthUnknown, Message: "Health test results unclear"}
	}
}
