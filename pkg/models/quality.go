package models

import "time"

// Severity classifies the impact of a gate's findings. Only error severity
// fails the aggregate report.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// QualityGateResult is the outcome of one static check over generated code.
type QualityGateResult struct {
	Gate     string   `json:"gate"`
	Passed   bool     `json:"passed"`
	Issues   []string `json:"issues"`
	Severity Severity `json:"severity"`
}

// QualityReport aggregates all gate results for a piece of generated code.
// Results are in fixed gate order: security, lint, type-check, accessibility,
// responsive. Passed is true iff no contained result has error severity.
type QualityReport struct {
	Results     []QualityGateResult `json:"results"`
	Score       float64             `json:"score"`
	Passed      bool                `json:"passed"`
	GeneratedAt time.Time           `json:"generated_at"`
}
