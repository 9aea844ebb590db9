// Package quality implements the static quality gate engine for generated
// component code. Five fixed gates run in order over the source text and
// produce a weighted pass/fail report. The package is pure: no I/O, no
// external services.
package quality

import (
	"time"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/models"
)

// gateSpec binds a gate to its detector, score weight, and the severity its
// failures carry.
type gateSpec struct {
	detect      func(code string) []string
	weight      float64
	failureMode models.Severity
}

// The security gate carries weight 3 so a security failure dominates the
// aggregate score even when every other gate passes. Lint failures are
// cosmetic and never fail the aggregate report.
var gateTable = map[string]gateSpec{
	GateSecurity:      {detect: checkSecurity, weight: 3, failureMode: models.SeverityError},
	GateLint:          {detect: checkLint, weight: 1, failureMode: models.SeverityWarning},
	GateTypeCheck:     {detect: checkTypeConsistency, weight: 1, failureMode: models.SeverityError},
	GateAccessibility: {detect: checkAccessibility, weight: 1, failureMode: models.SeverityError},
	GateResponsive:    {detect: checkResponsive, weight: 1, failureMode: models.SeverityError},
}

// RunGate evaluates a single gate over the given code. Unknown gate names
// produce a passing result with no issues.
func RunGate(gate string, code string) models.QualityGateResult {
	spec, ok := gateTable[gate]
	if !ok {
		return models.QualityGateResult{Gate: gate, Passed: true, Issues: []string{}, Severity: models.SeverityInfo}
	}

	issues := spec.detect(code)
	if issues == nil {
		issues = []string{}
	}

	result := models.QualityGateResult{
		Gate:     gate,
		Passed:   len(issues) == 0,
		Issues:   issues,
		Severity: models.SeverityInfo,
	}
	if !result.Passed {
		result.Severity = spec.failureMode
	}
	return result
}

// RunAllGates evaluates all five gates in fixed order and aggregates them
// into a report. The aggregate passes iff no gate failed with error severity.
func RunAllGates(code string) *models.QualityReport {
	results := make([]models.QualityGateResult, 0, len(GateOrder))
	for _, gate := range GateOrder {
		results = append(results, RunGate(gate, code))
	}

	passed := true
	for _, r := range results {
		if r.Severity == models.SeverityError {
			passed = false
			break
		}
	}

	return &models.QualityReport{
		Results:     results,
		Score:       CalculateQualityScore(results),
		Passed:      passed,
		GeneratedAt: time.Now(),
	}
}

// CalculateQualityScore computes the weighted pass ratio over the given
// results: sum(weight_i * passed_i) / sum(weight_i). An empty result list is
// vacuously clean and scores 1.
func CalculateQualityScore(results []models.QualityGateResult) float64 {
	if len(results) == 0 {
		return 1
	}

	var total, achieved float64
	for _, r := range results {
		weight := 1.0
		if spec, ok := gateTable[r.Gate]; ok {
			weight = spec.weight
		}
		total += weight
		if r.Passed {
			achieved += weight
		}
	}

	if total == 0 {
		return 1
	}
	return achieved / total
}
