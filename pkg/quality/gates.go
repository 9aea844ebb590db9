package quality

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// Gate names, in fixed evaluation order.
const (
	GateSecurity      = "security"
	GateLint          = "lint"
	GateTypeCheck     = "type-check"
	GateAccessibility = "accessibility"
	GateResponsive    = "responsive"
)

// GateOrder is the fixed evaluation order for all gates.
var GateOrder = []string{
	GateSecurity,
	GateLint,
	GateTypeCheck,
	GateAccessibility,
	GateResponsive,
}

// MaxLineLength is the lint threshold for overly long lines.
const MaxLineLength = 120

// Pre-compiled detector patterns.
var (
	reRawHTMLSink    = regexp.MustCompile(`dangerouslySetInnerHTML|\.innerHTML\s*=|v-html\s*=|\[innerHTML\]`)
	reDocumentWrite  = regexp.MustCompile(`document\.write\s*\(`)
	reDynamicEval    = regexp.MustCompile(`\beval\s*\(|new\s+Function\s*\(`)
	reProcessRequire = regexp.MustCompile(`require\s*\(\s*['"](child_process|fs|node:child_process|node:fs)['"]\s*\)`)
	reHrefAttr       = regexp.MustCompile(`(?:href|src)\s*=\s*["']([^"']+)["']`)

	reDebugPrint = regexp.MustCompile(`console\.(log|debug|info|warn)\s*\(`)
	reAnyEscape  = regexp.MustCompile(`:\s*any\b|\bas\s+any\b|<any>`)

	reStatefulHook    = regexp.MustCompile(`\buse(State|Effect|Reducer|Ref|Memo|Callback|Context|LayoutEffect)\s*\(`)
	reMarkup          = regexp.MustCompile(`<[A-Za-z][A-Za-z0-9]*[\s/>]`)
	reClientDirective = regexp.MustCompile(`(?m)^\s*['"]use client['"]`)

	reImgTag           = regexp.MustCompile(`<img\b[^>]*>`)
	reAltAttr          = regexp.MustCompile(`\balt\s*=`)
	reEmptyButton      = regexp.MustCompile(`<button\b[^>]*>\s*(?:<(?:svg|img|span)\b[^>]*/?>\s*(?:</(?:svg|span)>)?\s*)?</button>`)
	reAriaLabel        = regexp.MustCompile(`\baria-label(?:ledby)?\s*=`)
	reTextInput        = regexp.MustCompile(`<input\b[^>]*>`)
	reInputNonText     = regexp.MustCompile(`\btype\s*=\s*["'](hidden|submit|button|checkbox|radio|range|file|color)["']`)
	reLabelTag         = regexp.MustCompile(`<label\b`)
	rePositiveTabIndex = regexp.MustCompile(`\btab[Ii]ndex\s*=\s*(?:\{\s*)?["']?([1-9][0-9]*)`)

	reLayoutUtility = regexp.MustCompile(`class(?:Name)?\s*=\s*["'][^"']*\b(?:flex|grid|columns-\d)\b`)
	reBreakpoint    = regexp.MustCompile(`\b(?:sm|md|lg|xl|2xl):`)
)

// checkSecurity flags raw-HTML injection sinks, document.write, dynamic code
// evaluation, and process/filesystem require patterns. Any finding is a
// correctness/safety defect for this gate.
func checkSecurity(code string) []string {
	var issues []string

	if reRawHTMLSink.MatchString(code) {
		issues = append(issues, "Potential XSS vector detected: raw HTML injection sink")
	}
	if reDocumentWrite.MatchString(code) {
		issues = append(issues, "Potential XSS vector detected: document.write usage")
	}
	if reDynamicEval.MatchString(code) {
		issues = append(issues, "Dynamic code evaluation detected (eval or Function constructor)")
	}
	if reProcessRequire.MatchString(code) {
		issues = append(issues, "Process or filesystem access detected in component code")
	}

	// libinjection catches XSS payloads smuggled through URL attributes that
	// the sink patterns above do not cover (javascript: URLs, encoded
	// handlers).
	for _, match := range reHrefAttr.FindAllStringSubmatch(code, -1) {
		value := match[1]
		if libinjection.IsXSS(value) || strings.HasPrefix(strings.ToLower(strings.TrimSpace(value)), "javascript:") {
			issues = append(issues, fmt.Sprintf("Potential XSS vector detected in URL attribute: %q", value))
		}
	}

	return issues
}

// checkLint flags debug-print statements, untyped escape hatches, and overly
// long lines. All findings are style-level.
func checkLint(code string) []string {
	var issues []string

	if reDebugPrint.MatchString(code) {
		issues = append(issues, "Debug print statement found (console.log or similar)")
	}
	if reAnyEscape.MatchString(code) {
		issues = append(issues, "Untyped escape hatch found (any)")
	}

	for i, line := range strings.Split(code, "\n") {
		if len(line) > MaxLineLength {
			issues = append(issues, fmt.Sprintf("Line %d exceeds %d characters", i+1, MaxLineLength))
		}
	}

	return issues
}

// checkTypeConsistency is a heuristic: code that uses stateful UI hooks
// together with markup must declare the client-execution directive.
func checkTypeConsistency(code string) []string {
	usesHooks := reStatefulHook.MatchString(code)
	hasMarkup := reMarkup.MatchString(code)

	if usesHooks && hasMarkup && !reClientDirective.MatchString(code) {
		return []string{`Component uses stateful hooks with markup but is missing the "use client" directive`}
	}
	return nil
}

// checkAccessibility flags images without alt text, unlabeled icon buttons,
// inputs without an associated label, and positive explicit tab order.
func checkAccessibility(code string) []string {
	var issues []string

	for _, img := range reImgTag.FindAllString(code, -1) {
		if !reAltAttr.MatchString(img) {
			issues = append(issues, "Image without alternative text")
			break
		}
	}

	for _, btn := range reEmptyButton.FindAllString(code, -1) {
		if !reAriaLabel.MatchString(btn) {
			issues = append(issues, "Button with no text content and no accessible label")
			break
		}
	}

	hasLabelElement := reLabelTag.MatchString(code)
	for _, input := range reTextInput.FindAllString(code, -1) {
		if reInputNonText.MatchString(input) {
			continue
		}
		if !reAriaLabel.MatchString(input) && !hasLabelElement {
			issues = append(issues, "Text input with neither an associated label nor an aria-label")
			break
		}
	}

	if rePositiveTabIndex.MatchString(code) {
		issues = append(issues, "Positive explicit tabIndex disrupts natural tab order")
	}

	return issues
}

// checkResponsive flags layout-establishing utility classes that carry no
// responsive breakpoint modifier. Code with no layout utilities is exempt.
func checkResponsive(code string) []string {
	if !reLayoutUtility.MatchString(code) {
		return nil
	}
	if reBreakpoint.MatchString(code) {
		return nil
	}
	return []string{"Layout utilities used without any responsive breakpoint modifier"}
}
