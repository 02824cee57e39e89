// =============================================================================
// CSV to XML Converter - Header Validation
// =============================================================================
//
// This module checks a header set before any row is converted. Every header
// is a dot-delimited element path; a bad header would either produce a
// malformed document or make two columns fight over the same element, so
// problems are reported up front and the conversion is refused.
//
// RULES:
//   empty-segment   error    "", "a..b", ".a" and "a." have an empty segment
//   invalid-name    error    a segment (or the root/row tag) is not an XML Name
//   path-conflict   error    one column's path is a strict prefix of another's
//                            ("a" and "a.b"): the shorter one would put text on
//                            a container element
//   duplicate-path  warning  two columns resolve to the same element; the
//                            later column wins
//   reserved-name   warning  a name starts with "xml" in any letter case
//   unencodable-name error   a name has characters the output encoding cannot
//                            represent (only checked when Options.Encodable
//                            is set)
//
// ERROR HANDLING:
//   - Findings are collected, not returned one by one
//   - Each finding carries the 1-based column number and the raw header
//   - Result.Err wraps ErrInvalidHeaders so callers can use errors.Is
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidHeaders is wrapped by every error returned from Result.Err.
var ErrInvalidHeaders = errors.New("invalid headers")

// =============================================================================
// FINDINGS
// =============================================================================

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule names.
const (
	RuleEmptySegment  = "empty-segment"
	RuleInvalidName   = "invalid-name"
	RulePathConflict  = "path-conflict"
	RuleDuplicatePath = "duplicate-path"
	RuleReservedName  = "reserved-name"
	RuleUnencodable   = "unencodable-name"
)

// Finding is a single validation problem.
type Finding struct {
	// Severity is "error" (conversion refused) or "warning" (reported only).
	Severity Severity

	// Rule is the rule that produced the finding.
	Rule string

	// Column is the 1-based column number, or 0 for findings about the root
	// or row tag.
	Column int

	// Header is the raw column header (or the tag for tag-level findings).
	Header string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (f *Finding) Error() string {
	if f.Column == 0 {
		return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(f.Severity)), f.Rule, f.Message)
	}
	return fmt.Sprintf("[%s] %s: column %d %q: %s",
		strings.ToUpper(string(f.Severity)), f.Rule, f.Column, f.Header, f.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains all findings of one validation run.
type Result struct {
	Findings     []*Finding
	ErrorCount   int
	WarningCount int
}

// IsValid reports whether the result holds no errors.
func (r *Result) IsValid() bool {
	return r.ErrorCount == 0
}

// Errors returns only the error-severity findings.
func (r *Result) Errors() []*Finding {
	var out []*Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns only the warning-severity findings.
func (r *Result) Warnings() []*Finding {
	var out []*Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// Err returns nil for a valid result, otherwise an error wrapping
// ErrInvalidHeaders that names the first error.
func (r *Result) Err() error {
	if r.IsValid() {
		return nil
	}
	first := r.Errors()[0]
	if r.ErrorCount == 1 {
		return fmt.Errorf("%w: %s", ErrInvalidHeaders, first.Error())
	}
	return fmt.Errorf("%w: %s (and %d more)", ErrInvalidHeaders, first.Error(), r.ErrorCount-1)
}

func (r *Result) add(f *Finding) {
	r.Findings = append(r.Findings, f)
	if f.Severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Column is one header together with the element path it resolves to once
// the row tag prefix has been stripped.
type Column struct {
	Header string
	Path   []string
}

// Options contains options for validation.
type Options struct {
	// TreatWarningsAsErrors promotes every warning to an error.
	// Default: false
	TreatWarningsAsErrors bool

	// Encodable reports whether a name can be written in the output
	// encoding. Text falls back to character references, element names
	// cannot. Nil skips the check.
	Encodable func(name string) bool
}

// Validator checks header sets.
type Validator struct {
	options Options
}

// New creates a Validator with the given options.
func New(options Options) *Validator {
	return &Validator{options: options}
}

// Validate checks the header set with default options.
func Validate(rootTag, rowTag string, columns []Column) *Result {
	return New(Options{}).Validate(rootTag, rowTag, columns)
}

// Validate checks the root tag, the row tag and every column.
func (v *Validator) Validate(rootTag, rowTag string, columns []Column) *Result {
	result := &Result{}

	v.checkTag(result, "root tag", rootTag)
	v.checkTag(result, "row tag", rowTag)

	// seen maps a joined path to the first column (0-based) that writes it.
	seen := make(map[string]int, len(columns))

	for i, col := range columns {
		if !v.checkSegments(result, i, col) {
			continue
		}

		key := pathKey(col.Path)
		if prev, ok := seen[key]; ok {
			v.report(result, SeverityWarning, RuleDuplicatePath, i+1, col.Header,
				fmt.Sprintf("resolves to the same element as column %d %q; the later value wins",
					prev+1, columns[prev].Header))
			continue
		}
		seen[key] = i
	}

	v.checkConflicts(result, columns, seen)

	return result
}

// checkTag validates the root or row tag.
func (v *Validator) checkTag(result *Result, what, tag string) {
	if !IsXMLName(tag) {
		v.report(result, SeverityError, RuleInvalidName, 0, tag,
			fmt.Sprintf("%s %q is not a valid XML element name", what, tag))
		return
	}
	if !v.encodable(tag) {
		v.report(result, SeverityError, RuleUnencodable, 0, tag,
			fmt.Sprintf("%s %q cannot be written in the output encoding", what, tag))
	}
	if isReserved(tag) {
		v.report(result, SeverityWarning, RuleReservedName, 0, tag,
			fmt.Sprintf("%s %q starts with the reserved prefix \"xml\"", what, tag))
	}
}

// checkSegments reports empty and invalid segments of one column. It returns
// false when the column's path is unusable.
func (v *Validator) checkSegments(result *Result, index int, col Column) bool {
	ok := true
	for _, seg := range col.Path {
		switch {
		case seg == "":
			v.report(result, SeverityError, RuleEmptySegment, index+1, col.Header,
				"header contains an empty path segment")
			return false
		case !IsXMLName(seg):
			v.report(result, SeverityError, RuleInvalidName, index+1, col.Header,
				fmt.Sprintf("segment %q is not a valid XML element name", seg))
			ok = false
		case !v.encodable(seg):
			v.report(result, SeverityError, RuleUnencodable, index+1, col.Header,
				fmt.Sprintf("segment %q cannot be written in the output encoding", seg))
			ok = false
		case isReserved(seg):
			v.report(result, SeverityWarning, RuleReservedName, index+1, col.Header,
				fmt.Sprintf("segment %q starts with the reserved prefix \"xml\"", seg))
		}
	}
	return ok
}

// checkConflicts reports every column whose path runs through an element
// that another column writes text to.
func (v *Validator) checkConflicts(result *Result, columns []Column, seen map[string]int) {
	for i, col := range columns {
		if first, ok := seen[pathKey(col.Path)]; !ok || first != i {
			continue
		}
		for depth := 1; depth < len(col.Path); depth++ {
			prefix, ok := seen[pathKey(col.Path[:depth])]
			if !ok {
				continue
			}
			v.report(result, SeverityError, RulePathConflict, i+1, col.Header,
				fmt.Sprintf("path runs through %q, which column %d %q sets as a value",
					strings.Join(col.Path[:depth], "."), prefix+1, columns[prefix].Header))
			break
		}
	}
}

func (v *Validator) report(result *Result, severity Severity, rule string, column int, header, message string) {
	if severity == SeverityWarning && v.options.TreatWarningsAsErrors {
		severity = SeverityError
	}
	result.add(&Finding{
		Severity: severity,
		Rule:     rule,
		Column:   column,
		Header:   header,
		Message:  message,
	})
}

func (v *Validator) encodable(name string) bool {
	return v.options.Encodable == nil || v.options.Encodable(name)
}

// pathKey joins segments with a byte that cannot appear in an XML name.
func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}

func isReserved(name string) bool {
	return len(name) >= 3 && strings.EqualFold(name[:3], "xml")
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats findings for display or logging.
func FormatErrors(findings []*Finding) string {
	if len(findings) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(findings)))

	for i, f := range findings {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, f.Error()))
	}

	return builder.String()
}
