package errors

import (
	"regexp"
	"strconv"
	"strings"
)

// Diagnostic is one located message extracted from compiler output.
type Diagnostic struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// Sass reports the location of an error on a trailer line after the
// source excerpt, e.g. "    src/govuk/all.scss 12:3  root stylesheet".
var sassLocation = regexp.MustCompile(`^\s*(\S+\.s?[ac]ss)\s+(\d+):(\d+)\s+`)

// Plain "file:line:col: message" diagnostics.
var colonLocation = regexp.MustCompile(`^(\S+?):(\d+):(\d+):\s*(.*)$`)

// ParseDiagnostics extracts located diagnostics from compiler output. The
// first "Error:" line supplies the message for a following sass location
// trailer.
func ParseDiagnostics(output string) []Diagnostic {
	var (
		diagnostics []Diagnostic
		message     string
	)

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "Error:") {
			message = strings.TrimSpace(strings.TrimPrefix(trimmed, "Error:"))
			continue
		}

		if m := sassLocation.FindStringSubmatch(line); m != nil {
			diagnostics = append(diagnostics, Diagnostic{
				File:    m[1],
				Line:    atoi(m[2]),
				Column:  atoi(m[3]),
				Message: message,
			})
			message = ""
			continue
		}

		if m := colonLocation.FindStringSubmatch(trimmed); m != nil {
			diagnostics = append(diagnostics, Diagnostic{
				File:    m[1],
				Line:    atoi(m[2]),
				Column:  atoi(m[3]),
				Message: m[4],
			})
		}
	}

	// An error without a location still has to surface
	if len(diagnostics) == 0 && message != "" {
		diagnostics = append(diagnostics, Diagnostic{Message: message})
	}

	return diagnostics
}

// FromDiagnostics builds a compile error from compiler output, located at
// the first diagnostic when there is one. The raw output is kept verbatim.
func FromDiagnostics(output string, cause error) *BuildError {
	diagnostics := ParseDiagnostics(output)

	be := NewCompileError(strings.TrimSpace(output), cause)
	if len(diagnostics) > 0 {
		d := diagnostics[0]
		if d.Message != "" {
			be.Message = d.Message
		}
		be.WithLocation(d.File, d.Line, d.Column)
		be.WithContext("output", output)
	}

	return be
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
