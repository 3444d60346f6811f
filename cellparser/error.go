package cellparser

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/lexcell/errors"
	"github.com/teranos/lexcell/logger"
)

// ErrorContext indicates the environment where diagnostics will be displayed
type ErrorContext string

const (
	// ErrorContextTerminal renders diagnostics with ANSI colors
	ErrorContextTerminal ErrorContext = "terminal"
	// ErrorContextPlain renders diagnostics without ANSI codes (logs, JSON, files)
	ErrorContextPlain ErrorContext = "plain"
)

// ErrorSeverity separates recoverable diagnostics from hard failures
type ErrorSeverity string

const (
	SeverityError   ErrorSeverity = "error"   // the form-description is rejected
	SeverityWarning ErrorSeverity = "warning" // best-effort result was still produced
)

// ErrorKind categorizes diagnostics for programmatic handling
type ErrorKind string

const (
	KindUnrecognizedToken        ErrorKind = "unrecognized_token"
	KindMismatchedDelimiter      ErrorKind = "mismatched_delimiter"
	KindUnexpectedVariant        ErrorKind = "unexpected_variant"
	KindMalformedSource          ErrorKind = "malformed_source"
	KindNoTranscription          ErrorKind = "no_transcription"
	KindSeparatorInTranscription ErrorKind = "separator_in_transcription"
)

// Sentinels behind each kind. Use errors.Is on a *ParseError or a *CellError.
var (
	ErrUnrecognizedToken        = errors.New("unrecognized token")
	ErrMismatchedDelimiter      = errors.New("mismatched delimiter")
	ErrUnexpectedVariant        = errors.New("unexpected variant")
	ErrMalformedSource          = errors.New("malformed source citation")
	ErrNoTranscription          = errors.New("no usable transcription")
	ErrSeparatorInTranscription = errors.New("separator inside transcription")
)

var kindSentinels = map[ErrorKind]error{
	KindUnrecognizedToken:        ErrUnrecognizedToken,
	KindMismatchedDelimiter:      ErrMismatchedDelimiter,
	KindUnexpectedVariant:        ErrUnexpectedVariant,
	KindMalformedSource:          ErrMalformedSource,
	KindNoTranscription:          ErrNoTranscription,
	KindSeparatorInTranscription: ErrSeparatorInTranscription,
}

// ParseError is one diagnostic about a form-description.
type ParseError struct {
	Err         error                  // Sentinel for the kind
	Kind        ErrorKind              // Error category
	Severity    ErrorSeverity          // Warning or hard error
	Message     string                 // Human-readable message
	Coordinate  string                 // Cell the text came from, e.g. "H5"
	Value       string                 // Offending form-description
	Offset      int                    // Byte offset inside Value, -1 if unknown
	Suggestions []string               // Possible fixes
	Context     map[string]interface{} // Additional debug context
}

// NewParseError creates a warning-level ParseError of the given kind.
// Hard failures are raised with WithSeverity(SeverityError).
func NewParseError(kind ErrorKind, message string) *ParseError {
	return &ParseError{
		Err:      kindSentinels[kind],
		Kind:     kind,
		Severity: SeverityWarning,
		Message:  message,
		Offset:   -1,
		Context:  make(map[string]interface{}),
	}
}

// Error implements error interface
func (e *ParseError) Error() string {
	return e.FormatError(ErrorContextPlain)
}

// Unwrap for errors.Is/As compatibility
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsWarning returns true if the diagnostic did not reject the form
func (e *ParseError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// FormatError generates context-appropriate error message
func (e *ParseError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextTerminal {
		return e.formatTerminalError()
	}
	return e.formatPlainError()
}

func (e *ParseError) formatPlainError() string {
	var b strings.Builder
	if e.Coordinate != "" {
		fmt.Fprintf(&b, "%s: ", e.Coordinate)
	}
	b.WriteString(e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " in %q", e.Value)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (at offset %d)", e.Offset)
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, ". Suggestions: %s", strings.Join(e.Suggestions, ", "))
	}
	return b.String()
}

func (e *ParseError) formatTerminalError() string {
	var baseMsg string
	switch e.Severity {
	case SeverityError:
		baseMsg = pterm.Red(e.Message)
	case SeverityWarning:
		baseMsg = pterm.Yellow(e.Message)
	default:
		baseMsg = e.Message
	}

	context := fmt.Sprintf("\n  %s %s", pterm.LightCyan("Kind:"), e.Kind)
	if e.Coordinate != "" {
		context += fmt.Sprintf("\n  %s %s", pterm.LightCyan("Cell:"), e.Coordinate)
	}
	if e.Value != "" {
		context += fmt.Sprintf("\n  %s %q", pterm.LightCyan("Form:"), e.Value)
	}
	if e.Offset >= 0 {
		context += fmt.Sprintf("\n  %s %d", pterm.LightCyan("Offset:"), e.Offset)
	}
	if len(e.Suggestions) > 0 {
		context += fmt.Sprintf("\n  %s", pterm.Green("Suggestions:"))
		for _, s := range e.Suggestions {
			context += fmt.Sprintf("\n    - %s", s)
		}
	}
	return baseMsg + context
}

// WithSeverity sets the error severity
func (e *ParseError) WithSeverity(sev ErrorSeverity) *ParseError {
	e.Severity = sev
	return e
}

// WithCell records where the text came from
func (e *ParseError) WithCell(coordinate, value string) *ParseError {
	e.Coordinate = coordinate
	e.Value = value
	return e
}

// WithOffset sets the byte offset of the problem inside Value
func (e *ParseError) WithOffset(offset int) *ParseError {
	e.Offset = offset
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ParseError) WithSuggestion(suggestion string) *ParseError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithContext adds debug context metadata
func (e *ParseError) WithContext(key string, value interface{}) *ParseError {
	e.Context[key] = value
	return e
}

// logFields flattens the diagnostic for a sugared zap call.
func (e *ParseError) logFields() []interface{} {
	fields := []interface{}{
		logger.FieldKind, string(e.Kind),
		logger.FieldCell, e.Coordinate,
		logger.FieldForm, e.Value,
	}
	if e.Offset >= 0 {
		fields = append(fields, logger.FieldOffset, e.Offset)
	}
	for k, v := range e.Context {
		fields = append(fields, k, v)
	}
	return fields
}

// CellError collects the hard failures of one cell. It is what the
// orchestration layer reports per cell; sibling cells are unaffected.
type CellError struct {
	Coordinate string
	Language   string
	Errors     []*ParseError
}

func (e *CellError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		msgs[i] = pe.Error()
	}
	return fmt.Sprintf("cell %s (%s): %s", e.Coordinate, e.Language, strings.Join(msgs, "; "))
}

// Is lets errors.Is match any of the contained kinds.
func (e *CellError) Is(target error) bool {
	for _, pe := range e.Errors {
		if errors.Is(pe, target) {
			return true
		}
	}
	return false
}

// Unwrap exposes the individual diagnostics.
func (e *CellError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		out[i] = pe
	}
	return out
}
