package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across lexcell.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Spreadsheet position
	FieldCell     = "cell"     // A1-style coordinate, e.g. "H5"
	FieldSheet    = "sheet"    // worksheet name
	FieldLanguage = "language" // language id the cell belongs to
	FieldConcept  = "concept"  // concept id of the row

	// Parsing
	FieldForm    = "form"    // form-description text
	FieldKind    = "kind"    // diagnostic kind
	FieldOffset  = "offset"  // byte offset inside the form-description
	FieldField   = "field"   // field name (phonemic, comment, ...)
	FieldMarker  = "marker"  // variant marker or delimiter
	FieldFormID  = "form_id" // persisted form id
	FieldSource  = "source"  // source id

	// Runs
	FieldRunID      = "run_id"
	FieldComponent  = "component"
	FieldPath       = "path"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldWorkers    = "workers"

	// Errors
	FieldError = "error"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	p, err := cellparser.NewParser(cfg, logger.ComponentLogger("cellparser"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
// Use for sub-operations that need extra context fields.
//
// Example:
//
//	runLogger := logger.ChildLogger(base, logger.FieldRunID, runID)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
