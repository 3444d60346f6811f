// Package cellparser parses spreadsheet cells of comparative wordlists.
//
// A cell holds zero or more form-descriptions separated by commas or
// semicolons. Each form-description packs transcriptions, comments and source
// citations into one string using bracket conventions:
//
//	/phonemic/ [phonetic] <orthographic> (comment) {source: page}
//
// Which brackets mean what is data (Config), not code. A Parser built from a
// Config is immutable and may be shared by all workers of an import run.
//
// Malformed input never panics. Recoverable problems come back as warning
// ParseErrors and are logged with the cell coordinate; a form-description that
// cannot be used (no transcription, or a separator inside a transcription) is
// rejected in the CellResult without affecting its siblings.
package cellparser
