package importer

import (
	"github.com/teranos/lexcell/am"
	"github.com/teranos/lexcell/cellparser"
	"github.com/teranos/lexcell/sheet"
	"github.com/teranos/lexcell/version"
)

// Options controls one import run.
type Options struct {
	Path   string
	Sheet  string
	Layout sheet.Layout
	// Workers bounds the number of cells parsed at once.
	Workers int
	// MatchFields are compared to decide that two forms are the same form.
	MatchFields  []string
	IgnoreValues []string
	CellComments bool
	CommentField string
	// Version is recorded with the run and checked against the dataset.
	Version string
}

// OptionsFromConfig builds run options for the workbook at path.
func OptionsFromConfig(cfg *am.Config, path string) Options {
	comment := cfg.Parser.CommentField
	if comment == "" {
		comment = cellparser.FieldComment
	}
	return Options{
		Path:  path,
		Sheet: cfg.Import.Sheet,
		Layout: sheet.Layout{
			HeaderRows:     cfg.GetHeaderRows(),
			ConceptColumns: cfg.GetConceptColumns(),
		},
		Workers:      cfg.GetWorkers(),
		MatchFields:  append([]string(nil), cfg.Import.MatchFields...),
		IgnoreValues: append([]string(nil), cfg.Import.IgnoreValues...),
		CellComments: cfg.Import.CellComments,
		CommentField: comment,
		Version:      version.Get().Version,
	}
}
