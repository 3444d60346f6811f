// Package importer loads a wordlist spreadsheet into the lexcell database.
//
// Cells are parsed concurrently by a bounded pool of workers. Parsed forms are
// then written by a single writer in sheet order, so ids and de-duplication do
// not depend on scheduling. A cell that fails to parse becomes an Issue of the
// run and never stops the import.
package importer

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/lexcell/cellparser"
	"github.com/teranos/lexcell/db"
	"github.com/teranos/lexcell/errors"
	"github.com/teranos/lexcell/logger"
	"github.com/teranos/lexcell/sheet"
	"github.com/teranos/lexcell/storage"
)

// Stats counts what happened during a run.
type Stats struct {
	Cells          int `json:"cells"`
	IgnoredCells   int `json:"ignored_cells"`
	EmptyCells     int `json:"empty_cells"`
	FailedCells    int `json:"failed_cells"`
	PartialCells   int `json:"partial_cells"`
	FormsCreated   int `json:"forms_created"`
	FormsLinked    int `json:"forms_linked"`
	FormsRejected  int `json:"forms_rejected"`
	SourcesCreated int `json:"sources_created"`
	Warnings       int `json:"warnings"`
}

// Report is the outcome of a run.
type Report struct {
	RunID     string          `json:"run_id"`
	Path      string          `json:"path"`
	Sheet     string          `json:"sheet"`
	Languages int             `json:"languages"`
	Concepts  int             `json:"concepts"`
	Stats     Stats           `json:"stats"`
	Issues    []storage.Issue `json:"issues,omitempty"`
	Duration  time.Duration   `json:"duration"`
}

// Importer runs imports of one configuration into one store.
type Importer struct {
	parser *cellparser.Parser
	store  *storage.Store
	opts   Options
	log    *zap.SugaredLogger
}

// New creates an importer. The parser is shared by all workers.
func New(parser *cellparser.Parser, store *storage.Store, opts Options, log *zap.SugaredLogger) *Importer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Importer{parser: parser, store: store, opts: opts, log: log}
}

// job is one form cell together with the row and language it belongs to.
type job struct {
	cell     sheet.Cell
	language string
	concept  string
}

// run holds the state of one Run call.
type run struct {
	*Importer
	report  *Report
	formIDs *IDSet
	sources map[string]bool
}

// Run imports the workbook. It returns an error only when the workbook cannot
// be read or the database cannot be written; cell problems are in the Report.
func (im *Importer) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	sh, err := sheet.Open(im.opts.Path, im.opts.Sheet)
	if err != nil {
		return nil, err
	}
	langs, entries, err := sh.Split(im.opts.Layout)
	if err != nil {
		return nil, err
	}
	if err := im.store.CheckCompatible(ctx, im.opts.Version); err != nil {
		return nil, err
	}

	existing, err := im.store.FormIDs(ctx)
	if err != nil {
		return nil, err
	}

	r := &run{
		Importer: im,
		report:   &Report{RunID: uuid.NewString(), Path: im.opts.Path, Sheet: sh.Name},
		formIDs:  NewIDSet(existing...),
		sources:  make(map[string]bool),
	}
	log := im.log.With(logger.FieldRunID, r.report.RunID, logger.FieldSheet, sh.Name)

	ledger := &storage.ImportRun{
		ID:        r.report.RunID,
		Path:      im.opts.Path,
		Sheet:     sh.Name,
		Version:   im.opts.Version,
		StartedAt: start,
	}
	if err := im.store.BeginImport(ctx, ledger); err != nil {
		return nil, err
	}
	log.Infow("Import started",
		logger.FieldPath, im.opts.Path,
		"languages", len(langs),
		"concepts", len(entries),
		logger.FieldWorkers, im.opts.Workers)

	jobs, err := r.saveHeaders(ctx, langs, entries)
	if err != nil {
		return nil, err
	}
	r.report.Stats.Cells = len(jobs)

	results, err := im.parseAll(ctx, jobs)
	if err != nil {
		return nil, err
	}

	for i, res := range results {
		if err := r.persist(ctx, jobs[i], res); err != nil {
			if db.IsDatabaseClosed(err) {
				return nil, errors.Wrapf(err, "import %s interrupted at %s", r.report.RunID, jobs[i].cell.Coordinate)
			}
			return nil, errors.Wrapf(err, "import %s failed at %s", r.report.RunID, jobs[i].cell.Coordinate)
		}
	}

	st := r.report.Stats
	ledger.Cells = st.Cells
	ledger.FormsCreated = st.FormsCreated
	ledger.FormsLinked = st.FormsLinked
	ledger.FailedCells = st.FailedCells
	if err := im.store.FinishImport(ctx, ledger, r.report.Issues); err != nil {
		return nil, err
	}

	r.report.Duration = time.Since(start)
	log.Infow("Import finished",
		logger.FieldCount, st.FormsCreated,
		"linked", st.FormsLinked,
		"failed_cells", st.FailedCells,
		"warnings", st.Warnings,
		logger.FieldDurationMS, r.report.Duration.Milliseconds())
	return r.report, nil
}

// saveHeaders stores languages and concepts and lists the form cells to parse.
func (r *run) saveHeaders(ctx context.Context, langs []sheet.Language, entries []sheet.Entry) ([]job, error) {
	langIDs := NewIDSet()
	byCol := make(map[int]string, len(langs))
	for _, l := range langs {
		id := langIDs.Register(l.Name)
		if err := r.store.SaveLanguage(ctx, storage.Language{
			ID:         id,
			Name:       l.Name,
			Curator:    l.Curator,
			HeaderCell: l.Cell,
		}); err != nil {
			return nil, err
		}
		byCol[l.Column] = id
	}
	r.report.Languages = len(langs)

	conceptIDs := NewIDSet()
	var jobs []job
	for _, e := range entries {
		gloss := e.Gloss()
		concept := conceptIDs.Register(gloss)
		if err := r.store.SaveConcept(ctx, storage.Concept{ID: concept, Gloss: gloss}); err != nil {
			return nil, err
		}
		for _, c := range e.Forms {
			jobs = append(jobs, job{cell: c, language: byCol[c.Col], concept: concept})
		}
	}
	r.report.Concepts = len(entries)
	return jobs, nil
}

// parseAll parses every job on the worker pool. A nil result marks an ignored cell.
func (im *Importer) parseAll(ctx context.Context, jobs []job) ([]*cellparser.CellResult, error) {
	results := make([]*cellparser.CellResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.opts.Workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			value := sheet.CleanValue(j.cell.Value)
			if slices.Contains(im.opts.IgnoreValues, value) {
				return nil
			}
			results[i] = im.parser.ParseCell(value, j.language, j.cell.Coordinate)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "parsing cancelled")
	}
	return results, nil
}

// persist writes the forms of one parsed cell and records its diagnostics.
func (r *run) persist(ctx context.Context, j job, res *cellparser.CellResult) error {
	st := &r.report.Stats
	if res == nil {
		st.IgnoredCells++
		return nil
	}

	for _, pe := range res.Warnings {
		r.issue(res, pe)
		st.Warnings++
	}
	for _, pe := range res.Errors {
		r.issue(res, pe)
	}
	st.FormsRejected += len(res.Rejected)

	switch res.Outcome() {
	case cellparser.OutcomeEmpty:
		st.EmptyCells++
		return nil
	case cellparser.OutcomeFailed:
		st.FailedCells++
		return nil
	case cellparser.OutcomePartial:
		st.PartialCells++
	}

	for _, f := range res.Forms {
		if err := r.persistForm(ctx, j, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) persistForm(ctx context.Context, j job, parsed *cellparser.Form) error {
	f := parsed.Clone()
	comment := f.Fields[r.opts.CommentField]
	if r.opts.CellComments && j.cell.Comment != "" {
		comment = joinComment(comment, j.cell.Comment)
		f.Fields[r.opts.CommentField] = comment
	}

	for _, ref := range f.Sources {
		if r.sources[ref.ID] {
			continue
		}
		created, err := r.store.EnsureSource(ctx, storage.Source{ID: ref.ID, LanguageID: f.Language, Genre: storage.GenreMisc})
		if err != nil {
			return err
		}
		r.sources[ref.ID] = true
		if created {
			r.report.Stats.SourcesCreated++
		}
	}

	key := r.matchKey(f)
	if key != "" {
		existing, err := r.store.FindMatchingForm(ctx, f.Language, key)
		switch {
		case err == nil:
			return r.link(ctx, j, existing, comment)
		case !errors.IsNotFoundError(err):
			return err
		}
	}

	rec := &storage.FormRecord{
		ID:       r.formIDs.Register(f.Language + "_" + j.concept),
		Form:     f,
		Comment:  comment,
		MatchKey: key,
		Concepts: []string{j.concept},
	}
	if err := r.store.SaveForm(ctx, rec); err != nil {
		return err
	}
	r.report.Stats.FormsCreated++
	return nil
}

// link attaches the concept of j to a form stored earlier. A comment that is
// not already part of the stored one is merged into it.
func (r *run) link(ctx context.Context, j job, existing *storage.FormRecord, comment string) error {
	if err := r.store.LinkConcept(ctx, existing.ID, j.concept); err != nil {
		return err
	}
	r.report.Stats.FormsLinked++

	if comment == "" || strings.Contains(existing.Comment, comment) {
		return nil
	}
	merged := strings.Trim(strings.TrimSpace(comment+"; "+existing.Comment), "; ")
	r.log.Warnw("Merged comments of repeated form",
		logger.FieldCell, j.cell.Coordinate,
		logger.FieldFormID, existing.ID,
		"first_cell", existing.Form.Cell,
		"comment", merged)
	return r.store.UpdateComment(ctx, existing.ID, r.opts.CommentField, merged)
}

// matchKey joins the match fields of f, or is "" when none of them is set.
func (r *run) matchKey(f *cellparser.Form) string {
	parts := make([]string, len(r.opts.MatchFields))
	set := false
	for i, name := range r.opts.MatchFields {
		parts[i] = strings.TrimSpace(f.Fields[name])
		set = set || parts[i] != ""
	}
	if !set {
		return ""
	}
	return strings.Join(parts, "\x1f")
}

func (r *run) issue(res *cellparser.CellResult, pe *cellparser.ParseError) {
	cell := pe.Coordinate
	if cell == "" {
		cell = res.Coordinate
	}
	r.report.Issues = append(r.report.Issues, storage.Issue{
		Cell:     cell,
		Language: res.Language,
		Kind:     string(pe.Kind),
		Severity: string(pe.Severity),
		Message:  pe.Message,
	})
}

func joinComment(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\t" + b
}
