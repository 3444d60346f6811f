package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/lexcell/am"
	"github.com/teranos/lexcell/cellparser"
	"github.com/teranos/lexcell/db"
	"github.com/teranos/lexcell/errors"
	"github.com/teranos/lexcell/importer"
	"github.com/teranos/lexcell/logger"
	"github.com/teranos/lexcell/storage"
)

// ImportCmd imports a wordlist workbook into the database
var ImportCmd = &cobra.Command{
	Use:   "import <workbook>",
	Short: "Import a wordlist workbook into the database",
	Long: `Import a wordlist spreadsheet (.xlsx, .csv or .tsv) into the lexcell database.

Language names are read from the header rows, concepts from the leftmost
columns, and every other non-empty cell is parsed into forms. Cells that fail
to parse are reported by coordinate and do not stop the import.

With --watch the import is repeated whenever the workbook or the
configuration changes, until interrupted.

Examples:
  lexcell import wordlist.xlsx
  lexcell import wordlist.xlsx --sheet Forms --db wordlist.db --workers 8
  lexcell import wordlist.csv --profile cells.toml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importDB      string
	importSheet   string
	importWorkers int
	importProfile string
	importWatch   bool
	importJSON    bool
)

func init() {
	ImportCmd.Flags().StringVar(&importDB, "db", "", "Database path (overrides database.path)")
	ImportCmd.Flags().StringVar(&importSheet, "sheet", "", "Worksheet name (overrides import.sheet)")
	ImportCmd.Flags().IntVarP(&importWorkers, "workers", "w", 0, "Parse workers (overrides import.workers)")
	ImportCmd.Flags().StringVar(&importProfile, "profile", "", "Dataset profile (TOML) applied over the configuration")
	ImportCmd.Flags().BoolVar(&importWatch, "watch", false, "Re-import when the workbook or configuration changes")
	ImportCmd.Flags().BoolVar(&importJSON, "json", false, "Print the import report as JSON")
}

func runImport(cmd *cobra.Command, args []string) error {
	workbook := args[0]

	cfg, err := importConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := importOnce(ctx, cmd.OutOrStdout(), cfg, workbook); err != nil {
		return err
	}
	if !importWatch {
		return nil
	}

	watched := append(am.ConfigFilesInUse(), workbook)
	if importProfile != "" {
		watched = append(watched, importProfile)
	}
	watcher, err := am.NewConfigWatcher(watched...)
	if err != nil {
		return err
	}
	defer watcher.Stop()
	am.SetGlobalWatcher(watcher)

	watcher.SetLoader(func() (*am.Config, error) {
		am.Reset()
		return importConfig(cmd)
	})
	watcher.OnReload(func(cfg *am.Config) error {
		return importOnce(ctx, cmd.OutOrStdout(), cfg, workbook)
	})
	watcher.Start()

	pterm.Info.Printfln("Watching %d files, press Ctrl+C to stop", len(watched))
	<-ctx.Done()
	return nil
}

// importConfig loads the configuration with profile and flag overrides applied
func importConfig(cmd *cobra.Command) (*am.Config, error) {
	cfg, err := loadConfig(importProfile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("db") {
		cfg.Database.Path = importDB
	}
	if cmd.Flags().Changed("sheet") {
		cfg.Import.Sheet = importSheet
	}
	if cmd.Flags().Changed("workers") {
		cfg.Import.Workers = importWorkers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// importOnce runs a single import of workbook with cfg
func importOnce(ctx context.Context, out io.Writer, cfg *am.Config, workbook string) error {
	conn, err := db.OpenWithMigrations(cfg.GetDatabasePath(), logger.ComponentLogger("db"))
	if err != nil {
		return err
	}
	defer conn.Close()

	parser, err := cellparser.NewParser(cfg.ParserConfig(), logger.ComponentLogger("cellparser"))
	if err != nil {
		return errors.Wrap(err, "invalid parser configuration")
	}
	store := storage.NewStore(conn, logger.ComponentLogger("storage"))
	opts := importer.OptionsFromConfig(cfg, workbook)

	var spinner *pterm.SpinnerPrinter
	if !importJSON {
		spinner, _ = pterm.DefaultSpinner.Start(fmt.Sprintf("Importing %s...", workbook))
	}
	report, err := importer.New(parser, store, opts, logger.ComponentLogger("importer")).Run(ctx)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if importJSON {
		data, err := am.Marshal(report, am.FormatJSON)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	printReport(out, report, cfg.GetDatabasePath())
	return nil
}

// maxIssuesShown limits the issues table; the full list is in the database
const maxIssuesShown = 20

func printReport(out io.Writer, report *importer.Report, dbPath string) {
	st := report.Stats
	pterm.Success.Printfln("Imported %s into %s (run %s)", report.Path, dbPath, report.RunID)

	summary := pterm.TableData{
		{"languages", fmt.Sprint(report.Languages)},
		{"concepts", fmt.Sprint(report.Concepts)},
		{"cells", fmt.Sprint(st.Cells)},
		{"forms created", fmt.Sprint(st.FormsCreated)},
		{"forms linked", fmt.Sprint(st.FormsLinked)},
		{"forms rejected", fmt.Sprint(st.FormsRejected)},
		{"sources created", fmt.Sprint(st.SourcesCreated)},
		{"failed cells", fmt.Sprint(st.FailedCells)},
		{"partial cells", fmt.Sprint(st.PartialCells)},
		{"ignored cells", fmt.Sprint(st.IgnoredCells)},
		{"warnings", fmt.Sprint(st.Warnings)},
		{"duration", report.Duration.Round(1e6).String()},
	}
	if table, err := pterm.DefaultTable.WithData(summary).Srender(); err == nil {
		fmt.Fprintln(out, table)
	}

	if len(report.Issues) == 0 {
		return
	}
	data := pterm.TableData{{"cell", "language", "severity", "kind", "message"}}
	for i, is := range report.Issues {
		if i == maxIssuesShown {
			break
		}
		data = append(data, []string{is.Cell, is.Language, is.Severity, is.Kind, is.Message})
	}
	if table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender(); err == nil {
		fmt.Fprintln(out, table)
	}
	if len(report.Issues) > maxIssuesShown {
		pterm.Info.Printfln("%d more issues recorded for run %s", len(report.Issues)-maxIssuesShown, report.RunID)
	}
}
