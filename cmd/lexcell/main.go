package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/lexcell/am"
	"github.com/teranos/lexcell/cmd/lexcell/commands"
	"github.com/teranos/lexcell/errors"
	"github.com/teranos/lexcell/logger"
)

var rootCmd = &cobra.Command{
	Use:   "lexcell",
	Short: "lexcell - linguistic spreadsheet cell parser",
	Long: `lexcell - parse and import linguistic wordlist spreadsheets.

Wordlist cells hold one or more forms written with bracket conventions such as
/phonemic/ [phonetic] <orthographic> (comment) {source}. lexcell splits cells
into forms, reports malformed ones by cell, and imports whole workbooks into a
SQLite database.

Available commands:
  parse   - Parse a single cell and show the resulting forms
  import  - Import a wordlist workbook into the database
  am      - Manage lexcell configuration ("I am")
  version - Show version information

Examples:
  lexcell parse --language aweti '/po/ [pɔ] {2}, ~/pu/'
  lexcell import wordlist.xlsx --db wordlist.db
  lexcell am show --format yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLog, _ := cmd.Flags().GetBool("log-json")
		if !cmd.Flags().Changed("log-json") {
			// a broken config is reported by the command itself
			if cfg, err := am.Load(); err == nil {
				jsonLog = cfg.Log.JSON
			}
		}
		if err := logger.Initialize(jsonLog, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON to stderr")

	rootCmd.AddCommand(commands.ParseCmd)
	rootCmd.AddCommand(commands.ImportCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		pterm.Error.Println(err.Error())
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		os.Exit(1)
	}
}
