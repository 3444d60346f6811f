package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/lexcell/am"
	"github.com/teranos/lexcell/cellparser"
	"github.com/teranos/lexcell/errors"
	"github.com/teranos/lexcell/logger"
)

// ParseCmd parses cells given on the command line or on stdin
var ParseCmd = &cobra.Command{
	Use:   "parse [cell text...]",
	Short: "Parse a cell and show the resulting forms",
	Long: `Parse one spreadsheet cell with the configured bracket conventions and show
the forms it contains, followed by any diagnostics.

Without arguments the cell is read from stdin. With --batch every stdin line is
one cell, written as shell words: language, cell text and an optional
coordinate.

Exits with status 1 when any form-description is rejected.

Examples:
  lexcell parse --language aweti '/po/ [pɔ] {2:14}, ~/pu/'
  lexcell parse --format json < cell.txt
  printf 'aweti "/po/, /pu/" C4\n' | lexcell parse --batch`,
	RunE: runParse,
}

var (
	parseLanguage string
	parseCell     string
	parseFormat   string
	parseProfile  string
	parseBatch    bool
)

func init() {
	ParseCmd.Flags().StringVarP(&parseLanguage, "language", "l", "lang", "Language id used for source ids")
	ParseCmd.Flags().StringVar(&parseCell, "cell", "A1", "Coordinate reported in diagnostics")
	ParseCmd.Flags().StringVarP(&parseFormat, "format", "f", "table", "Output format: table, json, yaml")
	ParseCmd.Flags().StringVar(&parseProfile, "profile", "", "Dataset profile (TOML) applied over the configuration")
	ParseCmd.Flags().BoolVar(&parseBatch, "batch", false, "Read one cell per stdin line as shell words: language text [coordinate]")
}

// cellInput is one cell to parse
type cellInput struct {
	language   string
	text       string
	coordinate string
}

// diagnostic is the serializable form of a ParseError
type diagnostic struct {
	Kind        string   `json:"kind" yaml:"kind"`
	Severity    string   `json:"severity" yaml:"severity"`
	Message     string   `json:"message" yaml:"message"`
	Cell        string   `json:"cell,omitempty" yaml:"cell,omitempty"`
	Form        string   `json:"form,omitempty" yaml:"form,omitempty"`
	Offset      int      `json:"offset" yaml:"offset"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// parseOutput is one cell result as printed by --format json|yaml
type parseOutput struct {
	Cell        string             `json:"cell" yaml:"cell"`
	Language    string             `json:"language" yaml:"language"`
	Raw         string             `json:"raw" yaml:"raw"`
	Outcome     cellparser.Outcome `json:"outcome" yaml:"outcome"`
	Forms       []*cellparser.Form `json:"forms,omitempty" yaml:"forms,omitempty"`
	Rejected    []*cellparser.Form `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	Diagnostics []diagnostic       `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	result *cellparser.CellResult
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(parseProfile)
	if err != nil {
		return err
	}
	parser, err := cellparser.NewParser(cfg.ParserConfig(), logger.ComponentLogger("cellparser"))
	if err != nil {
		return errors.Wrap(err, "invalid parser configuration")
	}

	inputs, err := parseInputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	var outputs []parseOutput
	failed := 0
	for _, in := range inputs {
		res := parser.ParseCell(in.text, in.language, in.coordinate)
		if res.Err() != nil {
			failed++
		}
		outputs = append(outputs, toOutput(res))
	}

	out := cmd.OutOrStdout()
	switch parseFormat {
	case "table":
		for i, o := range outputs {
			if i > 0 {
				fmt.Fprintln(out)
			}
			renderCell(out, cfg, o)
		}
	case am.FormatJSON, am.FormatYAML:
		var v interface{} = outputs
		if len(outputs) == 1 && !parseBatch {
			v = outputs[0]
		}
		data, err := am.Marshal(v, parseFormat)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, strings.TrimRight(string(data), "\n"))
	default:
		return errors.Wrapf(errors.ErrUnsupportedFormat, "output format %q (supported: table, json, yaml)", parseFormat)
	}

	if failed > 0 {
		return errors.Newf("%d of %d cells have rejected forms", failed, len(inputs))
	}
	return nil
}

// parseInputs collects the cells to parse from args or stdin
func parseInputs(stdin io.Reader, args []string) ([]cellInput, error) {
	if !parseBatch {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, errors.Wrap(err, "failed to read stdin")
			}
			text = strings.TrimRight(string(data), "\n")
		}
		return []cellInput{{language: parseLanguage, text: text, coordinate: parseCell}}, nil
	}

	var inputs []cellInput
	scanner := bufio.NewScanner(stdin)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		words, err := shellquote.Split(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if len(words) < 2 || len(words) > 3 {
			return nil, errors.WithHint(
				errors.Newf("line %d: expected 2 or 3 words, got %d", line, len(words)),
				`quote the cell text: aweti "/po/, /pu/" C4`)
		}
		in := cellInput{language: words[0], text: words[1], coordinate: fmt.Sprintf("A%d", line)}
		if len(words) == 3 {
			in.coordinate = words[2]
		}
		inputs = append(inputs, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read stdin")
	}
	return inputs, nil
}

func toOutput(res *cellparser.CellResult) parseOutput {
	o := parseOutput{
		Cell:     res.Coordinate,
		Language: res.Language,
		Raw:      res.Raw,
		Outcome:  res.Outcome(),
		Forms:    res.Forms,
		Rejected: res.Rejected,
		result:   res,
	}
	for _, pe := range append(append([]*cellparser.ParseError(nil), res.Errors...), res.Warnings...) {
		o.Diagnostics = append(o.Diagnostics, diagnostic{
			Kind:        string(pe.Kind),
			Severity:    string(pe.Severity),
			Message:     pe.Message,
			Cell:        pe.Coordinate,
			Form:        pe.Value,
			Offset:      pe.Offset,
			Suggestions: pe.Suggestions,
		})
	}
	return o
}

// renderCell prints one result as a table of forms followed by diagnostics
func renderCell(out io.Writer, cfg *am.Config, o parseOutput) {
	res := o.result
	fmt.Fprintf(out, "%s (%s): %s\n", res.Coordinate, res.Language, o.Outcome)

	if len(res.Forms) > 0 {
		var names []string
		for _, f := range cfg.Parser.Fields {
			if f.Name != cfg.Parser.SourceField {
				names = append(names, f.Name)
			}
		}
		header := append([]string{"form"}, names...)
		header = append(header, "sources", "variants")
		data := pterm.TableData{header}
		for _, f := range res.Forms {
			row := []string{f.Value}
			for _, n := range names {
				row = append(row, f.Fields[n])
			}
			row = append(row, formatSources(f.Sources), strings.Join(f.Variants, " "))
			data = append(data, row)
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err == nil {
			fmt.Fprintln(out, table)
		}
	}

	ctx := cellparser.ErrorContextTerminal
	if f, ok := out.(*os.File); !ok || f != os.Stdout || !pterm.PrintColor {
		ctx = cellparser.ErrorContextPlain
	}
	for _, pe := range res.Errors {
		fmt.Fprintln(out, pe.FormatError(ctx))
	}
	for _, pe := range res.Warnings {
		fmt.Fprintln(out, pe.FormatError(ctx))
	}
}

func formatSources(refs []cellparser.Reference) string {
	parts := make([]string, 0, len(refs))
	for _, r := range refs {
		if c := r.ContextString(); c != "" {
			parts = append(parts, r.ID+":"+c)
			continue
		}
		parts = append(parts, r.ID)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
