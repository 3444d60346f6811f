package sheet

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/teranos/lexcell/errors"
)

// OpenXLSX loads one worksheet of an Excel workbook, including cell notes.
func OpenXLSX(path, name string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open workbook %s", path)
	}
	defer f.Close()

	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.Newf("workbook %s has no worksheets", path)
		}
		name = sheets[0]
	} else if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, errors.WithHintf(
			errors.NewNotFoundError("worksheet %q in %s", name, path),
			"available worksheets: %s", strings.Join(f.GetSheetList(), ", "))
	}

	values, err := f.GetRows(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read worksheet %q", name)
	}

	notes, err := f.GetComments(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read comments of %q", name)
	}
	comments := make(map[string]string, len(notes))
	for _, n := range notes {
		comments[n.Cell] = commentText(n)
	}

	return &Sheet{Name: name, Path: path, Rows: buildRows(values, comments)}, nil
}

// commentText flattens a note to plain text without its "Author:" prefix.
func commentText(c excelize.Comment) string {
	var b strings.Builder
	b.WriteString(c.Text)
	for _, run := range c.Paragraph {
		b.WriteString(run.Text)
	}
	text := strings.TrimSpace(b.String())
	if c.Author != "" {
		text = strings.TrimSpace(strings.TrimPrefix(text, c.Author+":"))
	}
	return strings.Join(strings.Fields(text), " ")
}
