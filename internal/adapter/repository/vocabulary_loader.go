package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sabucaps/brazilian/internal/entity"
)

// Spreadsheet formats LoadVocabulary understands.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// exampleSeparator splits several examples kept in one cell.
const exampleSeparator = "|"

// LoadOptions tunes how a spreadsheet is read.
type LoadOptions struct {
	// SheetName selects the worksheet of an xlsx file; the first sheet is
	// used when empty.
	SheetName string
}

// LoadVocabularyFile reads a catalog from a .csv or .xlsx file.
func LoadVocabularyFile(path string, opts LoadOptions) ([]entity.VocabularyItem, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open vocabulary file: %w", err)
	}
	defer file.Close()

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return LoadVocabulary(file, format, opts)
}

// LoadVocabulary reads a catalog whose first row is a header naming the
// columns id, term, translation, group, examples and media. Only term and
// translation are required; a missing id is derived from the term. Rows
// keep their file order.
func LoadVocabulary(r io.Reader, format string, opts LoadOptions) ([]entity.VocabularyItem, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(format) {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r, opts.SheetName)
	default:
		return nil, fmt.Errorf("unsupported vocabulary format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return parseVocabularyRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func parseVocabularyRows(rows [][]string) ([]entity.VocabularyItem, error) {
	if len(rows) == 0 {
		return nil, errors.New("vocabulary file is empty")
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"term", "translation"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("vocabulary header is missing column %q", required)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	items := make([]entity.VocabularyItem, 0, len(rows)-1)
	seen := make(map[string]int, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		item := entity.VocabularyItem{
			ID:          cell(row, "id"),
			Term:        cell(row, "term"),
			Translation: cell(row, "translation"),
			Group:       cell(row, "group"),
			Media:       cell(row, "media"),
		}
		if item.Term == "" && item.Translation == "" {
			continue
		}
		if raw := cell(row, "examples"); raw != "" {
			item.Examples = strings.Split(raw, exampleSeparator)
		}
		if item.ID == "" {
			item.ID = slugify(item.Term)
		}
		item.Normalize()
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if first, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("row %d: %w: id %q already used on row %d", line, entity.ErrDuplicateWord, item.ID, first)
		}
		seen[item.ID] = line
		items = append(items, item)
	}
	return items, nil
}

func slugify(term string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(term)) {
		switch {
		case r == ' ' || r == '-' || r == '_' || r == '/':
			if b.Len() > 0 && !dash {
				b.WriteRune('-')
				dash = true
			}
		default:
			b.WriteRune(r)
			dash = false
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
