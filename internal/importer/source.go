package importer

import (
	"bufio"
	"encoding/csv"
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"
)

// Source yields the raw grid of one input file, header row included. Files
// are small enough (hundreds to low thousands of rows) to read whole.
type Source interface {
	Rows() ([][]string, error)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type CSVSource struct {
	r         io.Reader
	delimiter rune
}

func NewCSVSource(r io.Reader, delimiter rune) *CSVSource {
	if delimiter == 0 {
		delimiter = ';'
	}
	return &CSVSource{r: r, delimiter: delimiter}
}

func (s *CSVSource) Rows() ([][]string, error) {
	br := bufio.NewReader(s.r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, errors.Wrap(err, "strip BOM")
		}
	}

	reader := csv.NewReader(br)
	reader.Comma = s.delimiter
	// Distributor exports pad rows unevenly.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	return rows, nil
}

type XLSXSource struct {
	path string
}

func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{path: path}
}

// Rows reads the first sheet. excelize formats native date cells through the
// cell's number format, which the date parser accepts.
func (s *XLSXSource) Rows() ([][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, "read sheet")
	}
	return rows, nil
}
