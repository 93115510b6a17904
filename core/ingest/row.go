package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// Row is one parsed CSV record keyed by header name. A nil value means the
// cell was absent (ragged row); a present value is the raw cell text,
// uninterpreted. Mappers resolve nil/missing through Get so the default-fill
// policy is a total function.
type Row map[string]*string

// Get returns the trimmed cell value for col, or fallback when the column is
// missing, the cell absent, or the value blank.
func (r Row) Get(col, fallback string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return fallback
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return fallback
	}
	return s
}

// Field returns the raw cell text without default substitution; ok is false
// when the column is missing or the cell absent.
func (r Row) Field(col string) (string, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

var ErrMissingHeader = errors.New("csv: missing header row")

// ParseCSV reads comma-separated data with a required header row. Column
// order carries no meaning, unexpected extra columns are kept (and ignored
// by mappers), and short records leave trailing columns absent rather than
// failing.
func ParseCSV(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	stripBOM(br)
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(record) {
				v := record[i]
				row[name] = &v
			} else {
				row[name] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func stripBOM(br *bufio.Reader) {
	b, err := br.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
}
