package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"salescope/internal/models"
)

var candidateDelimiters = []rune{',', ';', '\t'}

// ReadDelimited parses CSV/TSV content. The delimiter is sniffed from the
// header line; the first record is the column header.
func ReadDelimited(ctx context.Context, r io.Reader) (*models.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(firstLine(data))
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := make([]string, len(records[0]))
	empty := true
	for i, c := range records[0] {
		header[i] = strings.TrimSpace(c)
		if header[i] != "" {
			empty = false
		}
	}
	if empty {
		return nil, ErrNoHeader
	}

	rows, err := classifyRows(ctx, records[1:], len(header))
	if err != nil {
		return nil, err
	}
	return &models.Dataset{Columns: header, Rows: rows}, nil
}

// detectDelimiter picks the candidate occurring most often in the header
// line, comma winning ties.
func detectDelimiter(line string) rune {
	best := ','
	bestCount := 0
	for _, d := range candidateDelimiters {
		if n := strings.Count(line, string(d)); n > bestCount {
			best = d
			bestCount = n
		}
	}
	return best
}

func firstLine(data []byte) string {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}
