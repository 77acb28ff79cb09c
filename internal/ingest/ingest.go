// Package ingest materializes uploaded sales exports into a Dataset.
// It owns file-format concerns (delimited text and xlsx workbooks) so the
// analysis engine never touches bytes.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"salescope/internal/models"
)

const (
	batchSize  = 2000
	maxWorkers = 8
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file is empty")
	ErrNoHeader          = errors.New("no header row found")
)

// ReadFile parses the file at path into a Dataset, choosing the reader by
// extension (.csv, .tsv, .xlsx).
func ReadFile(ctx context.Context, path string) (*models.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		return ReadDelimited(ctx, f)
	case ".xlsx":
		return ReadWorkbook(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Supported reports whether the filename carries an extension a reader
// exists for.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".xlsx":
		return true
	}
	return false
}

// classifyRows converts raw string records into cell rows, padding each row
// to the header width. Classification runs in batches on a bounded worker
// group; each batch writes to its own slice region so no locking is needed.
func classifyRows(ctx context.Context, records [][]string, width int) ([][]models.Cell, error) {
	out := make([][]models.Cell, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			for i := start; i < end; i++ {
				out[i] = classifyRecord(records[i], width)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func classifyRecord(record []string, width int) []models.Cell {
	row := make([]models.Cell, width)
	for i := range row {
		if i < len(record) {
			row[i] = classifyCell(record[i])
		} else {
			row[i] = models.MissingCell()
		}
	}
	return row
}

// classifyCell maps a raw field onto the Text/Number/Missing variant. The
// original text is always kept so date columns can be reparsed later.
func classifyCell(v string) models.Cell {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return models.MissingCell()
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return models.NumberCell(v, n)
	}
	return models.TextCell(v)
}
