package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"salescope/internal/models"
)

func TestReadDelimited_Comma(t *testing.T) {
	src := "Sale_Date,Product,Qty,Revenue\n2024-01-01,Widget,2,19.98\n2024-01-02,Gadget,,5"
	ds, err := ReadDelimited(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadDelimited() error = %v", err)
	}
	if len(ds.Columns) != 4 || ds.Columns[0] != "Sale_Date" {
		t.Errorf("Columns = %v", ds.Columns)
	}
	if len(ds.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(ds.Rows))
	}
	if c := ds.Cell(0, 3); c.Kind != models.CellNumber || c.Number != 19.98 {
		t.Errorf("revenue cell = %+v, want number 19.98", c)
	}
	if c := ds.Cell(0, 1); c.Kind != models.CellText || c.Text() != "Widget" {
		t.Errorf("product cell = %+v, want text Widget", c)
	}
	if !ds.Cell(1, 2).IsMissing() {
		t.Errorf("empty qty cell should be missing, got %+v", ds.Cell(1, 2))
	}
}

func TestReadDelimited_DelimiterDetection(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"semicolon", "date;product;amount\n2024-01-01;Widget;10"},
		{"tab", "date\tproduct\tamount\n2024-01-01\tWidget\t10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ReadDelimited(context.Background(), strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("ReadDelimited() error = %v", err)
			}
			if len(ds.Columns) != 3 {
				t.Errorf("Columns = %v, want 3 columns", ds.Columns)
			}
			if c := ds.Cell(0, 2); c.Kind != models.CellNumber || c.Number != 10 {
				t.Errorf("amount cell = %+v, want number 10", c)
			}
		})
	}
}

func TestReadDelimited_ShortRowsPadded(t *testing.T) {
	src := "a,b,c\n1,2\n"
	ds, err := ReadDelimited(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadDelimited() error = %v", err)
	}
	if len(ds.Rows[0]) != 3 {
		t.Fatalf("row width = %d, want 3", len(ds.Rows[0]))
	}
	if !ds.Cell(0, 2).IsMissing() {
		t.Error("padded cell should be missing")
	}
}

func TestReadDelimited_Errors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := ReadDelimited(context.Background(), strings.NewReader("  \n "))
		if !errors.Is(err, ErrEmptyFile) {
			t.Errorf("error = %v, want ErrEmptyFile", err)
		}
	})
	t.Run("blank header", func(t *testing.T) {
		_, err := ReadDelimited(context.Background(), strings.NewReader(",,\n1,2,3"))
		if !errors.Is(err, ErrNoHeader) {
			t.Errorf("error = %v, want ErrNoHeader", err)
		}
	})
}

func TestReadDelimited_ManyRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("date,amount\n")
	for i := 0; i < batchSize*2+17; i++ {
		sb.WriteString("2024-01-01,1\n")
	}
	ds, err := ReadDelimited(context.Background(), strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("ReadDelimited() error = %v", err)
	}
	if len(ds.Rows) != batchSize*2+17 {
		t.Errorf("Rows = %d, want %d", len(ds.Rows), batchSize*2+17)
	}
	for i, row := range ds.Rows {
		if row[1].Kind != models.CellNumber {
			t.Fatalf("row %d not classified", i)
		}
	}
}

func TestSupported(t *testing.T) {
	for _, name := range []string{"a.csv", "b.TSV", "c.xlsx"} {
		if !Supported(name) {
			t.Errorf("Supported(%q) = false", name)
		}
	}
	for _, name := range []string{"a.xls", "b.txt", "c"} {
		if Supported(name) {
			t.Errorf("Supported(%q) = true", name)
		}
	}
}
