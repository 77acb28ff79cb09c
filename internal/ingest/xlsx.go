package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"salescope/internal/models"
)

// ReadWorkbook parses the first worksheet of an xlsx file. The format is a
// ZIP of XML parts; only workbook.xml, its relationships, sharedStrings.xml,
// styles.xml and the target sheet are read.
func ReadWorkbook(ctx context.Context, filename string) (*models.Dataset, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()

	sheetPath := firstSheetPath(&zr.Reader)
	sheetXML := zipPart(&zr.Reader, sheetPath)
	if sheetXML == nil {
		return nil, fmt.Errorf("%w: worksheet %s missing", ErrEmptyFile, sheetPath)
	}
	shared := sharedStrings(zipPart(&zr.Reader, "xl/sharedStrings.xml"))
	dateStyles := dateStyleIndexes(zipPart(&zr.Reader, "xl/styles.xml"))

	var records [][]string
	rows := newRowReader(sheetXML, shared, dateStyles)
	for {
		row, ok := rows.next()
		if !ok {
			break
		}
		records = append(records, row)
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

	cells, err := classifyRows(ctx, records[1:], len(header))
	if err != nil {
		return nil, err
	}
	return &models.Dataset{Columns: header, Rows: cells}, nil
}

// firstSheetPath resolves the workbook's first sheet through its
// relationships, falling back to the conventional sheet1.xml.
func firstSheetPath(zr *zip.Reader) string {
	wb := zipPart(zr, "xl/workbook.xml")
	rels := relationships(zipPart(zr, "xl/_rels/workbook.xml.rels"))

	if rid := firstSheetRID(wb); rid != "" {
		if target, ok := rels[rid]; ok {
			target = strings.TrimPrefix(target, "/")
			if !strings.HasPrefix(target, "xl/") {
				target = path.Join("xl", target)
			}
			return target
		}
	}
	return "xl/worksheets/sheet1.xml"
}

func firstSheetRID(wb []byte) string {
	if len(wb) == 0 {
		return ""
	}
	dec := xml.NewDecoder(bytes.NewReader(wb))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "sheet" {
			for _, a := range se.Attr {
				if a.Name.Local == "id" {
					return a.Value
				}
			}
		}
	}
}

func relationships(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var id, target string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "Id":
					id = a.Value
				case "Target":
					target = a.Value
				}
			}
			if id != "" && target != "" {
				out[id] = target
			}
		}
	}
}

func sharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inT := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write([]byte(el))
			}
		}
	}
}

func zipPart(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil
			}
			defer rc.Close()
			b, _ := io.ReadAll(rc)
			return b
		}
	}
	return nil
}

// dateStyleIndexes reads xl/styles.xml and reports which cellXfs entries
// carry a date number format. Numeric cells reference these by their `s`
// attribute; typed Excel dates have no `t` attribute at all.
func dateStyleIndexes(data []byte) map[int]bool {
	out := map[int]bool{}
	if len(data) == 0 {
		return out
	}

	customDates := map[int]bool{}
	var xfFormats []int
	inCellXfs := false

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "numFmt":
				var id int
				var code string
				for _, a := range el.Attr {
					switch a.Name.Local {
					case "numFmtId":
						id, _ = strconv.Atoi(a.Value)
					case "formatCode":
						code = a.Value
					}
				}
				if isDateFormatCode(code) {
					customDates[id] = true
				}
			case "cellXfs":
				inCellXfs = true
			case "xf":
				if !inCellXfs {
					continue
				}
				fmtID := 0
				for _, a := range el.Attr {
					if a.Name.Local == "numFmtId" {
						fmtID, _ = strconv.Atoi(a.Value)
					}
				}
				xfFormats = append(xfFormats, fmtID)
			}
		case xml.EndElement:
			if el.Name.Local == "cellXfs" {
				inCellXfs = false
			}
		}
	}

	for i, id := range xfFormats {
		if builtinDateFormat(id) || customDates[id] {
			out[i] = true
		}
	}
	return out
}

// builtinDateFormat covers the implicit date/time numFmtId ranges of the
// OOXML spec, including the locale-specific ones.
func builtinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode inspects a custom format code for date/time tokens,
// ignoring quoted literals and [] sections (colors, locales).
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range code {
		switch {
		case inQuote:
			if r == '"' {
				inQuote = false
			}
		case inBracket:
			if r == ']' {
				inBracket = false
			}
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		default:
			b.WriteRune(r)
		}
	}
	c := strings.ToLower(b.String())
	return strings.ContainsAny(c, "ydh") || strings.Contains(c, "mm")
}

// excelEpoch is 1899-12-30; starting two days before the nominal epoch
// absorbs Excel's fictitious 1900-02-29 for all modern serials.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

func serialToDate(serial float64) string {
	days := int(serial)
	frac := serial - float64(days)
	t := excelEpoch.AddDate(0, 0, days).Add(time.Duration(frac * 24 * float64(time.Hour)))
	if frac == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// rowReader walks <row> elements of a worksheet, resolving shared-string
// and inline-string cells, converting date-styled serial numbers, and
// honoring sparse cell references (A1 style).
type rowReader struct {
	dec        *xml.Decoder
	shared     []string
	dateStyles map[int]bool
}

func newRowReader(sheetXML []byte, shared []string, dateStyles map[int]bool) *rowReader {
	return &rowReader{
		dec:        xml.NewDecoder(bytes.NewReader(sheetXML)),
		shared:     shared,
		dateStyles: dateStyles,
	}
}

func (r *rowReader) next() ([]string, bool) {
	var row []string
	inRow := false
	width := 0
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "row":
				inRow = true
				row = nil
				width = 0
			case "c":
				if !inRow {
					continue
				}
				var ref, typ string
				styleIdx := -1
				for _, a := range el.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					case "s":
						if n, err := strconv.Atoi(a.Value); err == nil {
							styleIdx = n
						}
					}
				}
				col := columnIndex(ref)
				if col < 0 {
					col = width
				}
				if col >= width {
					width = col + 1
				}
				for len(row) < width {
					row = append(row, "")
				}
				row[col] = r.cellValue(typ, styleIdx)
			}
		case xml.EndElement:
			if el.Name.Local == "row" {
				return row, true
			}
		}
	}
}

// cellValue consumes tokens up to </c>, capturing <v> or inline <is><t>
// content, resolving shared-string indexes, and converting date-styled
// serial numbers to date text.
func (r *rowReader) cellValue(typ string, styleIdx int) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "v" || el.Name.Local == "t" {
				var sb strings.Builder
				for {
					inner, err := r.dec.Token()
					if err != nil {
						break
					}
					if end, ok := inner.(xml.EndElement); ok && (end.Name.Local == "v" || end.Name.Local == "t") {
						break
					}
					if ch, ok := inner.(xml.CharData); ok {
						sb.Write([]byte(ch))
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if el.Name.Local == "c" {
				if typ == "s" {
					idx, err := strconv.Atoi(val)
					if err != nil || idx < 0 || idx >= len(r.shared) {
						return ""
					}
					return r.shared[idx]
				}
				if (typ == "" || typ == "n") && r.dateStyles[styleIdx] {
					if serial, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
						return serialToDate(serial)
					}
				}
				return val
			}
		}
	}
}

// columnIndex converts an A1-style reference to a zero-based column, -1
// when the reference is absent.
func columnIndex(ref string) int {
	i := 0
	for i < len(ref) {
		c := ref[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			i++
			continue
		}
		break
	}
	if i == 0 {
		return -1
	}
	idx := 0
	for _, c := range strings.ToUpper(ref[:i]) {
		idx = idx*26 + int(c-'A'+1)
	}
	return idx - 1
}
