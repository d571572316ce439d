// Package sheet reads and writes SKU sheets as CSV or XLSX.
//
// Sheets are small enough to hold in memory, so readers return every record
// at once. CSV input may come from Excel on Windows: a UTF-8 byte order mark
// is dropped, and bytes that are not valid UTF-8 are decoded as
// Windows-1252. XLSX input is read from its first worksheet.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Format is a sheet file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet written to new XLSX files.
const SheetName = "SKUs"

// ErrUnsupportedFormat is returned for anything other than csv or xlsx.
var ErrUnsupportedFormat = errors.New("unsupported format")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFormat accepts "csv" or "xlsx" in any case, with or without a
// leading dot.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatOf picks the format from a file name's extension.
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Read parses every record from r.
func Read(r io.Reader, f Format) ([][]string, error) {
	switch f {
	case FormatCSV:
		return readCSV(r)
	case FormatXLSX:
		return readXLSX(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Write serializes records to w.
func Write(w io.Writer, f Format, records [][]string) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatXLSX:
		return writeXLSX(w, records)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// ReadFile reads the sheet at path, choosing the format by extension.
func ReadFile(path string) ([][]string, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	defer file.Close()
	return Read(file, f)
}

// WriteFile writes records to path, choosing the format by extension.
func WriteFile(path string, records [][]string) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, f, records); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	return nil
}

// ReportPath is where the import report for path is written:
// "<dir>/<base>_import_report<ext>".
func ReportPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_import_report" + ext
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		data, err = charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("read sheet: decode windows-1252: %w", err)
		}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	return records, nil
}

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	return nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func writeXLSX(w io.Writer, records [][]string) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("write sheet: %w", err)
		}
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		if err := book.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write sheet row %d: %w", i+1, err)
		}
	}
	if _, err := book.WriteTo(w); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	return nil
}
