package core

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/proset/internal/catalog"
)

// Columns is the fixed header of every SKU sheet, in order.
var Columns = []string{"vendor_name", "sku", "sku_type", "sku_status", "old_sku", "report"}

// reportColumn is the index of the report cell in Columns.
const reportColumn = 5

// Row is one flat SKU sheet row. Cells are cleaned text; a cell that was
// missing from the source is "".
type Row struct {
	VendorName string `json:"vendor_name"`
	SKU        string `json:"sku"`
	SKUType    string `json:"sku_type"`
	SKUStatus  string `json:"sku_status"`
	OldSKU     string `json:"old_sku"`
	Report     string `json:"report"`
}

// RowFromRecord maps a record in Columns order onto a Row. Short records
// leave the trailing fields empty; extra cells are ignored.
func RowFromRecord(rec []string) Row {
	cell := func(i int) string {
		if i < len(rec) {
			return CleanCell(rec[i])
		}
		return ""
	}
	return Row{
		VendorName: cell(0),
		SKU:        cell(1),
		SKUType:    cell(2),
		SKUStatus:  cell(3),
		OldSKU:     cell(4),
		Report:     cell(5),
	}
}

// RowFromProduct projects a stored product onto the sheet shape with an
// empty report cell.
func RowFromProduct(p catalog.Product) Row {
	return Row{
		VendorName: p.Vendor.Name,
		SKU:        p.SkuInfo.SKU,
		SKUType:    p.SkuInfo.Type,
		SKUStatus:  p.SkuInfo.Status,
		OldSKU:     p.SkuInfo.OldSKU,
	}
}

// Record returns the row's cells in Columns order.
func (r Row) Record() []string {
	return []string{r.VendorName, r.SKU, r.SKUType, r.SKUStatus, r.OldSKU, r.Report}
}

// Records renders rows as a sheet, header first.
func Records(rows []Row) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, append([]string(nil), Columns...))
	for _, r := range rows {
		out = append(out, r.Record())
	}
	return out
}

// CheckHeader verifies that header names exactly Columns, in order.
// Comparison is case-insensitive on cleaned cells, and blank cells after
// the last column are ignored.
func CheckHeader(header []string) error {
	cells := trimTrailingBlank(header)
	if len(cells) != len(Columns) {
		return fmt.Errorf("%w: got %d columns %q, want %q",
			ErrHeaderMismatch, len(cells), cleanAll(cells), Columns)
	}
	for i, want := range Columns {
		if got := CleanCell(cells[i]); !strings.EqualFold(got, want) {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrHeaderMismatch, i+1, got, want)
		}
	}
	return nil
}

// CleanCell trims whitespace and strips the ="..." wrapper spreadsheet
// exports use to keep codes from being read as numbers.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

func trimTrailingBlank(rec []string) []string {
	n := len(rec)
	for n > 0 && strings.TrimSpace(rec[n-1]) == "" {
		n--
	}
	return rec[:n]
}

func cleanAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, c := range rec {
		out[i] = CleanCell(c)
	}
	return out
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
