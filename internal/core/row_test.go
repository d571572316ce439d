package core

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/proset/internal/catalog"
)

func TestCheckHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		wantErr bool
	}{
		{"exact", []string{"vendor_name", "sku", "sku_type", "sku_status", "old_sku", "report"}, false},
		{"case and space", []string{" Vendor_Name", "SKU ", "sku_type", "sku_status", "old_sku", "Report"}, false},
		{"trailing blanks", []string{"vendor_name", "sku", "sku_type", "sku_status", "old_sku", "report", "", " "}, false},
		{"excel wrapped", []string{`="vendor_name"`, "sku", "sku_type", "sku_status", "old_sku", "report"}, false},
		{"missing column", []string{"vendor_name", "sku", "sku_type", "sku_status", "old_sku"}, true},
		{"reordered", []string{"sku", "vendor_name", "sku_type", "sku_status", "old_sku", "report"}, true},
		{"renamed", []string{"vendor", "sku", "sku_type", "sku_status", "old_sku", "report"}, true},
		{"extra column", []string{"vendor_name", "sku", "sku_type", "sku_status", "old_sku", "report", "notes"}, true},
		{"empty", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckHeader(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrHeaderMismatch) {
				t.Errorf("error %v does not wrap ErrHeaderMismatch", err)
			}
		})
	}
}

func TestRowFromRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  []string
		want Row
	}{
		{
			name: "full",
			rec:  []string{"Acme", "A-1", "vendor", "current", "A-0", "old note"},
			want: Row{VendorName: "Acme", SKU: "A-1", SKUType: "vendor", SKUStatus: "current", OldSKU: "A-0", Report: "old note"},
		},
		{
			name: "short record",
			rec:  []string{"Acme", "A-1"},
			want: Row{VendorName: "Acme", SKU: "A-1"},
		},
		{
			name: "cleaned cells",
			rec:  []string{"  Acme ", `="00123"`, "vendor", "current", "", ""},
			want: Row{VendorName: "Acme", SKU: "00123", SKUType: "vendor", SKUStatus: "current"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RowFromRecord(tt.rec); got != tt.want {
				t.Errorf("RowFromRecord() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRowFromProduct(t *testing.T) {
	p := catalog.NewProduct("Acme", "A-1", catalog.TypeGenerated, catalog.StatusCurrent, "")
	got := RowFromProduct(p)
	want := Row{VendorName: "Acme", SKU: "A-1", SKUType: "generated", SKUStatus: "current", OldSKU: "NA"}
	if got != want {
		t.Errorf("RowFromProduct() = %+v, want %+v", got, want)
	}
}

func TestRecords(t *testing.T) {
	got := Records([]Row{{VendorName: "Acme", SKU: "A-1", Report: "ok"}})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if err := CheckHeader(got[0]); err != nil {
		t.Errorf("header row: %v", err)
	}
	if got[1][5] != "ok" {
		t.Errorf("report cell = %q, want %q", got[1][5], "ok")
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  plain  ", "plain"},
		{`="GEN-ABC123"`, "GEN-ABC123"},
		{`="`, `="`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
