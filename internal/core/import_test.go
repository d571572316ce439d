package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proset/internal/catalog"
)

func outcomes(r *ImportReport) []Outcome {
	out := make([]Outcome, len(r.Rows))
	for i, rr := range r.Rows {
		out[i] = rr.Outcome
	}
	return out
}

func TestImport_CreateThenNoChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "Acme")
	records := sheet([]string{"Acme", "A-1", "vendor", "current", "", ""})

	report, err := f.svc.Import(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, []Outcome{OutcomeCreated}, outcomes(report))
	assert.Equal(t, "Inserted new product", report.Rows[0].Message)
	assert.Equal(t, 2, report.Rows[0].Line)
	assert.NotEmpty(t, report.BatchID)

	got, found := f.product(t, "Acme", "A-1")
	require.True(t, found)
	assert.Equal(t, catalog.SkuInfo{SKU: "A-1", Type: "vendor", Status: "current", OldSKU: catalog.NA}, got.SkuInfo)

	report, err = f.svc.Import(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, []Outcome{OutcomeNoChange}, outcomes(report))
	assert.Equal(t, "No changes made", report.Rows[0].Message)
	assert.Equal(t, 1, f.productCount())
}

func TestImport_Updated(t *testing.T) {
	f := newFixture(t, "Acme")
	f.seed(t, catalog.NewProduct("Acme", "A-1", catalog.TypeVendor, catalog.StatusCurrent, ""))

	report, err := f.svc.Import(context.Background(),
		sheet([]string{"Acme", "A-1", "generated", "current", "Z-9", ""}))
	require.NoError(t, err)
	assert.Equal(t, []Outcome{OutcomeUpdated}, outcomes(report))

	got, _ := f.product(t, "Acme", "A-1")
	assert.Equal(t, catalog.TypeGenerated, got.SkuInfo.Type)
	assert.Equal(t, "Z-9", got.SkuInfo.OldSKU)
}

func TestImport_UpsertKeepsSizes(t *testing.T) {
	f := newFixture(t, "Acme")
	p := catalog.NewProduct("Acme", "A-1", catalog.TypeVendor, catalog.StatusCurrent, "")
	p.Sizes = &catalog.Sizes{Dimensions: []catalog.Dimension{{Name: "height", Unit: "ft", Exact: catalog.Unknown()}}}
	f.seed(t, p)

	_, err := f.svc.Import(context.Background(),
		sheet([]string{"Acme", "A-1", "generated", "current", "", ""}))
	require.NoError(t, err)

	got, _ := f.product(t, "Acme", "A-1")
	assert.Equal(t, p.Sizes, got.Sizes)
}

func TestImport_ReplaceAndDiscontinue(t *testing.T) {
	f := newFixture(t, "Acme")
	f.seed(t,
		catalog.NewProduct("Acme", "OLD", catalog.TypeVendor, catalog.StatusCurrent, ""),
		catalog.NewProduct("Acme", "GONE", catalog.TypeVendor, catalog.StatusCurrent, ""),
	)

	report, err := f.svc.Import(context.Background(), sheet(
		[]string{"Acme", "NEW", "vendor", "Replace", "OLD", ""},
		[]string{"Acme", "GONE", "", "discontinued", "", ""},
		[]string{"Acme", "NEW2", "vendor", "replace", "MISSING", ""},
		[]string{"Acme", "NOPE", "", "discontinued", "", ""},
	))
	require.NoError(t, err)
	assert.Equal(t, []Outcome{
		OutcomeReplaced,
		OutcomeDiscontinued,
		OutcomeReplaceTargetNotFound,
		OutcomeDiscontinueTargetNotFound,
	}, outcomes(report))
	assert.Equal(t, "replace", report.Rows[0].Action)
	assert.Equal(t, "discontinue", report.Rows[1].Action)

	got, found := f.product(t, "Acme", "NEW")
	require.True(t, found)
	assert.Equal(t, "OLD", got.SkuInfo.OldSKU)
	assert.Equal(t, catalog.StatusCurrent, got.SkuInfo.Status)

	got, _ = f.product(t, "Acme", "GONE")
	assert.Equal(t, catalog.StatusDiscontinued, got.SkuInfo.Status)

	assert.Equal(t, 2, f.productCount(), "imports never create on replace or discontinue misses")
}

func TestImport_ValidationFailuresDoNotWrite(t *testing.T) {
	f := newFixture(t, "Acme")

	report, err := f.svc.Import(context.Background(), sheet(
		[]string{"Globex", "G-1", "vendor", "current", "", ""},
		[]string{"Acme", "", "vendor", "current", "", ""},
		[]string{"Acme", "A-1", "house", "current", "", ""},
		[]string{"Acme", "A-2", "vendor", "current", "", ""},
	))
	require.NoError(t, err)
	assert.Equal(t, []Outcome{
		OutcomeUnknownVendor,
		OutcomeMissingSKU,
		OutcomeInvalidEnum,
		OutcomeCreated,
	}, outcomes(report))
	assert.Contains(t, report.Rows[0].Message, "Validation error: ")
	assert.Equal(t, 1, f.productCount())
	assert.Equal(t, 1, report.Applied())
}

func TestImport_SkipsBlankRows(t *testing.T) {
	f := newFixture(t, "Acme")
	report, err := f.svc.Import(context.Background(), sheet(
		[]string{"", "", "", "", "", ""},
		[]string{"Acme", "A-1", "vendor", "current", "", ""},
		[]string{" "},
	))
	require.NoError(t, err)
	assert.Equal(t, []Outcome{OutcomeSkipped, OutcomeCreated, OutcomeSkipped}, outcomes(report))
	assert.Equal(t, 2, report.Counts[OutcomeSkipped])
}

func TestImport_StructuralErrors(t *testing.T) {
	row := []string{"Acme", "A-1", "vendor", "current", "", ""}

	tests := []struct {
		name    string
		maxRows int
		records [][]string
		wantErr error
	}{
		{"empty", 0, nil, ErrEmptyFile},
		{"bad header", 0, [][]string{{"vendor", "sku"}, row}, ErrHeaderMismatch},
		{"too many rows", 2, sheet(row, row, row), ErrTooManyRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtureWith(t, Options{MaxRows: tt.maxRows}, "Acme")
			report, err := f.svc.Import(context.Background(), tt.records)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsStructural(err))
			assert.Nil(t, report)
			assert.Equal(t, 0, f.productCount())
		})
	}
}

func TestImport_StoreErrorIsPerRow(t *testing.T) {
	f := newFixture(t, "Acme")
	upserts := 0
	f.store.FailOn = func(op, collection string) error {
		if op == "upsert" {
			upserts++
			if upserts == 1 {
				return errors.New("write conflict")
			}
		}
		return nil
	}

	report, err := f.svc.Import(context.Background(), sheet(
		[]string{"Acme", "A-1", "vendor", "current", "", ""},
		[]string{"Acme", "A-2", "vendor", "current", "", ""},
	))
	require.NoError(t, err)
	assert.Equal(t, []Outcome{OutcomeStoreError, OutcomeCreated}, outcomes(report))
	assert.Equal(t, "Unexpected error: write conflict", report.Rows[0].Message)
}

func TestImport_CancelKeepsProcessedRows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixture(t, "Acme")
	upserts := 0
	f.store.FailOn = func(op, collection string) error {
		if op == "upsert" {
			upserts++
			if upserts == 2 {
				cancel()
			}
		}
		return nil
	}

	report, err := f.svc.Import(ctx, sheet(
		[]string{"Acme", "A-1", "vendor", "current", "", ""},
		[]string{"Acme", "A-2", "vendor", "current", "", ""},
		[]string{"Acme", "A-3", "vendor", "current", "", ""},
		[]string{"Acme", "A-4", "vendor", "current", "", ""},
	))
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.True(t, report.Cancelled)
	assert.Equal(t, []Outcome{OutcomeCreated, OutcomeCreated, OutcomeCancelled, OutcomeCancelled}, outcomes(report))

	f.store.FailOn = nil
	assert.Equal(t, 2, f.productCount())
	_, found := f.product(t, "Acme", "A-2")
	assert.True(t, found)
}

func TestImport_BusyLimiter(t *testing.T) {
	limiter := NewBatchLimiter(1, 10*time.Millisecond)
	f := newFixtureWith(t, Options{Limiter: limiter}, "Acme")

	require.NoError(t, limiter.Acquire(context.Background()))
	defer limiter.Release()

	_, err := f.svc.Import(context.Background(), sheet([]string{"Acme", "A-1", "vendor", "current", "", ""}))
	assert.ErrorIs(t, err, ErrTooManyBatches)
	assert.Equal(t, 0, f.productCount())
}

func TestImport_ExportRoundTripIsNoChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "Acme", "Globex")
	f.seed(t,
		catalog.NewProduct("Acme", "A-1", catalog.TypeVendor, catalog.StatusCurrent, ""),
		catalog.NewProduct("Acme", "A-2", catalog.TypeGenerated, catalog.StatusDiscontinued, "A-0"),
		catalog.NewProduct("Acme", "A-3", catalog.TypeVendor, catalog.StatusCurrent, "A-9"),
		catalog.NewProduct("Globex", "G-1", catalog.TypeVendor, catalog.StatusCurrent, ""),
	)

	rows, err := f.svc.Export(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	report, err := f.svc.Import(ctx, Records(rows))
	require.NoError(t, err)
	for _, rr := range report.Rows {
		assert.Equal(t, OutcomeNoChange, rr.Outcome, "line %d: %s", rr.Line, rr.Message)
	}
	assert.Equal(t, 4, f.productCount())
}

func TestImportReport_ReportRecords(t *testing.T) {
	f := newFixture(t, "Acme")
	report, err := f.svc.Import(context.Background(), sheet(
		[]string{"Acme", `="00123"`, "vendor", "current", "", "stale note"},
		[]string{"Nobody", "B-1", "vendor", "current"},
		[]string{"", "", "", "", "", ""},
	))
	require.NoError(t, err)

	got, found := f.product(t, "Acme", "00123")
	require.True(t, found, "cells are cleaned before reconciling")
	assert.Equal(t, "00123", got.SkuInfo.SKU)

	records := report.ReportRecords()
	require.Len(t, records, 4)
	assert.Equal(t, 1, report.Rejected())
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{"Acme", `="00123"`, "vendor", "current", "", "Inserted new product"}, records[1],
		"report keeps the cells as read")
	assert.Equal(t, []string{"Nobody", "B-1", "vendor", "current", "", `Validation error: unknown vendor "Nobody"`}, records[2],
		"short records are padded")
	assert.Equal(t, "Skipped empty row", records[3][5])
}
