package core

// import.go reconciles an SKU sheet against the product store.
//
// Each data row is validated, mapped to an action by its status cell and
// applied on its own. Nothing spans rows: a failing row is recorded and the
// loop moves on, and a cancelled context stops the loop with every row
// already applied left in place.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/proset/internal/logging"
)

// RowResult is the outcome of one data row. Line is the 1-based line in the
// source sheet, counting the header as line 1.
type RowResult struct {
	Line    int      `json:"line"`
	Row     Row      `json:"row"`
	Record  []string `json:"record"` // cells as read, before cleaning
	Action  string   `json:"action,omitempty"`
	Outcome Outcome  `json:"outcome"`
	Message string   `json:"message"`
}

// ImportReport is the full result of an import, one entry per data row.
type ImportReport struct {
	BatchID   string          `json:"batch_id"`
	Rows      []RowResult     `json:"rows"`
	Counts    map[Outcome]int `json:"counts"`
	Cancelled bool            `json:"cancelled"`
	Duration  time.Duration   `json:"duration_ns"`
}

// ReportRecords renders the report sheet: the header, then every source
// record with its cells as read and the outcome message in the report
// column. Cells are not cleaned, so ="00123" style codes survive a round
// trip through a spreadsheet.
func (r *ImportReport) ReportRecords() [][]string {
	out := make([][]string, 0, len(r.Rows)+1)
	out = append(out, append([]string(nil), Columns...))
	for _, rr := range r.Rows {
		rec := make([]string, max(len(rr.Record), len(Columns)))
		copy(rec, rr.Record)
		rec[reportColumn] = rr.Message
		out = append(out, rec)
	}
	return out
}

// Rejected counts rows refused by validation because of their own content.
func (r *ImportReport) Rejected() int {
	n := 0
	for o, c := range r.Counts {
		if o.IsValidationFailure() {
			n += c
		}
	}
	return n
}

// Applied counts rows that were written or already matched the store.
func (r *ImportReport) Applied() int {
	n := 0
	for o, c := range r.Counts {
		if o.Applied() {
			n += c
		}
	}
	return n
}

func (r *ImportReport) add(line int, rec []string, action string, res result) {
	r.Rows = append(r.Rows, RowResult{
		Line:    line,
		Row:     RowFromRecord(rec),
		Record:  rec,
		Action:  action,
		Outcome: res.outcome,
		Message: res.message,
	})
	r.Counts[res.outcome]++
}

// Import applies a sheet of records, header first. A bad header or an
// oversized sheet fails before any row is touched. On cancellation the
// report is still returned, with unprocessed rows marked cancelled, along
// with the context error.
func (s *Service) Import(ctx context.Context, records [][]string) (*ImportReport, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	if err := CheckHeader(records[0]); err != nil {
		return nil, err
	}
	data := records[1:]
	if len(data) > s.maxRows {
		return nil, fmt.Errorf("%w: %d data rows, limit is %d", ErrTooManyRows, len(data), s.maxRows)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	report := &ImportReport{
		BatchID: uuid.NewString(),
		Rows:    make([]RowResult, 0, len(data)),
		Counts:  make(map[Outcome]int),
	}
	ctx = logging.WithBatchID(ctx, report.BatchID)
	logger := logging.FromContext(ctx)
	logger.Info("import started", "rows", len(data))
	start := time.Now()

	for i, rec := range data {
		line := i + 2
		row := RowFromRecord(rec)

		if ctx.Err() != nil {
			for j := i; j < len(data); j++ {
				report.add(j+2, data[j], "", cancelled())
			}
			report.Cancelled = true
			break
		}

		if isEmptyRecord(rec) {
			report.add(line, rec, "", skipped())
			continue
		}

		action, res := s.reconcile(ctx, row)
		report.add(line, rec, action.String(), res)
		logger.Debug("row processed",
			"line", line,
			"sku", row.SKU,
			"action", action.String(),
			"outcome", res.outcome,
		)
	}

	report.Duration = time.Since(start)
	logger.Info("import finished",
		"rows", len(report.Rows),
		"applied", report.Applied(),
		"cancelled", report.Cancelled,
		"duration_ms", report.Duration.Milliseconds(),
	)

	if report.Cancelled {
		return report, fmt.Errorf("import cancelled after %d of %d rows: %w",
			len(data)-report.Counts[OutcomeCancelled], len(data), ctx.Err())
	}
	return report, nil
}

// reconcile validates one row and applies its action.
func (s *Service) reconcile(ctx context.Context, row Row) (Action, result) {
	action := ActionFor(row.SKUStatus)

	v := s.validator.Validate(ctx, row, action)
	if !v.OK() {
		return action, v.result()
	}
	return action, action.apply(ctx, s.store, v.Product)
}
