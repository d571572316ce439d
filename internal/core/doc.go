// Package core reconciles vendor SKU sheets with the product store.
//
// Nothing here knows about HTTP or files. The web server and the proset
// command both hand it parsed sheet records and get rows or reports back.
//
// # Sheet layout
//
// Every sheet has the six [Columns] in order:
//
//	vendor_name, sku, sku_type, sku_status, old_sku, report
//
// [Service.Export] produces exactly this layout, with old_sku "NA" for
// products that never replaced another, so an exported sheet can be
// re-imported unchanged and every row comes back as no_change.
//
// # Import
//
// [Service.Import] checks the header and row count first. A structural
// problem ([ErrEmptyFile], [ErrHeaderMismatch], [ErrTooManyRows]) fails the
// whole batch before any write. After that each row is handled on its own:
//
//  1. [RowValidator] checks the vendor exists, the sku is present and,
//     for upserts, that type and status are known values.
//  2. [ActionFor] picks upsert, replace or discontinue from sku_status.
//  3. The action runs against the store and yields an [Outcome].
//
// A failed row never stops the rows after it. Every row ends up in the
// [ImportReport] with its outcome and message, in sheet order. If ctx is
// cancelled the remaining rows are reported as cancelled and the report is
// returned together with the context error.
//
// Imports and generation runs take a slot from the [BatchLimiter]. When no
// slot frees up within the wait, the batch is refused with [ErrTooManyBatches].
//
// # Generation
//
// [Service.Generate] mints codes like GEN-7K2Q9A from crypto/rand. Each code
// is checked against all products of all vendors before it is inserted.
//
// # Errors
//
// [MapError] turns any error into a [UserMessage] with an HTTP status and a
// support code (SKU, VAL, FILE, STORE, BATCH, RATE).
package core
