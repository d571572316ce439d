package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/JonMunkholm/proset/internal/app"
	"github.com/JonMunkholm/proset/internal/core"
	"github.com/JonMunkholm/proset/internal/sheet"
)

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func runExport(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("export", out)
	vendor := fs.String("vendor", "", "vendor name (required)")
	path := fs.String("out", "", "output file, .xlsx or .csv (default <vendor>_skus.xlsx)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *vendor == "" {
		return core.ErrVendorRequired
	}
	if *path == "" {
		*path = *vendor + "_skus.xlsx"
	}
	if _, err := sheet.FormatOf(*path); err != nil {
		return err
	}

	rows, err := a.SKUs.Export(ctx, *vendor)
	if err != nil {
		return err
	}
	if err := sheet.WriteFile(*path, core.Records(rows)); err != nil {
		return err
	}
	fmt.Fprintf(out, "exported %d SKUs for %s to %s\n", len(rows), *vendor, *path)
	return nil
}

// runImport applies a sheet and always writes the report when one was
// produced, including after cancellation.
func runImport(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("import", out)
	in := fs.String("in", "", "sheet to import, .xlsx or .csv (required)")
	reportPath := fs.String("report", "", "report file (default <in>_import_report.<ext>)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("%w: -in is required", errUsage)
	}
	if *reportPath == "" {
		*reportPath = sheet.ReportPath(*in)
	}

	records, err := sheet.ReadFile(*in)
	if err != nil {
		return err
	}

	report, importErr := a.SKUs.Import(ctx, records)
	if report == nil {
		return importErr
	}
	if err := sheet.WriteFile(*reportPath, report.ReportRecords()); err != nil {
		return err
	}

	fmt.Fprintf(out, "imported %d rows from %s (batch %s): %d applied, %d rejected\n",
		len(report.Rows), *in, report.BatchID, report.Applied(), report.Rejected())
	printCounts(out, report.Counts)
	fmt.Fprintf(out, "report written to %s\n", *reportPath)
	return importErr
}

func printCounts(out io.Writer, counts map[core.Outcome]int) {
	keys := make([]string, 0, len(counts))
	for o := range counts {
		keys = append(keys, string(o))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-28s %d\n", k, counts[core.Outcome(k)])
	}
}

// runGenerate mints codes and writes them to a sheet. When generation
// stops early the codes already created are still written.
func runGenerate(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("generate", out)
	vendor := fs.String("vendor", "", "vendor name (required)")
	count := fs.Int("count", 0, "number of SKUs to generate (required)")
	path := fs.String("out", "", "output file, .xlsx or .csv (default <vendor>_generated.xlsx)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *path == "" {
		*path = *vendor + "_generated.xlsx"
	}
	if _, err := sheet.FormatOf(*path); err != nil {
		return err
	}

	products, genErr := a.SKUs.Generate(ctx, *vendor, *count)
	if len(products) == 0 {
		return genErr
	}

	rows := make([]core.Row, len(products))
	for i, p := range products {
		rows[i] = core.RowFromProduct(p)
	}
	if err := sheet.WriteFile(*path, core.Records(rows)); err != nil {
		return err
	}
	fmt.Fprintf(out, "generated %d of %d SKUs for %s to %s\n", len(rows), *count, *vendor, *path)
	return genErr
}

func runVendors(ctx context.Context, a *app.App, out io.Writer) error {
	list, err := a.Vendors.List(ctx)
	if err != nil {
		return err
	}
	names := make([]string, len(list))
	for i, v := range list {
		names[i] = v.Name
	}
	sort.Strings(names)
	if len(names) > 0 {
		fmt.Fprintln(out, strings.Join(names, "\n"))
	}
	return nil
}
