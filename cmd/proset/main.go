// Command proset exports, imports and generates vendor SKU sheets against
// the configured store.
//
//	proset export   -vendor NAME [-out FILE]
//	proset import   -in FILE [-report FILE]
//	proset generate -vendor NAME -count N [-out FILE]
//	proset vendors
//
// Exit status is 0 on success, 1 when a command fails, 2 on a usage error
// and 3 when the input is refused before anything is written (bad header,
// too many rows, unknown vendor, invalid count).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/proset/internal/app"
	"github.com/JonMunkholm/proset/internal/config"
	"github.com/JonMunkholm/proset/internal/core"
	"github.com/JonMunkholm/proset/internal/logging"
)

// errUsage makes main exit with status 2.
var errUsage = errors.New("usage")

// Exit statuses.
const (
	exitFailed   = 1 // the command failed, possibly after writing
	exitUsage    = 2
	exitRejected = 3 // the input was refused before anything was written
)

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return exitUsage
	case core.IsStructural(err):
		return exitRejected
	}
	return exitFailed
}

const usage = `usage: proset <command> [flags]

commands:
  export    write every SKU of a vendor to a sheet
  import    apply a sheet and write the import report next to it
  generate  mint new generated SKUs for a vendor
  vendors   list vendor names
`

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailed)
	}
	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(exitFailed)
	}

	err = run(ctx, a, os.Args[1:], os.Stdout)
	if cerr := a.Close(context.Background()); cerr != nil {
		slog.Warn("close", "error", cerr)
	}

	code := exitCode(err)
	switch code {
	case 0:
		return
	case exitUsage:
		fmt.Fprint(os.Stderr, usage)
	default:
		fmt.Fprintln(os.Stderr, "proset:", core.FormatUserError(err))
		slog.Debug("command failed", "error", err)
	}
	os.Exit(code)
}

// run dispatches args to a subcommand.
func run(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "export":
		return runExport(ctx, a, rest, out)
	case "import":
		return runImport(ctx, a, rest, out)
	case "generate":
		return runGenerate(ctx, a, rest, out)
	case "vendors":
		return runVendors(ctx, a, out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}
