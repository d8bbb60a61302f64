// Command simstate saves, restores, and inspects whole-world snapshots of a
// simcore store selected by the SIMCORE_* environment variables.
//
// Usage:
//
//	simstate save <path>   write the current state to a snapshot file
//	simstate load <path>   replace the current state from a snapshot file
//	simstate dump          print the current state as JSON to stdout
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"simcore/internal/core"
	"simcore/internal/infra/persistence/snapshotfile"
	"simcore/internal/observability"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("simstate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	seed := fs.Bool("seed", false, "install the default dataset before running the command")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) < 1 {
		fmt.Fprintln(stderr, "usage: simstate [-seed] save|load|dump [path]")
		return 2
	}

	ctx := context.Background()
	logger := observability.SlogLogger{L: slog.New(slog.NewTextHandler(stderr, nil))}
	store, err := core.OpenStore()
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	if *seed {
		if err := core.Seed(ctx, store); err != nil {
			fmt.Fprintf(stderr, "seed: %v\n", err)
			return 1
		}
	}

	switch rest[0] {
	case "save":
		if len(rest) != 2 {
			fmt.Fprintln(stderr, "usage: simstate save <path>")
			return 2
		}
		if err := snapshotfile.Save(rest[1], store); err != nil {
			fmt.Fprintf(stderr, "save: %v\n", err)
			return 1
		}
		logger.Info("snapshot saved", "path", rest[1])
	case "load":
		if len(rest) != 2 {
			fmt.Fprintln(stderr, "usage: simstate load <path>")
			return 2
		}
		if err := snapshotfile.Load(rest[1], store); err != nil {
			fmt.Fprintf(stderr, "load: %v\n", err)
			return 1
		}
		logger.Info("snapshot loaded", "path", rest[1])
	case "dump":
		data, err := snapshotfile.Marshal(store.ExportState())
		if err != nil {
			fmt.Fprintf(stderr, "dump: %v\n", err)
			return 1
		}
		if _, err := stdout.Write(data); err != nil {
			fmt.Fprintf(stderr, "dump: %v\n", err)
			return 1
		}
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		return 2
	}
	return 0
}
