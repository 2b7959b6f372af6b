// Command jrpcrate is the CLI entry point: builds the cobra command tree
// and maps a returned *cliapp.ExitError to the process exit code spec.md
// §6 defines, the same "errors map to os.Exit" shape as the teacher's
// cmd/*/main.go files, generalized from a single exit(1) to the spec's
// 0/2/3/4 scheme.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrpcrate/jrpcrate/internal/cliapp"
	"github.com/jrpcrate/jrpcrate/internal/env"
)

func main() {
	env.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := cliapp.NewRoot()
	root.SetContext(ctx)

	if err := root.Execute(); err != nil {
		var exitErr *cliapp.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "error:", exitErr.Error())
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cliapp.ExitArgError)
	}
}
