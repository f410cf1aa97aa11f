// Package main provides the ocm-mapper command line tool.
//
// ocm-mapper checks mapping files against Go packages, describes the mapped
// types, and reads or writes nodes in the configured content store. Programs
// that link their own model types build the same tool with cli.WithTypes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ocm-mapper/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
