// Package main is the entry point for the k8zenv CLI.
//
// k8zenv installs the leveled set of cluster charts (networking, DNS,
// certificates, observability and agents) and drives them through the
// transactional step sequencer shared with environment deployments.
//
// Commands: init, plan, install, destroy.
//
// For detailed usage information, run:
//
//	k8zenv --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/k8zenv/cmd/k8zenv/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
