// Command settleup computes settlement plans and spending reports for
// expense-sharing groups.
//
// Usage:
//
//	settleup [flags] groups
//	settleup [flags] plan <group-id> [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-category NAME]
//	settleup [flags] balance <group-id> <user-id>
//	settleup [flags] analytics <group-id> monthly [-year N] [-month N]
//	settleup [flags] analytics <group-id> category [-from YYYY-MM-DD] [-to YYYY-MM-DD]
//	settleup [flags] import <snapshot.json>
//
// Results are written to stdout as JSON; logs go to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		slog.Error("settleup failed", "error", err)
		os.Exit(1)
	}
}
