// Command vlist replays, benchmarks and browses virtual lists.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/virtuallist/internal/cli"
	"github.com/rshade/virtuallist/pkg/version"
)

// exitExpectationFailed is returned when a simulated scenario missed an expectation.
const exitExpectationFailed = 2

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return exitCode(err)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var expErr *cli.ExpectationError
	if errors.As(err, &expErr) {
		return exitExpectationFailed
	}
	return 1
}
