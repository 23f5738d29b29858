// Command flowcollect folds elements from arguments or a YAML/JSON
// sequence into a single list or string.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/tychoish/flow/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.NewRootCommand().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
