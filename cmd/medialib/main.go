package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run(context.Background()))
}

// run executes the command tree and maps its error to an exit code. Errors
// are printed once here since the root command silences cobra's own output.
func run(ctx context.Context) int {
	err := newRootCommand().ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		fmt.Fprintf(os.Stderr, "medialib: %v\n", err)
		return 1
	}
}
