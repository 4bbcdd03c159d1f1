package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"voxver/internal/engine"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(engine.ExitCode(err))
	}
}
