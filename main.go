package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

const (
	Version = "v1.0.0"
	License = "Apache-2.0"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
