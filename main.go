// Package main provides the entry point for the drawing viewer.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"drawing-viewer/internal/cli"
	"drawing-viewer/internal/version"
)

func main() {
	root := cli.NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version.String()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
