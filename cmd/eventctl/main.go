// Package main is eventctl, a command-line client that works on the same
// event slot as the API server, without the server running.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		slog.Error("eventctl failed", "error", err)
		os.Exit(1)
	}
}
