package main

import (
	"os"

	"klondike/internal/cli"
	"klondike/internal/logging"
)

// main is the entry point for the klondikectl CLI binary.
func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
