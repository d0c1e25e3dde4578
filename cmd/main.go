// Package main is the entry point for the application
package main

import (
	"context"
	"os"

	"vulnguardian/internal/cli"
	"vulnguardian/pkg/logger"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		logger.NewWithOptions(logger.WithStderr()).Error("Command failed", "error", err)
		os.Exit(1)
	}
}
