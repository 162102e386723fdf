package main

import (
	"os"
	"runtime/debug"

	"gov-ix-sol/internal/cli"
	"gov-ix-sol/internal/pkg/logger"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
			logger.Sync()
			os.Exit(2)
		}
	}()

	if err := cli.Execute(); err != nil {
		logger.Errorf("ixtool: %v", err)
		logger.Sync()
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
