package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/psrun/internal/cli"
	"github.com/temirov/psrun/internal/utils"
)

// main is the entry point for the psrun command.
func main() {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(level)
	if loggerInitializationError != nil {
		fmt.Fprintf(os.Stderr, utils.LoggerInitializationFailedMessageFormat, loggerInitializationError)
		os.Exit(1)
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(context.Background(), loggerInstance, level); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage, zap.Error(applicationExecutionError))
	}
}
