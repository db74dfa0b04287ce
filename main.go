package main

import (
	"github.com/hacheraw/hytale-server-manager/cmd"
	"github.com/hacheraw/hytale-server-manager/logger"

	_ "go.uber.org/automaxprocs/maxprocs"
)

func main() {
	logger.InitLogger() // Initialize the logger first
	defer logger.Sync() // Ensure logs are flushed on exit
	cmd.Execute()
}
