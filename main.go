// Package main is the entry point for the repoquality CLI.
package main

import (
	"os"

	"github.com/huangsam/repoquality/cmd"
	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseCaching()

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
	os.Exit(0)
}
