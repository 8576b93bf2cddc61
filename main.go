// main is the entry point of the sqlscope CLI.
package main

import (
	"github.com/huangsam/sqlscope/cmd"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseStores()

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
