// Package main is the entry point for the reel application.
package main

import (
	"github.com/reelplay/reel/cmd"
	"github.com/reelplay/reel/config"
	"github.com/reelplay/reel/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
