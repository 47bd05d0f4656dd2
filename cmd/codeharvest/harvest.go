package main

import (
	"fmt"

	"github.com/fwojciec/codeharvest"
	"github.com/fwojciec/codeharvest/crawl"
)

// Run executes the harvest command.
func (c *HarvestCmd) Run(deps *Dependencies) error {
	progress := func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "[%d/%d] %s\n", e.Completed, e.Total, crawl.TruncateLeft(e.Path, 60))
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "skip %s: %s\n", e.URL, codeharvest.ErrorMessage(e.Error))
		}
	}

	result, err := deps.Harvester.Harvest(deps.Ctx, progress)
	if result != nil {
		fmt.Fprintf(deps.Stdout, "Harvested %d of %d files (%s) into %s\n",
			len(result.Written), result.Total, crawl.FormatBytes(result.Bytes()), deps.Config.Output)
	}
	if err != nil {
		return err
	}

	if n := len(result.Failed); n > 0 {
		return fmt.Errorf("%d of %d targets failed", n, result.Total)
	}
	return nil
}
