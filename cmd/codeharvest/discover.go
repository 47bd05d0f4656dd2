package main

import (
	"fmt"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	d := *deps.Discoverer
	if c.Print {
		d.Store = nil
	}

	targets, err := d.Discover(deps.Ctx, deps.Config.IndexURL)
	if err != nil {
		return err
	}

	if c.Print {
		for _, t := range targets {
			fmt.Fprintf(deps.Stdout, "%s\t%s\n", t.URL, t.File)
		}
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Found %d targets, saved to %s\n", len(targets), deps.Config.Targets)
	return nil
}
