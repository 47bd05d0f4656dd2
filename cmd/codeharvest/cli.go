package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/codeharvest/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *Config

	Discoverer *crawl.Discoverer
	Harvester  *crawl.Harvester
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Globals

	Discover DiscoverCmd `cmd:"" help:"Read the listing page and save the target list"`
	Harvest  HarvestCmd  `cmd:"" help:"Fetch every target and write its code fragment"`
}

// Globals are the flags shared by all commands. Empty values fall back to
// the configuration file, then to built-in defaults.
type Globals struct {
	Config        string        `short:"C" env:"CODEHARVEST_CONFIG" help:"YAML or JSON configuration file"`
	BaseURL       string        `help:"Prefix joined with listing links to form example URLs"`
	IndexURL      string        `help:"Listing page URL (default: <base-url>examples.html)"`
	AllowedDomain string        `help:"Only fetch pages on this host and its subdomains (default: help.autodesk.com)"`
	AnyDomain     bool          `help:"Disable the allowed-domain restriction"`
	Targets       string        `short:"t" help:"Target list file (default: data.json)"`
	Output        string        `short:"o" help:"Directory fragments are written under (default: .)"`
	Timeout       time.Duration `help:"Fetch timeout per page (default: 10s)"`
	Retries       int           `default:"-1" help:"Retries for transient fetch failures (default: 2, at most 10)"`
	UserAgent     string        `help:"User-Agent header for HTTP fetches"`
	Browser       *bool         `short:"b" help:"Render pages in headless Chrome instead of plain HTTP"`
	Verbose       *bool         `short:"v" help:"Log every fetch and write"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	Print bool `short:"p" help:"Print targets instead of saving them"`
}

// HarvestCmd is the "harvest" subcommand.
type HarvestCmd struct {
	FailFast bool `help:"Stop at the first failed target"`
}
