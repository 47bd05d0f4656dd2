package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/codeharvest"
	"github.com/fwojciec/codeharvest/crawl"
	"github.com/fwojciec/codeharvest/fs"
	"github.com/fwojciec/codeharvest/goquery"
	harvesthttp "github.com/fwojciec/codeharvest/http"
	"github.com/fwojciec/codeharvest/rod"
	harvestslog "github.com/fwojciec/codeharvest/slog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Fetcher replaces the fetcher built from flags when set.
	// The caller keeps ownership and must close it.
	Fetcher codeharvest.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("codeharvest"),
		kong.Description("Harvest code examples from a documentation site into local files"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'codeharvest --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	var fc FileConfig
	if cli.Config != "" {
		fc, err = LoadConfigFile(cli.Config)
		if err != nil {
			return fmt.Errorf("failed to load config %q: %w", cli.Config, err)
		}
	}

	cfg := ResolveConfig(&cli.Globals, fc)
	logger := NewLogger(stderr, cfg.Verbose)
	deps.Config = cfg
	deps.Logger = logger

	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher, err = newFetcher(cfg, logger)
		if err != nil {
			return err
		}
		defer fetcher.Close()
	}
	fetcher = harvestslog.NewLoggingFetcher(fetcher, logger)

	store := fs.NewTargetStore(cfg.Targets)

	deps.Discoverer = &crawl.Discoverer{
		Fetcher: fetcher,
		Index: &goquery.IndexExtractor{
			BaseURL:  cfg.BaseURL,
			Selector: cfg.IndexSelector,
		},
		Store:         store,
		AllowedDomain: cfg.AllowedDomain,
		Logger:        logger,
	}

	deps.Harvester = &crawl.Harvester{
		Fetcher: fetcher,
		Extractor: &goquery.FragmentExtractor{
			ContainerSelector: cfg.ContainerSelector,
			LineSelector:      cfg.LineSelector,
		},
		Writer:        harvestslog.NewLoggingFragmentWriter(fs.NewWriter(cfg.Output), logger),
		Store:         store,
		AllowedDomain: cfg.AllowedDomain,
		FailFast:      cli.Harvest.FailFast,
		Logger:        logger,
	}

	return kongCtx.Run(deps)
}

// newFetcher builds the page fetcher selected by cfg, wrapped with retries
// when enabled.
func newFetcher(cfg *Config, logger *slog.Logger) (codeharvest.Fetcher, error) {
	var fetcher codeharvest.Fetcher
	if cfg.Browser {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(cfg.Timeout))
		if err != nil {
			logger.Error("Hint: Chrome or Chromium must be installed for --browser")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	} else {
		fetcher = harvesthttp.NewFetcher(
			harvesthttp.WithTimeout(cfg.Timeout),
			harvesthttp.WithUserAgent(cfg.UserAgent),
		)
	}

	if cfg.Retries > 0 {
		retry := harvesthttp.NewRetryFetcher(fetcher)
		retry.Delays = RetryDelays(cfg.Retries)
		retry.Logger = logger
		return retry, nil
	}
	return fetcher, nil
}

// maxRetryDelay caps the exponential backoff.
const maxRetryDelay = time.Minute

// RetryDelays returns n exponential backoff delays starting at one second
// and capped at one minute.
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, n)
	delay := time.Second
	for i := range delays {
		delays[i] = delay
		delay = min(delay*2, maxRetryDelay)
	}
	return delays
}
