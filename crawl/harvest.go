package crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/codeharvest"
)

// Harvester runs the harvest pass.
type Harvester struct {
	Fetcher   codeharvest.Fetcher
	Extractor codeharvest.FragmentExtractor
	Writer    codeharvest.FragmentWriter
	Store     codeharvest.TargetStore

	// AllowedDomain skips targets outside one host and its subdomains.
	// Empty disables the check.
	AllowedDomain string

	// FailFast stops the run at the first failed target. By default the
	// failure is recorded and the remaining targets are still processed.
	FailFast bool

	Logger *slog.Logger
}

// Result holds the outcome of a harvest.
type Result struct {
	Total   int
	Written []*WrittenFile
	Failed  []*TargetError
}

// Bytes returns the total size of all written files.
func (r *Result) Bytes() int {
	var n int
	for _, w := range r.Written {
		n += w.Bytes
	}
	return n
}

// WrittenFile describes one fragment written to disk.
type WrittenFile struct {
	URL   string
	Path  string
	Bytes int
	Hash  string
}

// TargetError records why a target was not written.
type TargetError struct {
	Target *codeharvest.Target
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s: %v", e.Target.URL, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// ProgressEvent reports progress during a harvest.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Path      string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting harvest progress.
type ProgressFunc func(event ProgressEvent)

// Harvest loads the stored targets and harvests them.
func (h *Harvester) Harvest(ctx context.Context, progress ProgressFunc) (*Result, error) {
	if h.Store == nil {
		return nil, codeharvest.Errorf(codeharvest.EINVALID, "target store required")
	}
	targets, err := h.Store.LoadTargets(ctx)
	if err != nil {
		return nil, err
	}
	return h.HarvestTargets(ctx, targets, progress)
}

// HarvestTargets fetches, extracts and writes each target in order. Targets
// sharing a URL are merged first, the last file winning.
//
// A failed target is recorded in the result and, unless FailFast is set,
// the run moves on to the next one. The returned error is non-nil only when
// the run was cut short, by FailFast or by ctx; the partial result is
// returned alongside it.
func (h *Harvester) HarvestTargets(ctx context.Context, targets []*codeharvest.Target, progress ProgressFunc) (*Result, error) {
	logger := loggerOrDiscard(h.Logger)
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	targets = MergeListed(targets, logger)
	result := &Result{Total: len(targets)}

	progress(ProgressEvent{Type: ProgressStarted, Total: result.Total})

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		written, err := h.harvestOne(ctx, target)
		event := ProgressEvent{
			Completed: i + 1,
			Total:     result.Total,
			URL:       target.URL,
			Path:      target.File,
		}

		if err != nil {
			targetErr := &TargetError{Target: target, Err: err}
			result.Failed = append(result.Failed, targetErr)
			logger.Error("harvest target failed",
				"url", target.URL,
				"file", target.File,
				"code", codeharvest.ErrorCode(err),
				"err", err,
			)

			event.Type = ProgressFailed
			event.Error = err
			progress(event)

			if h.FailFast || ctx.Err() != nil {
				return result, targetErr
			}
			continue
		}

		result.Written = append(result.Written, written)
		logger.Debug("harvested",
			"url", target.URL,
			"file", target.File,
			"bytes", written.Bytes,
			"hash", written.Hash,
		)

		event.Type = ProgressCompleted
		progress(event)
	}

	progress(ProgressEvent{Type: ProgressFinished, Completed: result.Total, Total: result.Total})
	return result, nil
}

func (h *Harvester) harvestOne(ctx context.Context, target *codeharvest.Target) (*WrittenFile, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	if !InScope(target.URL, h.AllowedDomain) {
		return nil, codeharvest.Errorf(codeharvest.EOUTOFSCOPE, "%s is outside allowed domain %s", target.URL, h.AllowedDomain)
	}

	html, err := h.Fetcher.Fetch(ctx, target.URL)
	if err != nil {
		return nil, err
	}

	frag, err := h.Extractor.ExtractFragment(target.URL, html)
	if err != nil {
		return nil, err
	}

	if err := h.Writer.WriteFragment(ctx, target.File, frag); err != nil {
		return nil, err
	}

	return &WrittenFile{
		URL:   target.URL,
		Path:  target.File,
		Bytes: len(frag.Text),
		Hash:  ComputeHash(frag.Text),
	}, nil
}
