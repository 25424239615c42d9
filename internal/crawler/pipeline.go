// Package crawler implements the bounded two-level crawl: a seed page leads to
// index pages, index pages lead to leaf pages, and a bounded random sample of
// leaf pages is fetched one at a time and turned into records.
package crawler

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/masahif/listharvest/internal/extract"
	"github.com/masahif/listharvest/internal/parser"
)

// Pipeline runs one crawl. It is single use and runs sequentially:
// no two fetches are ever in flight at the same time.
type Pipeline struct {
	fetcher PageFetcher
	opts    Options
	rng     *rand.Rand
	state   State
	stats   Stats
}

// NewPipeline validates opts and returns a pipeline ready to Run
func NewPipeline(fetcher PageFetcher, opts Options) (*Pipeline, error) {
	if fetcher == nil {
		return nil, ErrNoFetcher
	}
	if opts.SeedURL == "" {
		return nil, ErrNoSeedURL
	}
	if opts.Fields == nil {
		return nil, ErrNoFields
	}
	if opts.MaxLeafPages <= 0 {
		return nil, ErrInvalidLeafLimit
	}
	if opts.Delay == nil {
		opts.Delay = NoDelay{}
	}

	rng := opts.Rand
	if rng == nil {
		rng = newRand()
	}

	return &Pipeline{
		fetcher: fetcher,
		opts:    opts,
		rng:     rng,
		state:   StateSeeding,
	}, nil
}

// State returns the current stage
func (p *Pipeline) State() State { return p.state }

// Stats returns crawl counters
func (p *Pipeline) Stats() Stats { return p.stats }

// Run executes the crawl.
//
// A seed fetch failure is fatal and returns *SeedError with a nil table.
// Index page failures are skipped. Leaf page failures produce an all-missing
// record so the table has exactly one row per attempted leaf URL.
// If ctx is cancelled the rows collected so far are returned with ctx.Err().
func (p *Pipeline) Run(ctx context.Context) (*extract.Table, error) {
	if p.state != StateSeeding {
		return nil, ErrPipelineUsed
	}

	p.stats.StartTime = time.Now()
	defer func() {
		p.stats.Duration = time.Since(p.stats.StartTime)
		p.state = StateDone
		slog.Info("Crawl finished",
			"seed", p.opts.SeedURL,
			"index_pages", p.stats.IndexPages,
			"index_failures", p.stats.IndexFailures,
			"worklist", p.stats.WorklistSize,
			"attempted", p.stats.LeavesAttempted,
			"leaf_failures", p.stats.LeafFailures,
			"duration", p.stats.Duration)
	}()

	slog.Info("Starting crawl", "seed", p.opts.SeedURL, "max_leaf_pages", p.opts.MaxLeafPages)

	seed, err := p.fetcher.Fetch(ctx, p.opts.SeedURL)
	if err != nil {
		slog.Error("Seed fetch failed", "seed", p.opts.SeedURL, "error", err)
		return nil, &SeedError{URL: p.opts.SeedURL, Err: err}
	}

	p.state = StateIndexDiscovery
	indexURLs := uniqueInOrder(Filter(p.links(seed), p.opts.IndexPattern))
	p.stats.IndexPages = len(indexURLs)
	slog.Info("Discovered index pages", "count", len(indexURLs))

	if len(indexURLs) == 0 {
		return extract.NewTable(p.opts.Fields, 0), nil
	}

	p.state = StateLeafDiscovery
	leafSets, err := p.discoverLeaves(ctx, indexURLs)
	if err != nil {
		return extract.NewTable(p.opts.Fields, 0), err
	}

	worklist := DedupeAndShuffle(p.rng, leafSets...)
	p.stats.WorklistSize = len(worklist)
	slog.Info("Built leaf worklist", "unique_urls", len(worklist))

	p.state = StateLeafFetching
	n := min(p.opts.MaxLeafPages, len(worklist))
	table := extract.NewTable(p.opts.Fields, n)

	for i, leafURL := range worklist[:n] {
		if err := p.opts.Delay.Wait(ctx); err != nil {
			return table, err
		}

		rec, err := p.fetchLeaf(ctx, leafURL)
		if err != nil {
			return table, err
		}

		table.Append(rec)
		p.stats.LeavesAttempted++

		if p.opts.Observer != nil {
			if err := p.opts.Observer.OnRecord(i, rec); err != nil {
				slog.Error("Failed to record result", "url", leafURL, "error", err)
			}
		}
	}

	return table, nil
}

// discoverLeaves fetches each index page and collects the matching leaf links
func (p *Pipeline) discoverLeaves(ctx context.Context, indexURLs []string) ([][]string, error) {
	leafSets := make([][]string, 0, len(indexURLs))

	for _, indexURL := range indexURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := p.fetcher.Fetch(ctx, indexURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Warn("Skipping index page", "url", indexURL, "error", err)
			p.stats.IndexFailures++
			continue
		}

		leaves := Filter(p.links(page), p.opts.LeafPattern)
		slog.Debug("Index page processed", "url", indexURL, "leaf_links", len(leaves))
		leafSets = append(leafSets, leaves)
	}

	return leafSets, nil
}

// fetchLeaf returns the record for one leaf URL. Only cancellation is an error.
func (p *Pipeline) fetchLeaf(ctx context.Context, leafURL string) (extract.Record, error) {
	page, err := p.fetcher.Fetch(ctx, leafURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return extract.Record{}, ctxErr
		}
		slog.Warn("Leaf fetch failed, recording missing row", "url", leafURL, "error", err)
		p.stats.LeafFailures++
		return extract.NewMissingRecord(leafURL, p.opts.Fields, err), nil
	}

	rec := extract.Extract(page, p.opts.Fields)
	rec.URL = leafURL
	slog.Info("Extracted record", "url", leafURL)
	return rec, nil
}

// links returns the page's anchors, resolved against the page URL when configured
func (p *Pipeline) links(page *parser.Page) []string {
	links := page.Links()
	if !p.opts.ResolveLinks {
		return links
	}

	resolved, err := parser.ResolveLinks(page.URL, links)
	if err != nil {
		slog.Warn("Failed to resolve links", "url", page.URL, "error", err)
		return links
	}
	return resolved
}
