package review

import (
	"context"
	"sort"
	"time"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"

	"github.com/mergevet/mergevet/internal/diff"
	"github.com/mergevet/mergevet/internal/llm"
	"github.com/mergevet/mergevet/internal/model"
	"github.com/mergevet/mergevet/internal/projctx"
	"github.com/mergevet/mergevet/internal/triage"
)

// DefaultConcurrency bounds the number of in-flight provider calls.
const DefaultConcurrency = 4

// DefaultReviewTimeout bounds the whole review, not individual calls.
const DefaultReviewTimeout = 10 * time.Minute

// batchSize is how many summarized-tier files share one model call.
const batchSize = 8

// Options tune a review run. The zero value is not usable; use
// NewEngine which fills in defaults.
type Options struct {
	MaxFull       int
	Concurrency   int
	ReviewTimeout time.Duration
	RedactSecrets bool
	Tunables      Tunables
}

// Engine runs the end-to-end review: triage, per-file classification
// under a bounded worker pool, aggregation.
type Engine struct {
	gateway *llm.Gateway
	opts    Options
}

// NewEngine builds an Engine, filling zero option fields with
// defaults.
func NewEngine(gateway *llm.Gateway, opts Options) *Engine {
	if opts.MaxFull <= 0 {
		opts.MaxFull = triage.DefaultMaxFull
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.ReviewTimeout <= 0 {
		opts.ReviewTimeout = DefaultReviewTimeout
	}
	opts.Tunables = opts.Tunables.withDefaults()
	return &Engine{gateway: gateway, opts: opts}
}

// Run reviews the diff and returns the aggregate result. The only
// fatal input error is a malformed entry; every per-file failure
// degrades that file's verdict instead of aborting the run.
func (e *Engine) Run(ctx context.Context, entries []diff.Entry, project projctx.Context) (model.ReviewResult, error) {
	if err := diff.Validate(entries); err != nil {
		return model.ReviewResult{}, err
	}
	if len(entries) == 0 {
		return Aggregate(nil, 0, e.opts.Tunables), nil
	}

	tiers := triage.Assign(entries, e.opts.MaxFull)
	nFull, nSummarized, nSkipped := triage.CountByTier(tiers)
	log := clog.FromContext(ctx)
	log.With("files", len(entries)).
		With("full", nFull).
		With("summarized", nSummarized).
		With("skipped", nSkipped).
		Info("Starting review")

	ctx, cancel := context.WithTimeout(ctx, e.opts.ReviewTimeout)
	defer cancel()

	c := &classifier{
		gateway:       e.gateway,
		project:       project,
		redactSecrets: e.opts.RedactSecrets,
	}

	// Verdicts land at their entry's input position so output order
	// never depends on completion order. Every worker runs to
	// completion: a deadline overrun surfaces as a provider error
	// inside the classifier, which demotes the file itself.
	results := make([]model.FileVerdict, len(entries))

	var summarized []int
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, entry := range entries {
		switch tiers[entry.Filename] {
		case triage.TierFull:
			g.Go(func() error {
				results[i] = c.classifyFull(gctx, entry)
				return nil
			})
		case triage.TierSummarized:
			summarized = append(summarized, i)
		default:
			results[i] = c.classifySkipped(entry)
		}
	}

	for _, batch := range batchIndexes(summarized, batchSize) {
		g.Go(func() error {
			batchEntries := make([]diff.Entry, len(batch))
			for j, idx := range batch {
				batchEntries[j] = entries[idx]
			}
			verdicts := c.classifyBatch(gctx, batchEntries)
			for j, idx := range batch {
				results[idx] = verdicts[j]
			}
			return nil
		})
	}

	// Worker funcs never return errors; Wait only reflects pool
	// shutdown.
	_ = g.Wait()

	return Aggregate(results, nSkipped, e.opts.Tunables), nil
}

// batchIndexes splits the summarized entry positions into batches,
// preserving input order within and across batches.
func batchIndexes(indexes []int, size int) [][]int {
	sort.Ints(indexes)
	var batches [][]int
	for len(indexes) > 0 {
		n := min(size, len(indexes))
		batches = append(batches, indexes[:n])
		indexes = indexes[n:]
	}
	return batches
}
