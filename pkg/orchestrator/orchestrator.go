// Package orchestrator fetches many documents with a fixed-size worker pool.
//
// Every reference resolves to exactly one FetchedDocument. Failures, timeouts and
// cancellation are recorded on the document instead of being returned as errors,
// so FetchAll always yields one result per input.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtnitsch/llm-doc-chunker/models"
	"github.com/dtnitsch/llm-doc-chunker/pkg/fetcher"
)

// Getter performs a single GET. *fetcher.Fetcher satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*fetcher.Response, error)
}

// GetterFunc adapts a function to the Getter interface.
type GetterFunc func(ctx context.Context, url string) (*fetcher.Response, error)

func (f GetterFunc) Get(ctx context.Context, url string) (*fetcher.Response, error) {
	return f(ctx, url)
}

type Orchestrator struct {
	getter     Getter
	sources    []fetcher.Source
	workers    int
	policy     fetcher.RetryPolicy
	logger     *slog.Logger
	onProgress func(models.FetchRunProgress)

	abortCtx context.Context
	abort    context.CancelFunc

	mu  sync.Mutex
	run *runState
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for worker activity.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgressFunc subscribes fn to progress updates. fn receives a copy after every
// item starts and after every item resolves. It is called with the run's lock held,
// so it must return quickly and must not call back into the Orchestrator.
func WithProgressFunc(fn func(models.FetchRunProgress)) Option {
	return func(o *Orchestrator) {
		o.onProgress = fn
	}
}

// WithSources replaces the default structured-text-first source strategy.
func WithSources(sources ...fetcher.Source) Option {
	return func(o *Orchestrator) {
		if len(sources) > 0 {
			o.sources = sources
		}
	}
}

// New builds an Orchestrator. An invalid configuration is a programming error and
// is the only error this package returns.
func New(getter Getter, cfg models.FetchConfig, opts ...Option) (*Orchestrator, error) {
	if getter == nil {
		return nil, errors.New("orchestrator: nil getter")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrator: invalid config: %w", err)
	}

	abortCtx, abort := context.WithCancel(context.Background())
	o := &Orchestrator{
		getter:  getter,
		sources: fetcher.DefaultSources(cfg.StructuredSuffixes),
		workers: cfg.WorkerCount,
		policy: fetcher.RetryPolicy{
			Retries: cfg.Retries,
			Backoff: cfg.RetryBackoff,
			Timeout: cfg.Timeout,
		},
		logger:   slog.New(slog.DiscardHandler),
		abortCtx: abortCtx,
		abort:    abort,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Abort cancels all in-flight and pending work. It is permanent: items of any later
// run resolve immediately as cancelled. Calling it more than once has no further effect.
func (o *Orchestrator) Abort() {
	o.abort()
}

// Aborted reports whether Abort has been called.
func (o *Orchestrator) Aborted() bool {
	return o.abortCtx.Err() != nil
}

// Progress returns a snapshot of the most recent run.
func (o *Orchestrator) Progress() models.FetchRunProgress {
	o.mu.Lock()
	run := o.run
	o.mu.Unlock()
	if run == nil {
		return models.FetchRunProgress{}
	}
	return run.snapshot()
}

// FetchAll fetches every reference with at most WorkerCount requests in flight and
// returns one document per reference, in completion order.
func (o *Orchestrator) FetchAll(ctx context.Context, refs []models.DocumentReference) []models.FetchedDocument {
	ctx, cancel := o.runContext(ctx)
	defer cancel()

	run := newRunState(uuid.NewString(), len(refs), o.onProgress)
	o.mu.Lock()
	o.run = run
	o.mu.Unlock()

	jobs := make(chan models.DocumentReference, len(refs))
	for _, ref := range refs {
		jobs <- ref
	}
	close(jobs)

	workerCount := min(o.workers, len(refs))
	o.logger.Info("Starting concurrent fetch phase", "run_id", run.id, "ref_count", len(refs), "workers", workerCount)

	var wg sync.WaitGroup
	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go o.worker(ctx, w, run, jobs, &wg)
	}
	wg.Wait()

	p := run.snapshot()
	o.logger.Info("All fetch workers finished", "run_id", run.id, "completed", p.Completed, "failed", len(p.Errors))
	return run.results()
}

// worker drains jobs until the queue is empty. Cancellation does not stop the loop;
// each remaining item still resolves, as a cancelled failure.
func (o *Orchestrator) worker(ctx context.Context, id int, run *runState, jobs <-chan models.DocumentReference, wg *sync.WaitGroup) {
	defer wg.Done()
	for ref := range jobs {
		run.start(ref.Locator)
		o.logger.Info("Worker started job", "worker_id", id, "url", ref.Locator)

		doc := o.FetchOne(ctx, ref)
		if doc.OK() {
			o.logger.Info("Worker finished job", "worker_id", id, "url", ref.Locator, "kind", doc.ContentKind, "bytes", len(doc.RawContent))
		} else {
			o.logger.Warn("Worker failed job", "worker_id", id, "url", ref.Locator, "error", doc.Failure)
		}
		run.finish(doc)
	}
}

// FetchOne walks the source strategy for a single reference. It never fails: any
// error ends up in the returned document's Failure field.
func (o *Orchestrator) FetchOne(ctx context.Context, ref models.DocumentReference) models.FetchedDocument {
	ctx, cancel := o.runContext(ctx)
	defer cancel()

	doc := models.FetchedDocument{Reference: ref}
	var lastErr error

	for _, src := range o.sources {
		target, ok := src.Resolve(ref.Locator)
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			lastErr = fetcher.ErrCancelled
			break
		}

		policy := o.policy
		if src.Probe {
			policy = policy.Once()
		}
		resp, err := fetcher.Retry(ctx, policy, func(actx context.Context) (*fetcher.Response, error) {
			return o.attempt(actx, src, target)
		})
		if err == nil {
			doc.SourceLocator = target
			doc.RawContent = string(resp.Body)
			doc.ContentKind = src.Kind
			doc.FetchedAt = time.Now()
			return doc
		}

		lastErr = err
		if !src.Probe || errors.Is(err, fetcher.ErrCancelled) {
			break
		}
		o.logger.Debug("Probe missed, falling back", "source", src.Name, "url", target, "error", err)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no source applies to %q", ref.Locator)
	}
	doc.Failure = lastErr.Error()
	doc.FetchedAt = time.Now()
	return doc
}

func (o *Orchestrator) attempt(ctx context.Context, src fetcher.Source, target string) (*fetcher.Response, error) {
	resp, err := o.getter.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(resp.Body)) == "" {
		return nil, fmt.Errorf("GET %s: empty response body", target)
	}
	if src.Accept != nil {
		if err := src.Accept(resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// runContext derives a context that ends with either ctx or Abort.
func (o *Orchestrator) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	if o.Aborted() {
		// AfterFunc would cancel asynchronously; an aborted run must be done before the first check.
		cancel()
		return ctx, cancel
	}
	stop := context.AfterFunc(o.abortCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
