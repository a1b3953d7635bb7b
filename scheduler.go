package titanium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Engine orchestrates discovery, scheduling, memoization, and persistence
// for a set of target [*LazyOutput]s, operating on Purple Titanium's live,
// handle-discovered subgraphs rather than a global task registry.
// Construct one with [NewEngine]; an Engine is safe for concurrent Run
// calls, each with its own discovered subgraph.
type Engine struct {
	store    Store
	events   *EventBus
	failFast bool
	logger   *slog.Logger
	stack    *ContextStack

	cache *ristretto.Cache[uint64, any]
	sf    singleflight.Group
}

// NewEngine assembles an Engine from opts. Without [WithStore], a
// [FileStore] rooted at PURPLETITANIUM_CACHE_DIR is used unless
// PURPLETITANIUM_CACHE_ENABLED disables persistence, per spec §6.
func NewEngine(opts ...Option) *Engine {
	cfg := &config{
		logger:       slog.Default(),
		stack:        defaultStack,
		cacheMaxCost: 1 << 20,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.events == nil {
		cfg.events = NewEventBus()
	}
	cfg.events.setLogger(cfg.logger)

	if !cfg.storeExplicit {
		if cacheEnabledFromEnv() {
			fs, err := NewFileStore(cacheDirFromEnv(), nil)
			if err != nil {
				cfg.logger.Warn("titanium: disabling persistence, could not open default file store", "error", err)
			} else {
				cfg.store = fs
			}
		}
	}

	cache, err := ristretto.NewCache(&ristretto.Config[uint64, any]{
		NumCounters: 1e5,
		MaxCost:     cfg.cacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		// ristretto.NewCache only fails on invalid config; the constants
		// above are fixed and valid, so this is unreachable in practice.
		panic(fmt.Sprintf("titanium: building memoization cache: %v", err))
	}

	return &Engine{
		store:    cfg.store,
		events:   cfg.events,
		failFast: cfg.failFast,
		logger:   cfg.logger,
		stack:    cfg.stack,
		cache:    cache,
	}
}

// RunResult is one target's outcome from [Engine.RunAsync].
type RunResult struct {
	Value any
	Err   error
}

// Run discovers the subgraph reachable from targets, executes it in
// topological, level-parallel order, and returns each target's resolved
// value in the same order targets were given. A nil error means every
// target resolved; otherwise the returned error wraps (via [errors.Join])
// every target's failure, and individual target values are nil wherever
// their own resolution failed.
func (e *Engine) Run(ctx context.Context, targets ...*LazyOutput) ([]any, error) {
	results := <-e.runAsyncAll(ctx, targets)
	values := make([]any, len(targets))
	var errs []error
	for i, r := range results {
		values[i] = r.Value
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	if len(errs) > 0 {
		return values, errors.Join(errs...)
	}
	return values, nil
}

// RunAsync is the Go-idiomatic analogue of "a future where supported": it
// returns a channel that receives each target's [RunResult], in order,
// once the whole run finishes.
func (e *Engine) RunAsync(ctx context.Context, targets ...*LazyOutput) <-chan []RunResult {
	return e.runAsyncAll(ctx, targets)
}

func (e *Engine) runAsyncAll(ctx context.Context, targets []*LazyOutput) <-chan []RunResult {
	out := make(chan []RunResult, 1)
	go func() {
		defer close(out)
		out <- e.execute(ctx, targets)
	}()
	return out
}

func (e *Engine) execute(ctx context.Context, targets []*LazyOutput) []RunResult {
	tasks, err := discover(targets)
	if err != nil {
		return resultsFromErr(targets, err)
	}

	levels, err := topoSortLevels(tasks)
	if err != nil {
		return resultsFromErr(targets, err)
	}

	runID := uuid.New()

	for i, level := range levels {
		if err := ctx.Err(); err != nil {
			return resultsFromErr(targets, fmt.Errorf("%w: %v", ErrCancelled, err))
		}

		failed := e.runLevel(ctx, runID, level)
		if failed && e.failFast {
			// Settle every task left unscheduled so waiting on a target
			// in a later level returns instead of blocking.
			for _, rest := range levels[i+1:] {
				for _, t := range rest {
					if _, _, done := t.output.terminal(); !done {
						t.output.markFailed(fmt.Errorf("titanium: task %q not run: fail-fast stopped the run", t.name))
					}
				}
			}
			break
		}
	}

	results := make([]RunResult, len(targets))
	for i, t := range targets {
		if t == nil {
			continue
		}
		v, err := t.wait()
		results[i] = RunResult{Value: v, Err: err}
	}
	return results
}

func resultsFromErr(targets []*LazyOutput, err error) []RunResult {
	out := make([]RunResult, len(targets))
	for i := range out {
		out[i] = RunResult{Err: err}
	}
	return out
}

// runLevel executes every task in level concurrently, one goroutine per
// task fanned out over a sync.WaitGroup. It returns true if any task in
// the level failed.
func (e *Engine) runLevel(ctx context.Context, runID uuid.UUID, level []*Task) bool {
	var wg sync.WaitGroup
	var failedCount int32Flag

	for _, t := range level {
		wg.Add(1)
		go func(task *Task) {
			defer wg.Done()
			release := e.stack.Push(task.frame.Merged())
			defer release()

			if err := e.resolveTask(ctx, runID, task); err != nil {
				failedCount.set()
			}
		}(t)
	}
	wg.Wait()
	return failedCount.get()
}

// int32Flag is a tiny concurrency-safe "did anything fail" latch.
type int32Flag struct {
	mu  sync.Mutex
	hit bool
}

func (f *int32Flag) set() {
	f.mu.Lock()
	f.hit = true
	f.mu.Unlock()
}

func (f *int32Flag) get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hit
}

// resolveTask drives one task instance's lazy output to resolved or failed.
// Signature-level mutual exclusion via singleflight means that when two
// task instances (possibly from different branches of the same run, or
// concurrent runs) share a signature, the body executes at most once; every
// instance still gets its own [LazyOutput] marked from that single result.
func (e *Engine) resolveTask(ctx context.Context, runID uuid.UUID, t *Task) error {
	if _, err, ok := t.output.terminal(); ok {
		return err
	}

	t.output.markResolving()

	key := fmt.Sprintf("%016x", t.signature)
	v, err, _ := e.sf.Do(key, func() (any, error) {
		return e.executeOnce(ctx, runID, t)
	})
	if err != nil {
		t.output.markFailed(err)
		return err
	}
	t.output.markResolved(v)
	return nil
}

func (e *Engine) executeOnce(ctx context.Context, runID uuid.UUID, t *Task) (any, error) {
	for dep := range t.dependencies {
		if _, depErr := dep.wait(); depErr != nil {
			err := &DependencyFailedError{
				DependencySignature: dep.Signature(),
				DependencyName:      dep.owner.name,
				Cause:               depErr,
			}
			return nil, err
		}
	}

	if v, ok := e.cache.Get(t.signature); ok {
		e.events.publish(Event{Type: EventCacheHit, RunID: runID, TaskName: t.name, Signature: t.signature})
		return v, nil
	}

	if e.store != nil {
		rec, ok, err := e.store.Load(ctx, t.signature)
		if err != nil {
			e.logger.Warn("titanium: cache entry invalid, recomputing", "task", t.name, "signature", t.signature, "error", err)
		} else if ok {
			e.events.publish(Event{Type: EventCacheHit, RunID: runID, TaskName: t.name, Signature: t.signature})
			e.cache.Set(t.signature, rec.Payload, 1)
			return rec.Payload, nil
		}
	}

	e.events.publish(Event{Type: EventCacheMiss, RunID: runID, TaskName: t.name, Signature: t.signature})
	e.events.publish(Event{Type: EventTaskStarted, RunID: runID, TaskName: t.name, Signature: t.signature})

	params := t.concreteParams(func(dep *LazyOutput) any {
		v, _ := dep.wait()
		return v
	})

	result, err := t.body(ctx, params)
	if err != nil {
		wrapped := &TaskFailedError{TaskName: t.name, Signature: t.signature, Inner: err}
		e.events.publish(Event{Type: EventTaskFailed, RunID: runID, TaskName: t.name, Signature: t.signature, Err: wrapped})
		return nil, wrapped
	}

	e.events.publish(Event{Type: EventTaskCompleted, RunID: runID, TaskName: t.name, Signature: t.signature})
	e.cache.Set(t.signature, result, 1)

	if e.store != nil {
		rec := Record{Signature: t.signature, TaskName: t.name, Version: t.version, Payload: result}
		if err := e.store.Save(ctx, rec); err != nil {
			e.logger.Warn("titanium: failed to persist result", "task", t.name, "signature", t.signature, "error", err)
		}
	}

	return result, nil
}

// EventBus returns the engine's event bus, for subscribing after
// construction.
func (e *Engine) EventBus() *EventBus { return e.events }
