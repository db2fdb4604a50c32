// Package dispatch runs selected lookup tasks concurrently and settles every
// one of them. A failing task never cancels its siblings; the caller gets one
// outcome per task, in dispatch order, each tagged with how it ended.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"dossier/internal/agent"
	"dossier/internal/logging"
)

// Status records how a single task settled.
type Status string

const (
	// StatusOK means the invoker returned a payload with data.
	StatusOK Status = "ok"
	// StatusNoData means the invoker succeeded but found nothing.
	StatusNoData Status = "no_data"
	// StatusError means the invoker returned an error.
	StatusError Status = "error"
	// StatusFailed means the task never ran to completion: panic, missing
	// invoker, or cancellation before start.
	StatusFailed Status = "failed"
)

// Outcome is the settled result of one task.
type Outcome struct {
	Task    agent.Task
	Result  *agent.Result
	Err     error
	Status  Status
	Elapsed time.Duration
}

// OK reports whether the task produced a usable payload.
func (o Outcome) OK() bool { return o.Status == StatusOK }

const (
	// DefaultParallelism bounds how many invokers run at once.
	DefaultParallelism = 4
	// DefaultTaskTimeout is the per-task deadline.
	DefaultTaskTimeout = 30 * time.Second
)

// Dispatcher fans tasks out over a registry of invokers.
type Dispatcher struct {
	registry    *agent.Registry
	parallelism int
	taskTimeout time.Duration
	log         *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithParallelism bounds concurrent task execution. Values below 1 keep the
// default.
func WithParallelism(n int) Option {
	return func(d *Dispatcher) {
		if n >= 1 {
			d.parallelism = n
		}
	}
}

// WithTaskTimeout sets the per-task deadline. Non-positive values keep the
// default.
func WithTaskTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.taskTimeout = timeout
		}
	}
}

// New returns a Dispatcher over the given registry.
func New(registry *agent.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:    registry,
		parallelism: DefaultParallelism,
		taskTimeout: DefaultTaskTimeout,
		log:         logging.New("dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run settles every task and returns outcomes in dispatch order. The only
// error Run itself returns is ctx cancellation before all tasks settled;
// per-task errors live in the outcomes.
func (d *Dispatcher) Run(ctx context.Context, tasks []agent.Task) ([]Outcome, error) {
	outcomes := make([]Outcome, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallelism)
	for i, task := range tasks {
		g.Go(func() error {
			outcomes[i] = d.runOne(gctx, task)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, ctx.Err()
}

// runOne executes a single task under its own deadline and converts every
// way it can end into an Outcome. A panicking invoker is contained here.
func (d *Dispatcher) runOne(ctx context.Context, task agent.Task) (out Outcome) {
	out.Task = task
	start := time.Now()
	defer func() {
		out.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			out.Status = StatusFailed
			out.Err = fmt.Errorf("invoker panic: %v", r)
			d.log.Error("invoker panicked", "agent", task.Kind.String(), "target", task.Target, "panic", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		out.Status = StatusFailed
		out.Err = err
		return out
	}

	inv, err := d.registry.Lookup(task.Kind)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		d.log.Warn("no invoker for task", "agent", task.Kind.String(), "target", task.Target)
		return out
	}

	tctx, cancel := context.WithTimeout(ctx, d.taskTimeout)
	defer cancel()

	d.log.Debug("running task", "agent", task.Kind.String(), "target", task.Target)
	res, err := inv.Invoke(tctx, task)
	if err != nil {
		out.Status = StatusError
		out.Err = fmt.Errorf("%s lookup: %w", task.Kind, err)
		d.log.Warn("task errored", "agent", task.Kind.String(), "target", task.Target, "error", err)
		return out
	}

	out.Result = res
	if res.Empty() {
		out.Status = StatusNoData
	} else {
		out.Status = StatusOK
	}
	return out
}
