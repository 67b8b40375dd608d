package layout

import (
	"context"
	"log/slog"
	"time"
)

// Update is a worker message tagged with the run that produced it.
type Update struct {
	Generation uint64
	Message    Message
}

// Coordinator owns the single live layout run. Starting a run cancels the
// previous one and waits for it to wind down, so at most one run ever writes
// results. It is meant to be driven from one goroutine (the host's) and
// holds no locks.
type Coordinator struct {
	worker Worker
	logger *slog.Logger

	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	startedAt  time.Time
}

// NewCoordinator returns a coordinator running requests on w.
func NewCoordinator(w Worker, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{worker: w, logger: logger}
}

// Generation returns the id of the most recently started run; 0 before any.
func (c *Coordinator) Generation() uint64 { return c.generation }

// Start cancels any in-flight run and starts req. The returned channel
// carries the new run's messages and is closed when the run ends or is
// replaced.
func (c *Coordinator) Start(ctx context.Context, req Request) <-chan Update {
	c.Stop()

	c.generation++
	gen := c.generation
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel, c.done, c.startedAt = cancel, done, time.Now()

	c.logger.Info("layout run started",
		"generation", gen,
		"nodes", len(req.Nodes),
		"links", len(req.Links))

	in := c.worker.Run(runCtx, req)
	out := make(chan Update)
	go func() {
		defer close(done)
		defer close(out)
		for m := range in {
			select {
			case out <- Update{Generation: gen, Message: m}:
			case <-runCtx.Done():
				for range in {
				}
				return
			}
		}
	}()
	return out
}

// Stop cancels the in-flight run, if any, and waits until its worker has let
// go of it.
func (c *Coordinator) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.logger.Debug("layout run stopped",
		"generation", c.generation,
		"elapsed", time.Since(c.startedAt))
	c.cancel, c.done = nil, nil
}

// Current reports whether u belongs to the most recent run.
func (c *Coordinator) Current(u Update) bool {
	return u.Generation == c.generation
}
