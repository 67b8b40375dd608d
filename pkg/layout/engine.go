package layout

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Worker runs one layout request and streams its messages. The returned
// channel is closed after the terminal message, or early when ctx is
// canceled.
type Worker interface {
	Run(ctx context.Context, req Request) <-chan Message
}

// LocalWorker runs the simulation on its own goroutine in this process.
type LocalWorker struct {
	Config Config
	Logger *slog.Logger
}

// Run implements Worker.
func (w LocalWorker) Run(ctx context.Context, req Request) <-chan Message {
	return Run(ctx, req, w.Config, w.Logger)
}

// Run starts a simulation for req on a new goroutine and returns its message
// stream. An empty request completes at once with Progress{1} and an empty
// Done, without starting a goroutine.
func Run(ctx context.Context, req Request, cfg Config, logger *slog.Logger) <-chan Message {
	if logger == nil {
		logger = slog.Default()
	}
	if len(req.Nodes) == 0 {
		return emptyRun()
	}

	out := make(chan Message, 1)
	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("layout run panicked", "panic", r)
				send(ctx, out, Failed{Err: fmt.Errorf("layout: simulation panicked: %v", r)})
			}
		}()

		start := time.Now()
		sim := NewSimulation(req, cfg)
		n := cfg.Iterations()
		k := BatchSize(len(req.Nodes))

		for i := 0; i < n; i++ {
			if i%k == 0 {
				if !send(ctx, out, Progress{Value: float64(i) / float64(n)}) {
					logger.Debug("layout run canceled", "tick", i, "ticks", n)
					return
				}
			}
			sim.Tick()
		}

		logger.Debug("layout run finished",
			"nodes", len(req.Nodes),
			"links", len(req.Links),
			"ticks", n,
			"elapsed", time.Since(start))
		send(ctx, out, Done{Nodes: sim.Positions(), Links: req.Links})
	}()
	return out
}

// emptyRun is the closed stream of a request with no nodes: Progress{1}
// then an empty Done.
func emptyRun() <-chan Message {
	out := make(chan Message, 2)
	out <- Progress{Value: 1}
	out <- Done{Nodes: []NodeData{}, Links: []LinkData{}}
	close(out)
	return out
}

// send delivers m unless ctx is canceled first.
func send(ctx context.Context, out chan<- Message, m Message) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- m:
		return true
	case <-ctx.Done():
		return false
	}
}

// Collect drains a message stream, calling onProgress for every Progress,
// and returns the terminal Done. It returns ErrCanceled when the stream ends
// without a terminal message because ctx was canceled, and ErrWorkerExited
// when it ends for any other reason.
func Collect(ctx context.Context, msgs <-chan Message, onProgress func(float64)) (Done, error) {
	for {
		select {
		case <-ctx.Done():
			return Done{}, ErrCanceled
		case m, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return Done{}, ErrCanceled
				}
				return Done{}, ErrWorkerExited
			}
			switch m := m.(type) {
			case Progress:
				if onProgress != nil {
					onProgress(m.Value)
				}
			case Done:
				return m, nil
			case Failed:
				return Done{}, m.Err
			}
		}
	}
}
