package layout

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
)

// ProcessWorker runs each request in a child process speaking the wire
// protocol on stdin/stdout (see ServeWorker). Canceling the run kills the
// child.
type ProcessWorker struct {
	Path   string
	Args   []string
	Logger *slog.Logger
	// Stderr receives the child's stderr; nil discards it.
	Stderr io.Writer
}

// maxWireLine bounds one message line; an "end" message for a large graph
// is one long line.
const maxWireLine = 64 << 20

// Run implements Worker. Start-up failures are reported as a single Failed
// message; there is no retry. An empty request completes without starting
// a child.
func (w ProcessWorker) Run(ctx context.Context, req Request) <-chan Message {
	if len(req.Nodes) == 0 {
		return emptyRun()
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := make(chan Message, 1)

	go func() {
		defer close(out)
		fail := func(err error) {
			logger.Warn("layout worker failed", "path", w.Path, "error", err)
			send(ctx, out, Failed{Err: err})
		}

		cmd := exec.CommandContext(ctx, w.Path, w.Args...)
		cmd.Stderr = w.Stderr
		stdin, err := cmd.StdinPipe()
		if err != nil {
			fail(fmt.Errorf("layout worker stdin: %w", err))
			return
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			fail(fmt.Errorf("layout worker stdout: %w", err))
			return
		}
		if err := cmd.Start(); err != nil {
			fail(fmt.Errorf("starting layout worker: %w", err))
			return
		}

		go func() {
			defer stdin.Close()
			if err := json.NewEncoder(stdin).Encode(req); err != nil {
				logger.Warn("writing layout request", "error", err)
			}
		}()

		terminal := false
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64<<10), maxWireLine)
		for !terminal && scanner.Scan() {
			m, err := UnmarshalMessage(scanner.Bytes())
			if err != nil {
				fail(err)
				terminal = true
				break
			}
			switch m.(type) {
			case Done, Failed:
				terminal = true
			}
			if !send(ctx, out, m) {
				break
			}
		}
		scanErr := scanner.Err()
		waitErr := cmd.Wait()

		if terminal || ctx.Err() != nil {
			return
		}
		switch {
		case scanErr != nil:
			fail(fmt.Errorf("reading layout worker output: %w", scanErr))
		case waitErr != nil:
			fail(fmt.Errorf("%w: %v", ErrWorkerExited, waitErr))
		default:
			fail(ErrWorkerExited)
		}
	}()
	return out
}
