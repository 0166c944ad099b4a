package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/orthoview/pkg/graph"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when evaluation outlives the engine timeout.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

// evalResult carries one sandbox run back to the waiting caller.
type evalResult struct {
	graph  *graph.DesignGraph
	errors []EvalError
	err    error
}

// SetTimeout bounds later evaluations. Non-positive values restore
// EvalTimeout.
func (e *Engine) SetTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeout = d
}

// Timeout returns the current evaluation limit.
func (e *Engine) Timeout() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timeout <= 0 {
		return EvalTimeout
	}
	return e.timeout
}

// await returns the result of generation gen from ch. A run that is
// abandoned by timeout or cancellation keeps going in its goroutine; ch is
// buffered so its late send never blocks.
func (e *Engine) await(ctx context.Context, ch <-chan evalResult, gen uint64, limit time.Duration) (*graph.DesignGraph, []EvalError, error) {
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()
		if gen != current {
			return nil, nil, fmt.Errorf("%w (generation %d, now %d)", ErrSuperseded, gen, current)
		}
		return res.graph, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)

	case <-ctx.Done():
		return nil, nil, fmt.Errorf("engine: evaluation cancelled: %w", ctx.Err())
	}
}
