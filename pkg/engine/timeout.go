package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to an evaluation that finished after a
	// newer one started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// sceneResult carries what a sandboxed run produced back to Evaluate.
type sceneResult struct {
	scene  *Scene
	errors []EvalError
	err    error
}

// generations numbers evaluations so that only the newest may deliver a
// scene.
type generations struct {
	mu sync.Mutex
	n  uint64
}

// start begins a new evaluation and returns its number.
func (g *generations) start() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return g.n
}

// latest reports whether id is the newest evaluation.
func (g *generations) latest(id uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n == id
}

// awaitScene waits up to timeout for evaluation id to report on ch. A
// timed-out run keeps going in its goroutine; its scene is dropped since
// ch is never read again.
func awaitScene(ch <-chan sceneResult, timeout time.Duration, gens *generations, id uint64) (*Scene, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !gens.latest(id) {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
