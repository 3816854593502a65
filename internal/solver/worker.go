package solver

import (
	"context"
	"sync"
)

// Result is one hint delivery. OK is false when the requested board was
// already solved.
type Result struct {
	Move int
	OK   bool
}

// Worker runs hint searches off the interactive path with last-write-wins
// semantics: a Request made while a search is in flight cancels it, and only
// the newest request's result is ever delivered on Results.
type Worker struct {
	ctx     context.Context
	results chan Result

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewWorker(ctx context.Context) *Worker {
	return &Worker{
		ctx:     ctx,
		results: make(chan Result, 1),
	}
}

// Request starts a search for the given board, superseding any search still
// in flight. The tiles slice is copied before Request returns.
func (w *Worker) Request(tiles []int, size int) {
	board := append([]int(nil), tiles...)

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.gen++
	gen := w.gen
	ctx, cancel := context.WithCancel(w.ctx)
	w.cancel = cancel
	w.mu.Unlock()

	go func() {
		defer cancel()
		move, ok := nextHintMove(ctx, board, size)
		w.deliver(gen, Result{Move: move, OK: ok})
	}()
}

// Results yields at most the latest hint; stale hints are replaced, never
// queued.
func (w *Worker) Results() <-chan Result { return w.results }

func (w *Worker) deliver(gen uint64, r Result) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return // superseded while searching
	}
	// replace any undelivered stale result
	select {
	case <-w.results:
	default:
	}
	select {
	case w.results <- r:
	default:
	}
}
