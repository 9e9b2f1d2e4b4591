package pipeline

import (
	"context"
	"sync"
)

// Worker runs full recomputes in the background. A new Submit cancels the
// computation in flight, and only the most recently submitted request can
// ever be committed.
type Worker struct {
	// OnCommit is called with every committed snapshot while the worker's
	// lock is held; it must not call back into the Worker.
	OnCommit func(*Snapshot)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	latest *Snapshot
	err    error

	// running counts computations still in flight; idle is signalled
	// whenever it drops to zero
	running int
	idle    *sync.Cond
}

// NewWorker creates an idle worker
func NewWorker() *Worker {
	w := &Worker{}
	w.idle = sync.NewCond(&w.mu)
	return w
}

// Submit supersedes any in-flight request with req
func (w *Worker) Submit(ctx context.Context, req Request) {
	ctx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.gen++
	gen := w.gen
	w.cancel = cancel
	w.running++
	w.mu.Unlock()

	go func() {
		defer cancel()

		snap, err := Compute(ctx, req)
		w.commit(gen, snap, err)
	}()
}

// commit stores the outcome of generation gen if it is still current and
// marks the computation finished
func (w *Worker) commit(gen uint64, snap *Snapshot, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	defer func() {
		w.running--
		if w.running == 0 {
			w.idle.Broadcast()
		}
	}()

	if gen != w.gen {
		return
	}
	w.cancel = nil
	if err != nil {
		w.err = err
		return
	}

	w.latest = snap
	w.err = nil
	if w.OnCommit != nil {
		w.OnCommit(snap)
	}
}

// Cancel stops the request in flight without committing it
func (w *Worker) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.gen++
}

// Wait blocks until no computation is running. It may be called
// concurrently with Submit; a request submitted while waiting extends
// the wait.
func (w *Worker) Wait() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.running > 0 {
		w.idle.Wait()
	}
}

// Latest returns the last committed snapshot, or nil
func (w *Worker) Latest() *Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest
}

// Err returns the error of the most recent request, if it failed
func (w *Worker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
