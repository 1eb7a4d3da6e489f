package pow

import (
	"github.com/JekaMas/workerpool"
)

// Result is delivered back to the scheduler over a channel once a puzzle
// search completes (§5 "completion handoff").
type Result struct {
	NodeID string
	Proof  Proof
}

// Worker offloads puzzle search to a small fixed pool of goroutines so the
// scheduler's receive/timer loops are never blocked by a search (§5, §9
// "Off-scheduler CPU work"). A single Worker is shared by one engine
// instance; it is not a process-wide singleton (§9 "per-instance resource
// scoping").
type Worker struct {
	pool *workerpool.WorkerPool
}

// NewWorker starts a pool of size goroutines ready to accept puzzle jobs.
func NewWorker(size int) *Worker {
	if size <= 0 {
		size = 1
	}
	return &Worker{pool: workerpool.New(size)}
}

// Submit schedules a puzzle search for (nodeID, k) and sends the Result on
// results once solved. The scheduler selects on results alongside its other
// channels rather than blocking on this call.
func (w *Worker) Submit(nodeID string, k int, results chan<- Result) {
	w.pool.Submit(func() {
		results <- Result{NodeID: nodeID, Proof: Compute(nodeID, k)}
	})
}

// Stop waits for in-flight searches to finish and shuts the pool down. Part
// of engine shutdown's cancellation scope (§5 "Cancellation").
func (w *Worker) Stop() {
	w.pool.StopWait()
}
