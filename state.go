package asynclog

import (
	"sync"
	"sync/atomic"
	"time"
)

// State encapsulates the runtime state of the logger
type State struct {
	IsInitialized   atomic.Bool
	LoggerDisabled  atomic.Bool
	ShutdownCalled  atomic.Bool
	Started         atomic.Bool
	ProcessorExited atomic.Bool // Tracks if the timer goroutine is running or has exited

	flushMutex sync.Mutex // Protect concurrent Flush calls

	ActiveWorker  atomic.Pointer[Worker]     // nil while stopped
	ActiveBackend atomic.Pointer[backendRef] // set by ApplyConfig

	DroppedLogs atomic.Uint64 // Records pushed while no worker was accepting

	// Heartbeat statistics
	HeartbeatSequence atomic.Uint64
	LoggerStartTime   atomic.Value // stores time.Time for uptime calculation
}

// backendRef wraps a Backend, atomic pointer needs a concrete type
type backendRef struct {
	b Backend
}

// retiredStats accumulates counters from stopped workers and replaced backends.
// Workers still draining after a timed-out stop are tracked live until they exit.
type retiredStats struct {
	mu       sync.Mutex
	worker   WorkerStats
	backend  BackendStats
	draining map[*Worker]struct{}
}

// detachWorker clears the active worker and tracks it as draining in one step,
// so Stats never counts it twice or misses it
func (r *retiredStats) detachWorker(active *atomic.Pointer[Worker]) *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := active.Swap(nil)
	if w != nil {
		if r.draining == nil {
			r.draining = make(map[*Worker]struct{})
		}
		r.draining[w] = struct{}{}
	}
	return w
}

// retireWorker folds the final counters of a stopped worker into the totals
func (r *retiredStats) retireWorker(w *Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.draining, w)
	final := w.Stats()
	final.Pending = 0
	addWorkerStats(&r.worker, final)
}

func (r *retiredStats) addBackend(s BackendStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.BytesWritten += s.BytesWritten
	r.backend.Rotations += s.Rotations
	r.backend.Deletions += s.Deletions
	r.backend.WriteErrors += s.WriteErrors
}

// snapshot sums retired, draining and active worker counters
func (r *retiredStats) snapshot(active *atomic.Pointer[Worker]) (WorkerStats, BackendStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws := r.worker
	for w := range r.draining {
		addWorkerStats(&ws, w.Stats())
	}
	if w := active.Load(); w != nil {
		addWorkerStats(&ws, w.Stats())
	}
	return ws, r.backend
}

func addWorkerStats(dst *WorkerStats, s WorkerStats) {
	dst.Pushed += s.Pushed
	dst.Drained += s.Drained
	dst.SinkPanics += s.SinkPanics
	dst.Pending += s.Pending
}

// Stats returns counters accumulated over the logger lifetime
func (l *Logger) Stats() Stats {
	ws, bs := l.retired.snapshot(&l.state.ActiveWorker)

	s := Stats{
		Pushed:       ws.Pushed,
		Drained:      ws.Drained,
		Dropped:      l.state.DroppedLogs.Load(),
		SinkPanics:   ws.SinkPanics,
		Pending:      ws.Pending,
		BytesWritten: bs.BytesWritten,
		Rotations:    bs.Rotations,
		Deletions:    bs.Deletions,
		WriteErrors:  bs.WriteErrors,
	}

	if b := l.getBackend(); b != nil {
		cur := b.Stats()
		s.BytesWritten += cur.BytesWritten
		s.Rotations += cur.Rotations
		s.Deletions += cur.Deletions
		s.WriteErrors += cur.WriteErrors
	}

	if start, ok := l.state.LoggerStartTime.Load().(time.Time); ok && !start.IsZero() {
		s.Uptime = time.Since(start)
	}
	return s
}
