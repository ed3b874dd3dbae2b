package asynclog

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/asynclog/queue"
)

// Sink receives each drained record. It is called synchronously by whichever
// worker dequeued the record and must not retain the slice after returning.
type Sink func(record []byte)

// WorkerOptions configures a Worker
type WorkerOptions struct {
	Workers     int           // Number of drain goroutines, fixed for the worker lifetime
	Idle        IdleMode      // Behavior on an empty queue
	ParkTimeout time.Duration // Upper bound on a parked wait
	DrainOnStop bool          // Sweep the queue once more after all workers joined
	Report      ReportFunc    // Diagnostic channel for sink panics
}

// WorkerStats is a snapshot of worker counters
type WorkerStats struct {
	Pushed     uint64
	Drained    uint64
	Dropped    uint64
	SinkPanics uint64
	Pending    int64
}

// Worker owns the record queue and a fixed pool of goroutines draining it into a sink
type Worker struct {
	queue *queue.Queue[[]byte]
	sink  Sink
	opts  WorkerOptions

	stopping atomic.Bool
	stopped  atomic.Bool
	inflight atomic.Int64 // Pushes past the stopping check but not yet enqueued
	stopOnce sync.Once
	done     chan struct{}
	wake     chan struct{}
	group    errgroup.Group

	pushed     atomic.Uint64
	drained    atomic.Uint64
	dropped    atomic.Uint64
	sinkPanics atomic.Uint64
}

// NewWorker creates the queue and immediately starts opts.Workers drain goroutines
func NewWorker(sink Sink, opts WorkerOptions) *Worker {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.ParkTimeout <= 0 {
		opts.ParkTimeout = 100 * time.Millisecond
	}
	if opts.Report == nil {
		opts.Report = stderrReport
	}

	w := &Worker{
		queue: queue.New[[]byte](),
		sink:  sink,
		opts:  opts,
		done:  make(chan struct{}),
		wake:  make(chan struct{}, opts.Workers),
	}

	for i := 0; i < opts.Workers; i++ {
		w.group.Go(w.drainLoop)
	}
	return w
}

// Push copies data into a new record and enqueues it. It never blocks.
// Records pushed once Stop has begun are counted as dropped and Push returns false.
func (w *Worker) Push(data []byte) bool {
	w.inflight.Add(1)
	if w.stopping.Load() {
		w.inflight.Add(-1)
		w.dropped.Add(1)
		return false
	}

	record := make([]byte, len(data))
	copy(record, data)

	w.pushed.Add(1)
	w.queue.Enqueue(record)
	w.inflight.Add(-1)

	if w.opts.Idle == IdlePark {
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}
	return true
}

// Stop signals all workers, waits for them to exit and, with DrainOnStop,
// flushes any records that raced with shutdown. Calling Stop again has no
// further effect; concurrent callers return once the first call completes.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.stopping.Store(true)
		close(w.done)
		// Join only: drainLoop contains sink panics and always returns nil
		w.group.Wait()

		// Pushes that passed the stopping check finish enqueueing before the sweep
		for w.inflight.Load() > 0 {
			runtime.Gosched()
		}

		if w.opts.DrainOnStop {
			for {
				record, ok := w.queue.TryDequeue()
				if !ok {
					break
				}
				w.dispatch(record)
			}
		}
		w.stopped.Store(true)
	})
}

// Stopped reports whether Stop has completed
func (w *Worker) Stopped() bool {
	return w.stopped.Load()
}

// Pending returns the number of pushed records whose sink call has not returned
func (w *Worker) Pending() int64 {
	return int64(w.pushed.Load()) - int64(w.drained.Load())
}

// Stats returns a snapshot of worker counters
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		Pushed:     w.pushed.Load(),
		Drained:    w.drained.Load(),
		Dropped:    w.dropped.Load(),
		SinkPanics: w.sinkPanics.Load(),
		Pending:    w.Pending(),
	}
}

// drainLoop is the identical loop run by every worker goroutine.
// It exits only once the stop flag is set and the queue is confirmed empty,
// and never returns an error.
func (w *Worker) drainLoop() error {
	var timer *time.Timer
	if w.opts.Idle == IdlePark {
		timer = time.NewTimer(w.opts.ParkTimeout)
		defer timer.Stop()
	}

	for {
		if record, ok := w.queue.TryDequeue(); ok {
			w.dispatch(record)
			continue
		}

		if w.stopping.Load() && w.queue.Empty() {
			return nil
		}

		if w.opts.Idle == IdleSpin {
			runtime.Gosched()
			continue
		}
		w.park(timer)
	}
}

// park waits for a push, stop, or the park timeout
func (w *Worker) park(timer *time.Timer) {
	timer.Reset(w.opts.ParkTimeout)
	select {
	case <-w.wake:
	case <-w.done:
	case <-timer.C:
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

// dispatch invokes the sink, containing panics to the offending record
func (w *Worker) dispatch(record []byte) {
	defer func() {
		if r := recover(); r != nil {
			w.sinkPanics.Add(1)
			w.opts.Report("sink panic recovered: %v\n", r)
		}
		w.drained.Add(1)
	}()
	w.sink(record)
}
