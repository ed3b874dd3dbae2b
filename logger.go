package asynclog

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/asynclog/formatter"
)

// Logger is the front door of the delivery path: producers push records,
// a worker pool drains them into the configured backend
type Logger struct {
	currentConfig atomic.Value // stores *Config
	state         State
	initMu        sync.Mutex
	formatter     atomic.Pointer[formatter.Formatter]
	retired       retiredStats
	bufPool       sync.Pool

	// Timer goroutine control, guarded by initMu
	processorStop chan struct{}
	processorDone chan struct{}
}

// NewLogger creates a new Logger instance with default settings
func NewLogger() *Logger {
	l := &Logger{}

	l.currentConfig.Store(DefaultConfig())
	l.formatter.Store(newFormatter(DefaultConfig()))

	l.state.ProcessorExited.Store(true)
	l.state.LoggerStartTime.Store(time.Now())

	l.bufPool.New = func() any {
		b := make([]byte, 0, 512)
		return &b
	}

	return l
}

// ApplyConfig applies a validated configuration to the logger.
// A running logger is drained into the old backend and restarted on the new one.
func (l *Logger) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	return l.applyConfig(cfg.Clone())
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// Start spawns the worker pool. Safe to call multiple times.
// Returns error if logger is not initialized.
func (l *Logger) Start() error {
	if !l.state.IsInitialized.Load() {
		return fmtErrorf("logger not initialized, call ApplyConfig first")
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	l.start()
	return nil
}

// Stop halts the worker pool after it drains the queue. Can be restarted with Start.
// Without a timeout Stop waits until every worker has exited.
// Returns nil if already stopped.
func (l *Logger) Stop(timeout ...time.Duration) error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	return l.stop(timeout...)
}

// Shutdown stops the logger and closes the backend, flushing any open file.
// Subsequent calls return nil.
func (l *Logger) Shutdown(timeout ...time.Duration) error {
	if !l.state.ShutdownCalled.CompareAndSwap(false, true) {
		return nil
	}

	l.state.LoggerDisabled.Store(true)

	if !l.state.IsInitialized.Load() {
		l.state.ShutdownCalled.Store(false)
		l.state.LoggerDisabled.Store(false)
		return nil
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	finalErr := l.stop(timeout...)

	if ref := l.state.ActiveBackend.Load(); ref != nil {
		if err := ref.b.Close(); err != nil {
			finalErr = combineErrors(finalErr, fmtErrorf("failed to close backend during shutdown: %w", err))
		}
	}

	l.state.IsInitialized.Store(false)
	return finalErr
}

// Flush waits until every pushed record has reached the backend, then syncs it to disk
func (l *Logger) Flush(timeout time.Duration) error {
	l.state.flushMutex.Lock()
	defer l.state.flushMutex.Unlock()

	if !l.state.IsInitialized.Load() || l.state.ShutdownCalled.Load() {
		return fmtErrorf("logger not initialized or already shut down")
	}
	if !l.state.Started.Load() {
		return fmtErrorf("logger not started")
	}

	deadline := time.Now().Add(timeout)
	for {
		w := l.state.ActiveWorker.Load()
		if w == nil || w.Pending() <= 0 {
			break
		}
		if !time.Now().Before(deadline) {
			return fmtErrorf("timeout waiting for queue to drain (%v), %d records pending", timeout, w.Pending())
		}
		time.Sleep(minWaitTime)
	}

	if b := l.getBackend(); b != nil {
		if err := b.Sync(); err != nil {
			return fmtErrorf("failed to sync backend: %w", err)
		}
	}
	return nil
}

// Push enqueues a copy of data for delivery. It never blocks and never fails;
// records pushed while the logger is stopped or disabled are counted as dropped.
func (l *Logger) Push(data []byte) {
	if l.state.LoggerDisabled.Load() {
		l.state.DroppedLogs.Add(1)
		return
	}
	w := l.state.ActiveWorker.Load()
	if w == nil {
		l.state.DroppedLogs.Add(1)
		return
	}
	if !w.Push(data) {
		l.state.DroppedLogs.Add(1)
	}
}

// Write implements io.Writer over Push. Each call becomes one record.
func (l *Logger) Write(p []byte) (int, error) {
	l.Push(p)
	return len(p), nil
}

// Backend returns the active backend, nil before ApplyConfig
func (l *Logger) Backend() Backend {
	return l.getBackend()
}

// getConfig returns the current configuration (thread-safe)
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

func (l *Logger) getBackend() Backend {
	if ref := l.state.ActiveBackend.Load(); ref != nil {
		return ref.b
	}
	return nil
}

// applyConfig is the internal implementation for applying configuration, assuming initMu is held
func (l *Logger) applyConfig(cfg *Config) error {
	wasStarted := l.state.Started.Load()

	if wasStarted {
		if err := l.stop(); err != nil {
			return fmtErrorf("failed to stop workers for restart: %w", err)
		}
	}

	backend, err := NewBackend(cfg, l.internalLog)
	if err != nil {
		if wasStarted {
			l.start()
		}
		return fmtErrorf("failed to create backend: %w", err)
	}

	if old := l.state.ActiveBackend.Swap(&backendRef{b: backend}); old != nil {
		l.retired.addBackend(old.b.Stats())
		if err := old.b.Close(); err != nil {
			l.internalLog("warning - failed to close previous backend: %v\n", err)
		}
	}

	l.currentConfig.Store(cfg)
	l.formatter.Store(newFormatter(cfg))

	l.state.IsInitialized.Store(true)
	l.state.ShutdownCalled.Store(false)
	l.state.LoggerDisabled.Store(false)

	if wasStarted {
		l.start()
	}
	return nil
}

// start spawns workers and the timer goroutine, assuming initMu is held
func (l *Logger) start() {
	if !l.state.Started.CompareAndSwap(false, true) {
		return
	}

	cfg := l.getConfig()
	backend := l.getBackend()

	opts := cfg.workerOptions()
	opts.Report = l.internalLog
	l.state.ActiveWorker.Store(NewWorker(backend.Flush, opts))

	l.processorStop = make(chan struct{})
	l.processorDone = make(chan struct{})
	l.state.ProcessorExited.Store(false)
	go l.processTimers(l.processorStop, l.processorDone)
}

// stop joins the timer goroutine and workers, assuming initMu is held
func (l *Logger) stop(timeout ...time.Duration) error {
	if !l.state.Started.CompareAndSwap(true, false) {
		return nil
	}

	close(l.processorStop)
	<-l.processorDone

	w := l.retired.detachWorker(&l.state.ActiveWorker)
	if w == nil {
		return nil
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		l.retired.retireWorker(w)
		close(stopped)
	}()

	var err error
	if len(timeout) > 0 && timeout[0] > 0 {
		select {
		case <-stopped:
		case <-time.After(timeout[0]):
			err = fmtErrorf("workers did not exit within timeout (%v)", timeout[0])
		}
	} else {
		<-stopped
	}

	if b := l.getBackend(); b != nil {
		if errSync := b.Sync(); errSync != nil {
			l.internalLog("warning - failed to sync backend on stop: %v\n", errSync)
		}
	}
	return err
}

// newFormatter builds the record formatter for cfg
func newFormatter(cfg *Config) *formatter.Formatter {
	return formatter.New().
		Type(cfg.Format).
		TimestampFormat(cfg.TimestampFormat).
		ShowTimestamp(cfg.ShowTimestamp).
		ShowLevel(cfg.ShowLevel)
}
