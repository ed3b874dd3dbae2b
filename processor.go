package asynclog

// processTimers runs periodic work beside the worker pool: syncing buffered
// output and emitting heartbeat records. It exits when stop is closed.
func (l *Logger) processTimers(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer l.state.ProcessorExited.Store(true)

	timers := l.setupProcessingTimers()
	defer l.closeProcessingTimers(timers)

	// Send initial heartbeats immediately instead of waiting for first tick
	if l.getConfig().HeartbeatLevel > 0 {
		l.handleHeartbeat()
	}

	for {
		select {
		case <-stop:
			return

		case <-timers.flushChan:
			l.handleFlushTick()

		case <-timers.heartbeatChan:
			l.handleHeartbeat()
		}
	}
}

// handleFlushTick syncs buffered records to disk
func (l *Logger) handleFlushTick() {
	b := l.getBackend()
	if b == nil {
		return
	}
	if err := b.Sync(); err != nil {
		l.internalLog("periodic sync failed: %v\n", err)
	}
}
