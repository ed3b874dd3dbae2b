package asynclog

import "time"

// TimerSet holds all timers used in processTimers
type TimerSet struct {
	flushTicker     *time.Ticker
	heartbeatTicker *time.Ticker
	flushChan       <-chan time.Time
	heartbeatChan   <-chan time.Time
}

// setupProcessingTimers creates the tickers the current configuration needs.
// A nil channel disables its case in the select loop.
func (l *Logger) setupProcessingTimers() *TimerSet {
	timers := &TimerSet{}
	timers.flushChan = l.setupFlushTimer(timers)
	timers.heartbeatChan = l.setupHeartbeatTimer(timers)
	return timers
}

// closeProcessingTimers stops all active timers
func (l *Logger) closeProcessingTimers(timers *TimerSet) {
	if timers.flushTicker != nil {
		timers.flushTicker.Stop()
	}
	if timers.heartbeatTicker != nil {
		timers.heartbeatTicker.Stop()
	}
}

// setupFlushTimer enables periodic sync when records are held in the write buffer
func (l *Logger) setupFlushTimer(timers *TimerSet) <-chan time.Time {
	c := l.getConfig()
	level, _ := ParseFlushLevel(c.FlushLevel)
	backend, _ := ParseBackendKind(c.Backend)
	if level != FlushBuffered || backend == BackendConsole {
		return nil
	}

	flushInterval := c.FlushIntervalMs
	if flushInterval <= 0 {
		flushInterval = DefaultConfig().FlushIntervalMs
	}
	timers.flushTicker = time.NewTicker(time.Duration(flushInterval) * time.Millisecond)
	return timers.flushTicker.C
}

// setupHeartbeatTimer configures the heartbeat timer if enabled
func (l *Logger) setupHeartbeatTimer(timers *TimerSet) <-chan time.Time {
	c := l.getConfig()
	if c.HeartbeatLevel <= 0 {
		return nil
	}

	intervalS := c.HeartbeatIntervalS
	if intervalS <= 0 {
		intervalS = DefaultConfig().HeartbeatIntervalS
	}
	timers.heartbeatTicker = time.NewTicker(time.Duration(intervalS) * time.Second)
	return timers.heartbeatTicker.C
}
