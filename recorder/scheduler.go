package recorder

import (
	"time"
)

// FlushScheduler calls a flush function periodically in its own goroutine,
// until stopped.
//
// Stopping follows the same pattern as the Broker: Stop sends an empty
// message to a channel with capacity 1, never blocking, and the goroutine
// closes Finished when it has exited. Stop can therefore be called while
// holding locks the flush function needs; only waiting on Finished has to
// happen without them.
type FlushScheduler struct {
	interval time.Duration
	flush    func()
	close    chan struct{}
	finished chan struct{}
}

// StartFlushScheduler starts calling flush every interval.
func StartFlushScheduler(interval time.Duration, flush func()) *FlushScheduler {
	s := &FlushScheduler{
		interval: interval,
		flush:    flush,
		close:    make(chan struct{}, 1),
		finished: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *FlushScheduler) run() {
	defer close(s.finished)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.close:
			return
		case <-ticker.C:
			s.flush()
		}
	}
}

// Stop requests the scheduler to stop. It never blocks; a flush already in
// progress completes.
func (s *FlushScheduler) Stop() {
	TrySend(s.close, struct{}{})
}

// Finished is closed when the scheduler goroutine has exited.
func (s *FlushScheduler) Finished() <-chan struct{} { return s.finished }
