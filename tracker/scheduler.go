package tracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/kbukum/peertrack/logger"
)

// scheduler drives the tracker's periodic poll and its one-shot reconnect
// callbacks on background goroutines. It is built on a clock.Clock so tests
// can substitute a mock clock.
type scheduler struct {
	clk clock.Clock
	log *logger.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
}

func newScheduler(clk clock.Clock, log *logger.Logger) *scheduler {
	return &scheduler{clk: clk, log: log}
}

func (s *scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.stopCh = make(chan struct{})
	s.running = true
}

// Stop prevents future periodic runs and releases queued delayed callbacks.
// It does not wait for an in-flight task to return; tasks observing stale
// state after Stop must detect that themselves.
func (s *scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
}

// RunPeriodically runs task once immediately and then on every interval
// tick until the scheduler is stopped.
func (s *scheduler) RunPeriodically(task func(), interval time.Duration) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stop := s.stopCh
	s.mu.Unlock()

	ticker := s.clk.Ticker(interval)
	go func() {
		defer ticker.Stop()
		s.safely(task)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.safely(task)
			}
		}
	}()
}

// AfterDelay schedules task to run once after delay. The timer is armed
// before AfterDelay returns. The timer always runs to completion; a task
// whose scheduler was stopped in the meantime is dropped when it fires.
func (s *scheduler) AfterDelay(task func(), delay time.Duration) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stop := s.stopCh
	s.mu.Unlock()

	timer := s.clk.Timer(delay)
	go func() {
		<-timer.C
		select {
		case <-stop:
			return
		default:
		}
		s.safely(task)
	}()
}

// safely contains task panics so one bad cycle cannot kill the scheduler
// goroutine or suppress future runs.
func (s *scheduler) safely(task func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduled task panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
		}
	}()
	task()
}
