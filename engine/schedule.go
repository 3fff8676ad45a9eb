package engine

import (
	"sync"
	"time"

	"github.com/gammazero/deque"

	"lautenbacher.net/gohaptics/event"
)

// scheduledPulse is one pulse stamped with the wall-clock time it is due.
type scheduledPulse struct {
	due   time.Time
	pulse event.Pulse
}

// scheduler turns submitted patterns into a due-time ordered stream of
// render calls. All concrete engines share it; they only differ in the
// render callback. Rendering happens on a single runner goroutine, which
// also serializes access to the one physical actuator.
type scheduler struct {
	mu       sync.Mutex
	queue    deque.Deque[scheduledPulse]
	wake     chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	render   func(event.Pulse)
	running  bool
}

func newScheduler(render func(event.Pulse)) *scheduler {
	return &scheduler{
		render: render,
		wake:   make(chan struct{}, 1),
	}
}

func (s *scheduler) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.wg.Add(1)
	go s.runner(s.stopChan)
}

func (s *scheduler) stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	s.queue.Clear()
	s.mu.Unlock()
}

// submit queues the pulses relative to now plus the given offset. Pulses
// are inserted in due-time order, so interleaved submissions still render
// in timeline order.
func (s *scheduler) submit(pulses []event.Pulse, at time.Duration) {
	if len(pulses) == 0 {
		return
	}
	now := time.Now()

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	for _, p := range pulses {
		sp := scheduledPulse{due: now.Add(at + p.RelativeTime), pulse: p}
		idx := s.queue.Len()
		for i := 0; i < s.queue.Len(); i++ {
			if s.queue.At(i).due.After(sp.due) {
				idx = i
				break
			}
		}
		s.queue.Insert(idx, sp)
	}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *scheduler) runner(stopChan chan struct{}) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		if s.queue.Len() == 0 {
			s.mu.Unlock()
			select {
			case <-stopChan:
				return
			case <-s.wake:
				continue
			}
		}
		next := s.queue.Front()
		if wait := time.Until(next.due); wait > 0 {
			s.mu.Unlock()
			select {
			case <-stopChan:
				return
			case <-s.wake:
				// New submission may be due earlier; re-evaluate.
				continue
			case <-time.After(wait):
				continue
			}
		}
		s.queue.PopFront()
		s.mu.Unlock()

		s.render(next.pulse)
	}
}
