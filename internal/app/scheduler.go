package app

import (
	"sync"
	"time"
)

// Timeouts holds at most one pending question deadline per room.
type Timeouts interface {
	// Arm replaces any pending deadline for key. fire receives the token Arm returned.
	Arm(key string, after time.Duration, fire func(token uint64)) uint64
	// Cancel drops the pending deadline for key. Safe to call repeatedly.
	Cancel(key string)
	// Claim consumes the deadline for key if token is still the live one.
	Claim(key string, token uint64) bool
}

// TimeoutScheduler implements Timeouts with time.AfterFunc.
type TimeoutScheduler struct {
	mu    sync.Mutex
	seq   uint64
	slots map[string]timeoutSlot
}

type timeoutSlot struct {
	token uint64
	timer *time.Timer
}

func NewTimeoutScheduler() *TimeoutScheduler {
	return &TimeoutScheduler{slots: make(map[string]timeoutSlot)}
}

func (s *TimeoutScheduler) Arm(key string, after time.Duration, fire func(token uint64)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot, ok := s.slots[key]; ok {
		slot.timer.Stop()
	}
	s.seq++
	token := s.seq
	s.slots[key] = timeoutSlot{
		token: token,
		timer: time.AfterFunc(after, func() { fire(token) }),
	}
	return token
}

func (s *TimeoutScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.slots[key]; ok {
		slot.timer.Stop()
		delete(s.slots, key)
	}
}

func (s *TimeoutScheduler) Claim(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[key]
	if !ok || slot.token != token {
		return false
	}
	delete(s.slots, key)
	return true
}

// Pending reports whether key has a live deadline.
func (s *TimeoutScheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.slots[key]
	return ok
}
