package server

import (
	"context"
	"time"
)

// pollUntil checks a condition at a fixed interval until it holds, the
// attempt ceiling is reached, or ctx is cancelled. The check must be a
// side-effect-free read: it may run many times before succeeding. Reaching
// the ceiling yields errSyncTimeout, which callers treat as a normal wait
// outcome rather than a failure.
func pollUntil[T any](ctx context.Context, interval time.Duration, maxAttempts int, check func() (T, bool)) (T, error) {
	var zero T
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if value, done := check(); done {
			return value, nil
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-ticker.C:
		}
	}
	if value, done := check(); done {
		return value, nil
	}
	return zero, errSyncTimeout
}

// Waiters are the background polling loops (co-submission watchdog, ready
// barrier, end-game expiry, vote resolution). Each is registered under a
// room-scoped key so leaving or dissolving a room tears its waits down.

func (s *Server) startWaiter(key string, run func(ctx context.Context)) bool {
	ctx, cancel := context.WithCancel(context.Background())
	s.waitersMu.Lock()
	if _, exists := s.waiters[key]; exists {
		s.waitersMu.Unlock()
		cancel()
		return false
	}
	s.waiters[key] = cancel
	s.waitersMu.Unlock()
	go func() {
		defer s.clearWaiter(key)
		run(ctx)
	}()
	return true
}

func (s *Server) clearWaiter(key string) {
	s.waitersMu.Lock()
	cancel, ok := s.waiters[key]
	delete(s.waiters, key)
	s.waitersMu.Unlock()
	if ok {
		cancel()
	}
}

func (s *Server) cancelRoomWaiters(roomID string) {
	prefix := roomID + ":"
	s.waitersMu.Lock()
	var cancels []func()
	for key, cancel := range s.waiters {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			cancels = append(cancels, cancel)
			delete(s.waiters, key)
		}
	}
	s.waitersMu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}
