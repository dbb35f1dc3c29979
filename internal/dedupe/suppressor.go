// ABOUTME: Thread-safe TTL window for suppressing repeated identical questions.
// ABOUTME: Used by the ask orchestrator to reject agent retries that would double-post.

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// entry stores when a question was last posted and its position in the
// insertion-order list.
type entry struct {
	postedAt time.Time
	element  *list.Element
}

// Suppressor tracks recently posted question texts inside a TTL window so a
// retried tool call with identical text can be rejected before it posts a
// duplicate into the channel. Bounded in size; the oldest question is
// evicted in O(1) when the bound is hit.
type Suppressor struct {
	mu      sync.Mutex
	seen    map[string]*entry
	order   *list.List // question keys, oldest at front
	window  time.Duration
	maxSize int
}

// New creates a Suppressor covering the given window and holding at most
// maxSize distinct questions.
func New(window time.Duration, maxSize int) *Suppressor {
	return &Suppressor{
		seen:    make(map[string]*entry),
		order:   list.New(),
		window:  window,
		maxSize: maxSize,
	}
}

// CheckAndMark atomically reports whether the question was already posted
// inside the window and, if not, records it as posted now. The single
// locked check-then-insert prevents two racing asks from both passing.
func (s *Suppressor) CheckAndMark(question string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if e, ok := s.seen[question]; ok && now.Sub(e.postedAt) < s.window {
		return true
	}
	s.markLocked(question, now)
	return false
}

// markLocked records the question. Must be called with mu held.
func (s *Suppressor) markLocked(question string, now time.Time) {
	if e, ok := s.seen[question]; ok {
		e.postedAt = now
		s.order.MoveToBack(e.element)
		return
	}

	if len(s.seen) >= s.maxSize {
		s.evictOldest()
	}

	elem := s.order.PushBack(question)
	s.seen[question] = &entry{postedAt: now, element: elem}
}

// evictOldest drops the oldest question. Must be called with mu held.
func (s *Suppressor) evictOldest() {
	front := s.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	s.order.Remove(front)
	delete(s.seen, key)
}
