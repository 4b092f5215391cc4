package engine

import (
	"sort"
	"sync"
	"time"
)

// Scheduler holds deferred work keyed by owner, fired by explicit clock
// advancement rather than timers. The engine drains it on day-passed
// facts, which keeps deferred work deterministic and snapshot-friendly.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]*task
}

type task struct {
	key string
	at  time.Time
	fn  func()
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[string]*task),
	}
}

// Schedule registers fn to run once the clock reaches at. A second
// schedule under the same key replaces the first.
func (s *Scheduler) Schedule(key string, at time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[key] = &task{key: key, at: at, fn: fn}
}

// Cancel removes a pending task. Returns false when the key was not
// pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[key]; !ok {
		return false
	}
	delete(s.tasks, key)
	return true
}

// Reset drops every pending task.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[string]*task)
}

// Pending returns the keys of all scheduled tasks, sorted for stable
// inspection.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.tasks))
	for k := range s.tasks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dueAt returns the due time of a pending task, or the zero time when
// the key is not pending.
func (s *Scheduler) dueAt(key string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[key]; ok {
		return t.at
	}
	return time.Time{}
}

// FireDue runs every task whose time has come, in due order, and returns
// how many fired. Tasks are removed before their fn runs so a task may
// reschedule itself.
func (s *Scheduler) FireDue(now time.Time) int {
	s.mu.Lock()
	var due []*task
	for _, t := range s.tasks {
		if !t.at.After(now) {
			due = append(due, t)
		}
	}
	for _, t := range due {
		delete(s.tasks, t.key)
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if !due[i].at.Equal(due[j].at) {
			return due[i].at.Before(due[j].at)
		}
		return due[i].key < due[j].key
	})
	for _, t := range due {
		t.fn()
	}
	return len(due)
}
