package feed

import (
	"sync"
	"time"

	"github.com/codeladder/dashboard/internal/domain"
)

// Snapshot is one immutable view of all judge feeds. Services read whole
// snapshots and never mutate them, so a refresh of one source can never
// corrupt state derived from another.
type Snapshot struct {
	Codeforces   []CodeforcesProblem
	ContestNames map[int]string
	CodeChef     []domain.ContestRecord
	LeetCode     []domain.ContestRecord
	LoadedAt     time.Time
}

// Store holds the current snapshot and swaps it atomically on refresh.
type Store struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewStore creates an empty snapshot store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the active snapshot, or ErrFeedNotLoaded before the first
// successful load.
func (s *Store) Current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, domain.ErrFeedNotLoaded
	}
	return s.snap, nil
}

// Swap installs a new snapshot. The previous one stays valid for readers
// that already hold it.
func (s *Store) Swap(snap *Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Age returns how old the active snapshot is; zero when nothing is loaded.
func (s *Store) Age(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return 0
	}
	return now.Sub(s.snap.LoadedAt)
}
