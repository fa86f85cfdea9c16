package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/codeladder/dashboard/internal/domain"
)

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}

// fakeSolvedCache is an in-memory SolvedCache for tests
type fakeSolvedCache struct {
	mu    sync.Mutex
	marks map[string]map[string]bool
	err   error
}

func newFakeSolvedCache() *fakeSolvedCache {
	return &fakeSolvedCache{marks: make(map[string]map[string]bool)}
}

func (f *fakeSolvedCache) SolvedSet(username string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]bool, len(f.marks[username]))
	for k, v := range f.marks[username] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSolvedCache) Toggle(username, contestCode, problemCode string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.marks[username] == nil {
		f.marks[username] = make(map[string]bool)
	}
	key := domain.MarkKey(contestCode, problemCode)
	if f.marks[username][key] {
		delete(f.marks[username], key)
		return false, nil
	}
	f.marks[username][key] = true
	return true, nil
}

func (f *fakeSolvedCache) Clear(username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.marks, username)
	return nil
}

// fakeLedgerMirror is an in-memory LedgerMirror for tests
type fakeLedgerMirror struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
	stored  bool
}

func (f *fakeLedgerMirror) ReplaceAll(entries []domain.LedgerEntry, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append([]domain.LedgerEntry(nil), entries...)
	f.stored = true
	return nil
}

func (f *fakeLedgerMirror) FindAll() ([]domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.LedgerEntry(nil), f.entries...), nil
}

// fakeSessionRepo is an in-memory SessionRepository for tests
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.SessionRecord
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*domain.SessionRecord)}
}

func (f *fakeSessionRepo) Create(session *domain.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) FindByID(id uuid.UUID) (*domain.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeSessionRepo) Touch(id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	record.LastSeenAt = at
	return nil
}

func (f *fakeSessionRepo) Delete(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

var errBroken = errors.New("broken")
