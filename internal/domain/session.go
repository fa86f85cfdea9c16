package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Session identifies the current user and carries the upstream ledger token
// used when calling the ledger on their behalf. It is threaded explicitly
// through services instead of being read from ambient storage.
type Session struct {
	Username      string
	UpstreamToken string
}

// SessionRecord is the persisted form of a session.
type SessionRecord struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username      string    `json:"username" gorm:"not null;index"`
	UpstreamToken string    `json:"-" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}

// TableName specifies the table name for GORM
func (SessionRecord) TableName() string {
	return "sessions"
}

// SessionRepository defines the interface for session persistence
type SessionRepository interface {
	Create(session *SessionRecord) error
	FindByID(id uuid.UUID) (*SessionRecord, error)
	Touch(id uuid.UUID, at time.Time) error
	Delete(id uuid.UUID) error
}

// SolvedMark is one locally tracked solved problem for judges whose feeds
// carry no ledger link (CodeChef). This replaces the browser-local solved
// map with a per-user table.
type SolvedMark struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username    string    `json:"username" gorm:"not null;uniqueIndex:idx_solved_marks_key"`
	ContestCode string    `json:"contest" gorm:"not null;uniqueIndex:idx_solved_marks_key"`
	ProblemCode string    `json:"code" gorm:"not null;uniqueIndex:idx_solved_marks_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (SolvedMark) TableName() string {
	return "solved_marks"
}

// MarkKey is the map key for a cached solved mark, "CONTEST|CODE".
func MarkKey(contestCode, problemCode string) string {
	return contestCode + "|" + problemCode
}

// SolvedCache is the injected port for the fallback solved store. The gorm
// repository implements it in production; tests use an in-memory fake.
type SolvedCache interface {
	SolvedSet(username string) (map[string]bool, error)
	Toggle(username, contestCode, problemCode string) (bool, error)
	Clear(username string) error
}

// LedgerCacheEntry mirrors one ledger entry locally. The mirror is replaced
// on every successful ledger fetch and read back only when the ledger is
// unreachable.
type LedgerCacheEntry struct {
	QuestionID string         `json:"question_id" gorm:"primary_key"`
	Title      string         `json:"title" gorm:"not null"`
	Link       string         `json:"link" gorm:"index"`
	Tags       pq.StringArray `json:"tags" gorm:"type:text[]"`
	SolvedBy   pq.StringArray `json:"solved_by" gorm:"type:text[]"`
	FetchedAt  time.Time      `json:"fetched_at"`
}

// TableName specifies the table name for GORM
func (LedgerCacheEntry) TableName() string {
	return "ledger_cache"
}

// ToEntry converts a mirrored row back to a ledger entry.
func (c *LedgerCacheEntry) ToEntry() LedgerEntry {
	return LedgerEntry{
		QuestionID: c.QuestionID,
		Title:      c.Title,
		Link:       c.Link,
		Tags:       c.Tags,
		SolvedBy:   c.SolvedBy,
	}
}

// LedgerMirror defines the interface for the local ledger fallback store.
type LedgerMirror interface {
	ReplaceAll(entries []LedgerEntry, fetchedAt time.Time) error
	FindAll() ([]LedgerEntry, error)
}
