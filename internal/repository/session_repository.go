package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codeladder/dashboard/internal/domain"
)

// sessionRepository implements domain.SessionRepository using GORM
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) domain.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session row
func (r *sessionRepository) Create(session *domain.SessionRecord) error {
	return r.db.Create(session).Error
}

// FindByID finds a session by its ID
func (r *sessionRepository) FindByID(id uuid.UUID) (*domain.SessionRecord, error) {
	var session domain.SessionRecord
	result := r.db.Where("id = ?", id).First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, result.Error
	}
	return &session, nil
}

// Touch records session activity
func (r *sessionRepository) Touch(id uuid.UUID, at time.Time) error {
	return r.db.Model(&domain.SessionRecord{}).
		Where("id = ?", id).
		Update("last_seen_at", at).Error
}

// Delete removes a session (logout)
func (r *sessionRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&domain.SessionRecord{}, "id = ?", id).Error
}
