package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/codeladder/dashboard/internal/domain"
)

// solvedCacheRepository implements domain.SolvedCache using GORM. It backs
// the CodeChef dashboard, whose feed problems carry no ledger link.
type solvedCacheRepository struct {
	db *gorm.DB
}

// NewSolvedCacheRepository creates a new solved-cache repository
func NewSolvedCacheRepository(db *gorm.DB) domain.SolvedCache {
	return &solvedCacheRepository{db: db}
}

// SolvedSet returns the user's solved marks keyed "CONTEST|CODE"
func (r *solvedCacheRepository) SolvedSet(username string) (map[string]bool, error) {
	var marks []domain.SolvedMark
	result := r.db.Where("username = ?", username).Find(&marks)
	if result.Error != nil {
		return nil, result.Error
	}

	set := make(map[string]bool, len(marks))
	for _, m := range marks {
		set[domain.MarkKey(m.ContestCode, m.ProblemCode)] = true
	}
	return set, nil
}

// Toggle flips the solved mark for one problem cell and returns the new
// state. Insert and delete are the only writes; there is no update path.
func (r *solvedCacheRepository) Toggle(username, contestCode, problemCode string) (bool, error) {
	var mark domain.SolvedMark
	result := r.db.Where(
		"username = ? AND contest_code = ? AND problem_code = ?",
		username, contestCode, problemCode,
	).First(&mark)

	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, result.Error
		}
		mark = domain.SolvedMark{
			Username:    username,
			ContestCode: contestCode,
			ProblemCode: problemCode,
		}
		if err := r.db.Create(&mark).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	if err := r.db.Delete(&mark).Error; err != nil {
		return false, err
	}
	return false, nil
}

// Clear drops every mark the user holds
func (r *solvedCacheRepository) Clear(username string) error {
	return r.db.Where("username = ?", username).Delete(&domain.SolvedMark{}).Error
}
