package repository

import (
	"errors"

	"github.com/bkoyuncu/campus-tickets/internal/models"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Replace deletes any prior session rows for the user and inserts the
// new one, keeping the one-row-per-user invariant.
func (r *SessionRepository) Replace(session *models.Session) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", session.UserID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Create(session).Error
	})
}

func (r *SessionRepository) GetByUserID(userID uint) (*models.Session, error) {
	var session models.Session
	err := r.db.Where("user_id = ?", userID).First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

// DeleteByUserID removes the user's session row. Deleting a missing row
// is not an error; logout is idempotent.
func (r *SessionRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

// Invalidate flips the validity flag without removing the row.
func (r *SessionRepository) Invalidate(userID uint) error {
	return r.db.Model(&models.Session{}).Where("user_id = ?", userID).Update("valid", false).Error
}
