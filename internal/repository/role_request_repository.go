package repository

import (
	"errors"

	"github.com/bkoyuncu/campus-tickets/internal/models"
	"gorm.io/gorm"
)

type RoleRequestRepository struct {
	db *gorm.DB
}

func NewRoleRequestRepository(db *gorm.DB) *RoleRequestRepository {
	return &RoleRequestRepository{db: db}
}

func (r *RoleRequestRepository) CreateRequest(req *models.RoleRequest) error {
	return r.db.Create(req).Error
}

func (r *RoleRequestRepository) GetRequestByID(id uint) (*models.RoleRequest, error) {
	var req models.RoleRequest
	err := r.db.Preload("User").First(&req, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &req, nil
}

// GetPendingByUser enforces the one-pending-request-per-user invariant.
func (r *RoleRequestRepository) GetPendingByUser(userID uint) (*models.RoleRequest, error) {
	var req models.RoleRequest
	err := r.db.Where("user_id = ? AND status = ?", userID, models.RoleRequestPending).First(&req).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &req, nil
}

func (r *RoleRequestRepository) ListByUser(userID uint) ([]models.RoleRequest, error) {
	var requests []models.RoleRequest
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *RoleRequestRepository) ListPending() ([]models.RoleRequest, error) {
	var requests []models.RoleRequest
	err := r.db.Preload("User").
		Where("status = ?", models.RoleRequestPending).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

func (r *RoleRequestRepository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&models.RoleRequest{}).
		Where("status = ?", models.RoleRequestPending).
		Count(&count).Error
	return count, err
}

// Decide marks the request approved or rejected and, on approval,
// promotes the requesting user in the same transaction.
func (r *RoleRequestRepository) Decide(req *models.RoleRequest, approve bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Save(req).Error; err != nil {
			return err
		}
		if !approve {
			return nil
		}
		return tx.Model(&models.User{}).
			Where("id = ?", req.UserID).
			Updates(map[string]interface{}{
				"role":         models.RoleOrganizer,
				"is_organizer": true,
			}).Error
	})
}
