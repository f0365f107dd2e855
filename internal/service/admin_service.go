package service

import (
	"github.com/bkoyuncu/campus-tickets/internal/models"
	"github.com/bkoyuncu/campus-tickets/internal/repository"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"go.uber.org/zap"
)

type AdminService struct {
	userRepo        *repository.UserRepository
	eventRepo       *repository.EventRepository
	reservationRepo *repository.ReservationRepository
	roleRequestRepo *repository.RoleRequestRepository
	sessionRepo     *repository.SessionRepository
}

func NewAdminService(
	userRepo *repository.UserRepository,
	eventRepo *repository.EventRepository,
	reservationRepo *repository.ReservationRepository,
	roleRequestRepo *repository.RoleRequestRepository,
	sessionRepo *repository.SessionRepository,
) *AdminService {
	return &AdminService{
		userRepo:        userRepo,
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
		roleRequestRepo: roleRequestRepo,
		sessionRepo:     sessionRepo,
	}
}

// Dashboard aggregates platform-wide counts for the admin landing page.
type Dashboard struct {
	Users               int64 `json:"users"`
	Events              int64 `json:"events"`
	Reservations        int64 `json:"reservations"`
	PendingRoleRequests int64 `json:"pending_role_requests"`
}

func (s *AdminService) GetDashboard() (*Dashboard, error) {
	users, err := s.userRepo.CountUsers()
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.CountEvents()
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservationRepo.CountReservations()
	if err != nil {
		return nil, err
	}
	pending, err := s.roleRequestRepo.CountPending()
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Users:               users,
		Events:              events,
		Reservations:        reservations,
		PendingRoleRequests: pending,
	}, nil
}

// GetAllUsers returns active users; deactivated accounts live in the
// deleted listing until restored.
func (s *AdminService) GetAllUsers() ([]*models.User, error) {
	return s.userRepo.GetAllUsers()
}

// GetDeletedUsers returns soft-deleted users for the restore workflow.
func (s *AdminService) GetDeletedUsers() ([]*models.User, error) {
	return s.userRepo.GetDeletedUsers()
}

// SoftDeleteUser marks a user deleted and drops their session so the
// account cannot be used while deactivated.
func (s *AdminService) SoftDeleteUser(adminID, userID uint) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.SoftDeleteUser(userID); err != nil {
		logger.Log.Error("Failed to soft delete user",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	if err := s.sessionRepo.DeleteByUserID(userID); err != nil {
		logger.Log.Warn("Failed to drop session of deleted user",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}

	logger.Log.Info("User soft-deleted",
		zap.Uint("user_id", userID),
		zap.Uint("admin_id", adminID),
	)

	return nil
}

// RestoreUser clears the deletion timestamp; the user reappears with
// the same id.
func (s *AdminService) RestoreUser(adminID, userID uint) error {
	user, err := s.userRepo.GetUserByIDUnscoped(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.RestoreUser(userID); err != nil {
		logger.Log.Error("Failed to restore user",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("User restored",
		zap.Uint("user_id", userID),
		zap.Uint("admin_id", adminID),
	)

	return nil
}
