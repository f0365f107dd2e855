package service

import (
	"time"

	"github.com/bkoyuncu/campus-tickets/internal/broker"
	"github.com/bkoyuncu/campus-tickets/internal/models"
	"github.com/bkoyuncu/campus-tickets/internal/repository"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"go.uber.org/zap"
)

type RoleRequestService struct {
	roleRequestRepo *repository.RoleRequestRepository
	userRepo        *repository.UserRepository
	eventBroker     broker.EventBroker
}

func NewRoleRequestService(
	roleRequestRepo *repository.RoleRequestRepository,
	userRepo *repository.UserRepository,
	eventBroker broker.EventBroker,
) *RoleRequestService {
	return &RoleRequestService{
		roleRequestRepo: roleRequestRepo,
		userRepo:        userRepo,
		eventBroker:     eventBroker,
	}
}

// CreateRequest files a pending organizer petition. One pending request
// per user.
func (s *RoleRequestService) CreateRequest(userID uint) (*models.RoleRequest, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Role != models.RoleStudent {
		return nil, ErrStudentsOnly
	}

	pending, err := s.roleRequestRepo.GetPendingByUser(userID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrPendingRequestExists
	}

	request := &models.RoleRequest{
		UserID: userID,
		Status: models.RoleRequestPending,
	}

	if err := s.roleRequestRepo.CreateRequest(request); err != nil {
		logger.Log.Error("Failed to create role request",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Role request filed",
		zap.Uint("request_id", request.ID),
		zap.Uint("user_id", userID),
	)

	return request, nil
}

func (s *RoleRequestService) ListOwnRequests(userID uint) ([]models.RoleRequest, error) {
	return s.roleRequestRepo.ListByUser(userID)
}

func (s *RoleRequestService) ListPending() ([]models.RoleRequest, error) {
	return s.roleRequestRepo.ListPending()
}

// Decide approves or rejects a pending request. Approval promotes the
// user to organizer in the same transaction as the status change.
func (s *RoleRequestService) Decide(adminID, requestID uint, approve bool) (*models.RoleRequest, error) {
	request, err := s.roleRequestRepo.GetRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	if request.Status != models.RoleRequestPending {
		return nil, ErrRequestAlreadyDecided
	}

	now := time.Now()
	if approve {
		request.Status = models.RoleRequestApproved
	} else {
		request.Status = models.RoleRequestRejected
	}
	request.ReviewedBy = &adminID
	request.ReviewedAt = &now

	if err := s.roleRequestRepo.Decide(request, approve); err != nil {
		logger.Log.Error("Failed to decide role request",
			zap.Uint("request_id", requestID),
			zap.Uint("admin_id", adminID),
			zap.Error(err),
		)
		return nil, err
	}

	if s.eventBroker != nil && request.User.Email != "" {
		if err := s.eventBroker.PublishNotification(broker.Notification{
			Kind:          broker.NotifyRoleRequestDecided,
			Recipient:     request.User.Email,
			RecipientName: request.User.Name,
			Approved:      approve,
		}); err != nil {
			logger.Log.Warn("Failed to publish role request notification",
				zap.Uint("request_id", requestID),
				zap.Error(err),
			)
		}
	}

	logger.Log.Info("Role request decided",
		zap.Uint("request_id", requestID),
		zap.Uint("admin_id", adminID),
		zap.Bool("approved", approve),
	)

	return request, nil
}
