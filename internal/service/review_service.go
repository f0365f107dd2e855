package service

import (
	"errors"

	"github.com/bkoyuncu/campus-tickets/internal/models"
	"github.com/bkoyuncu/campus-tickets/internal/repository"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"go.uber.org/zap"
)

type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	eventRepo  *repository.EventRepository
	userRepo   *repository.UserRepository
}

func NewReviewService(
	reviewRepo *repository.ReviewRepository,
	eventRepo *repository.EventRepository,
	userRepo *repository.UserRepository,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		eventRepo:  eventRepo,
		userRepo:   userRepo,
	}
}

// ReviewWithAuthor joins a review with its author's display name.
type ReviewWithAuthor struct {
	models.Review
	AuthorName     string `json:"author_name"`
	AuthorSurname  string `json:"author_surname"`
	AuthorUsername string `json:"author_username"`
}

func (s *ReviewService) ListEventReviews(eventID uint) ([]ReviewWithAuthor, error) {
	event, err := s.eventRepo.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	reviews, err := s.reviewRepo.ListByEvent(eventID)
	if err != nil {
		return nil, err
	}

	result := make([]ReviewWithAuthor, 0, len(reviews))
	for _, r := range reviews {
		result = append(result, ReviewWithAuthor{
			Review:         r,
			AuthorName:     r.User.Name,
			AuthorSurname:  r.User.Surname,
			AuthorUsername: r.User.Username,
		})
	}
	return result, nil
}

// CreateReview enforces: students only, never the event's own
// organizer, one review per (user, event), rating 1-5.
func (s *ReviewService) CreateReview(userID, eventID uint, text string, rating int) (*models.Review, error) {
	if err := validateReviewInput(text, rating); err != nil {
		return nil, err
	}

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

	event, err := s.eventRepo.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.OrganizerID == userID {
		return nil, ErrOwnEventReview
	}

	existing, err := s.reviewRepo.GetByUserAndEvent(userID, eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateReview
	}

	review := &models.Review{
		UserID:  userID,
		EventID: eventID,
		Text:    text,
		Rating:  rating,
	}

	if err := s.reviewRepo.CreateReview(review); err != nil {
		logger.Log.Error("Failed to create review",
			zap.Uint("user_id", userID),
			zap.Uint("event_id", eventID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Review created",
		zap.Uint("review_id", review.ID),
		zap.Uint("user_id", userID),
		zap.Uint("event_id", eventID),
		zap.Int("rating", rating),
	)

	return review, nil
}

func (s *ReviewService) UpdateReview(userID, reviewID uint, text string, rating int) (*models.Review, error) {
	if err := validateReviewInput(text, rating); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetReviewByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	if review.UserID != userID {
		return nil, ErrNotReviewAuthor
	}

	review.Text = text
	review.Rating = rating

	if err := s.reviewRepo.UpdateReview(review); err != nil {
		return nil, err
	}

	logger.Log.Info("Review updated",
		zap.Uint("review_id", review.ID),
		zap.Uint("user_id", userID),
	)

	return review, nil
}

func (s *ReviewService) DeleteReview(userID, reviewID uint) error {
	review, err := s.reviewRepo.GetReviewByID(reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrReviewNotFound
	}
	if review.UserID != userID {
		return ErrNotReviewAuthor
	}

	if err := s.reviewRepo.DeleteReview(reviewID); err != nil {
		return err
	}

	logger.Log.Info("Review deleted",
		zap.Uint("review_id", reviewID),
		zap.Uint("user_id", userID),
	)

	return nil
}

func validateReviewInput(text string, rating int) error {
	if text == "" {
		return errors.New("review text is required")
	}
	if rating < 1 || rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	return nil
}
