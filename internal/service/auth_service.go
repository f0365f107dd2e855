package service

import (
	"errors"
	"regexp"
	"time"

	"github.com/bkoyuncu/campus-tickets/internal/models"
	"github.com/bkoyuncu/campus-tickets/internal/repository"
	"github.com/bkoyuncu/campus-tickets/internal/utils"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type AuthService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	jwtSecret   string
	jwtExpiry   time.Duration
	sessionTTL  time.Duration
}

func NewAuthService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	jwtSecret string,
	jwtExpiry time.Duration,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtSecret:   jwtSecret,
		jwtExpiry:   jwtExpiry,
		sessionTTL:  sessionTTL,
	}
}

func (s *AuthService) Register(name, surname, email, username, password string, role models.Role) (*models.User, error) {
	start := time.Now()

	logger.Log.Debug("Processing user registration",
		zap.String("username", username),
		zap.String("email", email),
	)

	if err := s.validateRegisterInput(name, surname, email, username, password, role); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}
	if existingUser != nil {
		return nil, ErrEmailAlreadyExists
	}

	existingUser, err = s.userRepo.GetUserByUsername(username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}
	if existingUser != nil {
		return nil, ErrUsernameAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password",
			zap.Error(err),
		)
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Surname:      surname,
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		IsOrganizer:  role == models.RoleOrganizer,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		logger.Log.Error("Failed to create user in database",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User registered successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", username),
		zap.String("role", string(role)),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, nil
}

// Login authenticates by email or username. A successful login replaces
// any existing session row for the user, superseding earlier sessions.
func (s *AuthService) Login(identifier, password string) (*models.User, string, error) {
	start := time.Now()

	logger.Log.Debug("Processing user login",
		zap.String("identifier", identifier),
	)

	user, err := s.userRepo.GetUserByIdentifier(identifier)
	if err != nil {
		logger.Log.Error("Failed to get user by identifier",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		// Same error as a wrong password: never reveal which part failed
		logger.Log.Warn("Login failed: user not found",
			zap.String("identifier", identifier),
		)
		return nil, "", ErrInvalidCredentials
	}

	if !utils.VerifyPassword(password, user.PasswordHash) {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("identifier", identifier),
			zap.Uint("user_id", user.ID),
		)
		return nil, "", ErrInvalidCredentials
	}

	session := &models.Session{
		ID:        utils.NewSessionID(),
		UserID:    user.ID,
		Valid:     true,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessionRepo.Replace(session); err != nil {
		logger.Log.Error("Failed to persist session",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	token, err := utils.GenerateToken(user, session.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("session_id", session.ID),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

// ChangePassword rehashes and invalidates the persisted session row.
// Tokens already issued stay cryptographically valid until their signed
// expiry; see DESIGN.md for the revocation policy.
func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !utils.VerifyPassword(currentPassword, user.PasswordHash) {
		logger.Log.Warn("Change password failed: wrong current password",
			zap.Uint("user_id", userID),
		)
		return ErrWrongPassword
	}

	if len(newPassword) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePasswordHash(userID, hash); err != nil {
		logger.Log.Error("Failed to update password hash",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	if err := s.sessionRepo.Invalidate(userID); err != nil {
		logger.Log.Error("Failed to invalidate session",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Password changed",
		zap.Uint("user_id", userID),
	)

	return nil
}

// Logout deletes the session row. Idempotent: a missing row is fine.
func (s *AuthService) Logout(userID uint) error {
	if err := s.sessionRepo.DeleteByUserID(userID); err != nil {
		logger.Log.Error("Failed to delete session",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("User logged out",
		zap.Uint("user_id", userID),
	)

	return nil
}

func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	return s.userRepo.GetUserByID(id)
}

func (s *AuthService) UpdateProfile(userID uint, name, surname string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if name != "" {
		user.Name = name
	}
	if surname != "" {
		user.Surname = surname
	}

	if err := s.userRepo.UpdateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AuthService) validateRegisterInput(name, surname, email, username, password string, role models.Role) error {
	if name == "" || surname == "" || email == "" || username == "" || password == "" {
		return errors.New("all fields are required")
	}
	if !models.ValidRegistrationRole(role) {
		return errors.New("role must be student or organizer")
	}

	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return errors.New("username must be at most 50 characters")
	}

	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	if len(email) > 100 {
		return errors.New("email too long")
	}

	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return errors.New("password too long")
	}

	return nil
}
