package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/eduschool/backend/internal/models"
	"github.com/eduschool/backend/libs/apperrors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for users table data access
type UserRepository interface {
	// Method Create inserts a new user and sets its ID.
	//
	// If the email or username is already taken, models.ErrDuplicateEmail or
	// models.ErrDuplicateUsername is returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by normalized email.
	//
	// If user with such email does not exist, models.ErrNotFound is returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, models.ErrNotFound is returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// authService implements the account operations
type authService struct {
	userRepo UserRepository
	validate *validator.Validate
	logger   *zap.Logger
	cost     int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, logger *zap.Logger) *authService {
	return &authService{
		userRepo: userRepo,
		validate: newValidator(),
		logger:   logger,
		cost:     bcrypt.DefaultCost,
	}
}

// Register validates the request and creates an active account.
// The email is trimmed and lower-cased; a blank username defaults to the local part of the email.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	normalized := models.RegisterRequest{
		Username: strings.TrimSpace(req.Username),
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
	}

	if err := s.validateRegister(&normalized); err != nil {
		return nil, err
	}

	if normalized.Username == "" {
		normalized.Username = normalized.Email[:strings.Index(normalized.Email, "@")]
	}

	// Friendly pre-checks. The unique indexes still decide concurrent registrations.
	exists, err := s.userRepo.ExistsByEmail(ctx, normalized.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if exists {
		return nil, apperrors.Conflict(MsgEmailTaken)
	}

	exists, err = s.userRepo.ExistsByUsername(ctx, normalized.Username)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if exists {
		return nil, apperrors.Conflict(MsgUsernameTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(normalized.Password), s.cost)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Username:     normalized.Username,
		Email:        normalized.Email,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateEmail):
			return nil, apperrors.Conflict(MsgEmailTaken)
		case errors.Is(err, models.ErrDuplicateUsername):
			return nil, apperrors.Conflict(MsgUsernameTaken)
		}
		return nil, apperrors.Internal(err)
	}

	s.logger.Info("user registered", zap.Int("user_id", user.ID))
	return user, nil
}

// validateRegister reports the first failing rule in order:
// missing fields, password length, username length, email length, malformed email
func (s *authService) validateRegister(req *models.RegisterRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Internal(err)
	}

	tags := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		tags[fe.Field()+"."+fe.Tag()] = true
	}

	switch {
	case tags["Email.required"] || tags["Password.required"]:
		return apperrors.Validation(MsgCredentialsRequired)
	case tags["Password.min"]:
		return apperrors.Validation(MsgPasswordTooShort)
	case tags["Password.maxbytes"]:
		return apperrors.Validation(MsgPasswordTooLong)
	case tags["Username.max"]:
		return apperrors.Validation(MsgUsernameTooLong)
	case tags["Email.max"]:
		return apperrors.Validation(MsgEmailTooLong)
	default:
		return apperrors.Validation(MsgInvalidEmail)
	}
}

// Login checks the credentials and returns the account.
// Unknown email, wrong password and inactive account are indistinguishable.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.Validation(MsgCredentialsRequired)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		// Same bcrypt work as for a known email
		_ = bcrypt.CompareHashAndPassword(s.dummyPasswordHash(), []byte(req.Password))
		return nil, apperrors.Auth(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Auth(MsgInvalidCredentials)
	}

	if !user.IsActive {
		return nil, apperrors.Auth(MsgInvalidCredentials)
	}

	return user, nil
}

// CurrentUser returns the account bound to a session.
// A deleted or deactivated account is reported as unauthenticated.
func (s *authService) CurrentUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperrors.Unauthenticated(MsgAuthRequired)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if !user.IsActive {
		return nil, apperrors.Unauthenticated(MsgAuthRequired)
	}

	return user, nil
}

func (s *authService) dummyPasswordHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
		if err != nil {
			s.logger.Error("failed to generate dummy password hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
