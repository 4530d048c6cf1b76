package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/metrics"
)

// UserUseCase handles login, password resets and user management
type UserUseCase struct {
	userRepo UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	idGen    IDGenerator
	now      Clock
	metrics  *metrics.Metrics
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(
	userRepo UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	idGen IDGenerator,
	m *metrics.Metrics,
) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		idGen:    idGen,
		now:      time.Now,
		metrics:  m,
	}
}

// WithClock overrides the time source, used by tests
func (uc *UserUseCase) WithClock(now Clock) *UserUseCase {
	uc.now = now
	return uc
}

// LoginResult holds the issued token and the authenticated user
type LoginResult struct {
	Token string
	User  *domain.User
}

// Login verifies credentials, records the login time and issues a token
func (uc *UserUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	logger := zerolog.Ctx(ctx)

	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		uc.recordLogin("unknown_user")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		uc.recordLogin("disabled")
		return nil, domain.ErrAccountDisabled
	}

	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		uc.recordLogin("bad_password")
		return nil, domain.ErrInvalidCredentials
	}

	now := uc.now().UTC()
	if err := uc.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	token, err := uc.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	uc.recordLogin("success")
	logger.Info().Str("user_id", user.ID).Msg("user logged in")

	user.PasswordHash = ""
	return &LoginResult{Token: token, User: user}, nil
}

// ResetPassword replaces the password of the user with the given email
func (uc *UserUseCase) ResetPassword(ctx context.Context, email, newPassword string) error {
	if strings.TrimSpace(email) == "" || newPassword == "" {
		return domain.ErrInvalidInput
	}

	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	hash, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.UpdatedAt = uc.now().UTC()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Email    string
	Password string
	FullName string
	IsAdmin  bool
}

// CreateUser creates a new active user with hashed password
func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)

	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	user := &domain.User{
		ID:           uc.idGen.Generate(),
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Don't return the hash
	user.PasswordHash = ""
	return user, nil
}

// UpdateUserInput represents a partial user update
type UpdateUserInput struct {
	ID       string
	IsActive *bool
	IsAdmin  *bool
	Password *string
}

// UpdateUser applies the provided fields to a user
func (uc *UserUseCase) UpdateUser(ctx context.Context, input UpdateUserInput) (*domain.User, error) {
	if input.IsActive == nil && input.IsAdmin == nil && input.Password == nil {
		return nil, domain.ErrInvalidInput
	}

	user, err := uc.userRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}

	if input.Password != nil {
		if err := domain.ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := uc.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = uc.now().UTC()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// ListUsers lists all users, newest first
func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		user.PasswordHash = ""
	}

	return users, nil
}

func (uc *UserUseCase) recordLogin(result string) {
	if uc.metrics != nil {
		uc.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
