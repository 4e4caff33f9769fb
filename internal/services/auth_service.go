package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"reviews-backend/internal/dto"
	"reviews-backend/internal/models"
	"reviews-backend/internal/repository"
	"reviews-backend/internal/validation"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateIdentity  = errors.New("user already exists with this email or username")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const tokenTTL = 24 * time.Hour

type AuthService struct {
	users     repository.UserRepository
	jwtSecret string
}

func NewAuthService(users repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterUserRequest) (*models.User, string, error) {
	var v validation.Collector
	if len(req.Username) < validation.MinUsernameLength {
		v.Add("username", "Username must be at least 3 characters")
	}
	if !validation.ValidEmail(req.Email) {
		v.Add("email", "Please include a valid email")
	}
	if len(req.Password) < validation.MinPasswordLength {
		v.Add("password", "Password must be at least 6 characters")
	}
	if err := v.Err(); err != nil {
		return nil, "", err
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, "", ErrDuplicateIdentity
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(bytes),
		Role:         models.UserRoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The existence check above races with concurrent registrations.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrDuplicateIdentity
		}
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.signToken(user)
	if err != nil {
		return nil, "", err
	}

	logger.Info().Str("username", user.Username).Msg("user registered")
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginUserRequest) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Same failure as a wrong password, so callers cannot probe
			// which emails are registered.
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.signToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) signToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID":   user.ID.String(),
		"username": user.Username,
		"email":    user.Email,
		"role":     string(user.Role),
		"exp":      time.Now().Add(tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken checks signature and expiry, then resolves the claims to a live
// user. A token for a deleted user is rejected.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userIDStr, ok := mapClaims["userID"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return s.GetUserByID(ctx, userID)
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	if len(req.NewPassword) < validation.MinPasswordLength {
		var v validation.Collector
		v.Add("newPassword", "New password must be at least 6 characters")
		return v.Err()
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(bytes)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	logger.Info().Str("userID", userID.String()).Msg("password changed")
	return nil
}

// UpdateProfile mutates username, email and avatar only. Role is not part of
// the request type, so escalation has no input to arrive on.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	var v validation.Collector
	if req.Username != "" && len(req.Username) < validation.MinUsernameLength {
		v.Add("username", "Username must be at least 3 characters")
	}
	if req.Email != "" && !validation.ValidEmail(req.Email) {
		v.Add("email", "Please include a valid email")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}
