package services

import (
	"chatline/auth"
	"chatline/contract"
	"chatline/domain"
	"chatline/errors"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type IAuthService interface {
	Signup(ctx context.Context, req auth.SignupRequest) (domain.User, Token, error)
	Login(ctx context.Context, req auth.LoginRequest) (domain.User, Token, error)
	UpdateProfile(ctx context.Context, userID, profilePic string) (domain.User, error)
}

type Token string

func (t Token) String() string {
	return string(t)
}

type AuthService struct {
	log      *slog.Logger
	users    contract.IUserRepository
	tokens   *auth.TokenIssuer
	uploader contract.ImageUploader
	now      func() time.Time
}

func NewAuthService(log *slog.Logger, users contract.IUserRepository, tokens *auth.TokenIssuer,
	uploader contract.ImageUploader) *AuthService {
	return &AuthService{log: log, users: users, tokens: tokens, uploader: uploader, now: time.Now}
}

func (s *AuthService) Signup(ctx context.Context, req auth.SignupRequest) (domain.User, Token, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	// Business rules are checked before any expensive hashing
	if err := auth.ValidateSignup(req); err != nil {
		return domain.User{}, "", err
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.users.CreateUser(ctx, domain.User{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	s.log.Info("User signed up", "user_id", user.ID)
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, req auth.LoginRequest) (domain.User, Token, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			// Same answer as a wrong password, no user enumeration
			return domain.User{}, "", errors.ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	match, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

// UpdateProfile uploads a new profile picture given as a data URI.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, profilePic string) (domain.User, error) {
	if profilePic == "" {
		return domain.User{}, fmt.Errorf("%w: profile pic is required", errors.ErrInvalidRequest)
	}
	url, err := s.uploader.Upload(ctx, profilePic)
	if err != nil {
		return domain.User{}, err
	}
	return s.users.UpdateProfilePic(ctx, userID, url)
}

func (s *AuthService) issue(userID string) (Token, error) {
	token, err := s.tokens.GenerateToken(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTokenGeneration, err)
	}
	return Token(token), nil
}
