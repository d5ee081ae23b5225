package services

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/water-billing/internal/auth"
	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/nimasrn/water-billing/pkg/prom"
)

type SessionStore interface {
	Create(ctx context.Context, u *model.User) (*model.Session, error)
	Get(ctx context.Context, token string) (*model.Session, error)
	Delete(ctx context.Context, token string) error
	TTL() time.Duration
}

type AuthService struct {
	userRepo UserRepository
	sessions SessionStore
}

func NewAuthService(userRepo UserRepository, sessions SessionStore) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
	}
}

// Login checks the credentials and opens a session. Unknown emails and
// wrong passwords give the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			prom.IncLoginAttempt("failure")
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(req.Password, u.PasswordHash) {
		prom.IncLoginAttempt("failure")
		logger.Warn("login failed", "user_id", u.ID)
		return nil, model.ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	prom.IncLoginAttempt("success")
	logger.Info("user logged in", "user_id", u.ID, "role", u.Role)

	return &model.LoginResponse{
		User:      u,
		Token:     sess.Token,
		ExpiresIn: int64(s.sessions.TTL() / time.Second),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a bearer token into its session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	return s.sessions.Get(ctx, token)
}

// Current loads the user behind a session.
func (s *AuthService) Current(ctx context.Context, sess *model.Session) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrSessionExpired
		}
		return nil, err
	}
	return u, nil
}
