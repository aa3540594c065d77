package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userdeskio/api/internal/config"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/domain/user"
	"github.com/userdeskio/api/pkg/logger"
	"github.com/userdeskio/api/pkg/password"
)

// Token errors.
var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
)

// Claims are the JWT claims issued at login.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies access tokens for local accounts.
type AuthService struct {
	users  user.Repository
	hasher *password.Hasher
	cfg    config.AuthConfig
	clock  shared.Clock
	logger *logger.Logger
}

// AuthServiceOption is a functional option for AuthService.
type AuthServiceOption func(*AuthService)

// WithAuthClock overrides the clock. Tests freeze it.
func WithAuthClock(clock shared.Clock) AuthServiceOption {
	return func(s *AuthService) {
		s.clock = clock
	}
}

// NewAuthService creates a new AuthService.
func NewAuthService(users user.Repository, hasher *password.Hasher, cfg config.AuthConfig, log *logger.Logger, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		users:  users,
		hasher: hasher,
		cfg:    cfg,
		clock:  shared.SystemClock{},
		logger: log.With("service", "auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult carries the issued token and its subject.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *user.User
}

// Login verifies credentials and issues an access token. Suspended and
// inactive accounts cannot log in even with a correct password.
func (s *AuthService) Login(ctx context.Context, email, plain string) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Verify(u.PasswordHash(), plain); err != nil {
		s.logger.Warn("login rejected", "email", u.Email(), "reason", "bad credentials")
		return nil, user.ErrInvalidCredentials
	}

	switch u.Status() {
	case user.StatusSuspended:
		return nil, user.ErrUserSuspended
	case user.StatusInactive:
		return nil, user.ErrUserInactive
	}

	now := s.clock.Now()
	token, expiresAt, err := s.issue(u, now)
	if err != nil {
		return nil, err
	}

	u.RecordLogin(now)
	if err := s.users.Update(ctx, u); err != nil {
		s.logger.Warn("failed to record login time", "user_id", u.ID(), "error", err)
	}

	s.logger.Info("user logged in", "user_id", u.ID())
	return &LoginResult{AccessToken: token, ExpiresAt: expiresAt, User: u}, nil
}

// VerifyToken parses and validates an access token, returning the subject
// user ID.
func (s *AuthService) VerifyToken(tokenString string) (shared.ID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return shared.ID{}, ErrTokenExpired
		}
		return shared.ID{}, ErrTokenInvalid
	}
	if !token.Valid {
		return shared.ID{}, ErrTokenInvalid
	}

	id, err := shared.ParseID(claims.Subject)
	if err != nil {
		return shared.ID{}, ErrTokenInvalid
	}
	return id, nil
}

func (s *AuthService) issue(u *user.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.cfg.AccessTokenTTL)
	claims := Claims{
		Email: u.Email(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID().String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}
