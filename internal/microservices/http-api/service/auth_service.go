package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"schoollibrary/internal/middleware/auth"
	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are carried in the signed session token.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Session is an issued sign-in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	ValidateSession(ctx context.Context, token string) (*auth.Identity, error)
	SignOut(ctx context.Context, token string) error
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	secret   []byte
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	secret string,
	ttl time.Duration,
	logger *slog.Logger,
) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// SignIn checks the credentials and registers a new session.
func (s *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if repository.IsNotFound(err) {
			auth.BurnPasswordCheck(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	sessionID := uuid.New().String()

	claims := SessionClaims{
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	if err := s.sessions.Save(ctx, sessionID, user.ID, s.ttl); err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}

	s.logger.InfoContext(ctx, "signed_in", "user_id", user.ID, "role", user.Role)
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// ValidateSession resolves a token to the identity it was issued for.
// Signed-out or expired sessions are rejected even when the signature is valid.
func (s *authService) ValidateSession(ctx context.Context, token string) (*auth.Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return nil, ErrInvalidSession
	}

	ok, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("look up session: %w", err)
	}
	if !ok {
		return nil, ErrInvalidSession
	}

	return &auth.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      role,
		SessionID: claims.ID,
	}, nil
}

// SignOut forgets the session. Unknown or invalid tokens are ignored.
func (s *authService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		if errors.Is(err, ErrInvalidSession) {
			return nil
		}
		return err
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.InfoContext(ctx, "signed_out", "user_id", claims.Subject)
	return nil
}
