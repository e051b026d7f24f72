package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/snetlabs/social-network/app/observability/metrics"
	"github.com/snetlabs/social-network/internal/api"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService exposes the credential and token operations the routing layer
// consumes.
type AuthService interface {
	// Register creates a new user. Duplicate username or email yields
	// api.ErrUsernameTaken or api.ErrEmailTaken; when both fields collide
	// with the same existing record the username conflict is reported.
	Register(ctx context.Context, username, email, password string) (*api.User, error)

	// Login authenticates by username or email plus password and returns
	// the record and a signed access token whose subject is the record's
	// canonical username. Any failure is api.ErrInvalidCredentials.
	Login(ctx context.Context, identifier, password string) (*api.User, string, error)

	// VerifyToken validates a bearer token and returns its subject.
	VerifyToken(tokenString string) (string, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	tokens *TokenIssuer
}

func NewAuthService(repo AuthRepo, tokens *TokenIssuer, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		tokens: tokens,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (*api.User, error) {
	start := time.Now()
	defer func() {
		m := metrics.Get()
		m.RegisterRequestsTotal.Add(ctx, 1)
		m.RegisterDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	l := s.logger.With(slog.String("method", "Register"), slog.String("username", username))

	// Fast, friendly duplicate check. The unique constraints enforced in
	// Insert remain the authoritative guard against racing registrations.
	existing, err := s.repo.FindConflict(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Username == username {
			return nil, api.ErrUsernameTaken
		}
		return nil, api.ErrEmailTaken
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Insert(ctx, username, email, hashed)
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID.String()))
	return user, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, identifier, password string) (*api.User, string, error) {
	m := metrics.Get()
	m.LoginRequestsTotal.Add(ctx, 1)

	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.repo.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, "", err
	}
	// Unknown identifier and wrong password take the same path so the two
	// cases stay indistinguishable to the caller.
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		m.LoginFailuresTotal.Add(ctx, 1)
		l.WarnContext(ctx, "Login rejected")
		return nil, "", api.ErrInvalidCredentials
	}

	// The token subject is always the canonical username, even when the
	// login identifier was the email address.
	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue access token: %w", err)
	}

	l.InfoContext(ctx, "Login successful", slog.String("username", user.Username))
	return user, token, nil
}

func (s *AuthServiceImpl) VerifyToken(tokenString string) (string, error) {
	subject, err := s.tokens.Verify(tokenString)
	if err != nil {
		metrics.Get().TokenVerifyErrorsTotal.Add(context.Background(), 1)
		return "", err
	}
	return subject, nil
}
