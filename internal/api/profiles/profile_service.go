package profiles

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/snetlabs/social-network/internal/api"
)

var _ ProfileService = (*ProfileServiceImpl)(nil)

// ProfileService exposes profile reads and partial updates keyed on the
// verified token subject.
type ProfileService interface {
	// GetProfile returns api.ErrUserNotFound when the subject no longer
	// resolves to a record.
	GetProfile(ctx context.Context, username string) (*api.User, error)

	// UpdateProfile applies a partial update. Only fields present in
	// params change; updated_at is bumped on every call, including an
	// empty patch.
	UpdateProfile(ctx context.Context, username string, params UpdateProfileParams) (*api.User, error)

	// ListUsers returns all user records.
	ListUsers(ctx context.Context) ([]api.User, error)
}

type ProfileServiceImpl struct {
	logger *slog.Logger
	repo   ProfileRepo
	cache  *cache.Cache
}

func NewProfileService(repo ProfileRepo, logger *slog.Logger) *ProfileServiceImpl {
	return &ProfileServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *ProfileServiceImpl) GetProfile(ctx context.Context, username string) (*api.User, error) {
	if cached, found := s.cache.Get(username); found {
		if user, ok := cached.(*api.User); ok {
			return user, nil
		}
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, api.ErrUserNotFound
	}

	s.cache.Set(username, user, cache.DefaultExpiration)
	return user, nil
}

func (s *ProfileServiceImpl) UpdateProfile(ctx context.Context, username string, params UpdateProfileParams) (*api.User, error) {
	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.String("username", username))
	if params.IsEmpty() {
		l.DebugContext(ctx, "Empty patch, only updated_at will change")
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, api.ErrUserNotFound
	}

	updated, err := s.repo.Update(ctx, existing.ID, params)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Deleted between lookup and update.
		s.cache.Delete(username)
		return nil, api.ErrUserNotFound
	}

	s.cache.Set(username, updated, cache.DefaultExpiration)
	l.InfoContext(ctx, "Profile updated", slog.String("userID", updated.ID.String()))
	return updated, nil
}

func (s *ProfileServiceImpl) ListUsers(ctx context.Context) ([]api.User, error) {
	return s.repo.List(ctx)
}
