package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/snetlabs/social-network/app/observability/metrics"
	"github.com/snetlabs/social-network/internal/api"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AuthRepo defines the contract for user credential persistence.
type AuthRepo interface {
	// FindByUsernameOrEmail looks a record up by exact username or email
	// match. Returns (nil, nil) when no record exists.
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*api.User, error)

	// FindByUsername looks a record up by exact username match.
	// Returns (nil, nil) when no record exists.
	FindByUsername(ctx context.Context, username string) (*api.User, error)

	// FindConflict returns an existing record whose username or email
	// collides with the given pair, or (nil, nil) when neither is taken.
	FindConflict(ctx context.Context, username, email string) (*api.User, error)

	// Insert creates a new user record. A unique-constraint violation on
	// the username or email index is mapped to api.ErrUsernameTaken or
	// api.ErrEmailTaken; the database constraint is the authoritative
	// guard against racing registrations.
	Insert(ctx context.Context, username, email, passwordHash string) (*api.User, error)
}

const userColumns = `id, username, email, password_hash, first_name, last_name, birth_date, phone, created_at, updated_at`

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     DB
}

func NewPostgresAuthRepo(db DB, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     db,
	}
}

func scanUser(row pgx.Row) (*api.User, error) {
	var u api.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.BirthDate, &u.Phone,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresAuthRepo) FindByUsernameOrEmail(ctx context.Context, identifier string) (*api.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "FindByUsernameOrEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("failed to look up user by identifier: %w", err)
	}
	return user, nil
}

func (r *PostgresAuthRepo) FindByUsername(ctx context.Context, username string) (*api.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "FindByUsername", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("failed to look up user by username: %w", err)
	}
	return user, nil
}

func (r *PostgresAuthRepo) FindConflict(ctx context.Context, username, email string) (*api.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "FindConflict", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $2 LIMIT 1`
	user, err := scanUser(r.db.QueryRow(ctx, query, username, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("failed to check for conflicting user: %w", err)
	}
	return user, nil
}

func (r *PostgresAuthRepo) Insert(ctx context.Context, username, email, passwordHash string) (*api.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "Insert", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Insert"), slog.String("username", username))

	query := `
        INSERT INTO users (username, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, username, email, passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			l.WarnContext(ctx, "Registration conflict", slog.String("constraint", pgErr.ConstraintName))
			span.SetStatus(codes.Error, "Unique violation")
			if pgErr.ConstraintName == "users_email_key" {
				return nil, api.ErrEmailTaken
			}
			return nil, api.ErrUsernameTaken
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		l.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	l.InfoContext(ctx, "User record created", slog.String("userID", user.ID.String()))
	span.SetAttributes(attribute.String("db.user.id", user.ID.String()))
	return user, nil
}
