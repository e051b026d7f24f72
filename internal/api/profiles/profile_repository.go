package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
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

var _ ProfileRepo = (*PostgresProfileRepo)(nil)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ProfileRepo defines the contract for profile persistence.
type ProfileRepo interface {
	// GetByUsername returns (nil, nil) when no record exists.
	GetByUsername(ctx context.Context, username string) (*api.User, error)

	// Update applies the non-nil fields of params and always bumps
	// updated_at, returning the refreshed record.
	Update(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*api.User, error)

	// List returns all user records, ordered by creation time.
	List(ctx context.Context) ([]api.User, error)
}

const userColumns = `id, username, email, password_hash, first_name, last_name, birth_date, phone, created_at, updated_at`

type PostgresProfileRepo struct {
	logger *slog.Logger
	db     DB
}

func NewPostgresProfileRepo(db DB, logger *slog.Logger) *PostgresProfileRepo {
	return &PostgresProfileRepo{
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

func (r *PostgresProfileRepo) GetByUsername(ctx context.Context, username string) (*api.User, error) {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "GetByUsername", trace.WithAttributes(
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
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	return user, nil
}

func (r *PostgresProfileRepo) Update(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*api.User, error) {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Update"), slog.String("userID", userID.String()))

	// updated_at is always bumped, even when the patch carries no fields.
	setClauses := []string{"updated_at = now()"}
	var args []interface{}
	argID := 1

	// A set field with Valid=false carries a nil pointer, which pgx writes
	// as NULL.
	if params.FirstName.Set {
		setClauses = append(setClauses, fmt.Sprintf("first_name = $%d", argID))
		args = append(args, params.FirstName.Ptr())
		argID++
		span.SetAttributes(attribute.Bool("update.first_name", true))
	}
	if params.LastName.Set {
		setClauses = append(setClauses, fmt.Sprintf("last_name = $%d", argID))
		args = append(args, params.LastName.Ptr())
		argID++
		span.SetAttributes(attribute.Bool("update.last_name", true))
	}
	if params.BirthDate.Set {
		setClauses = append(setClauses, fmt.Sprintf("birth_date = $%d", argID))
		args = append(args, params.BirthDate.Ptr())
		argID++
		span.SetAttributes(attribute.Bool("update.birth_date", true))
	}
	if params.Phone.Set {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", argID))
		args = append(args, params.Phone.Ptr())
		argID++
		span.SetAttributes(attribute.Bool("update.phone", true))
	}

	query := fmt.Sprintf(
		"UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, userColumns,
	)
	args = append(args, userID)

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	l.InfoContext(ctx, "Profile updated")
	return user, nil
}

func (r *PostgresProfileRepo) List(ctx context.Context) ([]api.User, error) {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "List", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []api.User
	for rows.Next() {
		var u api.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.FirstName, &u.LastName, &u.BirthDate, &u.Phone,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading user rows: %w", err)
	}

	return users, nil
}
