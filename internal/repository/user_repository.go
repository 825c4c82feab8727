package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/yourorg/itemvault/internal/domain"
)

const uniqueViolation = "23505"

// PostgresUserRepository implements domain.UserRepository using PostgreSQL.
// Uniqueness is enforced by the users_username_key and users_email_key
// constraints, not by check-then-insert, so concurrent registrations with the
// same value resolve to exactly one success.
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user and fills in the generated id and timestamp
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dup := r.classifyDuplicate(ctx, err, user.Username); dup != nil {
			return dup
		}
		r.logger.Error("failed to create user",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// classifyDuplicate maps a unique-constraint violation to the violated field.
// When both username and email collide in the same insert, Postgres reports
// only one constraint; the username collision takes precedence, so an email
// violation is double-checked against the username index.
func (r *PostgresUserRepository) classifyDuplicate(ctx context.Context, err error, username string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}

	switch pqErr.Constraint {
	case "users_username_key":
		return domain.ErrDuplicateUsername
	case "users_email_key":
		var exists bool
		check := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username,
		).Scan(&exists)
		if check == nil && exists {
			return domain.ErrDuplicateUsername
		}
		return domain.ErrDuplicateEmail
	}
	return domain.ErrDuplicateUsername
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUsername retrieves a user by username (case-sensitive, exact)
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByEmail retrieves a user by email. The caller is expected to pass the
// normalized (lowercased, trimmed) form, matching what Create stored.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresUserRepository) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	user := &domain.User{}

	query := fmt.Sprintf(`
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE %s = $1
	`, column)

	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get user",
			slog.String("column", column),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
