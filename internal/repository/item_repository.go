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

// isBadUUID reports whether err is Postgres rejecting a malformed uuid
// literal. An id that cannot be a uuid cannot name an existing row, so
// callers treat it the same as no rows.
func isBadUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}

// PostgresItemRepository implements domain.ItemRepository using PostgreSQL.
// Get, Update, and Delete match on (id AND owner_id) in a single statement,
// so "absent" and "owned by someone else" are structurally the same outcome.
type PostgresItemRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresItemRepository creates a new item repository
func NewPostgresItemRepository(db *sql.DB, logger *slog.Logger) *PostgresItemRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresItemRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new item and fills in the generated id and timestamp
func (r *PostgresItemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (owner_id, name, description, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		item.OwnerID,
		item.Name,
		item.Description,
		item.Price,
		item.Quantity,
	).Scan(&item.ID, &item.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create item",
			slog.String("owner_id", item.OwnerID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// ListByOwner returns all items belonging to an owner
func (r *PostgresItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Item, error) {
	query := `
		SELECT id, owner_id, name, description, price, quantity, created_at
		FROM items
		WHERE owner_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("failed to list items",
			slog.String("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []*domain.Item{}
	for rows.Next() {
		item := &domain.Item{}
		err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.Quantity,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// GetByID retrieves an item scoped to its owner
func (r *PostgresItemRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Item, error) {
	item := &domain.Item{}

	query := `
		SELECT id, owner_id, name, description, price, quantity, created_at
		FROM items
		WHERE id = $1 AND owner_id = $2
	`

	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&item.ID,
		&item.OwnerID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Quantity,
		&item.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isBadUUID(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get item",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// Update rewrites name and description, scoped to the owner. Price, quantity,
// and owner_id are immutable through this path.
func (r *PostgresItemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE items
		SET name = $1, description = $2
		WHERE id = $3 AND owner_id = $4
		RETURNING price, quantity, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		item.Name,
		item.Description,
		item.ID,
		item.OwnerID,
	).Scan(&item.Price, &item.Quantity, &item.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isBadUUID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update item: %w", err)
	}

	return nil
}

// Delete hard-deletes an item scoped to its owner. Of two concurrent deletes
// exactly one observes a row; the other gets ErrNotFound.
func (r *PostgresItemRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM items WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		if isBadUUID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// CountAll returns the total number of items across all owners
func (r *PostgresItemRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}
