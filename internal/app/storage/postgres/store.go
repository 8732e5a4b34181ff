// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/itemvault/itemvault/internal/app/domain/item"
	"github.com/itemvault/itemvault/internal/app/domain/user"
	"github.com/itemvault/itemvault/internal/app/storage"
)

// Store implements the storage interfaces using a database/sql handle.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.ItemStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Username, strings.ToLower(u.Email), u.PasswordHash, u.CreatedAt)
	if err != nil {
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE id = $1
	`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email))))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE lower(username) = lower($1)
	`, strings.TrimSpace(username)))
}

func (s *Store) scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, storage.ErrNotFound
	}
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// --- ItemStore --------------------------------------------------------------

func (s *Store) CreateItem(ctx context.Context, it item.Item) (item.Item, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, user_id, title, description, priority, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, it.ID, it.UserID, it.Title, it.Description, it.Priority, it.Status, it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return item.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return it, nil
}

func (s *Store) UpdateItem(ctx context.Context, it item.Item) (item.Item, error) {
	it.UpdatedAt = time.Now().UTC()

	// user_id and created_at are deliberately not in the SET list; the owner
	// is fixed at creation.
	result, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET title = $2, description = $3, priority = $4, status = $5, updated_at = $6
		WHERE id = $1
	`, it.ID, it.Title, it.Description, it.Priority, it.Status, it.UpdatedAt)
	if err != nil {
		return item.Item{}, fmt.Errorf("update item: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return item.Item{}, storage.ErrNotFound
	}
	return s.GetItem(ctx, it.ID)
}

func (s *Store) GetItem(ctx context.Context, id string) (item.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, priority, status, created_at, updated_at
		FROM items WHERE id = $1
	`, id)

	var it item.Item
	err := row.Scan(&it.ID, &it.UserID, &it.Title, &it.Description, &it.Priority, &it.Status, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return item.Item{}, storage.ErrNotFound
	}
	if err != nil {
		return item.Item{}, err
	}
	return it, nil
}

func (s *Store) ListItems(ctx context.Context, userID string) ([]item.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, priority, status, created_at, updated_at
		FROM items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]item.Item, 0)
	for rows.Next() {
		var it item.Item
		if err := rows.Scan(&it.ID, &it.UserID, &it.Title, &it.Description, &it.Priority, &it.Status, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
