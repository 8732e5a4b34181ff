package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/itemvault/itemvault/internal/app/domain/item"
	"github.com/itemvault/itemvault/internal/app/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateItemGeneratesIDAndTimestamps(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO items").WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := store.CreateItem(context.Background(), item.Item{
		UserID:   "u1",
		Title:    "Buy milk",
		Priority: item.PriorityMedium,
		Status:   item.StatusPending,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("timestamps not initialised: %v / %v", created.CreatedAt, created.UpdatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetItemNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM items WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "description", "priority", "status", "created_at", "updated_at"}))

	_, err := store.GetItem(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItemMissingRowMapsToNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE items").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.UpdateItem(context.Background(), item.Item{ID: "missing", Title: "x"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListItemsScopedToUser(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "description", "priority", "status", "created_at", "updated_at"}).
		AddRow("i2", "u1", "newer", "", "high", "pending", now, now).
		AddRow("i1", "u1", "older", "", "low", "completed", now.Add(-time.Hour), now.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM items").WithArgs("u1").WillReturnRows(rows)

	items, err := store.ListItems(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 2 || items[0].ID != "i2" {
		t.Fatalf("unexpected result: %+v", items)
	}
}

func TestDeleteItemNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM items").WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.DeleteItem(context.Background(), "gone"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
