package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itemvault/itemvault/internal/app/domain/item"
	"github.com/itemvault/itemvault/internal/app/domain/user"
	"github.com/itemvault/itemvault/internal/app/storage"
)

func TestUserLookups(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, user.User{Username: "Alice", Email: "Alice@Example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("email lookup returned %s, want %s", byEmail.ID, created.ID)
	}

	byName, err := s.GetUserByUsername(ctx, " alice ")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("username lookup returned %s, want %s", byName.ID, created.ID)
	}

	if _, err := s.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestItemListOrderAndScope(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, _ := s.CreateItem(ctx, item.Item{UserID: "u1", Title: "first"})
	time.Sleep(2 * time.Millisecond)
	second, _ := s.CreateItem(ctx, item.Item{UserID: "u1", Title: "second"})
	_, _ = s.CreateItem(ctx, item.Item{UserID: "u2", Title: "other user"})

	items, err := s.ListItems(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", items[0].Title, items[1].Title)
	}
}

func TestUpdatePreservesOwnerAndCreatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, _ := s.CreateItem(ctx, item.Item{UserID: "u1", Title: "before"})

	mutated := created
	mutated.UserID = "attacker"
	mutated.Title = "after"
	updated, err := s.UpdateItem(ctx, mutated)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.UserID != "u1" {
		t.Fatalf("owner changed to %s", updated.UserID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("created_at changed on update")
	}
	if updated.Title != "after" {
		t.Fatalf("title = %s, want after", updated.Title)
	}
}

func TestDeleteMissingItem(t *testing.T) {
	s := New()
	if err := s.DeleteItem(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
