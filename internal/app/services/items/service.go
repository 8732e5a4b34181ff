// Package items implements CRUD over user-owned items with a uniform
// ownership guard across read, update, and delete.
package items

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/itemvault/itemvault/internal/app/domain/item"
	"github.com/itemvault/itemvault/internal/app/storage"
	"github.com/itemvault/itemvault/internal/errors"
	"github.com/itemvault/itemvault/pkg/logger"
)

// Update carries a partial item mutation. Nil fields are left unchanged;
// Description distinguishes "absent" from "explicitly empty".
type Update struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}

// Service manages item records scoped to their owner.
type Service struct {
	store storage.ItemStore
	log   *logger.Logger
}

// New constructs an item service.
func New(store storage.ItemStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("items")
	}
	return &Service{store: store, log: log}
}

// Create persists a new item owned by ownerID with defaults applied.
func (s *Service) Create(ctx context.Context, ownerID, title, description string, priority, status string) (item.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return item.Item{}, errors.Validation("Title is required")
	}

	it := item.Item{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Priority:    item.Priority(priority),
		Status:      item.Status(status),
	}
	it.ApplyDefaults()

	if !it.Priority.Valid() {
		return item.Item{}, errors.Validation("Priority must be low, medium, or high")
	}
	if !it.Status.Valid() {
		return item.Item{}, errors.Validation("Status must be pending or completed")
	}

	created, err := s.store.CreateItem(ctx, it)
	if err != nil {
		return item.Item{}, errors.Internal("create item", err)
	}

	s.log.WithField("item_id", created.ID).WithField("user_id", ownerID).Info("item created")
	return created, nil
}

// List returns all items owned by ownerID, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]item.Item, error) {
	items, err := s.store.ListItems(ctx, ownerID)
	if err != nil {
		return nil, errors.Internal("list items", err)
	}
	return items, nil
}

// GetByID returns an item after the ownership check.
func (s *Service) GetByID(ctx context.Context, ownerID, itemID string) (item.Item, error) {
	return s.authorize(ctx, ownerID, itemID, "access")
}

// ApplyUpdate mutates only the fields present in the update, leaving the rest
// unchanged, and refreshes the updated timestamp. Last write wins; there is
// no optimistic concurrency check.
func (s *Service) ApplyUpdate(ctx context.Context, ownerID, itemID string, patch Update) (item.Item, error) {
	it, err := s.authorize(ctx, ownerID, itemID, "update")
	if err != nil {
		return item.Item{}, err
	}

	if patch.Title != nil {
		if title := strings.TrimSpace(*patch.Title); title != "" {
			it.Title = title
		}
	}
	if patch.Description != nil {
		it.Description = *patch.Description
	}
	if patch.Priority != nil && *patch.Priority != "" {
		p := item.Priority(*patch.Priority)
		if !p.Valid() {
			return item.Item{}, errors.Validation("Priority must be low, medium, or high")
		}
		it.Priority = p
	}
	if patch.Status != nil && *patch.Status != "" {
		st := item.Status(*patch.Status)
		if !st.Valid() {
			return item.Item{}, errors.Validation("Status must be pending or completed")
		}
		it.Status = st
	}

	updated, err := s.store.UpdateItem(ctx, it)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return item.Item{}, errors.NotFound("Item not found")
		}
		return item.Item{}, errors.Internal("update item", err)
	}

	s.log.WithField("item_id", itemID).WithField("user_id", ownerID).Info("item updated")
	return updated, nil
}

// Delete permanently removes an item and returns its prior state.
func (s *Service) Delete(ctx context.Context, ownerID, itemID string) (item.Item, error) {
	it, err := s.authorize(ctx, ownerID, itemID, "delete")
	if err != nil {
		return item.Item{}, err
	}

	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return item.Item{}, errors.NotFound("Item not found")
		}
		return item.Item{}, errors.Internal("delete item", err)
	}

	s.log.WithField("item_id", itemID).WithField("user_id", ownerID).Info("item deleted")
	return it, nil
}

// authorize loads an item and enforces ownership. A missing item is 404; an
// item owned by someone else is 403 — existence is not hidden from
// authenticated callers.
func (s *Service) authorize(ctx context.Context, ownerID, itemID, action string) (item.Item, error) {
	it, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return item.Item{}, errors.NotFound("Item not found")
		}
		return item.Item{}, errors.Internal("get item", err)
	}
	if it.UserID != ownerID {
		s.log.WithField("item_id", itemID).
			WithField("user_id", ownerID).
			WithField("owner_id", it.UserID).
			Warn("ownership check failed")
		return item.Item{}, errors.Forbidden("Not authorized to " + action + " this item")
	}
	return it, nil
}
