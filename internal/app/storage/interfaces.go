// Package storage defines persistence interfaces for the application.
// Implementations live in the memory and postgres subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/itemvault/itemvault/internal/app/domain/item"
	"github.com/itemvault/itemvault/internal/app/domain/user"
)

// ErrNotFound is returned by stores when a record does not exist. Services
// rely on it to distinguish missing records from ownership violations.
var ErrNotFound = errors.New("record not found")

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
}

// ItemStore persists item records.
type ItemStore interface {
	CreateItem(ctx context.Context, it item.Item) (item.Item, error)
	UpdateItem(ctx context.Context, it item.Item) (item.Item, error)
	GetItem(ctx context.Context, id string) (item.Item, error)
	ListItems(ctx context.Context, userID string) ([]item.Item, error)
	DeleteItem(ctx context.Context, id string) error
}
