// Package app wires the domain services over their storage backends.
package app

import (
	"github.com/itemvault/itemvault/internal/app/services/auth"
	"github.com/itemvault/itemvault/internal/app/services/items"
	"github.com/itemvault/itemvault/internal/app/storage"
	"github.com/itemvault/itemvault/internal/app/storage/memory"
	"github.com/itemvault/itemvault/pkg/logger"
)

// Stores groups the storage backends the application depends on. Zero-value
// fields fall back to in-memory implementations.
type Stores struct {
	Users storage.UserStore
	Items storage.ItemStore
}

// Application exposes the assembled domain services.
type Application struct {
	Auth  *auth.Service
	Items *items.Service
}

// New assembles an Application from stores and a token manager.
func New(stores Stores, tokens *auth.TokenManager, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if stores.Users == nil || stores.Items == nil {
		mem := memory.New()
		if stores.Users == nil {
			stores.Users = mem
		}
		if stores.Items == nil {
			stores.Items = mem
		}
	}

	return &Application{
		Auth:  auth.New(stores.Users, tokens, log.WithField("service", "auth")),
		Items: items.New(stores.Items, log.WithField("service", "items")),
	}
}
