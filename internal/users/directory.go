// Package users keeps a local copy of the identities presented in tokens so
// swap requests and notifications can show names.
package users

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"slotswap-backend/internal/auth"
	"slotswap-backend/internal/model"
	"slotswap-backend/internal/store"
)

const (
	memoTTL     = 10 * time.Minute
	memoCleanup = 20 * time.Minute
)

// Directory upserts callers into the users table, skipping the write when
// the same identity was stored recently.
type Directory struct {
	store  store.UserStore
	seen   *cache.Cache
	logger *zap.Logger
}

func NewDirectory(st store.UserStore, logger *zap.Logger) *Directory {
	return &Directory{
		store:  st,
		seen:   cache.New(memoTTL, memoCleanup),
		logger: logger,
	}
}

// Sync records id. Failures are logged and otherwise ignored: a missing
// name only degrades how the user is displayed.
func (d *Directory) Sync(ctx context.Context, id auth.Identity) {
	if cached, ok := d.seen.Get(id.UserID); ok && cached.(auth.Identity) == id {
		return
	}

	user := &model.User{ID: id.UserID, Name: id.Name, Email: id.Email}
	if err := d.store.UpsertUser(ctx, user); err != nil {
		d.logger.Warn("Failed to sync user", zap.String("user_id", id.UserID), zap.Error(err))
		return
	}
	d.seen.Set(id.UserID, id, cache.DefaultExpiration)
}
