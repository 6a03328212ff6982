package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"slotswap-backend/internal/auth"
	"slotswap-backend/internal/db/dbtest"
	"slotswap-backend/internal/model"
	"slotswap-backend/internal/store"
)

type countingStore struct {
	store.UserStore
	upserts int
	fail    bool
}

func (s *countingStore) UpsertUser(ctx context.Context, u *model.User) error {
	s.upserts++
	if s.fail {
		return errors.New("db down")
	}
	return s.UserStore.UpsertUser(ctx, u)
}

func TestDirectory_Sync(t *testing.T) {
	ctx := context.Background()
	st := &countingStore{UserStore: store.NewGormStore(dbtest.Open(t))}
	dir := NewDirectory(st, zap.NewNop())

	alice := auth.Identity{UserID: "alice", Name: "Alice", Email: "alice@example.com"}
	dir.Sync(ctx, alice)
	dir.Sync(ctx, alice)
	assert.Equal(t, 1, st.upserts, "unchanged identity should be memoized")

	user, err := st.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	renamed := alice
	renamed.Name = "Alice B."
	dir.Sync(ctx, renamed)
	assert.Equal(t, 2, st.upserts)

	user, err = st.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", user.Name)
}

func TestDirectory_SyncFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	st := &countingStore{UserStore: store.NewGormStore(dbtest.Open(t)), fail: true}
	dir := NewDirectory(st, zap.NewNop())

	bob := auth.Identity{UserID: "bob", Name: "Bob"}
	dir.Sync(ctx, bob)
	st.fail = false
	dir.Sync(ctx, bob)

	assert.Equal(t, 2, st.upserts)
	_, err := st.FindUser(ctx, "bob")
	assert.NoError(t, err)
}
