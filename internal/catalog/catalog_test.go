package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"slotswap-backend/internal/apperr"
	"slotswap-backend/internal/db/dbtest"
	"slotswap-backend/internal/model"
	"slotswap-backend/internal/store"
)

var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestCatalog(t *testing.T) (*Catalog, store.Store) {
	t.Helper()
	st := store.NewGormStore(dbtest.Open(t))
	return New(st, zap.NewNop()), st
}

func TestCreate(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	slot, err := c.Create(ctx, "alice", "  Team sync ", monday, monday.Add(time.Hour), "")
	require.NoError(t, err)
	assert.NotEmpty(t, slot.ID)
	assert.Equal(t, "Team sync", slot.Title)
	assert.Equal(t, model.SlotStatusBusy, slot.Status)

	testCases := []struct {
		name   string
		title  string
		start  time.Time
		end    time.Time
		status model.SlotStatus
	}{
		{"empty title", " ", monday, monday.Add(time.Hour), ""},
		{"missing times", "x", time.Time{}, monday, ""},
		{"end before start", "x", monday, monday.Add(-time.Hour), ""},
		{"equal times", "x", monday, monday, ""},
		{"pending status", "x", monday, monday.Add(time.Hour), model.SlotStatusSwapPending},
		{"unknown status", "x", monday, monday.Add(time.Hour), "FREE"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Create(ctx, "alice", tc.title, tc.start, tc.end, tc.status)
			assert.True(t, apperr.Is(err, apperr.KindInvalid), "got %v", err)
		})
	}
}

func TestListMine_OrderedByStart(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.Create(ctx, "alice", "later", monday.Add(3*time.Hour), monday.Add(4*time.Hour), "")
	require.NoError(t, err)
	_, err = c.Create(ctx, "alice", "earlier", monday, monday.Add(time.Hour), "")
	require.NoError(t, err)
	_, err = c.Create(ctx, "bob", "not mine", monday, monday.Add(time.Hour), "")
	require.NoError(t, err)

	slots, err := c.ListMine(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "earlier", slots[0].Title)
	assert.Equal(t, "later", slots[1].Title)

	none, err := c.ListMine(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdate(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	slot, err := c.Create(ctx, "alice", "sync", monday, monday.Add(time.Hour), "")
	require.NoError(t, err)

	title := "renamed"
	later := monday.Add(2 * time.Hour)
	updated, err := c.Update(ctx, "alice", slot.ID, Patch{Title: &title, EndTime: &later})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.True(t, updated.EndTime.Equal(later))

	_, err = c.Update(ctx, "bob", slot.ID, Patch{Title: &title})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	early := monday.Add(-time.Hour)
	_, err = c.Update(ctx, "alice", slot.ID, Patch{EndTime: &early})
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	pending := model.SlotStatusSwapPending
	_, err = c.Update(ctx, "alice", slot.ID, Patch{Status: &pending})
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}

func TestSetStatus(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	slot, err := c.Create(ctx, "alice", "sync", monday, monday.Add(time.Hour), "")
	require.NoError(t, err)

	updated, err := c.SetStatus(ctx, "alice", slot.ID, model.SlotStatusSwappable)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusSwappable, updated.Status)

	_, err = c.SetStatus(ctx, "alice", slot.ID, model.SlotStatusSwapPending)
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	_, err = c.SetStatus(ctx, "alice", "missing", model.SlotStatusBusy)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPendingSlotIsFrozen(t *testing.T) {
	c, st := newTestCatalog(t)
	ctx := context.Background()

	slot, err := c.Create(ctx, "alice", "sync", monday, monday.Add(time.Hour), model.SlotStatusSwappable)
	require.NoError(t, err)
	require.NoError(t, st.CompareAndSetSlot(ctx, slot.ID, model.SlotStatusSwappable, model.SlotStatusSwapPending, ""))

	_, err = c.SetStatus(ctx, "alice", slot.ID, model.SlotStatusBusy)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	title := "x"
	_, err = c.Update(ctx, "alice", slot.ID, Patch{Title: &title})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	err = c.Delete(ctx, "alice", slot.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	stored, err := st.FindSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusSwapPending, stored.Status)
	assert.Equal(t, "sync", stored.Title)
}

func TestDelete(t *testing.T) {
	c, st := newTestCatalog(t)
	ctx := context.Background()

	slot, err := c.Create(ctx, "alice", "sync", monday, monday.Add(time.Hour), "")
	require.NoError(t, err)

	err = c.Delete(ctx, "bob", slot.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, c.Delete(ctx, "alice", slot.ID))
	_, err = st.FindSlot(ctx, slot.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = c.Delete(ctx, "alice", slot.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListSwappable(t *testing.T) {
	c, st := newTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, st.UpsertUser(ctx, &model.User{ID: "bob", Name: "Bob", Email: "bob@example.com"}))

	_, err := c.Create(ctx, "alice", "own offer", monday, monday.Add(time.Hour), model.SlotStatusSwappable)
	require.NoError(t, err)
	_, err = c.Create(ctx, "bob", "bob busy", monday, monday.Add(time.Hour), model.SlotStatusBusy)
	require.NoError(t, err)
	offer, err := c.Create(ctx, "bob", "bob offer", monday, monday.Add(time.Hour), model.SlotStatusSwappable)
	require.NoError(t, err)

	slots, err := c.ListSwappable(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, offer.ID, slots[0].ID)
	require.NotNil(t, slots[0].Owner)
	assert.Equal(t, "Bob", slots[0].Owner.Name)
}
