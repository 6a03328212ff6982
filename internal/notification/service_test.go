package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"slotswap-backend/internal/apperr"
	"slotswap-backend/internal/db/dbtest"
	"slotswap-backend/internal/model"
	"slotswap-backend/internal/realtime"
	"slotswap-backend/internal/store"
)

type recordingPusher struct {
	mu     sync.Mutex
	online map[string]bool
	pushed map[string][]realtime.Event
}

func newRecordingPusher(online ...string) *recordingPusher {
	p := &recordingPusher{online: map[string]bool{}, pushed: map[string][]realtime.Event{}}
	for _, u := range online {
		p.online[u] = true
	}
	return p
}

func (p *recordingPusher) Push(userID string, ev realtime.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online[userID] {
		return false
	}
	p.pushed[userID] = append(p.pushed[userID], ev)
	return true
}

func (p *recordingPusher) events(userID string) []realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]realtime.Event(nil), p.pushed[userID]...)
}

func newTestService(t *testing.T, pusher Pusher) (*Service, store.Store) {
	t.Helper()
	st := store.NewGormStore(dbtest.Open(t))
	return NewService(st, pusher, zap.NewNop()), st
}

func samplePayload() model.SwapPayload {
	return model.SwapPayload{SwapRequest: model.SwapSnapshot{
		ID:        "req-1",
		Status:    model.SwapStatusPending,
		Requester: model.UserSnapshot{ID: "alice", Name: "Alice"},
		Responder: model.UserSnapshot{ID: "bob", Name: "Bob"},
		MySlot:    model.SlotSnapshot{ID: "slot-a"},
		TheirSlot: model.SlotSnapshot{ID: "slot-b"},
	}}
}

func TestNotify_PersistsAndPushesToConnectedUser(t *testing.T) {
	pusher := newRecordingPusher("bob")
	svc, _ := newTestService(t, pusher)
	ctx := context.Background()

	n, err := svc.Notify(ctx, "bob", model.NotificationSwapRequested, "Alice wants to swap slots with you", samplePayload())
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Read)

	events := pusher.events("bob")
	require.Len(t, events, 1)
	assert.Equal(t, "SWAP_REQUESTED", events[0].Name)
	msg, ok := events[0].Data.(Message)
	require.True(t, ok)
	assert.Equal(t, n.ID, msg.NotificationID)
	assert.Equal(t, "req-1", msg.Payload.SwapRequest.ID)

	inbox, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, int64(1), inbox.UnreadCount)
	assert.Equal(t, "Alice", inbox.Notifications[0].Payload.SwapRequest.Requester.Name)
}

func TestNotify_OfflineRecipientStillPersists(t *testing.T) {
	pusher := newRecordingPusher()
	svc, _ := newTestService(t, pusher)
	ctx := context.Background()

	_, err := svc.Notify(ctx, "bob", model.NotificationSwapAccepted, "Bob accepted your swap request!", samplePayload())
	require.NoError(t, err)

	assert.Empty(t, pusher.events("bob"))
	inbox, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, inbox.Notifications, 1)
}

func TestRecord_RolledBackWithTransaction(t *testing.T) {
	svc, st := newTestService(t, newRecordingPusher("bob"))
	ctx := context.Background()

	err := st.Transaction(ctx, func(tx store.Store) error {
		_, err := svc.Record(ctx, tx, "bob", model.NotificationSwapRequested, "msg", samplePayload())
		require.NoError(t, err)
		return apperr.Conflict("abort")
	})
	require.Error(t, err)

	inbox, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, inbox.Notifications)
	assert.Zero(t, inbox.UnreadCount)
}

func TestMarkRead(t *testing.T) {
	svc, _ := newTestService(t, newRecordingPusher())
	ctx := context.Background()

	n, err := svc.Notify(ctx, "bob", model.NotificationSwapRequested, "msg", samplePayload())
	require.NoError(t, err)

	t.Run("other users cannot see it", func(t *testing.T) {
		err := svc.MarkRead(ctx, n.ID, "mallory")
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("unknown id", func(t *testing.T) {
		err := svc.MarkRead(ctx, "missing", "bob")
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("recipient marks read", func(t *testing.T) {
		require.NoError(t, svc.MarkRead(ctx, n.ID, "bob"))
		inbox, err := svc.List(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, inbox.Notifications, 1)
		assert.True(t, inbox.Notifications[0].Read)
		assert.NotNil(t, inbox.Notifications[0].ReadAt)
		assert.Zero(t, inbox.UnreadCount)
	})

	t.Run("marking again is harmless", func(t *testing.T) {
		assert.NoError(t, svc.MarkRead(ctx, n.ID, "bob"))
	})
}

func TestMarkAllRead_IsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, newRecordingPusher())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Notify(ctx, "bob", model.NotificationSwapRequested, "msg", samplePayload())
		require.NoError(t, err)
	}
	_, err := svc.Notify(ctx, "alice", model.NotificationSwapRequested, "msg", samplePayload())
	require.NoError(t, err)

	changed, err := svc.MarkAllRead(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)

	changed, err = svc.MarkAllRead(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, changed)

	inbox, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), inbox.UnreadCount)
}

func TestList_NewestFirstAndCapped(t *testing.T) {
	svc, _ := newTestService(t, newRecordingPusher())
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	i := 0
	svc.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Minute)
	}

	for j := 0; j < ListLimit+5; j++ {
		_, err := svc.Notify(ctx, "bob", model.NotificationSwapRequested, "msg", samplePayload())
		require.NoError(t, err)
	}

	inbox, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, inbox.Notifications, ListLimit)
	assert.Equal(t, int64(ListLimit+5), inbox.UnreadCount)
	for k := 1; k < len(inbox.Notifications); k++ {
		assert.True(t, inbox.Notifications[k-1].CreatedAt.After(inbox.Notifications[k].CreatedAt))
	}
}

func TestDeliver_ThroughRegistry(t *testing.T) {
	reg := realtime.NewRegistry(zap.NewNop())
	conn := realtime.NewConn(4)
	reg.Register("bob", conn)
	svc, _ := newTestService(t, reg)

	n, err := svc.Notify(context.Background(), "bob", model.NotificationSwapRejected, "Bob rejected your swap request", samplePayload())
	require.NoError(t, err)

	select {
	case ev := <-conn.Outbound():
		assert.Equal(t, "SWAP_REJECTED", ev.Name)
		assert.Equal(t, n.ID, ev.Data.(Message).NotificationID)
	default:
		t.Fatal("expected a pushed event")
	}
}
