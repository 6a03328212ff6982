// Package ledger owns the swap request state machine: proposing a swap
// claims both slots, responding either exchanges their owners or releases
// them. Every transition commits in one transaction together with the
// notification it raises.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"slotswap-backend/internal/apperr"
	"slotswap-backend/internal/model"
	"slotswap-backend/internal/store"
)

// Notifier records notifications inside a transaction and pushes them once
// the transaction has committed.
type Notifier interface {
	Record(ctx context.Context, st store.NotificationStore, recipientID string, typ model.NotificationType, message string, payload model.SwapPayload) (*model.Notification, error)
	Deliver(n *model.Notification)
}

// Requests is a user's view of the swap requests they take part in.
type Requests struct {
	Incoming []model.SwapRequest `json:"incoming"`
	Outgoing []model.SwapRequest `json:"outgoing"`
}

type Ledger struct {
	store    store.Store
	notifier Notifier
	locks    *slotLocks
	logger   *zap.Logger
}

func New(st store.Store, notifier Notifier, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:    st,
		notifier: notifier,
		locks:    newSlotLocks(),
		logger:   logger,
	}
}

// ProposeSwap offers mySlotID (owned by requesterID) in exchange for
// theirSlotID. On success both slots are SWAP_PENDING and the responder has
// a SWAP_REQUESTED notification.
func (l *Ledger) ProposeSwap(ctx context.Context, requesterID, mySlotID, theirSlotID string) (*model.SwapRequest, error) {
	if mySlotID == "" || theirSlotID == "" {
		return nil, apperr.Invalid("mySlotId and theirSlotId are required")
	}

	unlock := l.locks.Lock(mySlotID, theirSlotID)
	defer unlock()

	var (
		created      *model.SwapRequest
		notification *model.Notification
	)
	err := l.store.Transaction(ctx, func(tx store.Store) error {
		mySlot, err := tx.FindOwnedSlot(ctx, requesterID, mySlotID)
		if err != nil {
			return storeErr(err, apperr.NotFound("Your slot not found"))
		}
		if mySlot.Status != model.SlotStatusSwappable {
			return apperr.Conflict("Your slot is not swappable")
		}

		theirSlot, err := tx.FindSlot(ctx, theirSlotID)
		if err != nil {
			return storeErr(err, apperr.NotFound("Requested slot not found"))
		}
		if theirSlot.Status != model.SlotStatusSwappable {
			return apperr.Conflict("Requested slot is not swappable")
		}
		if theirSlot.OwnerID == requesterID {
			return apperr.Invalid("Cannot swap with your own slot")
		}

		pending, err := tx.CountPendingReferencing(ctx, mySlotID, theirSlotID)
		if err != nil {
			return apperr.Internal("check pending requests", err)
		}
		if pending > 0 {
			return apperr.Conflict("A pending swap request already exists for one of these slots")
		}

		req := &model.SwapRequest{
			RequesterID: requesterID,
			ResponderID: theirSlot.OwnerID,
			MySlotID:    mySlotID,
			TheirSlotID: theirSlotID,
			Status:      model.SwapStatusPending,
		}
		if err := tx.CreateSwapRequest(ctx, req); err != nil {
			return storeErr(err, apperr.Conflict("A pending swap request already exists for one of these slots"))
		}
		for _, id := range []string{mySlotID, theirSlotID} {
			if err := tx.CompareAndSetSlot(ctx, id, model.SlotStatusSwappable, model.SlotStatusSwapPending, ""); err != nil {
				return storeErr(err, apperr.Conflict("Slot is no longer swappable"))
			}
		}

		created, err = tx.FindSwapRequest(ctx, req.ID)
		if err != nil {
			return apperr.Internal("reload swap request", err)
		}

		msg := fmt.Sprintf("%s wants to swap slots with you", created.Requester.DisplayName("Someone"))
		notification, err = l.notifier.Record(ctx, tx, created.ResponderID, model.NotificationSwapRequested, msg, model.NewSwapPayload(created))
		return err
	})
	if err != nil {
		return nil, l.fail("propose swap", err)
	}

	l.logger.Info("Swap proposed",
		zap.String("request_id", created.ID),
		zap.String("requester_id", created.RequesterID),
		zap.String("responder_id", created.ResponderID),
	)
	l.notifier.Deliver(notification)
	return created, nil
}

// Respond settles a pending request. Accepting exchanges the owners of the
// two slots and marks both BUSY; rejecting makes both SWAPPABLE again.
// Either way the requester is notified.
func (l *Ledger) Respond(ctx context.Context, requestID, responderID string, accept bool) (*model.SwapRequest, error) {
	req, err := l.store.FindSwapRequest(ctx, requestID)
	if err != nil {
		return nil, l.fail("respond", storeErr(err, apperr.NotFound("Swap request not found")))
	}
	if req.ResponderID != responderID {
		return nil, apperr.Forbidden("Not authorized to respond to this request")
	}
	if !req.IsPending() {
		return nil, apperr.Conflict("Swap request already processed")
	}

	unlock := l.locks.Lock(req.MySlotID, req.TheirSlotID)
	defer unlock()

	next := model.SwapStatusRejected
	if accept {
		next = model.SwapStatusAccepted
	}

	var (
		updated      *model.SwapRequest
		notification *model.Notification
	)
	err = l.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.CompareAndSetSwapStatus(ctx, req.ID, model.SwapStatusPending, next); err != nil {
			return storeErr(err, apperr.Conflict("Swap request already processed"))
		}

		if accept {
			if err := l.releaseSlot(ctx, tx, req.MySlotID, model.SlotStatusBusy, req.ResponderID); err != nil {
				return err
			}
			if err := l.releaseSlot(ctx, tx, req.TheirSlotID, model.SlotStatusBusy, req.RequesterID); err != nil {
				return err
			}
		} else {
			if err := l.releaseSlot(ctx, tx, req.MySlotID, model.SlotStatusSwappable, ""); err != nil {
				return err
			}
			if err := l.releaseSlot(ctx, tx, req.TheirSlotID, model.SlotStatusSwappable, ""); err != nil {
				return err
			}
		}

		var err error
		updated, err = tx.FindSwapRequest(ctx, req.ID)
		if err != nil {
			return apperr.Internal("reload swap request", err)
		}

		responder := updated.Responder.DisplayName("Someone")
		typ := model.NotificationSwapRejected
		msg := fmt.Sprintf("%s rejected your swap request", responder)
		if accept {
			typ = model.NotificationSwapAccepted
			msg = fmt.Sprintf("%s accepted your swap request!", responder)
		}
		notification, err = l.notifier.Record(ctx, tx, updated.RequesterID, typ, msg, model.NewSwapPayload(updated))
		return err
	})
	if err != nil {
		return nil, l.fail("respond", err)
	}

	l.logger.Info("Swap request settled",
		zap.String("request_id", updated.ID),
		zap.String("status", string(updated.Status)),
	)
	l.notifier.Deliver(notification)
	return updated, nil
}

// releaseSlot moves a claimed slot out of SWAP_PENDING.
func (l *Ledger) releaseSlot(ctx context.Context, tx store.Store, slotID string, next model.SlotStatus, newOwnerID string) error {
	err := tx.CompareAndSetSlot(ctx, slotID, model.SlotStatusSwapPending, next, newOwnerID)
	if err != nil {
		return storeErr(err, apperr.Conflict("Slot is not pending a swap"))
	}
	return nil
}

// ListRequests returns the pending requests addressed to userID and every
// request userID has made, newest first.
func (l *Ledger) ListRequests(ctx context.Context, userID string) (*Requests, error) {
	incoming, err := l.store.ListIncomingPending(ctx, userID)
	if err != nil {
		return nil, l.fail("list requests", apperr.Internal("list incoming requests", err))
	}
	outgoing, err := l.store.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, l.fail("list requests", apperr.Internal("list outgoing requests", err))
	}
	if incoming == nil {
		incoming = []model.SwapRequest{}
	}
	if outgoing == nil {
		outgoing = []model.SwapRequest{}
	}
	return &Requests{Incoming: incoming, Outgoing: outgoing}, nil
}

// storeErr translates the store's sentinel errors. ErrNotFound and
// ErrPreconditionFailed become mapped; anything else is internal.
func storeErr(err error, mapped error) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrPreconditionFailed):
		return mapped
	default:
		return apperr.Internal("store", err)
	}
}

func (l *Ledger) fail(op string, err error) error {
	if apperr.KindOf(err) == apperr.KindInternal {
		l.logger.Error("Ledger operation failed", zap.String("op", op), zap.Error(err))
		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			return apperr.Internal(op, err)
		}
	}
	return err
}
