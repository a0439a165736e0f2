package swap

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
)

// transitions lists the statuses reachable from each status. Deletion of a
// pending request is handled separately.
var transitions = map[string][]string{
	entity.SwapStatusPending:  {entity.SwapStatusAccepted, entity.SwapStatusRejected},
	entity.SwapStatusAccepted: {entity.SwapStatusCompleted},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// authorizeTransition checks that actor may move swap to status `to`.
// Accepting and rejecting belong to the recipient; either party completes.
func authorizeTransition(swap *entity.SwapRequest, actor uuid.UUID, to string) error {
	if !swap.IsParty(actor) {
		return fmt.Errorf("not a party to this swap request: %w", apperror.ErrForbidden)
	}

	switch to {
	case entity.SwapStatusAccepted, entity.SwapStatusRejected:
		if swap.RecipientID != actor {
			return fmt.Errorf("only the recipient can %s a swap request: %w", verb(to), apperror.ErrForbidden)
		}
	case entity.SwapStatusCompleted:
	default:
		return fmt.Errorf("unknown status %q: %w", to, apperror.ErrBadRequest)
	}

	if !CanTransition(swap.Status, to) {
		return fmt.Errorf("cannot %s a %s swap request: %w", verb(to), swap.Status, apperror.ErrConflict)
	}
	return nil
}

func verb(status string) string {
	switch status {
	case entity.SwapStatusAccepted:
		return "accept"
	case entity.SwapStatusRejected:
		return "reject"
	case entity.SwapStatusCompleted:
		return "complete"
	}
	return status
}
