// Package reconcile keeps a MonitoredItem's persisted state, its
// marketplace listing, and its downstream notifications in sync: the
// monitor loop polls the auction site and applies state transitions
// (§4.J), the listing sync checker reconciles the marketplace side
// against what the monitor thinks is still listed (§4.K), and the order
// monitor watches for new marketplace orders.
package reconcile

import (
	"context"

	"arbitrage/internal/models"
)

// Change describes one field that differed between the persisted
// MonitoredItem and the freshly fetched auction snapshot. ChangeType is
// one of the models.ChangeType* constants.
type Change struct {
	ChangeType  string
	OldStatus   string
	NewStatus   string
	OldPrice    int
	NewPrice    int
	OldBidCount int
	NewBidCount int
}

// Notifier is invoked once per changed MonitoredItem after a monitor
// tick commits its state. Implementations must not block the loop for
// long — dispatch to a worker for anything that makes a network call.
type Notifier interface {
	NotifyChanges(ctx context.Context, item *models.MonitoredItem, changes []Change) error
}
