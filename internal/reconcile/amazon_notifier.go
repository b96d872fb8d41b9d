package reconcile

import (
	"context"

	"go.uber.org/zap"

	"arbitrage/internal/marketplace"
	"arbitrage/internal/models"
	"arbitrage/internal/service"
)

// AmazonNotifier tears down the marketplace listing the moment an
// auction leaves active (§4.K). It no-ops for items with no listing.
type AmazonNotifier struct {
	marketplace marketplace.SDK
	items       *service.MonitoredItemService
	sellerID    string
	log         *zap.Logger
}

// NewAmazonNotifier builds an AmazonNotifier.
func NewAmazonNotifier(sdk marketplace.SDK, items *service.MonitoredItemService, sellerID string, log *zap.Logger) *AmazonNotifier {
	return &AmazonNotifier{marketplace: sdk, items: items, sellerID: sellerID, log: log}
}

// NotifyChanges deletes the marketplace listing when the change set
// includes a status_change into an ended_* state for an item that
// still carries a SKU.
func (n *AmazonNotifier) NotifyChanges(ctx context.Context, item *models.MonitoredItem, changes []Change) error {
	if item.AmazonSKU == "" {
		return nil
	}

	for _, c := range changes {
		if c.ChangeType != models.ChangeTypeStatusChange {
			continue
		}
		if c.NewStatus != models.ItemStatusEndedNoWinner && c.NewStatus != models.ItemStatusEndedSold {
			continue
		}
		return n.delist(ctx, item)
	}

	return nil
}

func (n *AmazonNotifier) delist(ctx context.Context, item *models.MonitoredItem) error {
	if err := n.marketplace.DeleteListing(ctx, n.sellerID, item.AmazonSKU); err != nil {
		n.log.Warn("delete listing failed", zap.String("sku", item.AmazonSKU), zap.Error(err))
		return n.items.MarkListingError(item.ID)
	}

	return n.items.ClearListingOnDelist(item.ID)
}
