package reconcile

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"arbitrage/internal/marketplace"
	"arbitrage/internal/models"
	"arbitrage/internal/service"
)

// missesBeforeDelist is how many consecutive "not found" results a SKU
// must accumulate before ListingSyncChecker treats it as deleted —
// guards against a single flaky SP-API response tearing down a listing
// that is still live.
const missesBeforeDelist = 2

// ListingSyncChecker periodically reconciles every listed item's
// marketplace state against what the system persisted: confirms
// deletions and picks up out-of-band price changes (§4.K).
type ListingSyncChecker struct {
	marketplace marketplace.SDK
	items       *service.MonitoredItemService
	history     HistoryRecorder
	sellerID    string
	log         *zap.Logger

	mu     sync.Mutex
	misses map[string]int
}

// NewListingSyncChecker builds a ListingSyncChecker.
func NewListingSyncChecker(sdk marketplace.SDK, items *service.MonitoredItemService, history HistoryRecorder, sellerID string, log *zap.Logger) *ListingSyncChecker {
	return &ListingSyncChecker{
		marketplace: sdk,
		items:       items,
		history:     history,
		sellerID:    sellerID,
		log:         log,
		misses:      map[string]int{},
	}
}

// Run checks every item with a live marketplace listing.
func (c *ListingSyncChecker) Run(ctx context.Context) error {
	items, err := c.items.GetListedOnMarketplace()
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := c.checkOne(ctx, item); err != nil {
			c.log.Warn("listing sync check failed", zap.String("sku", item.AmazonSKU), zap.Error(err))
		}
	}

	return nil
}

func (c *ListingSyncChecker) checkOne(ctx context.Context, item *models.MonitoredItem) error {
	listing, err := c.marketplace.GetListing(ctx, c.sellerID, item.AmazonSKU)
	if err != nil {
		if isNotFound(err) {
			return c.recordMiss(item)
		}
		return err
	}

	c.clearMiss(item.AmazonSKU)

	price := listing.Price()
	if price == nil || *price == item.AmazonPrice {
		return nil
	}

	cost := item.EstimatedWinPrice + item.ShippingCost + item.ForwardingCost
	marginPct := (1 - float64(cost)/float64(*price) - item.AmazonFeePct/100) * 100

	if err := c.history.Record(&models.StatusHistory{
		ItemID:     item.ID,
		ChangeType: models.ChangeTypePriceChange,
		OldPrice:   item.AmazonPrice,
		NewPrice:   *price,
	}); err != nil {
		return err
	}

	return c.items.UpdateEconomics(item.ID, *price, item.EstimatedWinPrice, item.ShippingCost, item.ForwardingCost, item.AmazonFeePct, marginPct)
}

func (c *ListingSyncChecker) recordMiss(item *models.MonitoredItem) error {
	c.mu.Lock()
	c.misses[item.AmazonSKU]++
	count := c.misses[item.AmazonSKU]
	c.mu.Unlock()

	if count < missesBeforeDelist {
		return nil
	}

	c.clearMiss(item.AmazonSKU)

	if err := c.history.Record(&models.StatusHistory{
		ItemID:     item.ID,
		ChangeType: models.ChangeTypeAmazonDelist,
		OldStatus:  item.AmazonListingStatus,
		NewStatus:  models.AmazonListingStatusDelisted,
	}); err != nil {
		return err
	}

	return c.items.ClearListingOnDelist(item.ID)
}

func (c *ListingSyncChecker) clearMiss(sku string) {
	c.mu.Lock()
	delete(c.misses, sku)
	c.mu.Unlock()
}

// isNotFound reports whether err represents a marketplace "listing not
// found" response rather than a transient failure.
func isNotFound(err error) bool {
	me, ok := err.(*marketplace.MarketplaceError)
	return ok && me.StatusCode == 404
}
