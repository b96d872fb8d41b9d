package reconcile

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"arbitrage/internal/models"
	"arbitrage/internal/scraper"
	"arbitrage/internal/service"
)

// AuctionFetcher is the subset of *scraper.Scraper the monitor loop
// needs — declared as an interface so tests can substitute a fake.
type AuctionFetcher interface {
	FetchAuctionPage(ctx context.Context, auctionID string) (*scraper.AuctionData, error)
}

var _ AuctionFetcher = (*scraper.Scraper)(nil)

// HistoryRecorder appends audit rows to the status_history table —
// narrowed to the one method the monitor loop calls.
type HistoryRecorder interface {
	Record(h *models.StatusHistory) error
}

// minCheckIntervalDefault is the interval used in an auction's final 30
// minutes when New is given no positive minCheckInterval.
const minCheckIntervalDefault = 30 * time.Second

// MonitorLoop polls auctions due for a check, reconciles their
// persisted state against the live page, and dispatches notifiers on
// every field that changed (§4.J).
type MonitorLoop struct {
	auctions AuctionFetcher
	items    *service.MonitoredItemService
	deals    *service.DealAlertService
	history  HistoryRecorder
	notifiers []Notifier

	minCheckInterval time.Duration
	log              *zap.Logger
}

// New builds a MonitorLoop. minCheckInterval is the effective_interval
// used once an auction is within 30 minutes of ending (§4.J); callers
// pass config.SchedulerConfig.MinCheckInterval.
func New(
	auctions AuctionFetcher,
	items *service.MonitoredItemService,
	deals *service.DealAlertService,
	history HistoryRecorder,
	minCheckInterval time.Duration,
	notifiers []Notifier,
	log *zap.Logger,
) *MonitorLoop {
	if minCheckInterval <= 0 {
		minCheckInterval = minCheckIntervalDefault
	}
	return &MonitorLoop{
		auctions:         auctions,
		items:            items,
		deals:            deals,
		history:          history,
		notifiers:        notifiers,
		minCheckInterval: minCheckInterval,
		log:              log,
	}
}

// TickResult accumulates per-tick counters for logging and tests.
type TickResult struct {
	Checked int
	Changed int
	Errors  int
}

// Tick polls every item due for a check and reconciles it. One item's
// failure never aborts the tick for the rest.
func (m *MonitorLoop) Tick(ctx context.Context) (*TickResult, error) {
	items, err := m.items.GetDueForCheck()
	if err != nil {
		return nil, err
	}

	res := &TickResult{}
	now := time.Now()

	for _, item := range items {
		res.Checked++
		changed, err := m.checkOne(ctx, item, now)
		if err != nil {
			res.Errors++
			m.log.Warn("auction check failed", zap.String("auction_id", item.AuctionID), zap.Error(err))
			continue
		}
		if changed {
			res.Changed++
		}
	}

	return res, nil
}

func (m *MonitorLoop) checkOne(ctx context.Context, item *models.MonitoredItem, now time.Time) (bool, error) {
	snapshot, err := m.fetchSnapshot(ctx, item)
	if err != nil {
		return false, err
	}

	changes := diffSnapshot(item, snapshot)
	for _, c := range changes {
		if err := m.history.Record(&models.StatusHistory{
			ItemID:      item.ID,
			ChangeType:  c.ChangeType,
			OldStatus:   c.OldStatus,
			NewStatus:   c.NewStatus,
			OldPrice:    c.OldPrice,
			NewPrice:    c.NewPrice,
			OldBidCount: c.OldBidCount,
			NewBidCount: c.NewBidCount,
		}); err != nil {
			return false, err
		}
	}

	wasActive := item.Status == models.ItemStatusActive
	if err := m.items.RecordCheck(item.ID, snapshot.CurrentPrice, snapshot.BidCount, snapshot.Status); err != nil {
		return false, err
	}

	if wasActive && snapshot.Status != models.ItemStatusActive {
		if _, err := m.deals.ExpireByAuction(item.AuctionID); err != nil {
			m.log.Warn("failed to expire alerts for closed auction", zap.String("auction_id", item.AuctionID), zap.Error(err))
		}
	}

	if newInterval := effectiveInterval(item, now, m.minCheckInterval); newInterval != item.CheckIntervalSeconds {
		if err := m.items.AdjustCheckInterval(item.ID, newInterval); err != nil {
			m.log.Warn("failed to adjust check interval", zap.String("auction_id", item.AuctionID), zap.Error(err))
		}
	}

	if len(changes) == 0 {
		return false, nil
	}

	updated := *item
	updated.CurrentPrice = snapshot.CurrentPrice
	updated.BidCount = snapshot.BidCount
	updated.Status = snapshot.Status

	for _, n := range m.notifiers {
		if err := n.NotifyChanges(ctx, &updated, changes); err != nil {
			m.log.Warn("notifier failed", zap.String("auction_id", item.AuctionID), zap.Error(err))
		}
	}

	return true, nil
}

// snapshot is the subset of a fetched auction page the monitor loop
// reconciles against persisted state.
type snapshot struct {
	CurrentPrice int
	BidCount     int
	Status       string
}

// fetchSnapshot fetches the live auction page, translating a gone
// auction into the terminal synthetic snapshot required by §7(3)
// instead of propagating the error.
func (m *MonitorLoop) fetchSnapshot(ctx context.Context, item *models.MonitoredItem) (*snapshot, error) {
	data, err := m.auctions.FetchAuctionPage(ctx, item.AuctionID)
	if err != nil {
		var gone *scraper.AuctionGoneError
		if errors.As(err, &gone) {
			return &snapshot{
				CurrentPrice: item.CurrentPrice,
				BidCount:     item.BidCount,
				Status:       models.ItemStatusEndedNoWinner,
			}, nil
		}
		return nil, err
	}

	return &snapshot{
		CurrentPrice: data.CurrentPrice,
		BidCount:     data.BidCount,
		Status:       auctionStatus(data),
	}, nil
}

func auctionStatus(data *scraper.AuctionData) string {
	if !data.IsClosed {
		return models.ItemStatusActive
	}
	if data.HasWinner {
		return models.ItemStatusEndedSold
	}
	return models.ItemStatusEndedNoWinner
}

// diffSnapshot compares the persisted item to the live snapshot and
// returns one Change per differing field, in the order status, price,
// bid count.
func diffSnapshot(item *models.MonitoredItem, snap *snapshot) []Change {
	var changes []Change

	if snap.Status != item.Status {
		changes = append(changes, Change{
			ChangeType: models.ChangeTypeStatusChange,
			OldStatus:  item.Status,
			NewStatus:  snap.Status,
		})
	}
	if snap.CurrentPrice != item.CurrentPrice {
		changes = append(changes, Change{
			ChangeType: models.ChangeTypePriceChange,
			OldPrice:   item.CurrentPrice,
			NewPrice:   snap.CurrentPrice,
		})
	}
	if snap.BidCount != item.BidCount {
		changes = append(changes, Change{
			ChangeType:  models.ChangeTypeBidChange,
			OldBidCount: item.BidCount,
			NewBidCount: snap.BidCount,
		})
	}

	return changes
}

// effectiveInterval implements §4.J's adaptive check frequency: the
// closer an auction is to ending, the tighter the poll interval, down
// to minCheckInterval in the final 30 minutes.
func effectiveInterval(item *models.MonitoredItem, now time.Time, minCheckInterval time.Duration) int {
	base := item.CheckIntervalSeconds
	if !item.AutoAdjustInterval || item.EndTime.IsZero() {
		return base
	}

	remaining := item.EndTime.Sub(now)
	switch {
	case remaining <= 0:
		return base
	case remaining < 30*time.Minute:
		return int(minCheckInterval.Seconds())
	case remaining < 2*time.Hour:
		return base / 2
	default:
		return base
	}
}
