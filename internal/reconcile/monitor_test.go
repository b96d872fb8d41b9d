package reconcile

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"arbitrage/internal/models"
	"arbitrage/internal/scraper"
	"arbitrage/internal/service"
)

func newTestMonitorLoop(t *testing.T) (*MonitorLoop, *fakeAuctionFetcher, *fakeHistoryRecorder, *fakeMonitoredItemRepo, *fakeDealAlertRepo) {
	t.Helper()
	auctions := newFakeAuctionFetcher()
	history := &fakeHistoryRecorder{}
	itemRepo := newFakeMonitoredItemRepo()
	dealRepo := &fakeDealAlertRepo{}

	items := service.NewMonitoredItemService(itemRepo)
	deals := service.NewDealAlertService(dealRepo, nil)

	loop := New(auctions, items, deals, history, 30*time.Second, nil, zap.NewNop())
	return loop, auctions, history, itemRepo, dealRepo
}

func TestTick_StatusChangeExpiresAlertsAndStopsMonitoring(t *testing.T) {
	loop, auctions, history, itemRepo, dealRepo := newTestMonitorLoop(t)

	item := &models.MonitoredItem{
		AuctionID: "a1", Status: models.ItemStatusActive, CurrentPrice: 1000, BidCount: 2,
		IsMonitoringActive: true, CheckIntervalSeconds: 300,
	}
	if err := itemRepo.Create(item); err != nil {
		t.Fatalf("create: %v", err)
	}

	auctions.byAuction["a1"] = &scraper.AuctionData{
		AuctionID: "a1", CurrentPrice: 1200, BidCount: 3, IsClosed: true, HasWinner: true,
	}

	res, err := loop.Tick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Checked != 1 || res.Changed != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	got := itemRepo.byID[item.ID]
	if got.Status != models.ItemStatusEndedSold {
		t.Errorf("status = %q, want ended_sold", got.Status)
	}
	if got.IsMonitoringActive {
		t.Error("expected monitoring to stop once auction ended")
	}
	if len(dealRepo.expiredAuction) != 1 || dealRepo.expiredAuction[0] != "a1" {
		t.Errorf("expected alerts expired for a1, got %v", dealRepo.expiredAuction)
	}
	if len(history.records) != 3 {
		t.Fatalf("expected 3 status history rows (status/price/bid), got %d", len(history.records))
	}
	if history.records[0].ChangeType != models.ChangeTypeStatusChange {
		t.Errorf("first history row should be status_change, got %s", history.records[0].ChangeType)
	}
}

func TestTick_GoneAuctionBecomesEndedNoWinner(t *testing.T) {
	loop, auctions, _, itemRepo, _ := newTestMonitorLoop(t)

	item := &models.MonitoredItem{
		AuctionID: "a1", Status: models.ItemStatusActive, CurrentPrice: 1000,
		IsMonitoringActive: true, CheckIntervalSeconds: 300,
	}
	itemRepo.Create(item)

	auctions.errByAuction["a1"] = &scraper.AuctionGoneError{URL: "x", StatusCode: 404}

	if _, err := loop.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := itemRepo.byID[item.ID]
	if got.Status != models.ItemStatusEndedNoWinner {
		t.Errorf("status = %q, want ended_no_winner", got.Status)
	}
}

func TestTick_NoChangeSkipsHistoryAndNotifiers(t *testing.T) {
	loop, auctions, history, itemRepo, _ := newTestMonitorLoop(t)

	item := &models.MonitoredItem{
		AuctionID: "a1", Status: models.ItemStatusActive, CurrentPrice: 1000, BidCount: 1,
		IsMonitoringActive: true, CheckIntervalSeconds: 300,
	}
	itemRepo.Create(item)

	auctions.byAuction["a1"] = &scraper.AuctionData{AuctionID: "a1", CurrentPrice: 1000, BidCount: 1, IsClosed: false}

	res, err := loop.Tick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Changed != 0 {
		t.Errorf("expected no change, got %+v", res)
	}
	if len(history.records) != 0 {
		t.Errorf("expected no history rows, got %d", len(history.records))
	}
}

func TestEffectiveInterval(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	base := 600
	minInterval := 30 * time.Second

	cases := []struct {
		name     string
		item     *models.MonitoredItem
		expected int
	}{
		{
			name: "auto adjust off returns base",
			item: &models.MonitoredItem{CheckIntervalSeconds: base, AutoAdjustInterval: false, EndTime: now.Add(time.Hour)},
			expected: base,
		},
		{
			name: "missing end time returns base",
			item: &models.MonitoredItem{CheckIntervalSeconds: base, AutoAdjustInterval: true},
			expected: base,
		},
		{
			name: "already ended returns base",
			item: &models.MonitoredItem{CheckIntervalSeconds: base, AutoAdjustInterval: true, EndTime: now.Add(-time.Minute)},
			expected: base,
		},
		{
			name: "within 30 minutes uses floor",
			item: &models.MonitoredItem{CheckIntervalSeconds: base, AutoAdjustInterval: true, EndTime: now.Add(10 * time.Minute)},
			expected: int(minInterval.Seconds()),
		},
		{
			name: "within 2 hours halves base",
			item: &models.MonitoredItem{CheckIntervalSeconds: base, AutoAdjustInterval: true, EndTime: now.Add(time.Hour)},
			expected: base / 2,
		},
		{
			name: "beyond 2 hours returns base",
			item: &models.MonitoredItem{CheckIntervalSeconds: base, AutoAdjustInterval: true, EndTime: now.Add(3 * time.Hour)},
			expected: base,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := effectiveInterval(tc.item, now, minInterval)
			if got != tc.expected {
				t.Errorf("effectiveInterval() = %d, want %d", got, tc.expected)
			}
		})
	}
}
