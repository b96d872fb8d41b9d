package service

import (
	"errors"
	"testing"
	"time"

	"arbitrage/internal/models"
)

func TestDealAlertService_RegisterDeal(t *testing.T) {
	tests := []struct {
		name    string
		deal    *models.DealAlert
		setup   func(*MockDealAlertRepository)
		wantErr error
	}{
		{
			name: "успешная регистрация",
			deal: &models.DealAlert{YahooAuctionID: "a1", AmazonASIN: "B001", GrossProfit: 1000},
		},
		{
			name: "дубликат по auction/asin",
			deal: &models.DealAlert{YahooAuctionID: "a1", AmazonASIN: "B001"},
			setup: func(m *MockDealAlertRepository) {
				_ = m.Create(&models.DealAlert{YahooAuctionID: "a1", AmazonASIN: "B001"})
			},
			wantErr: ErrDealAlertDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dealRepo := NewMockDealAlertRepository()
			keywordRepo := NewMockWatchedKeywordRepository()
			if tt.setup != nil {
				tt.setup(dealRepo)
			}

			svc := NewDealAlertService(dealRepo, keywordRepo)
			d, err := svc.RegisterDeal(tt.deal)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.ID == 0 {
				t.Error("expected ID to be assigned")
			}
		})
	}
}

func TestDealAlertService_GetActiveDeals(t *testing.T) {
	dealRepo := NewMockDealAlertRepository()
	keywordRepo := NewMockWatchedKeywordRepository()
	svc := NewDealAlertService(dealRepo, keywordRepo)

	_, _ = svc.RegisterDeal(&models.DealAlert{YahooAuctionID: "a1", AmazonASIN: "B001", Status: models.DealStatusActive})
	_, _ = svc.RegisterDeal(&models.DealAlert{YahooAuctionID: "a2", AmazonASIN: "B002", Status: models.DealStatusActive})

	deals, err := svc.GetActiveDeals(0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deals) != 2 {
		t.Errorf("expected 2 deals, got %d", len(deals))
	}
}

func TestDealAlertService_GetActiveDeals_EmptyNeverNil(t *testing.T) {
	dealRepo := NewMockDealAlertRepository()
	keywordRepo := NewMockWatchedKeywordRepository()
	svc := NewDealAlertService(dealRepo, keywordRepo)

	deals, err := svc.GetActiveDeals(10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deals == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestDealAlertService_Reject(t *testing.T) {
	dealRepo := NewMockDealAlertRepository()
	keywordRepo := NewMockWatchedKeywordRepository()
	svc := NewDealAlertService(dealRepo, keywordRepo)

	d, _ := svc.RegisterDeal(&models.DealAlert{YahooAuctionID: "a1", AmazonASIN: "B001"})

	if err := svc.Reject(d.ID, models.RejectionReasonBadPrice, "margin too low"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := svc.GetByID(d.ID)
	if got.Status != models.DealStatusRejected {
		t.Errorf("expected status rejected, got %s", got.Status)
	}

	if err := svc.Reject(999, models.RejectionReasonOther, ""); !errors.Is(err, ErrDealAlertNotFound) {
		t.Errorf("expected ErrDealAlertNotFound, got %v", err)
	}
}

func TestDealAlertService_MarkListed_RecordsKeywordScan(t *testing.T) {
	dealRepo := NewMockDealAlertRepository()
	keywordRepo := NewMockWatchedKeywordRepository()
	svc := NewDealAlertService(dealRepo, keywordRepo)

	kw := &models.WatchedKeyword{Keyword: "retro console", Source: models.KeywordSourceManual}
	_ = keywordRepo.Create(kw)

	d, _ := svc.RegisterDeal(&models.DealAlert{YahooAuctionID: "a1", AmazonASIN: "B001", KeywordID: kw.ID, GrossProfit: 2500})

	if err := svc.MarkListed(d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := svc.GetByID(d.ID)
	if got.Status != models.DealStatusListed {
		t.Errorf("expected status listed, got %s", got.Status)
	}
	if kw.TotalDealsFound != 1 || kw.TotalGrossProfit != 2500 {
		t.Errorf("expected keyword stats updated, got deals=%d profit=%d", kw.TotalDealsFound, kw.TotalGrossProfit)
	}
}

func TestDealAlertService_MarkNotified(t *testing.T) {
	dealRepo := NewMockDealAlertRepository()
	keywordRepo := NewMockWatchedKeywordRepository()
	svc := NewDealAlertService(dealRepo, keywordRepo)

	d, _ := svc.RegisterDeal(&models.DealAlert{YahooAuctionID: "a1", AmazonASIN: "B001"})

	if err := svc.MarkNotified(d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetByID(d.ID)
	if got.NotifiedAt == nil {
		t.Error("expected NotifiedAt to be set")
	}
}

func TestDealAlertService_ExpireStale(t *testing.T) {
	dealRepo := NewMockDealAlertRepository()
	keywordRepo := NewMockWatchedKeywordRepository()
	svc := NewDealAlertService(dealRepo, keywordRepo)

	d, _ := svc.RegisterDeal(&models.DealAlert{YahooAuctionID: "a1", AmazonASIN: "B001", Status: models.DealStatusActive})
	d.CreatedAt = time.Now().Add(-48 * time.Hour)

	n, err := svc.ExpireStale(24 * time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired, got %d", n)
	}
}
