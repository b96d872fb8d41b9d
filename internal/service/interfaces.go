package service

import (
	"time"

	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// DealAlertRepositoryInterface определяет интерфейс репозитория алертов
type DealAlertRepositoryInterface interface {
	Create(d *models.DealAlert) error
	GetByID(id int) (*models.DealAlert, error)
	GetActive(limit, offset int) ([]*models.DealAlert, error)
	GetByAuctionAndASIN(auctionID, asin string) (*models.DealAlert, error)
	MarkRejected(id int, reason, note string) error
	MarkListed(id int) error
	MarkNotified(id int) error
	ExpireStale(before time.Time) (int64, error)
	ExpireByAuction(auctionID string) (int64, error)
	CountByKeyword(keywordID int) (int, int, error)
	CountByStatus(status string) (int, error)
	CountAll() (int, error)
	Delete(id int) error
}

// WatchedKeywordRepositoryInterface определяет интерфейс репозитория ключевых слов
type WatchedKeywordRepositoryInterface interface {
	Create(k *models.WatchedKeyword) error
	GetAll() ([]*models.WatchedKeyword, error)
	GetActive() ([]*models.WatchedKeyword, error)
	GetByID(id int) (*models.WatchedKeyword, error)
	GetByKeyword(keyword string) (*models.WatchedKeyword, error)
	RecordScan(id int, dealsFound, grossProfit int) error
	UpdatePerformance(id int, score, confidence float64) error
	Deactivate(id int, auto bool) error
	Reactivate(id int) error
	Delete(id int) error
	Count() (int, error)
}

// MonitoredItemRepositoryInterface определяет интерфейс репозитория отслеживаемых лотов
type MonitoredItemRepositoryInterface interface {
	Create(m *models.MonitoredItem) error
	GetByID(id int) (*models.MonitoredItem, error)
	GetByAuctionID(auctionID string) (*models.MonitoredItem, error)
	GetActive() ([]*models.MonitoredItem, error)
	GetDueForCheck(now time.Time) ([]*models.MonitoredItem, error)
	GetListedOnMarketplace() ([]*models.MonitoredItem, error)
	GetPurgeEligible(before time.Time) ([]*models.MonitoredItem, error)
	UpdateAuctionState(id, currentPrice, bidCount int, status string) error
	SetMonitoringActive(id int, active bool) error
	SetCheckInterval(id, seconds int) error
	AttachListing(id int, asin, sku, condition, conditionNote, shippingPattern string, leadTimeDays int) error
	UpdateListingEconomics(id, amazonPrice, estimatedWinPrice, shippingCost, forwardingCost int, feePct, marginPct float64) error
	SetListingStatus(id int, status string) error
	ClearListingOnDelist(id int) error
	Delete(id int) error
	Count() (int, error)
}

// RejectionPatternRepositoryInterface определяет интерфейс репозитория паттернов отклонения
type RejectionPatternRepositoryInterface interface {
	GetByTypeAndKey(patternType, patternKey string) (*models.RejectionPattern, error)
	GetActiveByType(patternType string) ([]*models.RejectionPattern, error)
	Upsert(p *models.RejectionPattern) error
	Deactivate(id int) error
	Delete(id int) error
}

// KeywordCandidateRepositoryInterface определяет интерфейс репозитория кандидатов
type KeywordCandidateRepositoryInterface interface {
	Create(c *models.KeywordCandidate) error
	GetPending() ([]*models.KeywordCandidate, error)
	GetByID(id int) (*models.KeywordCandidate, error)
	SetValidationResult(id int, status string, result []byte) error
	Resolve(id int, status string) error
	ExistsPendingOrApproved(keyword string) (bool, error)
}

// ListingPresetRepositoryInterface определяет интерфейс репозитория пресетов листинга
type ListingPresetRepositoryInterface interface {
	Create(p *models.ListingPreset) error
	GetLatestByASIN(asin string) (*models.ListingPreset, error)
	GetHistoryByASIN(asin string) ([]*models.ListingPreset, error)
	Delete(id int) error
}

// Проверяем, что реальные репозитории реализуют интерфейсы
var _ DealAlertRepositoryInterface = (*repository.DealAlertRepository)(nil)
var _ WatchedKeywordRepositoryInterface = (*repository.WatchedKeywordRepository)(nil)
var _ MonitoredItemRepositoryInterface = (*repository.MonitoredItemRepository)(nil)
var _ RejectionPatternRepositoryInterface = (*repository.RejectionPatternRepository)(nil)
var _ KeywordCandidateRepositoryInterface = (*repository.KeywordCandidateRepository)(nil)
var _ ListingPresetRepositoryInterface = (*repository.ListingPresetRepository)(nil)
