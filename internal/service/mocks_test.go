package service

import (
	"context"
	"time"

	"arbitrage/internal/marketplace"
	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// ============ Mock DealAlertRepository ============

type MockDealAlertRepository struct {
	byID     map[int]*models.DealAlert
	byKey    map[string]*models.DealAlert
	nextID   int
	createErr error
}

func NewMockDealAlertRepository() *MockDealAlertRepository {
	return &MockDealAlertRepository{byID: map[int]*models.DealAlert{}, byKey: map[string]*models.DealAlert{}, nextID: 1}
}

func dealKey(auctionID, asin string) string { return auctionID + "|" + asin }

func (m *MockDealAlertRepository) Create(d *models.DealAlert) error {
	if m.createErr != nil {
		return m.createErr
	}
	d.ID = m.nextID
	m.nextID++
	m.byID[d.ID] = d
	m.byKey[dealKey(d.YahooAuctionID, d.AmazonASIN)] = d
	return nil
}

func (m *MockDealAlertRepository) GetByID(id int) (*models.DealAlert, error) {
	if d, ok := m.byID[id]; ok {
		return d, nil
	}
	return nil, repository.ErrDealAlertNotFound
}

func (m *MockDealAlertRepository) GetActive(limit, offset int) ([]*models.DealAlert, error) {
	var out []*models.DealAlert
	for _, d := range m.byID {
		if d.Status == models.DealStatusActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockDealAlertRepository) GetByAuctionAndASIN(auctionID, asin string) (*models.DealAlert, error) {
	if d, ok := m.byKey[dealKey(auctionID, asin)]; ok {
		return d, nil
	}
	return nil, repository.ErrDealAlertNotFound
}

func (m *MockDealAlertRepository) MarkRejected(id int, reason, note string) error {
	d, ok := m.byID[id]
	if !ok {
		return repository.ErrDealAlertNotFound
	}
	d.Status = models.DealStatusRejected
	d.RejectionReason = reason
	d.RejectionNote = note
	return nil
}

func (m *MockDealAlertRepository) MarkListed(id int) error {
	d, ok := m.byID[id]
	if !ok {
		return repository.ErrDealAlertNotFound
	}
	d.Status = models.DealStatusListed
	return nil
}

func (m *MockDealAlertRepository) MarkNotified(id int) error {
	d, ok := m.byID[id]
	if !ok {
		return repository.ErrDealAlertNotFound
	}
	now := time.Now()
	d.NotifiedAt = &now
	return nil
}

func (m *MockDealAlertRepository) ExpireStale(before time.Time) (int64, error) {
	var n int64
	for _, d := range m.byID {
		if d.Status == models.DealStatusActive && d.CreatedAt.Before(before) {
			d.Status = models.DealStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *MockDealAlertRepository) ExpireByAuction(auctionID string) (int64, error) {
	var n int64
	for _, d := range m.byID {
		if d.Status == models.DealStatusActive && d.YahooAuctionID == auctionID {
			d.Status = models.DealStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *MockDealAlertRepository) CountByKeyword(keywordID int) (int, int, error) {
	count, profit := 0, 0
	for _, d := range m.byID {
		if d.KeywordID == keywordID {
			count++
			profit += d.GrossProfit
		}
	}
	return count, profit, nil
}

func (m *MockDealAlertRepository) CountByStatus(status string) (int, error) {
	n := 0
	for _, d := range m.byID {
		if d.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *MockDealAlertRepository) CountAll() (int, error) {
	return len(m.byID), nil
}

func (m *MockDealAlertRepository) Delete(id int) error {
	if _, ok := m.byID[id]; !ok {
		return repository.ErrDealAlertNotFound
	}
	delete(m.byID, id)
	return nil
}

// ============ Mock WatchedKeywordRepository ============

type MockWatchedKeywordRepository struct {
	byID    map[int]*models.WatchedKeyword
	byWord  map[string]*models.WatchedKeyword
	nextID  int
}

func NewMockWatchedKeywordRepository() *MockWatchedKeywordRepository {
	return &MockWatchedKeywordRepository{byID: map[int]*models.WatchedKeyword{}, byWord: map[string]*models.WatchedKeyword{}, nextID: 1}
}

func (m *MockWatchedKeywordRepository) Create(k *models.WatchedKeyword) error {
	if _, exists := m.byWord[k.Keyword]; exists {
		return repository.ErrWatchedKeywordExists
	}
	k.ID = m.nextID
	m.nextID++
	m.byID[k.ID] = k
	m.byWord[k.Keyword] = k
	return nil
}

func (m *MockWatchedKeywordRepository) GetAll() ([]*models.WatchedKeyword, error) {
	var out []*models.WatchedKeyword
	for _, k := range m.byID {
		out = append(out, k)
	}
	return out, nil
}

func (m *MockWatchedKeywordRepository) GetActive() ([]*models.WatchedKeyword, error) {
	var out []*models.WatchedKeyword
	for _, k := range m.byID {
		if k.IsActive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *MockWatchedKeywordRepository) GetByID(id int) (*models.WatchedKeyword, error) {
	if k, ok := m.byID[id]; ok {
		return k, nil
	}
	return nil, repository.ErrWatchedKeywordNotFound
}

func (m *MockWatchedKeywordRepository) GetByKeyword(keyword string) (*models.WatchedKeyword, error) {
	if k, ok := m.byWord[keyword]; ok {
		return k, nil
	}
	return nil, repository.ErrWatchedKeywordNotFound
}

func (m *MockWatchedKeywordRepository) RecordScan(id int, dealsFound, grossProfit int) error {
	k, ok := m.byID[id]
	if !ok {
		return repository.ErrWatchedKeywordNotFound
	}
	k.TotalScans++
	k.TotalDealsFound += dealsFound
	k.TotalGrossProfit += grossProfit
	if dealsFound > 0 {
		k.ScansSinceLastDeal = 0
	} else {
		k.ScansSinceLastDeal++
	}
	return nil
}

func (m *MockWatchedKeywordRepository) UpdatePerformance(id int, score, confidence float64) error {
	k, ok := m.byID[id]
	if !ok {
		return repository.ErrWatchedKeywordNotFound
	}
	k.PerformanceScore = score
	k.Confidence = confidence
	return nil
}

func (m *MockWatchedKeywordRepository) Deactivate(id int, auto bool) error {
	k, ok := m.byID[id]
	if !ok {
		return repository.ErrWatchedKeywordNotFound
	}
	k.IsActive = false
	return nil
}

func (m *MockWatchedKeywordRepository) Reactivate(id int) error {
	k, ok := m.byID[id]
	if !ok {
		return repository.ErrWatchedKeywordNotFound
	}
	k.IsActive = true
	k.ScansSinceLastDeal = 0
	return nil
}

func (m *MockWatchedKeywordRepository) Delete(id int) error {
	k, ok := m.byID[id]
	if !ok {
		return repository.ErrWatchedKeywordNotFound
	}
	delete(m.byID, id)
	delete(m.byWord, k.Keyword)
	return nil
}

func (m *MockWatchedKeywordRepository) Count() (int, error) {
	return len(m.byID), nil
}

// ============ Mock KeywordCandidateRepository ============

type MockKeywordCandidateRepository struct {
	byID   map[int]*models.KeywordCandidate
	nextID int
}

func NewMockKeywordCandidateRepository() *MockKeywordCandidateRepository {
	return &MockKeywordCandidateRepository{byID: map[int]*models.KeywordCandidate{}, nextID: 1}
}

func (m *MockKeywordCandidateRepository) Create(c *models.KeywordCandidate) error {
	c.ID = m.nextID
	m.nextID++
	m.byID[c.ID] = c
	return nil
}

func (m *MockKeywordCandidateRepository) GetPending() ([]*models.KeywordCandidate, error) {
	var out []*models.KeywordCandidate
	for _, c := range m.byID {
		if c.Status == models.CandidateStatusPending {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockKeywordCandidateRepository) GetByID(id int) (*models.KeywordCandidate, error) {
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, repository.ErrKeywordCandidateNotFound
}

func (m *MockKeywordCandidateRepository) SetValidationResult(id int, status string, result []byte) error {
	c, ok := m.byID[id]
	if !ok {
		return repository.ErrKeywordCandidateNotFound
	}
	c.Status = status
	c.ValidationResult = result
	return nil
}

func (m *MockKeywordCandidateRepository) Resolve(id int, status string) error {
	c, ok := m.byID[id]
	if !ok {
		return repository.ErrKeywordCandidateNotFound
	}
	c.Status = status
	return nil
}

func (m *MockKeywordCandidateRepository) ExistsPendingOrApproved(keyword string) (bool, error) {
	for _, c := range m.byID {
		if c.Keyword == keyword && c.Status != models.CandidateStatusRejected {
			return true, nil
		}
	}
	return false, nil
}

// ============ Mock MonitoredItemRepository ============

type MockMonitoredItemRepository struct {
	byID       map[int]*models.MonitoredItem
	byAuction  map[string]*models.MonitoredItem
	nextID     int
}

func NewMockMonitoredItemRepository() *MockMonitoredItemRepository {
	return &MockMonitoredItemRepository{byID: map[int]*models.MonitoredItem{}, byAuction: map[string]*models.MonitoredItem{}, nextID: 1}
}

func (m *MockMonitoredItemRepository) Create(item *models.MonitoredItem) error {
	if _, exists := m.byAuction[item.AuctionID]; exists {
		return repository.ErrMonitoredItemExists
	}
	item.ID = m.nextID
	m.nextID++
	m.byID[item.ID] = item
	m.byAuction[item.AuctionID] = item
	return nil
}

func (m *MockMonitoredItemRepository) GetByID(id int) (*models.MonitoredItem, error) {
	if item, ok := m.byID[id]; ok {
		return item, nil
	}
	return nil, repository.ErrMonitoredItemNotFound
}

func (m *MockMonitoredItemRepository) GetByAuctionID(auctionID string) (*models.MonitoredItem, error) {
	if item, ok := m.byAuction[auctionID]; ok {
		return item, nil
	}
	return nil, repository.ErrMonitoredItemNotFound
}

func (m *MockMonitoredItemRepository) GetActive() ([]*models.MonitoredItem, error) {
	var out []*models.MonitoredItem
	for _, item := range m.byID {
		if item.IsMonitoringActive && item.Status == models.ItemStatusActive {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MockMonitoredItemRepository) GetListedOnMarketplace() ([]*models.MonitoredItem, error) {
	var out []*models.MonitoredItem
	for _, item := range m.byID {
		if item.AmazonSKU == "" {
			continue
		}
		if item.AmazonListingStatus == models.AmazonListingStatusActive || item.AmazonListingStatus == models.AmazonListingStatusInactive {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MockMonitoredItemRepository) GetDueForCheck(now time.Time) ([]*models.MonitoredItem, error) {
	var out []*models.MonitoredItem
	for _, item := range m.byID {
		if item.IsMonitoringActive && item.Status == models.ItemStatusActive {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MockMonitoredItemRepository) GetPurgeEligible(before time.Time) ([]*models.MonitoredItem, error) {
	var out []*models.MonitoredItem
	for _, item := range m.byID {
		if item.IsEnded() && item.AmazonListingStatus == models.AmazonListingStatusDelisted && item.UpdatedAt.Before(before) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MockMonitoredItemRepository) UpdateAuctionState(id, currentPrice, bidCount int, status string) error {
	item, ok := m.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	item.CurrentPrice = currentPrice
	item.BidCount = bidCount
	item.Status = status
	return nil
}

func (m *MockMonitoredItemRepository) SetMonitoringActive(id int, active bool) error {
	item, ok := m.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	item.IsMonitoringActive = active
	return nil
}

func (m *MockMonitoredItemRepository) SetCheckInterval(id, seconds int) error {
	item, ok := m.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	item.CheckIntervalSeconds = seconds
	return nil
}

func (m *MockMonitoredItemRepository) AttachListing(id int, asin, sku, condition, conditionNote, shippingPattern string, leadTimeDays int) error {
	item, ok := m.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	item.AmazonASIN = asin
	item.AmazonSKU = sku
	item.AmazonCondition = condition
	item.AmazonConditionNote = conditionNote
	item.AmazonShippingPattern = shippingPattern
	item.AmazonLeadTimeDays = leadTimeDays
	item.AmazonListingStatus = models.AmazonListingStatusActive
	return nil
}

func (m *MockMonitoredItemRepository) UpdateListingEconomics(id, amazonPrice, estimatedWinPrice, shippingCost, forwardingCost int, feePct, marginPct float64) error {
	item, ok := m.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	item.AmazonPrice = amazonPrice
	item.EstimatedWinPrice = estimatedWinPrice
	item.ShippingCost = shippingCost
	item.ForwardingCost = forwardingCost
	item.AmazonFeePct = feePct
	item.AmazonMarginPct = marginPct
	return nil
}

func (m *MockMonitoredItemRepository) SetListingStatus(id int, status string) error {
	item, ok := m.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	item.AmazonListingStatus = status
	return nil
}

func (m *MockMonitoredItemRepository) ClearListingOnDelist(id int) error {
	item, ok := m.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	item.AmazonSKU = ""
	item.AmazonListingStatus = models.AmazonListingStatusDelisted
	item.AmazonLastSyncedAt = nil
	return nil
}

func (m *MockMonitoredItemRepository) Delete(id int) error {
	item, ok := m.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	delete(m.byID, id)
	delete(m.byAuction, item.AuctionID)
	return nil
}

func (m *MockMonitoredItemRepository) Count() (int, error) {
	return len(m.byID), nil
}

// ============ Mock RejectionPatternRepository ============

type MockRejectionPatternRepository struct {
	byKey  map[string]*models.RejectionPattern
	nextID int
}

func NewMockRejectionPatternRepository() *MockRejectionPatternRepository {
	return &MockRejectionPatternRepository{byKey: map[string]*models.RejectionPattern{}, nextID: 1}
}

func rejectionKey(patternType, patternKey string) string { return patternType + "|" + patternKey }

func (m *MockRejectionPatternRepository) GetByTypeAndKey(patternType, patternKey string) (*models.RejectionPattern, error) {
	if p, ok := m.byKey[rejectionKey(patternType, patternKey)]; ok {
		return p, nil
	}
	return nil, repository.ErrRejectionPatternNotFound
}

func (m *MockRejectionPatternRepository) GetActiveByType(patternType string) ([]*models.RejectionPattern, error) {
	var out []*models.RejectionPattern
	for _, p := range m.byKey {
		if p.PatternType == patternType && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockRejectionPatternRepository) Upsert(p *models.RejectionPattern) error {
	key := rejectionKey(p.PatternType, p.PatternKey)
	if existing, ok := m.byKey[key]; ok {
		existing.RecordHit()
		*p = *existing
		return nil
	}
	p.ID = m.nextID
	m.nextID++
	p.HitCount = 1
	p.IsActive = true
	m.byKey[key] = p
	return nil
}

func (m *MockRejectionPatternRepository) Deactivate(id int) error {
	for _, p := range m.byKey {
		if p.ID == id {
			p.IsActive = false
			return nil
		}
	}
	return repository.ErrRejectionPatternNotFound
}

func (m *MockRejectionPatternRepository) Delete(id int) error {
	for key, p := range m.byKey {
		if p.ID == id {
			delete(m.byKey, key)
			return nil
		}
	}
	return repository.ErrRejectionPatternNotFound
}

// ============ Mock ListingPresetRepository ============

type MockListingPresetRepository struct {
	byASIN map[string][]*models.ListingPreset
	nextID int
}

func NewMockListingPresetRepository() *MockListingPresetRepository {
	return &MockListingPresetRepository{byASIN: map[string][]*models.ListingPreset{}, nextID: 1}
}

func (m *MockListingPresetRepository) Create(p *models.ListingPreset) error {
	p.ID = m.nextID
	m.nextID++
	m.byASIN[p.ASIN] = append(m.byASIN[p.ASIN], p)
	return nil
}

func (m *MockListingPresetRepository) GetLatestByASIN(asin string) (*models.ListingPreset, error) {
	presets := m.byASIN[asin]
	if len(presets) == 0 {
		return nil, repository.ErrListingPresetNotFound
	}
	return presets[len(presets)-1], nil
}

func (m *MockListingPresetRepository) GetHistoryByASIN(asin string) ([]*models.ListingPreset, error) {
	return m.byASIN[asin], nil
}

func (m *MockListingPresetRepository) Delete(id int) error {
	for asin, presets := range m.byASIN {
		for i, p := range presets {
			if p.ID == id {
				m.byASIN[asin] = append(presets[:i], presets[i+1:]...)
				return nil
			}
		}
	}
	return repository.ErrListingPresetNotFound
}

// ============ Mock marketplace.SDK ============

type MockSDK struct {
	restrictions    []marketplace.ListingRestriction
	restrictionsErr error
	createResult    *marketplace.ListingResult
	createErr       error
	patchImagesErr  error
	patchLeadTimeErr error
	patchPriceErr   error
	deleteErr       error

	createCalls         []string // sellerID captured per call
	patchLeadTimeDays   int
	patchImagesCalls    [][]string
	patchPriceCalls     []int
	deleteCalls         []string
}

func NewMockSDK() *MockSDK {
	return &MockSDK{createResult: &marketplace.ListingResult{Status: marketplace.ListingStatusAccepted}}
}

func (m *MockSDK) GetCatalogItem(ctx context.Context, asin string) (*marketplace.CatalogItem, error) {
	return nil, nil
}

func (m *MockSDK) SearchCatalogItems(ctx context.Context, keywords string, pageSize int) ([]marketplace.CatalogItem, error) {
	return nil, nil
}

func (m *MockSDK) GetProductType(ctx context.Context, asin string) (string, error) {
	return "", nil
}

func (m *MockSDK) GetListingRestrictions(ctx context.Context, asin, conditionType string) ([]marketplace.ListingRestriction, error) {
	return m.restrictions, m.restrictionsErr
}

func (m *MockSDK) CreateListing(ctx context.Context, sellerID, sku, productType string, attributes map[string]interface{}, offerOnly bool) (*marketplace.ListingResult, error) {
	m.createCalls = append(m.createCalls, sellerID)
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.createResult, nil
}

func (m *MockSDK) PatchListingQuantity(ctx context.Context, sellerID, sku string, quantity int) error {
	return nil
}

func (m *MockSDK) PatchListingPrice(ctx context.Context, sellerID, sku string, priceJPY int) error {
	m.patchPriceCalls = append(m.patchPriceCalls, priceJPY)
	return m.patchPriceErr
}

func (m *MockSDK) PatchListingLeadTime(ctx context.Context, sellerID, sku string, days int) error {
	m.patchLeadTimeDays = days
	return m.patchLeadTimeErr
}

func (m *MockSDK) PatchListingShippingGroup(ctx context.Context, sellerID, sku, groupName string) error {
	return nil
}

func (m *MockSDK) PatchOfferImages(ctx context.Context, sellerID, sku string, imageURLs []string) error {
	m.patchImagesCalls = append(m.patchImagesCalls, imageURLs)
	return m.patchImagesErr
}

func (m *MockSDK) GetListing(ctx context.Context, sellerID, sku string) (*marketplace.Listing, error) {
	return nil, nil
}

func (m *MockSDK) DeleteListing(ctx context.Context, sellerID, sku string) error {
	m.deleteCalls = append(m.deleteCalls, sku)
	return m.deleteErr
}

func (m *MockSDK) SubmitPriceFeed(ctx context.Context, sellerID, sku string, priceJPY int) (*marketplace.FeedResult, error) {
	return nil, nil
}

func (m *MockSDK) SubmitInventoryFeed(ctx context.Context, sellerID, sku string, quantity, leadTimeDays int) (*marketplace.FeedResult, error) {
	return nil, nil
}

func (m *MockSDK) GetOrderItems(ctx context.Context, orderID string) ([]marketplace.OrderItem, error) {
	return nil, nil
}

func (m *MockSDK) GetNewOrders(ctx context.Context, createdAfterISO string) ([]marketplace.Order, error) {
	return nil, nil
}

func (m *MockSDK) GetReferralFeePct(ctx context.Context, asin string, priceJPY int) (*float64, error) {
	return nil, nil
}
