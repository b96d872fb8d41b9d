package reconcile

import (
	"context"
	"errors"
	"time"

	"arbitrage/internal/marketplace"
	"arbitrage/internal/models"
	"arbitrage/internal/repository"
	"arbitrage/internal/scraper"
	"arbitrage/internal/service"
)

// ---- AuctionFetcher ----

type fakeAuctionFetcher struct {
	byAuction map[string]*scraper.AuctionData
	errByAuction map[string]error
}

func newFakeAuctionFetcher() *fakeAuctionFetcher {
	return &fakeAuctionFetcher{byAuction: map[string]*scraper.AuctionData{}, errByAuction: map[string]error{}}
}

func (f *fakeAuctionFetcher) FetchAuctionPage(ctx context.Context, auctionID string) (*scraper.AuctionData, error) {
	if err, ok := f.errByAuction[auctionID]; ok {
		return nil, err
	}
	if data, ok := f.byAuction[auctionID]; ok {
		return data, nil
	}
	return &scraper.AuctionData{AuctionID: auctionID}, nil
}

// ---- HistoryRecorder ----

type fakeHistoryRecorder struct {
	records []*models.StatusHistory
}

func (f *fakeHistoryRecorder) Record(h *models.StatusHistory) error {
	f.records = append(f.records, h)
	return nil
}

// ---- marketplace.SDK ----

var _ marketplace.SDK = (*fakeMarketplaceSDK)(nil)

type fakeMarketplaceSDK struct {
	listingBySKU map[string]*marketplace.Listing
	listingErrBySKU map[string]error
	deletedSKUs  []string
	deleteErr    error
	newOrders    []marketplace.Order
	itemsByOrder map[string][]marketplace.OrderItem
}

func newFakeMarketplaceSDK() *fakeMarketplaceSDK {
	return &fakeMarketplaceSDK{
		listingBySKU:    map[string]*marketplace.Listing{},
		listingErrBySKU: map[string]error{},
		itemsByOrder:    map[string][]marketplace.OrderItem{},
	}
}

func (f *fakeMarketplaceSDK) GetCatalogItem(ctx context.Context, asin string) (*marketplace.CatalogItem, error) {
	return nil, nil
}
func (f *fakeMarketplaceSDK) SearchCatalogItems(ctx context.Context, keywords string, pageSize int) ([]marketplace.CatalogItem, error) {
	return nil, nil
}
func (f *fakeMarketplaceSDK) GetProductType(ctx context.Context, asin string) (string, error) {
	return "", nil
}
func (f *fakeMarketplaceSDK) GetListingRestrictions(ctx context.Context, asin, conditionType string) ([]marketplace.ListingRestriction, error) {
	return nil, nil
}
func (f *fakeMarketplaceSDK) CreateListing(ctx context.Context, sellerID, sku, productType string, attributes map[string]interface{}, offerOnly bool) (*marketplace.ListingResult, error) {
	return &marketplace.ListingResult{}, nil
}
func (f *fakeMarketplaceSDK) PatchListingQuantity(ctx context.Context, sellerID, sku string, quantity int) error {
	return nil
}
func (f *fakeMarketplaceSDK) PatchListingPrice(ctx context.Context, sellerID, sku string, priceJPY int) error {
	return nil
}
func (f *fakeMarketplaceSDK) PatchListingLeadTime(ctx context.Context, sellerID, sku string, days int) error {
	return nil
}
func (f *fakeMarketplaceSDK) PatchListingShippingGroup(ctx context.Context, sellerID, sku, groupName string) error {
	return nil
}
func (f *fakeMarketplaceSDK) PatchOfferImages(ctx context.Context, sellerID, sku string, imageURLs []string) error {
	return nil
}

func (f *fakeMarketplaceSDK) GetListing(ctx context.Context, sellerID, sku string) (*marketplace.Listing, error) {
	if err, ok := f.listingErrBySKU[sku]; ok {
		return nil, err
	}
	if l, ok := f.listingBySKU[sku]; ok {
		return l, nil
	}
	return nil, &marketplace.MarketplaceError{Op: "GetListing", StatusCode: 404, Message: "not found"}
}

func (f *fakeMarketplaceSDK) DeleteListing(ctx context.Context, sellerID, sku string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedSKUs = append(f.deletedSKUs, sku)
	return nil
}

func (f *fakeMarketplaceSDK) SubmitPriceFeed(ctx context.Context, sellerID, sku string, priceJPY int) (*marketplace.FeedResult, error) {
	return nil, nil
}
func (f *fakeMarketplaceSDK) SubmitInventoryFeed(ctx context.Context, sellerID, sku string, quantity, leadTimeDays int) (*marketplace.FeedResult, error) {
	return nil, nil
}

func (f *fakeMarketplaceSDK) GetOrderItems(ctx context.Context, orderID string) ([]marketplace.OrderItem, error) {
	return f.itemsByOrder[orderID], nil
}

func (f *fakeMarketplaceSDK) GetNewOrders(ctx context.Context, createdAfterISO string) ([]marketplace.Order, error) {
	return f.newOrders, nil
}

func (f *fakeMarketplaceSDK) GetReferralFeePct(ctx context.Context, asin string, priceJPY int) (*float64, error) {
	return nil, nil
}

// ---- OrderPoster ----

type fakePoster struct {
	posted []marketplace.Order
	err    error
}

func (f *fakePoster) PostOrder(ctx context.Context, order marketplace.Order, items []marketplace.OrderItem) error {
	if f.err != nil {
		return f.err
	}
	f.posted = append(f.posted, order)
	return nil
}

// ---- MonitoredItemRepositoryInterface ----

var _ service.MonitoredItemRepositoryInterface = (*fakeMonitoredItemRepo)(nil)

type fakeMonitoredItemRepo struct {
	byID   map[int]*models.MonitoredItem
	nextID int
}

func newFakeMonitoredItemRepo() *fakeMonitoredItemRepo {
	return &fakeMonitoredItemRepo{byID: map[int]*models.MonitoredItem{}, nextID: 1}
}

func (r *fakeMonitoredItemRepo) Create(m *models.MonitoredItem) error {
	m.ID = r.nextID
	r.nextID++
	r.byID[m.ID] = m
	return nil
}

func (r *fakeMonitoredItemRepo) GetByID(id int) (*models.MonitoredItem, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrMonitoredItemNotFound
	}
	return m, nil
}

func (r *fakeMonitoredItemRepo) GetByAuctionID(auctionID string) (*models.MonitoredItem, error) {
	for _, m := range r.byID {
		if m.AuctionID == auctionID {
			return m, nil
		}
	}
	return nil, repository.ErrMonitoredItemNotFound
}

func (r *fakeMonitoredItemRepo) GetActive() ([]*models.MonitoredItem, error) {
	var out []*models.MonitoredItem
	for _, m := range r.byID {
		if m.IsMonitoringActive && m.Status == models.ItemStatusActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMonitoredItemRepo) GetDueForCheck(now time.Time) ([]*models.MonitoredItem, error) {
	var out []*models.MonitoredItem
	for _, m := range r.byID {
		if m.IsMonitoringActive && m.Status == models.ItemStatusActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMonitoredItemRepo) GetListedOnMarketplace() ([]*models.MonitoredItem, error) {
	var out []*models.MonitoredItem
	for _, m := range r.byID {
		if m.AmazonSKU == "" {
			continue
		}
		if m.AmazonListingStatus == models.AmazonListingStatusActive || m.AmazonListingStatus == models.AmazonListingStatusInactive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMonitoredItemRepo) GetPurgeEligible(before time.Time) ([]*models.MonitoredItem, error) {
	return nil, nil
}

func (r *fakeMonitoredItemRepo) UpdateAuctionState(id, currentPrice, bidCount int, status string) error {
	m, ok := r.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	m.CurrentPrice = currentPrice
	m.BidCount = bidCount
	m.Status = status
	now := time.Now()
	m.LastCheckedAt = &now
	return nil
}

func (r *fakeMonitoredItemRepo) SetMonitoringActive(id int, active bool) error {
	m, ok := r.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	m.IsMonitoringActive = active
	return nil
}

func (r *fakeMonitoredItemRepo) SetCheckInterval(id, seconds int) error {
	m, ok := r.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	m.CheckIntervalSeconds = seconds
	return nil
}

func (r *fakeMonitoredItemRepo) AttachListing(id int, asin, sku, condition, conditionNote, shippingPattern string, leadTimeDays int) error {
	m, ok := r.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	m.AmazonASIN, m.AmazonSKU, m.AmazonCondition = asin, sku, condition
	m.AmazonConditionNote, m.AmazonShippingPattern, m.AmazonLeadTimeDays = conditionNote, shippingPattern, leadTimeDays
	m.AmazonListingStatus = models.AmazonListingStatusActive
	return nil
}

func (r *fakeMonitoredItemRepo) UpdateListingEconomics(id, amazonPrice, estimatedWinPrice, shippingCost, forwardingCost int, feePct, marginPct float64) error {
	m, ok := r.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	m.AmazonPrice, m.EstimatedWinPrice, m.ShippingCost, m.ForwardingCost = amazonPrice, estimatedWinPrice, shippingCost, forwardingCost
	m.AmazonFeePct, m.AmazonMarginPct = feePct, marginPct
	return nil
}

func (r *fakeMonitoredItemRepo) SetListingStatus(id int, status string) error {
	m, ok := r.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	m.AmazonListingStatus = status
	return nil
}

func (r *fakeMonitoredItemRepo) ClearListingOnDelist(id int) error {
	m, ok := r.byID[id]
	if !ok {
		return repository.ErrMonitoredItemNotFound
	}
	m.AmazonSKU = ""
	m.AmazonListingStatus = models.AmazonListingStatusDelisted
	m.AmazonLastSyncedAt = nil
	return nil
}

func (r *fakeMonitoredItemRepo) Delete(id int) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeMonitoredItemRepo) Count() (int, error) { return len(r.byID), nil }

// ---- DealAlertRepositoryInterface ----

var _ service.DealAlertRepositoryInterface = (*fakeDealAlertRepo)(nil)

type fakeDealAlertRepo struct {
	alerts         []*models.DealAlert
	expiredAuction []string
}

func (r *fakeDealAlertRepo) Create(d *models.DealAlert) error { r.alerts = append(r.alerts, d); return nil }
func (r *fakeDealAlertRepo) GetByID(id int) (*models.DealAlert, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeDealAlertRepo) GetActive(limit, offset int) ([]*models.DealAlert, error) {
	return r.alerts, nil
}
func (r *fakeDealAlertRepo) GetByAuctionAndASIN(auctionID, asin string) (*models.DealAlert, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeDealAlertRepo) MarkRejected(id int, reason, note string) error { return nil }
func (r *fakeDealAlertRepo) MarkListed(id int) error                       { return nil }
func (r *fakeDealAlertRepo) MarkNotified(id int) error                     { return nil }
func (r *fakeDealAlertRepo) ExpireStale(before time.Time) (int64, error)   { return 0, nil }
func (r *fakeDealAlertRepo) ExpireByAuction(auctionID string) (int64, error) {
	r.expiredAuction = append(r.expiredAuction, auctionID)
	return 1, nil
}
func (r *fakeDealAlertRepo) CountByKeyword(keywordID int) (int, int, error) { return 0, 0, nil }
func (r *fakeDealAlertRepo) CountByStatus(status string) (int, error)      { return 0, nil }
func (r *fakeDealAlertRepo) CountAll() (int, error)                        { return len(r.alerts), nil }
func (r *fakeDealAlertRepo) Delete(id int) error                           { return nil }
