package scanner

import (
	"context"
	"errors"
	"time"

	"arbitrage/internal/analytics"
	"arbitrage/internal/marketplace"
	"arbitrage/internal/models"
	"arbitrage/internal/repository"
	"arbitrage/internal/scraper"
)

// --- repository fakes, just enough for the services the scanner drives ---

type fakeWatchedKeywordRepo struct {
	byID   map[int]*models.WatchedKeyword
	byWord map[string]int
	nextID int
}

func newFakeWatchedKeywordRepo() *fakeWatchedKeywordRepo {
	return &fakeWatchedKeywordRepo{byID: map[int]*models.WatchedKeyword{}, byWord: map[string]int{}}
}

func (r *fakeWatchedKeywordRepo) Create(k *models.WatchedKeyword) error {
	if _, ok := r.byWord[k.Keyword]; ok {
		return repository.ErrWatchedKeywordExists
	}
	r.nextID++
	k.ID = r.nextID
	cp := *k
	r.byID[k.ID] = &cp
	r.byWord[k.Keyword] = k.ID
	return nil
}

func (r *fakeWatchedKeywordRepo) GetAll() ([]*models.WatchedKeyword, error) {
	out := make([]*models.WatchedKeyword, 0, len(r.byID))
	for _, k := range r.byID {
		cp := *k
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeWatchedKeywordRepo) GetActive() ([]*models.WatchedKeyword, error) {
	var out []*models.WatchedKeyword
	for _, k := range r.byID {
		if k.IsActive {
			cp := *k
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeWatchedKeywordRepo) GetByID(id int) (*models.WatchedKeyword, error) {
	k, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrWatchedKeywordNotFound
	}
	cp := *k
	return &cp, nil
}

func (r *fakeWatchedKeywordRepo) GetByKeyword(keyword string) (*models.WatchedKeyword, error) {
	id, ok := r.byWord[keyword]
	if !ok {
		return nil, repository.ErrWatchedKeywordNotFound
	}
	return r.GetByID(id)
}

func (r *fakeWatchedKeywordRepo) RecordScan(id int, dealsFound, grossProfit int) error {
	k, ok := r.byID[id]
	if !ok {
		return repository.ErrWatchedKeywordNotFound
	}
	now := time.Now()
	k.LastScannedAt = &now
	k.TotalScans++
	if dealsFound > 0 {
		k.TotalDealsFound += dealsFound
		k.TotalGrossProfit += grossProfit
		k.ScansSinceLastDeal = 0
	} else {
		k.ScansSinceLastDeal++
	}
	return nil
}

func (r *fakeWatchedKeywordRepo) UpdatePerformance(id int, score, confidence float64) error {
	k, ok := r.byID[id]
	if !ok {
		return repository.ErrWatchedKeywordNotFound
	}
	k.PerformanceScore = score
	k.Confidence = confidence
	return nil
}

func (r *fakeWatchedKeywordRepo) Deactivate(id int, auto bool) error {
	k, ok := r.byID[id]
	if !ok {
		return repository.ErrWatchedKeywordNotFound
	}
	k.IsActive = false
	if auto {
		now := time.Now()
		k.AutoDeactivatedAt = &now
	}
	return nil
}

func (r *fakeWatchedKeywordRepo) Reactivate(id int) error {
	k, ok := r.byID[id]
	if !ok {
		return repository.ErrWatchedKeywordNotFound
	}
	k.IsActive = true
	k.ScansSinceLastDeal = 0
	k.AutoDeactivatedAt = nil
	return nil
}

func (r *fakeWatchedKeywordRepo) Delete(id int) error {
	k, ok := r.byID[id]
	if !ok {
		return repository.ErrWatchedKeywordNotFound
	}
	delete(r.byWord, k.Keyword)
	delete(r.byID, id)
	return nil
}

func (r *fakeWatchedKeywordRepo) Count() (int, error) { return len(r.byID), nil }

type fakeKeywordCandidateRepo struct {
	byID      map[int]*models.KeywordCandidate
	nextID    int
	submitted []string
}

func newFakeKeywordCandidateRepo() *fakeKeywordCandidateRepo {
	return &fakeKeywordCandidateRepo{byID: map[int]*models.KeywordCandidate{}}
}

func (r *fakeKeywordCandidateRepo) Create(c *models.KeywordCandidate) error {
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.byID[c.ID] = &cp
	r.submitted = append(r.submitted, c.Keyword)
	return nil
}

func (r *fakeKeywordCandidateRepo) GetPending() ([]*models.KeywordCandidate, error) {
	var out []*models.KeywordCandidate
	for _, c := range r.byID {
		if c.Status == models.CandidateStatusPending {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeKeywordCandidateRepo) GetByID(id int) (*models.KeywordCandidate, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, errors.New("candidate not found")
	}
	cp := *c
	return &cp, nil
}

func (r *fakeKeywordCandidateRepo) SetValidationResult(id int, status string, result []byte) error {
	c, ok := r.byID[id]
	if !ok {
		return errors.New("candidate not found")
	}
	c.Status = status
	c.ValidationResult = result
	return nil
}

func (r *fakeKeywordCandidateRepo) Resolve(id int, status string) error {
	c, ok := r.byID[id]
	if !ok {
		return errors.New("candidate not found")
	}
	c.Status = status
	return nil
}

func (r *fakeKeywordCandidateRepo) ExistsPendingOrApproved(keyword string) (bool, error) {
	for _, c := range r.byID {
		if c.Keyword == keyword && (c.Status == models.CandidateStatusPending || c.Status == models.CandidateStatusApproved) {
			return true, nil
		}
	}
	return false, nil
}

type fakeDealAlertRepo struct {
	byID   map[int]*models.DealAlert
	byKey  map[string]int
	nextID int
}

func newFakeDealAlertRepo() *fakeDealAlertRepo {
	return &fakeDealAlertRepo{byID: map[int]*models.DealAlert{}, byKey: map[string]int{}}
}

func dealKey(auctionID, asin string) string { return auctionID + "|" + asin }

func (r *fakeDealAlertRepo) Create(d *models.DealAlert) error {
	key := dealKey(d.YahooAuctionID, d.AmazonASIN)
	if _, ok := r.byKey[key]; ok {
		return repository.ErrDealAlertExists
	}
	r.nextID++
	d.ID = r.nextID
	cp := *d
	r.byID[d.ID] = &cp
	r.byKey[key] = d.ID
	return nil
}

func (r *fakeDealAlertRepo) GetByID(id int) (*models.DealAlert, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrDealAlertNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDealAlertRepo) GetActive(limit, offset int) ([]*models.DealAlert, error) {
	var out []*models.DealAlert
	for _, d := range r.byID {
		if d.Status == models.DealStatusActive {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDealAlertRepo) GetByAuctionAndASIN(auctionID, asin string) (*models.DealAlert, error) {
	id, ok := r.byKey[dealKey(auctionID, asin)]
	if !ok {
		return nil, repository.ErrDealAlertNotFound
	}
	return r.GetByID(id)
}

func (r *fakeDealAlertRepo) MarkRejected(id int, reason, note string) error {
	d, ok := r.byID[id]
	if !ok {
		return repository.ErrDealAlertNotFound
	}
	d.Status = models.DealStatusRejected
	d.RejectionReason = reason
	d.RejectionNote = note
	return nil
}

func (r *fakeDealAlertRepo) MarkListed(id int) error {
	d, ok := r.byID[id]
	if !ok {
		return repository.ErrDealAlertNotFound
	}
	d.Status = models.DealStatusListed
	return nil
}

func (r *fakeDealAlertRepo) MarkNotified(id int) error {
	d, ok := r.byID[id]
	if !ok {
		return repository.ErrDealAlertNotFound
	}
	now := time.Now()
	d.NotifiedAt = &now
	return nil
}

func (r *fakeDealAlertRepo) ExpireStale(before time.Time) (int64, error) { return 0, nil }

func (r *fakeDealAlertRepo) ExpireByAuction(auctionID string) (int64, error) { return 0, nil }

func (r *fakeDealAlertRepo) CountByKeyword(keywordID int) (int, int, error) {
	count, profit := 0, 0
	for _, d := range r.byID {
		if d.KeywordID == keywordID {
			count++
			profit += d.GrossProfit
		}
	}
	return count, profit, nil
}

func (r *fakeDealAlertRepo) CountByStatus(status string) (int, error) {
	n := 0
	for _, d := range r.byID {
		if d.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeDealAlertRepo) CountAll() (int, error) { return len(r.byID), nil }

func (r *fakeDealAlertRepo) Delete(id int) error {
	d, ok := r.byID[id]
	if !ok {
		return repository.ErrDealAlertNotFound
	}
	delete(r.byKey, dealKey(d.YahooAuctionID, d.AmazonASIN))
	delete(r.byID, id)
	return nil
}

type fakeRejectionPatternRepo struct {
	byKey  map[string]*models.RejectionPattern
	nextID int
}

func newFakeRejectionPatternRepo() *fakeRejectionPatternRepo {
	return &fakeRejectionPatternRepo{byKey: map[string]*models.RejectionPattern{}}
}

func rejectionKey(patternType, patternKey string) string { return patternType + "|" + patternKey }

func (r *fakeRejectionPatternRepo) GetByTypeAndKey(patternType, patternKey string) (*models.RejectionPattern, error) {
	p, ok := r.byKey[rejectionKey(patternType, patternKey)]
	if !ok {
		return nil, errors.New("rejection pattern not found")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRejectionPatternRepo) GetActiveByType(patternType string) ([]*models.RejectionPattern, error) {
	var out []*models.RejectionPattern
	for _, p := range r.byKey {
		if p.PatternType == patternType && p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRejectionPatternRepo) Upsert(p *models.RejectionPattern) error {
	key := rejectionKey(p.PatternType, p.PatternKey)
	if existing, ok := r.byKey[key]; ok {
		existing.RecordHit()
		*p = *existing
		return nil
	}
	r.nextID++
	p.ID = r.nextID
	p.IsActive = true
	cp := *p
	r.byKey[key] = &cp
	return nil
}

func (r *fakeRejectionPatternRepo) Deactivate(id int) error {
	for _, p := range r.byKey {
		if p.ID == id {
			p.IsActive = false
			return nil
		}
	}
	return errors.New("rejection pattern not found")
}

func (r *fakeRejectionPatternRepo) Delete(id int) error {
	for key, p := range r.byKey {
		if p.ID == id {
			delete(r.byKey, key)
			return nil
		}
	}
	return errors.New("rejection pattern not found")
}

// --- scanner-level collaborator fakes ---

type fakeAnalytics struct {
	byTerm     map[string][]analytics.Product
	tokensLeft *int
	cleared    int
}

func (f *fakeAnalytics) SearchProducts(ctx context.Context, term string, statsDays int) ([]analytics.Product, error) {
	return f.byTerm[term], nil
}

func (f *fakeAnalytics) TokensLeft() *int { return f.tokensLeft }

func (f *fakeAnalytics) ClearSearchCache() { f.cleared++ }

type fakeAuctions struct {
	pages       map[string][][]scraper.SearchResultItem
	description string
}

func (f *fakeAuctions) Search(ctx context.Context, query string, page int) ([]scraper.SearchResultItem, error) {
	pages := f.pages[query]
	if page-1 >= len(pages) {
		return nil, nil
	}
	return pages[page-1], nil
}

func (f *fakeAuctions) ExtractDescription(ctx context.Context, auctionID string) (string, error) {
	return f.description, nil
}

type fakeNotifier struct {
	notified []*models.DealAlert
}

func (f *fakeNotifier) NotifyDeal(ctx context.Context, deal *models.DealAlert) error {
	f.notified = append(f.notified, deal)
	return nil
}

var _ marketplace.SDK = (*fakeSDK)(nil)

// fakeSDK only needs to answer GetReferralFeePct for the scanner's
// purposes; every other method is an unused stub satisfying the
// interface.
type fakeSDK struct {
	referralFeePct *float64
}

func (f *fakeSDK) GetCatalogItem(ctx context.Context, asin string) (*marketplace.CatalogItem, error) {
	return nil, nil
}
func (f *fakeSDK) SearchCatalogItems(ctx context.Context, keywords string, pageSize int) ([]marketplace.CatalogItem, error) {
	return nil, nil
}
func (f *fakeSDK) GetProductType(ctx context.Context, asin string) (string, error) { return "", nil }
func (f *fakeSDK) GetListingRestrictions(ctx context.Context, asin, conditionType string) ([]marketplace.ListingRestriction, error) {
	return nil, nil
}
func (f *fakeSDK) CreateListing(ctx context.Context, sellerID, sku, productType string, attributes map[string]interface{}, offerOnly bool) (*marketplace.ListingResult, error) {
	return &marketplace.ListingResult{}, nil
}
func (f *fakeSDK) PatchListingQuantity(ctx context.Context, sellerID, sku string, quantity int) error {
	return nil
}
func (f *fakeSDK) PatchListingPrice(ctx context.Context, sellerID, sku string, priceJPY int) error {
	return nil
}
func (f *fakeSDK) PatchListingLeadTime(ctx context.Context, sellerID, sku string, days int) error {
	return nil
}
func (f *fakeSDK) PatchListingShippingGroup(ctx context.Context, sellerID, sku, groupName string) error {
	return nil
}
func (f *fakeSDK) PatchOfferImages(ctx context.Context, sellerID, sku string, imageURLs []string) error {
	return nil
}
func (f *fakeSDK) GetListing(ctx context.Context, sellerID, sku string) (*marketplace.Listing, error) {
	return nil, nil
}
func (f *fakeSDK) DeleteListing(ctx context.Context, sellerID, sku string) error { return nil }
func (f *fakeSDK) SubmitPriceFeed(ctx context.Context, sellerID, sku string, priceJPY int) (*marketplace.FeedResult, error) {
	return nil, nil
}
func (f *fakeSDK) SubmitInventoryFeed(ctx context.Context, sellerID, sku string, quantity, leadTimeDays int) (*marketplace.FeedResult, error) {
	return nil, nil
}
func (f *fakeSDK) GetOrderItems(ctx context.Context, orderID string) ([]marketplace.OrderItem, error) {
	return nil, nil
}
func (f *fakeSDK) GetNewOrders(ctx context.Context, createdAfterISO string) ([]marketplace.Order, error) {
	return nil, nil
}
func (f *fakeSDK) GetReferralFeePct(ctx context.Context, asin string, priceJPY int) (*float64, error) {
	return f.referralFeePct, nil
}
