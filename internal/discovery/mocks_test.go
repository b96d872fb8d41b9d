package discovery

import (
	"context"
	"errors"
	"sort"
	"time"

	"arbitrage/internal/analytics"
	"arbitrage/internal/marketplace"
	"arbitrage/internal/models"
	"arbitrage/internal/repository"
	"arbitrage/internal/scraper"
)

// --- WatchedKeywordRepositoryInterface ---

type fakeWatchedKeywordRepo struct {
	byID   map[int]*models.WatchedKeyword
	nextID int
}

func newFakeWatchedKeywordRepo() *fakeWatchedKeywordRepo {
	return &fakeWatchedKeywordRepo{byID: map[int]*models.WatchedKeyword{}, nextID: 1}
}

func (r *fakeWatchedKeywordRepo) Create(k *models.WatchedKeyword) error {
	for _, existing := range r.byID {
		if existing.Keyword == k.Keyword {
			return repository.ErrWatchedKeywordExists
		}
	}
	k.ID = r.nextID
	r.nextID++
	k.CreatedAt = time.Unix(int64(k.ID), 0)
	r.byID[k.ID] = k
	return nil
}

func (r *fakeWatchedKeywordRepo) GetAll() ([]*models.WatchedKeyword, error) {
	out := make([]*models.WatchedKeyword, 0, len(r.byID))
	for _, k := range r.byID {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeWatchedKeywordRepo) GetActive() ([]*models.WatchedKeyword, error) {
	all, _ := r.GetAll()
	out := make([]*models.WatchedKeyword, 0, len(all))
	for _, k := range all {
		if k.IsActive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *fakeWatchedKeywordRepo) GetByID(id int) (*models.WatchedKeyword, error) {
	k, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrWatchedKeywordNotFound
	}
	return k, nil
}

func (r *fakeWatchedKeywordRepo) GetByKeyword(keyword string) (*models.WatchedKeyword, error) {
	for _, k := range r.byID {
		if k.Keyword == keyword {
			return k, nil
		}
	}
	return nil, repository.ErrWatchedKeywordNotFound
}

func (r *fakeWatchedKeywordRepo) RecordScan(id int, dealsFound, grossProfit int) error {
	k, ok := r.byID[id]
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
	k.AutoDeactivatedAt = nil
	k.ScansSinceLastDeal = 0
	return nil
}

func (r *fakeWatchedKeywordRepo) Delete(id int) error {
	if _, ok := r.byID[id]; !ok {
		return repository.ErrWatchedKeywordNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeWatchedKeywordRepo) Count() (int, error) { return len(r.byID), nil }

// --- KeywordCandidateRepositoryInterface ---

type fakeKeywordCandidateRepo struct {
	byID   map[int]*models.KeywordCandidate
	nextID int
}

func newFakeKeywordCandidateRepo() *fakeKeywordCandidateRepo {
	return &fakeKeywordCandidateRepo{byID: map[int]*models.KeywordCandidate{}, nextID: 1}
}

func (r *fakeKeywordCandidateRepo) Create(c *models.KeywordCandidate) error {
	c.ID = r.nextID
	r.nextID++
	c.Status = models.CandidateStatusPending
	r.byID[c.ID] = c
	return nil
}

func (r *fakeKeywordCandidateRepo) GetPending() ([]*models.KeywordCandidate, error) {
	out := make([]*models.KeywordCandidate, 0, len(r.byID))
	for _, c := range r.byID {
		if c.Status == models.CandidateStatusPending {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeKeywordCandidateRepo) GetByID(id int) (*models.KeywordCandidate, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrKeywordCandidateNotFound
	}
	return c, nil
}

func (r *fakeKeywordCandidateRepo) SetValidationResult(id int, status string, result []byte) error {
	c, ok := r.byID[id]
	if !ok {
		return repository.ErrKeywordCandidateNotFound
	}
	c.Status = status
	c.ValidationResult = result
	return nil
}

func (r *fakeKeywordCandidateRepo) Resolve(id int, status string) error {
	c, ok := r.byID[id]
	if !ok {
		return repository.ErrKeywordCandidateNotFound
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

// --- DealAlertRepositoryInterface (only what GetHistoryForAnalysis/GetRejectionStats touch) ---

type fakeDealAlertRepo struct {
	alerts []*models.DealAlert
}

func newFakeDealAlertRepo() *fakeDealAlertRepo { return &fakeDealAlertRepo{} }

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
func (r *fakeDealAlertRepo) ExpireByAuction(auctionID string) (int64, error) { return 0, nil }
func (r *fakeDealAlertRepo) CountByKeyword(keywordID int) (int, int, error) { return 0, 0, nil }
func (r *fakeDealAlertRepo) CountByStatus(status string) (int, error) {
	n := 0
	for _, d := range r.alerts {
		if d.Status == status {
			n++
		}
	}
	return n, nil
}
func (r *fakeDealAlertRepo) CountAll() (int, error) { return len(r.alerts), nil }
func (r *fakeDealAlertRepo) Delete(id int) error     { return nil }

// --- RejectionPatternRepositoryInterface ---

type fakeRejectionPatternRepo struct {
	byKey map[string]*models.RejectionPattern
	nextID int
}

func newFakeRejectionPatternRepo() *fakeRejectionPatternRepo {
	return &fakeRejectionPatternRepo{byKey: map[string]*models.RejectionPattern{}, nextID: 1}
}

func (r *fakeRejectionPatternRepo) key(patternType, patternKey string) string {
	return patternType + "|" + patternKey
}

func (r *fakeRejectionPatternRepo) GetByTypeAndKey(patternType, patternKey string) (*models.RejectionPattern, error) {
	p, ok := r.byKey[r.key(patternType, patternKey)]
	if !ok {
		return nil, repository.ErrRejectionPatternNotFound
	}
	return p, nil
}

func (r *fakeRejectionPatternRepo) GetActiveByType(patternType string) ([]*models.RejectionPattern, error) {
	out := make([]*models.RejectionPattern, 0)
	for _, p := range r.byKey {
		if p.PatternType == patternType && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRejectionPatternRepo) Upsert(p *models.RejectionPattern) error {
	k := r.key(p.PatternType, p.PatternKey)
	if existing, ok := r.byKey[k]; ok {
		existing.HitCount++
		existing.Confidence = p.Confidence
		existing.PatternData = p.PatternData
		existing.IsActive = p.IsActive
		*p = *existing
		return nil
	}
	p.ID = r.nextID
	r.nextID++
	p.HitCount = 1
	p.IsActive = true
	r.byKey[k] = p
	return nil
}

func (r *fakeRejectionPatternRepo) Deactivate(id int) error {
	for _, p := range r.byKey {
		if p.ID == id {
			p.IsActive = false
			return nil
		}
	}
	return repository.ErrRejectionPatternNotFound
}

func (r *fakeRejectionPatternRepo) Delete(id int) error {
	for k, p := range r.byKey {
		if p.ID == id {
			delete(r.byKey, k)
			return nil
		}
	}
	return repository.ErrRejectionPatternNotFound
}

// --- AnalyticsEngine ---

type fakeAnalytics struct {
	byTerm         map[string][]analytics.Product
	finderProducts []analytics.Product
	tokensLeft     *int
}

func (f *fakeAnalytics) SearchProducts(ctx context.Context, term string, statsDays int) ([]analytics.Product, error) {
	return f.byTerm[term], nil
}

func (f *fakeAnalytics) ProductFinder(ctx context.Context, selectionJSON string, statsDays int) ([]analytics.Product, error) {
	return f.finderProducts, nil
}

func (f *fakeAnalytics) TokensLeft() *int { return f.tokensLeft }

// --- ValidatorAuctionSearcher / AuctionSuggester ---

type fakeAuctions struct {
	byTerm map[string][]scraper.SearchResultItem
}

func (f *fakeAuctions) Search(ctx context.Context, query string, page int) ([]scraper.SearchResultItem, error) {
	return f.byTerm[query], nil
}

// --- CatalogSearcher ---

type fakeCatalog struct {
	byKeywords map[string][]marketplace.CatalogItem
}

func (f *fakeCatalog) SearchCatalogItems(ctx context.Context, keywords string, pageSize int) ([]marketplace.CatalogItem, error) {
	return f.byKeywords[keywords], nil
}

// --- LogRepository ---

type fakeLogRepo struct {
	startCalls  int
	finishID    int
	finishedErr string
	finished    bool
}

func (f *fakeLogRepo) Start() (*models.DiscoveryLog, error) {
	f.startCalls++
	return &models.DiscoveryLog{ID: f.startCalls, Status: models.DiscoveryStatusRunning}, nil
}

func (f *fakeLogRepo) Finish(id, candidatesGenerated, candidatesValidated, keywordsAdded int, strategyBreakdown []byte) error {
	f.finished = true
	f.finishID = id
	return nil
}

func (f *fakeLogRepo) FinishWithError(id int, errMsg string) error {
	f.finishedErr = errMsg
	f.finishID = id
	return nil
}
