package rejection

import (
	"time"

	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// fakeRejectionPatternRepo is a minimal in-memory stand-in for
// service.RejectionPatternRepositoryInterface, just enough to exercise the
// reason-suggestion and learner logic without a database.
type fakeRejectionPatternRepo struct {
	byKey map[string]*models.RejectionPattern
	nextID int
}

func newFakeRejectionPatternRepo() *fakeRejectionPatternRepo {
	return &fakeRejectionPatternRepo{byKey: map[string]*models.RejectionPattern{}}
}

func patternKey(patternType, patternKey string) string { return patternType + "|" + patternKey }

func (f *fakeRejectionPatternRepo) GetByTypeAndKey(patternType, key string) (*models.RejectionPattern, error) {
	p, ok := f.byKey[patternKey(patternType, key)]
	if !ok {
		return nil, repository.ErrRejectionPatternNotFound
	}
	return p, nil
}

func (f *fakeRejectionPatternRepo) GetActiveByType(patternType string) ([]*models.RejectionPattern, error) {
	var out []*models.RejectionPattern
	for _, p := range f.byKey {
		if p.PatternType == patternType && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRejectionPatternRepo) Upsert(p *models.RejectionPattern) error {
	k := patternKey(p.PatternType, p.PatternKey)
	if existing, ok := f.byKey[k]; ok {
		existing.RecordHit()
		if len(p.PatternData) > 0 {
			existing.PatternData = p.PatternData
		}
		*p = *existing
		return nil
	}
	f.nextID++
	p.ID = f.nextID
	p.HitCount = 1
	p.IsActive = true
	f.byKey[k] = p
	return nil
}

func (f *fakeRejectionPatternRepo) Deactivate(id int) error {
	for _, p := range f.byKey {
		if p.ID == id {
			p.IsActive = false
			return nil
		}
	}
	return repository.ErrRejectionPatternNotFound
}

func (f *fakeRejectionPatternRepo) Delete(id int) error {
	for k, p := range f.byKey {
		if p.ID == id {
			delete(f.byKey, k)
			return nil
		}
	}
	return repository.ErrRejectionPatternNotFound
}

// fakeDealAlertRepo implements only the pieces of
// service.DealAlertRepositoryInterface that GetRejectionStats needs; every
// other method is unreachable from these tests.
type fakeDealAlertRepo struct {
	alerts []*models.DealAlert
}

func (f *fakeDealAlertRepo) Create(d *models.DealAlert) error { return nil }
func (f *fakeDealAlertRepo) GetByID(id int) (*models.DealAlert, error) {
	return nil, repository.ErrDealAlertNotFound
}
func (f *fakeDealAlertRepo) GetActive(limit, offset int) ([]*models.DealAlert, error) { return nil, nil }
func (f *fakeDealAlertRepo) GetByAuctionAndASIN(auctionID, asin string) (*models.DealAlert, error) {
	return nil, repository.ErrDealAlertNotFound
}
func (f *fakeDealAlertRepo) MarkRejected(id int, reason, note string) error { return nil }
func (f *fakeDealAlertRepo) MarkListed(id int) error                       { return nil }
func (f *fakeDealAlertRepo) MarkNotified(id int) error                     { return nil }
func (f *fakeDealAlertRepo) ExpireStale(before time.Time) (int64, error)   { return 0, nil }
func (f *fakeDealAlertRepo) CountByKeyword(keywordID int) (int, int, error) { return 0, 0, nil }
func (f *fakeDealAlertRepo) CountByStatus(status string) (int, error) {
	n := 0
	for _, d := range f.alerts {
		if d.Status == status {
			n++
		}
	}
	return n, nil
}
func (f *fakeDealAlertRepo) CountAll() (int, error) { return len(f.alerts), nil }
func (f *fakeDealAlertRepo) Delete(id int) error    { return nil }
