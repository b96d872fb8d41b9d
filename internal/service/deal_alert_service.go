package service

import (
	"errors"
	"time"

	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// Ошибки сервиса алертов
var (
	ErrDealAlertDuplicate = errors.New("deal already alerted for this auction/asin pair")
	ErrDealAlertNotFound  = errors.New("deal alert not found")
)

// DealAlertService предоставляет бизнес-логику для найденных сделок
// (арбитражных пар лот/товар).
//
// Отвечает за:
// - Регистрацию новой найденной сделки (защита от дублей по auction/asin)
// - Выдачу активных алертов оператору
// - Принятие решения оператора (отклонение/подтверждение листинга)
// - Обновление накопленных показателей ключевого слова после решения
type DealAlertService struct {
	dealRepo    DealAlertRepositoryInterface
	keywordRepo WatchedKeywordRepositoryInterface
}

// NewDealAlertService создает новый экземпляр DealAlertService.
func NewDealAlertService(dealRepo DealAlertRepositoryInterface, keywordRepo WatchedKeywordRepositoryInterface) *DealAlertService {
	return &DealAlertService{dealRepo: dealRepo, keywordRepo: keywordRepo}
}

// RegisterDeal сохраняет новую найденную пару лот/товар, если она ещё не
// была зарегистрирована.
func (s *DealAlertService) RegisterDeal(d *models.DealAlert) (*models.DealAlert, error) {
	existing, err := s.dealRepo.GetByAuctionAndASIN(d.YahooAuctionID, d.AmazonASIN)
	if err != nil && !errors.Is(err, repository.ErrDealAlertNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDealAlertDuplicate
	}

	if err := s.dealRepo.Create(d); err != nil {
		if errors.Is(err, repository.ErrDealAlertExists) {
			return nil, ErrDealAlertDuplicate
		}
		return nil, err
	}

	return d, nil
}

// GetActiveDeals возвращает страницу активных (необработанных) алертов,
// от новых к старым.
func (s *DealAlertService) GetActiveDeals(limit, offset int) ([]*models.DealAlert, error) {
	if limit <= 0 {
		limit = 50
	}

	deals, err := s.dealRepo.GetActive(limit, offset)
	if err != nil {
		return nil, err
	}

	if deals == nil {
		deals = []*models.DealAlert{}
	}

	return deals, nil
}

// dealHistoryScanLimit caps how many of the most recent deal alerts the
// discovery cycle's analyzer pulls in one pass.
const dealHistoryScanLimit = 5000

// GetHistoryForAnalysis возвращает алерты, по которым движок обнаружения
// пересчитывает performance_score ключевых слов и добывает инсайты —
// каждый зарегистрированный алерт уже прошёл порог маржи/профита
// сканера, так что весь набор "активных" алертов и есть история успешных
// сделок.
func (s *DealAlertService) GetHistoryForAnalysis() ([]*models.DealAlert, error) {
	deals, err := s.dealRepo.GetActive(dealHistoryScanLimit, 0)
	if err != nil {
		return nil, err
	}
	if deals == nil {
		deals = []*models.DealAlert{}
	}
	return deals, nil
}

// GetByID возвращает алерт по ID.
func (s *DealAlertService) GetByID(id int) (*models.DealAlert, error) {
	d, err := s.dealRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrDealAlertNotFound) {
			return nil, ErrDealAlertNotFound
		}
		return nil, err
	}

	return d, nil
}

// Reject отклоняет алерт по решению оператора или движка отклонений,
// сохраняя причину и заметку. Статистику ключевого слова он не меняет.
func (s *DealAlertService) Reject(id int, reason, note string) error {
	err := s.dealRepo.MarkRejected(id, reason, note)
	if err != nil {
		if errors.Is(err, repository.ErrDealAlertNotFound) {
			return ErrDealAlertNotFound
		}
		return err
	}

	return nil
}

// MarkListed переводит алерт в статус "листинг создан" и обновляет
// накопленный профит ключевого слова.
func (s *DealAlertService) MarkListed(id int) error {
	d, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.dealRepo.MarkListed(id); err != nil {
		if errors.Is(err, repository.ErrDealAlertNotFound) {
			return ErrDealAlertNotFound
		}
		return err
	}

	if s.keywordRepo != nil {
		_ = s.keywordRepo.RecordScan(d.KeywordID, 1, d.GrossProfit)
	}

	return nil
}

// MarkNotified фиксирует момент отправки уведомления по алерту.
func (s *DealAlertService) MarkNotified(id int) error {
	err := s.dealRepo.MarkNotified(id)
	if err != nil {
		if errors.Is(err, repository.ErrDealAlertNotFound) {
			return ErrDealAlertNotFound
		}
		return err
	}

	return nil
}

// GetRejectionStats возвращает число отклонённых алертов и общее число
// алертов — вход для вычисления доли ложных срабатываний движком обучения
// отклонений.
func (s *DealAlertService) GetRejectionStats() (rejected, total int, err error) {
	rejected, err = s.dealRepo.CountByStatus(models.DealStatusRejected)
	if err != nil {
		return 0, 0, err
	}
	total, err = s.dealRepo.CountAll()
	if err != nil {
		return 0, 0, err
	}
	return rejected, total, nil
}

// ExpireStale переводит в expired все активные алерты старше ttl.
func (s *DealAlertService) ExpireStale(ttl time.Duration) (int64, error) {
	return s.dealRepo.ExpireStale(time.Now().Add(-ttl))
}

// ExpireByAuction переводит в expired активные алерты по конкретному лоту —
// вызывается монитором лотов, когда аукцион перестаёт быть active.
func (s *DealAlertService) ExpireByAuction(auctionID string) (int64, error) {
	return s.dealRepo.ExpireByAuction(auctionID)
}
