package service

import (
	"errors"
	"time"

	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// Ошибки сервиса отслеживаемых лотов
var (
	ErrMonitoredItemExists   = errors.New("auction already monitored")
	ErrMonitoredItemNotFound = errors.New("monitored item not found")
)

// purgeRetention is how long a delisted, ended item is kept before it
// becomes eligible for the background purge job.
const purgeRetention = 7 * 24 * time.Hour

// MonitoredItemService предоставляет бизнес-логику отслеживания лотов
// аукциона от момента обнаружения сделки до делистинга и последующей очистки.
type MonitoredItemService struct {
	itemRepo MonitoredItemRepositoryInterface
}

// NewMonitoredItemService создает новый экземпляр MonitoredItemService.
func NewMonitoredItemService(itemRepo MonitoredItemRepositoryInterface) *MonitoredItemService {
	return &MonitoredItemService{itemRepo: itemRepo}
}

// GetByID возвращает лот по ID.
func (s *MonitoredItemService) GetByID(id int) (*models.MonitoredItem, error) {
	m, err := s.itemRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrMonitoredItemNotFound) {
			return nil, ErrMonitoredItemNotFound
		}
		return nil, err
	}
	return m, nil
}

// StartMonitoring регистрирует новый лот для периодической проверки.
func (s *MonitoredItemService) StartMonitoring(m *models.MonitoredItem) (*models.MonitoredItem, error) {
	if m.CheckIntervalSeconds <= 0 {
		m.CheckIntervalSeconds = 300
	}
	m.IsMonitoringActive = true

	if err := s.itemRepo.Create(m); err != nil {
		if errors.Is(err, repository.ErrMonitoredItemExists) {
			return nil, ErrMonitoredItemExists
		}
		return nil, err
	}

	return m, nil
}

// GetDueForCheck возвращает лоты, чьё время следующей проверки наступило —
// вход монитора аукционов.
func (s *MonitoredItemService) GetDueForCheck() ([]*models.MonitoredItem, error) {
	items, err := s.itemRepo.GetDueForCheck(time.Now())
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.MonitoredItem{}
	}
	return items, nil
}

// RecordCheck обновляет снимок цены/ставок/статуса после проверки лота и,
// при закрытии аукциона, отключает дальнейший мониторинг цены (сам
// делистинг с маркетплейса выполняется отдельно, через reconcile).
func (s *MonitoredItemService) RecordCheck(id, currentPrice, bidCount int, status string) error {
	if err := s.itemRepo.UpdateAuctionState(id, currentPrice, bidCount, status); err != nil {
		if errors.Is(err, repository.ErrMonitoredItemNotFound) {
			return ErrMonitoredItemNotFound
		}
		return err
	}

	if status != models.ItemStatusActive {
		_ = s.itemRepo.SetMonitoringActive(id, false)
	}

	return nil
}

// GetListedOnMarketplace возвращает лоты с листингом на маркетплейсе в
// состоянии active или inactive — вход периодической сверки листингов.
func (s *MonitoredItemService) GetListedOnMarketplace() ([]*models.MonitoredItem, error) {
	items, err := s.itemRepo.GetListedOnMarketplace()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.MonitoredItem{}
	}
	return items, nil
}

// AttachListing записывает результат успешного создания листинга на
// маркетплейсе под этим лотом.
func (s *MonitoredItemService) AttachListing(id int, asin, sku, condition, conditionNote, shippingPattern string, leadTimeDays int) error {
	if err := s.itemRepo.AttachListing(id, asin, sku, condition, conditionNote, shippingPattern, leadTimeDays); err != nil {
		if errors.Is(err, repository.ErrMonitoredItemNotFound) {
			return ErrMonitoredItemNotFound
		}
		return err
	}
	return nil
}

// UpdateEconomics пересчитывает экономические поля листинга (используется
// после изменения цены продажи или комиссии маркетплейса).
func (s *MonitoredItemService) UpdateEconomics(id, amazonPrice, estimatedWinPrice, shippingCost, forwardingCost int, feePct, marginPct float64) error {
	if err := s.itemRepo.UpdateListingEconomics(id, amazonPrice, estimatedWinPrice, shippingCost, forwardingCost, feePct, marginPct); err != nil {
		if errors.Is(err, repository.ErrMonitoredItemNotFound) {
			return ErrMonitoredItemNotFound
		}
		return err
	}
	return nil
}

// Delist отмечает листинг снятым с продажи на маркетплейсе.
func (s *MonitoredItemService) Delist(id int, auto bool) error {
	status := models.AmazonListingStatusDelisted
	if err := s.itemRepo.SetListingStatus(id, status); err != nil {
		if errors.Is(err, repository.ErrMonitoredItemNotFound) {
			return ErrMonitoredItemNotFound
		}
		return err
	}
	return nil
}

// AdjustCheckInterval перенастраивает период проверки лота — вызывается
// монитором при пересчёте effective_interval по времени до конца аукциона.
func (s *MonitoredItemService) AdjustCheckInterval(id, seconds int) error {
	if err := s.itemRepo.SetCheckInterval(id, seconds); err != nil {
		if errors.Is(err, repository.ErrMonitoredItemNotFound) {
			return ErrMonitoredItemNotFound
		}
		return err
	}
	return nil
}

// MarkListingError отмечает ошибку синхронизации листинга с маркетплейсом
// (например, неудачное удаление после завершения аукциона).
func (s *MonitoredItemService) MarkListingError(id int) error {
	if err := s.itemRepo.SetListingStatus(id, models.AmazonListingStatusError); err != nil {
		if errors.Is(err, repository.ErrMonitoredItemNotFound) {
			return ErrMonitoredItemNotFound
		}
		return err
	}
	return nil
}

// ClearListingOnDelist снимает SKU после подтверждённого удаления листинга
// с маркетплейса — единственный путь, которым SKU перестаёт указывать на
// реальный листинг.
func (s *MonitoredItemService) ClearListingOnDelist(id int) error {
	if err := s.itemRepo.ClearListingOnDelist(id); err != nil {
		if errors.Is(err, repository.ErrMonitoredItemNotFound) {
			return ErrMonitoredItemNotFound
		}
		return err
	}
	return nil
}

// PurgeEligible возвращает лоты готовые к удалению: завершённые,
// делистнутые, и старше 7 дней с момента обновления.
func (s *MonitoredItemService) PurgeEligible() ([]*models.MonitoredItem, error) {
	items, err := s.itemRepo.GetPurgeEligible(time.Now().Add(-purgeRetention))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.MonitoredItem{}
	}
	return items, nil
}

// Purge удаляет лот после прохождения purge-окна.
func (s *MonitoredItemService) Purge(id int) error {
	if err := s.itemRepo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrMonitoredItemNotFound) {
			return ErrMonitoredItemNotFound
		}
		return err
	}
	return nil
}
