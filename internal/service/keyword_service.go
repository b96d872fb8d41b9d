package service

import (
	"errors"
	"strings"

	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// Ошибки сервиса ключевых слов
var (
	ErrKeywordEmpty        = errors.New("keyword cannot be empty")
	ErrKeywordExists       = errors.New("keyword already watched")
	ErrKeywordNotFound     = errors.New("watched keyword not found")
	ErrKeywordCandidateGone = errors.New("keyword candidate not found")
)

// performanceDeactivateThreshold is the scans-since-last-deal count past
// which a non-manual keyword is auto-deactivated.
const performanceDeactivateThreshold = 30

// KeywordService предоставляет бизнес-логику для ключевых слов-запросов
// сканера и для кандидатов, предложенных движком обнаружения.
type KeywordService struct {
	keywordRepo   WatchedKeywordRepositoryInterface
	candidateRepo KeywordCandidateRepositoryInterface
}

// NewKeywordService создает новый экземпляр KeywordService.
func NewKeywordService(keywordRepo WatchedKeywordRepositoryInterface, candidateRepo KeywordCandidateRepositoryInterface) *KeywordService {
	return &KeywordService{keywordRepo: keywordRepo, candidateRepo: candidateRepo}
}

// AddKeyword добавляет слово под наблюдение сканера.
func (s *KeywordService) AddKeyword(keyword, source string, parentID *int) (*models.WatchedKeyword, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrKeywordEmpty
	}

	k := &models.WatchedKeyword{
		Keyword:         keyword,
		IsActive:        true,
		Source:          source,
		ParentKeywordID: parentID,
	}

	if err := s.keywordRepo.Create(k); err != nil {
		if errors.Is(err, repository.ErrWatchedKeywordExists) {
			return nil, ErrKeywordExists
		}
		return nil, err
	}

	return k, nil
}

// GetActiveKeywords возвращает слова, которые сканер должен обходить в
// текущем цикле.
func (s *KeywordService) GetActiveKeywords() ([]*models.WatchedKeyword, error) {
	keywords, err := s.keywordRepo.GetActive()
	if err != nil {
		return nil, err
	}
	if keywords == nil {
		keywords = []*models.WatchedKeyword{}
	}
	return keywords, nil
}

// GetAll возвращает все слова под наблюдением, независимо от активности.
func (s *KeywordService) GetAll() ([]*models.WatchedKeyword, error) {
	keywords, err := s.keywordRepo.GetAll()
	if err != nil {
		return nil, err
	}
	if keywords == nil {
		keywords = []*models.WatchedKeyword{}
	}
	return keywords, nil
}

// RecordScanResult обновляет счетчики слова после прохода сканера и
// автоматически деактивирует его, если оно не ручное и давно не приносило
// сделок.
func (s *KeywordService) RecordScanResult(id int, dealsFound, grossProfit int) error {
	if err := s.keywordRepo.RecordScan(id, dealsFound, grossProfit); err != nil {
		if errors.Is(err, repository.ErrWatchedKeywordNotFound) {
			return ErrKeywordNotFound
		}
		return err
	}

	k, err := s.keywordRepo.GetByID(id)
	if err != nil {
		return nil
	}
	if !k.IsManual() && k.IsActive && k.ScansSinceLastDeal >= performanceDeactivateThreshold {
		_ = s.keywordRepo.Deactivate(id, true)
	}

	return nil
}

// UpdatePerformance записывает пересчитанный движком обнаружения
// performance_score и confidence слова.
func (s *KeywordService) UpdatePerformance(id int, score, confidence float64) error {
	if err := s.keywordRepo.UpdatePerformance(id, score, confidence); err != nil {
		if errors.Is(err, repository.ErrWatchedKeywordNotFound) {
			return ErrKeywordNotFound
		}
		return err
	}
	return nil
}

// Deactivate отключает слово вручную (операторская команда).
func (s *KeywordService) Deactivate(id int) error {
	if err := s.keywordRepo.Deactivate(id, false); err != nil {
		if errors.Is(err, repository.ErrWatchedKeywordNotFound) {
			return ErrKeywordNotFound
		}
		return err
	}
	return nil
}

// AutoDeactivate отключает слово автоматически — движком обнаружения,
// когда оно давно не приносит сделок (отличается от Deactivate только
// флагом auto: он записывает auto_deactivated_at, по которому авто-
// деактивацию можно отличить от ручной; Reactivate этот флаг не читает).
func (s *KeywordService) AutoDeactivate(id int) error {
	if err := s.keywordRepo.Deactivate(id, true); err != nil {
		if errors.Is(err, repository.ErrWatchedKeywordNotFound) {
			return ErrKeywordNotFound
		}
		return err
	}
	return nil
}

// Reactivate включает слово обратно и сбрасывает счетчик простоя.
func (s *KeywordService) Reactivate(id int) error {
	if err := s.keywordRepo.Reactivate(id); err != nil {
		if errors.Is(err, repository.ErrWatchedKeywordNotFound) {
			return ErrKeywordNotFound
		}
		return err
	}
	return nil
}

// Remove удаляет слово из наблюдения.
func (s *KeywordService) Remove(id int) error {
	if err := s.keywordRepo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrWatchedKeywordNotFound) {
			return ErrKeywordNotFound
		}
		return err
	}
	return nil
}

// SubmitCandidate сохраняет кандидата, предложенного движком обнаружения,
// пропуская его, если слово уже наблюдается или уже есть неотклонённый
// кандидат с тем же текстом.
func (s *KeywordService) SubmitCandidate(c *models.KeywordCandidate) (*models.KeywordCandidate, error) {
	c.Keyword = strings.TrimSpace(c.Keyword)
	if c.Keyword == "" {
		return nil, ErrKeywordEmpty
	}

	if _, err := s.keywordRepo.GetByKeyword(c.Keyword); err == nil {
		return nil, ErrKeywordExists
	} else if !errors.Is(err, repository.ErrWatchedKeywordNotFound) {
		return nil, err
	}

	exists, err := s.candidateRepo.ExistsPendingOrApproved(c.Keyword)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrKeywordExists
	}

	if err := s.candidateRepo.Create(c); err != nil {
		return nil, err
	}

	return c, nil
}

// ApproveCandidate подтверждает кандидата и добавляет его под наблюдение
// как слово со стратегией происхождения в качестве источника.
func (s *KeywordService) ApproveCandidate(id int) (*models.WatchedKeyword, error) {
	c, err := s.candidateRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrKeywordCandidateNotFound) {
			return nil, ErrKeywordCandidateGone
		}
		return nil, err
	}

	k, err := s.AddKeyword(c.Keyword, models.KeywordSourceAI(c.Strategy), c.ParentKeywordID)
	if err != nil {
		return nil, err
	}

	if err := s.candidateRepo.Resolve(id, models.CandidateStatusApproved); err != nil {
		return nil, err
	}

	return k, nil
}

// RejectCandidate отклоняет кандидата без добавления слова под наблюдение.
func (s *KeywordService) RejectCandidate(id int) error {
	if err := s.candidateRepo.Resolve(id, models.CandidateStatusRejected); err != nil {
		if errors.Is(err, repository.ErrKeywordCandidateNotFound) {
			return ErrKeywordCandidateGone
		}
		return err
	}
	return nil
}

// SetCandidateValidation записывает итог автоматической валидации
// кандидата, не принимая решения о добавлении его под наблюдение —
// "validated" оставляет кандидата на усмотрение оператора, "rejected"
// закрывает его.
func (s *KeywordService) SetCandidateValidation(id int, status string, result []byte) error {
	if err := s.candidateRepo.SetValidationResult(id, status, result); err != nil {
		if errors.Is(err, repository.ErrKeywordCandidateNotFound) {
			return ErrKeywordCandidateGone
		}
		return err
	}
	return nil
}

// PromoteCandidate добавляет кандидата под наблюдение напрямую, минуя
// оператора — движок обнаружения делает это для кандидатов, прошедших
// валидацию с уверенностью выше порога автодобавления.
func (s *KeywordService) PromoteCandidate(c *models.KeywordCandidate) (*models.WatchedKeyword, error) {
	k, err := s.AddKeyword(c.Keyword, models.KeywordSourceAI(c.Strategy), c.ParentKeywordID)
	if err != nil {
		return nil, err
	}

	if err := s.candidateRepo.Resolve(c.ID, models.CandidateStatusAutoAdded); err != nil {
		return nil, err
	}

	return k, nil
}

// GetPendingCandidates возвращает кандидатов, ожидающих валидации/решения.
func (s *KeywordService) GetPendingCandidates() ([]*models.KeywordCandidate, error) {
	candidates, err := s.candidateRepo.GetPending()
	if err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []*models.KeywordCandidate{}
	}
	return candidates, nil
}
