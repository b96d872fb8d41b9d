package service

import (
	"errors"

	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// RejectionService предоставляет бизнес-логику для выученных паттернов
// отклонения — override'ов, которые позволяют matcher'у и сканеру
// игнорировать заведомо нерелевантные пары без повторного обращения к ИИ.
type RejectionService struct {
	patternRepo RejectionPatternRepositoryInterface
}

// NewRejectionService создает новый экземпляр RejectionService.
func NewRejectionService(patternRepo RejectionPatternRepositoryInterface) *RejectionService {
	return &RejectionService{patternRepo: patternRepo}
}

// RecordRejection апсертит паттерн по (type, key): создаёт его при первом
// наблюдении или увеличивает hit_count/confidence при повторном —
// см. models.RejectionPattern.RecordHit.
func (s *RejectionService) RecordRejection(patternType, patternKey string, data []byte) (*models.RejectionPattern, error) {
	p := &models.RejectionPattern{
		PatternType: patternType,
		PatternKey:  patternKey,
		PatternData: data,
	}

	if err := s.patternRepo.Upsert(p); err != nil {
		return nil, err
	}

	return p, nil
}

// Matches сообщает, есть ли активный выученный паттерн, совпадающий с
// (patternType, key).
func (s *RejectionService) Matches(patternType, key string) (bool, error) {
	_, err := s.patternRepo.GetByTypeAndKey(patternType, key)
	if err != nil {
		if errors.Is(err, repository.ErrRejectionPatternNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetActivePatterns возвращает все активные паттерны заданного типа —
// вход matcher'а при построении override-таблицы перед циклом сканирования.
func (s *RejectionService) GetActivePatterns(patternType string) ([]*models.RejectionPattern, error) {
	patterns, err := s.patternRepo.GetActiveByType(patternType)
	if err != nil {
		return nil, err
	}
	if patterns == nil {
		patterns = []*models.RejectionPattern{}
	}
	return patterns, nil
}

// GetPattern возвращает паттерн по составному ключу, не скрывая "не найден"
// за булевым ответом — нужен движку обучения отклонений, чтобы читать
// hit_count/confidence, а не только факт совпадения.
func (s *RejectionService) GetPattern(patternType, patternKey string) (*models.RejectionPattern, error) {
	p, err := s.patternRepo.GetByTypeAndKey(patternType, patternKey)
	if err != nil {
		if errors.Is(err, repository.ErrRejectionPatternNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Deactivate выключает паттерн вручную (операторская коррекция ложного срабатывания).
func (s *RejectionService) Deactivate(id int) error {
	return s.patternRepo.Deactivate(id)
}
