package scanner

import "go.uber.org/zap"

const (
	aiDryScansThreshold       = 10
	manualDryScansThreshold   = 50
	manualStaleScansThreshold = 50
)

// cleanupKeywords runs the post-cycle sweep over every keyword: AI
// keywords that never produced a deal are removed outright, manual
// keywords get a longer grace period before removal, and manual
// keywords that once worked but have since gone cold are paused rather
// than deleted (spec §4.F post-cycle cleanup).
func (s *Scanner) cleanupKeywords() error {
	keywords, err := s.keywords.GetAll()
	if err != nil {
		return err
	}

	for _, kw := range keywords {
		if kw.TotalDealsFound > 0 {
			if !kw.IsManual() {
				continue
			}
			if kw.IsActive && kw.ScansSinceLastDeal >= manualStaleScansThreshold {
				if err := s.keywords.Deactivate(kw.ID); err != nil {
					s.log.Warn("failed to pause stale keyword", zap.Int("keyword_id", kw.ID))
				}
			}
			continue
		}

		threshold := aiDryScansThreshold
		if kw.IsManual() {
			threshold = manualDryScansThreshold
		}
		if kw.TotalScans >= threshold {
			if err := s.keywords.Remove(kw.ID); err != nil {
				s.log.Warn("failed to remove dry keyword", zap.Int("keyword_id", kw.ID))
			}
		}
	}

	return nil
}
