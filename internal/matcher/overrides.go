package matcher

import "sync"

// overrideSnapshot is the matcher's learned-state layer: accessory words,
// blocked pairs and a threshold delta fed back from confirmed rejections.
// It is rebuilt wholesale and swapped in atomically — readers never see a
// half-updated snapshot.
type overrideSnapshot struct {
	extraAccessoryWords map[string]bool
	blockedAuctionASIN  map[[2]string]bool
	blockedTitlePair    map[[2]string]bool
	thresholdDelta      float64
}

var overridesMu sync.RWMutex
var overrides *overrideSnapshot

// SetOverrides installs a freshly loaded snapshot, replacing whatever was
// set before. Called after rejection-pattern reloads.
func SetOverrides(extraAccessoryWords []string, blockedAuctionASIN [][2]string, blockedTitlePair [][2]string, thresholdDelta float64) {
	snap := &overrideSnapshot{
		extraAccessoryWords: make(map[string]bool, len(extraAccessoryWords)),
		blockedAuctionASIN:  make(map[[2]string]bool, len(blockedAuctionASIN)),
		blockedTitlePair:    make(map[[2]string]bool, len(blockedTitlePair)),
		thresholdDelta:      thresholdDelta,
	}
	for _, w := range extraAccessoryWords {
		snap.extraAccessoryWords[w] = true
	}
	for _, p := range blockedAuctionASIN {
		snap.blockedAuctionASIN[p] = true
	}
	for _, p := range blockedTitlePair {
		snap.blockedTitlePair[p] = true
	}
	overridesMu.Lock()
	overrides = snap
	overridesMu.Unlock()
}

func currentOverrides() *overrideSnapshot {
	overridesMu.RLock()
	defer overridesMu.RUnlock()
	return overrides
}

// IsBlockedPair reports whether a specific auction/ASIN combination was
// learned as a permanent non-match ("never show this pair again").
func IsBlockedPair(auctionID, asin string) bool {
	snap := currentOverrides()
	if snap == nil {
		return false
	}
	return snap.blockedAuctionASIN[[2]string{auctionID, asin}]
}

// IsBlockedTitlePair reports whether a specific title combination was
// learned as a permanent non-match, independent of which listing IDs
// carry those titles this time around.
func IsBlockedTitlePair(yahooTitle, amazonTitle string) bool {
	snap := currentOverrides()
	if snap == nil {
		return false
	}
	return snap.blockedTitlePair[[2]string{yahooTitle, amazonTitle}]
}

func thresholdDelta() float64 {
	snap := currentOverrides()
	if snap == nil {
		return 0
	}
	return snap.thresholdDelta
}
