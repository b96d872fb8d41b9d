package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"arbitrage/internal/marketplace"
)

// seenOrdersCap bounds the in-memory seen-order-id set; once it grows
// past this the oldest entries are trimmed back to seenOrdersTrimTo so
// the set never grows unbounded across a long-running process (§5).
const (
	seenOrdersCap    = 500
	seenOrdersTrimTo = 200
)

// OrderPoster delivers a new-order notification to whatever downstream
// sink is configured — implemented by internal/webhook.
type OrderPoster interface {
	PostOrder(ctx context.Context, order marketplace.Order, items []marketplace.OrderItem) error
}

// OrderMonitor polls the marketplace for orders placed since the last
// check and posts a webhook for every one not already seen (§4.K).
type OrderMonitor struct {
	marketplace marketplace.SDK
	poster      OrderPoster
	log         *zap.Logger

	since      time.Time
	seen       map[string]struct{}
	seenOrder  []string // insertion order, for trimming
}

// NewOrderMonitor builds an OrderMonitor whose "seen since" clock starts
// at process start — orders placed before startup are never replayed.
func NewOrderMonitor(sdk marketplace.SDK, poster OrderPoster, log *zap.Logger) *OrderMonitor {
	return &OrderMonitor{
		marketplace: sdk,
		poster:      poster,
		log:         log,
		since:       time.Now(),
		seen:        map[string]struct{}{},
	}
}

// Run fetches orders created after the last checkpoint and posts the
// ones not already seen. The checkpoint advances before processing so a
// failed post never causes the same order to be re-fetched forever.
func (m *OrderMonitor) Run(ctx context.Context) error {
	createdAfter := m.since
	now := time.Now()
	m.since = now

	orders, err := m.marketplace.GetNewOrders(ctx, createdAfter.Format(time.RFC3339))
	if err != nil {
		return err
	}

	for _, order := range orders {
		if _, ok := m.seen[order.OrderID]; ok {
			continue
		}
		m.markSeen(order.OrderID)

		items, err := m.marketplace.GetOrderItems(ctx, order.OrderID)
		if err != nil {
			m.log.Warn("fetching order items failed", zap.String("order_id", order.OrderID), zap.Error(err))
			continue
		}

		if err := m.poster.PostOrder(ctx, order, items); err != nil {
			m.log.Warn("posting order webhook failed", zap.String("order_id", order.OrderID), zap.Error(err))
		}
	}

	return nil
}

func (m *OrderMonitor) markSeen(orderID string) {
	m.seen[orderID] = struct{}{}
	m.seenOrder = append(m.seenOrder, orderID)

	if len(m.seenOrder) <= seenOrdersCap {
		return
	}

	drop := m.seenOrder[:len(m.seenOrder)-seenOrdersTrimTo]
	for _, id := range drop {
		delete(m.seen, id)
	}
	m.seenOrder = m.seenOrder[len(drop):]
}
