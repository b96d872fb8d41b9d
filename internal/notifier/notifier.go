// Package notifier bridges the scanner, reconcile, and scheduler
// packages to an outbound webhook.Sender, and tracks scheduler job
// health for the daily heartbeat and the /health endpoint.
package notifier

import (
	"context"

	"go.uber.org/zap"

	"arbitrage/internal/models"
	"arbitrage/internal/reconcile"
)

// Sink is the subset of webhook.Sender this package depends on — kept
// narrow so tests can fake it without building a real Sender.
type Sink interface {
	NotifyDeal(ctx context.Context, deal *models.DealAlert) error
	NotifyChanges(ctx context.Context, item *models.MonitoredItem, changes []reconcile.Change) error
}

// Dispatcher implements scanner.Notifier and reconcile.Notifier by
// broadcasting each event to any connected operator WebSocket client
// and then forwarding it to the configured Sink, if any. The broadcast
// happens whether or not the Sink call succeeds.
type Dispatcher struct {
	sink Sink
	hub  StreamHub
	log  *zap.Logger
}

// StreamHub is the push-side of internal/api/stream.Hub this package
// depends on — narrowed to avoid an import of the api tree from a
// domain package.
type StreamHub interface {
	BroadcastDealAlert(deal *models.DealAlert)
	BroadcastItemStatus(item *models.MonitoredItem)
}

// NewDispatcher builds a Dispatcher. hub may be nil when no WebSocket
// surface is wired (e.g. in tests).
func NewDispatcher(sink Sink, hub StreamHub, log *zap.Logger) *Dispatcher {
	return &Dispatcher{sink: sink, hub: hub, log: log}
}

// NotifyDeal implements internal/scanner.Notifier.
func (d *Dispatcher) NotifyDeal(ctx context.Context, deal *models.DealAlert) error {
	if d.hub != nil {
		d.hub.BroadcastDealAlert(deal)
	}
	if d.sink == nil {
		return nil
	}
	if err := d.sink.NotifyDeal(ctx, deal); err != nil {
		d.log.Warn("webhook deal notification failed", zap.Int("deal_id", deal.ID), zap.Error(err))
		return err
	}
	return nil
}

// NotifyChanges implements internal/reconcile.Notifier.
func (d *Dispatcher) NotifyChanges(ctx context.Context, item *models.MonitoredItem, changes []reconcile.Change) error {
	if d.hub != nil {
		d.hub.BroadcastItemStatus(item)
	}
	if d.sink == nil {
		return nil
	}
	if err := d.sink.NotifyChanges(ctx, item, changes); err != nil {
		d.log.Warn("webhook item change notification failed", zap.Int("item_id", item.ID), zap.Error(err))
		return err
	}
	return nil
}
