// Package webhook отправляет operator-facing уведомления во внешний канал
// (Discord, Slack или LINE Notify) — новая DealAlert, изменение
// состояния отслеживаемого лота, новый заказ на маркетплейсе (§6).
//
// Сам пакет не знает ничего о вызывающей стороне: Sender реализует
// scanner.Notifier, reconcile.Notifier и reconcile.OrderPoster, так что
// один и тот же webhook-канал обслуживает все три источника событий.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"arbitrage/internal/marketplace"
	"arbitrage/internal/models"
	"arbitrage/internal/reconcile"
	"arbitrage/pkg/retry"
)

const (
	// SinkDiscord, SinkSlack, SinkLine — поддерживаемые формы payload'а (§6).
	SinkDiscord = "discord"
	SinkSlack   = "slack"
	SinkLine    = "line"

	defaultTimeout = 10 * time.Second
)

// Config описывает один сконфигурированный канал уведомлений.
type Config struct {
	Type      string // discord | slack | line
	URL       string // Discord/Slack incoming webhook URL
	LineToken string // LINE Notify Bearer-токен
	LineTo    string
}

// Sender отправляет сообщения в сконфигурированный webhook-канал с
// retry (3 попытки, backoff 1s/3s/5s — §5).
//
// Реализует:
//   - internal/scanner.Notifier    (NotifyDeal)
//   - internal/reconcile.Notifier  (NotifyChanges)
//   - internal/reconcile.OrderPoster (PostOrder)
type Sender struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

// NewSender строит Sender. Пустой cfg.Type делает отправку no-op'ом —
// удобно для локального развёртывания без настроенного канала.
func NewSender(cfg Config, log *zap.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTimeout},
		log:    log,
	}
}

// backoffSchedule - расписание ожидания после неудачных попыток (§5, §8):
// 1s, 3s, 5s. Попыток три, а после последней ожидания нет, поэтому
// фактически выдерживаются только 1s и 3s. pkg/retry.Config описывает только геометрический рост
// (InitialDelay * Multiplier^attempt), который не может выразить этот
// конкретный шаг, поэтому расписание здесь фиксировано явно, используя
// retry.Permanent/retry.IsRetryable из того же пакета для отличия
// невосстановимых ошибок от временных.
var backoffSchedule = [...]time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

// send выполняет HTTP-доставку тела payload'а в сконфигурированный
// канал. Три последовательных неудачных попытки дают ровно три сетевых
// вызова и возвращают ошибку (§8).
func (s *Sender) send(ctx context.Context, payload func() (*http.Request, error)) error {
	if s.cfg.Type == "" {
		return nil
	}

	attempt := func() error {
		req, err := payload()
		if err != nil {
			return retry.Permanent(err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNoContent || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
			return nil
		}
		return fmt.Errorf("webhook http %s: status %d", s.cfg.Type, resp.StatusCode)
	}

	var lastErr error
	for i, delay := range backoffSchedule {
		lastErr = attempt()
		if lastErr == nil {
			return nil
		}
		if !retry.IsRetryable(lastErr) {
			return lastErr
		}
		if i == len(backoffSchedule)-1 {
			break
		}
		s.log.Warn("webhook retry", zap.Int("attempt", i+1), zap.Error(lastErr), zap.Duration("delay", delay))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// NotifyDeal отправляет найденную сделку (scanner.Notifier, §4.F/§4.I).
func (s *Sender) NotifyDeal(ctx context.Context, deal *models.DealAlert) error {
	title := fmt.Sprintf("Новая сделка: %s", deal.YahooTitle)
	text := fmt.Sprintf(
		"%s\nЯхоо: %d JPY → Amazon ASIN %s по %d JPY\nВаловая прибыль: %d JPY (%.1f%%)\n%s",
		title, deal.YahooPrice, deal.AmazonASIN, deal.SellPrice, deal.GrossProfit, deal.GrossMarginPct, deal.YahooURL,
	)
	return s.send(ctx, func() (*http.Request, error) { return s.build(ctx, title, text) })
}

// NotifyChanges отправляет изменение состояния отслеживаемого лота
// (reconcile.Notifier, §4.J).
func (s *Sender) NotifyChanges(ctx context.Context, item *models.MonitoredItem, changes []reconcile.Change) error {
	if len(changes) == 0 {
		return nil
	}

	var b strings.Builder
	for _, c := range changes {
		switch c.ChangeType {
		case models.ChangeTypePriceChange:
			fmt.Fprintf(&b, "Цена изменилась: %d → %d JPY\n", c.OldPrice, c.NewPrice)
		case models.ChangeTypeStatusChange:
			fmt.Fprintf(&b, "Статус изменился: %s → %s\n", c.OldStatus, c.NewStatus)
		case models.ChangeTypeBidChange:
			fmt.Fprintf(&b, "Ставки: %d → %d\n", c.OldBidCount, c.NewBidCount)
		default:
			fmt.Fprintf(&b, "%s\n", c.ChangeType)
		}
	}

	title := fmt.Sprintf("Лот обновлён: %s", item.Title)
	return s.send(ctx, func() (*http.Request, error) { return s.build(ctx, title, b.String()) })
}

// PostOrder отправляет уведомление о новом заказе маркетплейса
// (reconcile.OrderPoster, §4.K).
func (s *Sender) PostOrder(ctx context.Context, order marketplace.Order, items []marketplace.OrderItem) error {
	title := fmt.Sprintf("Новый заказ: %s", order.OrderID)
	var b strings.Builder
	fmt.Fprintf(&b, "Статус: %s, оформлен: %s\n", order.Status, order.PurchasedAt)
	for _, item := range items {
		fmt.Fprintf(&b, "- %s (SKU %s) x%d по %d JPY\n", item.Title, item.SKU, item.Quantity, item.ItemPrice)
	}
	return s.send(ctx, func() (*http.Request, error) { return s.build(ctx, title, b.String()) })
}

// NotifyText отправляет произвольное текстовое сообщение без привязки
// к доменной модели — используется ежедневным heartbeat'ом планировщика
// (internal/notifier.HealthTracker.Heartbeat).
func (s *Sender) NotifyText(ctx context.Context, title, text string) error {
	return s.send(ctx, func() (*http.Request, error) { return s.build(ctx, title, text) })
}

func (s *Sender) build(ctx context.Context, title, text string) (*http.Request, error) {
	switch s.cfg.Type {
	case SinkDiscord:
		return s.buildDiscord(ctx, title, text)
	case SinkSlack:
		return s.buildSlack(ctx, title, text)
	case SinkLine:
		return s.buildLine(ctx, title, text)
	default:
		return nil, fmt.Errorf("webhook: unknown sink type %q", s.cfg.Type)
	}
}

// discordEmbed — минимальное подмножество полей Discord embed объекта,
// достаточное для текстового уведомления.
type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

func (s *Sender) buildDiscord(ctx context.Context, title, text string) (*http.Request, error) {
	body, err := json.Marshal(discordPayload{
		Embeds: []discordEmbed{{Title: title, Description: text, Color: 0x2ecc71}},
	})
	if err != nil {
		return nil, err
	}
	return s.jsonRequest(ctx, s.cfg.URL, body)
}

// slackBlock — text-секция block kit, используется и как fallback-текст.
type slackBlock struct {
	Type string    `json:"type"`
	Text slackText `json:"text"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

func (s *Sender) buildSlack(ctx context.Context, title, text string) (*http.Request, error) {
	full := fmt.Sprintf("*%s*\n%s", title, text)
	body, err := json.Marshal(slackPayload{
		Text: full,
		Blocks: []slackBlock{{
			Type: "section",
			Text: slackText{Type: "mrkdwn", Text: full},
		}},
	})
	if err != nil {
		return nil, err
	}
	return s.jsonRequest(ctx, s.cfg.URL, body)
}

func (s *Sender) buildLine(ctx context.Context, title, text string) (*http.Request, error) {
	form := url.Values{}
	form.Set("message", fmt.Sprintf("\n%s\n%s", title, text))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://notify-api.line.me/api/notify", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.cfg.LineToken)
	return req, nil
}

func (s *Sender) jsonRequest(ctx context.Context, target string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
