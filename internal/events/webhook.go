// internal/events/webhook.go
package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const lamportDecimals = 9

// WebhookNotifier forwards pool events to an HTTP endpoint as JSON. Delivery
// retries with exponential backoff; the trading path has already committed by
// the time events reach the bus, so retries here never touch pool state.
type WebhookNotifier struct {
	url      string
	client   *http.Client
	logger   *zap.Logger
	maxTries uint
}

// NewWebhookNotifier creates a notifier posting to url.
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:      url,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger.Named("webhook"),
		maxTries: 5,
	}
}

// Attach subscribes the notifier to every pool event type on the bus.
func (n *WebhookNotifier) Attach(bus *Bus) []Subscription {
	types := []EventType{PoolCreated, PoolTraded, PoolCompleted}
	subs := make([]Subscription, 0, len(types))
	for _, typ := range types {
		subs = append(subs, bus.Subscribe(typ, n))
	}
	return subs
}

// Handle implements Handler.
func (n *WebhookNotifier) Handle(ctx context.Context, event Event) error {
	payload, err := json.Marshal(n.payload(event))
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second

	notify := func(err error, duration time.Duration) {
		n.logger.Info("Retrying webhook delivery",
			zap.String("event_type", string(event.Type())),
			zap.Duration("backoff", duration),
			zap.Error(err))
	}

	operation := func() (struct{}, error) {
		return struct{}{}, n.post(ctx, payload)
	}

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(n.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		n.logger.Error("Webhook delivery failed",
			zap.String("event_type", string(event.Type())),
			zap.Error(err))
		return err
	}
	return nil
}

func (n *WebhookNotifier) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}

// payload flattens an event into a JSON-friendly map. Native amounts are
// rendered both raw and in whole-currency units for human consumers.
func (n *WebhookNotifier) payload(event Event) map[string]interface{} {
	p := map[string]interface{}{
		"type":      string(event.Type()),
		"timestamp": event.Timestamp().Unix(),
	}
	switch e := event.(type) {
	case CreateEvent:
		p["creator"] = e.Creator.String()
		p["mint"] = e.Mint.String()
		p["base_reserves"] = e.BaseReserves
		p["quote_reserves"] = e.QuoteReserves
		p["quote_reserves_sol"] = lamportsToSOL(e.QuoteReserves)
	case TradeEvent:
		p["user"] = e.User.String()
		p["mint"] = e.Mint.String()
		p["quote_amount"] = e.QuoteAmount
		p["quote_amount_sol"] = lamportsToSOL(e.QuoteAmount)
		p["token_amount"] = e.TokenAmount
		p["base_reserves"] = e.BaseReserves
		p["quote_reserves"] = e.QuoteReserves
		p["is_buy"] = e.IsBuy
	case CompleteEvent:
		p["user"] = e.User.String()
		p["mint"] = e.Mint.String()
	}
	return p
}

func lamportsToSOL(v uint64) string {
	return decimal.NewFromUint64(v).Shift(-lamportDecimals).String()
}
