package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pusher delivers one payload to one device token.
type Pusher interface {
	Push(ctx context.Context, deviceToken string, payload Payload) error
}

// HTTPPusher posts payloads to the push gateway.
type HTTPPusher struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPPusher constructs a gateway-backed pusher.
func NewHTTPPusher(endpoint, apiKey string) *HTTPPusher {
	return &HTTPPusher{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Push implements Pusher.
func (p *HTTPPusher) Push(ctx context.Context, deviceToken string, payload Payload) error {
	body, err := json.Marshal(struct {
		To      string  `json:"to"`
		Message Payload `json:"message"`
	}{To: deviceToken, Message: payload})
	if err != nil {
		return fmt.Errorf("notify: marshal push: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: push: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("notify: push gateway status %d", res.StatusCode)
	}
	return nil
}

// fanoutParallelism bounds concurrent gateway calls per dispatch.
const fanoutParallelism = 8

// Fanout resolves recipients to tokens and pushes to each registered device.
// A failed device does not abort the rest; the first error is reported after
// all sends complete.
type Fanout struct {
	store  Store
	pusher Pusher
	logger *slog.Logger
}

// NewFanout constructs a Fanout dispatcher.
func NewFanout(store Store, pusher Pusher, logger *slog.Logger) *Fanout {
	return &Fanout{store: store, pusher: pusher, logger: logger}
}

var _ Dispatcher = (*Fanout)(nil)

// Send implements Dispatcher.
func (f *Fanout) Send(ctx context.Context, payload Payload, tokens []string, recipients []uuid.UUID) error {
	resolved, err := f.store.TokensFor(ctx, recipients)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(tokens)+len(resolved))
	var targets []string
	for _, t := range append(tokens, resolved...) {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		return nil
	}

	var (
		g      errgroup.Group
		failed atomic.Int64
		first  atomic.Pointer[error]
	)
	g.SetLimit(fanoutParallelism)
	for _, target := range targets {
		g.Go(func() error {
			if err := f.pusher.Push(ctx, target, payload); err != nil {
				failed.Add(1)
				first.CompareAndSwap(nil, &err)
				if f.logger != nil {
					f.logger.Warn("push failed",
						slog.String("event", payload.Event),
						slog.Any("error", err),
					)
				}
			}
			// One dead device must not cancel the remaining sends.
			return nil
		})
	}
	_ = g.Wait()
	if f.logger != nil {
		f.logger.Info("push dispatched",
			slog.String("event", payload.Event),
			slog.Int("targets", len(targets)),
			slog.Int64("failed", failed.Load()),
		)
	}
	if errp := first.Load(); errp != nil {
		return *errp
	}
	return nil
}
