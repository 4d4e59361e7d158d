// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package push

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/sync/errgroup"

	a2a "github.com/go-a2a/a2a-wire"
	"github.com/go-a2a/a2a-wire/internal/pool"
	"github.com/go-a2a/a2a-wire/internal/telemetry"
)

// NotificationTokenHeader carries the config token to the webhook.
const NotificationTokenHeader = "X-A2A-Notification-Token"

// DefaultTimeout bounds a single webhook delivery.
const DefaultTimeout = 10 * time.Second

// Sender posts task snapshots to the webhooks registered in a [ConfigStore].
type Sender struct {
	store   ConfigStore
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
	metrics *telemetry.Metrics

	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

// SenderOption configures a [Sender].
type SenderOption func(*Sender)

// WithHTTPClient sets the client used for deliveries.
func WithHTTPClient(client *http.Client) SenderOption {
	return func(s *Sender) {
		s.client = client
	}
}

// WithTimeout bounds every delivery.
func WithTimeout(timeout time.Duration) SenderOption {
	return func(s *Sender) {
		s.timeout = timeout
	}
}

// WithLogger sets the logger of the sender.
func WithLogger(logger *slog.Logger) SenderOption {
	return func(s *Sender) {
		s.logger = logger
	}
}

// WithMetrics sets the instruments recording deliveries.
func WithMetrics(metrics *telemetry.Metrics) SenderOption {
	return func(s *Sender) {
		s.metrics = metrics
	}
}

// WithJWTSigner signs every delivery that carries no explicit credentials
// with an HS256 JWT issued by issuer and valid for ttl.
func WithJWTSigner(key []byte, issuer string, ttl time.Duration) SenderOption {
	return func(s *Sender) {
		s.signingKey = key
		s.issuer = issuer
		s.tokenTTL = ttl
	}
}

// NewSender creates a Sender delivering to the configs of store.
func NewSender(store ConfigStore, opts ...SenderOption) *Sender {
	if store == nil {
		panic("push notification config store cannot be nil")
	}

	s := &Sender{
		store:    store,
		client:   http.DefaultClient,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
		metrics:  telemetry.Default(),
		tokenTTL: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SendAll posts task to every config registered for it, concurrently.
// It returns the joined delivery errors.
func (s *Sender) SendAll(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	configs, err := s.store.List(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("list push notification configs: %w", err)
	}
	if len(configs) == 0 {
		s.logger.DebugContext(ctx, "no push notification configs", slog.String("task_id", task.ID))
		return nil
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task %s: %w", task.ID, err)
	}

	errs := make([]error, len(configs))
	var g errgroup.Group
	for i, cfg := range configs {
		g.Go(func() error {
			errs[i] = s.send(ctx, task.ID, cfg, payload)
			return nil
		})
	}
	g.Wait()

	return errors.Join(errs...)
}

// Send posts task to a single config.
func (s *Sender) Send(ctx context.Context, cfg a2a.PushNotificationConfig, task *a2a.Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	buf := pool.Buffers.Get()
	defer pool.PutBuffer(buf)
	if err := json.MarshalWrite(buf, task); err != nil {
		return fmt.Errorf("encode task %s: %w", task.ID, err)
	}

	return s.send(ctx, task.ID, cfg, buf.Bytes())
}

func (s *Sender) send(ctx context.Context, taskID string, cfg a2a.PushNotificationConfig, payload []byte) (err error) {
	defer func() {
		s.metrics.RecordPushDelivery(ctx, telemetry.Outcome(err))
		if err != nil {
			s.logger.WarnContext(ctx, "push notification failed",
				slog.String("task_id", taskID),
				slog.String("config_id", cfg.ID),
				slog.String("url", cfg.URL),
				slog.Any("error", err),
			)
		}
	}()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid push notification config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", a2a.ContentTypeJSON)
	if cfg.Token != "" {
		req.Header.Set(NotificationTokenHeader, cfg.Token)
	}
	if err := s.authorize(req, taskID, cfg); err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to %s: %w", cfg.URL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("post to %s: status %d", cfg.URL, resp.StatusCode)
	}

	s.logger.DebugContext(ctx, "push notification sent", slog.String("task_id", taskID), slog.String("config_id", cfg.ID))
	return nil
}

// authorize sets the Authorization header from the config credentials, or
// from a signed JWT when the sender has a signing key.
func (s *Sender) authorize(req *http.Request, taskID string, cfg a2a.PushNotificationConfig) error {
	if auth := cfg.Authentication; auth != nil && auth.Credentials != "" {
		for _, scheme := range auth.Schemes {
			if strings.EqualFold(scheme, "bearer") {
				req.Header.Set("Authorization", "Bearer "+auth.Credentials)
				return nil
			}
		}
	}
	if len(s.signingKey) == 0 {
		return nil
	}

	now := time.Now()
	token, err := jwt.NewBuilder().
		Issuer(s.issuer).
		IssuedAt(now).
		Expiration(now.Add(s.tokenTTL)).
		Claim("task_id", taskID).
		Build()
	if err != nil {
		return fmt.Errorf("build push notification token: %w", err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.signingKey))
	if err != nil {
		return fmt.Errorf("sign push notification token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+string(signed))

	return nil
}
