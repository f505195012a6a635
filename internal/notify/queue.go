// Package notify queues outbound notifications in Redis and delivers them
// from a background worker: emails over SMTP and signed webhook events.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gymhub/internal/logger"
	"gymhub/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "gymhub:notifications"
	failedQueueKey = "gymhub:notifications:failed"
	maxTries       = 3
)

type Kind string

const (
	KindEmail   Kind = "email"
	KindWebhook Kind = "webhook"
)

type EmailMessage struct {
	To      string `json:"to"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Event is the webhook payload.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

type Job struct {
	ID      string        `json:"id"`
	Kind    Kind          `json:"kind"`
	Email   *EmailMessage `json:"email,omitempty"`
	Event   *Event        `json:"event,omitempty"`
	Tries   int           `json:"tries"`
	Created time.Time     `json:"created"`
}

type Mailer interface {
	Send(msg EmailMessage) error
}

type Config struct {
	FromEmail     string
	FromName      string
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPass      string
	WebhookURL    string
	WebhookSecret string
	RetryDelay    time.Duration
}

type Service struct {
	redis      *redis.Client
	mailer     Mailer
	webhook    *WebhookSender
	retryDelay time.Duration
	now        func() time.Time
}

func New(client *redis.Client, cfg Config) *Service {
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 5 * time.Second
	}

	return &Service{
		redis: client,
		mailer: &SMTPMailer{
			From:     cfg.FromEmail,
			FromName: cfg.FromName,
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Pass:     cfg.SMTPPass,
		},
		webhook:    NewWebhookSender(cfg.WebhookURL, cfg.WebhookSecret),
		retryDelay: cfg.RetryDelay,
		now:        time.Now,
	}
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	job.ID = uuid.NewString()
	job.Created = s.now()

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal %s job: %v", job.Kind, err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Error("failed to queue notification", "kind", job.Kind, "error", err)
		return err
	}

	metrics.RecordNotification(string(job.Kind), "queued")
	return nil
}

func (s *Service) SendEmail(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, Job{
		Kind:  KindEmail,
		Email: &EmailMessage{To: to, Name: name, Subject: subject, Body: body},
	})
}

// Publish queues a webhook event. It is a no-op when no webhook URL is set.
func (s *Service) Publish(ctx context.Context, eventType string, data interface{}) error {
	if !s.webhook.Enabled() {
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	return s.enqueue(ctx, Job{
		Kind: KindWebhook,
		Event: &Event{
			ID:        "evt_" + uuid.NewString(),
			Type:      eventType,
			CreatedAt: s.now().UTC(),
			Data:      raw,
		},
	})
}

// Start runs the worker until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Warn("notification queue read failed", "error", err)
		}
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	if err := s.deliver(ctx, job); err != nil {
		s.handleFailure(ctx, job, err)
		return
	}

	metrics.RecordNotification(string(job.Kind), "sent")
	logger.Info("notification delivered", "kind", job.Kind, "id", job.ID, "tries", job.Tries)
}

func (s *Service) deliver(ctx context.Context, job Job) error {
	switch job.Kind {
	case KindEmail:
		if job.Email == nil {
			return errors.New("email job without message")
		}
		return s.mailer.Send(*job.Email)
	case KindWebhook:
		if job.Event == nil {
			return errors.New("webhook job without event")
		}
		return s.webhook.Send(ctx, *job.Event)
	}
	return fmt.Errorf("unknown job kind %q", job.Kind)
}

func (s *Service) handleFailure(ctx context.Context, job Job, err error) {
	logger.Error("notification delivery failed", "kind", job.Kind, "id", job.ID, "tries", job.Tries, "error", err)

	if job.Tries >= maxTries {
		metrics.RecordNotification(string(job.Kind), "failed")
		s.saveFailed(job, err)
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(s.retryDelay):
	}

	data, _ := json.Marshal(job)
	if err := s.redis.LPush(context.Background(), queueKey, string(data)).Err(); err != nil {
		logger.Error("failed to requeue notification", "id", job.ID, "error", err)
		return
	}
	metrics.RecordNotification(string(job.Kind), "retried")
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  s.now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, string(data))
	logger.Errorf("Notification %s moved to failed queue after %d attempts", job.ID, job.Tries)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.NotificationQueueLength.Set(float64(length))
	return length
}
