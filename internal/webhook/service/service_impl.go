package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/vitalislabs/vitalis/internal/clock"
	"github.com/vitalislabs/vitalis/internal/config"
	kycdomain "github.com/vitalislabs/vitalis/internal/kyc/domain"
	"github.com/vitalislabs/vitalis/internal/observability"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
	webhookdomain "github.com/vitalislabs/vitalis/internal/webhook/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Cfg     config.Config
	Redis   *redis.Client
	Org     orgdomain.Service
	KYC     kycdomain.Service
	Metrics *observability.Metrics
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	secret   string
	dedupTTL time.Duration
	redis    *redis.Client
	org      orgdomain.Service
	kyc      kycdomain.Service
	metrics  *observability.Metrics
}

func NewService(p Params) webhookdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("webhook.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		secret:   p.Cfg.Webhook.SigningSecret,
		dedupTTL: p.Cfg.Webhook.DedupTTL,
		redis:    p.Redis,
		org:      p.Org,
		kyc:      p.KYC,
		metrics:  p.Metrics,
	}
}

func (s *Service) Ingest(ctx context.Context, body []byte, signature string) error {
	if err := s.verifySignature(body, signature); err != nil {
		return err
	}

	var event webhookdomain.Event
	if err := json.Unmarshal(body, &event); err != nil || event.Event == "" {
		return webhookdomain.ErrMalformedPayload
	}

	s.metrics.WebhookEventsReceived.WithLabelValues(event.Event).Inc()

	claimed := false
	if event.ID != "" {
		fresh, err := s.claimEvent(ctx, event, body)
		if err != nil {
			return err
		}
		if !fresh {
			s.metrics.WebhookEventsDuplicate.Inc()
			s.log.Info("duplicate webhook event acknowledged",
				zap.String("event_id", event.ID),
				zap.String("event", event.Event))
			return nil
		}
		claimed = true
	}

	if err := s.dispatch(ctx, event); err != nil {
		// A non-200 makes the gateway redeliver; the claim has to go with it
		// or the redelivery gets swallowed as a duplicate and the state
		// transition is lost.
		if claimed {
			s.releaseClaim(ctx, event.ID)
		}
		return err
	}
	return nil
}

// verifySignature checks the hex HMAC-SHA256 of the raw body when a signing
// secret is configured. Comparison is constant time.
func (s *Service) verifySignature(body []byte, signature string) error {
	if s.secret == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature))) {
		return webhookdomain.ErrInvalidSignature
	}
	return nil
}

// claimEvent reports whether this delivery is the first for the provider
// event id. Redis absorbs redelivery bursts when available; the unique index
// on webhook_events is the durable guard either way.
func (s *Service) claimEvent(ctx context.Context, event webhookdomain.Event, body []byte) (bool, error) {
	if s.redis != nil {
		ok, err := s.redis.SetNX(ctx, dedupKey(event.ID), 1, s.dedupTTL).Result()
		if err != nil {
			s.log.Warn("redis dedup unavailable, falling back to database", zap.Error(err))
		} else if !ok {
			return false, nil
		}
	}

	record := &webhookdomain.WebhookEvent{
		ID:              s.genID.Generate(),
		ProviderEventID: event.ID,
		EventType:       event.Event,
		Payload:         datatypes.JSON(body),
		ReceivedAt:      s.clock.Now(ctx),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		// The redis key must not outlive a failed durable claim, or the
		// redelivery bounces off it.
		if s.redis != nil {
			if delErr := s.redis.Del(ctx, dedupKey(event.ID)).Err(); delErr != nil {
				s.log.Warn("redis dedup key not released", zap.Error(delErr))
			}
		}
		return false, err
	}
	return true, nil
}

func dedupKey(providerEventID string) string {
	return "webhook:event:" + providerEventID
}

// releaseClaim undoes claimEvent after a failed dispatch so the gateway's
// redelivery is processed instead of deduplicated.
func (s *Service) releaseClaim(ctx context.Context, providerEventID string) {
	if err := s.db.WithContext(ctx).
		Where("provider_event_id = ?", providerEventID).
		Delete(&webhookdomain.WebhookEvent{}).Error; err != nil {
		s.log.Error("webhook claim not released, redelivery will be dropped",
			zap.String("event_id", providerEventID),
			zap.Error(err))
	}
	if s.redis != nil {
		if err := s.redis.Del(ctx, dedupKey(providerEventID)).Err(); err != nil {
			s.log.Warn("redis dedup key not released",
				zap.String("event_id", providerEventID),
				zap.Error(err))
		}
	}
}

func (s *Service) dispatch(ctx context.Context, event webhookdomain.Event) error {
	switch {
	case orgdomain.IsPaymentEvent(event.Event):
		return s.dispatchPayment(ctx, event)
	case event.Event == webhookdomain.EventAccountApproved:
		return s.dispatchAccount(ctx, event, kycdomain.StatusApproved)
	case event.Event == webhookdomain.EventAccountRejected:
		return s.dispatchAccount(ctx, event, kycdomain.StatusRejected)
	default:
		s.log.Info("unrecognized webhook event acknowledged", zap.String("event", event.Event))
		return nil
	}
}

func (s *Service) dispatchPayment(ctx context.Context, event webhookdomain.Event) error {
	if event.Payment == nil || event.Payment.SubscriptionID == "" {
		s.metrics.WebhookEventsOrphaned.Inc()
		s.log.Warn("payment event without subscription reference", zap.String("event", event.Event))
		return nil
	}
	err := s.org.ApplyPaymentEvent(ctx, event.Payment.SubscriptionID, event.Event)
	switch {
	case errors.Is(err, orgdomain.ErrOrganizationNotFound):
		s.metrics.WebhookEventsOrphaned.Inc()
		s.log.Warn("payment event for unknown subscription",
			zap.String("subscription_id", event.Payment.SubscriptionID),
			zap.String("event", event.Event))
		return nil
	case errors.Is(err, orgdomain.ErrInvalidTransition):
		// Recognized event that the organization's current status cannot
		// apply. Redelivering it would never succeed, so it is acknowledged.
		s.log.Warn("payment event not applicable, acknowledged",
			zap.String("subscription_id", event.Payment.SubscriptionID),
			zap.String("event", event.Event))
		return nil
	}
	return err
}

func (s *Service) dispatchAccount(ctx context.Context, event webhookdomain.Event, verdict kycdomain.Status) error {
	if event.Account == nil || event.Account.WalletID == "" {
		s.metrics.WebhookEventsOrphaned.Inc()
		s.log.Warn("account event without wallet id", zap.String("event", event.Event))
		return nil
	}
	err := s.kyc.ApplyAccountEvent(ctx, event.Account.WalletID, verdict)
	if errors.Is(err, kycdomain.ErrOrphanEvent) {
		s.metrics.WebhookEventsOrphaned.Inc()
		s.log.Warn("account event for unknown wallet",
			zap.String("wallet_id", event.Account.WalletID),
			zap.String("event", event.Event))
		return nil
	}
	return err
}
