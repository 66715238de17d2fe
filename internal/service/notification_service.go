package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/mentorship-service/internal/config"
	"github.com/spec-kit/mentorship-service/internal/events"
)

// NotificationService relays override resolutions to the booking
// collaborator: approvals unblock the booking, declines and expirations
// terminate the attempt.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventBookingApproved, n.handleBookingApproved)
	n.dispatcher.Subscribe(events.EventOverrideRequestCreated, n.handleOverrideCreated)
	n.dispatcher.Subscribe(events.EventOverrideApproved, n.handleOverrideApproved)
	n.dispatcher.Subscribe(events.EventOverrideDeclined, n.handleOverrideDeclined)
	n.dispatcher.Subscribe(events.EventOverrideExpired, n.handleOverrideExpired)
}

func (n *NotificationService) handleBookingApproved(ctx context.Context, event events.Event) error {
	n.logger.Info("booking may proceed", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleOverrideCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("override request awaiting coordinator", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleOverrideApproved(ctx context.Context, event events.Event) error {
	n.logger.Info("booking may proceed", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleOverrideDeclined(ctx context.Context, event events.Event) error {
	n.logger.Info("booking attempt terminated", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleOverrideExpired(ctx context.Context, event events.Event) error {
	n.logger.Info("booking attempt terminated", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)))
}
