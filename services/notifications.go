package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/bluebay-mechanical/field-service-api/metrics"
	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// dispatchBatchSize bounds how many notifications a single run sends
const dispatchBatchSize = 100

// Sender delivers a notification over one channel
type Sender interface {
	Send(ctx context.Context, n *models.Notification) error
}

// TwilioSender delivers sms notifications to the client's phone
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender creates a sender using the account credentials
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (s *TwilioSender) Send(_ context.Context, n *models.Notification) error {
	if n.Client == nil || n.Client.Phone == "" {
		return errors.New("notification has no client phone number")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.Client.Phone)
	params.SetFrom(s.from)
	params.SetBody(n.Message)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	if resp.Sid != nil {
		logger.L().Debug("sms sent", zap.String("notification_id", n.ID.String()), zap.String("sid", *resp.Sid))
	}
	return nil
}

// InAppSender needs no transport; in-app notifications are read through the API
type InAppSender struct{}

func (InAppSender) Send(context.Context, *models.Notification) error {
	return nil
}

// DispatchResult counts the outcome of one dispatch run
type DispatchResult struct {
	Sent    int
	Failed  int
	Skipped int
}

// NotificationDispatcher sends due notifications through the sender
// registered for their type
type NotificationDispatcher struct {
	db      *gorm.DB
	senders map[string]Sender
	now     func() time.Time
	cron    *cron.Cron
}

// NewNotificationDispatcher creates a dispatcher. Types with no sender are
// left untouched.
func NewNotificationDispatcher(db *gorm.DB, senders map[string]Sender) *NotificationDispatcher {
	return &NotificationDispatcher{
		db:      db,
		senders: senders,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SendersFromConfig registers in-app delivery always and sms when Twilio
// credentials are configured
func SendersFromConfig(cfg *config.Config) map[string]Sender {
	senders := map[string]Sender{
		models.NotificationInApp: InAppSender{},
	}
	if cfg.SMSEnabled() {
		senders[models.NotificationSMS] = NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}
	return senders
}

// WithClock replaces the dispatcher clock
func (d *NotificationDispatcher) WithClock(now func() time.Time) *NotificationDispatcher {
	d.now = now
	return d
}

// Start runs Dispatch on the cron schedule. Overlapping runs are skipped.
func (d *NotificationDispatcher) Start(schedule string) error {
	cl := cronLogger{logger.L().Sugar()}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl)))

	_, err := c.AddFunc(schedule, func() {
		res, err := d.Dispatch(context.Background())
		if err != nil {
			logger.L().Error("notification dispatch failed", zap.Error(err))
			return
		}
		if res.Sent+res.Failed > 0 {
			logger.L().Info("notifications dispatched",
				zap.Int("sent", res.Sent),
				zap.Int("failed", res.Failed),
				zap.Int("skipped", res.Skipped))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid dispatch schedule %q: %w", schedule, err)
	}

	d.cron = c
	c.Start()
	logger.L().Info("notification dispatcher started", zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running dispatch to finish
func (d *NotificationDispatcher) Stop() {
	if d.cron == nil {
		return
	}
	<-d.cron.Stop().Done()
}

// Dispatch sends every due notification once
func (d *NotificationDispatcher) Dispatch(ctx context.Context) (DispatchResult, error) {
	var res DispatchResult
	now := d.now()
	db := d.db.WithContext(ctx)

	var due []models.Notification
	err := db.Preload("Client").
		Where("(status = ? AND scheduled_for <= ?) OR (status = ? AND scheduled_for IS NULL)",
			models.NotificationStatusScheduled, now, models.NotificationStatusPending).
		Order("created_at").
		Limit(dispatchBatchSize).
		Find(&due).Error
	if err != nil {
		return res, fmt.Errorf("failed to load due notifications: %w", err)
	}

	for i := range due {
		n := &due[i]
		sender, ok := d.senders[n.NotificationType]
		if !ok {
			res.Skipped++
			continue
		}

		updates := map[string]interface{}{}
		if sendErr := sender.Send(ctx, n); sendErr != nil {
			logger.L().Warn("notification send failed",
				zap.String("notification_id", n.ID.String()),
				zap.String("type", n.NotificationType),
				zap.Error(sendErr))
			updates["status"] = models.NotificationStatusFailed
			updates["metadata"] = withError(n.Metadata, sendErr)
			metrics.RecordNotification(n.NotificationType, false)
			res.Failed++
		} else {
			updates["status"] = models.NotificationStatusSent
			updates["sent_at"] = now
			metrics.RecordNotification(n.NotificationType, true)
			res.Sent++
		}

		if err := db.Model(n).Updates(updates).Error; err != nil {
			return res, fmt.Errorf("failed to update notification %s: %w", n.ID, err)
		}
	}

	return res, nil
}

// withError copies meta and records sendErr under "error"
func withError(meta datatypes.JSONMap, sendErr error) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(meta)+1)
	maps.Copy(out, meta)
	out["error"] = sendErr.Error()
	return out
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
