package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aihealthrcm/demo-desk/pkg/clients/airtable"
	"github.com/aihealthrcm/demo-desk/pkg/clients/twilio"
	"github.com/aihealthrcm/demo-desk/pkg/models"
	"github.com/aihealthrcm/demo-desk/pkg/utils"
	"github.com/aihealthrcm/demo-desk/pkg/wizard"
)

// Simulator acknowledges every request after a fixed delay without sending it anywhere
type Simulator struct {
	Delay  time.Duration
	Logger *zap.Logger
}

func (s *Simulator) Submit(ctx context.Context, req models.DemoRequest) (models.Ack, error) {
	s.Logger.Info("demo request submitted",
		zap.String("demo_type", string(req.DemoType)),
		zap.String("lead_key", utils.LeadKey(req.Email)),
		zap.Duration("delay", s.Delay))

	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return models.Ack{}, ctx.Err()
	case <-t.C:
	}
	return models.Ack{ID: uuid.NewString(), ReceivedAt: time.Now().UTC()}, nil
}

// LeadSubmitter records demo requests in the Airtable CRM and texts the
// prospect a confirmation when SMS is configured.
type LeadSubmitter struct {
	airtableClient airtable.Client
	smsClient      twilio.Client
	table          string
	catalog        *models.Catalog
	logger         *zap.Logger
}

// NewLeadSubmitter creates a new submitter; smsClient may be nil
func NewLeadSubmitter(
	airtableClient airtable.Client,
	smsClient twilio.Client,
	table string,
	catalog *models.Catalog,
	logger *zap.Logger,
) *LeadSubmitter {
	return &LeadSubmitter{
		airtableClient: airtableClient,
		smsClient:      smsClient,
		table:          table,
		catalog:        catalog,
		logger:         logger,
	}
}

// Submit creates the CRM record unless the lead already has one for the same
// demo type, then sends the confirmation.
func (s *LeadSubmitter) Submit(ctx context.Context, req models.DemoRequest) (models.Ack, error) {
	leadKey := utils.LeadKey(req.Email) + ":" + string(req.DemoType)
	logger := s.logger.With(zap.String("lead_key", leadKey))

	recordID, exists, err := s.airtableClient.FindRecord(ctx, s.table, leadKey)
	if err != nil {
		return models.Ack{}, err
	}

	if exists {
		logger.Info("skipping record creation, lead already in CRM", zap.String("record_id", recordID))
	} else {
		recordID, err = s.airtableClient.CreateRecord(ctx, s.table, leadFields(leadKey, req))
		if err != nil {
			return models.Ack{}, err
		}
	}

	s.confirm(logger, req)
	return models.Ack{ID: recordID, ReceivedAt: time.Now().UTC()}, nil
}

func leadFields(leadKey string, req models.DemoRequest) map[string]any {
	fields := map[string]any{
		airtable.LeadKeyField: leadKey,
		"demo_type":           string(req.DemoType),
		"name":                req.Name,
		"email":               req.Email,
		"company":             req.Company,
		"phone":               req.Phone,
		"role":                req.Role,
		"team_size":           req.TeamSize,
		"current_challenges":  req.CurrentChallenges,
		"additional_notes":    req.AdditionalNotes,
		"status":              req.Status,
		"requested_at":        req.RequestedAt.Format(time.RFC3339),
	}
	if req.ScheduledDate != nil {
		fields["scheduled_date"] = req.ScheduledDate.Format(wizard.DateLayout)
		fields["scheduled_time"] = req.ScheduledTime
	}
	return fields
}

// confirm is best effort: the request is already recorded
func (s *LeadSubmitter) confirm(logger *zap.Logger, req models.DemoRequest) {
	if s.smsClient == nil || req.Phone == "" {
		return
	}
	if _, err := s.smsClient.SendSMS(req.Phone, ConfirmationMessage(req, s.catalog)); err != nil {
		logger.Warn("confirmation sms failed", zap.Error(err))
	}
}

// ConfirmationMessage is the text shown and sent once a request is accepted
func ConfirmationMessage(req models.DemoRequest, catalog *models.Catalog) string {
	if req.DemoType == models.DemoLive && req.ScheduledDate != nil {
		return fmt.Sprintf("Hi %s, your %s AIHealthRCM demo is booked for %s at %s. We'll send you a calendar invite.",
			req.Name,
			formatMinutes(catalog.LiveDuration),
			req.ScheduledDate.Format("Monday, January 2, 2006"),
			req.ScheduledTime)
	}
	return fmt.Sprintf("Hi %s, thanks for your interest in AIHealthRCM. We'll contact you within 24 hours with next steps.", req.Name)
}

func formatMinutes(d time.Duration) string {
	return fmt.Sprintf("%d-minute", int(d.Minutes()))
}

// RetryingSubmitter retries transient failures of the wrapped submitter with
// exponential backoff.
type RetryingSubmitter struct {
	next     wizard.Submitter
	maxTries uint
	initial  time.Duration
	logger   *zap.Logger
}

func NewRetryingSubmitter(next wizard.Submitter, maxTries uint, initial time.Duration, logger *zap.Logger) *RetryingSubmitter {
	return &RetryingSubmitter{next: next, maxTries: maxTries, initial: initial, logger: logger}
}

func (s *RetryingSubmitter) Submit(ctx context.Context, req models.DemoRequest) (models.Ack, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initial

	attempt := 0
	return backoff.Retry(ctx, func() (models.Ack, error) {
		attempt++
		ack, err := s.next.Submit(ctx, req)
		if err == nil {
			return ack, nil
		}
		if !retryable(err) {
			return models.Ack{}, backoff.Permanent(err)
		}
		s.logger.Warn("demo request submission failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
		return models.Ack{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.maxTries),
	)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *airtable.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}
