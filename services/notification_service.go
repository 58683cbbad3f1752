package services

import (
	"context"
	"errors"
	"time"

	"fieldkpi/models"
	repository "fieldkpi/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier is the external send capability. Transport is the caller's concern;
// implementations must return within a bounded time or fail.
type Notifier interface {
	Send(ctx context.Context, recipient string, template models.TemplateType, variables map[string]interface{}) error
}

// LogNotifier is the development transport: it logs the notification and
// reports success.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n *LogNotifier) Send(ctx context.Context, recipient string, template models.TemplateType, variables map[string]interface{}) error {
	n.Logger.WithFields(logrus.Fields{
		"recipient": recipient,
		"template":  template,
	}).Info("notification dispatched")
	return nil
}

// RetryResult reports the outcome of one entry in a bulk retry sweep.
type RetryResult struct {
	NotificationID string                    `json:"notification_id"`
	TemplateType   models.TemplateType       `json:"template_type"`
	Status         models.NotificationStatus `json:"status"`
	Error          string                    `json:"error,omitempty"`
}

// RetrySummary is the aggregate outcome of a bulk retry sweep.
type RetrySummary struct {
	RetriedCount int           `json:"retried_count"`
	Results      []RetryResult `json:"results"`
}

type NotificationService interface {
	// DispatchForKPI creates and sends the notification set a scored record
	// calls for. Existing entries for the same (record, template) are reused,
	// never duplicated. Per-entry dispatch failures are recorded on the entry
	// and do not abort the remaining templates.
	DispatchForKPI(ctx context.Context, record *models.KPIRecord) ([]primitive.ObjectID, error)
	RetryFailed(ctx context.Context, filter repository.RetryFilter) (*RetrySummary, error)
	ListFailed(ctx context.Context) ([]models.NotificationLog, error)
}

type notificationService struct {
	repo       repository.NotificationLogRepository
	notifier   Notifier
	maxRetries int
	logger     *logrus.Logger
}

func NewNotificationService(repo repository.NotificationLogRepository, notifier Notifier, maxRetries int, logger *logrus.Logger) NotificationService {
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}
	return &notificationService{
		repo:       repo,
		notifier:   notifier,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// notificationPlan decides which templates a record's triggered actions call
// for. The KPI summary always goes out; the rest depend on what was triggered.
func notificationPlan(record *models.KPIRecord) []models.TemplateType {
	plan := []models.TemplateType{models.TemplateKPINotification}

	hasTraining := false
	hasAudit := false
	for _, tag := range record.TriggeredActions {
		if tag.IsTraining() {
			hasTraining = true
		}
		if tag.IsAudit() {
			hasAudit = true
		}
	}
	if hasTraining {
		plan = append(plan, models.TemplateTrainingAssignment)
	}
	if hasAudit {
		plan = append(plan, models.TemplateAuditNotification)
	}
	if record.HasTag(models.TagWarningLetter) {
		plan = append(plan, models.TemplateWarningLetter)
	}
	return plan
}

func (s *notificationService) DispatchForKPI(ctx context.Context, record *models.KPIRecord) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	var errs []error

	for _, template := range notificationPlan(record) {
		existing, err := s.repo.FindByKPIAndTemplate(ctx, record.ID, template)
		if err == nil {
			// Already provisioned on an earlier run; the retry sweep owns
			// failed entries from here.
			ids = append(ids, existing.ID)
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			errs = append(errs, err)
			continue
		}

		entry := &models.NotificationLog{
			KPIRecordID:  &record.ID,
			SubjectID:    record.SubjectID,
			Recipient:    record.SubjectEmail,
			TemplateType: template,
			Status:       models.NotificationPending,
			RetryCount:   0,
			MaxRetries:   s.maxRetries,
			Variables: map[string]interface{}{
				"subject_name":  record.SubjectName,
				"period":        record.Period,
				"overall_score": record.OverallScore,
				"rating":        record.Rating,
			},
			Metadata: models.Metadata{
				CreatedBy: "automation",
				UpdatedBy: "automation",
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
		}
		if err := s.repo.Create(ctx, entry); err != nil {
			errs = append(errs, err)
			continue
		}
		ids = append(ids, entry.ID)

		s.dispatch(ctx, entry)
	}

	return ids, errors.Join(errs...)
}

// dispatch sends one entry and persists the resulting status. Send failures
// are recorded for the retry sweep, never propagated.
func (s *notificationService) dispatch(ctx context.Context, entry *models.NotificationLog) {
	if err := s.notifier.Send(ctx, entry.Recipient, entry.TemplateType, entry.Variables); err != nil {
		entry.Status = models.NotificationFailed
		entry.ErrorReason = err.Error()
		s.logger.WithFields(logrus.Fields{
			"notification_id": entry.ID.Hex(),
			"template":        entry.TemplateType,
			"error":           err.Error(),
		}).Warn("notification dispatch failed")
	} else {
		now := time.Now()
		entry.Status = models.NotificationSent
		entry.ErrorReason = ""
		entry.SentAt = &now
	}
	entry.Metadata.UpdatedBy = "automation"

	if err := s.repo.Update(ctx, entry.ID, entry); err != nil {
		s.logger.WithFields(logrus.Fields{
			"notification_id": entry.ID.Hex(),
			"error":           err.Error(),
		}).Error("failed to persist notification status")
	}
}

func (s *notificationService) RetryFailed(ctx context.Context, filter repository.RetryFilter) (*RetrySummary, error) {
	eligible, err := s.repo.FindRetryEligible(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &RetrySummary{Results: []RetryResult{}}
	for i := range eligible {
		entry := &eligible[i]
		if !entry.CanRetry() {
			continue
		}
		entry.RetryCount++
		s.dispatch(ctx, entry)

		result := RetryResult{
			NotificationID: entry.ID.Hex(),
			TemplateType:   entry.TemplateType,
			Status:         entry.Status,
		}
		if entry.Status == models.NotificationFailed {
			result.Error = entry.ErrorReason
		}
		summary.Results = append(summary.Results, result)
		summary.RetriedCount++
	}
	return summary, nil
}

func (s *notificationService) ListFailed(ctx context.Context) ([]models.NotificationLog, error) {
	return s.repo.FindFailed(ctx)
}
