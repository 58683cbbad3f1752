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

// CompleteAuditRequest closes out a scheduled audit with its findings.
type CompleteAuditRequest struct {
	Findings        string `json:"findings" validate:"required"`
	Recommendations string `json:"recommendations"`
}

type AuditService interface {
	// ProvisionForKPI creates one schedule per audit-class tag, reusing any
	// schedule already created for the same (record, tag).
	ProvisionForKPI(ctx context.Context, record *models.KPIRecord, tags []models.ActionTag) ([]primitive.ObjectID, error)
	Start(ctx context.Context, id primitive.ObjectID, updatedBy string) (*models.AuditSchedule, error)
	Complete(ctx context.Context, id primitive.ObjectID, req CompleteAuditRequest, updatedBy string) (*models.AuditSchedule, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.AuditSchedule, error)
	ListOverdue(ctx context.Context) ([]models.AuditSchedule, error)
}

type auditService struct {
	repo              repository.AuditScheduleRepository
	leadDays          int
	immediateLeadDays int
	logger            *logrus.Logger
}

func NewAuditService(repo repository.AuditScheduleRepository, leadDays, immediateLeadDays int, logger *logrus.Logger) AuditService {
	if leadDays <= 0 {
		leadDays = 7
	}
	if immediateLeadDays <= 0 {
		immediateLeadDays = 2
	}
	return &auditService{
		repo:              repo,
		leadDays:          leadDays,
		immediateLeadDays: immediateLeadDays,
		logger:            logger,
	}
}

// scheduledDate computes the audit date from the submission time. Dummy, RCA
// and insufficiency audits get the short window; calls and cross-checks the
// standard lead.
func (s *auditService) scheduledDate(submittedAt time.Time, tag models.ActionTag) time.Time {
	switch tag {
	case models.TagDummyAudit, models.TagRCAComplaints, models.TagCrossVerifyInsuff:
		return submittedAt.AddDate(0, 0, s.immediateLeadDays)
	}
	return submittedAt.AddDate(0, 0, s.leadDays)
}

func (s *auditService) ProvisionForKPI(ctx context.Context, record *models.KPIRecord, tags []models.ActionTag) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	var errs []error

	for _, tag := range tags {
		auditType, ok := models.AuditTypeForTag(tag)
		if !ok {
			continue
		}

		existing, err := s.repo.FindByKPIAndTag(ctx, record.ID, tag)
		if err == nil {
			ids = append(ids, existing.ID)
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			errs = append(errs, err)
			continue
		}

		schedule := &models.AuditSchedule{
			SubjectID:     record.SubjectID,
			KPIRecordID:   &record.ID,
			TriggerTag:    tag,
			AuditType:     auditType,
			Origin:        models.OriginKPITrigger,
			Status:        models.AuditScheduled,
			ScheduledDate: s.scheduledDate(record.SubmittedAt, tag),
			Metadata: models.Metadata{
				CreatedBy: "automation",
				UpdatedBy: "automation",
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
		}
		if err := s.repo.Create(ctx, schedule); err != nil {
			s.logger.WithFields(logrus.Fields{
				"kpi_record_id": record.ID.Hex(),
				"trigger_tag":   tag,
				"error":         err.Error(),
			}).Error("failed to create audit schedule")
			errs = append(errs, err)
			continue
		}
		ids = append(ids, schedule.ID)
	}

	return ids, errors.Join(errs...)
}

func (s *auditService) Start(ctx context.Context, id primitive.ObjectID, updatedBy string) (*models.AuditSchedule, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !schedule.CanTransitionTo(models.AuditInProgress) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	schedule.Status = models.AuditInProgress
	schedule.StartedAt = &now
	schedule.Metadata.UpdatedBy = updatedBy
	schedule.Metadata.UpdatedAt = now

	if err := s.repo.Update(ctx, id, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *auditService) Complete(ctx context.Context, id primitive.ObjectID, req CompleteAuditRequest, updatedBy string) (*models.AuditSchedule, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !schedule.CanTransitionTo(models.AuditCompleted) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	schedule.Status = models.AuditCompleted
	schedule.CompletedAt = &now
	schedule.Findings = req.Findings
	schedule.Recommendations = req.Recommendations
	schedule.Metadata.UpdatedBy = updatedBy
	schedule.Metadata.UpdatedAt = now

	if err := s.repo.Update(ctx, id, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *auditService) ListBySubject(ctx context.Context, subjectID string) ([]models.AuditSchedule, error) {
	return s.repo.FindBySubject(ctx, subjectID)
}

func (s *auditService) ListOverdue(ctx context.Context) ([]models.AuditSchedule, error) {
	return s.repo.FindOverdue(ctx, time.Now())
}
