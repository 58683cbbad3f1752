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

// ErrInvalidTransition is returned when a completion operation would move a
// training or audit status backwards.
var ErrInvalidTransition = errors.New("invalid status transition")

// ManualAssignmentRequest creates a training outside the automation path.
type ManualAssignmentRequest struct {
	SubjectID    string              `json:"subject_id" validate:"required"`
	TrainingType models.TrainingType `json:"training_type" validate:"required,oneof=basic_training negativity_training dos_donts_training app_usage_training"`
	DueDate      time.Time           `json:"due_date" validate:"required"`
	Notes        string              `json:"notes"`
}

// CompleteTrainingRequest closes out an assignment.
type CompleteTrainingRequest struct {
	Score *int   `json:"score" validate:"omitempty,min=0,max=100"`
	Notes string `json:"notes"`
}

type TrainingService interface {
	// ProvisionForKPI creates one assignment per training-class tag, reusing
	// any assignment already created for the same (record, tag). Per-tag
	// persistence failures do not block the remaining tags.
	ProvisionForKPI(ctx context.Context, record *models.KPIRecord, tags []models.ActionTag) ([]primitive.ObjectID, error)
	AssignManual(ctx context.Context, req ManualAssignmentRequest, createdBy string) (*models.TrainingAssignment, error)
	Start(ctx context.Context, id primitive.ObjectID, updatedBy string) (*models.TrainingAssignment, error)
	Complete(ctx context.Context, id primitive.ObjectID, req CompleteTrainingRequest, updatedBy string) (*models.TrainingAssignment, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.TrainingAssignment, error)
	ListOverdue(ctx context.Context) ([]models.TrainingAssignment, error)
}

type trainingService struct {
	repo    repository.TrainingAssignmentRepository
	dueDays int
	logger  *logrus.Logger
}

func NewTrainingService(repo repository.TrainingAssignmentRepository, dueDays int, logger *logrus.Logger) TrainingService {
	if dueDays <= 0 {
		dueDays = 7
	}
	return &trainingService{
		repo:    repo,
		dueDays: dueDays,
		logger:  logger,
	}
}

func (s *trainingService) ProvisionForKPI(ctx context.Context, record *models.KPIRecord, tags []models.ActionTag) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	var errs []error

	for _, tag := range tags {
		trainingType, ok := models.TrainingTypeForTag(tag)
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

		assignment := &models.TrainingAssignment{
			SubjectID:    record.SubjectID,
			KPIRecordID:  &record.ID,
			TriggerTag:   tag,
			TrainingType: trainingType,
			Origin:       models.OriginKPITrigger,
			Status:       models.TrainingAssigned,
			// Anchored to the submission time so reprocessing computes the
			// same date.
			DueDate: record.SubmittedAt.AddDate(0, 0, s.dueDays),
			Metadata: models.Metadata{
				CreatedBy: "automation",
				UpdatedBy: "automation",
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
		}
		if err := s.repo.Create(ctx, assignment); err != nil {
			s.logger.WithFields(logrus.Fields{
				"kpi_record_id": record.ID.Hex(),
				"trigger_tag":   tag,
				"error":         err.Error(),
			}).Error("failed to create training assignment")
			errs = append(errs, err)
			continue
		}
		ids = append(ids, assignment.ID)
	}

	return ids, errors.Join(errs...)
}

func (s *trainingService) AssignManual(ctx context.Context, req ManualAssignmentRequest, createdBy string) (*models.TrainingAssignment, error) {
	assignment := &models.TrainingAssignment{
		SubjectID:    req.SubjectID,
		TrainingType: req.TrainingType,
		Origin:       models.OriginManual,
		Status:       models.TrainingAssigned,
		DueDate:      req.DueDate,
		Notes:        req.Notes,
		Metadata: models.Metadata{
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *trainingService) Start(ctx context.Context, id primitive.ObjectID, updatedBy string) (*models.TrainingAssignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !assignment.CanTransitionTo(models.TrainingInProgress) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	assignment.Status = models.TrainingInProgress
	assignment.StartedAt = &now
	assignment.Metadata.UpdatedBy = updatedBy
	assignment.Metadata.UpdatedAt = now

	if err := s.repo.Update(ctx, id, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *trainingService) Complete(ctx context.Context, id primitive.ObjectID, req CompleteTrainingRequest, updatedBy string) (*models.TrainingAssignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Overdue assignments stay completable; only completed is terminal.
	if !assignment.CanTransitionTo(models.TrainingCompleted) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	assignment.Status = models.TrainingCompleted
	assignment.CompletedAt = &now
	assignment.CompletionScore = req.Score
	if req.Notes != "" {
		assignment.Notes = req.Notes
	}
	assignment.Metadata.UpdatedBy = updatedBy
	assignment.Metadata.UpdatedAt = now

	if err := s.repo.Update(ctx, id, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *trainingService) ListBySubject(ctx context.Context, subjectID string) ([]models.TrainingAssignment, error) {
	return s.repo.FindBySubject(ctx, subjectID)
}

func (s *trainingService) ListOverdue(ctx context.Context) ([]models.TrainingAssignment, error) {
	return s.repo.FindOverdue(ctx, time.Now())
}
