package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"fieldkpi/models"
	repository "fieldkpi/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidPeriod is returned for a period key not shaped like YYYY-MM.
	ErrInvalidPeriod = errors.New("period must be formatted as YYYY-MM")
	// ErrInvalidRange is returned when a raw metric falls outside its
	// declared bounds.
	ErrInvalidRange = errors.New("metric value out of range")
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// SubmitKPIRequest is one period's scoring submission for a subject.
type SubmitKPIRequest struct {
	SubjectID    string      `json:"subject_id" validate:"required"`
	SubjectName  string      `json:"subject_name" validate:"required"`
	SubjectEmail string      `json:"subject_email" validate:"required,email"`
	Period       string      `json:"period" validate:"required"`
	Metrics      Percentages `json:"metrics"`
}

type KPIService interface {
	// SubmitKPI validates, scores and persists a submission, then runs the
	// automation synchronously. The created record is returned even when the
	// automation run fails; the failure is visible on its automation status.
	SubmitKPI(ctx context.Context, req SubmitKPIRequest, createdBy string) (*models.KPIRecord, error)
	// Reprocess re-runs the automation for an existing record. Idempotent:
	// side-effect records already provisioned are reused, not duplicated.
	Reprocess(ctx context.Context, id primitive.ObjectID, updatedBy string) (*models.KPIRecord, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.KPIRecord, error)
	GetAll(ctx context.Context) ([]models.KPIRecord, error)
	GetPendingAutomations(ctx context.Context) ([]models.KPIRecord, error)
	SoftDeactivate(ctx context.Context, id primitive.ObjectID, updatedBy string) error
	GetPerformanceStats(ctx context.Context) ([]bson.M, error)
}

type kpiService struct {
	repo         repository.KPIRecordRepository
	orchestrator *AutomationOrchestrator
	logger       *logrus.Logger
}

func NewKPIService(repo repository.KPIRecordRepository, orchestrator *AutomationOrchestrator, logger *logrus.Logger) KPIService {
	return &kpiService{
		repo:         repo,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

func validateRanges(p Percentages) error {
	percentages := map[string]float64{
		"tat":                p.TAT,
		"quality":            p.Quality,
		"neighbor_check":     p.NeighborCheck,
		"general_negativity": p.GeneralNegativity,
		"app_usage":          p.AppUsage,
	}
	for name, v := range percentages {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s must be in [0,100]", ErrInvalidRange, name)
		}
	}

	counts := map[string]float64{
		"major_negativity": p.MajorNegativity,
		"insufficiency":    p.Insufficiency,
	}
	for name, v := range counts {
		if v < 0 || v > 10 {
			return fmt.Errorf("%w: %s must be in [0,10]", ErrInvalidRange, name)
		}
	}
	return nil
}

func (s *kpiService) SubmitKPI(ctx context.Context, req SubmitKPIRequest, createdBy string) (*models.KPIRecord, error) {
	if !periodPattern.MatchString(req.Period) {
		return nil, ErrInvalidPeriod
	}
	if err := validateRanges(req.Metrics); err != nil {
		return nil, err
	}

	metrics, overallScore := CalculateScores(req.Metrics)
	now := time.Now()

	record := &models.KPIRecord{
		SubjectID:    req.SubjectID,
		SubjectName:  req.SubjectName,
		SubjectEmail: req.SubjectEmail,
		Period:       req.Period,

		Metrics:      metrics,
		OverallScore: overallScore,
		Rating:       ClassifyRating(overallScore),

		TriggeredActions: []models.ActionTag{},
		AutomationStatus: models.AutomationPending,

		TrainingAssignmentIDs: []primitive.ObjectID{},
		AuditScheduleIDs:      []primitive.ObjectID{},
		NotificationLogIDs:    []primitive.ObjectID{},

		SubmittedAt: now,
		IsActive:    true,
		Metadata: models.Metadata{
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	// Duplicate (subject, period) submissions are rejected here, before any
	// side effect exists.
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	// Automation failures do not fail the submission; the record carries the
	// failed status and stays re-triggerable via Reprocess.
	if err := s.orchestrator.Run(ctx, record); err != nil {
		s.logger.WithFields(logrus.Fields{
			"kpi_record_id": record.ID.Hex(),
			"error":         err.Error(),
		}).Error("automation run failed for new submission")
	}

	return record, nil
}

func (s *kpiService) Reprocess(ctx context.Context, id primitive.ObjectID, updatedBy string) (*models.KPIRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.orchestrator.Run(ctx, record); err != nil {
		s.logger.WithFields(logrus.Fields{
			"kpi_record_id": record.ID.Hex(),
			"error":         err.Error(),
		}).Error("reprocess run failed")
	}
	return record, nil
}

func (s *kpiService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.KPIRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *kpiService) GetAll(ctx context.Context) ([]models.KPIRecord, error) {
	return s.repo.GetAll(ctx)
}

func (s *kpiService) GetPendingAutomations(ctx context.Context) ([]models.KPIRecord, error) {
	return s.repo.FindByAutomationStatus(ctx, models.AutomationPending, models.AutomationFailed)
}

func (s *kpiService) SoftDeactivate(ctx context.Context, id primitive.ObjectID, updatedBy string) error {
	return s.repo.SoftDeactivate(ctx, id, updatedBy)
}

func (s *kpiService) GetPerformanceStats(ctx context.Context) ([]bson.M, error) {
	return s.repo.GetPerformanceStats(ctx)
}
