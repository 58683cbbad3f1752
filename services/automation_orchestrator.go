package services

import (
	"context"
	"fmt"
	"time"

	"fieldkpi/models"
	repository "fieldkpi/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// AutomationConfig carries the provisioning defaults. Offsets are applied to
// the submission timestamp, so the same record always yields the same dates.
type AutomationConfig struct {
	TrainingDueDays        int
	AuditLeadDays          int
	ImmediateAuditLeadDays int
	NotificationMaxRetries int
}

func DefaultAutomationConfig() AutomationConfig {
	return AutomationConfig{
		TrainingDueDays:        7,
		AuditLeadDays:          7,
		ImmediateAuditLeadDays: 2,
		NotificationMaxRetries: models.DefaultMaxRetries,
	}
}

// AutomationOrchestrator drives one KPI record through the automation state
// machine: pending -> processing -> completed | failed. It is the only writer
// of the record's automation fields. Runs are re-entrant: every fan-out checks
// for existing side-effect records per (record, tag) before creating new ones,
// so reprocessing a failed record cannot duplicate assignments, schedules or
// notifications.
type AutomationOrchestrator struct {
	kpiRepo       repository.KPIRecordRepository
	trainings     TrainingService
	audits        AuditService
	notifications NotificationService
	logger        *logrus.Logger
}

func NewAutomationOrchestrator(
	kpiRepo repository.KPIRecordRepository,
	trainings TrainingService,
	audits AuditService,
	notifications NotificationService,
	logger *logrus.Logger,
) *AutomationOrchestrator {
	return &AutomationOrchestrator{
		kpiRepo:       kpiRepo,
		trainings:     trainings,
		audits:        audits,
		notifications: notifications,
		logger:        logger,
	}
}

// Run evaluates triggers for the record and fans out to the three factories.
// Individual fan-out failures are logged against their own records and do not
// force a failed run; only an evaluation defect or a persistence rejection of
// the record itself does.
func (o *AutomationOrchestrator) Run(ctx context.Context, record *models.KPIRecord) error {
	log := o.logger.WithFields(logrus.Fields{
		"kpi_record_id": record.ID.Hex(),
		"subject_id":    record.SubjectID,
		"period":        record.Period,
	})

	tags, err := o.evaluate(record)
	if err != nil {
		log.WithField("error", err.Error()).Error("trigger evaluation failed")
		o.markFailed(ctx, record, err)
		return err
	}

	if err := o.markProcessing(ctx, record, tags); err != nil {
		log.WithField("error", err.Error()).Error("failed to persist processing state")
		o.markFailed(ctx, record, err)
		return err
	}
	log.WithField("triggered_actions", tags).Info("automation run started")

	// The three fan-out stages are independent of one another; their tag sets
	// are disjoint, so the idempotency lookups cannot race within one run.
	var trainingIDs, auditIDs, notificationIDs []primitive.ObjectID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := o.trainings.ProvisionForKPI(gctx, record, tags)
		trainingIDs = ids
		if err != nil {
			log.WithField("error", err.Error()).Warn("training fan-out partially failed")
		}
		return nil
	})
	g.Go(func() error {
		ids, err := o.audits.ProvisionForKPI(gctx, record, tags)
		auditIDs = ids
		if err != nil {
			log.WithField("error", err.Error()).Warn("audit fan-out partially failed")
		}
		return nil
	})
	g.Go(func() error {
		ids, err := o.notifications.DispatchForKPI(gctx, record)
		notificationIDs = ids
		if err != nil {
			log.WithField("error", err.Error()).Warn("notification fan-out partially failed")
		}
		return nil
	})
	g.Wait()

	if err := o.markCompleted(ctx, record, trainingIDs, auditIDs, notificationIDs); err != nil {
		log.WithField("error", err.Error()).Error("failed to persist completed state")
		return err
	}

	log.WithFields(logrus.Fields{
		"trainings":     len(trainingIDs),
		"audits":        len(auditIDs),
		"notifications": len(notificationIDs),
	}).Info("automation run completed")
	return nil
}

// evaluate re-derives the trigger set from the frozen metrics. The evaluator
// is pure, so a reprocess run sees the same tags as the first run. A defect in
// the rule table surfaces as an error rather than crashing the submission.
func (o *AutomationOrchestrator) evaluate(record *models.KPIRecord) (tags []models.ActionTag, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("trigger evaluation panic: %v", r)
		}
	}()

	p := Percentages{
		TAT:               record.Metrics.TAT.Percentage,
		MajorNegativity:   record.Metrics.MajorNegativity.Percentage,
		Quality:           record.Metrics.Quality.Percentage,
		NeighborCheck:     record.Metrics.NeighborCheck.Percentage,
		GeneralNegativity: record.Metrics.GeneralNegativity.Percentage,
		AppUsage:          record.Metrics.AppUsage.Percentage,
		Insufficiency:     record.Metrics.Insufficiency.Percentage,
	}
	return EvaluateTriggers(p, record.OverallScore), nil
}

func (o *AutomationOrchestrator) markProcessing(ctx context.Context, record *models.KPIRecord, tags []models.ActionTag) error {
	now := time.Now()
	status := models.AutomationProcessing
	empty := ""
	if tags == nil {
		tags = []models.ActionTag{}
	}

	if err := o.kpiRepo.UpdateAutomationState(ctx, record.ID, repository.AutomationStateUpdate{
		Status:           &status,
		Error:            &empty,
		ProcessedAt:      &now,
		TriggeredActions: tags,
		UpdatedBy:        "automation",
	}); err != nil {
		return err
	}

	record.AutomationStatus = status
	record.AutomationError = ""
	record.ProcessedAt = &now
	record.TriggeredActions = tags
	return nil
}

func (o *AutomationOrchestrator) markCompleted(ctx context.Context, record *models.KPIRecord, trainingIDs, auditIDs, notificationIDs []primitive.ObjectID) error {
	status := models.AutomationCompleted
	if trainingIDs == nil {
		trainingIDs = []primitive.ObjectID{}
	}
	if auditIDs == nil {
		auditIDs = []primitive.ObjectID{}
	}
	if notificationIDs == nil {
		notificationIDs = []primitive.ObjectID{}
	}

	if err := o.kpiRepo.UpdateAutomationState(ctx, record.ID, repository.AutomationStateUpdate{
		Status:                &status,
		TrainingAssignmentIDs: trainingIDs,
		AuditScheduleIDs:      auditIDs,
		NotificationLogIDs:    notificationIDs,
		UpdatedBy:             "automation",
	}); err != nil {
		return err
	}

	record.AutomationStatus = status
	record.TrainingAssignmentIDs = trainingIDs
	record.AuditScheduleIDs = auditIDs
	record.NotificationLogIDs = notificationIDs
	return nil
}

func (o *AutomationOrchestrator) markFailed(ctx context.Context, record *models.KPIRecord, cause error) {
	status := models.AutomationFailed
	reason := cause.Error()

	if err := o.kpiRepo.UpdateAutomationState(ctx, record.ID, repository.AutomationStateUpdate{
		Status:    &status,
		Error:     &reason,
		UpdatedBy: "automation",
	}); err != nil {
		o.logger.WithFields(logrus.Fields{
			"kpi_record_id": record.ID.Hex(),
			"error":         err.Error(),
		}).Error("failed to persist failed state")
	}

	record.AutomationStatus = status
	record.AutomationError = reason
}
