package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingType is the closed set of provisionable trainings, keyed 1:1 to the
// training-class action tags.
type TrainingType string

const (
	TrainingBasic      TrainingType = "basic_training"
	TrainingNegativity TrainingType = "negativity_training"
	TrainingDosDonts   TrainingType = "dos_donts_training"
	TrainingAppUsage   TrainingType = "app_usage_training"
)

// TrainingTypeForTag maps a training-class action tag to its training type.
// Returns false for non-training tags.
func TrainingTypeForTag(tag ActionTag) (TrainingType, bool) {
	switch tag {
	case TagBasicTraining:
		return TrainingBasic, true
	case TagNegativityTraining:
		return TrainingNegativity, true
	case TagDosDontsTraining:
		return TrainingDosDonts, true
	case TagAppUsageTraining:
		return TrainingAppUsage, true
	}
	return "", false
}

// AssignmentOrigin records which path created an assignment or schedule.
type AssignmentOrigin string

const (
	OriginKPITrigger AssignmentOrigin = "kpi_trigger"
	OriginManual     AssignmentOrigin = "manual"
	OriginScheduled  AssignmentOrigin = "scheduled"
	OriginSystem     AssignmentOrigin = "system"
)

// TrainingStatus values move forward only: assigned -> in_progress -> completed.
// "Overdue" is a read-time predicate, never a stored status.
type TrainingStatus string

const (
	TrainingAssigned   TrainingStatus = "assigned"
	TrainingInProgress TrainingStatus = "in_progress"
	TrainingCompleted  TrainingStatus = "completed"
)

// TrainingAssignment is one remedial training provisioned for a subject. At most
// one exists per (originating KPI record, trigger tag); manual assignments carry
// no KPI back-reference.
type TrainingAssignment struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	SubjectID    string              `json:"subject_id" bson:"subject_id"`
	KPIRecordID  *primitive.ObjectID `json:"kpi_record_id,omitempty" bson:"kpi_record_id,omitempty"`
	TriggerTag   ActionTag           `json:"trigger_tag,omitempty" bson:"trigger_tag,omitempty"`
	TrainingType TrainingType        `json:"training_type" bson:"training_type"`
	Origin       AssignmentOrigin    `json:"origin" bson:"origin"`

	Status          TrainingStatus `json:"status" bson:"status"`
	DueDate         time.Time      `json:"due_date" bson:"due_date"`
	CompletionScore *int           `json:"completion_score,omitempty" bson:"completion_score,omitempty"`
	Notes           string         `json:"notes,omitempty" bson:"notes,omitempty"`
	StartedAt       *time.Time     `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty" bson:"completed_at,omitempty"`

	Metadata Metadata `json:"metadata" bson:"metadata"`
}

// IsOverdue reports whether the assignment is past due and still open. The
// stored status is untouched; an overdue assignment can still be completed.
func (a *TrainingAssignment) IsOverdue(now time.Time) bool {
	return a.Status != TrainingCompleted && a.DueDate.Before(now)
}

// CanTransitionTo enforces the forward-only status discipline.
func (a *TrainingAssignment) CanTransitionTo(next TrainingStatus) bool {
	switch a.Status {
	case TrainingAssigned:
		return next == TrainingInProgress || next == TrainingCompleted
	case TrainingInProgress:
		return next == TrainingCompleted
	}
	return false
}
