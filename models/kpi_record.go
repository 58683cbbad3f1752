package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is the five-tier classification of an overall KPI score.
type Rating string

const (
	RatingOutstanding     Rating = "outstanding"
	RatingExcellent       Rating = "excellent"
	RatingSatisfactory    Rating = "satisfactory"
	RatingNeedImprovement Rating = "need_improvement"
	RatingUnsatisfactory  Rating = "unsatisfactory"
)

// AutomationStatus is the lifecycle state of the orchestration run for one record.
type AutomationStatus string

const (
	AutomationPending    AutomationStatus = "pending"
	AutomationProcessing AutomationStatus = "processing"
	AutomationCompleted  AutomationStatus = "completed"
	AutomationFailed     AutomationStatus = "failed"
)

// ActionTag is a closed-vocabulary label produced by trigger evaluation.
type ActionTag string

const (
	TagPerformanceReward  ActionTag = "performance_reward"
	TagBasicTraining      ActionTag = "basic_training"
	TagNegativityTraining ActionTag = "negativity_training"
	TagDosDontsTraining   ActionTag = "dos_donts_training"
	TagAppUsageTraining   ActionTag = "app_usage_training"
	TagAuditCall          ActionTag = "audit_call"
	TagCrossCheck3Months  ActionTag = "cross_check_3_months"
	TagDummyAudit         ActionTag = "dummy_audit"
	TagRCAComplaints      ActionTag = "rca_complaints"
	TagCrossVerifyInsuff  ActionTag = "cross_verify_insuff"
	TagWarningLetter      ActionTag = "warning_letter"
)

// IsTraining reports whether the tag provisions a training assignment.
func (t ActionTag) IsTraining() bool {
	switch t {
	case TagBasicTraining, TagNegativityTraining, TagDosDontsTraining, TagAppUsageTraining:
		return true
	}
	return false
}

// IsAudit reports whether the tag provisions an audit schedule.
func (t ActionTag) IsAudit() bool {
	switch t {
	case TagAuditCall, TagCrossCheck3Months, TagDummyAudit, TagRCAComplaints, TagCrossVerifyInsuff:
		return true
	}
	return false
}

// MetricScore pairs a raw submitted percentage with the derived banded score.
// Both are frozen at record creation time.
type MetricScore struct {
	Percentage   float64 `json:"percentage" bson:"percentage"`
	DerivedScore int     `json:"derived_score" bson:"derived_score"`
}

// MetricSet holds the seven sub-metrics of one submission.
type MetricSet struct {
	TAT               MetricScore `json:"tat" bson:"tat"`
	MajorNegativity   MetricScore `json:"major_negativity" bson:"major_negativity"`
	Quality           MetricScore `json:"quality" bson:"quality"`
	NeighborCheck     MetricScore `json:"neighbor_check" bson:"neighbor_check"`
	GeneralNegativity MetricScore `json:"general_negativity" bson:"general_negativity"`
	AppUsage          MetricScore `json:"app_usage" bson:"app_usage"`
	Insufficiency     MetricScore `json:"insufficiency" bson:"insufficiency"`
}

// KPIRecord is one scored submission for a subject and period. The period key
// together with the subject id is the unique business key; duplicates are
// rejected by the unique index at insert time.
type KPIRecord struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SubjectID    string             `json:"subject_id" bson:"subject_id"`
	SubjectName  string             `json:"subject_name" bson:"subject_name"`
	SubjectEmail string             `json:"subject_email" bson:"subject_email"`
	Period       string             `json:"period" bson:"period"` // YYYY-MM

	Metrics      MetricSet `json:"metrics" bson:"metrics"`
	OverallScore int       `json:"overall_score" bson:"overall_score"`
	Rating       Rating    `json:"rating" bson:"rating"`

	TriggeredActions []ActionTag      `json:"triggered_actions" bson:"triggered_actions"`
	AutomationStatus AutomationStatus `json:"automation_status" bson:"automation_status"`
	AutomationError  string           `json:"automation_error,omitempty" bson:"automation_error,omitempty"`
	ProcessedAt      *time.Time       `json:"processed_at,omitempty" bson:"processed_at,omitempty"`

	TrainingAssignmentIDs []primitive.ObjectID `json:"training_assignment_ids" bson:"training_assignment_ids"`
	AuditScheduleIDs      []primitive.ObjectID `json:"audit_schedule_ids" bson:"audit_schedule_ids"`
	NotificationLogIDs    []primitive.ObjectID `json:"notification_log_ids" bson:"notification_log_ids"`

	SubmittedAt time.Time `json:"submitted_at" bson:"submitted_at"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	Metadata    Metadata  `json:"metadata" bson:"metadata"`
}

// Metadata carries audit fields shared by all documents.
type Metadata struct {
	CreatedBy string    `json:"created_by" bson:"created_by"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// HasTag reports whether the record's triggered action set contains tag.
func (k *KPIRecord) HasTag(tag ActionTag) bool {
	for _, t := range k.TriggeredActions {
		if t == tag {
			return true
		}
	}
	return false
}
