package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditType is the closed set of provisionable audits, keyed 1:1 to the
// audit-class action tags.
type AuditType string

const (
	AuditCall        AuditType = "audit_call"
	AuditCrossCheck  AuditType = "cross_check_3_months"
	AuditDummy       AuditType = "dummy_audit"
	AuditRCA         AuditType = "rca_complaints"
	AuditCrossVerify AuditType = "cross_verify_insuff"
)

// AuditTypeForTag maps an audit-class action tag to its audit type. Returns
// false for non-audit tags.
func AuditTypeForTag(tag ActionTag) (AuditType, bool) {
	switch tag {
	case TagAuditCall:
		return AuditCall, true
	case TagCrossCheck3Months:
		return AuditCrossCheck, true
	case TagDummyAudit:
		return AuditDummy, true
	case TagRCAComplaints:
		return AuditRCA, true
	case TagCrossVerifyInsuff:
		return AuditCrossVerify, true
	}
	return "", false
}

// AuditStatus values move forward only: scheduled -> in_progress -> completed.
type AuditStatus string

const (
	AuditScheduled  AuditStatus = "scheduled"
	AuditInProgress AuditStatus = "in_progress"
	AuditCompleted  AuditStatus = "completed"
)

// AuditSchedule is one audit provisioned for a subject. At most one exists per
// (originating KPI record, trigger tag).
type AuditSchedule struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	SubjectID   string              `json:"subject_id" bson:"subject_id"`
	KPIRecordID *primitive.ObjectID `json:"kpi_record_id,omitempty" bson:"kpi_record_id,omitempty"`
	TriggerTag  ActionTag           `json:"trigger_tag,omitempty" bson:"trigger_tag,omitempty"`
	AuditType   AuditType           `json:"audit_type" bson:"audit_type"`
	Origin      AssignmentOrigin    `json:"origin" bson:"origin"`

	Status          AuditStatus `json:"status" bson:"status"`
	ScheduledDate   time.Time   `json:"scheduled_date" bson:"scheduled_date"`
	Findings        string      `json:"findings,omitempty" bson:"findings,omitempty"`
	Recommendations string      `json:"recommendations,omitempty" bson:"recommendations,omitempty"`
	StartedAt       *time.Time  `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty" bson:"completed_at,omitempty"`

	Metadata Metadata `json:"metadata" bson:"metadata"`
}

// IsOverdue reports whether the scheduled date has passed with the audit still
// open. Derived at read time, never stored.
func (s *AuditSchedule) IsOverdue(now time.Time) bool {
	return s.Status != AuditCompleted && s.ScheduledDate.Before(now)
}

// CanTransitionTo enforces the forward-only status discipline.
func (s *AuditSchedule) CanTransitionTo(next AuditStatus) bool {
	switch s.Status {
	case AuditScheduled:
		return next == AuditInProgress || next == AuditCompleted
	case AuditInProgress:
		return next == AuditCompleted
	}
	return false
}
