package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateType selects the outbound notification template.
type TemplateType string

const (
	TemplateKPINotification    TemplateType = "kpi_notification"
	TemplateTrainingAssignment TemplateType = "training_assignment"
	TemplateAuditNotification  TemplateType = "audit_notification"
	TemplateWarningLetter      TemplateType = "warning_letter"
)

// NotificationStatus is the delivery state of one dispatch attempt chain.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// DefaultMaxRetries bounds how often a failed entry may be re-dispatched.
const DefaultMaxRetries = 3

// NotificationLog tracks one notification and its retries. Invariant:
// RetryCount never exceeds MaxRetries.
type NotificationLog struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	KPIRecordID  *primitive.ObjectID `json:"kpi_record_id,omitempty" bson:"kpi_record_id,omitempty"`
	SubjectID    string              `json:"subject_id" bson:"subject_id"`
	Recipient    string              `json:"recipient" bson:"recipient"`
	TemplateType TemplateType        `json:"template_type" bson:"template_type"`

	Status      NotificationStatus     `json:"status" bson:"status"`
	ErrorReason string                 `json:"error_reason,omitempty" bson:"error_reason,omitempty"`
	Variables   map[string]interface{} `json:"variables,omitempty" bson:"variables,omitempty"`

	RetryCount int        `json:"retry_count" bson:"retry_count"`
	MaxRetries int        `json:"max_retries" bson:"max_retries"`
	SentAt     *time.Time `json:"sent_at,omitempty" bson:"sent_at,omitempty"`

	Metadata Metadata `json:"metadata" bson:"metadata"`
}

// CanRetry reports retry eligibility: failed with retry budget remaining.
func (n *NotificationLog) CanRetry() bool {
	return n.Status == NotificationFailed && n.RetryCount < n.MaxRetries
}
