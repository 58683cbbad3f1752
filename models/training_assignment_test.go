package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrainingIsOverdue(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		status  TrainingStatus
		dueDate time.Time
		want    bool
	}{
		{"assigned past due", TrainingAssigned, now.AddDate(0, 0, -1), true},
		{"in progress past due", TrainingInProgress, now.AddDate(0, 0, -1), true},
		{"completed past due", TrainingCompleted, now.AddDate(0, 0, -1), false},
		{"assigned not yet due", TrainingAssigned, now.AddDate(0, 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := TrainingAssignment{Status: tt.status, DueDate: tt.dueDate}
			assert.Equal(t, tt.want, a.IsOverdue(now))
		})
	}
}

func TestTrainingTransitions(t *testing.T) {
	assigned := TrainingAssignment{Status: TrainingAssigned}
	assert.True(t, assigned.CanTransitionTo(TrainingInProgress))
	assert.True(t, assigned.CanTransitionTo(TrainingCompleted))

	inProgress := TrainingAssignment{Status: TrainingInProgress}
	assert.False(t, inProgress.CanTransitionTo(TrainingInProgress))
	assert.True(t, inProgress.CanTransitionTo(TrainingCompleted))

	completed := TrainingAssignment{Status: TrainingCompleted}
	assert.False(t, completed.CanTransitionTo(TrainingInProgress))
	assert.False(t, completed.CanTransitionTo(TrainingCompleted))
}

func TestActionTagClassification(t *testing.T) {
	trainingTags := []ActionTag{TagBasicTraining, TagNegativityTraining, TagDosDontsTraining, TagAppUsageTraining}
	auditTags := []ActionTag{TagAuditCall, TagCrossCheck3Months, TagDummyAudit, TagRCAComplaints, TagCrossVerifyInsuff}

	for _, tag := range trainingTags {
		assert.True(t, tag.IsTraining(), "tag %s", tag)
		assert.False(t, tag.IsAudit(), "tag %s", tag)

		trainingType, ok := TrainingTypeForTag(tag)
		assert.True(t, ok)
		assert.NotEmpty(t, trainingType)
	}

	for _, tag := range auditTags {
		assert.True(t, tag.IsAudit(), "tag %s", tag)
		assert.False(t, tag.IsTraining(), "tag %s", tag)

		auditType, ok := AuditTypeForTag(tag)
		assert.True(t, ok)
		assert.NotEmpty(t, auditType)
	}

	assert.False(t, TagWarningLetter.IsTraining())
	assert.False(t, TagWarningLetter.IsAudit())
	assert.False(t, TagPerformanceReward.IsTraining())
	assert.False(t, TagPerformanceReward.IsAudit())
}
