package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationCanRetry(t *testing.T) {
	tests := []struct {
		name       string
		status     NotificationStatus
		retryCount int
		maxRetries int
		want       bool
	}{
		{"failed with budget", NotificationFailed, 2, 3, true},
		{"failed with full budget", NotificationFailed, 0, 3, true},
		{"failed and exhausted", NotificationFailed, 3, 3, false},
		{"sent", NotificationSent, 0, 3, false},
		{"pending", NotificationPending, 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := NotificationLog{
				Status:     tt.status,
				RetryCount: tt.retryCount,
				MaxRetries: tt.maxRetries,
			}
			assert.Equal(t, tt.want, entry.CanRetry())
		})
	}
}
