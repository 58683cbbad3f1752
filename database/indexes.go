package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes bootstraps the indexes the engine relies on. The unique
// (subject_id, period) index is load-bearing: it is the atomic
// check-and-insert that rejects duplicate submissions under concurrency.
func CreateIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	kpiIndexes := []mongo.IndexModel{
		// SUBMISSION: one active record per subject and period
		{
			Keys: bson.D{
				{Key: "subject_id", Value: 1},
				{Key: "period", Value: 1},
			},
			Options: options.Index().
				SetName("uidx_subject_period").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_active": true}),
		},

		// AUTOMATION: pending/failed sweeps
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "automation_status", Value: 1},
			},
			Options: options.Index().SetName("idx_active_automation_status"),
		},

		// ANALYTICS: rating aggregation
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "rating", Value: 1},
			},
			Options: options.Index().SetName("idx_active_rating"),
		},
	}
	if _, err := db.Collection("kpi_records").Indexes().CreateMany(ctx, kpiIndexes); err != nil {
		return fmt.Errorf("failed to create kpi_records indexes: %v", err)
	}

	if _, err := db.Collection("training_assignments").Indexes().CreateMany(ctx, sideEffectIndexes("due_date")); err != nil {
		return fmt.Errorf("failed to create training_assignments indexes: %v", err)
	}

	if _, err := db.Collection("audit_schedules").Indexes().CreateMany(ctx, sideEffectIndexes("scheduled_date")); err != nil {
		return fmt.Errorf("failed to create audit_schedules indexes: %v", err)
	}

	notificationIndexes := []mongo.IndexModel{
		// IDEMPOTENCY: one entry per (originating KPI, template)
		{
			Keys: bson.D{
				{Key: "kpi_record_id", Value: 1},
				{Key: "template_type", Value: 1},
			},
			Options: options.Index().
				SetName("uidx_kpi_template").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"kpi_record_id": bson.M{"$exists": true}}),
		},

		// RETRY SWEEP: failed entries with budget left
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "retry_count", Value: 1},
			},
			Options: options.Index().SetName("idx_status_retry_count"),
		},
	}
	if _, err := db.Collection("notification_logs").Indexes().CreateMany(ctx, notificationIndexes); err != nil {
		return fmt.Errorf("failed to create notification_logs indexes: %v", err)
	}

	fmt.Println("Database indexes created successfully")
	return nil
}

// sideEffectIndexes builds the shared index set for training_assignments and
// audit_schedules. The (kpi_record_id, trigger_tag) unique index is partial so
// manual records with no originating KPI don't collide.
func sideEffectIndexes(dateField string) []mongo.IndexModel {
	return []mongo.IndexModel{
		// IDEMPOTENCY: one side-effect record per (originating KPI, trigger tag)
		{
			Keys: bson.D{
				{Key: "kpi_record_id", Value: 1},
				{Key: "trigger_tag", Value: 1},
			},
			Options: options.Index().
				SetName("uidx_kpi_trigger_tag").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"kpi_record_id": bson.M{"$exists": true}}),
		},

		{
			Keys: bson.D{
				{Key: "subject_id", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("idx_subject_status"),
		},

		// OVERDUE SCANS: status + date threshold
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: dateField, Value: 1},
			},
			Options: options.Index().SetName("idx_status_" + dateField),
		},
	}
}
