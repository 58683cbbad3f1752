package repository

import (
	"context"
	"time"

	"fieldkpi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type KPIRecordRepository interface {
	Create(ctx context.Context, record *models.KPIRecord) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.KPIRecord, error)
	GetAll(ctx context.Context) ([]models.KPIRecord, error)
	FindByAutomationStatus(ctx context.Context, statuses ...models.AutomationStatus) ([]models.KPIRecord, error)
	UpdateAutomationState(ctx context.Context, id primitive.ObjectID, update AutomationStateUpdate) error
	SoftDeactivate(ctx context.Context, id primitive.ObjectID, updatedBy string) error
	GetPerformanceStats(ctx context.Context) ([]bson.M, error)
}

// AutomationStateUpdate carries the orchestrator-owned mutable fields of a KPI
// record. Nil pointers leave the stored value untouched.
type AutomationStateUpdate struct {
	Status                *models.AutomationStatus
	Error                 *string
	ProcessedAt           *time.Time
	TriggeredActions      []models.ActionTag
	TrainingAssignmentIDs []primitive.ObjectID
	AuditScheduleIDs      []primitive.ObjectID
	NotificationLogIDs    []primitive.ObjectID
	UpdatedBy             string
}

type kpiRecordRepository struct {
	collection *mongo.Collection
}

func NewKPIRecordRepository(db *mongo.Database) KPIRecordRepository {
	return &kpiRecordRepository{
		collection: db.Collection("kpi_records"),
	}
}

// Create inserts the record, relying on the unique (subject_id, period) index
// for atomic duplicate rejection under concurrent submissions.
func (r *kpiRecordRepository) Create(ctx context.Context, record *models.KPIRecord) error {
	record.ID = primitive.NewObjectID()

	_, err := r.collection.InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicatePeriod
	}
	return err
}

func (r *kpiRecordRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.KPIRecord, error) {
	var record models.KPIRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *kpiRecordRepository) GetAll(ctx context.Context) ([]models.KPIRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.KPIRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *kpiRecordRepository) FindByAutomationStatus(ctx context.Context, statuses ...models.AutomationStatus) ([]models.KPIRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"is_active":         true,
		"automation_status": bson.M{"$in": statuses},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.KPIRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *kpiRecordRepository) UpdateAutomationState(ctx context.Context, id primitive.ObjectID, update AutomationStateUpdate) error {
	set := bson.M{
		"metadata.updated_at": time.Now(),
		"metadata.updated_by": update.UpdatedBy,
	}
	if update.Status != nil {
		set["automation_status"] = *update.Status
	}
	if update.Error != nil {
		set["automation_error"] = *update.Error
	}
	if update.ProcessedAt != nil {
		set["processed_at"] = *update.ProcessedAt
	}
	if update.TriggeredActions != nil {
		set["triggered_actions"] = update.TriggeredActions
	}
	if update.TrainingAssignmentIDs != nil {
		set["training_assignment_ids"] = update.TrainingAssignmentIDs
	}
	if update.AuditScheduleIDs != nil {
		set["audit_schedule_ids"] = update.AuditScheduleIDs
	}
	if update.NotificationLogIDs != nil {
		set["notification_log_ids"] = update.NotificationLogIDs
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *kpiRecordRepository) SoftDeactivate(ctx context.Context, id primitive.ObjectID, updatedBy string) error {
	update := bson.M{
		"$set": bson.M{
			"is_active":           false,
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "is_active": true}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPerformanceStats groups active records by rating with per-group score and
// automation-outcome aggregates.
func (r *kpiRecordRepository) GetPerformanceStats(ctx context.Context) ([]bson.M, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"is_active": true}}},

		bson.D{{Key: "$addFields", Value: bson.M{
			"automation_completed": bson.M{
				"$cond": bson.M{
					"if":   bson.M{"$eq": []interface{}{"$automation_status", "completed"}},
					"then": 1,
					"else": 0,
				},
			},
			"automation_failed": bson.M{
				"$cond": bson.M{
					"if":   bson.M{"$eq": []interface{}{"$automation_status", "failed"}},
					"then": 1,
					"else": 0,
				},
			},
			"actions_count": bson.M{
				"$cond": bson.M{
					"if":   bson.M{"$isArray": "$triggered_actions"},
					"then": bson.M{"$size": "$triggered_actions"},
					"else": 0,
				},
			},
		}}},

		bson.D{{Key: "$group", Value: bson.M{
			"_id":                  "$rating",
			"count":                bson.M{"$sum": 1},
			"avg_score":            bson.M{"$avg": "$overall_score"},
			"min_score":            bson.M{"$min": "$overall_score"},
			"max_score":            bson.M{"$max": "$overall_score"},
			"total_actions":        bson.M{"$sum": "$actions_count"},
			"automation_completed": bson.M{"$sum": "$automation_completed"},
			"automation_failed":    bson.M{"$sum": "$automation_failed"},
		}}},

		bson.D{{Key: "$sort", Value: bson.M{"avg_score": -1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
