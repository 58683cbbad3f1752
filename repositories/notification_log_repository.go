package repository

import (
	"context"
	"time"

	"fieldkpi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type NotificationLogRepository interface {
	Create(ctx context.Context, entry *models.NotificationLog) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.NotificationLog, error)
	FindByKPIAndTemplate(ctx context.Context, kpiRecordID primitive.ObjectID, template models.TemplateType) (*models.NotificationLog, error)
	FindRetryEligible(ctx context.Context, filter RetryFilter) ([]models.NotificationLog, error)
	FindFailed(ctx context.Context) ([]models.NotificationLog, error)
	Update(ctx context.Context, id primitive.ObjectID, entry *models.NotificationLog) error
}

// RetryFilter narrows a bulk retry sweep. Zero value means all eligible entries.
type RetryFilter struct {
	TemplateType models.TemplateType
	SubjectID    string
}

type notificationLogRepository struct {
	collection *mongo.Collection
}

func NewNotificationLogRepository(db *mongo.Database) NotificationLogRepository {
	return &notificationLogRepository{
		collection: db.Collection("notification_logs"),
	}
}

func (r *notificationLogRepository) Create(ctx context.Context, entry *models.NotificationLog) error {
	entry.ID = primitive.NewObjectID()

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *notificationLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.NotificationLog, error) {
	var entry models.NotificationLog
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByKPIAndTemplate is the idempotency lookup used by the fan-out.
func (r *notificationLogRepository) FindByKPIAndTemplate(ctx context.Context, kpiRecordID primitive.ObjectID, template models.TemplateType) (*models.NotificationLog, error) {
	var entry models.NotificationLog
	err := r.collection.FindOne(ctx, bson.M{
		"kpi_record_id": kpiRecordID,
		"template_type": template,
	}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindRetryEligible returns failed entries that still have retry budget,
// matching the canRetry contract as a collection filter.
func (r *notificationLogRepository) FindRetryEligible(ctx context.Context, filter RetryFilter) ([]models.NotificationLog, error) {
	query := bson.M{
		"status": models.NotificationFailed,
		"$expr":  bson.M{"$lt": []interface{}{"$retry_count", "$max_retries"}},
	}
	if filter.TemplateType != "" {
		query["template_type"] = filter.TemplateType
	}
	if filter.SubjectID != "" {
		query["subject_id"] = filter.SubjectID
	}

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.NotificationLog
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *notificationLogRepository) FindFailed(ctx context.Context) ([]models.NotificationLog, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.NotificationFailed})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.NotificationLog
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *notificationLogRepository) Update(ctx context.Context, id primitive.ObjectID, entry *models.NotificationLog) error {
	entry.Metadata.UpdatedAt = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": entry})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
