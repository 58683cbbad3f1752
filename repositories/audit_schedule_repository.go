package repository

import (
	"context"
	"time"

	"fieldkpi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuditScheduleRepository interface {
	Create(ctx context.Context, schedule *models.AuditSchedule) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.AuditSchedule, error)
	FindByKPIAndTag(ctx context.Context, kpiRecordID primitive.ObjectID, tag models.ActionTag) (*models.AuditSchedule, error)
	FindBySubject(ctx context.Context, subjectID string) ([]models.AuditSchedule, error)
	FindOverdue(ctx context.Context, now time.Time) ([]models.AuditSchedule, error)
	Update(ctx context.Context, id primitive.ObjectID, schedule *models.AuditSchedule) error
}

type auditScheduleRepository struct {
	collection *mongo.Collection
}

func NewAuditScheduleRepository(db *mongo.Database) AuditScheduleRepository {
	return &auditScheduleRepository{
		collection: db.Collection("audit_schedules"),
	}
}

func (r *auditScheduleRepository) Create(ctx context.Context, schedule *models.AuditSchedule) error {
	schedule.ID = primitive.NewObjectID()

	_, err := r.collection.InsertOne(ctx, schedule)
	return err
}

func (r *auditScheduleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AuditSchedule, error) {
	var schedule models.AuditSchedule
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&schedule)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// FindByKPIAndTag is the idempotency lookup used by the fan-out.
func (r *auditScheduleRepository) FindByKPIAndTag(ctx context.Context, kpiRecordID primitive.ObjectID, tag models.ActionTag) (*models.AuditSchedule, error) {
	var schedule models.AuditSchedule
	err := r.collection.FindOne(ctx, bson.M{
		"kpi_record_id": kpiRecordID,
		"trigger_tag":   tag,
	}).Decode(&schedule)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *auditScheduleRepository) FindBySubject(ctx context.Context, subjectID string) ([]models.AuditSchedule, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"subject_id": subjectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schedules []models.AuditSchedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *auditScheduleRepository) FindOverdue(ctx context.Context, now time.Time) ([]models.AuditSchedule, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"scheduled_date": bson.M{"$lt": now},
		"status":         bson.M{"$in": []models.AuditStatus{models.AuditScheduled, models.AuditInProgress}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schedules []models.AuditSchedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *auditScheduleRepository) Update(ctx context.Context, id primitive.ObjectID, schedule *models.AuditSchedule) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": schedule})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
