package repository

import (
	"context"
	"time"

	"fieldkpi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type TrainingAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.TrainingAssignment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.TrainingAssignment, error)
	FindByKPIAndTag(ctx context.Context, kpiRecordID primitive.ObjectID, tag models.ActionTag) (*models.TrainingAssignment, error)
	FindBySubject(ctx context.Context, subjectID string) ([]models.TrainingAssignment, error)
	FindOverdue(ctx context.Context, now time.Time) ([]models.TrainingAssignment, error)
	Update(ctx context.Context, id primitive.ObjectID, assignment *models.TrainingAssignment) error
}

type trainingAssignmentRepository struct {
	collection *mongo.Collection
}

func NewTrainingAssignmentRepository(db *mongo.Database) TrainingAssignmentRepository {
	return &trainingAssignmentRepository{
		collection: db.Collection("training_assignments"),
	}
}

func (r *trainingAssignmentRepository) Create(ctx context.Context, assignment *models.TrainingAssignment) error {
	assignment.ID = primitive.NewObjectID()

	_, err := r.collection.InsertOne(ctx, assignment)
	return err
}

func (r *trainingAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TrainingAssignment, error) {
	var assignment models.TrainingAssignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindByKPIAndTag is the idempotency lookup used by the fan-out: at most one
// assignment exists per originating record and trigger tag.
func (r *trainingAssignmentRepository) FindByKPIAndTag(ctx context.Context, kpiRecordID primitive.ObjectID, tag models.ActionTag) (*models.TrainingAssignment, error) {
	var assignment models.TrainingAssignment
	err := r.collection.FindOne(ctx, bson.M{
		"kpi_record_id": kpiRecordID,
		"trigger_tag":   tag,
	}).Decode(&assignment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *trainingAssignmentRepository) FindBySubject(ctx context.Context, subjectID string) ([]models.TrainingAssignment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"subject_id": subjectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []models.TrainingAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// FindOverdue filters on the stored due date and open statuses; the overdue
// state itself is never written back.
func (r *trainingAssignmentRepository) FindOverdue(ctx context.Context, now time.Time) ([]models.TrainingAssignment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"due_date": bson.M{"$lt": now},
		"status":   bson.M{"$in": []models.TrainingStatus{models.TrainingAssigned, models.TrainingInProgress}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []models.TrainingAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *trainingAssignmentRepository) Update(ctx context.Context, id primitive.ObjectID, assignment *models.TrainingAssignment) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": assignment})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
