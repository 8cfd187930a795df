package mongo

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const progressCollectionName = "session_progress"

// mongoProgressRepository implements repository.ProgressRepository
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new SessionProgress repository backed by MongoDB.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Create inserts a new progress record.
func (r *mongoProgressRepository) Create(ctx context.Context, progress *domain.SessionProgress) (primitive.ObjectID, error) {
	if progress.SessionID == primitive.NilObjectID || progress.StudentID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("progress requires sessionId and studentId")
	}

	progress.ID = primitive.NewObjectID()
	if progress.RecordedAt.IsZero() {
		progress.RecordedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, progress)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted progress ID")
	}
	return insertedID, nil
}

// ListBySession retrieves progress records for a session, oldest first.
func (r *mongoProgressRepository) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionProgress, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "recordedAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.SessionProgress
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureProgressIndexes creates necessary indexes for the session_progress collection.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "recordedAt", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
