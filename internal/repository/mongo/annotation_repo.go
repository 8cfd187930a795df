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

const annotationCollectionName = "session_annotations"

// mongoAnnotationRepository implements repository.AnnotationRepository
type mongoAnnotationRepository struct {
	collection *mongo.Collection
}

// NewMongoAnnotationRepository creates a new SessionAnnotation repository backed by MongoDB.
func NewMongoAnnotationRepository(db *mongo.Database) repository.AnnotationRepository {
	return &mongoAnnotationRepository{
		collection: db.Collection(annotationCollectionName),
	}
}

// Create inserts a new annotation.
func (r *mongoAnnotationRepository) Create(ctx context.Context, annotation *domain.SessionAnnotation) (primitive.ObjectID, error) {
	if annotation.SessionID == primitive.NilObjectID || annotation.VideoID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("annotation requires sessionId and videoId")
	}

	annotation.ID = primitive.NewObjectID()
	annotation.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, annotation)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted annotation ID")
	}
	return insertedID, nil
}

// ListBySessionVideo retrieves all annotations of a video in insertion order.
func (r *mongoAnnotationRepository) ListBySessionVideo(ctx context.Context, sessionID, videoID primitive.ObjectID) ([]domain.SessionAnnotation, error) {
	filter := bson.M{"sessionId": sessionID, "videoId": videoID}
	return r.list(ctx, filter)
}

// ListByTimestampRange retrieves annotations anchored within [min, max]
// seconds for a specific video, insertion-ordered.
func (r *mongoAnnotationRepository) ListByTimestampRange(ctx context.Context, sessionID, videoID primitive.ObjectID, min, max float64) ([]domain.SessionAnnotation, error) {
	filter := bson.M{
		"sessionId":      sessionID,
		"videoId":        videoID,
		"videoTimestamp": bson.M{"$gte": min, "$lte": max},
	}
	return r.list(ctx, filter)
}

func (r *mongoAnnotationRepository) list(ctx context.Context, filter bson.M) ([]domain.SessionAnnotation, error) {
	findOptions := options.Find().SetSort(insertionOrder)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var annotations []domain.SessionAnnotation
	if err = cursor.All(ctx, &annotations); err != nil {
		return nil, err
	}
	return annotations, nil
}

// EnsureAnnotationIndexes creates necessary indexes for the session_annotations collection.
func EnsureAnnotationIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "sessionId", Value: 1},
				{Key: "videoId", Value: 1},
				{Key: "videoTimestamp", Value: 1},
			},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
