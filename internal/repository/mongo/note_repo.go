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

const noteCollectionName = "session_notes"

// mongoNoteRepository implements repository.NoteRepository
type mongoNoteRepository struct {
	collection *mongo.Collection
}

// NewMongoNoteRepository creates a new SessionNote repository backed by MongoDB.
func NewMongoNoteRepository(db *mongo.Database) repository.NoteRepository {
	return &mongoNoteRepository{
		collection: db.Collection(noteCollectionName),
	}
}

// Create inserts a new note.
func (r *mongoNoteRepository) Create(ctx context.Context, note *domain.SessionNote) (primitive.ObjectID, error) {
	if note.SessionID == primitive.NilObjectID || note.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("note requires sessionId and userId")
	}

	note.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, note)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted note ID")
	}
	return insertedID, nil
}

// ListBySession retrieves all notes of a session in insertion order.
// Visibility filtering happens in the service on every read.
func (r *mongoNoteRepository) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionNote, error) {
	findOptions := options.Find().SetSort(insertionOrder)

	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []domain.SessionNote
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// EnsureNoteIndexes creates necessary indexes for the session_notes collection.
func EnsureNoteIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
