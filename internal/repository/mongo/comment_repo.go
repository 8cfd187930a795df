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

const commentCollectionName = "session_comments"

// insertionOrder gives a stable order across repeated reads: creation
// time first, ObjectID as the tiebreaker for same-millisecond writes.
var insertionOrder = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

// mongoCommentRepository implements repository.CommentRepository
type mongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new SessionComment repository backed by MongoDB.
func NewMongoCommentRepository(db *mongo.Database) repository.CommentRepository {
	return &mongoCommentRepository{
		collection: db.Collection(commentCollectionName),
	}
}

// Create inserts a new comment.
func (r *mongoCommentRepository) Create(ctx context.Context, comment *domain.SessionComment) (primitive.ObjectID, error) {
	if comment.SessionID == primitive.NilObjectID || comment.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("comment requires sessionId and userId")
	}

	comment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted comment ID")
	}
	return insertedID, nil
}

// GetByID retrieves a comment by its ID.
func (r *mongoCommentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionComment, error) {
	var comment domain.SessionComment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// ListBySession retrieves all comments of a session in insertion order.
func (r *mongoCommentRepository) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionComment, error) {
	return r.list(ctx, bson.M{"sessionId": sessionID})
}

// ListByTimestampRange retrieves comments anchored within [min, max]
// seconds, insertion-ordered. Unanchored comments never match.
func (r *mongoCommentRepository) ListByTimestampRange(ctx context.Context, sessionID primitive.ObjectID, min, max float64) ([]domain.SessionComment, error) {
	filter := bson.M{
		"sessionId":      sessionID,
		"videoTimestamp": bson.M{"$gte": min, "$lte": max},
	}
	return r.list(ctx, filter)
}

func (r *mongoCommentRepository) list(ctx context.Context, filter bson.M) ([]domain.SessionComment, error) {
	findOptions := options.Find().SetSort(insertionOrder)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []domain.SessionComment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateText replaces a comment's text and flags it as edited.
func (r *mongoCommentRepository) UpdateText(ctx context.Context, id primitive.ObjectID, text string) error {
	update := bson.M{"$set": bson.M{
		"commentText": text,
		"edited":      true,
		"updatedAt":   time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a comment.
func (r *mongoCommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureCommentIndexes creates necessary indexes for the session_comments collection.
func EnsureCommentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
		{
			// Timeline queries filter on the anchor range
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "videoTimestamp", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
