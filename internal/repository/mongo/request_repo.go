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

const requestCollectionName = "requests"

// mongoRequestRepository implements repository.RequestRepository
type mongoRequestRepository struct {
	collection *mongo.Collection
}

// NewMongoRequestRepository creates a new Request repository backed by MongoDB.
func NewMongoRequestRepository(db *mongo.Database) repository.RequestRepository {
	return &mongoRequestRepository{
		collection: db.Collection(requestCollectionName),
	}
}

// Create inserts a new request. The partial unique index on the pending
// (senderId, receiverId) pair turns concurrent duplicate submissions into
// ErrDuplicate instead of a second pending row.
func (r *mongoRequestRepository) Create(ctx context.Context, req *domain.Request) (primitive.ObjectID, error) {
	if req.SenderID == primitive.NilObjectID || req.ReceiverID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("request requires senderId and receiverId")
	}

	req.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = domain.RequestPending
	}

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted request ID")
	}
	return insertedID, nil
}

// GetByID retrieves a request by its ID.
func (r *mongoRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Request, error) {
	var req domain.Request
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindPendingBetween returns pending requests in either direction between
// the two users.
func (r *mongoRequestRepository) FindPendingBetween(ctx context.Context, a, b primitive.ObjectID) ([]domain.Request, error) {
	filter := bson.M{
		"status": domain.RequestPending,
		"$or": []bson.M{
			{"senderId": a, "receiverId": b},
			{"senderId": b, "receiverId": a},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []domain.Request
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// ListBySender retrieves requests sent by a user, newest first.
func (r *mongoRequestRepository) ListBySender(ctx context.Context, senderID primitive.ObjectID) ([]domain.Request, error) {
	return r.list(ctx, bson.M{"senderId": senderID})
}

// ListByReceiver retrieves requests received by a user, newest first.
func (r *mongoRequestRepository) ListByReceiver(ctx context.Context, receiverID primitive.ObjectID) ([]domain.Request, error) {
	return r.list(ctx, bson.M{"receiverId": receiverID})
}

func (r *mongoRequestRepository) list(ctx context.Context, filter bson.M) ([]domain.Request, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []domain.Request
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// MarkResponded transitions a pending request to a terminal status. The
// filter on status=pending means a second response to the same request
// matches nothing and surfaces as ErrNotFound, which the service maps to
// an invalid-state error.
func (r *mongoRequestRepository) MarkResponded(ctx context.Context, id primitive.ObjectID, status domain.RequestStatus, sessionID *primitive.ObjectID) error {
	now := time.Now().UTC()
	set := bson.M{
		"status":      status,
		"respondedAt": now,
		"updatedAt":   now,
	}
	if sessionID != nil {
		set["sessionId"] = *sessionID
	}

	filter := bson.M{"_id": id, "status": domain.RequestPending}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureRequestIndexes creates necessary indexes for the requests collection.
func EnsureRequestIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// At most one pending request per ordered pair. Partial so
			// resolved requests don't block new ones.
			Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.RequestPending}),
		},
		{
			Keys:    bson.D{{Key: "receiverId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "senderId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
