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

const relationshipCollectionName = "relationships"

// mongoRelationshipRepository implements repository.RelationshipRepository
type mongoRelationshipRepository struct {
	collection *mongo.Collection
}

// NewMongoRelationshipRepository creates a new Relationship repository backed by MongoDB.
func NewMongoRelationshipRepository(db *mongo.Database) repository.RelationshipRepository {
	return &mongoRelationshipRepository{
		collection: db.Collection(relationshipCollectionName),
	}
}

// Upsert returns the relationship for the pair, creating an active one if
// none exists. $setOnInsert keeps an existing row untouched; the unique
// (coachId, studentId) index plus a fetch-on-conflict fallback resolves
// concurrent duplicate submissions without application-level locking.
func (r *mongoRelationshipRepository) Upsert(ctx context.Context, coachID, studentID primitive.ObjectID) (*domain.Relationship, error) {
	if coachID == primitive.NilObjectID || studentID == primitive.NilObjectID {
		return nil, errors.New("relationship requires coachId and studentId")
	}

	now := time.Now().UTC()
	filter := bson.M{"coachId": coachID, "studentId": studentID}
	update := bson.M{"$setOnInsert": bson.M{
		"coachId":    coachID,
		"studentId":  studentID,
		"status":     domain.RelationshipActive,
		"createdAt":  now,
		"acceptedAt": now,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var rel domain.Relationship
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rel)
	if err != nil {
		// Two concurrent upserts for a brand-new pair can still collide on
		// the unique index; the loser fetches the winner's row.
		if mongo.IsDuplicateKeyError(err) {
			return r.GetByPair(ctx, coachID, studentID)
		}
		return nil, err
	}
	return &rel, nil
}

// GetByID retrieves a relationship by its ID.
func (r *mongoRelationshipRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Relationship, error) {
	var rel domain.Relationship
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rel, nil
}

// GetByPair retrieves the relationship for a specific coach/student pair.
func (r *mongoRelationshipRepository) GetByPair(ctx context.Context, coachID, studentID primitive.ObjectID) (*domain.Relationship, error) {
	var rel domain.Relationship
	filter := bson.M{"coachId": coachID, "studentId": studentID}
	err := r.collection.FindOne(ctx, filter).Decode(&rel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rel, nil
}

// ListByUser retrieves relationships where the user holds the given role,
// filtered by status when provided.
func (r *mongoRelationshipRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, role domain.Role, status domain.RelationshipStatus) ([]domain.Relationship, error) {
	field := "studentId"
	if role == domain.RoleCoach {
		field = "coachId"
	}
	filter := bson.M{field: userID}
	if status != "" {
		filter["status"] = status
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rels []domain.Relationship
	if err = cursor.All(ctx, &rels); err != nil {
		return nil, err
	}
	return rels, nil
}

// UpdateStatus sets the relationship status.
func (r *mongoRelationshipRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.RelationshipStatus) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureRelationshipIndexes creates necessary indexes for the relationships collection.
func EnsureRelationshipIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One relationship per pair; duplicate creation races resolve here
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "studentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
