package service

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelationshipService manages the coach/student pairs every session and
// request hangs off. At most one relationship exists per pair; creating
// an existing one returns it, reactivating it first if it was ended.
type RelationshipService interface {
	CreateOrGet(ctx context.Context, coachID, studentID primitive.ObjectID) (*domain.Relationship, error)
	List(ctx context.Context, userID primitive.ObjectID, role domain.Role, status domain.RelationshipStatus) ([]domain.Relationship, error)
	Get(ctx context.Context, relationshipID, callerID primitive.ObjectID) (*domain.Relationship, error)
	End(ctx context.Context, relationshipID, callerID primitive.ObjectID) error
}

type relationshipService struct {
	relationshipRepo repository.RelationshipRepository
	userRepo         repository.UserRepository
}

// NewRelationshipService creates a new relationship service.
func NewRelationshipService(
	relationshipRepo repository.RelationshipRepository,
	userRepo repository.UserRepository,
) RelationshipService {
	return &relationshipService{
		relationshipRepo: relationshipRepo,
		userRepo:         userRepo,
	}
}

// CreateOrGet establishes (or returns) the single relationship between a
// coach and a student. Concurrent calls for the same pair converge on
// one record; the unique index on the pair backs that up.
func (s *relationshipService) CreateOrGet(ctx context.Context, coachID, studentID primitive.ObjectID) (*domain.Relationship, error) {
	if coachID == primitive.NilObjectID || studentID == primitive.NilObjectID {
		return nil, ErrUserNotFound
	}
	if coachID == studentID {
		return nil, ErrRolePairInvalid
	}

	if err := s.verifyRoles(ctx, coachID, studentID); err != nil {
		return nil, err
	}

	relationship, err := s.relationshipRepo.Upsert(ctx, coachID, studentID)
	if err != nil {
		return nil, err
	}

	// An ended relationship is revived rather than duplicated.
	if relationship.Status == domain.RelationshipEnded {
		if err := s.relationshipRepo.UpdateStatus(ctx, relationship.ID, domain.RelationshipActive); err != nil {
			return nil, err
		}
		relationship.Status = domain.RelationshipActive
		now := time.Now().UTC()
		relationship.AcceptedAt = &now
	}

	return relationship, nil
}

func (s *relationshipService) verifyRoles(ctx context.Context, coachID, studentID primitive.ObjectID) error {
	coach, err := s.userRepo.GetByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !coach.IsCoach() || !student.IsStudent() {
		return ErrRolePairInvalid
	}
	return nil
}

// List returns the caller's relationships, optionally filtered by status.
func (s *relationshipService) List(ctx context.Context, userID primitive.ObjectID, role domain.Role, status domain.RelationshipStatus) ([]domain.Relationship, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUserNotFound
	}
	return s.relationshipRepo.ListByUser(ctx, userID, role, status)
}

// Get returns a relationship the caller participates in.
func (s *relationshipService) Get(ctx context.Context, relationshipID, callerID primitive.ObjectID) (*domain.Relationship, error) {
	relationship, err := s.relationshipRepo.GetByID(ctx, relationshipID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRelationshipNotFound
		}
		return nil, err
	}
	if !relationship.HasParticipant(callerID) {
		return nil, ErrRelationshipNotFound
	}
	return relationship, nil
}

// End marks a relationship as ended. Either participant may end it;
// ending an already-ended relationship is a no-op.
func (s *relationshipService) End(ctx context.Context, relationshipID, callerID primitive.ObjectID) error {
	relationship, err := s.relationshipRepo.GetByID(ctx, relationshipID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRelationshipNotFound
		}
		return err
	}
	if !relationship.HasParticipant(callerID) {
		return ErrRelationshipNotFound
	}

	if relationship.Status == domain.RelationshipEnded {
		return nil
	}
	return s.relationshipRepo.UpdateStatus(ctx, relationship.ID, domain.RelationshipEnded)
}
