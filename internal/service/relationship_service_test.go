package service

import (
	"coachvision/analysis-app/internal/domain"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateOrGet_Idempotent(t *testing.T) {
	env := newTestEnv()

	first, err := env.relationships.CreateOrGet(t.Context(), env.coach.ID, env.student.ID)
	if err != nil {
		t.Fatalf("first CreateOrGet() error = %v", err)
	}
	second, err := env.relationships.CreateOrGet(t.Context(), env.coach.ID, env.student.ID)
	if err != nil {
		t.Fatalf("second CreateOrGet() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("CreateOrGet() returned two different relationships: %s and %s", first.ID.Hex(), second.ID.Hex())
	}
	if second.Status != domain.RelationshipActive {
		t.Errorf("status = %s, want active", second.Status)
	}
}

func TestCreateOrGet_RejectsWrongRoles(t *testing.T) {
	env := newTestEnv()

	// Swapped coach/student.
	if _, err := env.relationships.CreateOrGet(t.Context(), env.student.ID, env.coach.ID); !errors.Is(err, ErrRolePairInvalid) {
		t.Errorf("swapped roles error = %v, want ErrRolePairInvalid", err)
	}
	if _, err := env.relationships.CreateOrGet(t.Context(), env.coach.ID, env.coach.ID); !errors.Is(err, ErrRolePairInvalid) {
		t.Errorf("same user error = %v, want ErrRolePairInvalid", err)
	}
	if _, err := env.relationships.CreateOrGet(t.Context(), env.coach.ID, primitive.NewObjectID()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown student error = %v, want ErrUserNotFound", err)
	}
}

func TestCreateOrGet_ReactivatesEnded(t *testing.T) {
	env := newTestEnv()

	relationship, err := env.relationships.CreateOrGet(t.Context(), env.coach.ID, env.student.ID)
	if err != nil {
		t.Fatalf("CreateOrGet() error = %v", err)
	}
	if err := env.relationships.End(t.Context(), relationship.ID, env.coach.ID); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	revived, err := env.relationships.CreateOrGet(t.Context(), env.coach.ID, env.student.ID)
	if err != nil {
		t.Fatalf("CreateOrGet() after End error = %v", err)
	}
	if revived.ID != relationship.ID {
		t.Errorf("reactivation created a new relationship %s, want %s revived", revived.ID.Hex(), relationship.ID.Hex())
	}
	if revived.Status != domain.RelationshipActive {
		t.Errorf("revived status = %s, want active", revived.Status)
	}
}

func TestEnd_Authorization(t *testing.T) {
	env := newTestEnv()

	relationship, err := env.relationships.CreateOrGet(t.Context(), env.coach.ID, env.student.ID)
	if err != nil {
		t.Fatalf("CreateOrGet() error = %v", err)
	}

	if err := env.relationships.End(t.Context(), relationship.ID, primitive.NewObjectID()); !errors.Is(err, ErrRelationshipNotFound) {
		t.Errorf("stranger End() error = %v, want ErrRelationshipNotFound", err)
	}
	if err := env.relationships.End(t.Context(), relationship.ID, env.student.ID); err != nil {
		t.Fatalf("participant End() error = %v", err)
	}
	// Ending twice is a no-op.
	if err := env.relationships.End(t.Context(), relationship.ID, env.student.ID); err != nil {
		t.Errorf("repeated End() error = %v, want nil", err)
	}
}

func TestGetRelationship_HiddenFromStrangers(t *testing.T) {
	env := newTestEnv()

	relationship, err := env.relationships.CreateOrGet(t.Context(), env.coach.ID, env.student.ID)
	if err != nil {
		t.Fatalf("CreateOrGet() error = %v", err)
	}

	if _, err := env.relationships.Get(t.Context(), relationship.ID, env.coach.ID); err != nil {
		t.Errorf("participant Get() error = %v", err)
	}
	if _, err := env.relationships.Get(t.Context(), relationship.ID, primitive.NewObjectID()); !errors.Is(err, ErrRelationshipNotFound) {
		t.Errorf("stranger Get() error = %v, want ErrRelationshipNotFound", err)
	}
}
