package service

import (
	"coachvision/analysis-app/internal/domain"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateSession_RequiresActiveRelationship(t *testing.T) {
	env := newTestEnv()

	_, err := env.sessions.Create(t.Context(), env.coach.ID, env.coach.ID, env.student.ID, "Serve review", "", "analysis", nil, false)
	if !errors.Is(err, ErrNoActiveRelationship) {
		t.Fatalf("Create() without relationship error = %v, want ErrNoActiveRelationship", err)
	}

	// Opting in creates the relationship on the fly.
	session, err := env.sessions.Create(t.Context(), env.coach.ID, env.coach.ID, env.student.ID, "Serve review", "", "analysis", nil, true)
	if err != nil {
		t.Fatalf("Create() with ensureRelationship error = %v", err)
	}
	if session.Status != domain.SessionDraft {
		t.Errorf("new session status = %s, want draft", session.Status)
	}
	if _, err := env.relationshipRepo.GetByPair(t.Context(), env.coach.ID, env.student.ID); err != nil {
		t.Errorf("relationship not created: %v", err)
	}

	// Second session for the same pair reuses it.
	if _, err := env.sessions.Create(t.Context(), env.student.ID, env.coach.ID, env.student.ID, "Footwork", "", "analysis", nil, false); err != nil {
		t.Errorf("Create() with existing relationship error = %v", err)
	}
}

func TestCreateSession_CallerMustParticipate(t *testing.T) {
	env := newTestEnv()

	_, err := env.sessions.Create(t.Context(), primitive.NewObjectID(), env.coach.ID, env.student.ID, "Serve review", "", "", nil, true)
	if !errors.Is(err, ErrNoActiveRelationship) {
		t.Errorf("Create() by stranger error = %v, want ErrNoActiveRelationship", err)
	}
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	env := newTestEnv()
	session := env.seedSession(t, domain.SessionDraft)

	active, err := env.sessions.UpdateStatus(t.Context(), session.ID, env.coach.ID, domain.SessionActive)
	if err != nil {
		t.Fatalf("draft -> active error = %v", err)
	}
	if active.Status != domain.SessionActive {
		t.Errorf("status = %s, want active", active.Status)
	}

	completed, err := env.sessions.UpdateStatus(t.Context(), session.ID, env.student.ID, domain.SessionCompleted)
	if err != nil {
		t.Fatalf("active -> completed error = %v", err)
	}
	if completed.CompletedAt == nil {
		t.Error("completedAt not set on completion")
	}

	// No backward moves.
	if _, err := env.sessions.UpdateStatus(t.Context(), session.ID, env.coach.ID, domain.SessionActive); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("completed -> active error = %v, want ErrInvalidTransition", err)
	}

	if _, err := env.sessions.UpdateStatus(t.Context(), session.ID, env.coach.ID, domain.SessionArchived); err != nil {
		t.Fatalf("completed -> archived error = %v", err)
	}
}

func TestUpdateStatus_Validation(t *testing.T) {
	env := newTestEnv()
	session := env.seedSession(t, domain.SessionDraft)

	if _, err := env.sessions.UpdateStatus(t.Context(), session.ID, env.coach.ID, domain.SessionStatus("paused")); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("unknown status error = %v, want ErrInvalidStatus", err)
	}
	if _, err := env.sessions.UpdateStatus(t.Context(), session.ID, env.coach.ID, domain.SessionCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("draft -> completed error = %v, want ErrInvalidTransition", err)
	}
	// Non-participants cannot even see the session.
	if _, err := env.sessions.UpdateStatus(t.Context(), session.ID, primitive.NewObjectID(), domain.SessionActive); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stranger error = %v, want ErrSessionNotFound", err)
	}
}

func TestGetSession_DecoratesAndResolvesPlayback(t *testing.T) {
	env := newTestEnv()
	session := env.seedSession(t, domain.SessionActive)
	env.seedVideo(t, session.ID, nil)

	detail, err := env.sessions.Get(t.Context(), session.ID, env.coach.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if detail.Coach == nil || detail.Coach.DisplayName != env.coach.DisplayName {
		t.Error("coach profile not decorated")
	}
	if detail.Student == nil || detail.Student.DisplayName != env.student.DisplayName {
		t.Error("student profile not decorated")
	}
	if len(detail.Videos) != 1 {
		t.Fatalf("video count = %d, want 1", len(detail.Videos))
	}
	if !detail.Videos[0].Playable || detail.Videos[0].PlaybackURL == "" {
		t.Error("video should be playable with a resolved URL")
	}
}

func TestGetSession_DegradesWhenStorageDown(t *testing.T) {
	env := newTestEnv()
	session := env.seedSession(t, domain.SessionActive)
	env.seedVideo(t, session.ID, nil)
	env.storage.fail = true

	detail, err := env.sessions.Get(t.Context(), session.ID, env.student.ID)
	if err != nil {
		t.Fatalf("Get() error = %v, want degraded success", err)
	}
	if len(detail.Videos) != 1 {
		t.Fatalf("video count = %d, want 1", len(detail.Videos))
	}
	if detail.Videos[0].Playable {
		t.Error("video should be marked unplayable when storage is down")
	}
}

func TestGetSession_NonParticipant(t *testing.T) {
	env := newTestEnv()
	session := env.seedSession(t, domain.SessionActive)

	if _, err := env.sessions.Get(t.Context(), session.ID, primitive.NewObjectID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stranger Get() error = %v, want ErrSessionNotFound", err)
	}
}

func TestRecordProgress(t *testing.T) {
	env := newTestEnv()
	session := env.seedSession(t, domain.SessionActive)

	progress, err := env.sessions.RecordProgress(t.Context(), session.ID, env.coach.ID, "swing speed", 104.5, "up from 98")
	if err != nil {
		t.Fatalf("RecordProgress() error = %v", err)
	}
	if progress.StudentID != env.student.ID {
		t.Errorf("progress studentId = %s, want the session's student", progress.StudentID.Hex())
	}
	if progress.RecordedBy != env.coach.ID {
		t.Errorf("recordedBy = %s, want the caller", progress.RecordedBy.Hex())
	}

	entries, err := env.sessions.ListProgress(t.Context(), session.ID, env.student.ID)
	if err != nil {
		t.Fatalf("ListProgress() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("progress count = %d, want 1", len(entries))
	}

	if _, err := env.sessions.RecordProgress(t.Context(), session.ID, primitive.NewObjectID(), "swing speed", 1, ""); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stranger RecordProgress() error = %v, want ErrSessionNotFound", err)
	}
}
