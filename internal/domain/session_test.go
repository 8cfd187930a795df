package domain

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSessionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from SessionStatus
		to   SessionStatus
		want bool
	}{
		{name: "draft to active", from: SessionDraft, to: SessionActive, want: true},
		{name: "active to completed", from: SessionActive, to: SessionCompleted, want: true},
		{name: "active to archived", from: SessionActive, to: SessionArchived, want: true},
		{name: "completed to archived", from: SessionCompleted, to: SessionArchived, want: true},
		{name: "draft to completed skips active", from: SessionDraft, to: SessionCompleted, want: false},
		{name: "draft to archived", from: SessionDraft, to: SessionArchived, want: false},
		{name: "completed back to active", from: SessionCompleted, to: SessionActive, want: false},
		{name: "active back to draft", from: SessionActive, to: SessionDraft, want: false},
		{name: "archived is terminal", from: SessionArchived, to: SessionActive, want: false},
		{name: "self transition", from: SessionActive, to: SessionActive, want: false},
		{name: "unknown target", from: SessionActive, to: SessionStatus("paused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidSessionStatus(t *testing.T) {
	for _, status := range []SessionStatus{SessionDraft, SessionActive, SessionCompleted, SessionArchived} {
		if !ValidSessionStatus(status) {
			t.Errorf("ValidSessionStatus(%s) = false, want true", status)
		}
	}
	if ValidSessionStatus(SessionStatus("paused")) {
		t.Error("ValidSessionStatus(paused) = true, want false")
	}
}

func TestSession_HasParticipant(t *testing.T) {
	coachID := primitive.NewObjectID()
	studentID := primitive.NewObjectID()
	session := &Session{CoachID: coachID, StudentID: studentID}

	if !session.HasParticipant(coachID) {
		t.Error("HasParticipant(coach) = false, want true")
	}
	if !session.HasParticipant(studentID) {
		t.Error("HasParticipant(student) = false, want true")
	}
	if session.HasParticipant(primitive.NewObjectID()) {
		t.Error("HasParticipant(stranger) = true, want false")
	}
}
