package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for the analysis session lifecycle
type SessionStatus string

const (
	SessionDraft     SessionStatus = "draft"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionArchived  SessionStatus = "archived"
)

// sessionTransitions is the full forward-only state machine:
// draft -> active -> completed, with archived reachable from active or
// completed. Nothing moves backward.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionDraft:     {SessionActive},
	SessionActive:    {SessionCompleted, SessionArchived},
	SessionCompleted: {SessionArchived},
	SessionArchived:  {},
}

// CanTransitionTo reports whether next is directly reachable from s.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidSessionStatus reports whether the string names a known status.
func ValidSessionStatus(s SessionStatus) bool {
	_, ok := sessionTransitions[s]
	return ok
}

// Session is a bounded collaboration unit between exactly one coach and
// one student. Only those two identities may read or write the session
// and its children (videos, comments, annotations, notes, progress).
type Session struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID      primitive.ObjectID `bson:"coachId" json:"coachId"`
	StudentID    primitive.ObjectID `bson:"studentId" json:"studentId"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Status       SessionStatus      `bson:"status" json:"status"`
	SessionType  string             `bson:"sessionType,omitempty" json:"sessionType,omitempty"`
	ScheduledFor *time.Time         `bson:"scheduledFor,omitempty" json:"scheduledFor,omitempty"`
	CompletedAt  *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether userID is the session's coach or student.
func (s *Session) HasParticipant(userID primitive.ObjectID) bool {
	return s.CoachID == userID || s.StudentID == userID
}
