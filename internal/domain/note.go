package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NoteType categorizes session notes.
type NoteType string

const (
	NoteGeneral   NoteType = "general"
	NoteTechnique NoteType = "technique"
	NoteTactical  NoteType = "tactical"
	NotePhysical  NoteType = "physical"
	NoteMental    NoteType = "mental"
	NoteGoals     NoteType = "goals"
)

// ValidNoteType reports whether t names a known note category.
func ValidNoteType(t NoteType) bool {
	switch t {
	case NoteGeneral, NoteTechnique, NoteTactical, NotePhysical, NoteMental, NoteGoals:
		return true
	}
	return false
}

// SessionNote is a free-form note attached to a session. Notes are
// private by default; a shared note is visible to both participants.
type SessionNote struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	NoteType  NoteType           `bson:"noteType" json:"noteType"`
	NoteText  string             `bson:"noteText" json:"noteText"`
	IsShared  bool               `bson:"isShared" json:"isShared"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// VisibleTo reports whether requester may see this note. Computed at read
// time on every path, never cached.
func (n *SessionNote) VisibleTo(requester primitive.ObjectID) bool {
	return n.IsShared || n.UserID == requester
}
