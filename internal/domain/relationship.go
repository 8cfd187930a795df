package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelationshipStatus type for the coach/student relationship lifecycle
type RelationshipStatus string

const (
	RelationshipPending RelationshipStatus = "pending"
	RelationshipActive  RelationshipStatus = "active"
	RelationshipEnded   RelationshipStatus = "ended"
)

// Relationship is the durable permission record that a given coach and
// student may collaborate. Unique per (coachId, studentId) pair; the
// uniqueness is enforced by an index so concurrent creation races resolve
// to the same row.
type Relationship struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID    primitive.ObjectID `bson:"coachId" json:"coachId"`
	StudentID  primitive.ObjectID `bson:"studentId" json:"studentId"`
	Status     RelationshipStatus `bson:"status" json:"status"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	AcceptedAt *time.Time         `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
}

// HasParticipant reports whether userID is one of the two parties.
func (r *Relationship) HasParticipant(userID primitive.ObjectID) bool {
	return r.CoachID == userID || r.StudentID == userID
}
