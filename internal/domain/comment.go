package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionComment is a discussion entry in a session, optionally anchored
// to a video timestamp and optionally threaded under a parent comment.
// A private comment is visible only to its author regardless of where it
// sits in a thread.
type SessionComment struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SessionID       primitive.ObjectID  `bson:"sessionId" json:"sessionId"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	ParentCommentID *primitive.ObjectID `bson:"parentCommentId,omitempty" json:"parentCommentId,omitempty"`
	CommentText     string              `bson:"commentText" json:"commentText"`
	VideoTimestamp  *float64            `bson:"videoTimestamp,omitempty" json:"videoTimestamp,omitempty"` // seconds
	IsPrivate       bool                `bson:"isPrivate" json:"isPrivate"`
	Edited          bool                `bson:"edited" json:"edited"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// VisibleTo reports whether requester may see this comment. Visibility is
// recomputed on every read path; it is never cached or stored.
func (c *SessionComment) VisibleTo(requester primitive.ObjectID) bool {
	return !c.IsPrivate || c.UserID == requester
}
