package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType names the state change that produced a notification.
type NotificationType string

const (
	NotifyRequestReceived NotificationType = "request_received"
	NotifyRequestAccepted NotificationType = "request_accepted"
	NotifyRequestDeclined NotificationType = "request_declined"
	NotifySessionStatus   NotificationType = "session_status_changed"
	NotifyNewComment      NotificationType = "new_comment"
	NotifyNewAnnotation   NotificationType = "new_annotation"
	NotifyNewNote         NotificationType = "new_note"
	NotifyVideoAttached   NotificationType = "video_attached"
)

// Notification is the durable record handed to the delivery collaborator.
// This service only guarantees the record exists; in-app lists, push and
// email delivery are someone else's problem.
type Notification struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID  `bson:"userId" json:"userId"`
	Type             NotificationType    `bson:"type" json:"type"`
	Title            string              `bson:"title" json:"title"`
	Message          string              `bson:"message" json:"message"`
	RelatedSessionID *primitive.ObjectID `bson:"relatedSessionId,omitempty" json:"relatedSessionId,omitempty"`
	RelatedRequestID *primitive.ObjectID `bson:"relatedRequestId,omitempty" json:"relatedRequestId,omitempty"`
	IsRead           bool                `bson:"isRead" json:"isRead"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	ReadAt           *time.Time          `bson:"readAt,omitempty" json:"readAt,omitempty"`
}
