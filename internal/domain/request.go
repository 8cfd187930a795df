package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestType discriminates the two kinds of intake requests that share
// one collection and one state machine.
type RequestType string

const (
	RequestTypeConnection RequestType = "connection" // establishes a relationship
	RequestTypeAnalysis   RequestType = "analysis"   // establishes a session
)

// RequestStatus type for the request lifecycle.
// pending -> accepted | declined; accepted analysis requests may later
// move to completed when their session completes.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestDeclined  RequestStatus = "declined"
	RequestCompleted RequestStatus = "completed"
)

// RequestPriority for analysis requests. Purely informational ordering;
// it never gates a transition.
type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityNormal RequestPriority = "normal"
	PriorityHigh   RequestPriority = "high"
)

// Request is a connection or analysis request between two users.
// SenderID/ReceiverID drive authorization (only the receiver responds,
// only the sender cancels). CoachID/StudentID are resolved from the two
// users' roles at creation time so that acceptance can create the
// relationship or session without a second role lookup.
type Request struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Type       RequestType         `bson:"type" json:"type"`
	SenderID   primitive.ObjectID  `bson:"senderId" json:"senderId"`
	ReceiverID primitive.ObjectID  `bson:"receiverId" json:"receiverId"`
	CoachID    primitive.ObjectID  `bson:"coachId" json:"coachId"`
	StudentID  primitive.ObjectID  `bson:"studentId" json:"studentId"`
	Message    string              `bson:"message,omitempty" json:"message,omitempty"`
	Status     RequestStatus       `bson:"status" json:"status"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`

	// --- Analysis-specific ---
	VideoID     *primitive.ObjectID `bson:"videoId,omitempty" json:"videoId,omitempty"`
	Priority    RequestPriority     `bson:"priority,omitempty" json:"priority,omitempty"`
	SessionID   *primitive.ObjectID `bson:"sessionId,omitempty" json:"sessionId,omitempty"` // set iff accepted/completed
	RespondedAt *time.Time          `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
	CompletedAt *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// IsPending reports whether the request can still be responded to or
// cancelled.
func (r *Request) IsPending() bool {
	return r.Status == RequestPending
}
