package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionProgress records a measured metric for the student within a
// session (e.g. swing speed, consistency score). Either participant may
// record one; RecordedBy keeps the distinction.
type SessionProgress struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	StudentID   primitive.ObjectID `bson:"studentId" json:"studentId"`
	MetricType  string             `bson:"metricType" json:"metricType"`
	MetricValue float64            `bson:"metricValue" json:"metricValue"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	RecordedAt  time.Time          `bson:"recordedAt" json:"recordedAt"`
	RecordedBy  primitive.ObjectID `bson:"recordedBy" json:"recordedBy"`
}
