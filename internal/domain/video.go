package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionVideo associates an uploaded (or externally hosted) video with a
// session. VideoRef is either an object-store key or a full external URL;
// the service treats store keys as opaque strings.
type SessionVideo struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID       primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	VideoRef        string             `bson:"videoRef" json:"-"` // internal; playback goes through resolved URLs
	Title           string             `bson:"title,omitempty" json:"title,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	UploadedBy      primitive.ObjectID `bson:"uploadedBy" json:"uploadedBy"`
	DurationSeconds *float64           `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	UploadedAt      time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}

// IsExternalRef reports whether VideoRef is an externally hosted URL that
// can be handed to players unchanged, as opposed to an object-store key
// that needs a presigned URL.
func (v *SessionVideo) IsExternalRef() bool {
	return strings.HasPrefix(v.VideoRef, "http://") || strings.HasPrefix(v.VideoRef, "https://")
}

// WithinDuration reports whether t (seconds) falls inside the video,
// when the duration is known. Unknown durations accept any t >= 0.
func (v *SessionVideo) WithinDuration(t float64) bool {
	if t < 0 {
		return false
	}
	if v.DurationSeconds == nil {
		return true
	}
	return t <= *v.DurationSeconds
}
