package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnnotationType discriminates the shape payload carried in Coordinates.
type AnnotationType string

const (
	AnnotationLine      AnnotationType = "line"
	AnnotationArrow     AnnotationType = "arrow"
	AnnotationCircle    AnnotationType = "circle"
	AnnotationRectangle AnnotationType = "rectangle"
	AnnotationText      AnnotationType = "text"
	AnnotationFreehand  AnnotationType = "freehand"
)

// Geometry validation errors
var (
	ErrUnknownAnnotationType = errors.New("unknown annotation type")
	ErrInvalidGeometry       = errors.New("coordinates missing required fields for annotation type")
)

// Point is a single coordinate in normalized video space.
type Point struct {
	X float64 `bson:"x" json:"x"`
	Y float64 `bson:"y" json:"y"`
}

// Coordinates is the shape-specific payload of an annotation, modeled as
// a tagged variant: one struct whose populated fields depend on the
// AnnotationType discriminant. Validate enforces the per-tag requirements.
type Coordinates struct {
	// line, arrow: start and end points
	X1 *float64 `bson:"x1,omitempty" json:"x1,omitempty"`
	Y1 *float64 `bson:"y1,omitempty" json:"y1,omitempty"`
	X2 *float64 `bson:"x2,omitempty" json:"x2,omitempty"`
	Y2 *float64 `bson:"y2,omitempty" json:"y2,omitempty"`

	// circle: center and radius
	CX     *float64 `bson:"cx,omitempty" json:"cx,omitempty"`
	CY     *float64 `bson:"cy,omitempty" json:"cy,omitempty"`
	Radius *float64 `bson:"radius,omitempty" json:"radius,omitempty"`

	// rectangle, text: origin/anchor plus extent for rectangles
	X      *float64 `bson:"x,omitempty" json:"x,omitempty"`
	Y      *float64 `bson:"y,omitempty" json:"y,omitempty"`
	Width  *float64 `bson:"width,omitempty" json:"width,omitempty"`
	Height *float64 `bson:"height,omitempty" json:"height,omitempty"`

	// freehand: the sampled stroke
	Points []Point `bson:"points,omitempty" json:"points,omitempty"`
}

// Validate checks the coordinate payload against the annotation type.
func (c Coordinates) Validate(t AnnotationType) error {
	switch t {
	case AnnotationLine, AnnotationArrow:
		if c.X1 == nil || c.Y1 == nil || c.X2 == nil || c.Y2 == nil {
			return ErrInvalidGeometry
		}
	case AnnotationCircle:
		if c.CX == nil || c.CY == nil || c.Radius == nil || *c.Radius < 0 {
			return ErrInvalidGeometry
		}
	case AnnotationRectangle:
		if c.X == nil || c.Y == nil || c.Width == nil || c.Height == nil ||
			*c.Width < 0 || *c.Height < 0 {
			return ErrInvalidGeometry
		}
	case AnnotationText:
		if c.X == nil || c.Y == nil {
			return ErrInvalidGeometry
		}
	case AnnotationFreehand:
		if len(c.Points) < 2 {
			return ErrInvalidGeometry
		}
	default:
		return ErrUnknownAnnotationType
	}
	return nil
}

// SessionAnnotation is a drawn overlay on a specific video in a session,
// always anchored to a video timestamp.
type SessionAnnotation struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID      primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	VideoID        primitive.ObjectID `bson:"videoId" json:"videoId"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Type           AnnotationType     `bson:"type" json:"type"`
	Coordinates    Coordinates        `bson:"coordinates" json:"coordinates"`
	Color          string             `bson:"color" json:"color"`
	Label          string             `bson:"label,omitempty" json:"label,omitempty"`
	VideoTimestamp float64            `bson:"videoTimestamp" json:"videoTimestamp"` // seconds
	FrameNumber    *int               `bson:"frameNumber,omitempty" json:"frameNumber,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
