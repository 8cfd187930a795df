package repository

import (
	"coachvision/analysis-app/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key") // unique-index conflict (relationship pair, pending request pair)
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository reads profile records for role resolution and response
// decoration. This service never writes users.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
}

// RelationshipRepository persists coach/student permission records.
type RelationshipRepository interface {
	// Upsert returns the existing relationship for the pair, or atomically
	// creates an active one. Concurrent calls for the same pair must
	// resolve to a single row via the unique (coachId, studentId) index.
	Upsert(ctx context.Context, coachID, studentID primitive.ObjectID) (*domain.Relationship, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Relationship, error)
	GetByPair(ctx context.Context, coachID, studentID primitive.ObjectID) (*domain.Relationship, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, role domain.Role, status domain.RelationshipStatus) ([]domain.Relationship, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.RelationshipStatus) error
}

// RequestRepository persists connection/analysis requests.
type RequestRepository interface {
	// Create fails with ErrDuplicate when a pending request for the same
	// ordered (senderId, receiverId) pair already exists.
	Create(ctx context.Context, req *domain.Request) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Request, error)
	// FindPendingBetween returns pending requests in either direction
	// between the two users.
	FindPendingBetween(ctx context.Context, a, b primitive.ObjectID) ([]domain.Request, error)
	ListBySender(ctx context.Context, senderID primitive.ObjectID) ([]domain.Request, error)
	ListByReceiver(ctx context.Context, receiverID primitive.ObjectID) ([]domain.Request, error)
	// MarkResponded moves a still-pending request to a terminal status,
	// optionally binding the session created on acceptance. Returns
	// ErrNotFound when the request is missing or no longer pending.
	MarkResponded(ctx context.Context, id primitive.ObjectID, status domain.RequestStatus, sessionID *primitive.ObjectID) error
}

// SessionRepository persists analysis sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, role domain.Role) ([]domain.Session, error)
	// UpdateStatusFrom transitions id from the expected current status to
	// the new one; the filter on the current status makes concurrent
	// transitions race-safe. Returns ErrNotFound when nothing matched.
	UpdateStatusFrom(ctx context.Context, id primitive.ObjectID, from, to domain.SessionStatus, completedAt *time.Time) error
}

// VideoRepository persists session video attachments.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.SessionVideo) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionVideo, error)
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionVideo, error)
}

// CommentRepository persists session comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.SessionComment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionComment, error)
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionComment, error)
	// ListByTimestampRange returns comments anchored within [min, max],
	// insertion-ordered.
	ListByTimestampRange(ctx context.Context, sessionID primitive.ObjectID, min, max float64) ([]domain.SessionComment, error)
	UpdateText(ctx context.Context, id primitive.ObjectID, text string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AnnotationRepository persists video annotations.
type AnnotationRepository interface {
	Create(ctx context.Context, annotation *domain.SessionAnnotation) (primitive.ObjectID, error)
	ListBySessionVideo(ctx context.Context, sessionID, videoID primitive.ObjectID) ([]domain.SessionAnnotation, error)
	ListByTimestampRange(ctx context.Context, sessionID, videoID primitive.ObjectID, min, max float64) ([]domain.SessionAnnotation, error)
}

// NoteRepository persists session notes.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.SessionNote) (primitive.ObjectID, error)
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionNote, error)
}

// ProgressRepository persists session progress metrics.
type ProgressRepository interface {
	Create(ctx context.Context, progress *domain.SessionProgress) (primitive.ObjectID, error)
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionProgress, error)
}

// NotificationRepository persists notification records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
}
