package api

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/service"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Shared response DTOs ---
// IDs cross the wire as hex strings; raw ObjectIDs stay internal.

type UserResponse struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	AvatarRef   string      `json:"avatarRef,omitempty"`
	Role        domain.Role `json:"role"`
}

func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID.Hex(),
		DisplayName: user.DisplayName,
		AvatarRef:   user.AvatarRef,
		Role:        user.Role,
	}
}

type RelationshipResponse struct {
	ID         string                    `json:"id"`
	CoachID    string                    `json:"coachId"`
	StudentID  string                    `json:"studentId"`
	Status     domain.RelationshipStatus `json:"status"`
	Notes      string                    `json:"notes,omitempty"`
	CreatedAt  time.Time                 `json:"createdAt"`
	AcceptedAt *time.Time                `json:"acceptedAt,omitempty"`
}

func MapRelationshipToResponse(rel *domain.Relationship) RelationshipResponse {
	return RelationshipResponse{
		ID:         rel.ID.Hex(),
		CoachID:    rel.CoachID.Hex(),
		StudentID:  rel.StudentID.Hex(),
		Status:     rel.Status,
		Notes:      rel.Notes,
		CreatedAt:  rel.CreatedAt,
		AcceptedAt: rel.AcceptedAt,
	}
}

type RequestResponse struct {
	ID          string                 `json:"id"`
	Type        domain.RequestType     `json:"type"`
	SenderID    string                 `json:"senderId"`
	ReceiverID  string                 `json:"receiverId"`
	CoachID     string                 `json:"coachId"`
	StudentID   string                 `json:"studentId"`
	Message     string                 `json:"message,omitempty"`
	Status      domain.RequestStatus   `json:"status"`
	Priority    domain.RequestPriority `json:"priority,omitempty"`
	VideoID     string                 `json:"videoId,omitempty"`
	SessionID   string                 `json:"sessionId,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	RespondedAt *time.Time             `json:"respondedAt,omitempty"`
}

func MapRequestToResponse(req *domain.Request) RequestResponse {
	resp := RequestResponse{
		ID:          req.ID.Hex(),
		Type:        req.Type,
		SenderID:    req.SenderID.Hex(),
		ReceiverID:  req.ReceiverID.Hex(),
		CoachID:     req.CoachID.Hex(),
		StudentID:   req.StudentID.Hex(),
		Message:     req.Message,
		Status:      req.Status,
		Priority:    req.Priority,
		CreatedAt:   req.CreatedAt,
		RespondedAt: req.RespondedAt,
	}
	if req.VideoID != nil {
		resp.VideoID = req.VideoID.Hex()
	}
	if req.SessionID != nil {
		resp.SessionID = req.SessionID.Hex()
	}
	return resp
}

type SessionResponse struct {
	ID           string               `json:"id"`
	CoachID      string               `json:"coachId"`
	StudentID    string               `json:"studentId"`
	Title        string               `json:"title"`
	Description  string               `json:"description,omitempty"`
	Status       domain.SessionStatus `json:"status"`
	SessionType  string               `json:"sessionType,omitempty"`
	ScheduledFor *time.Time           `json:"scheduledFor,omitempty"`
	CompletedAt  *time.Time           `json:"completedAt,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
}

func MapSessionToResponse(session *domain.Session) SessionResponse {
	return SessionResponse{
		ID:           session.ID.Hex(),
		CoachID:      session.CoachID.Hex(),
		StudentID:    session.StudentID.Hex(),
		Title:        session.Title,
		Description:  session.Description,
		Status:       session.Status,
		SessionType:  session.SessionType,
		ScheduledFor: session.ScheduledFor,
		CompletedAt:  session.CompletedAt,
		CreatedAt:    session.CreatedAt,
	}
}

// VideoResponse never exposes the raw storage ref; only the resolved
// playback URL (when available) crosses the wire.
type VideoResponse struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"sessionId"`
	Title           string    `json:"title,omitempty"`
	Description     string    `json:"description,omitempty"`
	UploadedBy      string    `json:"uploadedBy"`
	DurationSeconds *float64  `json:"durationSeconds,omitempty"`
	UploadedAt      time.Time `json:"uploadedAt"`
	PlaybackURL     string    `json:"playbackUrl,omitempty"`
	Playable        bool      `json:"playable"`
}

func MapVideoToResponse(video *domain.SessionVideo, playbackURL string, playable bool) VideoResponse {
	return VideoResponse{
		ID:              video.ID.Hex(),
		SessionID:       video.SessionID.Hex(),
		Title:           video.Title,
		Description:     video.Description,
		UploadedBy:      video.UploadedBy.Hex(),
		DurationSeconds: video.DurationSeconds,
		UploadedAt:      video.UploadedAt,
		PlaybackURL:     playbackURL,
		Playable:        playable,
	}
}

// SessionDetailResponse is the assembled session view with decorated
// participants and playback-resolved videos.
type SessionDetailResponse struct {
	SessionResponse
	Coach   *UserResponse   `json:"coach,omitempty"`
	Student *UserResponse   `json:"student,omitempty"`
	Videos  []VideoResponse `json:"videos"`
}

func MapSessionDetailToResponse(detail *service.SessionDetail) SessionDetailResponse {
	resp := SessionDetailResponse{
		SessionResponse: MapSessionToResponse(detail.Session),
		Videos:          make([]VideoResponse, 0, len(detail.Videos)),
	}
	if detail.Coach != nil {
		coach := MapUserToResponse(detail.Coach)
		resp.Coach = &coach
	}
	if detail.Student != nil {
		student := MapUserToResponse(detail.Student)
		resp.Student = &student
	}
	for i := range detail.Videos {
		v := &detail.Videos[i]
		resp.Videos = append(resp.Videos, MapVideoToResponse(&v.Video, v.PlaybackURL, v.Playable))
	}
	return resp
}

type CommentResponse struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"sessionId"`
	UserID          string    `json:"userId"`
	ParentCommentID string    `json:"parentCommentId,omitempty"`
	CommentText     string    `json:"commentText"`
	VideoTimestamp  *float64  `json:"videoTimestamp,omitempty"`
	IsPrivate       bool      `json:"isPrivate"`
	Edited          bool      `json:"edited"`
	CreatedAt       time.Time `json:"createdAt"`
}

func MapCommentToResponse(comment *domain.SessionComment) CommentResponse {
	resp := CommentResponse{
		ID:             comment.ID.Hex(),
		SessionID:      comment.SessionID.Hex(),
		UserID:         comment.UserID.Hex(),
		CommentText:    comment.CommentText,
		VideoTimestamp: comment.VideoTimestamp,
		IsPrivate:      comment.IsPrivate,
		Edited:         comment.Edited,
		CreatedAt:      comment.CreatedAt,
	}
	if comment.ParentCommentID != nil {
		resp.ParentCommentID = comment.ParentCommentID.Hex()
	}
	return resp
}

func mapCommentsToResponse(comments []domain.SessionComment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, MapCommentToResponse(&comments[i]))
	}
	return out
}

type AnnotationResponse struct {
	ID             string                `json:"id"`
	SessionID      string                `json:"sessionId"`
	VideoID        string                `json:"videoId"`
	UserID         string                `json:"userId"`
	Type           domain.AnnotationType `json:"type"`
	Coordinates    domain.Coordinates    `json:"coordinates"`
	Color          string                `json:"color"`
	Label          string                `json:"label,omitempty"`
	VideoTimestamp float64               `json:"videoTimestamp"`
	FrameNumber    *int                  `json:"frameNumber,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
}

func MapAnnotationToResponse(annotation *domain.SessionAnnotation) AnnotationResponse {
	return AnnotationResponse{
		ID:             annotation.ID.Hex(),
		SessionID:      annotation.SessionID.Hex(),
		VideoID:        annotation.VideoID.Hex(),
		UserID:         annotation.UserID.Hex(),
		Type:           annotation.Type,
		Coordinates:    annotation.Coordinates,
		Color:          annotation.Color,
		Label:          annotation.Label,
		VideoTimestamp: annotation.VideoTimestamp,
		FrameNumber:    annotation.FrameNumber,
		CreatedAt:      annotation.CreatedAt,
	}
}

func mapAnnotationsToResponse(annotations []domain.SessionAnnotation) []AnnotationResponse {
	out := make([]AnnotationResponse, 0, len(annotations))
	for i := range annotations {
		out = append(out, MapAnnotationToResponse(&annotations[i]))
	}
	return out
}

type NoteResponse struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
	NoteType  domain.NoteType `json:"noteType"`
	NoteText  string          `json:"noteText"`
	IsShared  bool            `json:"isShared"`
	CreatedAt time.Time       `json:"createdAt"`
}

func MapNoteToResponse(note *domain.SessionNote) NoteResponse {
	return NoteResponse{
		ID:        note.ID.Hex(),
		SessionID: note.SessionID.Hex(),
		UserID:    note.UserID.Hex(),
		NoteType:  note.NoteType,
		NoteText:  note.NoteText,
		IsShared:  note.IsShared,
		CreatedAt: note.CreatedAt,
	}
}

type ProgressResponse struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	StudentID   string    `json:"studentId"`
	MetricType  string    `json:"metricType"`
	MetricValue float64   `json:"metricValue"`
	Notes       string    `json:"notes,omitempty"`
	RecordedAt  time.Time `json:"recordedAt"`
	RecordedBy  string    `json:"recordedBy"`
}

func MapProgressToResponse(progress *domain.SessionProgress) ProgressResponse {
	return ProgressResponse{
		ID:          progress.ID.Hex(),
		SessionID:   progress.SessionID.Hex(),
		StudentID:   progress.StudentID.Hex(),
		MetricType:  progress.MetricType,
		MetricValue: progress.MetricValue,
		Notes:       progress.Notes,
		RecordedAt:  progress.RecordedAt,
		RecordedBy:  progress.RecordedBy.Hex(),
	}
}

type NotificationResponse struct {
	ID               string                  `json:"id"`
	Type             domain.NotificationType `json:"type"`
	Title            string                  `json:"title"`
	Message          string                  `json:"message"`
	RelatedSessionID string                  `json:"relatedSessionId,omitempty"`
	RelatedRequestID string                  `json:"relatedRequestId,omitempty"`
	IsRead           bool                    `json:"isRead"`
	CreatedAt        time.Time               `json:"createdAt"`
	ReadAt           *time.Time              `json:"readAt,omitempty"`
}

func MapNotificationToResponse(notification *domain.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        notification.ID.Hex(),
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		IsRead:    notification.IsRead,
		CreatedAt: notification.CreatedAt,
		ReadAt:    notification.ReadAt,
	}
	if notification.RelatedSessionID != nil {
		resp.RelatedSessionID = notification.RelatedSessionID.Hex()
	}
	if notification.RelatedRequestID != nil {
		resp.RelatedRequestID = notification.RelatedRequestID.Hex()
	}
	return resp
}

// parseOptionalObjectID converts an optional hex string from a request
// body into an ObjectID pointer.
func parseOptionalObjectID(hex string) (*primitive.ObjectID, bool) {
	if hex == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, false
	}
	return &id, true
}
