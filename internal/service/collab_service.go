package service

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/repository"
	"coachvision/analysis-app/internal/security"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// anchorTolerance widens timestamp queries so feedback lands even when
// the player reports a slightly different position than the author saw.
const anchorTolerance = 0.5 // seconds

// TimelineSlice is everything anchored near one playback position:
// comments (visibility-filtered) and annotations for the queried video.
type TimelineSlice struct {
	Timestamp   float64                    `json:"timestamp"`
	Comments    []domain.SessionComment    `json:"comments"`
	Annotations []domain.SessionAnnotation `json:"annotations"`
}

// CollabService is the annotation and discussion engine: comments,
// drawn annotations, notes, and the timestamp-anchored timeline query.
// Every operation re-checks session participation, and comment/note
// visibility is computed per read.
type CollabService interface {
	AddComment(ctx context.Context, sessionID, userID primitive.ObjectID, text string, videoTimestamp *float64, parentCommentID *primitive.ObjectID, isPrivate bool) (*domain.SessionComment, error)
	EditComment(ctx context.Context, commentID, callerID primitive.ObjectID, text string) (*domain.SessionComment, error)
	DeleteComment(ctx context.Context, commentID, callerID primitive.ObjectID) error
	ListComments(ctx context.Context, sessionID, callerID primitive.ObjectID) ([]domain.SessionComment, error)

	AddAnnotation(ctx context.Context, sessionID, videoID, userID primitive.ObjectID, annotationType domain.AnnotationType, coords domain.Coordinates, color, label string, videoTimestamp float64, frameNumber *int) (*domain.SessionAnnotation, error)
	ListAnnotations(ctx context.Context, sessionID, videoID, callerID primitive.ObjectID) ([]domain.SessionAnnotation, error)

	AddNote(ctx context.Context, sessionID, userID primitive.ObjectID, noteType domain.NoteType, text string, isShared bool) (*domain.SessionNote, error)
	ListNotes(ctx context.Context, sessionID, callerID primitive.ObjectID) ([]domain.SessionNote, error)

	// QueryAtTimestamp returns comments and annotations anchored within
	// half a second of t on the given video. Pure read; nothing mutates.
	QueryAtTimestamp(ctx context.Context, sessionID, videoID, callerID primitive.ObjectID, t float64) (*TimelineSlice, error)
}

type collabService struct {
	commentRepo    repository.CommentRepository
	annotationRepo repository.AnnotationRepository
	noteRepo       repository.NoteRepository
	videoRepo      repository.VideoRepository
	sessionRepo    repository.SessionRepository
	notifications  NotificationService
}

// NewCollabService creates a new collaboration service.
func NewCollabService(
	commentRepo repository.CommentRepository,
	annotationRepo repository.AnnotationRepository,
	noteRepo repository.NoteRepository,
	videoRepo repository.VideoRepository,
	sessionRepo repository.SessionRepository,
	notifications NotificationService,
) CollabService {
	return &collabService{
		commentRepo:    commentRepo,
		annotationRepo: annotationRepo,
		noteRepo:       noteRepo,
		videoRepo:      videoRepo,
		sessionRepo:    sessionRepo,
		notifications:  notifications,
	}
}

func (s *collabService) loadSessionForParticipant(ctx context.Context, sessionID, callerID primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if !session.HasParticipant(callerID) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// loadVideoInSession resolves a video and verifies it hangs under the
// given session.
func (s *collabService) loadVideoInSession(ctx context.Context, sessionID, videoID primitive.ObjectID) (*domain.SessionVideo, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	if video.SessionID != sessionID {
		return nil, ErrVideoNotInSession
	}
	return video, nil
}

// === Comments ===

func (s *collabService) AddComment(ctx context.Context, sessionID, userID primitive.ObjectID, text string, videoTimestamp *float64, parentCommentID *primitive.ObjectID, isPrivate bool) (*domain.SessionComment, error) {
	session, err := s.loadSessionForParticipant(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	text = security.SanitizeText(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if videoTimestamp != nil && *videoTimestamp < 0 {
		return nil, ErrInvalidTimestamp
	}

	// A reply must thread under a comment of the same session.
	if parentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *parentCommentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentCommentInvalid
			}
			return nil, err
		}
		if parent.SessionID != sessionID {
			return nil, ErrParentCommentInvalid
		}
	}

	now := time.Now().UTC()
	comment := &domain.SessionComment{
		SessionID:       session.ID,
		UserID:          userID,
		ParentCommentID: parentCommentID,
		CommentText:     text,
		VideoTimestamp:  videoTimestamp,
		IsPrivate:       isPrivate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	id, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}
	comment.ID = id

	if !isPrivate {
		s.notifications.Notify(ctx, Event{
			UserID:           otherParticipant(session, userID),
			Type:             domain.NotifyNewComment,
			Title:            "New comment",
			Message:          "New comment in \"" + session.Title + "\"",
			RelatedSessionID: &session.ID,
		})
	}

	return comment, nil
}

// EditComment replaces a comment's text. Author only; the edit is
// flagged on the record.
func (s *collabService) EditComment(ctx context.Context, commentID, callerID primitive.ObjectID, text string) (*domain.SessionComment, error) {
	comment, err := s.loadCommentForCaller(ctx, commentID, callerID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != callerID {
		return nil, ErrCommentAccessDenied
	}

	text = security.SanitizeText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	if err := s.commentRepo.UpdateText(ctx, commentID, text); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	comment.CommentText = text
	comment.Edited = true
	return comment, nil
}

func (s *collabService) DeleteComment(ctx context.Context, commentID, callerID primitive.ObjectID) error {
	comment, err := s.loadCommentForCaller(ctx, commentID, callerID)
	if err != nil {
		return err
	}
	if comment.UserID != callerID {
		return ErrCommentAccessDenied
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}

// loadCommentForCaller fetches a comment the caller is allowed to know
// exists: they must participate in its session and, for private
// comments, be the author.
func (s *collabService) loadCommentForCaller(ctx context.Context, commentID, callerID primitive.ObjectID) (*domain.SessionComment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if _, err := s.loadSessionForParticipant(ctx, comment.SessionID, callerID); err != nil {
		return nil, ErrCommentNotFound
	}
	if !comment.VisibleTo(callerID) {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

func (s *collabService) ListComments(ctx context.Context, sessionID, callerID primitive.ObjectID) ([]domain.SessionComment, error) {
	if _, err := s.loadSessionForParticipant(ctx, sessionID, callerID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return filterVisibleComments(comments, callerID), nil
}

func filterVisibleComments(comments []domain.SessionComment, requester primitive.ObjectID) []domain.SessionComment {
	visible := make([]domain.SessionComment, 0, len(comments))
	for i := range comments {
		if comments[i].VisibleTo(requester) {
			visible = append(visible, comments[i])
		}
	}
	return visible
}

// === Annotations ===

func (s *collabService) AddAnnotation(ctx context.Context, sessionID, videoID, userID primitive.ObjectID, annotationType domain.AnnotationType, coords domain.Coordinates, color, label string, videoTimestamp float64, frameNumber *int) (*domain.SessionAnnotation, error) {
	session, err := s.loadSessionForParticipant(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	video, err := s.loadVideoInSession(ctx, sessionID, videoID)
	if err != nil {
		return nil, err
	}

	if err := coords.Validate(annotationType); err != nil {
		return nil, err
	}
	if !video.WithinDuration(videoTimestamp) {
		return nil, ErrInvalidTimestamp
	}
	if color == "" {
		color = "#ff0000"
	}

	annotation := &domain.SessionAnnotation{
		SessionID:      session.ID,
		VideoID:        video.ID,
		UserID:         userID,
		Type:           annotationType,
		Coordinates:    coords,
		Color:          color,
		Label:          security.SanitizeText(label),
		VideoTimestamp: videoTimestamp,
		FrameNumber:    frameNumber,
		CreatedAt:      time.Now().UTC(),
	}

	id, err := s.annotationRepo.Create(ctx, annotation)
	if err != nil {
		return nil, err
	}
	annotation.ID = id

	s.notifications.Notify(ctx, Event{
		UserID:           otherParticipant(session, userID),
		Type:             domain.NotifyNewAnnotation,
		Title:            "New annotation",
		Message:          "New " + string(annotationType) + " annotation in \"" + session.Title + "\"",
		RelatedSessionID: &session.ID,
	})

	return annotation, nil
}

func (s *collabService) ListAnnotations(ctx context.Context, sessionID, videoID, callerID primitive.ObjectID) ([]domain.SessionAnnotation, error) {
	if _, err := s.loadSessionForParticipant(ctx, sessionID, callerID); err != nil {
		return nil, err
	}
	if _, err := s.loadVideoInSession(ctx, sessionID, videoID); err != nil {
		return nil, err
	}
	return s.annotationRepo.ListBySessionVideo(ctx, sessionID, videoID)
}

// === Notes ===

func (s *collabService) AddNote(ctx context.Context, sessionID, userID primitive.ObjectID, noteType domain.NoteType, text string, isShared bool) (*domain.SessionNote, error) {
	session, err := s.loadSessionForParticipant(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	if noteType == "" {
		noteType = domain.NoteGeneral
	}
	if !domain.ValidNoteType(noteType) {
		return nil, ErrInvalidNoteType
	}

	text = security.SanitizeText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	now := time.Now().UTC()
	note := &domain.SessionNote{
		SessionID: session.ID,
		UserID:    userID,
		NoteType:  noteType,
		NoteText:  text,
		IsShared:  isShared,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.noteRepo.Create(ctx, note)
	if err != nil {
		return nil, err
	}
	note.ID = id

	if isShared {
		s.notifications.Notify(ctx, Event{
			UserID:           otherParticipant(session, userID),
			Type:             domain.NotifyNewNote,
			Title:            "New note",
			Message:          "A " + string(noteType) + " note was shared in \"" + session.Title + "\"",
			RelatedSessionID: &session.ID,
		})
	}

	return note, nil
}

func (s *collabService) ListNotes(ctx context.Context, sessionID, callerID primitive.ObjectID) ([]domain.SessionNote, error) {
	if _, err := s.loadSessionForParticipant(ctx, sessionID, callerID); err != nil {
		return nil, err
	}

	notes, err := s.noteRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.SessionNote, 0, len(notes))
	for i := range notes {
		if notes[i].VisibleTo(callerID) {
			visible = append(visible, notes[i])
		}
	}
	return visible, nil
}

// === Timeline query ===

func (s *collabService) QueryAtTimestamp(ctx context.Context, sessionID, videoID, callerID primitive.ObjectID, t float64) (*TimelineSlice, error) {
	if t < 0 {
		return nil, ErrInvalidTimestamp
	}
	if _, err := s.loadSessionForParticipant(ctx, sessionID, callerID); err != nil {
		return nil, err
	}
	if _, err := s.loadVideoInSession(ctx, sessionID, videoID); err != nil {
		return nil, err
	}

	min, max := t-anchorTolerance, t+anchorTolerance

	comments, err := s.commentRepo.ListByTimestampRange(ctx, sessionID, min, max)
	if err != nil {
		return nil, err
	}
	annotations, err := s.annotationRepo.ListByTimestampRange(ctx, sessionID, videoID, min, max)
	if err != nil {
		return nil, err
	}

	return &TimelineSlice{
		Timestamp:   t,
		Comments:    filterVisibleComments(comments, callerID),
		Annotations: annotations,
	}, nil
}
