package service

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/logger"
	"coachvision/analysis-app/internal/repository"
	"coachvision/analysis-app/internal/security"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoPlayback pairs an attached video with its resolved playback URL.
// Playable is false when resolution failed; the video still lists.
type VideoPlayback struct {
	Video       domain.SessionVideo
	PlaybackURL string
	Playable    bool
}

// SessionDetail is the full session view: the session record, decorated
// participant profiles, and attached videos with playback URLs.
type SessionDetail struct {
	Session *domain.Session
	Coach   *domain.User
	Student *domain.User
	Videos  []VideoPlayback
}

// SessionService manages the analysis-session lifecycle and the
// per-session progress metrics.
type SessionService interface {
	// Create opens a draft session between a coach and a student. The
	// caller must be one of the two. An active relationship is required;
	// ensureRelationship opts in to creating one on the fly.
	Create(ctx context.Context, callerID, coachID, studentID primitive.ObjectID, title, description, sessionType string, scheduledFor *time.Time, ensureRelationship bool) (*domain.Session, error)

	Get(ctx context.Context, sessionID, callerID primitive.ObjectID) (*SessionDetail, error)
	List(ctx context.Context, userID primitive.ObjectID, role domain.Role) ([]domain.Session, error)

	// UpdateStatus moves a session along draft -> active -> completed,
	// with archived reachable from active or completed.
	UpdateStatus(ctx context.Context, sessionID, callerID primitive.ObjectID, newStatus domain.SessionStatus) (*domain.Session, error)

	RecordProgress(ctx context.Context, sessionID, callerID primitive.ObjectID, metricType string, metricValue float64, notes string) (*domain.SessionProgress, error)
	ListProgress(ctx context.Context, sessionID, callerID primitive.ObjectID) ([]domain.SessionProgress, error)
}

type sessionService struct {
	sessionRepo      repository.SessionRepository
	relationshipRepo repository.RelationshipRepository
	progressRepo     repository.ProgressRepository
	userRepo         repository.UserRepository
	media            MediaService
	notifications    NotificationService
}

// NewSessionService creates a new session service.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	relationshipRepo repository.RelationshipRepository,
	progressRepo repository.ProgressRepository,
	userRepo repository.UserRepository,
	media MediaService,
	notifications NotificationService,
) SessionService {
	return &sessionService{
		sessionRepo:      sessionRepo,
		relationshipRepo: relationshipRepo,
		progressRepo:     progressRepo,
		userRepo:         userRepo,
		media:            media,
		notifications:    notifications,
	}
}

func (s *sessionService) Create(ctx context.Context, callerID, coachID, studentID primitive.ObjectID, title, description, sessionType string, scheduledFor *time.Time, ensureRelationship bool) (*domain.Session, error) {
	if coachID == primitive.NilObjectID || studentID == primitive.NilObjectID {
		return nil, ErrUserNotFound
	}
	if callerID != coachID && callerID != studentID {
		return nil, ErrNoActiveRelationship
	}

	title = security.SanitizeText(title)
	if title == "" {
		return nil, ErrEmptyText
	}

	coach, err := s.userRepo.GetByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !coach.IsCoach() || !student.IsStudent() {
		return nil, ErrRolePairInvalid
	}

	relationship, err := s.relationshipRepo.GetByPair(ctx, coachID, studentID)
	switch {
	case err == nil && relationship.Status == domain.RelationshipActive:
		// Pair already authorized.
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, err
	case ensureRelationship:
		if relationship, err = s.relationshipRepo.Upsert(ctx, coachID, studentID); err != nil {
			return nil, err
		}
		if relationship.Status == domain.RelationshipEnded {
			if err := s.relationshipRepo.UpdateStatus(ctx, relationship.ID, domain.RelationshipActive); err != nil {
				return nil, err
			}
		}
	default:
		return nil, ErrNoActiveRelationship
	}

	session := &domain.Session{
		CoachID:      coachID,
		StudentID:    studentID,
		Title:        title,
		Description:  security.SanitizeText(description),
		Status:       domain.SessionDraft,
		SessionType:  sessionType,
		ScheduledFor: scheduledFor,
	}

	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id
	return session, nil
}

// Get assembles the session view. Profile decoration and playback URLs
// degrade independently: a dead storage backend or a missing profile
// never hides the session itself.
func (s *sessionService) Get(ctx context.Context, sessionID, callerID primitive.ObjectID) (*SessionDetail, error) {
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

	detail := &SessionDetail{Session: session}

	users, err := s.userRepo.GetByIDs(ctx, []primitive.ObjectID{session.CoachID, session.StudentID})
	if err != nil {
		logger.Warn("failed to decorate session participants", "sessionId", sessionID.Hex(), "error", err)
	} else {
		for i := range users {
			switch users[i].ID {
			case session.CoachID:
				detail.Coach = &users[i]
			case session.StudentID:
				detail.Student = &users[i]
			}
		}
	}

	videos, err := s.media.ListVideos(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}
	for i := range videos {
		playback := VideoPlayback{Video: videos[i]}
		if url, err := s.media.PlaybackURLFor(ctx, &videos[i]); err == nil {
			playback.PlaybackURL = url
			playback.Playable = true
		}
		detail.Videos = append(detail.Videos, playback)
	}

	return detail, nil
}

func (s *sessionService) List(ctx context.Context, userID primitive.ObjectID, role domain.Role) ([]domain.Session, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUserNotFound
	}
	return s.sessionRepo.ListByUser(ctx, userID, role)
}

func (s *sessionService) UpdateStatus(ctx context.Context, sessionID, callerID primitive.ObjectID, newStatus domain.SessionStatus) (*domain.Session, error) {
	if !domain.ValidSessionStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

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

	if !session.Status.CanTransitionTo(newStatus) {
		return nil, ErrInvalidTransition
	}

	var completedAt *time.Time
	if newStatus == domain.SessionCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}

	// The filter on the current status makes concurrent transitions lose
	// cleanly instead of stacking.
	if err := s.sessionRepo.UpdateStatusFrom(ctx, sessionID, session.Status, newStatus, completedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	session.Status = newStatus
	session.CompletedAt = completedAt

	s.notifications.Notify(ctx, Event{
		UserID:           otherParticipant(session, callerID),
		Type:             domain.NotifySessionStatus,
		Title:            "Session " + string(newStatus),
		Message:          "\"" + session.Title + "\" is now " + string(newStatus),
		RelatedSessionID: &session.ID,
	})

	return session, nil
}

func (s *sessionService) RecordProgress(ctx context.Context, sessionID, callerID primitive.ObjectID, metricType string, metricValue float64, notes string) (*domain.SessionProgress, error) {
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

	metricType = security.SanitizeText(metricType)
	if metricType == "" {
		return nil, ErrEmptyText
	}

	progress := &domain.SessionProgress{
		SessionID:   session.ID,
		StudentID:   session.StudentID,
		MetricType:  metricType,
		MetricValue: metricValue,
		Notes:       security.SanitizeText(notes),
		RecordedAt:  time.Now().UTC(),
		RecordedBy:  callerID,
	}

	id, err := s.progressRepo.Create(ctx, progress)
	if err != nil {
		return nil, err
	}
	progress.ID = id
	return progress, nil
}

func (s *sessionService) ListProgress(ctx context.Context, sessionID, callerID primitive.ObjectID) ([]domain.SessionProgress, error) {
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
	return s.progressRepo.ListBySession(ctx, sessionID)
}
