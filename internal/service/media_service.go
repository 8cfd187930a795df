package service

import (
	"coachvision/analysis-app/internal/config"
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/logger"
	"coachvision/analysis-app/internal/repository"
	"coachvision/analysis-app/internal/security"
	"coachvision/analysis-app/internal/storage"
	"context"
	"errors"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UploadTarget is a presigned PUT destination for a direct client upload.
type UploadTarget struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	ExpiresIn int64  `json:"expiresInSeconds"`
}

// MediaService attaches videos to sessions and resolves their playback
// URLs. Raw storage keys never leave the service; players only ever see
// time-limited presigned URLs or pass-through external URLs.
type MediaService interface {
	AttachVideo(ctx context.Context, sessionID, callerID primitive.ObjectID, videoRef, title, description string, durationSeconds *float64) (*domain.SessionVideo, error)

	// RequestUploadURL presigns a PUT for a direct-to-storage upload.
	// The returned object key is what the client then attaches.
	RequestUploadURL(ctx context.Context, sessionID, callerID primitive.ObjectID, contentType string) (*UploadTarget, error)

	ListVideos(ctx context.Context, sessionID, callerID primitive.ObjectID) ([]domain.SessionVideo, error)

	// ResolvePlaybackURL produces a playable URL for one attached video.
	// Returns ErrPlaybackUnavailable when storage cannot answer in time.
	ResolvePlaybackURL(ctx context.Context, videoID, callerID primitive.ObjectID) (string, error)

	// PlaybackURLFor resolves a URL for an already-loaded video record,
	// for callers that have done their own participant check.
	PlaybackURLFor(ctx context.Context, video *domain.SessionVideo) (string, error)
}

type mediaService struct {
	videoRepo     repository.VideoRepository
	sessionRepo   repository.SessionRepository
	fileStorage   storage.FileStorage
	notifications NotificationService
	cfg           config.MediaConfig
}

// NewMediaService creates a new media service.
func NewMediaService(
	videoRepo repository.VideoRepository,
	sessionRepo repository.SessionRepository,
	fileStorage storage.FileStorage,
	notifications NotificationService,
	cfg config.MediaConfig,
) MediaService {
	if cfg.PlaybackURLTTL <= 0 {
		cfg.PlaybackURLTTL = storage.DefaultPresignedURLExpiry
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = 3 * time.Second
	}
	return &mediaService{
		videoRepo:     videoRepo,
		sessionRepo:   sessionRepo,
		fileStorage:   fileStorage,
		notifications: notifications,
		cfg:           cfg,
	}
}

func (s *mediaService) loadSessionForParticipant(ctx context.Context, sessionID, callerID primitive.ObjectID) (*domain.Session, error) {
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

// AttachVideo records a video reference under a session. VideoRef is
// either an object-store key (from RequestUploadURL) or a full external
// URL; both are stored as-is.
func (s *mediaService) AttachVideo(ctx context.Context, sessionID, callerID primitive.ObjectID, videoRef, title, description string, durationSeconds *float64) (*domain.SessionVideo, error) {
	session, err := s.loadSessionForParticipant(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}

	videoRef = strings.TrimSpace(videoRef)
	if videoRef == "" {
		return nil, ErrInvalidVideoRef
	}
	if durationSeconds != nil && *durationSeconds < 0 {
		return nil, ErrInvalidTimestamp
	}

	video := &domain.SessionVideo{
		SessionID:       session.ID,
		VideoRef:        videoRef,
		Title:           security.SanitizeText(title),
		Description:     security.SanitizeText(description),
		UploadedBy:      callerID,
		DurationSeconds: durationSeconds,
		UploadedAt:      time.Now().UTC(),
	}

	id, err := s.videoRepo.Create(ctx, video)
	if err != nil {
		return nil, err
	}
	video.ID = id

	s.notifications.Notify(ctx, Event{
		UserID:           otherParticipant(session, callerID),
		Type:             domain.NotifyVideoAttached,
		Title:            "New video",
		Message:          "A video was attached to \"" + session.Title + "\"",
		RelatedSessionID: &session.ID,
	})

	return video, nil
}

func (s *mediaService) RequestUploadURL(ctx context.Context, sessionID, callerID primitive.ObjectID, contentType string) (*UploadTarget, error) {
	session, err := s.loadSessionForParticipant(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(contentType, "video/") {
		return nil, ErrInvalidContentType
	}

	objectKey := path.Join("sessions", session.ID.Hex(), uuid.NewString()+extensionFor(contentType))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrPlaybackUnavailable
	}

	return &UploadTarget{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		ExpiresIn: int64(storage.DefaultPresignedURLExpiry.Seconds()),
	}, nil
}

func extensionFor(contentType string) string {
	exts, err := mime.ExtensionsByType(contentType)
	if err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

func (s *mediaService) ListVideos(ctx context.Context, sessionID, callerID primitive.ObjectID) ([]domain.SessionVideo, error) {
	if _, err := s.loadSessionForParticipant(ctx, sessionID, callerID); err != nil {
		return nil, err
	}
	return s.videoRepo.ListBySession(ctx, sessionID)
}

func (s *mediaService) ResolvePlaybackURL(ctx context.Context, videoID, callerID primitive.ObjectID) (string, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrVideoNotFound
		}
		return "", err
	}
	if _, err := s.loadSessionForParticipant(ctx, video.SessionID, callerID); err != nil {
		// The parent session decides visibility of the video too.
		return "", ErrVideoNotFound
	}
	return s.PlaybackURLFor(ctx, video)
}

// PlaybackURLFor resolves the playable URL for a video. External URLs
// pass through unchanged; store keys are presigned under a bounded
// timeout with a single retry, so a slow backend degrades rather than
// hangs the caller.
func (s *mediaService) PlaybackURLFor(ctx context.Context, video *domain.SessionVideo) (string, error) {
	if video.IsExternalRef() {
		return video.VideoRef, nil
	}

	resolveCtx, cancel := context.WithTimeout(ctx, s.cfg.ResolveTimeout)
	defer cancel()

	url, err := s.fileStorage.GeneratePresignedDownloadURL(resolveCtx, video.VideoRef, s.cfg.PlaybackURLTTL)
	if err == nil {
		return url, nil
	}

	if s.cfg.ResolveRetryDelay > 0 {
		select {
		case <-time.After(s.cfg.ResolveRetryDelay):
		case <-resolveCtx.Done():
			logger.Warn("playback URL resolution timed out", "videoId", video.ID.Hex())
			return "", ErrPlaybackUnavailable
		}
		url, err = s.fileStorage.GeneratePresignedDownloadURL(resolveCtx, video.VideoRef, s.cfg.PlaybackURLTTL)
		if err == nil {
			return url, nil
		}
	}

	logger.Warn("playback URL resolution failed", "videoId", video.ID.Hex(), "error", err)
	return "", ErrPlaybackUnavailable
}

func otherParticipant(session *domain.Session, userID primitive.ObjectID) primitive.ObjectID {
	if session.CoachID == userID {
		return session.StudentID
	}
	return session.CoachID
}
