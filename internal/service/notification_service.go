package service

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/logger"
	"coachvision/analysis-app/internal/repository"
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event carries everything needed to create a notification record for a user.
type Event struct {
	UserID           primitive.ObjectID
	Type             domain.NotificationType
	Title            string
	Message          string
	RelatedSessionID *primitive.ObjectID
	RelatedRequestID *primitive.ObjectID
}

// NotificationService persists notification records and lets users read
// and acknowledge them. Emission never fails the operation that caused
// it: records that cannot be written are buffered and retried later.
type NotificationService interface {
	// Notify records an event for a user. Persistence failures are
	// logged and queued for retry; the caller is never affected.
	Notify(ctx context.Context, event Event)

	// RetryFailed re-attempts persistence of buffered notifications.
	// Invoked periodically by the retry job.
	RetryFailed(ctx context.Context)

	List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository

	mu        sync.Mutex
	pending   []domain.Notification
	bufferCap int
}

// NewNotificationService creates a new notification service. bufferCap
// bounds the in-process retry queue; when full, the oldest record is
// dropped (and logged) to make room.
func NewNotificationService(notificationRepo repository.NotificationRepository, bufferCap int) NotificationService {
	if bufferCap <= 0 {
		bufferCap = 256
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		bufferCap:        bufferCap,
	}
}

func (s *notificationService) Notify(ctx context.Context, event Event) {
	if event.UserID == primitive.NilObjectID {
		return
	}

	notification := domain.Notification{
		UserID:           event.UserID,
		Type:             event.Type,
		Title:            event.Title,
		Message:          event.Message,
		RelatedSessionID: event.RelatedSessionID,
		RelatedRequestID: event.RelatedRequestID,
		IsRead:           false,
		CreatedAt:        time.Now().UTC(),
	}

	if _, err := s.notificationRepo.Create(ctx, &notification); err != nil {
		logger.Warn("failed to persist notification, queued for retry",
			"type", event.Type, "userId", event.UserID.Hex(), "error", err)
		s.enqueue(notification)
	}
}

func (s *notificationService) RetryFailed(ctx context.Context) {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	var retried, failed int
	for i := range batch {
		record := batch[i]
		record.ID = primitive.NilObjectID
		if _, err := s.notificationRepo.Create(ctx, &record); err != nil {
			s.enqueue(record)
			failed++
			continue
		}
		retried++
	}

	logger.Info("notification retry sweep finished", "retried", retried, "failed", failed)
}

func (s *notificationService) enqueue(notification domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) >= s.bufferCap {
		dropped := s.pending[0]
		s.pending = s.pending[1:]
		logger.Warn("notification retry buffer full, dropping oldest",
			"type", dropped.Type, "userId", dropped.UserID.Hex())
	}
	s.pending = append(s.pending, notification)
}

func (s *notificationService) List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]domain.Notification, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUserNotFound
	}
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID primitive.ObjectID) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}

	// Foreign notifications look identical to missing ones.
	if notification.UserID != userID {
		return ErrNotificationNotFound
	}

	return s.notificationRepo.MarkRead(ctx, notificationID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	if userID == primitive.NilObjectID {
		return ErrUserNotFound
	}
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
