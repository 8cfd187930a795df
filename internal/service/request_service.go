package service

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/logger"
	"coachvision/analysis-app/internal/repository"
	"coachvision/analysis-app/internal/security"
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestService is the intake path: connection requests establish a
// relationship on acceptance, analysis requests establish a draft
// session (creating the relationship too if needed).
type RequestService interface {
	Create(ctx context.Context, senderID, receiverID primitive.ObjectID, reqType domain.RequestType, message string, priority domain.RequestPriority, videoID *primitive.ObjectID) (*domain.Request, error)

	// Respond accepts or declines a pending request. Only the receiver
	// may respond, and only once.
	Respond(ctx context.Context, requestID, responderID primitive.ObjectID, accept bool) (*domain.Request, error)

	// Cancel withdraws a pending request. Only the sender may cancel.
	Cancel(ctx context.Context, requestID, callerID primitive.ObjectID) error

	ListSent(ctx context.Context, userID primitive.ObjectID) ([]domain.Request, error)
	ListReceived(ctx context.Context, userID primitive.ObjectID) ([]domain.Request, error)
}

type requestService struct {
	requestRepo      repository.RequestRepository
	relationshipRepo repository.RelationshipRepository
	sessionRepo      repository.SessionRepository
	userRepo         repository.UserRepository
	notifications    NotificationService
}

// NewRequestService creates a new request service.
func NewRequestService(
	requestRepo repository.RequestRepository,
	relationshipRepo repository.RelationshipRepository,
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
) RequestService {
	return &requestService{
		requestRepo:      requestRepo,
		relationshipRepo: relationshipRepo,
		sessionRepo:      sessionRepo,
		userRepo:         userRepo,
		notifications:    notifications,
	}
}

// Create validates the sender/receiver pair and records a pending
// request. At most one pending request may exist between two users in
// either direction; the partial unique index closes the race the
// pre-check leaves open.
func (s *requestService) Create(ctx context.Context, senderID, receiverID primitive.ObjectID, reqType domain.RequestType, message string, priority domain.RequestPriority, videoID *primitive.ObjectID) (*domain.Request, error) {
	if senderID == primitive.NilObjectID || receiverID == primitive.NilObjectID {
		return nil, ErrUserNotFound
	}
	if senderID == receiverID {
		return nil, ErrSelfRequest
	}
	if reqType != domain.RequestTypeConnection && reqType != domain.RequestTypeAnalysis {
		return nil, ErrRolePairInvalid
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Exactly one coach and one student, in either direction.
	coachID, studentID, err := resolvePair(sender, receiver)
	if err != nil {
		return nil, err
	}

	pending, err := s.requestRepo.FindPendingBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return nil, ErrDuplicatePendingRequest
	}

	// Priority is informational; anything unrecognized collapses to normal.
	if priority != domain.PriorityLow && priority != domain.PriorityHigh {
		priority = domain.PriorityNormal
	}

	now := time.Now().UTC()
	request := &domain.Request{
		Type:       reqType,
		SenderID:   senderID,
		ReceiverID: receiverID,
		CoachID:    coachID,
		StudentID:  studentID,
		Message:    security.SanitizeText(message),
		Status:     domain.RequestPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if reqType == domain.RequestTypeAnalysis {
		request.Priority = priority
		request.VideoID = videoID
	}

	id, err := s.requestRepo.Create(ctx, request)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicatePendingRequest
		}
		return nil, err
	}
	request.ID = id

	s.notifications.Notify(ctx, Event{
		UserID:           receiverID,
		Type:             domain.NotifyRequestReceived,
		Title:            "New request",
		Message:          sender.DisplayName + " sent you a " + string(reqType) + " request",
		RelatedRequestID: &request.ID,
	})

	return request, nil
}

func resolvePair(a, b *domain.User) (coachID, studentID primitive.ObjectID, err error) {
	switch {
	case a.IsCoach() && b.IsStudent():
		return a.ID, b.ID, nil
	case a.IsStudent() && b.IsCoach():
		return b.ID, a.ID, nil
	default:
		return primitive.NilObjectID, primitive.NilObjectID, ErrRolePairInvalid
	}
}

// Respond resolves a pending request. Acceptance creates the side
// effects first (relationship, and for analysis requests a draft
// session), then marks the request; a side-effect failure therefore
// leaves the request pending and retryable.
func (s *requestService) Respond(ctx context.Context, requestID, responderID primitive.ObjectID, accept bool) (*domain.Request, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if request.SenderID != responderID && request.ReceiverID != responderID {
		return nil, ErrRequestNotFound
	}
	if request.ReceiverID != responderID {
		return nil, ErrNotRequestReceiver
	}
	if !request.IsPending() {
		return nil, ErrRequestNotPending
	}

	if !accept {
		if err := s.requestRepo.MarkResponded(ctx, requestID, domain.RequestDeclined, nil); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrRequestNotPending
			}
			return nil, err
		}
		request.Status = domain.RequestDeclined
		s.notifyOutcome(ctx, request)
		return request, nil
	}

	var sessionID *primitive.ObjectID

	// Both request types imply an active relationship.
	relationship, err := s.relationshipRepo.Upsert(ctx, request.CoachID, request.StudentID)
	if err != nil {
		return nil, err
	}
	if relationship.Status == domain.RelationshipEnded {
		if err := s.relationshipRepo.UpdateStatus(ctx, relationship.ID, domain.RelationshipActive); err != nil {
			return nil, err
		}
	}

	if request.Type == domain.RequestTypeAnalysis {
		session := &domain.Session{
			CoachID:     request.CoachID,
			StudentID:   request.StudentID,
			Title:       "Video analysis session",
			Description: request.Message,
			Status:      domain.SessionDraft,
			SessionType: "analysis",
		}
		id, err := s.sessionRepo.Create(ctx, session)
		if err != nil {
			return nil, err
		}
		sessionID = &id
	}

	if err := s.requestRepo.MarkResponded(ctx, requestID, domain.RequestAccepted, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race against another response; the relationship
			// upsert is idempotent, but a created session may be orphaned.
			if sessionID != nil {
				logger.Warn("request responded concurrently, session may be orphaned",
					"requestId", requestID.Hex(), "sessionId", sessionID.Hex())
			}
			return nil, ErrRequestNotPending
		}
		return nil, err
	}
	request.Status = domain.RequestAccepted
	request.SessionID = sessionID

	s.declineMirror(ctx, request)
	s.notifyOutcome(ctx, request)

	return request, nil
}

// declineMirror auto-declines the opposite-direction pending request
// between the same pair, if one exists. Two crossing requests must not
// yield two acceptances.
func (s *requestService) declineMirror(ctx context.Context, accepted *domain.Request) {
	pending, err := s.requestRepo.FindPendingBetween(ctx, accepted.SenderID, accepted.ReceiverID)
	if err != nil {
		logger.Warn("failed to look up mirror requests", "requestId", accepted.ID.Hex(), "error", err)
		return
	}

	for i := range pending {
		mirror := &pending[i]
		if mirror.ID == accepted.ID {
			continue
		}
		if err := s.requestRepo.MarkResponded(ctx, mirror.ID, domain.RequestDeclined, nil); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logger.Warn("failed to auto-decline mirror request", "requestId", mirror.ID.Hex(), "error", err)
			}
			continue
		}
		s.notifications.Notify(ctx, Event{
			UserID:           mirror.SenderID,
			Type:             domain.NotifyRequestDeclined,
			Title:            "Request superseded",
			Message:          "Your request was resolved by an accepted request from the other side",
			RelatedRequestID: &mirror.ID,
		})
	}
}

func (s *requestService) notifyOutcome(ctx context.Context, request *domain.Request) {
	event := Event{
		UserID:           request.SenderID,
		RelatedRequestID: &request.ID,
		RelatedSessionID: request.SessionID,
	}
	if request.Status == domain.RequestAccepted {
		event.Type = domain.NotifyRequestAccepted
		event.Title = "Request accepted"
		event.Message = "Your " + string(request.Type) + " request was accepted"
	} else {
		event.Type = domain.NotifyRequestDeclined
		event.Title = "Request declined"
		event.Message = "Your " + string(request.Type) + " request was declined"
	}
	s.notifications.Notify(ctx, event)
}

// Cancel withdraws a still-pending request. The record moves to the
// declined terminal state so the pending-pair slot frees up.
func (s *requestService) Cancel(ctx context.Context, requestID, callerID primitive.ObjectID) error {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotFound
		}
		return err
	}

	if request.SenderID != callerID && request.ReceiverID != callerID {
		return ErrRequestNotFound
	}
	if request.SenderID != callerID {
		return ErrNotRequestSender
	}
	if !request.IsPending() {
		return ErrRequestNotPending
	}

	if err := s.requestRepo.MarkResponded(ctx, requestID, domain.RequestDeclined, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotPending
		}
		return err
	}
	return nil
}

func (s *requestService) ListSent(ctx context.Context, userID primitive.ObjectID) ([]domain.Request, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUserNotFound
	}
	return s.requestRepo.ListBySender(ctx, userID)
}

// ListReceived returns the inbox view: pending requests first, high
// priority ahead of normal ahead of low, newest first within a rank.
func (s *requestService) ListReceived(ctx context.Context, userID primitive.ObjectID) ([]domain.Request, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUserNotFound
	}
	requests, err := s.requestRepo.ListByReceiver(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(requests, func(i, j int) bool {
		a, b := &requests[i], &requests[j]
		if a.IsPending() != b.IsPending() {
			return a.IsPending()
		}
		pa, pb := priorityRank(a.Priority), priorityRank(b.Priority)
		if pa != pb {
			return pa > pb
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return requests, nil
}

func priorityRank(p domain.RequestPriority) int {
	switch p {
	case domain.PriorityHigh:
		return 2
	case domain.PriorityLow:
		return 0
	default:
		return 1
	}
}
