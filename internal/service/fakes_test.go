package service

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/repository"
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes mirroring the mongo implementations'
// contracts (sentinel errors, conditional updates, uniqueness rules).

type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeRelationshipRepo struct {
	mu   sync.Mutex
	rels map[primitive.ObjectID]domain.Relationship
}

func newFakeRelationshipRepo() *fakeRelationshipRepo {
	return &fakeRelationshipRepo{rels: make(map[primitive.ObjectID]domain.Relationship)}
}

func (r *fakeRelationshipRepo) Upsert(_ context.Context, coachID, studentID primitive.ObjectID) (*domain.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rel := range r.rels {
		if rel.CoachID == coachID && rel.StudentID == studentID {
			existing := rel
			return &existing, nil
		}
	}
	now := time.Now().UTC()
	rel := domain.Relationship{
		ID:         primitive.NewObjectID(),
		CoachID:    coachID,
		StudentID:  studentID,
		Status:     domain.RelationshipActive,
		CreatedAt:  now,
		AcceptedAt: &now,
	}
	r.rels[rel.ID] = rel
	created := rel
	return &created, nil
}

func (r *fakeRelationshipRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rel, ok := r.rels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rel, nil
}

func (r *fakeRelationshipRepo) GetByPair(_ context.Context, coachID, studentID primitive.ObjectID) (*domain.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rel := range r.rels {
		if rel.CoachID == coachID && rel.StudentID == studentID {
			found := rel
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRelationshipRepo) ListByUser(_ context.Context, userID primitive.ObjectID, role domain.Role, status domain.RelationshipStatus) ([]domain.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Relationship
	for _, rel := range r.rels {
		if role == domain.RoleCoach && rel.CoachID != userID {
			continue
		}
		if role == domain.RoleStudent && rel.StudentID != userID {
			continue
		}
		if status != "" && rel.Status != status {
			continue
		}
		out = append(out, rel)
	}
	return out, nil
}

func (r *fakeRelationshipRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.RelationshipStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rel, ok := r.rels[id]
	if !ok {
		return repository.ErrNotFound
	}
	rel.Status = status
	r.rels[id] = rel
	return nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]domain.Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[primitive.ObjectID]domain.Request)}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *domain.Request) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirrors the partial unique index on pending (senderId, receiverId).
	for _, existing := range r.requests {
		if existing.Status == domain.RequestPending &&
			existing.SenderID == req.SenderID && existing.ReceiverID == req.ReceiverID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	req.ID = primitive.NewObjectID()
	r.requests[req.ID] = *req
	return req.ID, nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &req, nil
}

func (r *fakeRequestRepo) FindPendingBetween(_ context.Context, a, b primitive.ObjectID) ([]domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Request
	for _, req := range r.requests {
		if req.Status != domain.RequestPending {
			continue
		}
		if (req.SenderID == a && req.ReceiverID == b) || (req.SenderID == b && req.ReceiverID == a) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListBySender(_ context.Context, senderID primitive.ObjectID) ([]domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Request
	for _, req := range r.requests {
		if req.SenderID == senderID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByReceiver(_ context.Context, receiverID primitive.ObjectID) ([]domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Request
	for _, req := range r.requests {
		if req.ReceiverID == receiverID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) MarkResponded(_ context.Context, id primitive.ObjectID, status domain.RequestStatus, sessionID *primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != domain.RequestPending {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	req.Status = status
	req.RespondedAt = &now
	req.UpdatedAt = now
	if sessionID != nil {
		req.SessionID = sessionID
	}
	r.requests[id] = req
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]domain.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	r.sessions[session.ID] = *session
	return session.ID, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (r *fakeSessionRepo) ListByUser(_ context.Context, userID primitive.ObjectID, role domain.Role) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, session := range r.sessions {
		if role == domain.RoleCoach && session.CoachID == userID {
			out = append(out, session)
		}
		if role == domain.RoleStudent && session.StudentID == userID {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) UpdateStatusFrom(_ context.Context, id primitive.ObjectID, from, to domain.SessionStatus, completedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.Status != from {
		return repository.ErrNotFound
	}
	session.Status = to
	session.UpdatedAt = time.Now().UTC()
	if completedAt != nil {
		session.CompletedAt = completedAt
	}
	r.sessions[id] = session
	return nil
}

type fakeVideoRepo struct {
	mu     sync.Mutex
	videos map[primitive.ObjectID]domain.SessionVideo
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[primitive.ObjectID]domain.SessionVideo)}
}

func (r *fakeVideoRepo) Create(_ context.Context, video *domain.SessionVideo) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	video.ID = primitive.NewObjectID()
	r.videos[video.ID] = *video
	return video.ID, nil
}

func (r *fakeVideoRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.SessionVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &video, nil
}

func (r *fakeVideoRepo) ListBySession(_ context.Context, sessionID primitive.ObjectID) ([]domain.SessionVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SessionVideo
	for _, video := range r.videos {
		if video.SessionID == sessionID {
			out = append(out, video)
		}
	}
	return out, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]domain.SessionComment
	order    []primitive.ObjectID
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[primitive.ObjectID]domain.SessionComment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.SessionComment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	r.comments[comment.ID] = *comment
	r.order = append(r.order, comment.ID)
	return comment.ID, nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.SessionComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &comment, nil
}

func (r *fakeCommentRepo) ListBySession(_ context.Context, sessionID primitive.ObjectID) ([]domain.SessionComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SessionComment
	for _, id := range r.order {
		comment, ok := r.comments[id]
		if ok && comment.SessionID == sessionID {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) ListByTimestampRange(_ context.Context, sessionID primitive.ObjectID, min, max float64) ([]domain.SessionComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SessionComment
	for _, id := range r.order {
		comment, ok := r.comments[id]
		if !ok || comment.SessionID != sessionID || comment.VideoTimestamp == nil {
			continue
		}
		if *comment.VideoTimestamp >= min && *comment.VideoTimestamp <= max {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) UpdateText(_ context.Context, id primitive.ObjectID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok {
		return repository.ErrNotFound
	}
	comment.CommentText = text
	comment.Edited = true
	comment.UpdatedAt = time.Now().UTC()
	r.comments[id] = comment
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

type fakeAnnotationRepo struct {
	mu          sync.Mutex
	annotations []domain.SessionAnnotation
}

func newFakeAnnotationRepo() *fakeAnnotationRepo {
	return &fakeAnnotationRepo{}
}

func (r *fakeAnnotationRepo) Create(_ context.Context, annotation *domain.SessionAnnotation) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	annotation.ID = primitive.NewObjectID()
	r.annotations = append(r.annotations, *annotation)
	return annotation.ID, nil
}

func (r *fakeAnnotationRepo) ListBySessionVideo(_ context.Context, sessionID, videoID primitive.ObjectID) ([]domain.SessionAnnotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SessionAnnotation
	for _, a := range r.annotations {
		if a.SessionID == sessionID && a.VideoID == videoID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnnotationRepo) ListByTimestampRange(_ context.Context, sessionID, videoID primitive.ObjectID, min, max float64) ([]domain.SessionAnnotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SessionAnnotation
	for _, a := range r.annotations {
		if a.SessionID == sessionID && a.VideoID == videoID &&
			a.VideoTimestamp >= min && a.VideoTimestamp <= max {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeNoteRepo struct {
	mu    sync.Mutex
	notes []domain.SessionNote
}

func newFakeNoteRepo() *fakeNoteRepo { return &fakeNoteRepo{} }

func (r *fakeNoteRepo) Create(_ context.Context, note *domain.SessionNote) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	note.ID = primitive.NewObjectID()
	r.notes = append(r.notes, *note)
	return note.ID, nil
}

func (r *fakeNoteRepo) ListBySession(_ context.Context, sessionID primitive.ObjectID) ([]domain.SessionNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SessionNote
	for _, n := range r.notes {
		if n.SessionID == sessionID {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeProgressRepo struct {
	mu      sync.Mutex
	entries []domain.SessionProgress
}

func newFakeProgressRepo() *fakeProgressRepo { return &fakeProgressRepo{} }

func (r *fakeProgressRepo) Create(_ context.Context, progress *domain.SessionProgress) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	progress.ID = primitive.NewObjectID()
	r.entries = append(r.entries, *progress)
	return progress.ID, nil
}

func (r *fakeProgressRepo) ListBySession(_ context.Context, sessionID primitive.ObjectID) ([]domain.SessionProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SessionProgress
	for _, e := range r.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[primitive.ObjectID]domain.Notification
	failCreate    bool
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[primitive.ObjectID]domain.Notification)}
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return primitive.NilObjectID, errors.New("write failed")
	}
	notification.ID = primitive.NewObjectID()
	r.notifications[notification.ID] = *notification
	return notification.ID, nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &n, nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID primitive.ObjectID, unreadOnly bool) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	n.IsRead = true
	n.ReadAt = &now
	r.notifications[id] = n
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for id, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			r.notifications[id] = n
		}
	}
	return nil
}

// fakeStorage implements storage.FileStorage.
type fakeStorage struct {
	fail bool
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	if s.fail {
		return "", errors.New("storage down")
	}
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	if s.fail {
		return "", errors.New("storage down")
	}
	return "https://storage.test/get/" + objectKey, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, _ string) error {
	if s.fail {
		return errors.New("storage down")
	}
	return nil
}
