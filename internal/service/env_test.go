package service

import (
	"coachvision/analysis-app/internal/config"
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/logger"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

// testEnv wires every service against in-memory fakes with one coach
// and one student seeded.
type testEnv struct {
	coach   domain.User
	student domain.User

	userRepo         *fakeUserRepo
	relationshipRepo *fakeRelationshipRepo
	requestRepo      *fakeRequestRepo
	sessionRepo      *fakeSessionRepo
	videoRepo        *fakeVideoRepo
	commentRepo      *fakeCommentRepo
	annotationRepo   *fakeAnnotationRepo
	noteRepo         *fakeNoteRepo
	progressRepo     *fakeProgressRepo
	notificationRepo *fakeNotificationRepo
	storage          *fakeStorage

	relationships RelationshipService
	requests      RequestService
	sessions      SessionService
	media         MediaService
	collab        CollabService
	notifications NotificationService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		coach: domain.User{
			ID:          primitive.NewObjectID(),
			DisplayName: "Coach Dan",
			Role:        domain.RoleCoach,
		},
		student: domain.User{
			ID:          primitive.NewObjectID(),
			DisplayName: "Student Ana",
			Role:        domain.RoleStudent,
		},
	}

	env.userRepo = newFakeUserRepo(env.coach, env.student)
	env.relationshipRepo = newFakeRelationshipRepo()
	env.requestRepo = newFakeRequestRepo()
	env.sessionRepo = newFakeSessionRepo()
	env.videoRepo = newFakeVideoRepo()
	env.commentRepo = newFakeCommentRepo()
	env.annotationRepo = newFakeAnnotationRepo()
	env.noteRepo = newFakeNoteRepo()
	env.progressRepo = newFakeProgressRepo()
	env.notificationRepo = newFakeNotificationRepo()
	env.storage = &fakeStorage{}

	env.notifications = NewNotificationService(env.notificationRepo, 8)
	env.relationships = NewRelationshipService(env.relationshipRepo, env.userRepo)
	env.requests = NewRequestService(env.requestRepo, env.relationshipRepo, env.sessionRepo, env.userRepo, env.notifications)
	env.media = NewMediaService(env.videoRepo, env.sessionRepo, env.storage, env.notifications, config.MediaConfig{
		PlaybackURLTTL:    15 * time.Minute,
		ResolveTimeout:    time.Second,
		ResolveRetryDelay: time.Millisecond,
	})
	env.sessions = NewSessionService(env.sessionRepo, env.relationshipRepo, env.progressRepo, env.userRepo, env.media, env.notifications)
	env.collab = NewCollabService(env.commentRepo, env.annotationRepo, env.noteRepo, env.videoRepo, env.sessionRepo, env.notifications)

	return env
}

// seedSession creates an active relationship and a session directly in
// the fakes.
func (env *testEnv) seedSession(t *testing.T, status domain.SessionStatus) *domain.Session {
	t.Helper()
	if _, err := env.relationshipRepo.Upsert(t.Context(), env.coach.ID, env.student.ID); err != nil {
		t.Fatalf("seeding relationship: %v", err)
	}
	session := &domain.Session{
		CoachID:   env.coach.ID,
		StudentID: env.student.ID,
		Title:     "Backhand review",
		Status:    status,
	}
	if _, err := env.sessionRepo.Create(t.Context(), session); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	return session
}

// seedVideo attaches a video record directly to a session.
func (env *testEnv) seedVideo(t *testing.T, sessionID primitive.ObjectID, duration *float64) *domain.SessionVideo {
	t.Helper()
	video := &domain.SessionVideo{
		SessionID:       sessionID,
		VideoRef:        "sessions/" + sessionID.Hex() + "/clip.mp4",
		UploadedBy:      env.student.ID,
		DurationSeconds: duration,
		UploadedAt:      time.Now().UTC(),
	}
	if _, err := env.videoRepo.Create(t.Context(), video); err != nil {
		t.Fatalf("seeding video: %v", err)
	}
	return video
}
