package service

import (
	"coachvision/analysis-app/internal/domain"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotify_BuffersFailuresAndRetries(t *testing.T) {
	env := newTestEnv()

	env.notificationRepo.failCreate = true
	env.notifications.Notify(t.Context(), Event{
		UserID:  env.coach.ID,
		Type:    domain.NotifyNewComment,
		Title:   "New comment",
		Message: "buffered",
	})

	// Nothing persisted yet, and the caller never saw an error.
	list, _ := env.notificationRepo.ListByUser(t.Context(), env.coach.ID, false)
	if len(list) != 0 {
		t.Fatalf("persisted %d notifications while repo failing, want 0", len(list))
	}

	// A failing sweep keeps the record buffered.
	env.notifications.RetryFailed(t.Context())
	env.notificationRepo.failCreate = false
	env.notifications.RetryFailed(t.Context())

	list, _ = env.notificationRepo.ListByUser(t.Context(), env.coach.ID, false)
	if len(list) != 1 {
		t.Fatalf("persisted %d notifications after retry, want 1", len(list))
	}
	if list[0].Message != "buffered" {
		t.Errorf("retried message = %q, want %q", list[0].Message, "buffered")
	}

	// The buffer drains; another sweep is a no-op.
	env.notifications.RetryFailed(t.Context())
	list, _ = env.notificationRepo.ListByUser(t.Context(), env.coach.ID, false)
	if len(list) != 1 {
		t.Errorf("persisted %d notifications after second retry, want 1", len(list))
	}
}

func TestNotify_BufferDropsOldestWhenFull(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.failCreate = true
	svc := NewNotificationService(repo, 2)
	userID := primitive.NewObjectID()

	for _, msg := range []string{"one", "two", "three"} {
		svc.Notify(t.Context(), Event{UserID: userID, Type: domain.NotifyNewComment, Title: "t", Message: msg})
	}

	repo.failCreate = false
	svc.RetryFailed(t.Context())

	list, _ := repo.ListByUser(t.Context(), userID, false)
	if len(list) != 2 {
		t.Fatalf("persisted %d notifications, want 2 (oldest dropped)", len(list))
	}
	for _, n := range list {
		if n.Message == "one" {
			t.Error("oldest buffered notification survived a full buffer")
		}
	}
}

func TestMarkRead_OwnerOnly(t *testing.T) {
	env := newTestEnv()

	env.notifications.Notify(t.Context(), Event{
		UserID:  env.student.ID,
		Type:    domain.NotifyRequestAccepted,
		Title:   "Request accepted",
		Message: "m",
	})
	list, _ := env.notificationRepo.ListByUser(t.Context(), env.student.ID, true)
	if len(list) != 1 {
		t.Fatalf("seeded %d notifications, want 1", len(list))
	}
	id := list[0].ID

	// A foreign notification looks missing, not forbidden.
	if err := env.notifications.MarkRead(t.Context(), id, env.coach.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("foreign MarkRead() error = %v, want ErrNotificationNotFound", err)
	}

	if err := env.notifications.MarkRead(t.Context(), id, env.student.ID); err != nil {
		t.Fatalf("owner MarkRead() error = %v", err)
	}

	unread, _ := env.notifications.List(t.Context(), env.student.ID, true)
	if len(unread) != 0 {
		t.Errorf("unread count after MarkRead = %d, want 0", len(unread))
	}
}

func TestMarkAllRead(t *testing.T) {
	env := newTestEnv()

	for i := 0; i < 3; i++ {
		env.notifications.Notify(t.Context(), Event{
			UserID:  env.coach.ID,
			Type:    domain.NotifyNewNote,
			Title:   "New note",
			Message: "m",
		})
	}

	if err := env.notifications.MarkAllRead(t.Context(), env.coach.ID); err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}
	unread, _ := env.notifications.List(t.Context(), env.coach.ID, true)
	if len(unread) != 0 {
		t.Errorf("unread count = %d, want 0", len(unread))
	}
	all, _ := env.notifications.List(t.Context(), env.coach.ID, false)
	if len(all) != 3 {
		t.Errorf("total count = %d, want 3", len(all))
	}
}
