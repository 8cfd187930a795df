package api

import (
	"coachvision/analysis-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications returns the caller's notifications, newest first.
// ?unread=true restricts to unread ones.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}

	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.notificationService.List(c.Request.Context(), callerID, unreadOnly)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		resp = append(resp, MapNotificationToResponse(&notifications[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	notificationID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), notificationID, callerID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllNotificationsRead(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), callerID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
