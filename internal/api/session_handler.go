package api

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- DTOs ---

type CreateSessionRequest struct {
	CoachID            string     `json:"coachId" binding:"required"`
	StudentID          string     `json:"studentId" binding:"required"`
	Title              string     `json:"title" binding:"required,max=200"`
	Description        string     `json:"description" binding:"max=2000"`
	SessionType        string     `json:"sessionType" binding:"max=50"`
	ScheduledFor       *time.Time `json:"scheduledFor"`
	EnsureRelationship bool       `json:"ensureRelationship"`
}

type UpdateSessionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RecordProgressRequest struct {
	MetricType  string  `json:"metricType" binding:"required,max=100"`
	MetricValue float64 `json:"metricValue"`
	Notes       string  `json:"notes" binding:"max=2000"`
}

// CreateSession opens a draft analysis session between a coach and a
// student.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}

	coachID, err := primitive.ObjectIDFromHex(req.CoachID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid coachId format")
		return
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid studentId format")
		return
	}

	session, err := h.sessionService.Create(
		c.Request.Context(),
		callerID,
		coachID,
		studentID,
		req.Title,
		req.Description,
		req.SessionType,
		req.ScheduledFor,
		req.EnsureRelationship,
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapSessionToResponse(session))
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token")
		return
	}

	sessions, err := h.sessionService.List(c.Request.Context(), callerID, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, MapSessionToResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession returns the full session view with participants and videos.
// Videos whose playback URL could not be resolved come back with
// playable=false rather than failing the whole view.
func (h *SessionHandler) GetSession(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.sessionService.Get(c.Request.Context(), sessionID, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionDetailToResponse(detail))
}

// UpdateSessionStatus moves a session along its lifecycle.
func (h *SessionHandler) UpdateSessionStatus(c *gin.Context) {
	var req UpdateSessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.UpdateStatus(c.Request.Context(), sessionID, callerID, domain.SessionStatus(req.Status))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionToResponse(session))
}

func (h *SessionHandler) RecordProgress(c *gin.Context) {
	var req RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	progress, err := h.sessionService.RecordProgress(c.Request.Context(), sessionID, callerID, req.MetricType, req.MetricValue, req.Notes)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapProgressToResponse(progress))
}

func (h *SessionHandler) ListProgress(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.sessionService.ListProgress(c.Request.Context(), sessionID, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]ProgressResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, MapProgressToResponse(&entries[i]))
	}
	c.JSON(http.StatusOK, resp)
}
