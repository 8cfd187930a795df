package api

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RelationshipHandler struct {
	relationshipService service.RelationshipService
}

func NewRelationshipHandler(relationshipService service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relationshipService: relationshipService}
}

// --- DTOs ---

type CreateRelationshipRequest struct {
	CoachID   string `json:"coachId" binding:"required"`
	StudentID string `json:"studentId" binding:"required"`
}

// CreateRelationship establishes (or returns) the relationship between a
// coach and a student. The caller must be one of the two.
func (h *RelationshipHandler) CreateRelationship(c *gin.Context) {
	var req CreateRelationshipRequest
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

	if callerID != coachID && callerID != studentID {
		abortWithError(c, http.StatusForbidden, "Caller must be a participant of the relationship")
		return
	}

	relationship, err := h.relationshipService.CreateOrGet(c.Request.Context(), coachID, studentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapRelationshipToResponse(relationship))
}

// ListRelationships returns the caller's relationships. Optional query
// params: status (pending|active|ended).
func (h *RelationshipHandler) ListRelationships(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token")
		return
	}

	status := domain.RelationshipStatus(c.Query("status"))

	relationships, err := h.relationshipService.List(c.Request.Context(), callerID, role, status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]RelationshipResponse, 0, len(relationships))
	for i := range relationships {
		resp = append(resp, MapRelationshipToResponse(&relationships[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RelationshipHandler) GetRelationship(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	relationshipID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	relationship, err := h.relationshipService.Get(c.Request.Context(), relationshipID, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapRelationshipToResponse(relationship))
}

// EndRelationship marks a relationship as ended. Sessions created under
// it remain readable; only new collaboration stops.
func (h *RelationshipHandler) EndRelationship(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	relationshipID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.relationshipService.End(c.Request.Context(), relationshipID, callerID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Relationship ended"})
}
