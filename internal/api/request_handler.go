package api

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// --- DTOs ---

type CreateRequestRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Type       string `json:"type" binding:"required,oneof=connection analysis"`
	Message    string `json:"message" binding:"max=2000"`
	Priority   string `json:"priority" binding:"omitempty,oneof=low normal high"`
	VideoID    string `json:"videoId"`
}

type RespondRequestRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept decline"`
}

// CreateRequest sends a connection or analysis request to another user.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	senderID := currentUserID(c)
	if senderID == primitive.NilObjectID {
		return
	}

	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid receiverId format")
		return
	}
	videoID, ok := parseOptionalObjectID(req.VideoID)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid videoId format")
		return
	}

	request, err := h.requestService.Create(
		c.Request.Context(),
		senderID,
		receiverID,
		domain.RequestType(req.Type),
		req.Message,
		domain.RequestPriority(req.Priority),
		videoID,
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapRequestToResponse(request))
}

// RespondToRequest accepts or declines a pending request. Accepting a
// connection request activates the relationship; accepting an analysis
// request additionally opens a draft session.
func (h *RequestHandler) RespondToRequest(c *gin.Context) {
	var req RespondRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	responderID := currentUserID(c)
	if responderID == primitive.NilObjectID {
		return
	}
	requestID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.Respond(c.Request.Context(), requestID, responderID, req.Decision == "accept")
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapRequestToResponse(request))
}

// CancelRequest withdraws a pending request (sender only).
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	requestID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.requestService.Cancel(c.Request.Context(), requestID, callerID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request cancelled"})
}

func (h *RequestHandler) ListSentRequests(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}

	requests, err := h.requestService.ListSent(c.Request.Context(), callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapRequestsToResponse(requests))
}

// ListReceivedRequests returns the inbox: pending first, then by
// priority, newest first within a rank.
func (h *RequestHandler) ListReceivedRequests(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}

	requests, err := h.requestService.ListReceived(c.Request.Context(), callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapRequestsToResponse(requests))
}

func mapRequestsToResponse(requests []domain.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, MapRequestToResponse(&requests[i]))
	}
	return out
}
