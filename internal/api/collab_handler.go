package api

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CollabHandler exposes comments, annotations, notes and the
// timestamp-anchored timeline query.
type CollabHandler struct {
	collabService service.CollabService
}

func NewCollabHandler(collabService service.CollabService) *CollabHandler {
	return &CollabHandler{collabService: collabService}
}

// --- DTOs ---

type AddCommentRequest struct {
	CommentText     string   `json:"commentText" binding:"required,max=5000"`
	VideoTimestamp  *float64 `json:"videoTimestamp"`
	ParentCommentID string   `json:"parentCommentId"`
	IsPrivate       bool     `json:"isPrivate"`
}

type EditCommentRequest struct {
	CommentText string `json:"commentText" binding:"required,max=5000"`
}

type AddAnnotationRequest struct {
	Type           string             `json:"type" binding:"required,oneof=line arrow circle rectangle text freehand"`
	Coordinates    domain.Coordinates `json:"coordinates" binding:"required"`
	Color          string             `json:"color" binding:"max=32"`
	Label          string             `json:"label" binding:"max=200"`
	VideoTimestamp *float64           `json:"videoTimestamp" binding:"required"`
	FrameNumber    *int               `json:"frameNumber"`
}

type AddNoteRequest struct {
	NoteType string `json:"noteType" binding:"omitempty,oneof=general technique tactical physical mental goals"`
	NoteText string `json:"noteText" binding:"required,max=5000"`
	IsShared bool   `json:"isShared"`
}

// --- Comments ---

func (h *CollabHandler) AddComment(c *gin.Context) {
	var req AddCommentRequest
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
	parentID, ok := parseOptionalObjectID(req.ParentCommentID)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid parentCommentId format")
		return
	}

	comment, err := h.collabService.AddComment(c.Request.Context(), sessionID, callerID, req.CommentText, req.VideoTimestamp, parentID, req.IsPrivate)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapCommentToResponse(comment))
}

func (h *CollabHandler) ListComments(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.collabService.ListComments(c.Request.Context(), sessionID, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapCommentsToResponse(comments))
}

func (h *CollabHandler) EditComment(c *gin.Context) {
	var req EditCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	commentID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	comment, err := h.collabService.EditComment(c.Request.Context(), commentID, callerID, req.CommentText)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapCommentToResponse(comment))
}

func (h *CollabHandler) DeleteComment(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	commentID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.collabService.DeleteComment(c.Request.Context(), commentID, callerID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// --- Annotations ---

func (h *CollabHandler) AddAnnotation(c *gin.Context) {
	var req AddAnnotationRequest
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
	videoID, ok := parseObjectIDParam(c, "videoId")
	if !ok {
		return
	}

	annotation, err := h.collabService.AddAnnotation(
		c.Request.Context(),
		sessionID,
		videoID,
		callerID,
		domain.AnnotationType(req.Type),
		req.Coordinates,
		req.Color,
		req.Label,
		*req.VideoTimestamp,
		req.FrameNumber,
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapAnnotationToResponse(annotation))
}

func (h *CollabHandler) ListAnnotations(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	videoID, ok := parseObjectIDParam(c, "videoId")
	if !ok {
		return
	}

	annotations, err := h.collabService.ListAnnotations(c.Request.Context(), sessionID, videoID, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAnnotationsToResponse(annotations))
}

// --- Notes ---

func (h *CollabHandler) AddNote(c *gin.Context) {
	var req AddNoteRequest
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

	note, err := h.collabService.AddNote(c.Request.Context(), sessionID, callerID, domain.NoteType(req.NoteType), req.NoteText, req.IsShared)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapNoteToResponse(note))
}

func (h *CollabHandler) ListNotes(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	notes, err := h.collabService.ListNotes(c.Request.Context(), sessionID, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		resp = append(resp, MapNoteToResponse(&notes[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// --- Timeline ---

// QueryTimeline returns comments and annotations anchored within half a
// second of the t query parameter (seconds) on the given video.
func (h *CollabHandler) QueryTimeline(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}
	videoID, ok := parseObjectIDParam(c, "videoId")
	if !ok {
		return
	}

	t, err := strconv.ParseFloat(c.Query("t"), 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Query parameter t must be a number of seconds")
		return
	}

	slice, err := h.collabService.QueryAtTimestamp(c.Request.Context(), sessionID, videoID, callerID, t)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timestamp":   slice.Timestamp,
		"comments":    mapCommentsToResponse(slice.Comments),
		"annotations": mapAnnotationsToResponse(slice.Annotations),
	})
}
