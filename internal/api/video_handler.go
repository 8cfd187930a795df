package api

import (
	"coachvision/analysis-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VideoHandler struct {
	mediaService service.MediaService
}

func NewVideoHandler(mediaService service.MediaService) *VideoHandler {
	return &VideoHandler{mediaService: mediaService}
}

// --- DTOs ---

type AttachVideoRequest struct {
	// VideoRef is either the objectKey returned by the upload-url
	// endpoint or a full external https URL.
	VideoRef        string   `json:"videoRef" binding:"required,max=2048"`
	Title           string   `json:"title" binding:"max=200"`
	Description     string   `json:"description" binding:"max=2000"`
	DurationSeconds *float64 `json:"durationSeconds"`
}

type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// AttachVideo registers a video under a session.
func (h *VideoHandler) AttachVideo(c *gin.Context) {
	var req AttachVideoRequest
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

	video, err := h.mediaService.AttachVideo(c.Request.Context(), sessionID, callerID, req.VideoRef, req.Title, req.Description, req.DurationSeconds)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapVideoToResponse(video, "", false))
}

// RequestUploadURL presigns a direct-to-storage PUT for a new video.
func (h *VideoHandler) RequestUploadURL(c *gin.Context) {
	var req UploadURLRequest
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

	target, err := h.mediaService.RequestUploadURL(c.Request.Context(), sessionID, callerID, req.ContentType)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

// ListVideos lists a session's videos without resolving playback URLs;
// the session detail endpoint does the resolution.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	sessionID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	videos, err := h.mediaService.ListVideos(c.Request.Context(), sessionID, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]VideoResponse, 0, len(videos))
	for i := range videos {
		resp = append(resp, MapVideoToResponse(&videos[i], "", false))
	}
	c.JSON(http.StatusOK, resp)
}

// GetPlaybackURL resolves a fresh time-limited playback URL for one
// video, for players refreshing an expired URL.
func (h *VideoHandler) GetPlaybackURL(c *gin.Context) {
	callerID := currentUserID(c)
	if callerID == primitive.NilObjectID {
		return
	}
	videoID, ok := parseObjectIDParam(c, "id")
	if !ok {
		return
	}

	url, err := h.mediaService.ResolvePlaybackURL(c.Request.Context(), videoID, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"playbackUrl": url})
}
