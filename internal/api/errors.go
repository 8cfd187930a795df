package api

import (
	"coachvision/analysis-app/internal/domain"
	"coachvision/analysis-app/internal/logger"
	"coachvision/analysis-app/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleServiceError maps the service error taxonomy onto HTTP statuses:
// validation -> 400, missing/hidden -> 404, visible-but-not-permitted ->
// 403, state conflicts -> 409, degraded storage -> 503. Anything
// unrecognized is a 500 and gets logged.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSelfRequest),
		errors.Is(err, service.ErrRolePairInvalid),
		errors.Is(err, service.ErrEmptyText),
		errors.Is(err, service.ErrInvalidTimestamp),
		errors.Is(err, service.ErrInvalidNoteType),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidVideoRef),
		errors.Is(err, service.ErrInvalidContentType),
		errors.Is(err, service.ErrParentCommentInvalid),
		errors.Is(err, domain.ErrInvalidGeometry),
		errors.Is(err, domain.ErrUnknownAnnotationType):
		abortWithError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRelationshipNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrVideoNotFound),
		errors.Is(err, service.ErrVideoNotInSession),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrNotificationNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrNotRequestReceiver),
		errors.Is(err, service.ErrNotRequestSender),
		errors.Is(err, service.ErrCommentAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrRequestNotPending),
		errors.Is(err, service.ErrDuplicatePendingRequest),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNoActiveRelationship):
		abortWithError(c, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrPlaybackUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())

	default:
		logger.Error("unhandled service error", "path", c.FullPath(), "error", err)
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
