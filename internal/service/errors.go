package service

import "errors"

// Shared error taxonomy for the service layer. Handlers translate these
// into HTTP status codes; the services themselves only speak in sentinels.
//
// Entities a caller has no relationship to are reported as not found
// rather than forbidden, so probing for foreign IDs reveals nothing.
var (
	// Validation
	ErrSelfRequest        = errors.New("sender and receiver must be different users")
	ErrRolePairInvalid    = errors.New("a request must pair a coach with a student")
	ErrEmptyText          = errors.New("text must not be empty")
	ErrInvalidTimestamp   = errors.New("video timestamp is out of range")
	ErrInvalidNoteType    = errors.New("unknown note type")
	ErrInvalidStatus      = errors.New("unknown session status")
	ErrInvalidVideoRef    = errors.New("video reference must not be empty")
	ErrInvalidContentType = errors.New("content type must be a video type")

	// Not found / not yours to see
	ErrUserNotFound         = errors.New("user not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrRequestNotFound      = errors.New("request not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrVideoNotFound        = errors.New("video not found")
	ErrVideoNotInSession    = errors.New("video does not belong to this session")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrParentCommentInvalid = errors.New("parent comment does not belong to this session")
	ErrNotificationNotFound = errors.New("notification not found")

	// Visible but not permitted
	ErrNotRequestReceiver  = errors.New("only the receiver may respond to a request")
	ErrNotRequestSender    = errors.New("only the sender may cancel a request")
	ErrCommentAccessDenied = errors.New("only the author may modify this comment")

	// State conflicts
	ErrRequestNotPending       = errors.New("request has already been responded to")
	ErrDuplicatePendingRequest = errors.New("a pending request already exists between these users")
	ErrInvalidTransition       = errors.New("session status transition not permitted")
	ErrNoActiveRelationship    = errors.New("no active relationship between coach and student")

	// Degraded dependencies
	ErrPlaybackUnavailable = errors.New("playback URL could not be generated")
)
