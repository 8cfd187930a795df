package api

import (
	"coachvision/analysis-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	relationshipService service.RelationshipService,
	requestService service.RequestService,
	sessionService service.SessionService,
	mediaService service.MediaService,
	collabService service.CollabService,
	notificationService service.NotificationService,
) {
	relationshipHandler := NewRelationshipHandler(relationshipService)
	requestHandler := NewRequestHandler(requestService)
	sessionHandler := NewSessionHandler(sessionService)
	videoHandler := NewVideoHandler(mediaService)
	collabHandler := NewCollabHandler(collabService)
	notificationHandler := NewNotificationHandler(notificationService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		relationshipGroup := protected.Group("/relationships")
		{
			relationshipGroup.POST("", relationshipHandler.CreateRelationship)
			relationshipGroup.GET("", relationshipHandler.ListRelationships)
			relationshipGroup.GET("/:id", relationshipHandler.GetRelationship)
			relationshipGroup.DELETE("/:id", relationshipHandler.EndRelationship)
		}

		requestGroup := protected.Group("/requests")
		{
			requestGroup.POST("", requestHandler.CreateRequest)
			requestGroup.GET("/sent", requestHandler.ListSentRequests)
			requestGroup.GET("/received", requestHandler.ListReceivedRequests)
			requestGroup.POST("/:id/respond", requestHandler.RespondToRequest)
			requestGroup.DELETE("/:id", requestHandler.CancelRequest)
		}

		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", sessionHandler.CreateSession)
			sessionGroup.GET("", sessionHandler.ListSessions)
			sessionGroup.GET("/:id", sessionHandler.GetSession)
			sessionGroup.PATCH("/:id/status", sessionHandler.UpdateSessionStatus)

			sessionGroup.POST("/:id/progress", sessionHandler.RecordProgress)
			sessionGroup.GET("/:id/progress", sessionHandler.ListProgress)

			sessionGroup.POST("/:id/videos", videoHandler.AttachVideo)
			sessionGroup.GET("/:id/videos", videoHandler.ListVideos)
			sessionGroup.POST("/:id/videos/upload-url", videoHandler.RequestUploadURL)

			sessionGroup.POST("/:id/comments", collabHandler.AddComment)
			sessionGroup.GET("/:id/comments", collabHandler.ListComments)

			sessionGroup.POST("/:id/videos/:videoId/annotations", collabHandler.AddAnnotation)
			sessionGroup.GET("/:id/videos/:videoId/annotations", collabHandler.ListAnnotations)
			sessionGroup.GET("/:id/videos/:videoId/timeline", collabHandler.QueryTimeline)

			sessionGroup.POST("/:id/notes", collabHandler.AddNote)
			sessionGroup.GET("/:id/notes", collabHandler.ListNotes)
		}

		commentGroup := protected.Group("/comments")
		{
			commentGroup.PUT("/:id", collabHandler.EditComment)
			commentGroup.DELETE("/:id", collabHandler.DeleteComment)
		}

		videoGroup := protected.Group("/videos")
		{
			videoGroup.GET("/:id/playback-url", videoHandler.GetPlaybackURL)
		}

		notificationGroup := protected.Group("/notifications")
		{
			notificationGroup.GET("", notificationHandler.ListNotifications)
			notificationGroup.POST("/:id/read", notificationHandler.MarkNotificationRead)
			notificationGroup.POST("/read-all", notificationHandler.MarkAllNotificationsRead)
		}
	}
}
