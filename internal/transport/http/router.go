package handlers

import (
	"time"

	"lmsplatform/internal/domain"
	"lmsplatform/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(
	courseHandler *CourseHandler,
	userHandler *UserHandler,
	orderHandler *OrderHandler,
	notificationHandler *NotificationHandler,
	auth gin.HandlerFunc,
	limiter *middleware.RateLimiter,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		// Публичные ручки
		api.POST("/registration", userHandler.Register)
		api.POST("/login", limiter.Limit("login", 5, 1*time.Minute), userHandler.Login)
		api.POST("/refresh", userHandler.Refresh)
		api.POST("/logout", userHandler.Logout)
		api.GET("/get-course/:id", courseHandler.GetOne)
		api.GET("/get-courses", courseHandler.List)

		authed := api.Group("")
		authed.Use(auth)
		{
			authed.GET("/me", userHandler.GetProfile)
			authed.PUT("/update-user-avatar", userHandler.UpdateAvatar)

			authed.GET("/get-course-content/:id", courseHandler.GetContent)
			authed.PUT("/add-question", courseHandler.AddQuestion)
			authed.PUT("/add-answer", courseHandler.AddAnswer)
			authed.PUT("/add-review/:id", courseHandler.AddReview)
			authed.POST("/getVdoCipherOTP", courseHandler.VideoOTP)

			authed.POST("/create-order", orderHandler.Create)

			admin := authed.Group("")
			admin.Use(middleware.RequireRole(domain.RoleAdmin))
			{
				admin.POST("/create-course", courseHandler.Create)
				admin.PUT("/edit-course/:id", courseHandler.Edit)
				admin.DELETE("/delete-course/:id", courseHandler.Delete)
				admin.PUT("/add-reply", courseHandler.AddReviewReply)
				admin.GET("/get-admin-courses", courseHandler.AdminList)
				admin.GET("/get-orders", orderHandler.List)
				admin.GET("/get-all-notifications", notificationHandler.List)
				admin.PUT("/update-notification/:id", notificationHandler.MarkRead)
			}
		}
	}

	return r
}
