package handlers

import (
	"errors"
	"net/http"

	"lmsplatform/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError переводит доменные ошибки в HTTP-статусы и единый конверт
// {"success": false, "message": ...}
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrCourseNotFound),
		errors.Is(err, domain.ErrReviewNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidContentID),
		errors.Is(err, domain.ErrInvalidQuestionID),
		errors.Is(err, domain.ErrNotEligible),
		errors.Is(err, domain.ErrAlreadyPurchased),
		errors.Is(err, domain.ErrUserAlreadyExists):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}

	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
}

// currentUser достает пользователя, положенного AuthMiddleware
func currentUser(c *gin.Context) *domain.User {
	return c.MustGet("user").(*domain.User)
}
