package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/edunova/lms-api/internal/middleware"
	"github.com/edunova/lms-api/internal/models"
)

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}
