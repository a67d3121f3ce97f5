package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/edunova/lms-api/internal/models"
	appErrors "github.com/edunova/lms-api/pkg/errors"
	"github.com/edunova/lms-api/pkg/response"
)

// RequireRoles gates a route to the given roles. The gate fails closed: a
// missing or malformed principal is rejected, never waved through.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[user.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden,
				"role '"+string(user.Role)+"' is not allowed to access this route"))
			c.Abort()
			return
		}
		c.Next()
	}
}
