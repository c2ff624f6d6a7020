package app

import (
	"net/http"

	"musicschool_backend/db"
	"musicschool_backend/models"
	"musicschool_backend/session"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// Context keys set by AuthRequired.
const (
	CtxUserID      = "userID"
	CtxUsername    = "username"
	CtxDisplayName = "displayName"
	CtxRole        = "role"
	CtxStudentID   = "studentID"
)

// AuthRequired resolves the session cookie into the acting identity. With a
// database configured it also confirms the account still exists, so a deleted
// user's leftover session dies on first use.
func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		if repo != nil {
			if _, err := repo.FindUserByID(c.Request.Context(), as.UserID); err != nil {
				_ = appSess.Delete(c.Request.Context(), ck.Value)
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
				return
			}
		}

		c.Set(CtxUserID, as.UserID)
		c.Set(CtxUsername, as.Username)
		c.Set(CtxDisplayName, as.DisplayName)
		c.Set(CtxRole, as.Role)
		c.Set(CtxStudentID, as.StudentID)
		c.Next()
	}
}

// RoleOf reads the acting user's role out of the request context.
func RoleOf(c *gin.Context) models.Role {
	v, _ := c.Get(CtxRole)
	r, _ := v.(string)
	return models.Role(r)
}

// RequireRole gates a route group to the given roles. The lending registry
// itself is role-agnostic; this middleware is the single place authorization
// happens.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actual := RoleOf(c)
		for _, r := range roles {
			if actual == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
	}
}

// StaffOnly covers the operations the spec reserves for teachers and admins:
// register, return, renew and the maintenance flow.
func StaffOnly() gin.HandlerFunc {
	return RequireRole(models.RoleTeacher, models.RoleAdmin)
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
