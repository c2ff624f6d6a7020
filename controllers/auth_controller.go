// controllers/auth_controller.go
package controllers

import (
	"net/http"

	"musicschool_backend/app"
	"musicschool_backend/models"
	"musicschool_backend/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// Demo identities for the memory-only mode, matching the database seed.
// Credential verification belongs to the identity provider, not this service.
var demoUsers = map[string]models.User{
	"admin@school.test":   {ID: "2b1f6a1e-0000-4000-8000-000000000001", Username: "admin@school.test", DisplayName: "Admin", Role: models.RoleAdmin},
	"teacher@school.test": {ID: "2b1f6a1e-0000-4000-8000-000000000002", Username: "teacher@school.test", DisplayName: "Teacher", Role: models.RoleTeacher},
	"thabo@school.test":   {ID: "2b1f6a1e-0000-4000-8000-000000000003", Username: "thabo@school.test", DisplayName: "Thabo Ndlovu", Role: models.RoleStudent, StudentID: "S1"},
	"zanele@school.test":  {ID: "2b1f6a1e-0000-4000-8000-000000000004", Username: "zanele@school.test", DisplayName: "Zanele Mthembu", Role: models.RoleStudent, StudentID: "S2"},
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "username is required"})
		return
	}

	var u *models.User
	if ac.Repo != nil {
		found, err := ac.Repo.FindUserByUsername(c.Request.Context(), in.Username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, app.H{"error": "unknown user"})
			return
		}
		u = found
	} else {
		du, ok := demoUsers[in.Username]
		if !ok {
			c.JSON(http.StatusUnauthorized, app.H{"error": "unknown user"})
			return
		}
		u = &du
	}

	sid := uuid.NewString()
	err := ac.AppSess.Create(c.Request.Context(), sid, session.AppSession{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		StudentID:   u.StudentID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "could not create session"})
		return
	}
	if ac.Repo != nil {
		_ = ac.Repo.TouchUserLogin(c.Request.Context(), u.ID, c.ClientIP(), c.Request.UserAgent())
	}
	ac.setAppCookie(c.Writer, sid, ac.Cfg.SessionTTL)
	c.JSON(http.StatusOK, app.H{"user": u})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = ac.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/auth/whoami
func (ac *AuthController) Whoami(c *gin.Context) {
	uid, name := actor(c)
	c.JSON(http.StatusOK, app.H{
		"userID":      uid,
		"displayName": name,
		"role":        app.RoleOf(c),
	})
}
