// controllers/srv.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"musicschool_backend/app"
	"musicschool_backend/db"
	"musicschool_backend/inventory"
	"musicschool_backend/models"
	"musicschool_backend/notify"
	"musicschool_backend/session"

	"github.com/gin-gonic/gin"
)

type Srv struct {
	Registry  *inventory.Registry
	Repo      *db.Repo // nil in memory-only mode
	AppSess   *session.AppSessionStore
	Notify    notify.Sink
	WebOrigin string
	Cfg       app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Registry:  a.Registry,
		Repo:      a.Repo,
		AppSess:   a.AppSessions(),
		Notify:    notify.NewLogSink(),
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// --- helpers ---

func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// statusFor maps the registry error taxonomy onto HTTP. Bodies stay plain
// messages; internal structure is never exposed.
func statusFor(err error) int {
	switch {
	case errors.Is(err, inventory.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, inventory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrInvalidStateTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Srv) fail(c *gin.Context, err error) {
	s.Notify.Failure(err.Error())
	c.JSON(statusFor(err), app.H{"error": err.Error()})
}

func actor(c *gin.Context) (id, name string) {
	if v, ok := c.Get(app.CtxUserID); ok {
		id, _ = v.(string)
	}
	if v, ok := c.Get(app.CtxDisplayName); ok {
		name, _ = v.(string)
	}
	return id, name
}

// appendEvent writes one ledger row. Ledger failure never rolls back a
// committed lending operation; it is logged and surfaced via metrics only.
func (s *Srv) appendEvent(c *gin.Context, ev *models.LoanEvent) {
	if s.Repo == nil {
		return
	}
	if err := s.Repo.AppendLoanEvent(c.Request.Context(), ev); err != nil {
		log.Printf("append loan event for %s: %v", ev.InstrumentID, err)
	}
}
