package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"musicschool_backend/app"
	"musicschool_backend/inventory"
	"musicschool_backend/models"
	"musicschool_backend/notify"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// identityAs stands in for the session middleware in tests.
func identityAs(role models.Role, studentID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(app.CtxUserID, "7b37a7e2-0000-4000-8000-000000000099")
		c.Set(app.CtxUsername, "test@school.test")
		c.Set(app.CtxDisplayName, "Test User")
		c.Set(app.CtxRole, string(role))
		c.Set(app.CtxStudentID, studentID)
		c.Next()
	}
}

func newTestRouter(role models.Role, studentID string) (*gin.Engine, *inventory.Registry) {
	reg := inventory.NewRegistry(nil, inventory.WithClock(func() time.Time {
		return time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)
	}))
	s := &Srv{Registry: reg, Notify: notify.Discard{}}
	ic := NewInstrumentController(s)

	r := gin.New()
	id := identityAs(role, studentID)
	staff := app.StaffOnly()

	r.GET("/api/instruments", id, ic.List)
	r.GET("/api/instruments/summary", id, ic.Summary)
	r.GET("/api/instruments/:id", id, ic.Get)
	r.POST("/api/instruments", id, staff, ic.Register)
	r.POST("/api/instruments/:id/borrow", id, ic.Borrow)
	r.POST("/api/instruments/:id/loan", id, ic.Loan)
	r.POST("/api/instruments/:id/return", id, staff, ic.Return)
	r.POST("/api/instruments/:id/renew", id, staff, ic.Renew)
	r.POST("/api/instruments/:id/maintenance", id, staff, ic.StartMaintenance)
	r.DELETE("/api/instruments/:id/maintenance", id, staff, ic.EndMaintenance)
	return r, reg
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerGuitar(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/instruments", gin.H{
		"name": "Acoustic Guitar", "type": "Guitar", "brand": "Fender",
		"condition": "good", "location": "Room B",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var got struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotEmpty(t, got.ID)
	return got.ID
}

func TestRegisterAndGet(t *testing.T) {
	r, _ := newTestRouter(models.RoleTeacher, "")
	id := registerGuitar(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/instruments/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "available", got["status"])
	assert.Equal(t, false, got["isOverdue"])
}

func TestRegisterValidationMapsTo400(t *testing.T) {
	r, _ := newTestRouter(models.RoleAdmin, "")
	w := doJSON(t, r, http.MethodPost, "/api/instruments", gin.H{
		"name": "Guitar", "type": "Guitar", "condition": "shiny", "location": "Room B",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBorrowFlowOverHTTP(t *testing.T) {
	r, _ := newTestRouter(models.RoleTeacher, "")
	id := registerGuitar(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/borrow", gin.H{
		"studentName": "Thabo Ndlovu", "studentId": "S1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "borrowed", got["status"])
	assert.Equal(t, "borrowed", got["loanType"])
	assert.Equal(t, "Thabo Ndlovu", got["borrowedBy"])
	assert.NotEmpty(t, got["dueDate"])

	// Double checkout maps to 409.
	w = doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/borrow", gin.H{
		"studentName": "Zanele", "studentId": "S2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Return, then the second return is a 409 too.
	w = doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/return", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/return", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBorrowValidationMapsTo400(t *testing.T) {
	r, _ := newTestRouter(models.RoleTeacher, "")
	id := registerGuitar(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/borrow", gin.H{"studentId": "S1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownInstrumentMapsTo404(t *testing.T) {
	r, _ := newTestRouter(models.RoleTeacher, "")
	w := doJSON(t, r, http.MethodPost, "/api/instruments/nope/borrow", gin.H{
		"studentName": "Thabo", "studentId": "S1",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenewOnBorrowMapsTo409(t *testing.T) {
	r, _ := newTestRouter(models.RoleTeacher, "")
	id := registerGuitar(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/borrow", gin.H{
		"studentName": "Thabo", "studentId": "S1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/renew", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoanAndRenewOverHTTP(t *testing.T) {
	r, _ := newTestRouter(models.RoleAdmin, "")
	id := registerGuitar(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/loan", gin.H{
		"studentName": "Zanele Mthembu", "studentId": "S2", "durationMonths": 6,
		"parentGuardianName": "Mary", "parentGuardianContact": "+27 82 000 0000",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "loaned", got["status"])
	assert.Equal(t, "Off-site", got["location"])
	firstEnd := got["loanEndDate"]

	w = doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/renew", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEqual(t, firstEnd, got["loanEndDate"])
	assert.Equal(t, float64(1), got["renewalCount"])
}

func TestLoanBadDurationMapsTo400(t *testing.T) {
	r, _ := newTestRouter(models.RoleTeacher, "")
	id := registerGuitar(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/loan", gin.H{
		"studentName": "Zanele", "studentId": "S2", "durationMonths": 5,
		"parentGuardianName": "Mary", "parentGuardianContact": "+27",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentsCheckOutOnlyForThemselves(t *testing.T) {
	staffRouter, reg := newTestRouter(models.RoleTeacher, "")
	id := registerGuitar(t, staffRouter)

	// Same registry, student identity.
	s := &Srv{Registry: reg, Notify: notify.Discard{}}
	ic := NewInstrumentController(s)
	student := gin.New()
	idMW := identityAs(models.RoleStudent, "S1")
	student.POST("/api/instruments/:id/borrow", idMW, ic.Borrow)
	student.POST("/api/instruments/:id/return", idMW, app.StaffOnly(), ic.Return)

	// Someone else's student id: rejected.
	w := doJSON(t, student, http.MethodPost, "/api/instruments/"+id+"/borrow", gin.H{
		"studentName": "Zanele", "studentId": "S2",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Their own: allowed.
	w = doJSON(t, student, http.MethodPost, "/api/instruments/"+id+"/borrow", gin.H{
		"studentName": "Thabo Ndlovu", "studentId": "S1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Return is staff-only.
	w = doJSON(t, student, http.MethodPost, "/api/instruments/"+id+"/return", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListFiltersAndSummary(t *testing.T) {
	r, _ := newTestRouter(models.RoleTeacher, "")
	guitar := registerGuitar(t, r)
	doJSON(t, r, http.MethodPost, "/api/instruments", gin.H{
		"name": "Violin", "type": "String", "condition": "good", "location": "Storage Room",
	})

	w := doJSON(t, r, http.MethodPost, "/api/instruments/"+guitar+"/borrow", gin.H{
		"studentName": "Thabo", "studentId": "S1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/instruments?status=borrowed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total       int `json:"total"`
		Instruments []struct {
			Name string `json:"name"`
		} `json:"instruments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Acoustic Guitar", list.Instruments[0].Name)

	w = doJSON(t, r, http.MethodGet, "/api/instruments?q=violin", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	w = doJSON(t, r, http.MethodGet, "/api/instruments/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sum inventory.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Borrowed)
	assert.Equal(t, 1, sum.Available)
}

func TestMaintenanceEndpoints(t *testing.T) {
	r, _ := newTestRouter(models.RoleAdmin, "")
	id := registerGuitar(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/maintenance", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "maintenance", got["status"])

	// Not borrowable while under repair.
	w = doJSON(t, r, http.MethodPost, "/api/instruments/"+id+"/borrow", gin.H{
		"studentName": "Thabo", "studentId": "S1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/instruments/"+id+"/maintenance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "available", got["status"])
}
