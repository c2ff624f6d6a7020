// controllers/instrument_controller.go
package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"musicschool_backend/app"
	"musicschool_backend/db"
	"musicschool_backend/inventory"
	"musicschool_backend/metrics"
	"musicschool_backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InstrumentController struct{ *Srv }

func NewInstrumentController(s *Srv) *InstrumentController { return &InstrumentController{Srv: s} }

// instrumentView is the API shape of one record: the stored fields plus the
// two predicates evaluated at request time.
type instrumentView struct {
	models.Instrument
	IsOverdue    bool `json:"isOverdue"`
	NeedsRenewal bool `json:"needsRenewal"`
}

func (ic *InstrumentController) view(inst models.Instrument) instrumentView {
	now := ic.Registry.Now()
	return instrumentView{
		Instrument:   inst,
		IsOverdue:    inventory.IsOverdue(&inst, now),
		NeedsRenewal: inventory.NeedsRenewal(&inst, now),
	}
}

// GET /api/instruments?q=&status=&loanType=
func (ic *InstrumentController) List(c *gin.Context) {
	f := inventory.Filter{
		Search:   c.Query("q"),
		Status:   c.Query("status"),
		LoanType: c.Query("loanType"),
	}
	out := []instrumentView{}
	for inst := range ic.Registry.Filter(f) {
		out = append(out, ic.view(inst))
	}
	c.JSON(http.StatusOK, app.H{"instruments": out, "total": len(out)})
}

// GET /api/instruments/summary
func (ic *InstrumentController) Summary(c *gin.Context) {
	s := ic.Registry.Summary(ic.Registry.Now())
	metrics.ObserveSummary(s)
	c.JSON(http.StatusOK, s)
}

// GET /api/instruments/:id
func (ic *InstrumentController) Get(c *gin.Context) {
	inst, err := ic.Registry.Get(c.Param("id"))
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ic.view(inst))
}

type registerRequest struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	SerialNumber string `json:"serialNumber"`
	Condition    string `json:"condition"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
}

// POST /api/instruments  (staff)
func (ic *InstrumentController) Register(c *gin.Context) {
	var in registerRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	inst, err := ic.Registry.Register(c.Request.Context(), inventory.RegisterInput{
		Name:         in.Name,
		Type:         in.Type,
		Brand:        in.Brand,
		Model:        in.Model,
		SerialNumber: in.SerialNumber,
		Condition:    models.Condition(in.Condition),
		Location:     in.Location,
		Notes:        in.Notes,
	})
	metrics.RecordOperation("register", err)
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.Notify.Success(fmt.Sprintf("Registered %q", inst.Name))
	c.JSON(http.StatusCreated, ic.view(inst))
}

type borrowRequest struct {
	StudentName string `json:"studentName"`
	StudentID   string `json:"studentId"`
}

// POST /api/instruments/:id/borrow — same-day checkout. Students may only
// check out against their own student id; staff can act for any student.
func (ic *InstrumentController) Borrow(c *gin.Context) {
	var in borrowRequest
	_ = c.ShouldBindJSON(&in)

	if !ic.allowSelfCheckout(c, in.StudentID) {
		return
	}

	inst, err := ic.Registry.Borrow(c.Request.Context(), c.Param("id"), in.StudentName, in.StudentID)
	metrics.RecordOperation("borrow", err)
	if err != nil {
		ic.fail(c, err)
		return
	}

	actorID, actorName := actor(c)
	lt := models.LoanTypeBorrowed
	ic.appendEvent(c, &models.LoanEvent{
		ID:           uuid.NewString(),
		InstrumentID: inst.ID,
		Action:       models.ActionBorrow,
		LoanType:     &lt,
		StudentName:  in.StudentName,
		StudentID:    in.StudentID,
		DueDate:      inst.DueDate,
		ActorID:      actorID,
		ActorName:    actorName,
	})
	ic.Notify.Success(fmt.Sprintf("%q borrowed by %s, due back today", inst.Name, in.StudentName))
	c.JSON(http.StatusOK, ic.view(inst))
}

type loanRequest struct {
	StudentName     string `json:"studentName"`
	StudentID       string `json:"studentId"`
	DurationMonths  int    `json:"durationMonths"`
	GuardianName    string `json:"parentGuardianName"`
	GuardianContact string `json:"parentGuardianContact"`
}

// POST /api/instruments/:id/loan — long-term checkout.
func (ic *InstrumentController) Loan(c *gin.Context) {
	var in loanRequest
	_ = c.ShouldBindJSON(&in)

	if !ic.allowSelfCheckout(c, in.StudentID) {
		return
	}

	inst, err := ic.Registry.Loan(c.Request.Context(), c.Param("id"), inventory.LoanInput{
		StudentName:     in.StudentName,
		StudentID:       in.StudentID,
		DurationMonths:  in.DurationMonths,
		GuardianName:    in.GuardianName,
		GuardianContact: in.GuardianContact,
	})
	metrics.RecordOperation("loan", err)
	if err != nil {
		ic.fail(c, err)
		return
	}

	actorID, actorName := actor(c)
	lt := models.LoanTypeLoaned
	ic.appendEvent(c, &models.LoanEvent{
		ID:           uuid.NewString(),
		InstrumentID: inst.ID,
		Action:       models.ActionLoan,
		LoanType:     &lt,
		StudentName:  in.StudentName,
		StudentID:    in.StudentID,
		LoanEndDate:  inst.LoanEndDate,
		ActorID:      actorID,
		ActorName:    actorName,
	})
	ic.Notify.Success(fmt.Sprintf("%q loaned to %s for %d months", inst.Name, in.StudentName, in.DurationMonths))
	c.JSON(http.StatusOK, ic.view(inst))
}

// POST /api/instruments/:id/return  (staff)
func (ic *InstrumentController) Return(c *gin.Context) {
	// Capture the borrower before Return clears the record; the ledger row
	// is the only surviving trace of who had it.
	prev, _ := ic.Registry.Get(c.Param("id"))

	inst, err := ic.Registry.Return(c.Request.Context(), c.Param("id"))
	metrics.RecordOperation("return", err)
	if err != nil {
		ic.fail(c, err)
		return
	}

	actorID, actorName := actor(c)
	ev := &models.LoanEvent{
		ID:           uuid.NewString(),
		InstrumentID: inst.ID,
		Action:       models.ActionReturn,
		LoanType:     prev.LoanType,
		ActorID:      actorID,
		ActorName:    actorName,
	}
	if prev.BorrowedBy != nil {
		ev.StudentName = *prev.BorrowedBy
	}
	if prev.BorrowedByStudentID != nil {
		ev.StudentID = *prev.BorrowedByStudentID
	}
	ic.appendEvent(c, ev)
	ic.Notify.Success(fmt.Sprintf("%q returned to %s", inst.Name, inst.Location))
	c.JSON(http.StatusOK, ic.view(inst))
}

// POST /api/instruments/:id/renew  (staff)
func (ic *InstrumentController) Renew(c *gin.Context) {
	inst, err := ic.Registry.Renew(c.Request.Context(), c.Param("id"))
	metrics.RecordOperation("renew", err)
	if err != nil {
		ic.fail(c, err)
		return
	}

	actorID, actorName := actor(c)
	ev := &models.LoanEvent{
		ID:           uuid.NewString(),
		InstrumentID: inst.ID,
		Action:       models.ActionRenew,
		LoanType:     inst.LoanType,
		LoanEndDate:  inst.LoanEndDate,
		ActorID:      actorID,
		ActorName:    actorName,
	}
	if inst.BorrowedBy != nil {
		ev.StudentName = *inst.BorrowedBy
	}
	if inst.BorrowedByStudentID != nil {
		ev.StudentID = *inst.BorrowedByStudentID
	}
	ic.appendEvent(c, ev)
	ic.Notify.Success(fmt.Sprintf("%q loan renewed until %s", inst.Name, inst.LoanEndDate.Format("2006-01-02")))
	c.JSON(http.StatusOK, ic.view(inst))
}

// POST /api/instruments/:id/maintenance  (staff)
func (ic *InstrumentController) StartMaintenance(c *gin.Context) {
	inst, err := ic.Registry.MarkMaintenance(c.Request.Context(), c.Param("id"))
	metrics.RecordOperation("maintenance", err)
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.Notify.Success(fmt.Sprintf("%q sent to maintenance", inst.Name))
	c.JSON(http.StatusOK, ic.view(inst))
}

// DELETE /api/instruments/:id/maintenance  (staff)
func (ic *InstrumentController) EndMaintenance(c *gin.Context) {
	inst, err := ic.Registry.EndMaintenance(c.Request.Context(), c.Param("id"))
	metrics.RecordOperation("maintenance_end", err)
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.Notify.Success(fmt.Sprintf("%q back in circulation", inst.Name))
	c.JSON(http.StatusOK, ic.view(inst))
}

// GET /api/instruments/:id/history
func (ic *InstrumentController) History(c *gin.Context) {
	ic.listEvents(c, db.LoanEventsQuery{InstrumentID: c.Param("id")})
}

// GET /api/loans/events?instrumentId=&studentId=&action=  (staff)
func (ic *InstrumentController) ListEvents(c *gin.Context) {
	ic.listEvents(c, db.LoanEventsQuery{
		InstrumentID: c.Query("instrumentId"),
		StudentID:    c.Query("studentId"),
		Action:       c.Query("action"),
	})
}

func (ic *InstrumentController) listEvents(c *gin.Context, q db.LoanEventsQuery) {
	if ic.Repo == nil {
		// Memory-only mode keeps no ledger.
		c.JSON(http.StatusOK, app.H{"total": 0, "events": []models.LoanEvent{}})
		return
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "50"))
	res, err := ic.Repo.ListLoanEvents(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// allowSelfCheckout enforces the student half of the policy gate: a student
// may borrow or loan only against their own student id. Writes the response
// and returns false on rejection.
func (ic *InstrumentController) allowSelfCheckout(c *gin.Context, studentID string) bool {
	if app.RoleOf(c) != models.RoleStudent {
		return true
	}
	v, _ := c.Get(app.CtxStudentID)
	own, _ := v.(string)
	if own == "" || own != studentID {
		c.JSON(http.StatusForbidden, app.H{"error": "students may only check out instruments for themselves"})
		return false
	}
	return true
}
