// Package inventory implements the instrument lending registry: the record
// set, the available/borrowed/loaned/maintenance lifecycle, due-date and
// renewal arithmetic, and the derived overdue / needs-renewal predicates.
//
// The registry is in-memory and role-agnostic. Every operation is synchronous
// and either fully applies or returns an error with the registry unchanged;
// who may call what is decided by the policy middleware in front of it, and
// durability is delegated to an optional Store written through on commit.
package inventory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"musicschool_backend/models"

	"github.com/google/uuid"
)

const (
	// OffSiteLocation is recorded while an instrument is out on a long-term
	// loan. Same-day borrows never relocate the instrument.
	OffSiteLocation = "Off-site"

	// DefaultHomeLocation is where off-site instruments are shelved on return.
	DefaultHomeLocation = "Storage Room"
)

// Store is the durability hook called inside each mutating operation, before
// the in-memory commit. A nil Store keeps the registry memory-only (state is
// lost on restart).
type Store interface {
	SaveInstrument(ctx context.Context, inst models.Instrument) error
}

// Registry owns the instrument records. Safe for concurrent use; each
// mutating operation holds the write lock for its whole check-then-act
// sequence, which is what keeps "at most one active loan per instrument"
// race-free.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*models.Instrument
	order []string // registration order

	store        Store
	now          func() time.Time
	homeLocation string
}

type Option func(*Registry)

// WithClock replaces the registry's time source. Tests pin it to exercise the
// due-date and renewal laws at exact instants.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithHomeLocation overrides where off-site instruments land on return.
func WithHomeLocation(loc string) Option {
	return func(r *Registry) { r.homeLocation = loc }
}

func NewRegistry(store Store, opts ...Option) *Registry {
	r := &Registry{
		byID:         make(map[string]*models.Instrument),
		store:        store,
		now:          time.Now,
		homeLocation: DefaultHomeLocation,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterInput carries the descriptive fields of a new instrument.
// Name, Type, Condition and Location are required.
type RegisterInput struct {
	Name         string
	Type         string
	Brand        string
	Model        string
	SerialNumber string
	Condition    models.Condition
	Location     string
	Notes        string
}

// LoanInput carries the borrower and consent fields of a long-term loan.
type LoanInput struct {
	StudentName     string
	StudentID       string
	DurationMonths  int
	GuardianName    string
	GuardianContact string
}

// Register adds a new instrument in state available. Duplicate names/serials
// are allowed: two physical violins may legitimately share both.
func (r *Registry) Register(ctx context.Context, in RegisterInput) (models.Instrument, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Instrument{}, validationErr("name is required")
	}
	if strings.TrimSpace(in.Type) == "" {
		return models.Instrument{}, validationErr("type is required")
	}
	if !models.ValidCondition(in.Condition) {
		return models.Instrument{}, validationErr("condition must be one of excellent, good, fair, needs-repair")
	}
	if strings.TrimSpace(in.Location) == "" {
		return models.Instrument{}, validationErr("location is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	inst := &models.Instrument{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Type:         in.Type,
		Brand:        in.Brand,
		Model:        in.Model,
		SerialNumber: in.SerialNumber,
		Condition:    in.Condition,
		Location:     in.Location,
		Status:       models.StatusAvailable,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.commit(ctx, inst); err != nil {
		return models.Instrument{}, err
	}
	r.order = append(r.order, inst.ID)
	return *inst, nil
}

// Borrow checks an instrument out for the rest of the current calendar day.
// The instrument stays on premises and is due back by 23:59:59.999 of the
// borrow day; there is no extension in this mode.
func (r *Registry) Borrow(ctx context.Context, id, studentName, studentID string) (models.Instrument, error) {
	if strings.TrimSpace(studentName) == "" {
		return models.Instrument{}, validationErr("student name is required")
	}
	if strings.TrimSpace(studentID) == "" {
		return models.Instrument{}, validationErr("student id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.lookup(id)
	if err != nil {
		return models.Instrument{}, err
	}
	if inst.Status != models.StatusAvailable {
		return models.Instrument{}, transitionErr("instrument not available")
	}

	now := r.now()
	due := EndOfDay(now)
	lt := models.LoanTypeBorrowed
	inst.Status = models.StatusBorrowed
	inst.LoanType = &lt
	inst.BorrowedBy = &studentName
	inst.BorrowedByStudentID = &studentID
	inst.BorrowedAt = &now
	inst.DueDate = &due
	inst.UpdatedAt = now

	if err := r.commit(ctx, inst); err != nil {
		return models.Instrument{}, err
	}
	return *inst, nil
}

// Loan checks an instrument out long-term. Months are counted as 30-day
// blocks and the renewal date starts equal to the end date; the instrument is
// relocated off-site for the duration.
func (r *Registry) Loan(ctx context.Context, id string, in LoanInput) (models.Instrument, error) {
	if strings.TrimSpace(in.StudentName) == "" {
		return models.Instrument{}, validationErr("student name is required")
	}
	if strings.TrimSpace(in.StudentID) == "" {
		return models.Instrument{}, validationErr("student id is required")
	}
	if in.DurationMonths != 3 && in.DurationMonths != 6 && in.DurationMonths != 12 {
		return models.Instrument{}, validationErr("loan duration must be 3, 6 or 12 months")
	}
	if strings.TrimSpace(in.GuardianName) == "" {
		return models.Instrument{}, validationErr("parent/guardian name is required")
	}
	if strings.TrimSpace(in.GuardianContact) == "" {
		return models.Instrument{}, validationErr("parent/guardian contact is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.lookup(id)
	if err != nil {
		return models.Instrument{}, err
	}
	if inst.Status != models.StatusAvailable {
		return models.Instrument{}, transitionErr("instrument not available")
	}

	now := r.now()
	end := loanEnd(now, in.DurationMonths)
	lt := models.LoanTypeLoaned
	inst.Status = models.StatusLoaned
	inst.LoanType = &lt
	inst.BorrowedBy = &in.StudentName
	inst.BorrowedByStudentID = &in.StudentID
	inst.BorrowedAt = &now
	inst.LoanStartDate = &now
	inst.LoanEndDate = &end
	renewal := end
	inst.RenewalDate = &renewal
	inst.ParentGuardianName = &in.GuardianName
	inst.ParentGuardianContact = &in.GuardianContact
	inst.RenewalCount = 0
	inst.Location = OffSiteLocation
	inst.UpdatedAt = now

	if err := r.commit(ctx, inst); err != nil {
		return models.Instrument{}, err
	}
	return *inst, nil
}

// Return puts a checked-out instrument back in state available, clearing the
// borrower, due-date and guardian fields together. Only off-site instruments
// are relocated on return; a same-day borrow keeps whatever room it was
// recorded in.
func (r *Registry) Return(ctx context.Context, id string) (models.Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.lookup(id)
	if err != nil {
		return models.Instrument{}, err
	}
	if !inst.CheckedOut() {
		return models.Instrument{}, transitionErr("instrument is not checked out")
	}

	inst.Status = models.StatusAvailable
	inst.LoanType = nil
	inst.BorrowedBy = nil
	inst.BorrowedByStudentID = nil
	inst.BorrowedAt = nil
	inst.DueDate = nil
	inst.LoanStartDate = nil
	inst.LoanEndDate = nil
	inst.RenewalDate = nil
	inst.ParentGuardianName = nil
	inst.ParentGuardianContact = nil
	inst.RenewalCount = 0
	if inst.Location == OffSiteLocation {
		inst.Location = r.homeLocation
	}
	inst.UpdatedAt = r.now()

	if err := r.commit(ctx, inst); err != nil {
		return models.Instrument{}, err
	}
	return *inst, nil
}

// Renew extends a long-term loan by one year, chained from the current end
// date rather than from now: renewing late does not reset the clock to today
// plus one year, and renewing early does not forfeit the remaining term.
// Same-day borrows cannot be renewed.
func (r *Registry) Renew(ctx context.Context, id string) (models.Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.lookup(id)
	if err != nil {
		return models.Instrument{}, err
	}
	if inst.LoanType == nil || *inst.LoanType != models.LoanTypeLoaned {
		return models.Instrument{}, transitionErr("only long-term loans can be renewed")
	}

	end := inst.LoanEndDate.AddDate(1, 0, 0)
	renewal := end
	inst.LoanEndDate = &end
	inst.RenewalDate = &renewal
	inst.RenewalCount++
	inst.UpdatedAt = r.now()

	if err := r.commit(ctx, inst); err != nil {
		return models.Instrument{}, err
	}
	return *inst, nil
}

// MarkMaintenance pulls an available instrument out of circulation. A
// checked-out instrument must be returned first.
func (r *Registry) MarkMaintenance(ctx context.Context, id string) (models.Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.lookup(id)
	if err != nil {
		return models.Instrument{}, err
	}
	if inst.Status != models.StatusAvailable {
		return models.Instrument{}, transitionErr("only an available instrument can enter maintenance")
	}

	inst.Status = models.StatusMaintenance
	inst.UpdatedAt = r.now()
	if err := r.commit(ctx, inst); err != nil {
		return models.Instrument{}, err
	}
	return *inst, nil
}

// EndMaintenance returns an instrument from maintenance to circulation.
func (r *Registry) EndMaintenance(ctx context.Context, id string) (models.Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.lookup(id)
	if err != nil {
		return models.Instrument{}, err
	}
	if inst.Status != models.StatusMaintenance {
		return models.Instrument{}, transitionErr("instrument is not in maintenance")
	}

	inst.Status = models.StatusAvailable
	inst.UpdatedAt = r.now()
	if err := r.commit(ctx, inst); err != nil {
		return models.Instrument{}, err
	}
	return *inst, nil
}

// Get returns a copy of one instrument.
func (r *Registry) Get(id string) (models.Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cur, ok := r.byID[id]
	if !ok {
		return models.Instrument{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *cur, nil
}

// Len returns the number of registered instruments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Restore replaces the registry contents with records loaded from the
// durability layer. The given order becomes the registration order.
func (r *Registry) Restore(insts []models.Instrument) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[string]*models.Instrument, len(insts))
	r.order = make([]string, 0, len(insts))
	for i := range insts {
		inst := insts[i]
		if _, dup := r.byID[inst.ID]; dup {
			continue
		}
		r.byID[inst.ID] = &inst
		r.order = append(r.order, inst.ID)
	}
}

// Summary are the stat-card counts shown on the inventory page. Overdue and
// NeedsRenewal are computed against the supplied now, never stored.
type Summary struct {
	Total        int `json:"total"`
	Available    int `json:"available"`
	Borrowed     int `json:"borrowed"`
	Loaned       int `json:"loaned"`
	Maintenance  int `json:"maintenance"`
	Overdue      int `json:"overdue"`
	NeedsRenewal int `json:"needsRenewal"`
}

func (r *Registry) Summary(now time.Time) Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s Summary
	for _, id := range r.order {
		inst := r.byID[id]
		s.Total++
		switch inst.Status {
		case models.StatusAvailable:
			s.Available++
		case models.StatusBorrowed:
			s.Borrowed++
		case models.StatusLoaned:
			s.Loaned++
		case models.StatusMaintenance:
			s.Maintenance++
		}
		if IsOverdue(inst, now) {
			s.Overdue++
		}
		if NeedsRenewal(inst, now) {
			s.NeedsRenewal++
		}
	}
	return s
}

// Now exposes the registry clock so callers evaluate the derived predicates
// against the same time source the operations use.
func (r *Registry) Now() time.Time { return r.now() }

// lookup returns a private copy of the stored record; callers mutate the copy
// and commit it back, so a failed operation never leaves a half-written
// record behind. Must be called with the write lock held.
func (r *Registry) lookup(id string) (*models.Instrument, error) {
	cur, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *cur
	return &cp, nil
}

// commit writes through to the store, then swaps the copy in. Store failure
// aborts the operation with the in-memory state untouched.
func (r *Registry) commit(ctx context.Context, inst *models.Instrument) error {
	if r.store != nil {
		if err := r.store.SaveInstrument(ctx, *inst); err != nil {
			return fmt.Errorf("persist instrument %s: %w", inst.ID, err)
		}
	}
	r.byID[inst.ID] = inst
	return nil
}
