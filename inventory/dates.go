package inventory

import (
	"time"

	"musicschool_backend/models"
)

const (
	// Long-term loan months are counted as 30-day blocks, not calendar
	// months. Renewal resets the date each cycle, so the drift never
	// accumulates past one term.
	DaysPerLoanMonth = 30

	// RenewalWarningWindow is how far ahead of the renewal date a loan starts
	// reporting NeedsRenewal. A warning, not a block: the loan stays usable
	// past expiry until an operator acts.
	RenewalWarningWindow = 30 * 24 * time.Hour
)

// EndOfDay returns the last instant of t's calendar day (23:59:59.999) in
// t's location. Same-day borrows are due back by this moment.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// loanEnd computes the end date of a long-term loan starting at start.
func loanEnd(start time.Time, durationMonths int) time.Time {
	return start.Add(time.Duration(durationMonths) * DaysPerLoanMonth * 24 * time.Hour)
}

// IsOverdue reports whether a same-day borrow has passed its due moment
// without being returned. Long-term loans are never overdue in this sense;
// they age into NeedsRenewal instead.
func IsOverdue(inst *models.Instrument, now time.Time) bool {
	if inst.LoanType == nil || *inst.LoanType != models.LoanTypeBorrowed {
		return false
	}
	return inst.DueDate != nil && inst.DueDate.Before(now)
}

// NeedsRenewal reports whether a long-term loan is within the warning window
// of its renewal date, or already past it.
func NeedsRenewal(inst *models.Instrument, now time.Time) bool {
	if inst.LoanType == nil || *inst.LoanType != models.LoanTypeLoaned {
		return false
	}
	return inst.RenewalDate != nil && inst.RenewalDate.Sub(now) <= RenewalWarningWindow
}
