// models/instrument.go
package models

import "time"

const InstrumentTable = "msb_instruments"

type InstrumentStatus string

const (
	StatusAvailable   InstrumentStatus = "available"
	StatusBorrowed    InstrumentStatus = "borrowed"
	StatusLoaned      InstrumentStatus = "loaned"
	StatusMaintenance InstrumentStatus = "maintenance"
)

// LoanType distinguishes the two checkout modes. Same-day borrows stay on
// premises and are due back by end of day; long-term loans leave the building
// and run in 3/6/12 month blocks.
type LoanType string

const (
	LoanTypeBorrowed LoanType = "borrowed"
	LoanTypeLoaned   LoanType = "loaned"
)

type Condition string

const (
	ConditionExcellent   Condition = "excellent"
	ConditionGood        Condition = "good"
	ConditionFair        Condition = "fair"
	ConditionNeedsRepair Condition = "needs-repair"
)

func ValidCondition(c Condition) bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionNeedsRepair:
		return true
	}
	return false
}

// Instrument is a single physical, non-substitutable asset. The active loan
// is embedded as optional fields rather than a separate row: at most one
// checkout exists per instrument at a time, and the loan_events ledger keeps
// the history.
type Instrument struct {
	ID           string           `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string           `gorm:"size:200;not null" json:"name"`
	Type         string           `gorm:"size:100;not null" json:"type"`
	Brand        string           `gorm:"size:100" json:"brand,omitempty"`
	Model        string           `gorm:"size:100" json:"model,omitempty"`
	SerialNumber string           `gorm:"size:120" json:"serialNumber,omitempty"`
	Condition    Condition        `gorm:"size:20;not null" json:"condition"`
	Location     string           `gorm:"size:200;not null" json:"location"`
	Status       InstrumentStatus `gorm:"size:20;not null;default:'available';index" json:"status"`

	// Set iff Status is borrowed or loaned.
	LoanType            *LoanType  `gorm:"size:20" json:"loanType,omitempty"`
	BorrowedBy          *string    `gorm:"size:200" json:"borrowedBy,omitempty"`
	BorrowedByStudentID *string    `gorm:"size:64" json:"borrowedByStudentId,omitempty"`
	BorrowedAt          *time.Time `json:"borrowedAt,omitempty"`

	// Same-day borrows only: end of the borrow day.
	DueDate *time.Time `json:"dueDate,omitempty"`

	// Long-term loans only.
	LoanStartDate         *time.Time `json:"loanStartDate,omitempty"`
	LoanEndDate           *time.Time `json:"loanEndDate,omitempty"`
	RenewalDate           *time.Time `json:"renewalDate,omitempty"`
	ParentGuardianName    *string    `gorm:"size:200" json:"parentGuardianName,omitempty"`
	ParentGuardianContact *string    `gorm:"size:120" json:"parentGuardianContact,omitempty"`
	RenewalCount          int        `gorm:"not null;default:0" json:"renewalCount"`

	Notes     string    `gorm:"size:500" json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Instrument) TableName() string { return InstrumentTable }

// CheckedOut reports whether the instrument is currently out under either mode.
func (i *Instrument) CheckedOut() bool {
	return i.Status == StatusBorrowed || i.Status == StatusLoaned
}
