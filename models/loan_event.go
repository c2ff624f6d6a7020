// models/loan_event.go
package models

import "time"

const LoanEventTable = "msb_loan_events"

type LoanAction string

const (
	ActionBorrow LoanAction = "borrow"
	ActionLoan   LoanAction = "loan"
	ActionReturn LoanAction = "return"
	ActionRenew  LoanAction = "renew"
)

// LoanEvent is one row of the append-only lending ledger. A row is written on
// every checkout, return and renewal and never updated afterwards, so the
// borrower history survives the live Instrument record being cleared on
// return.
type LoanEvent struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	InstrumentID string     `gorm:"type:uuid;index;not null" json:"instrumentId"`
	Action       LoanAction `gorm:"size:20;not null;index" json:"action"`
	LoanType     *LoanType  `gorm:"size:20" json:"loanType,omitempty"`

	StudentName string `gorm:"size:200" json:"studentName,omitempty"`
	StudentID   string `gorm:"size:64;index" json:"studentId,omitempty"`

	DueDate     *time.Time `json:"dueDate,omitempty"`
	LoanEndDate *time.Time `json:"loanEndDate,omitempty"`

	ActorID   string    `gorm:"type:uuid" json:"actorId"`
	ActorName string    `gorm:"size:255" json:"actorName"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (LoanEvent) TableName() string { return LoanEventTable }
