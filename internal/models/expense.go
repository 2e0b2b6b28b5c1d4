package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the workflow state of an expense. The engine never moves
// an expense between states; it only classifies amounts by them.
type ExpenseStatus string

const (
	ExpenseStatusDraft                  ExpenseStatus = "draft"
	ExpenseStatusSubmitted              ExpenseStatus = "submitted"
	ExpenseStatusPendingApproval        ExpenseStatus = "pending_approval"
	ExpenseStatusClarificationRequested ExpenseStatus = "clarification_requested"
	ExpenseStatusResubmitted            ExpenseStatus = "resubmitted"
	ExpenseStatusApproved               ExpenseStatus = "approved"
	ExpenseStatusRejected               ExpenseStatus = "rejected"
	ExpenseStatusPaid                   ExpenseStatus = "paid"
)

// CommittedStatuses reserve budget capacity without having consumed it yet.
// Clarification-requested and resubmitted expenses keep their reservation.
var CommittedStatuses = []ExpenseStatus{
	ExpenseStatusSubmitted,
	ExpenseStatusPendingApproval,
	ExpenseStatusClarificationRequested,
	ExpenseStatusResubmitted,
}

// SpentStatuses have consumed budget capacity.
var SpentStatuses = []ExpenseStatus{
	ExpenseStatusApproved,
	ExpenseStatusPaid,
}

// ExcludedStatuses never count against a budget.
var ExcludedStatuses = []ExpenseStatus{
	ExpenseStatusDraft,
	ExpenseStatusRejected,
}

// Committed reports whether the status reserves budget capacity.
func (s ExpenseStatus) Committed() bool {
	switch s {
	case ExpenseStatusSubmitted, ExpenseStatusPendingApproval,
		ExpenseStatusClarificationRequested, ExpenseStatusResubmitted:
		return true
	}
	return false
}

// Spent reports whether the status has consumed budget capacity.
func (s ExpenseStatus) Spent() bool {
	return s == ExpenseStatusApproved || s == ExpenseStatusPaid
}

// Expense is owned by the expense workflow; this engine only reads it to
// aggregate amounts by status.
type Expense struct {
	Base
	Title       string          `json:"title"`
	Status      ExpenseStatus   `gorm:"not null;index" json:"status"`
	BaseAmount  decimal.Decimal `gorm:"column:base_amount;type:numeric(18,2);not null" json:"base_amount"`
	Currency    string          `gorm:"not null;default:'PKR'" json:"currency"`
	ExpenseDate time.Time       `gorm:"not null;index" json:"expense_date"`
	SubmitterID uint            `gorm:"not null;index" json:"submitter_id"`

	DepartmentID *uint `gorm:"index" json:"department_id,omitempty"`
	ProjectID    *uint `gorm:"index" json:"project_id,omitempty"`
	CostCenterID *uint `gorm:"index" json:"cost_center_id,omitempty"`
	CategoryID   *uint `gorm:"index" json:"category_id,omitempty"`

	// Explicit budget tag: counts against that budget regardless of scope.
	BudgetID *uint `gorm:"index" json:"budget_id,omitempty"`
}
