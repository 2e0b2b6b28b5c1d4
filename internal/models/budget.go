package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetType identifies what organizational unit a budget is scoped to.
type BudgetType string

const (
	BudgetTypeDepartment BudgetType = "department"
	BudgetTypeProject    BudgetType = "project"
	BudgetTypeCostCenter BudgetType = "cost_center"
	BudgetTypeCategory   BudgetType = "category"
	BudgetTypeEmployee   BudgetType = "employee"
)

// BudgetPeriod represents the recurrence granularity of a budget window.
type BudgetPeriod string

const (
	BudgetPeriodAnnual       BudgetPeriod = "annual"
	BudgetPeriodQuarterly    BudgetPeriod = "quarterly"
	BudgetPeriodMonthly      BudgetPeriod = "monthly"
	BudgetPeriodProjectBased BudgetPeriod = "project_based"
)

// EnforcementMode governs what happens when an expense would push a budget
// past its allocation.
type EnforcementMode string

const (
	EnforcementHardBlock    EnforcementMode = "hard_block"
	EnforcementSoftWarning  EnforcementMode = "soft_warning"
	EnforcementAutoEscalate EnforcementMode = "auto_escalate"
)

// BudgetStatus is derived from IsActive and the period window. It is never
// stored; persisting it would create a second source of truth.
type BudgetStatus string

const (
	BudgetStatusDraft    BudgetStatus = "draft"
	BudgetStatusActive   BudgetStatus = "active"
	BudgetStatusClosed   BudgetStatus = "closed"
	BudgetStatusArchived BudgetStatus = "archived"
)

// ScopeKind tags the scope union of a budget.
type ScopeKind string

const (
	ScopeDepartment ScopeKind = "department"
	ScopeProject    ScopeKind = "project"
	ScopeCostCenter ScopeKind = "cost_center"
	ScopeCategory   ScopeKind = "category"
	ScopeEmployee   ScopeKind = "employee"
	ScopeNone       ScopeKind = "none"
)

// Scope is the resolved scope reference of a budget: exactly one
// organizational unit, or none for an ad-hoc budget addressed only by id.
type Scope struct {
	Kind ScopeKind
	ID   uint
}

// Budget is a time-boxed monetary allocation for an organizational unit.
type Budget struct {
	Base
	Name             string          `gorm:"not null" json:"name"`
	Type             BudgetType      `gorm:"not null;index" json:"type"`
	Period           BudgetPeriod    `gorm:"not null" json:"period"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_amount"`
	UsedAmount       decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"used_amount"`
	WarningThreshold decimal.Decimal `gorm:"type:numeric(5,2);not null;default:80" json:"warning_threshold"`
	Enforcement      EnforcementMode `gorm:"not null;default:'soft_warning'" json:"enforcement"`
	StartDate        time.Time       `gorm:"not null" json:"start_date"`
	EndDate          time.Time       `gorm:"not null" json:"end_date"`
	Currency         string          `gorm:"not null;default:'PKR'" json:"currency"`
	IsActive         bool            `gorm:"default:true;index" json:"is_active"`
	OwnerID          uint            `gorm:"not null" json:"owner_id"`

	// Scope reference: at most one populated, selected by Type.
	DepartmentID *uint `gorm:"index" json:"department_id,omitempty"`
	ProjectID    *uint `gorm:"index" json:"project_id,omitempty"`
	CostCenterID *uint `gorm:"index" json:"cost_center_id,omitempty"`
	CategoryID   *uint `gorm:"index" json:"category_id,omitempty"`
	EmployeeID   *uint `gorm:"index" json:"employee_id,omitempty"`
}

// Scope resolves the five optional reference columns into the tagged union.
// A budget whose column for its own type is empty is an ad-hoc budget that
// expenses reach only through an explicit budget_id tag.
func (b *Budget) Scope() Scope {
	switch b.Type {
	case BudgetTypeDepartment:
		if b.DepartmentID != nil {
			return Scope{Kind: ScopeDepartment, ID: *b.DepartmentID}
		}
	case BudgetTypeProject:
		if b.ProjectID != nil {
			return Scope{Kind: ScopeProject, ID: *b.ProjectID}
		}
	case BudgetTypeCostCenter:
		if b.CostCenterID != nil {
			return Scope{Kind: ScopeCostCenter, ID: *b.CostCenterID}
		}
	case BudgetTypeCategory:
		if b.CategoryID != nil {
			return Scope{Kind: ScopeCategory, ID: *b.CategoryID}
		}
	case BudgetTypeEmployee:
		if b.EmployeeID != nil {
			return Scope{Kind: ScopeEmployee, ID: *b.EmployeeID}
		}
	}
	return Scope{Kind: ScopeNone}
}

// Status derives the lifecycle status at the given instant.
func (b *Budget) Status(now time.Time) BudgetStatus {
	if !b.IsActive {
		if b.EndDate.Before(now) {
			return BudgetStatusArchived
		}
		return BudgetStatusClosed
	}
	if b.StartDate.After(now) {
		return BudgetStatusDraft
	}
	return BudgetStatusActive
}
