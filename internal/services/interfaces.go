package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kharcha/internal/models"
	"kharcha/internal/pagination"
)

// PeriodDates is a computed budget period window.
type PeriodDates struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// CurrentPeriod identifies the period the current instant falls in.
// Quarter is set only for quarterly periods, Month only for monthly.
type CurrentPeriod struct {
	Year    int  `json:"year"`
	Quarter *int `json:"quarter,omitempty"`
	Month   *int `json:"month,omitempty"`
}

// PeriodServicer computes period boundaries for budget period types.
type PeriodServicer interface {
	ComputePeriodDates(period models.BudgetPeriod, fiscalYear, quarter, month int) (*PeriodDates, error)
	CurrentPeriod(period models.BudgetPeriod) CurrentPeriod
}

// CreateBudgetInput carries the fields for creating a budget. When StartDate
// and EndDate are nil the window is derived from Period and FiscalYear
// (plus Quarter or Month); project-based budgets must supply explicit dates.
type CreateBudgetInput struct {
	Name             string
	Type             models.BudgetType
	Period           models.BudgetPeriod
	TotalAmount      decimal.Decimal
	WarningThreshold *decimal.Decimal
	Enforcement      models.EnforcementMode
	Currency         string
	StartDate        *time.Time
	EndDate          *time.Time
	FiscalYear       int
	Quarter          int
	Month            int
	ScopeID          *uint
	OwnerID          uint
}

// UpdateBudgetInput carries the optional fields of a partial budget update.
type UpdateBudgetInput struct {
	Name             string
	TotalAmount      *decimal.Decimal
	WarningThreshold *decimal.Decimal
	Enforcement      *models.EnforcementMode
	StartDate        *time.Time
	EndDate          *time.Time
	OwnerID          *uint
}

// BudgetFilter holds optional filter parameters for listing budgets.
type BudgetFilter struct {
	Type     *models.BudgetType
	Period   *models.BudgetPeriod
	IsActive *bool
}

// BudgetWithStatus pairs a budget with its derived lifecycle status.
type BudgetWithStatus struct {
	models.Budget
	Status models.BudgetStatus `json:"status"`
}

// BudgetServicer defines the contract for budget CRUD and lifecycle logic.
type BudgetServicer interface {
	CreateBudget(in CreateBudgetInput) (*models.Budget, error)
	GetBudgets(filter BudgetFilter, page pagination.PageRequest) (*pagination.PageResponse[BudgetWithStatus], error)
	GetBudgetByID(id uint) (*models.Budget, error)
	GetBudgetStatus(budget *models.Budget) models.BudgetStatus
	UpdateBudget(id uint, in UpdateBudgetInput) (*models.Budget, error)
	RemoveBudget(id uint) error
	Activate(actorID, id uint) (*models.Budget, error)
	Close(actorID, id uint) (*models.Budget, error)
	Archive(actorID, id uint) (*models.Budget, error)
}

// UtilizationResult describes how much of a budget's allocation is consumed
// by committed and spent expenses.
type UtilizationResult struct {
	BudgetID              uint            `json:"budget_id"`
	Allocated             decimal.Decimal `json:"allocated"`
	Committed             decimal.Decimal `json:"committed"`
	Spent                 decimal.Decimal `json:"spent"`
	Available             decimal.Decimal `json:"available"`
	UtilizationPercentage decimal.Decimal `json:"utilization_percentage"`
	IsOverBudget          bool            `json:"is_over_budget"`
	IsAtWarningThreshold  bool            `json:"is_at_warning_threshold"`
	ExpenseCount          int             `json:"expense_count"`
	PendingCount          int             `json:"pending_count"`
}

// SummaryFilter holds optional filter parameters for the budget summary.
type SummaryFilter struct {
	Type     *models.BudgetType
	IsActive *bool
}

// BudgetSummary aggregates utilization across many budgets.
type BudgetSummary struct {
	TotalAllocated  decimal.Decimal `json:"total_allocated"`
	TotalCommitted  decimal.Decimal `json:"total_committed"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	TotalAvailable  decimal.Decimal `json:"total_available"`
	BudgetCount     int             `json:"budget_count"`
	ActiveCount     int             `json:"active_count"`
	AtWarningCount  int             `json:"at_warning_count"`
	OverBudgetCount int             `json:"over_budget_count"`
}

// UtilizationServicer aggregates expenses and computes budget utilization.
type UtilizationServicer interface {
	AggregateExpenses(tx *gorm.DB, budget *models.Budget) ([]models.Expense, error)
	CalculateUtilization(budget *models.Budget) (*UtilizationResult, error)
	CalculateUtilizationTx(tx *gorm.DB, budget *models.Budget) (*UtilizationResult, error)
	GetBudgetSummary(filter SummaryFilter) (*BudgetSummary, error)
}

// EnforcementAction is the outcome of evaluating a budget's enforcement mode
// against a projected overrun.
type EnforcementAction string

const (
	ActionNone        EnforcementAction = "none"
	ActionHardBlock   EnforcementAction = "hard_block"
	ActionSoftWarning EnforcementAction = "soft_warning"
	ActionEscalate    EnforcementAction = "escalate"
)

// BudgetCheckResult is the outcome of checking one expense amount against
// one budget. A hard block is a normal result, not an error: the expense
// workflow must be able to show the user why the expense cannot proceed.
type BudgetCheckResult struct {
	BudgetID             uint              `json:"budget_id"`
	BudgetName           string            `json:"budget_name"`
	CanProceed           bool              `json:"can_proceed"`
	WouldExceed          bool              `json:"would_exceed"`
	WouldTriggerWarning  bool              `json:"would_trigger_warning"`
	ProjectedUtilization decimal.Decimal   `json:"projected_utilization"`
	EnforcementAction    EnforcementAction `json:"enforcement_action"`
	Message              string            `json:"message,omitempty"`
}

// ExpenseContext carries the scoping attributes of a prospective expense.
type ExpenseContext struct {
	BudgetID     *uint           `json:"budget_id,omitempty"`
	DepartmentID *uint           `json:"department_id,omitempty"`
	ProjectID    *uint           `json:"project_id,omitempty"`
	CostCenterID *uint           `json:"cost_center_id,omitempty"`
	CategoryID   *uint           `json:"category_id,omitempty"`
	EmployeeID   *uint           `json:"employee_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	ExpenseDate  time.Time       `json:"expense_date"`
}

// ExpenseCheckResult aggregates budget checks across all applicable budgets.
type ExpenseCheckResult struct {
	Allowed            bool                `json:"allowed"`
	HasWarnings        bool                `json:"has_warnings"`
	RequiresEscalation bool                `json:"requires_escalation"`
	Results            []BudgetCheckResult `json:"results"`
	Message            string              `json:"message,omitempty"`
}

// EnforcementServicer resolves applicable budgets and evaluates budget
// policy for prospective expenses.
type EnforcementServicer interface {
	FindApplicableBudgets(ctx ExpenseContext) ([]models.Budget, error)
	CheckBudgetForExpense(budget *models.Budget, amount decimal.Decimal) (*BudgetCheckResult, error)
	CheckExpenseAgainstBudgets(ctx ExpenseContext) (*ExpenseCheckResult, error)
}

// TransferResult reports a completed fund transfer between two budgets.
type TransferResult struct {
	Reference    string          `json:"reference"`
	FromBudgetID uint            `json:"from_budget_id"`
	ToBudgetID   uint            `json:"to_budget_id"`
	Amount       decimal.Decimal `json:"amount"`
	FromBalance  decimal.Decimal `json:"from_balance"`
	ToBalance    decimal.Decimal `json:"to_balance"`
	Message      string          `json:"message"`
}

// TransferServicer moves funds between two budgets atomically.
type TransferServicer interface {
	Transfer(actorID, fromID, toID uint, amount decimal.Decimal, reason string) (*TransferResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(actorID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
	LogTx(tx *gorm.DB, entry *models.AuditLog) error
}
