package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kharcha/internal/errors"
	"kharcha/internal/models"
)

// enforcementService resolves which budgets apply to an expense and
// evaluates enforcement policy against them.
type enforcementService struct {
	db          *gorm.DB
	utilization UtilizationServicer
}

// NewEnforcementService creates a new EnforcementServicer.
func NewEnforcementService(db *gorm.DB, utilization UtilizationServicer) EnforcementServicer {
	return &enforcementService{db: db, utilization: utilization}
}

// FindApplicableBudgets returns every active budget whose scope and period
// window cover the expense context. Each non-empty context field is checked
// independently; an expense can match a department budget and a category
// budget at the same time. The check order is fixed: explicit budget id,
// department, project, cost center, category, employee. The result is
// deduplicated by id, preserving the order found.
func (s *enforcementService) FindApplicableBudgets(ctx ExpenseContext) ([]models.Budget, error) {
	var found []models.Budget
	seen := make(map[uint]bool)

	add := func(b *models.Budget) {
		if !seen[b.ID] {
			seen[b.ID] = true
			found = append(found, *b)
		}
	}

	if ctx.BudgetID != nil {
		var b models.Budget
		err := s.activeWindow(ctx).Where("id = ?", *ctx.BudgetID).First(&b).Error
		if err == nil {
			add(&b)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	type scopeLookup struct {
		id         *uint
		budgetType models.BudgetType
		column     string
	}
	lookups := []scopeLookup{
		{ctx.DepartmentID, models.BudgetTypeDepartment, "department_id"},
		{ctx.ProjectID, models.BudgetTypeProject, "project_id"},
		{ctx.CostCenterID, models.BudgetTypeCostCenter, "cost_center_id"},
		{ctx.CategoryID, models.BudgetTypeCategory, "category_id"},
		{ctx.EmployeeID, models.BudgetTypeEmployee, "employee_id"},
	}

	for _, l := range lookups {
		if l.id == nil {
			continue
		}
		var b models.Budget
		err := s.activeWindow(ctx).
			Where("type = ?", l.budgetType).
			Where(l.column+" = ?", *l.id).
			Order("id").
			First(&b).Error
		if err == nil {
			add(&b)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return found, nil
}

// activeWindow scopes a budget query to active budgets whose window
// contains the expense date.
func (s *enforcementService) activeWindow(ctx ExpenseContext) *gorm.DB {
	return s.db.Model(&models.Budget{}).
		Where("is_active = ?", true).
		Where("start_date <= ? AND end_date >= ?", ctx.ExpenseDate, ctx.ExpenseDate)
}

// CheckBudgetForExpense evaluates whether an expense of the given amount
// may proceed against a single budget. Only a hard block stops the
// expense; soft warnings and escalations let it proceed with a message.
func (s *enforcementService) CheckBudgetForExpense(budget *models.Budget, amount decimal.Decimal) (*BudgetCheckResult, error) {
	u, err := s.utilization.CalculateUtilization(budget)
	if err != nil {
		return nil, err
	}

	newTotal := u.Committed.Add(u.Spent).Add(amount)
	projected := decimal.Zero
	if u.Allocated.IsPositive() {
		projected = newTotal.Div(u.Allocated).Mul(oneHundred).Round(2)
	}

	wouldExceed := newTotal.GreaterThan(u.Allocated)
	wouldTriggerWarning := projected.GreaterThanOrEqual(budget.WarningThreshold)

	action := ActionNone
	if wouldExceed {
		switch budget.Enforcement {
		case models.EnforcementHardBlock:
			action = ActionHardBlock
		case models.EnforcementSoftWarning:
			action = ActionSoftWarning
		case models.EnforcementAutoEscalate:
			action = ActionEscalate
		}
	}

	result := &BudgetCheckResult{
		BudgetID:             budget.ID,
		BudgetName:           budget.Name,
		CanProceed:           action != ActionHardBlock,
		WouldExceed:          wouldExceed,
		WouldTriggerWarning:  wouldTriggerWarning,
		ProjectedUtilization: projected,
		EnforcementAction:    action,
	}

	switch action {
	case ActionHardBlock:
		result.Message = fmt.Sprintf(
			"Cannot submit expense: amount %s %s would exceed budget '%s' (available: %s %s)",
			budget.Currency, amount.StringFixed(2), budget.Name, budget.Currency, u.Available.StringFixed(2))
	case ActionSoftWarning:
		result.Message = fmt.Sprintf("Warning: this expense will exceed budget '%s'", budget.Name)
	case ActionEscalate:
		result.Message = fmt.Sprintf("Expense exceeds budget '%s' and requires additional approval", budget.Name)
	default:
		if wouldTriggerWarning {
			result.Message = fmt.Sprintf("This expense will bring budget '%s' to %s%% utilization",
				budget.Name, projected.String())
		}
	}

	return result, nil
}

// CheckExpenseAgainstBudgets checks the expense against every applicable
// budget. The most restrictive outcome wins: a single hard-blocking budget
// blocks the whole expense even if every other budget would allow it.
func (s *enforcementService) CheckExpenseAgainstBudgets(ctx ExpenseContext) (*ExpenseCheckResult, error) {
	budgets, err := s.FindApplicableBudgets(ctx)
	if err != nil {
		return nil, err
	}

	if len(budgets) == 0 {
		return &ExpenseCheckResult{
			Allowed: true,
			Results: []BudgetCheckResult{},
			Message: "No applicable budgets for this expense",
		}, nil
	}

	result := &ExpenseCheckResult{Allowed: true}
	var blocking []string
	for i := range budgets {
		check, err := s.CheckBudgetForExpense(&budgets[i], ctx.Amount)
		if err != nil {
			return nil, err
		}
		result.Results = append(result.Results, *check)

		if !check.CanProceed {
			result.Allowed = false
			blocking = append(blocking, check.BudgetName)
		}
		if check.WouldTriggerWarning {
			result.HasWarnings = true
		}
		if check.EnforcementAction == ActionEscalate {
			result.RequiresEscalation = true
		}
	}

	switch {
	case !result.Allowed:
		result.Message = "Expense blocked by budget(s): " + strings.Join(blocking, ", ")
	case result.RequiresEscalation:
		result.Message = "Expense exceeds budget and requires additional approval"
	case result.HasWarnings:
		result.Message = "Expense can proceed but will trigger budget warnings"
	}

	return result, nil
}
