package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kharcha/internal/errors"
	"kharcha/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// utilizationService aggregates expenses and computes budget utilization.
type utilizationService struct {
	db *gorm.DB
}

// NewUtilizationService creates a new UtilizationServicer.
func NewUtilizationService(db *gorm.DB) UtilizationServicer {
	return &utilizationService{db: db}
}

// AggregateExpenses returns every expense that counts against the budget:
// scope match (or an explicit budget_id tag), expense date inside the
// budget window, and a status that reserves or consumes funds. Draft and
// rejected expenses never count.
func (s *utilizationService) AggregateExpenses(tx *gorm.DB, budget *models.Budget) ([]models.Expense, error) {
	q := tx.Model(&models.Expense{}).
		Where("expense_date >= ? AND expense_date <= ?", budget.StartDate, budget.EndDate).
		Where("status NOT IN ?", models.ExcludedStatuses)

	scope := budget.Scope()
	switch scope.Kind {
	case models.ScopeDepartment:
		// Department budgets also cover expenses submitted by members of
		// the department, even when the expense itself carries no
		// department reference.
		members := tx.Model(&models.User{}).Select("id").Where("department_id = ?", scope.ID)
		q = q.Where("budget_id = ? OR department_id = ? OR submitter_id IN (?)", budget.ID, scope.ID, members)
	case models.ScopeProject:
		q = q.Where("budget_id = ? OR project_id = ?", budget.ID, scope.ID)
	case models.ScopeCostCenter:
		q = q.Where("budget_id = ? OR cost_center_id = ?", budget.ID, scope.ID)
	case models.ScopeCategory:
		q = q.Where("budget_id = ? OR category_id = ?", budget.ID, scope.ID)
	case models.ScopeEmployee:
		q = q.Where("budget_id = ? OR submitter_id = ?", budget.ID, scope.ID)
	case models.ScopeNone:
		// Ad-hoc budget: only explicitly tagged expenses count.
		q = q.Where("budget_id = ?", budget.ID)
	}

	var expenses []models.Expense
	if err := q.Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// CalculateUtilization computes utilization for a budget.
func (s *utilizationService) CalculateUtilization(budget *models.Budget) (*UtilizationResult, error) {
	return s.CalculateUtilizationTx(s.db, budget)
}

// CalculateUtilizationTx computes utilization inside an existing database
// transaction, so callers holding row locks see a consistent snapshot.
func (s *utilizationService) CalculateUtilizationTx(tx *gorm.DB, budget *models.Budget) (*UtilizationResult, error) {
	expenses, err := s.AggregateExpenses(tx, budget)
	if err != nil {
		return nil, err
	}

	// Every non-excluded expense is either committed or spent, never both.
	committed := decimal.Zero
	spent := decimal.Zero
	pending := 0
	for _, e := range expenses {
		switch {
		case e.Status.Committed():
			committed = committed.Add(e.BaseAmount)
			pending++
		case e.Status.Spent():
			spent = spent.Add(e.BaseAmount)
		}
	}

	allocated := budget.TotalAmount
	available := allocated.Sub(committed).Sub(spent)

	percentage := decimal.Zero
	if allocated.IsPositive() {
		percentage = committed.Add(spent).Div(allocated).Mul(oneHundred).Round(2)
	}

	return &UtilizationResult{
		BudgetID:              budget.ID,
		Allocated:             allocated,
		Committed:             committed,
		Spent:                 spent,
		Available:             available,
		UtilizationPercentage: percentage,
		IsOverBudget:          available.IsNegative(),
		IsAtWarningThreshold:  percentage.GreaterThanOrEqual(budget.WarningThreshold),
		ExpenseCount:          len(expenses),
		PendingCount:          pending,
	}, nil
}

// GetBudgetSummary aggregates utilization across all budgets matching the
// filter.
func (s *utilizationService) GetBudgetSummary(filter SummaryFilter) (*BudgetSummary, error) {
	q := s.db.Model(&models.Budget{})
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}

	var budgets []models.Budget
	if err := q.Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &BudgetSummary{
		TotalAllocated: decimal.Zero,
		TotalCommitted: decimal.Zero,
		TotalSpent:     decimal.Zero,
		TotalAvailable: decimal.Zero,
		BudgetCount:    len(budgets),
	}

	for i := range budgets {
		u, err := s.CalculateUtilization(&budgets[i])
		if err != nil {
			return nil, err
		}

		summary.TotalAllocated = summary.TotalAllocated.Add(u.Allocated)
		summary.TotalCommitted = summary.TotalCommitted.Add(u.Committed)
		summary.TotalSpent = summary.TotalSpent.Add(u.Spent)
		summary.TotalAvailable = summary.TotalAvailable.Add(u.Available)

		if budgets[i].IsActive {
			summary.ActiveCount++
		}
		if u.IsAtWarningThreshold {
			summary.AtWarningCount++
		}
		if u.IsOverBudget {
			summary.OverBudgetCount++
		}
	}

	return summary, nil
}
