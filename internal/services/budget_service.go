package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kharcha/internal/clock"
	apperrors "kharcha/internal/errors"
	"kharcha/internal/models"
	"kharcha/internal/pagination"
)

// budgetService handles budget CRUD and lifecycle transitions.
type budgetService struct {
	db          *gorm.DB
	periods     PeriodServicer
	utilization UtilizationServicer
	audit       AuditServicer
	clock       clock.Clock
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, periods PeriodServicer, utilization UtilizationServicer, audit AuditServicer, clk clock.Clock) BudgetServicer {
	return &budgetService{
		db:          db,
		periods:     periods,
		utilization: utilization,
		audit:       audit,
		clock:       clk,
	}
}

// CreateBudget validates and creates a new budget. The window is taken from
// the input dates when supplied, otherwise derived from the period type;
// project-based budgets must supply explicit dates.
func (s *budgetService) CreateBudget(in CreateBudgetInput) (*models.Budget, error) {
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if in.TotalAmount.IsNegative() {
		return nil, apperrors.ErrNegativeAmount
	}

	threshold := decimal.NewFromInt(80)
	if in.WarningThreshold != nil {
		threshold = *in.WarningThreshold
	}
	if threshold.IsNegative() || threshold.GreaterThan(oneHundred) {
		return nil, apperrors.ErrInvalidThreshold
	}

	enforcement := in.Enforcement
	if enforcement == "" {
		enforcement = models.EnforcementSoftWarning
	}
	currency := in.Currency
	if currency == "" {
		currency = "PKR"
	}

	window := PeriodDates{}
	if in.StartDate != nil && in.EndDate != nil {
		window.StartDate = in.StartDate.UTC()
		window.EndDate = in.EndDate.UTC()
	} else {
		fiscalYear := in.FiscalYear
		if fiscalYear == 0 {
			fiscalYear = s.clock.Now().Year()
		}
		derived, err := s.periods.ComputePeriodDates(in.Period, fiscalYear, in.Quarter, in.Month)
		if err != nil {
			return nil, err
		}
		window = *derived
	}
	if !window.EndDate.After(window.StartDate) {
		return nil, apperrors.ErrInvalidDateRange
	}

	budget := &models.Budget{
		Name:             in.Name,
		Type:             in.Type,
		Period:           in.Period,
		TotalAmount:      in.TotalAmount,
		UsedAmount:       decimal.Zero,
		WarningThreshold: threshold,
		Enforcement:      enforcement,
		StartDate:        window.StartDate,
		EndDate:          window.EndDate,
		Currency:         currency,
		IsActive:         true,
		OwnerID:          in.OwnerID,
	}

	if in.ScopeID != nil {
		if err := s.checkScopeReference(in.Type, *in.ScopeID); err != nil {
			return nil, err
		}
		switch in.Type {
		case models.BudgetTypeDepartment:
			budget.DepartmentID = in.ScopeID
		case models.BudgetTypeProject:
			budget.ProjectID = in.ScopeID
		case models.BudgetTypeCostCenter:
			budget.CostCenterID = in.ScopeID
		case models.BudgetTypeCategory:
			budget.CategoryID = in.ScopeID
		case models.BudgetTypeEmployee:
			budget.EmployeeID = in.ScopeID
		}
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// checkScopeReference verifies the scope entity matching the budget type
// exists.
func (s *budgetService) checkScopeReference(budgetType models.BudgetType, id uint) error {
	switch budgetType {
	case models.BudgetTypeDepartment:
		return s.refExists(&models.Department{}, id, apperrors.ErrDepartmentNotFound, "Department")
	case models.BudgetTypeProject:
		return s.refExists(&models.Project{}, id, apperrors.ErrProjectNotFound, "Project")
	case models.BudgetTypeCostCenter:
		return s.refExists(&models.CostCenter{}, id, apperrors.ErrCostCenterNotFound, "Cost center")
	case models.BudgetTypeEmployee:
		return s.refExists(&models.User{}, id, apperrors.ErrEmployeeNotFound, "Employee")
	case models.BudgetTypeCategory:
		return s.refExists(&models.Category{}, id, apperrors.ErrCategoryNotFound, "Category")
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown budget type: "+string(budgetType))
}

func (s *budgetService) refExists(model interface{}, id uint, notFound *apperrors.AppError, label string) error {
	var count int64
	if err := s.db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.WithMessage(notFound, fmt.Sprintf("%s %d not found", label, id))
	}
	return nil
}

// GetBudgets returns a paginated list of budgets with derived status.
func (s *budgetService) GetBudgets(filter BudgetFilter, page pagination.PageRequest) (*pagination.PageResponse[BudgetWithStatus], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{})
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.Period != nil {
		base = base.Where("period = ?", *filter.Period)
	}
	if filter.IsActive != nil {
		base = base.Where("is_active = ?", *filter.IsActive)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Scopes(pagination.Paginate(page)).Order("id").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.clock.Now()
	annotated := make([]BudgetWithStatus, 0, len(budgets))
	for _, b := range budgets {
		annotated = append(annotated, BudgetWithStatus{Budget: b, Status: b.Status(now)})
	}

	result := pagination.NewPageResponse(annotated, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID.
func (s *budgetService) GetBudgetByID(id uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.First(&budget, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrBudgetNotFound, fmt.Sprintf("Budget %d not found", id))
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetBudgetStatus derives the budget's lifecycle status at the current
// instant.
func (s *budgetService) GetBudgetStatus(budget *models.Budget) models.BudgetStatus {
	return budget.Status(s.clock.Now())
}

// UpdateBudget applies a partial update to a budget.
func (s *budgetService) UpdateBudget(id uint, in UpdateBudgetInput) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Name != "" {
		updates["name"] = in.Name
	}
	if in.TotalAmount != nil {
		if in.TotalAmount.IsNegative() {
			return nil, apperrors.ErrNegativeAmount
		}
		updates["total_amount"] = *in.TotalAmount
	}
	if in.WarningThreshold != nil {
		if in.WarningThreshold.IsNegative() || in.WarningThreshold.GreaterThan(oneHundred) {
			return nil, apperrors.ErrInvalidThreshold
		}
		updates["warning_threshold"] = *in.WarningThreshold
	}
	if in.Enforcement != nil {
		updates["enforcement"] = *in.Enforcement
	}
	if in.OwnerID != nil {
		updates["owner_id"] = *in.OwnerID
	}

	start := budget.StartDate
	end := budget.EndDate
	if in.StartDate != nil {
		start = in.StartDate.UTC()
		updates["start_date"] = start
	}
	if in.EndDate != nil {
		end = in.EndDate.UTC()
		updates["end_date"] = end
	}
	if !end.After(start) {
		return nil, apperrors.ErrInvalidDateRange
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// RemoveBudget soft-deletes a budget. Distinct from Close: a removed budget
// disappears from listings entirely, a closed one remains queryable.
func (s *budgetService) RemoveBudget(id uint) error {
	budget, err := s.GetBudgetByID(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(budget).Update("is_active", false).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// Activate re-activates an inactive budget whose period has not ended.
func (s *budgetService) Activate(actorID, id uint) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(id)
	if err != nil {
		return nil, err
	}

	if budget.IsActive {
		return nil, apperrors.ErrBudgetAlreadyActive
	}
	if budget.EndDate.Before(s.clock.Now()) {
		return nil, apperrors.ErrBudgetPeriodEnded
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(budget).Update("is_active", true).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.audit.LogTx(tx, &models.AuditLog{
			ActorID:      actorID,
			Action:       models.AuditActionActivateBudget,
			ResourceType: "budget",
			ResourceID:   budget.ID,
			Changes:      marshalChanges(map[string]interface{}{"is_active": []bool{false, true}}),
		})
	})
	if err != nil {
		return nil, err
	}

	budget.IsActive = true
	return budget, nil
}

// Close deactivates an active budget, snapshotting the amount consumed so
// far into UsedAmount.
func (s *budgetService) Close(actorID, id uint) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(id)
	if err != nil {
		return nil, err
	}

	if !budget.IsActive {
		return nil, apperrors.ErrBudgetAlreadyInactive
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		u, err := s.utilization.CalculateUtilizationTx(tx, budget)
		if err != nil {
			return err
		}
		used := u.Committed.Add(u.Spent)

		if err := tx.Model(budget).Updates(map[string]interface{}{
			"used_amount": used,
			"is_active":   false,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		budget.UsedAmount = used
		budget.IsActive = false
		return s.audit.LogTx(tx, &models.AuditLog{
			ActorID:      actorID,
			Action:       models.AuditActionCloseBudget,
			ResourceType: "budget",
			ResourceID:   budget.ID,
			Changes: marshalChanges(map[string]interface{}{
				"is_active":   []bool{true, false},
				"used_amount": used,
			}),
		})
	})
	if err != nil {
		return nil, err
	}

	return budget, nil
}

// Archive records the archival of a closed budget whose period has ended.
// Archived-ness is derived from the budget's state, so the only write is
// the audit entry.
func (s *budgetService) Archive(actorID, id uint) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(id)
	if err != nil {
		return nil, err
	}

	if budget.IsActive {
		return nil, apperrors.ErrBudgetNotClosed
	}
	if budget.EndDate.After(s.clock.Now()) {
		return nil, apperrors.ErrBudgetPeriodNotEnded
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.audit.LogTx(tx, &models.AuditLog{
			ActorID:      actorID,
			Action:       models.AuditActionArchiveBudget,
			ResourceType: "budget",
			ResourceID:   budget.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	return budget, nil
}

// marshalChanges renders a change set for an audit entry.
func marshalChanges(changes map[string]interface{}) string {
	data, err := json.Marshal(changes)
	if err != nil {
		return "{}"
	}
	return string(data)
}
