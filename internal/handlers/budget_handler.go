package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kharcha/internal/errors"
	"kharcha/internal/models"
	"kharcha/internal/pagination"
	"kharcha/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService      services.BudgetServicer
	utilizationService services.UtilizationServicer
	enforcementService services.EnforcementServicer
	transferService    services.TransferServicer
	auditService       services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(
	budgetService services.BudgetServicer,
	utilizationService services.UtilizationServicer,
	enforcementService services.EnforcementServicer,
	transferService services.TransferServicer,
	auditService services.AuditServicer,
) *BudgetHandler {
	return &BudgetHandler{
		budgetService:      budgetService,
		utilizationService: utilizationService,
		enforcementService: enforcementService,
		transferService:    transferService,
		auditService:       auditService,
	}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name             string                 `json:"name" binding:"required,min=1,max=100"`
	Type             models.BudgetType      `json:"type" binding:"required,budget_type"`
	Period           models.BudgetPeriod    `json:"period" binding:"required,budget_period"`
	TotalAmount      decimal.Decimal        `json:"total_amount" binding:"required"`
	WarningThreshold *decimal.Decimal       `json:"warning_threshold"`
	Enforcement      models.EnforcementMode `json:"enforcement" binding:"omitempty,enforcement_mode"`
	Currency         string                 `json:"currency" binding:"omitempty,iso4217"`
	StartDate        *time.Time             `json:"start_date"`
	EndDate          *time.Time             `json:"end_date"`
	FiscalYear       int                    `json:"fiscal_year" binding:"omitempty,min=2000,max=2200"`
	Quarter          int                    `json:"quarter" binding:"omitempty,min=1,max=4"`
	Month            int                    `json:"month" binding:"omitempty,min=1,max=12"`
	ScopeID          *uint                  `json:"scope_id"`
	OwnerID          uint                   `json:"owner_id" binding:"required"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Name             string                  `json:"name" binding:"omitempty,min=1,max=100"`
	TotalAmount      *decimal.Decimal        `json:"total_amount"`
	WarningThreshold *decimal.Decimal        `json:"warning_threshold"`
	Enforcement      *models.EnforcementMode `json:"enforcement" binding:"omitempty,enforcement_mode"`
	StartDate        *time.Time              `json:"start_date"`
	EndDate          *time.Time              `json:"end_date"`
	OwnerID          *uint                   `json:"owner_id"`
}

// CheckBudgetRequest carries the amount to check against one budget.
type CheckBudgetRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CheckExpenseRequest carries a prospective expense's scoping attributes.
type CheckExpenseRequest struct {
	BudgetID     *uint           `json:"budget_id"`
	DepartmentID *uint           `json:"department_id"`
	ProjectID    *uint           `json:"project_id"`
	CostCenterID *uint           `json:"cost_center_id"`
	CategoryID   *uint           `json:"category_id"`
	EmployeeID   *uint           `json:"employee_id"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	ExpenseDate  time.Time       `json:"expense_date" binding:"required"`
}

// TransferRequest carries a fund transfer between two budgets.
type TransferRequest struct {
	FromBudgetID uint            `json:"from_budget_id" binding:"required"`
	ToBudgetID   uint            `json:"to_budget_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Reason       string          `json:"reason" binding:"required,min=1,max=500"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a new time-boxed budget allocation
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Scope reference not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(services.CreateBudgetInput{
		Name:             req.Name,
		Type:             req.Type,
		Period:           req.Period,
		TotalAmount:      req.TotalAmount,
		WarningThreshold: req.WarningThreshold,
		Enforcement:      req.Enforcement,
		Currency:         req.Currency,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		FiscalYear:       req.FiscalYear,
		Quarter:          req.Quarter,
		Month:            req.Month,
		ScopeID:          req.ScopeID,
		OwnerID:          req.OwnerID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, models.AuditActionCreateBudget, "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"name": budget.Name, "type": budget.Type, "total_amount": budget.TotalAmount})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets.
// @Summary     List budgets
// @Description Get a paginated list of budgets with derived status
// @Tags        budgets
// @Produce     json
// @Param       type      query string false "Filter by budget type"
// @Param       period    query string false "Filter by period"
// @Param       is_active query bool   false "Filter by active flag"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.BudgetWithStatus] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.BudgetFilter
	if v := c.Query("type"); v != "" {
		t := models.BudgetType(v)
		filter.Type = &t
	}
	if v := c.Query("period"); v != "" {
		p := models.BudgetPeriod(v)
		filter.Period = &p
	}
	if v := c.Query("is_active"); v != "" {
		switch v {
		case "true":
			b := true
			filter.IsActive = &b
		case "false":
			b := false
			filter.IsActive = &b
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "is_active must be 'true' or 'false'"))
			return
		}
	}

	result, err := h.budgetService.GetBudgets(filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetSummary handles the aggregate summary over budgets.
// @Summary     Budget summary
// @Description Aggregate allocation, committed, spent and available across budgets
// @Tags        budgets
// @Produce     json
// @Param       type      query string false "Filter by budget type"
// @Param       is_active query bool   false "Filter by active flag"
// @Success     200 {object} services.BudgetSummary "Summary"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/summary [get]
func (h *BudgetHandler) GetBudgetSummary(c *gin.Context) {
	var filter services.SummaryFilter
	if v := c.Query("type"); v != "" {
		t := models.BudgetType(v)
		filter.Type = &t
	}
	if v := c.Query("is_active"); v != "" {
		b := v == "true"
		filter.IsActive = &b
	}

	summary, err := h.utilizationService.GetBudgetSummary(filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Tags        budgets
// @Produce     json
// @Param       id path int true "Budget ID"
// @Success     200 {object} services.BudgetWithStatus "Budget with derived status"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": services.BudgetWithStatus{
		Budget: *budget,
		Status: h.budgetService.GetBudgetStatus(budget),
	}})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id      path int                 true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget fields"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudget(budgetID, services.UpdateBudgetInput{
		Name:             req.Name,
		TotalAmount:      req.TotalAmount,
		WarningThreshold: req.WarningThreshold,
		Enforcement:      req.Enforcement,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		OwnerID:          req.OwnerID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, models.AuditActionUpdateBudget, "budget", budgetID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// RemoveBudget handles the administrative removal of a budget.
// @Summary     Remove budget
// @Description Soft-remove a budget; distinct from closing it
// @Tags        budgets
// @Produce     json
// @Param       id path int true "Budget ID"
// @Success     200 {object} MessageResponse "Budget removed"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) RemoveBudget(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.RemoveBudget(budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, models.AuditActionRemoveBudget, "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget removed successfully"})
}

// GetUtilization handles retrieving utilization for a budget.
// @Summary     Budget utilization
// @Description Committed, spent and available amounts for one budget
// @Tags        budgets
// @Produce     json
// @Param       id path int true "Budget ID"
// @Success     200 {object} services.UtilizationResult "Utilization"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/utilization [get]
func (h *BudgetHandler) GetUtilization(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utilization, err := h.utilizationService.CalculateUtilization(budget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"utilization": utilization})
}

// CheckBudget handles checking an expense amount against one budget.
// @Summary     Check an amount against one budget
// @Description Evaluate whether an expense amount may proceed under the budget's enforcement mode
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id      path int                true "Budget ID"
// @Param       request body CheckBudgetRequest true "Amount to check"
// @Success     200 {object} services.BudgetCheckResult "Check result"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/check [post]
func (h *BudgetHandler) CheckBudget(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CheckBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.GetBudgetByID(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.enforcementService.CheckBudgetForExpense(budget, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"check": result})
}

// CheckExpense handles checking an expense against all applicable budgets.
// @Summary     Check an expense against all applicable budgets
// @Description Resolve applicable budgets from the expense context and apply the most restrictive outcome
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body CheckExpenseRequest true "Expense context"
// @Success     200 {object} services.ExpenseCheckResult "Check result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budgets/check [post]
func (h *BudgetHandler) CheckExpense(c *gin.Context) {
	var req CheckExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.enforcementService.CheckExpenseAgainstBudgets(services.ExpenseContext{
		BudgetID:     req.BudgetID,
		DepartmentID: req.DepartmentID,
		ProjectID:    req.ProjectID,
		CostCenterID: req.CostCenterID,
		CategoryID:   req.CategoryID,
		EmployeeID:   req.EmployeeID,
		Amount:       req.Amount,
		ExpenseDate:  req.ExpenseDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"check": result})
}

// Transfer handles moving funds between two budgets.
// @Summary     Transfer funds between budgets
// @Description Atomically move an amount from one budget's allocation to another's
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body TransferRequest true "Transfer details"
// @Success     200 {object} services.TransferResult "Transfer result"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient funds"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Inactive budget"
// @Router      /budgets/transfer [post]
func (h *BudgetHandler) Transfer(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transferService.Transfer(actorID, req.FromBudgetID, req.ToBudgetID, req.Amount, req.Reason)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transfer": result})
}

// Activate handles re-activating a budget.
// @Summary     Activate budget
// @Tags        budgets
// @Produce     json
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.Budget "Activated budget"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Lifecycle state error"
// @Router      /budgets/{id}/activate [post]
func (h *BudgetHandler) Activate(c *gin.Context) {
	h.lifecycle(c, h.budgetService.Activate)
}

// Close handles closing a budget.
// @Summary     Close budget
// @Description Deactivate a budget, snapshotting the amount consumed so far
// @Tags        budgets
// @Produce     json
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.Budget "Closed budget"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Lifecycle state error"
// @Router      /budgets/{id}/close [post]
func (h *BudgetHandler) Close(c *gin.Context) {
	h.lifecycle(c, h.budgetService.Close)
}

// Archive handles archiving a closed budget.
// @Summary     Archive budget
// @Tags        budgets
// @Produce     json
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.Budget "Archived budget"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Lifecycle state error"
// @Router      /budgets/{id}/archive [post]
func (h *BudgetHandler) Archive(c *gin.Context) {
	h.lifecycle(c, h.budgetService.Archive)
}

// lifecycle runs one of the budget lifecycle transitions.
func (h *BudgetHandler) lifecycle(c *gin.Context, transition func(actorID, id uint) (*models.Budget, error)) {
	actorID, err := getActorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := transition(actorID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": services.BudgetWithStatus{
		Budget: *budget,
		Status: h.budgetService.GetBudgetStatus(budget),
	}})
}
