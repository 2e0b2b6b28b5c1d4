package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "kharcha/internal/errors"
	"kharcha/internal/models"
	"kharcha/internal/services"
)

// PeriodHandler handles budget period calculations.
type PeriodHandler struct {
	periodService services.PeriodServicer
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodService services.PeriodServicer) *PeriodHandler {
	return &PeriodHandler{periodService: periodService}
}

// GetPeriodDates handles computing the start and end dates of a period.
// @Summary     Compute period dates
// @Description Calculate the start and end instants of an annual, quarterly or monthly period
// @Tags        periods
// @Produce     json
// @Param       period  query string true  "Period type (annual, quarterly, monthly)"
// @Param       year    query int    true  "Fiscal year"
// @Param       quarter query int    false "Quarter (1-4, quarterly only)"
// @Param       month   query int    false "Month (1-12, monthly only)"
// @Success     200 {object} services.PeriodDates "Period window"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /periods/dates [get]
func (h *PeriodHandler) GetPeriodDates(c *gin.Context) {
	period := models.BudgetPeriod(c.Query("period"))

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid year"))
		return
	}

	quarter, _ := strconv.Atoi(c.DefaultQuery("quarter", "0"))
	month, _ := strconv.Atoi(c.DefaultQuery("month", "0"))

	dates, err := h.periodService.ComputePeriodDates(period, year, quarter, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": dates})
}

// GetCurrentPeriod handles identifying the current period.
// @Summary     Current period
// @Description Identify the year, quarter or month the current instant falls in
// @Tags        periods
// @Produce     json
// @Param       period query string true "Period type (annual, quarterly, monthly)"
// @Success     200 {object} services.CurrentPeriod "Current period"
// @Router      /periods/current [get]
func (h *PeriodHandler) GetCurrentPeriod(c *gin.Context) {
	period := models.BudgetPeriod(c.Query("period"))
	c.JSON(http.StatusOK, gin.H{"period": h.periodService.CurrentPeriod(period)})
}
