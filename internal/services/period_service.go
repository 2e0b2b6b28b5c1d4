package services

import (
	"time"

	"kharcha/internal/clock"
	apperrors "kharcha/internal/errors"
	"kharcha/internal/models"
)

// periodService computes period boundaries. All windows are in UTC.
type periodService struct {
	clock clock.Clock
}

// NewPeriodService creates a new PeriodServicer.
func NewPeriodService(clk clock.Clock) PeriodServicer {
	return &periodService{clock: clk}
}

// ComputePeriodDates returns the [start, end] window for the given period.
// The end is the last second of the period. Month lengths and leap years
// are handled by asking for day 0 of the following month.
func (s *periodService) ComputePeriodDates(period models.BudgetPeriod, fiscalYear, quarter, month int) (*PeriodDates, error) {
	switch period {
	case models.BudgetPeriodAnnual:
		return &PeriodDates{
			StartDate: time.Date(fiscalYear, time.January, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(fiscalYear, time.December, 31, 23, 59, 59, 0, time.UTC),
		}, nil

	case models.BudgetPeriodQuarterly:
		if quarter < 1 || quarter > 4 {
			return nil, apperrors.ErrInvalidQuarter
		}
		startMonth := time.Month((quarter-1)*3 + 1)
		return &PeriodDates{
			StartDate: time.Date(fiscalYear, startMonth, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(fiscalYear, startMonth+3, 0, 23, 59, 59, 0, time.UTC),
		}, nil

	case models.BudgetPeriodMonthly:
		if month < 1 || month > 12 {
			return nil, apperrors.ErrInvalidMonth
		}
		return &PeriodDates{
			StartDate: time.Date(fiscalYear, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(fiscalYear, time.Month(month)+1, 0, 23, 59, 59, 0, time.UTC),
		}, nil

	case models.BudgetPeriodProjectBased:
		return nil, apperrors.ErrProjectBasedPeriod

	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown budget period: "+string(period))
	}
}

// CurrentPeriod returns the period the current instant falls in.
func (s *periodService) CurrentPeriod(period models.BudgetPeriod) CurrentPeriod {
	now := s.clock.Now()
	result := CurrentPeriod{Year: now.Year()}

	switch period {
	case models.BudgetPeriodQuarterly:
		q := (int(now.Month()) + 2) / 3
		result.Quarter = &q
	case models.BudgetPeriodMonthly:
		m := int(now.Month())
		result.Month = &m
	}

	return result
}
