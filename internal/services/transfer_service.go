package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kharcha/internal/errors"
	"kharcha/internal/models"
	"kharcha/internal/uuid"
)

// transferService moves funds between budgets.
type transferService struct {
	db          *gorm.DB
	utilization UtilizationServicer
	audit       AuditServicer
}

// NewTransferService creates a new TransferServicer.
func NewTransferService(db *gorm.DB, utilization UtilizationServicer, audit AuditServicer) TransferServicer {
	return &transferService{db: db, utilization: utilization, audit: audit}
}

// Transfer moves amount from one budget to another as a single atomic
// unit: two balance updates plus the TRANSFER_OUT/TRANSFER_IN audit pair,
// all of which commit or roll back together. The balance updates are
// compare-and-set against the amounts read inside the transaction, so two
// concurrent transfers from the same budget cannot both apply against a
// stale balance.
func (s *transferService) Transfer(actorID, fromID, toID uint, amount decimal.Decimal, reason string) (*TransferResult, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer amount must be positive")
	}
	if fromID == toID {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cannot transfer a budget to itself")
	}

	var result *TransferResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		from, err := lockBudget(tx, fromID)
		if err != nil {
			return err
		}
		to, err := lockBudget(tx, toID)
		if err != nil {
			return err
		}

		if from.Currency != to.Currency {
			return apperrors.WithMessage(apperrors.ErrCurrencyMismatch,
				fmt.Sprintf("Cannot transfer between different currencies (%s and %s)", from.Currency, to.Currency))
		}
		if !from.IsActive || !to.IsActive {
			return apperrors.ErrBudgetInactive
		}

		u, err := s.utilization.CalculateUtilizationTx(tx, from)
		if err != nil {
			return err
		}
		if u.Available.LessThan(amount) {
			return apperrors.WithMessage(apperrors.ErrInsufficientFunds,
				fmt.Sprintf("Insufficient available funds in budget '%s': available %s, requested %s",
					from.Name, u.Available.StringFixed(2), amount.StringFixed(2)))
		}

		oldFrom := from.TotalAmount
		oldTo := to.TotalAmount
		newFrom := oldFrom.Sub(amount)
		newTo := oldTo.Add(amount)

		if err := casTotalAmount(tx, from.ID, oldFrom, newFrom); err != nil {
			return err
		}
		if err := casTotalAmount(tx, to.ID, oldTo, newTo); err != nil {
			return err
		}

		reference := uuid.New()
		out := &models.AuditLog{
			ActorID:      actorID,
			Action:       models.AuditActionTransferOut,
			ResourceType: "budget",
			ResourceID:   from.ID,
			Reference:    reference,
			Reason:       reason,
			Changes: marshalChanges(map[string]interface{}{
				"old_amount":     oldFrom,
				"new_amount":     newFrom,
				"counterpart_id": to.ID,
			}),
		}
		in := &models.AuditLog{
			ActorID:      actorID,
			Action:       models.AuditActionTransferIn,
			ResourceType: "budget",
			ResourceID:   to.ID,
			Reference:    reference,
			Reason:       reason,
			Changes: marshalChanges(map[string]interface{}{
				"old_amount":     oldTo,
				"new_amount":     newTo,
				"counterpart_id": from.ID,
			}),
		}
		if err := s.audit.LogTx(tx, out); err != nil {
			return err
		}
		if err := s.audit.LogTx(tx, in); err != nil {
			return err
		}

		result = &TransferResult{
			Reference:    reference,
			FromBudgetID: from.ID,
			ToBudgetID:   to.ID,
			Amount:       amount,
			FromBalance:  newFrom,
			ToBalance:    newTo,
			Message: fmt.Sprintf("Transferred %s %s from '%s' to '%s'",
				from.Currency, amount.StringFixed(2), from.Name, to.Name),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockBudget loads a budget inside the transaction for update.
func lockBudget(tx *gorm.DB, id uint) (*models.Budget, error) {
	var budget models.Budget
	if err := tx.First(&budget, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrBudgetNotFound, fmt.Sprintf("Budget %d not found", id))
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// casTotalAmount updates a budget's total amount only if it still holds the
// value read inside this transaction. A zero row count means another
// transfer won the race; the whole transaction rolls back.
func casTotalAmount(tx *gorm.DB, id uint, old, updated decimal.Decimal) error {
	res := tx.Model(&models.Budget{}).
		Where("id = ? AND total_amount = ?", id, old).
		Update("total_amount", updated)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.WithMessage(apperrors.ErrInternalServer,
			fmt.Sprintf("Budget %d was modified concurrently; transfer aborted", id))
	}
	return nil
}
