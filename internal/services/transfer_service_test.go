package services

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"kharcha/internal/models"
	"kharcha/internal/testutil"
)

func TestTransfer(t *testing.T) {
	t.Run("moves allocation between budgets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewUtilizationService(db), NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		from := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(100000))
		to := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(50000))

		result, err := svc.Transfer(user.ID, from.ID, to.ID, decimal.NewFromInt(100000), "year-end reallocation")
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, decimal.Zero, result.FromBalance, "from balance")
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(150000), result.ToBalance, "to balance")
		if result.Reference == "" {
			t.Error("transfer should carry a reference")
		}

		var reloadedFrom, reloadedTo models.Budget
		testutil.AssertNoError(t, db.First(&reloadedFrom, from.ID).Error)
		testutil.AssertNoError(t, db.First(&reloadedTo, to.ID).Error)
		testutil.AssertDecimalEqual(t, decimal.Zero, reloadedFrom.TotalAmount, "persisted from amount")
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(150000), reloadedTo.TotalAmount, "persisted to amount")
	})

	t.Run("audit pair shares the reference", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewUtilizationService(db), NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		from := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))
		to := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))

		result, err := svc.Transfer(user.ID, from.ID, to.ID, decimal.NewFromInt(2500), "shift")
		testutil.AssertNoError(t, err)

		var entries []models.AuditLog
		testutil.AssertNoError(t, db.Where("reference = ?", result.Reference).Order("id").Find(&entries).Error)
		if len(entries) != 2 {
			t.Fatalf("expected TRANSFER_OUT/TRANSFER_IN pair, got %d entries", len(entries))
		}
		if entries[0].Action != models.AuditActionTransferOut || entries[1].Action != models.AuditActionTransferIn {
			t.Errorf("unexpected actions: %s, %s", entries[0].Action, entries[1].Action)
		}
		if entries[0].ResourceID != from.ID || entries[1].ResourceID != to.ID {
			t.Error("audit entries should point at the source and destination budgets")
		}
		if entries[0].Reason != "shift" {
			t.Errorf("expected reason recorded, got %q", entries[0].Reason)
		}
	})

	t.Run("insufficient available funds rejects with figures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewUtilizationService(db), NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		// 100000 allocated, 80000 already consumed: only 20000 available.
		from := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(100000))
		to := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))
		testutil.CreateTestExpenseForBudget(t, db, user.ID, from.ID, models.ExpenseStatusApproved, decimal.NewFromInt(80000))

		_, err := svc.Transfer(user.ID, from.ID, to.ID, decimal.NewFromInt(50000), "too much")
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")
		if !strings.Contains(err.Error(), "20000.00") || !strings.Contains(err.Error(), "50000.00") {
			t.Errorf("error should state available and requested amounts, got %q", err.Error())
		}

		// Nothing mutated.
		var reloadedFrom, reloadedTo models.Budget
		testutil.AssertNoError(t, db.First(&reloadedFrom, from.ID).Error)
		testutil.AssertNoError(t, db.First(&reloadedTo, to.ID).Error)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(100000), reloadedFrom.TotalAmount, "from amount unchanged")
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(10000), reloadedTo.TotalAmount, "to amount unchanged")

		var count int64
		testutil.AssertNoError(t, db.Model(&models.AuditLog{}).Where("resource_id IN ?", []uint{from.ID, to.ID}).Count(&count).Error)
		if count != 0 {
			t.Errorf("failed transfer must write no audit entries, found %d", count)
		}
	})

	t.Run("committed expenses reduce transferable funds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewUtilizationService(db), NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		from := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))
		to := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))
		testutil.CreateTestExpenseForBudget(t, db, user.ID, from.ID, models.ExpenseStatusSubmitted, decimal.NewFromInt(9000))

		_, err := svc.Transfer(user.ID, from.ID, to.ID, decimal.NewFromInt(5000), "over committed")
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")
	})

	t.Run("round trip restores both balances", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewUtilizationService(db), NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		from := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(30000))
		to := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(30000))

		_, err := svc.Transfer(user.ID, from.ID, to.ID, decimal.NewFromInt(7000), "out")
		testutil.AssertNoError(t, err)
		_, err = svc.Transfer(user.ID, to.ID, from.ID, decimal.NewFromInt(7000), "back")
		testutil.AssertNoError(t, err)

		var reloadedFrom, reloadedTo models.Budget
		testutil.AssertNoError(t, db.First(&reloadedFrom, from.ID).Error)
		testutil.AssertNoError(t, db.First(&reloadedTo, to.ID).Error)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(30000), reloadedFrom.TotalAmount, "from amount")
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(30000), reloadedTo.TotalAmount, "to amount")
	})

	t.Run("audit failure rolls back the balance updates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewUtilizationService(db), NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		from := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))
		to := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))

		// Make the audit insert fail so the transaction must roll back.
		if err := db.Migrator().DropTable(&models.AuditLog{}); err != nil {
			t.Fatalf("failed to drop audit table: %v", err)
		}

		_, err := svc.Transfer(user.ID, from.ID, to.ID, decimal.NewFromInt(1000), "doomed")
		if err == nil {
			t.Fatal("transfer should fail when the audit entry cannot be written")
		}

		var reloadedFrom, reloadedTo models.Budget
		testutil.AssertNoError(t, db.First(&reloadedFrom, from.ID).Error)
		testutil.AssertNoError(t, db.First(&reloadedTo, to.ID).Error)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(10000), reloadedFrom.TotalAmount, "from amount unchanged")
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(10000), reloadedTo.TotalAmount, "to amount unchanged")
	})

	t.Run("currency mismatch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewUtilizationService(db), NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		from := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))
		to := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))
		to.Currency = "USD"
		if err := db.Save(to).Error; err != nil {
			t.Fatalf("failed to change currency: %v", err)
		}

		_, err := svc.Transfer(user.ID, from.ID, to.ID, decimal.NewFromInt(100), "fx")
		testutil.AssertAppError(t, err, "CURRENCY_MISMATCH")
	})

	t.Run("inactive budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewUtilizationService(db), NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		from := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))
		to := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))
		to.IsActive = false
		if err := db.Save(to).Error; err != nil {
			t.Fatalf("failed to deactivate: %v", err)
		}

		_, err := svc.Transfer(user.ID, from.ID, to.ID, decimal.NewFromInt(100), "closed target")
		testutil.AssertAppError(t, err, "BUDGET_INACTIVE")
	})

	t.Run("input validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewUtilizationService(db), NewAuditService(db))
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))

		_, err := svc.Transfer(user.ID, budget.ID, budget.ID, decimal.NewFromInt(100), "self")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.Transfer(user.ID, budget.ID, 2, decimal.Zero, "zero")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.Transfer(user.ID, 99999, budget.ID, decimal.NewFromInt(100), "missing")
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}
