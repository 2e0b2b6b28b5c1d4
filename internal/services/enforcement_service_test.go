package services

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kharcha/internal/models"
	"kharcha/internal/testutil"
)

func TestCheckBudgetForExpense(t *testing.T) {
	// A 500000 budget with 450000 already approved leaves 50000 available;
	// checking a 100000 expense projects 110% utilization.
	setup := func(t *testing.T, enforcement models.EnforcementMode) (EnforcementServicer, *models.Budget, func()) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(500000))
		budget.Enforcement = enforcement
		if err := db.Save(budget).Error; err != nil {
			t.Fatalf("failed to set enforcement: %v", err)
		}
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusApproved, decimal.NewFromInt(450000))

		svc := NewEnforcementService(db, NewUtilizationService(db))
		return svc, budget, func() { testutil.TeardownTestDB(t, db) }
	}

	t.Run("soft warning lets an overrun proceed", func(t *testing.T) {
		svc, budget, teardown := setup(t, models.EnforcementSoftWarning)
		defer teardown()

		check, err := svc.CheckBudgetForExpense(budget, decimal.NewFromInt(100000))
		testutil.AssertNoError(t, err)

		if !check.CanProceed {
			t.Error("soft warning must not block the expense")
		}
		if !check.WouldExceed {
			t.Error("expense should exceed the budget")
		}
		if check.EnforcementAction != ActionSoftWarning {
			t.Errorf("expected soft_warning action, got %s", check.EnforcementAction)
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(110), check.ProjectedUtilization, "projected utilization")
		if !strings.Contains(check.Message, "Warning") {
			t.Errorf("expected a warning message, got %q", check.Message)
		}
	})

	t.Run("hard block stops an overrun", func(t *testing.T) {
		svc, budget, teardown := setup(t, models.EnforcementHardBlock)
		defer teardown()

		check, err := svc.CheckBudgetForExpense(budget, decimal.NewFromInt(100000))
		testutil.AssertNoError(t, err)

		if check.CanProceed {
			t.Error("hard block must stop the expense")
		}
		if check.EnforcementAction != ActionHardBlock {
			t.Errorf("expected hard_block action, got %s", check.EnforcementAction)
		}
		// The refusal names the available amount so the submitter can react.
		if !strings.Contains(check.Message, "50000.00") {
			t.Errorf("message should state the available amount, got %q", check.Message)
		}
	})

	t.Run("auto escalate flags for additional approval", func(t *testing.T) {
		svc, budget, teardown := setup(t, models.EnforcementAutoEscalate)
		defer teardown()

		check, err := svc.CheckBudgetForExpense(budget, decimal.NewFromInt(100000))
		testutil.AssertNoError(t, err)

		if !check.CanProceed {
			t.Error("escalation must not block the expense")
		}
		if check.EnforcementAction != ActionEscalate {
			t.Errorf("expected escalate action, got %s", check.EnforcementAction)
		}
	})

	t.Run("within budget but past threshold warns", func(t *testing.T) {
		svc, budget, teardown := setup(t, models.EnforcementHardBlock)
		defer teardown()

		// 450000 + 30000 = 96% of 500000: within budget, above threshold.
		check, err := svc.CheckBudgetForExpense(budget, decimal.NewFromInt(30000))
		testutil.AssertNoError(t, err)

		if !check.CanProceed {
			t.Error("expense within budget must proceed")
		}
		if check.WouldExceed {
			t.Error("expense should not exceed the budget")
		}
		if !check.WouldTriggerWarning {
			t.Error("96% projected utilization should trigger the warning")
		}
		if check.EnforcementAction != ActionNone {
			t.Errorf("expected no enforcement action, got %s", check.EnforcementAction)
		}
	})

	t.Run("well under budget is silent", func(t *testing.T) {
		svc, budget, teardown := setup(t, models.EnforcementHardBlock)
		defer teardown()

		check, err := svc.CheckBudgetForExpense(budget, decimal.NewFromInt(1000))
		testutil.AssertNoError(t, err)

		if !check.CanProceed || check.WouldExceed || check.WouldTriggerWarning {
			t.Error("small expense should pass without flags")
		}
		if check.Message != "" {
			t.Errorf("expected no message, got %q", check.Message)
		}
	})
}

func TestFindApplicableBudgets(t *testing.T) {
	t.Run("matches scopes independently", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		svc := NewEnforcementService(db, NewUtilizationService(db))

		dept := testutil.CreateTestDepartment(t, db)
		category := testutil.CreateTestCategory(t, db)

		deptBudget := testutil.CreateTestDepartmentBudget(t, db, user.ID, dept.ID, decimal.NewFromInt(100000))
		catBudget := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(50000))
		catBudget.Type = models.BudgetTypeCategory
		catBudget.CategoryID = &category.ID
		if err := db.Save(catBudget).Error; err != nil {
			t.Fatalf("failed to scope budget: %v", err)
		}

		budgets, err := svc.FindApplicableBudgets(ExpenseContext{
			DepartmentID: &dept.ID,
			CategoryID:   &category.ID,
			ExpenseDate:  time.Now().UTC(),
		})
		testutil.AssertNoError(t, err)

		if len(budgets) != 2 {
			t.Fatalf("expected 2 applicable budgets, got %d", len(budgets))
		}
		if budgets[0].ID != deptBudget.ID || budgets[1].ID != catBudget.ID {
			t.Error("expected department budget first, then category budget")
		}
	})

	t.Run("explicit budget id deduplicates against scope match", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		svc := NewEnforcementService(db, NewUtilizationService(db))

		dept := testutil.CreateTestDepartment(t, db)
		budget := testutil.CreateTestDepartmentBudget(t, db, user.ID, dept.ID, decimal.NewFromInt(100000))

		budgets, err := svc.FindApplicableBudgets(ExpenseContext{
			BudgetID:     &budget.ID,
			DepartmentID: &dept.ID,
			ExpenseDate:  time.Now().UTC(),
		})
		testutil.AssertNoError(t, err)

		if len(budgets) != 1 {
			t.Fatalf("expected the budget once, got %d entries", len(budgets))
		}
	})

	t.Run("ignores inactive budgets and windows not covering the date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		svc := NewEnforcementService(db, NewUtilizationService(db))

		dept := testutil.CreateTestDepartment(t, db)
		inactive := testutil.CreateTestDepartmentBudget(t, db, user.ID, dept.ID, decimal.NewFromInt(100000))
		inactive.IsActive = false
		if err := db.Save(inactive).Error; err != nil {
			t.Fatalf("failed to deactivate budget: %v", err)
		}

		budgets, err := svc.FindApplicableBudgets(ExpenseContext{
			DepartmentID: &dept.ID,
			ExpenseDate:  time.Now().UTC(),
		})
		testutil.AssertNoError(t, err)
		if len(budgets) != 0 {
			t.Errorf("inactive budget should not apply, got %d", len(budgets))
		}

		// Reactivate but check a date outside the window.
		inactive.IsActive = true
		if err := db.Save(inactive).Error; err != nil {
			t.Fatalf("failed to reactivate budget: %v", err)
		}
		budgets, err = svc.FindApplicableBudgets(ExpenseContext{
			DepartmentID: &dept.ID,
			ExpenseDate:  inactive.EndDate.AddDate(0, 1, 0),
		})
		testutil.AssertNoError(t, err)
		if len(budgets) != 0 {
			t.Errorf("date outside the window should not apply, got %d", len(budgets))
		}
	})
}

func TestCheckExpenseAgainstBudgets(t *testing.T) {
	t.Run("no applicable budgets allows the expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnforcementService(db, NewUtilizationService(db))

		result, err := svc.CheckExpenseAgainstBudgets(ExpenseContext{
			Amount:      decimal.NewFromInt(1000),
			ExpenseDate: time.Now().UTC(),
		})
		testutil.AssertNoError(t, err)

		if !result.Allowed {
			t.Error("expense with no applicable budgets must be allowed")
		}
		if result.Message != "No applicable budgets for this expense" {
			t.Errorf("unexpected message: %q", result.Message)
		}
	})

	t.Run("one blocking budget blocks the whole expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		svc := NewEnforcementService(db, NewUtilizationService(db))

		dept := testutil.CreateTestDepartment(t, db)
		category := testutil.CreateTestCategory(t, db)

		// Roomy department budget with soft warnings.
		testutil.CreateTestDepartmentBudget(t, db, user.ID, dept.ID, decimal.NewFromInt(1000000))
		// Tight category budget that hard blocks.
		tight := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(5000))
		tight.Type = models.BudgetTypeCategory
		tight.CategoryID = &category.ID
		tight.Enforcement = models.EnforcementHardBlock
		if err := db.Save(tight).Error; err != nil {
			t.Fatalf("failed to scope budget: %v", err)
		}

		result, err := svc.CheckExpenseAgainstBudgets(ExpenseContext{
			DepartmentID: &dept.ID,
			CategoryID:   &category.ID,
			Amount:       decimal.NewFromInt(10000),
			ExpenseDate:  time.Now().UTC(),
		})
		testutil.AssertNoError(t, err)

		if result.Allowed {
			t.Error("a hard-blocking budget must block the whole expense")
		}
		if len(result.Results) != 2 {
			t.Fatalf("expected 2 per-budget results, got %d", len(result.Results))
		}
		if !strings.Contains(result.Message, tight.Name) {
			t.Errorf("message should name the blocking budget, got %q", result.Message)
		}
	})

	t.Run("escalation outranks warnings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		svc := NewEnforcementService(db, NewUtilizationService(db))

		dept := testutil.CreateTestDepartment(t, db)
		esc := testutil.CreateTestDepartmentBudget(t, db, user.ID, dept.ID, decimal.NewFromInt(5000))
		esc.Enforcement = models.EnforcementAutoEscalate
		if err := db.Save(esc).Error; err != nil {
			t.Fatalf("failed to set enforcement: %v", err)
		}

		result, err := svc.CheckExpenseAgainstBudgets(ExpenseContext{
			DepartmentID: &dept.ID,
			Amount:       decimal.NewFromInt(10000),
			ExpenseDate:  time.Now().UTC(),
		})
		testutil.AssertNoError(t, err)

		if !result.Allowed {
			t.Error("escalation must not block the expense")
		}
		if !result.RequiresEscalation {
			t.Error("result should require escalation")
		}
		if !strings.Contains(result.Message, "additional approval") {
			t.Errorf("unexpected message: %q", result.Message)
		}
	})
}
