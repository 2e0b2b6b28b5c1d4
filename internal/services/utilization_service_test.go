package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"kharcha/internal/models"
	"kharcha/internal/testutil"
)

func TestCalculateUtilization(t *testing.T) {
	t.Run("partitions committed and spent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilizationService(db)
		user := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(500000))
		// Committed: submitted 30000 + pending approval 50000 = 80000.
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusSubmitted, decimal.NewFromInt(30000))
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusPendingApproval, decimal.NewFromInt(50000))
		// Spent: approved 100000 + paid 50000 = 150000.
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusApproved, decimal.NewFromInt(100000))
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusPaid, decimal.NewFromInt(50000))
		// Excluded: draft and rejected never count.
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusDraft, decimal.NewFromInt(99999))
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusRejected, decimal.NewFromInt(99999))

		u, err := svc.CalculateUtilization(budget)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, decimal.NewFromInt(80000), u.Committed, "committed")
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(150000), u.Spent, "spent")
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(270000), u.Available, "available")
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(46), u.UtilizationPercentage, "utilization percentage")
		if u.IsOverBudget {
			t.Error("should not be over budget")
		}
		if u.IsAtWarningThreshold {
			t.Error("46% should not hit the 80% warning threshold")
		}
		if u.ExpenseCount != 4 {
			t.Errorf("expected 4 counted expenses, got %d", u.ExpenseCount)
		}
		if u.PendingCount != 2 {
			t.Errorf("expected 2 pending expenses, got %d", u.PendingCount)
		}
	})

	t.Run("clarification requested keeps its reservation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilizationService(db)
		user := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusClarificationRequested, decimal.NewFromInt(3000))
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusResubmitted, decimal.NewFromInt(2000))

		u, err := svc.CalculateUtilization(budget)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(5000), u.Committed, "committed")
	})

	t.Run("warning threshold is inclusive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilizationService(db)
		user := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(100000))
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusApproved, decimal.NewFromInt(80000))

		u, err := svc.CalculateUtilization(budget)
		testutil.AssertNoError(t, err)
		if !u.IsAtWarningThreshold {
			t.Error("exactly 80% should hit the 80% threshold")
		}
	})

	t.Run("over budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilizationService(db)
		user := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(10000))
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusPaid, decimal.NewFromInt(12000))

		u, err := svc.CalculateUtilization(budget)
		testutil.AssertNoError(t, err)
		if !u.IsOverBudget {
			t.Error("should be over budget")
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(-2000), u.Available, "available")
	})

	t.Run("zero allocation has zero utilization", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilizationService(db)
		user := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestBudget(t, db, user.ID, decimal.Zero)
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusApproved, decimal.NewFromInt(500))

		u, err := svc.CalculateUtilization(budget)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.Zero, u.UtilizationPercentage, "utilization percentage")
		if !u.IsOverBudget {
			t.Error("any spend against a zero allocation is over budget")
		}
	})

	t.Run("percentage rounds to two decimals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilizationService(db)
		user := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(30000))
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusApproved, decimal.NewFromInt(10000))

		u, err := svc.CalculateUtilization(budget)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.RequireFromString("33.33"), u.UtilizationPercentage, "utilization percentage")
	})
}

func TestAggregateExpenses(t *testing.T) {
	t.Run("department scope matches members and tagged expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilizationService(db)

		dept := testutil.CreateTestDepartment(t, db)
		member := testutil.CreateTestUserInDepartment(t, db, &dept.ID)
		outsider := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestDepartmentBudget(t, db, member.ID, dept.ID, decimal.NewFromInt(100000))

		// Submitted by a department member: counts.
		testutil.CreateTestExpense(t, db, member.ID, models.ExpenseStatusApproved, decimal.NewFromInt(1000))
		// Carries the department reference: counts.
		byRef := testutil.CreateTestExpense(t, db, outsider.ID, models.ExpenseStatusApproved, decimal.NewFromInt(2000))
		byRef.DepartmentID = &dept.ID
		if err := db.Save(byRef).Error; err != nil {
			t.Fatalf("failed to update expense: %v", err)
		}
		// Explicitly tagged with the budget: counts.
		testutil.CreateTestExpenseForBudget(t, db, outsider.ID, budget.ID, models.ExpenseStatusApproved, decimal.NewFromInt(4000))
		// Unrelated: does not count.
		testutil.CreateTestExpense(t, db, outsider.ID, models.ExpenseStatusApproved, decimal.NewFromInt(8000))

		u, err := svc.CalculateUtilization(budget)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(7000), u.Spent, "spent")
	})

	t.Run("expenses outside the window are excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilizationService(db)
		user := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(100000))
		testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusApproved, decimal.NewFromInt(1000))
		outside := testutil.CreateTestExpenseForBudget(t, db, user.ID, budget.ID, models.ExpenseStatusApproved, decimal.NewFromInt(5000))
		outside.ExpenseDate = budget.StartDate.AddDate(-1, 0, 0)
		if err := db.Save(outside).Error; err != nil {
			t.Fatalf("failed to backdate expense: %v", err)
		}

		u, err := svc.CalculateUtilization(budget)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(1000), u.Spent, "spent")
	})

	t.Run("employee scope matches submitter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilizationService(db)

		employee := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestBudget(t, db, employee.ID, decimal.NewFromInt(50000))
		budget.Type = models.BudgetTypeEmployee
		budget.EmployeeID = &employee.ID
		if err := db.Save(budget).Error; err != nil {
			t.Fatalf("failed to scope budget: %v", err)
		}

		testutil.CreateTestExpense(t, db, employee.ID, models.ExpenseStatusPaid, decimal.NewFromInt(3000))
		testutil.CreateTestExpense(t, db, other.ID, models.ExpenseStatusPaid, decimal.NewFromInt(9000))

		u, err := svc.CalculateUtilization(budget)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(3000), u.Spent, "spent")
	})
}

func TestGetBudgetSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUtilizationService(db)
	user := testutil.CreateTestUser(t, db)

	a := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(100000))
	b := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(50000))
	testutil.CreateTestExpenseForBudget(t, db, user.ID, a.ID, models.ExpenseStatusApproved, decimal.NewFromInt(90000))
	testutil.CreateTestExpenseForBudget(t, db, user.ID, b.ID, models.ExpenseStatusSubmitted, decimal.NewFromInt(10000))

	summary, err := svc.GetBudgetSummary(SummaryFilter{})
	testutil.AssertNoError(t, err)

	if summary.BudgetCount != 2 {
		t.Fatalf("expected 2 budgets, got %d", summary.BudgetCount)
	}
	testutil.AssertDecimalEqual(t, decimal.NewFromInt(150000), summary.TotalAllocated, "total allocated")
	testutil.AssertDecimalEqual(t, decimal.NewFromInt(10000), summary.TotalCommitted, "total committed")
	testutil.AssertDecimalEqual(t, decimal.NewFromInt(90000), summary.TotalSpent, "total spent")
	testutil.AssertDecimalEqual(t, decimal.NewFromInt(50000), summary.TotalAvailable, "total available")
	if summary.ActiveCount != 2 {
		t.Errorf("expected 2 active budgets, got %d", summary.ActiveCount)
	}
	// Budget a sits at 90% utilization, past its 80% threshold.
	if summary.AtWarningCount != 1 {
		t.Errorf("expected 1 budget at warning, got %d", summary.AtWarningCount)
	}
	if summary.OverBudgetCount != 0 {
		t.Errorf("expected no over-budget budgets, got %d", summary.OverBudgetCount)
	}

	t.Run("type filter", func(t *testing.T) {
		project := models.BudgetTypeProject
		s, err := svc.GetBudgetSummary(SummaryFilter{Type: &project})
		testutil.AssertNoError(t, err)
		if s.BudgetCount != 0 {
			t.Errorf("expected no project budgets, got %d", s.BudgetCount)
		}
	})

}
