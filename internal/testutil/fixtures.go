package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"kharcha/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestDepartment creates a department with a unique name.
func CreateTestDepartment(t *testing.T, db *gorm.DB) *models.Department {
	t.Helper()

	dept := &models.Department{Name: fmt.Sprintf("Test Department %d", nextID())}
	if err := db.Create(dept).Error; err != nil {
		t.Fatalf("failed to create test department: %v", err)
	}
	return dept
}

// CreateTestProject creates a project with a unique name.
func CreateTestProject(t *testing.T, db *gorm.DB) *models.Project {
	t.Helper()

	project := &models.Project{Name: fmt.Sprintf("Test Project %d", nextID())}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// CreateTestCostCenter creates a cost center with a unique code.
func CreateTestCostCenter(t *testing.T, db *gorm.DB) *models.CostCenter {
	t.Helper()

	n := nextID()
	cc := &models.CostCenter{
		Name: fmt.Sprintf("Test Cost Center %d", n),
		Code: fmt.Sprintf("CC-%04d", n),
	}
	if err := db.Create(cc).Error; err != nil {
		t.Fatalf("failed to create test cost center: %v", err)
	}
	return cc
}

// CreateTestCategory creates an expense category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	category := &models.Category{Name: fmt.Sprintf("Test Category %d", nextID())}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestUser creates a user with a unique email and no department.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserInDepartment(t, db, nil)
}

// CreateTestUserInDepartment creates a user belonging to the given department.
func CreateTestUserInDepartment(t *testing.T, db *gorm.DB, departmentID *uint) *models.User {
	t.Helper()

	n := nextID()
	user := &models.User{
		Email:        fmt.Sprintf("user%d@test.com", n),
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%d", n),
		DepartmentID: departmentID,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBudget creates an active ad-hoc annual budget for the current
// year. Ad-hoc budgets only aggregate expenses tagged with their id, which
// keeps utilization fixtures independent of each other.
func CreateTestBudget(t *testing.T, db *gorm.DB, ownerID uint, total decimal.Decimal) *models.Budget {
	t.Helper()

	year := time.Now().UTC().Year()
	budget := &models.Budget{
		Name:             fmt.Sprintf("Test Budget %d", nextID()),
		Type:             models.BudgetTypeDepartment,
		Period:           models.BudgetPeriodAnnual,
		TotalAmount:      total,
		WarningThreshold: decimal.NewFromInt(80),
		Enforcement:      models.EnforcementSoftWarning,
		StartDate:        time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC),
		Currency:         "PKR",
		IsActive:         true,
		OwnerID:          ownerID,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestDepartmentBudget creates an active annual budget scoped to the
// given department.
func CreateTestDepartmentBudget(t *testing.T, db *gorm.DB, ownerID, departmentID uint, total decimal.Decimal) *models.Budget {
	t.Helper()

	budget := CreateTestBudget(t, db, ownerID, total)
	budget.DepartmentID = &departmentID
	if err := db.Save(budget).Error; err != nil {
		t.Fatalf("failed to scope test budget to department: %v", err)
	}
	return budget
}

// CreateTestExpense creates an expense in the given status, dated now.
func CreateTestExpense(t *testing.T, db *gorm.DB, submitterID uint, status models.ExpenseStatus, amount decimal.Decimal) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		Title:       fmt.Sprintf("Test Expense %d", nextID()),
		Status:      status,
		BaseAmount:  amount,
		Currency:    "PKR",
		ExpenseDate: time.Now().UTC(),
		SubmitterID: submitterID,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestExpenseForBudget creates an expense explicitly tagged with the
// given budget.
func CreateTestExpenseForBudget(t *testing.T, db *gorm.DB, submitterID, budgetID uint, status models.ExpenseStatus, amount decimal.Decimal) *models.Expense {
	t.Helper()

	expense := CreateTestExpense(t, db, submitterID, status, amount)
	expense.BudgetID = &budgetID
	if err := db.Save(expense).Error; err != nil {
		t.Fatalf("failed to tag test expense with budget: %v", err)
	}
	return expense
}
