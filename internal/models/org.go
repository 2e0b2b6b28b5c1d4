package models

// Reference entities owned by the organization service. The engine only
// checks existence when validating a budget's scope reference, and joins
// users to departments when aggregating department budgets.

// Department is an organizational department.
type Department struct {
	Base
	Name string `gorm:"not null" json:"name"`
}

// Project is a project a budget or expense can be scoped to.
type Project struct {
	Base
	Name string `gorm:"not null" json:"name"`
}

// CostCenter is an accounting cost center.
type CostCenter struct {
	Base
	Name string `gorm:"not null" json:"name"`
	Code string `gorm:"uniqueIndex" json:"code"`
}

// Category is an expense category.
type Category struct {
	Base
	Name string `gorm:"not null" json:"name"`
}

// User is an employee who submits expenses and can own budgets.
type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DepartmentID *uint  `gorm:"index" json:"department_id,omitempty"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
