package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BusinessPartner 交易伙伴（客户/供应商）
type BusinessPartner struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	PartnerType    string          `json:"partner_type" gorm:"size:16;not null;index"`
	CompanyName    string          `json:"company_name" gorm:"size:128;not null"`
	BusinessNumber string          `json:"business_number" gorm:"size:32"`
	Representative string          `json:"representative" gorm:"size:64"`
	Email          string          `json:"email" gorm:"size:128"`
	Phone          string          `json:"phone" gorm:"size:32"`
	Fax            string          `json:"fax" gorm:"size:32"`
	Address        string          `json:"address" gorm:"size:256"`
	BankName       string          `json:"bank_name" gorm:"size:64"`
	BankAccount    string          `json:"bank_account" gorm:"size:64"`
	CreditLimit    decimal.Decimal `json:"credit_limit" gorm:"type:decimal(20,4);default:0"`
	Notes          string          `json:"notes" gorm:"type:text"`
	IsActive       bool            `json:"is_active" gorm:"not null;default:true"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (BusinessPartner) TableName() string {
	return "business_partners"
}

// 交易伙伴类型常量
const (
	PartnerTypeCustomer = "customer"
	PartnerTypeSupplier = "supplier"
	PartnerTypeBoth     = "both"
)

// AccountCode 会计科目
type AccountCode struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:64;not null"`
	Type      string    `json:"type" gorm:"size:16;not null;index"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
}

func (AccountCode) TableName() string {
	return "account_codes"
}

// 会计科目类型常量
const (
	AccountTypeRevenue = "revenue"
	AccountTypeExpense = "expense"
	AccountTypeAsset   = "asset"
)

// Sale 销售单
type Sale struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	SaleNumber    string          `json:"sale_number" gorm:"size:32;not null;uniqueIndex"`
	PartnerID     uint            `json:"partner_id" gorm:"not null;index"`
	SaleDate      string          `json:"sale_date" gorm:"size:10;not null;index"`
	DueDate       string          `json:"due_date" gorm:"size:10"`
	AccountCodeID uint            `json:"account_code_id" gorm:"not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(20,4);not null"`
	VAT           decimal.Decimal `json:"vat" gorm:"type:decimal(20,4);not null"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(20,4);not null"`
	PaymentStatus string          `json:"payment_status" gorm:"size:16;not null;default:unpaid;index"`
	PaidAmount    decimal.Decimal `json:"paid_amount" gorm:"type:decimal(20,4);not null;default:0"`
	Description   string          `json:"description" gorm:"type:text"`
	EmployeeID    *uint           `json:"employee_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// 关联
	Partner     *BusinessPartner `json:"partner,omitempty" gorm:"foreignKey:PartnerID"`
	AccountCode *AccountCode     `json:"account_code,omitempty" gorm:"foreignKey:AccountCodeID"`
	Employee    *Employee        `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
}

func (Sale) TableName() string {
	return "sales"
}

// Purchase 采购单
type Purchase struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	PurchaseNumber string          `json:"purchase_number" gorm:"size:32;not null;uniqueIndex"`
	PartnerID      uint            `json:"partner_id" gorm:"not null;index"`
	PurchaseDate   string          `json:"purchase_date" gorm:"size:10;not null;index"`
	DueDate        string          `json:"due_date" gorm:"size:10"`
	AccountCodeID  uint            `json:"account_code_id" gorm:"not null"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(20,4);not null"`
	VAT            decimal.Decimal `json:"vat" gorm:"type:decimal(20,4);not null"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(20,4);not null"`
	PaymentStatus  string          `json:"payment_status" gorm:"size:16;not null;default:unpaid"`
	PaidAmount     decimal.Decimal `json:"paid_amount" gorm:"type:decimal(20,4);not null;default:0"`
	Description    string          `json:"description" gorm:"type:text"`
	EmployeeID     *uint           `json:"employee_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// 关联
	Partner     *BusinessPartner `json:"partner,omitempty" gorm:"foreignKey:PartnerID"`
	AccountCode *AccountCode     `json:"account_code,omitempty" gorm:"foreignKey:AccountCodeID"`
}

func (Purchase) TableName() string {
	return "purchases"
}

// Expense 费用报销
type Expense struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	ExpenseNumber  string          `json:"expense_number" gorm:"size:32;not null;uniqueIndex"`
	EmployeeID     uint            `json:"employee_id" gorm:"not null;index"`
	ExpenseDate    string          `json:"expense_date" gorm:"size:10;not null;index"`
	AccountCodeID  uint            `json:"account_code_id" gorm:"not null"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(20,4);not null"`
	VAT            decimal.Decimal `json:"vat" gorm:"type:decimal(20,4);not null"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(20,4);not null"`
	Category       string          `json:"category" gorm:"size:32;not null;default:etc"`
	Description    string          `json:"description" gorm:"type:text;not null"`
	ReceiptURL     string          `json:"receipt_url" gorm:"size:512"`
	ApprovalStatus string          `json:"approval_status" gorm:"size:16;not null;default:pending;index"`
	PaymentStatus  string          `json:"payment_status" gorm:"size:16;not null;default:unpaid"`
	ApprovedBy     *uint           `json:"approved_by"`
	ApprovedAt     *time.Time      `json:"approved_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// 关联
	Employee    *Employee    `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	AccountCode *AccountCode `json:"account_code,omitempty" gorm:"foreignKey:AccountCodeID"`
	Approver    *Employee    `json:"approver,omitempty" gorm:"foreignKey:ApprovedBy"`
}

func (Expense) TableName() string {
	return "expenses"
}

// Budget 预算（按 年/月/部门/科目 唯一）
type Budget struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Year           int             `json:"year" gorm:"not null;uniqueIndex:uniq_budget_scope,priority:1"`
	Month          int             `json:"month" gorm:"not null;uniqueIndex:uniq_budget_scope,priority:2"`
	DepartmentID   *uint           `json:"department_id" gorm:"uniqueIndex:uniq_budget_scope,priority:3"`
	AccountCodeID  uint            `json:"account_code_id" gorm:"not null;uniqueIndex:uniq_budget_scope,priority:4"`
	BudgetedAmount decimal.Decimal `json:"budgeted_amount" gorm:"type:decimal(20,4);not null"`
	ActualAmount   decimal.Decimal `json:"actual_amount" gorm:"type:decimal(20,4);not null;default:0"`
	Notes          string          `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// 关联
	Department  *Department  `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	AccountCode *AccountCode `json:"account_code,omitempty" gorm:"foreignKey:AccountCodeID"`
}

func (Budget) TableName() string {
	return "budgets"
}

// 收付款状态常量
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// 费用审批状态常量
const (
	ExpenseStatusPending  = "pending"
	ExpenseStatusApproved = "approved"
	ExpenseStatusRejected = "rejected"
)

// 单据序号类别常量
const (
	SeqCategorySale     = "sale"
	SeqCategoryPurchase = "purchase"
	SeqCategoryExpense  = "expense"
)
