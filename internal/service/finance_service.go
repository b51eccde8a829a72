package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"github.com/Minsekko/SJP-HR/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// 默认增值税率 10%
var defaultVATRate = decimal.NewFromFloat(0.1)

// FinanceService 财务服务。销售、采购、费用报销、预算和基础数据。
type FinanceService struct {
	financeRepo  *repository.FinanceRepository
	employeeRepo *repository.EmployeeRepository
}

// NewFinanceService 创建财务服务
func NewFinanceService(financeRepo *repository.FinanceRepository, employeeRepo *repository.EmployeeRepository) *FinanceService {
	return &FinanceService{
		financeRepo:  financeRepo,
		employeeRepo: employeeRepo,
	}
}

// ============================================================
// 销售
// ============================================================

// CreateSaleRequest 创建销售单请求。VAT 不传时按默认税率计算。
type CreateSaleRequest struct {
	PartnerID     uint             `json:"partner_id" binding:"required"`
	SaleDate      string           `json:"sale_date" binding:"required"`
	DueDate       string           `json:"due_date"`
	AccountCodeID uint             `json:"account_code_id" binding:"required"`
	Amount        decimal.Decimal  `json:"amount" binding:"required"`
	VAT           *decimal.Decimal `json:"vat"`
	Description   string           `json:"description"`
	EmployeeID    *uint            `json:"employee_id"`
}

// UpdateSaleRequest 更新销售单请求
type UpdateSaleRequest struct {
	DueDate     string `json:"due_date"`
	Description string `json:"description"`
}

// RecordPaymentRequest 销售回款请求
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// SaleListResult 销售单列表结果，含合计
type SaleListResult struct {
	Items   []entity.Sale           `json:"items"`
	Summary *repository.SaleSummary `json:"summary"`
}

func vatFor(amount decimal.Decimal, override *decimal.Decimal) (vat, total decimal.Decimal) {
	if override != nil {
		vat = *override
	} else {
		vat = amount.Mul(defaultVATRate)
	}
	return vat, amount.Add(vat)
}

// ListSales 销售单列表，附带同一过滤条件下的金额合计
func (s *FinanceService) ListSales(ctx context.Context, page, pageSize int, filters map[string]interface{}) (*SaleListResult, error) {
	items, err := s.financeRepo.ListSales(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	summary, err := s.financeRepo.SumSales(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("sum sales: %w", err)
	}
	return &SaleListResult{Items: items, Summary: summary}, nil
}

// GetSale 销售单详情
func (s *FinanceService) GetSale(ctx context.Context, id uint) (*entity.Sale, error) {
	return s.financeRepo.FindSaleByID(ctx, id)
}

// CreateSale 创建销售单
func (s *FinanceService) CreateSale(ctx context.Context, req *CreateSaleRequest) (*entity.Sale, error) {
	if req.PartnerID == 0 || req.SaleDate == "" || req.AccountCodeID == 0 {
		return nil, fmt.Errorf("%w: partner_id, sale_date and account_code_id are required", ErrValidation)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	vat, total := vatFor(req.Amount, req.VAT)
	sale := &entity.Sale{
		PartnerID:     req.PartnerID,
		SaleDate:      req.SaleDate,
		DueDate:       req.DueDate,
		AccountCodeID: req.AccountCodeID,
		Amount:        req.Amount,
		VAT:           vat,
		TotalAmount:   total,
		PaymentStatus: entity.PaymentStatusUnpaid,
		PaidAmount:    decimal.Zero,
		Description:   req.Description,
		EmployeeID:    req.EmployeeID,
	}
	if err := s.financeRepo.CreateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	return s.financeRepo.FindSaleByID(ctx, sale.ID)
}

// UpdateSale 更新销售单的非金额字段
func (s *FinanceService) UpdateSale(ctx context.Context, id uint, req *UpdateSaleRequest) (*entity.Sale, error) {
	sale, err := s.financeRepo.FindSaleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DueDate != "" {
		sale.DueDate = req.DueDate
	}
	if req.Description != "" {
		sale.Description = req.Description
	}
	if err := s.financeRepo.UpdateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("update sale: %w", err)
	}
	return s.financeRepo.FindSaleByID(ctx, id)
}

// RecordPayment 登记销售回款并刷新收款状态
func (s *FinanceService) RecordPayment(ctx context.Context, id uint, req *RecordPaymentRequest) (*entity.Sale, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	sale, err := s.financeRepo.FindSaleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sale.PaidAmount = sale.PaidAmount.Add(req.Amount)
	switch {
	case sale.PaidAmount.GreaterThanOrEqual(sale.TotalAmount):
		sale.PaymentStatus = entity.PaymentStatusPaid
	case sale.PaidAmount.GreaterThan(decimal.Zero):
		sale.PaymentStatus = entity.PaymentStatusPartial
	default:
		sale.PaymentStatus = entity.PaymentStatusUnpaid
	}

	if err := s.financeRepo.UpdateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return s.financeRepo.FindSaleByID(ctx, id)
}

var saleExportHeaders = []string{
	"销售单号", "客户", "销售日期", "到期日", "科目",
	"金额", "税额", "合计", "已收", "收款状态", "摘要",
}

// ExportSales 导出销售单为xlsx
func (s *FinanceService) ExportSales(ctx context.Context, filters map[string]interface{}) (*excelize.File, string, error) {
	sales, err := s.financeRepo.ListSales(ctx, 1, 10000, filters)
	if err != nil {
		return nil, "", fmt.Errorf("list sales: %w", err)
	}

	f := excelize.NewFile()
	sheet := "销售"
	f.SetSheetName("Sheet1", sheet)

	// 表头样式: 加粗
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range saleExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	total := decimal.Zero
	paid := decimal.Zero
	for rowIdx, sale := range sales {
		row := rowIdx + 2
		partnerName := ""
		if sale.Partner != nil {
			partnerName = sale.Partner.CompanyName
		}
		accountName := ""
		if sale.AccountCode != nil {
			accountName = sale.AccountCode.Name
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), sale.SaleNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), partnerName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), sale.SaleDate)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), sale.DueDate)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), accountName)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), sale.Amount.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), sale.VAT.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), sale.TotalAmount.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), sale.PaidAmount.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), sale.PaymentStatus)
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), sale.Description)
		total = total.Add(sale.TotalAmount)
		paid = paid.Add(sale.PaidAmount)
	}

	// 底部汇总行
	summaryRow := len(sales) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "汇总")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow), fmt.Sprintf("总单数: %d", len(sales)))
	f.SetCellValue(sheet, fmt.Sprintf("H%d", summaryRow), total.InexactFloat64())
	f.SetCellValue(sheet, fmt.Sprintf("I%d", summaryRow), paid.InexactFloat64())
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("K%d", summaryRow), summaryStyle)

	colWidths := []float64{18, 24, 12, 12, 16, 12, 12, 12, 12, 10, 24}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("sales_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}

// ============================================================
// 采购
// ============================================================

// CreatePurchaseRequest 创建采购单请求
type CreatePurchaseRequest struct {
	PartnerID     uint             `json:"partner_id" binding:"required"`
	PurchaseDate  string           `json:"purchase_date" binding:"required"`
	DueDate       string           `json:"due_date"`
	AccountCodeID uint             `json:"account_code_id" binding:"required"`
	Amount        decimal.Decimal  `json:"amount" binding:"required"`
	VAT           *decimal.Decimal `json:"vat"`
	Description   string           `json:"description"`
	EmployeeID    *uint            `json:"employee_id"`
}

// ListPurchases 采购单列表
func (s *FinanceService) ListPurchases(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Purchase, error) {
	return s.financeRepo.ListPurchases(ctx, page, pageSize, filters)
}

// CreatePurchase 创建采购单
func (s *FinanceService) CreatePurchase(ctx context.Context, req *CreatePurchaseRequest) (*entity.Purchase, error) {
	if req.PartnerID == 0 || req.PurchaseDate == "" || req.AccountCodeID == 0 {
		return nil, fmt.Errorf("%w: partner_id, purchase_date and account_code_id are required", ErrValidation)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	vat, total := vatFor(req.Amount, req.VAT)
	purchase := &entity.Purchase{
		PartnerID:     req.PartnerID,
		PurchaseDate:  req.PurchaseDate,
		DueDate:       req.DueDate,
		AccountCodeID: req.AccountCodeID,
		Amount:        req.Amount,
		VAT:           vat,
		TotalAmount:   total,
		PaymentStatus: entity.PaymentStatusUnpaid,
		PaidAmount:    decimal.Zero,
		Description:   req.Description,
		EmployeeID:    req.EmployeeID,
	}
	if err := s.financeRepo.CreatePurchase(ctx, purchase); err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}
	return purchase, nil
}

// ============================================================
// 费用报销
// ============================================================

// CreateExpenseRequest 创建费用报销请求
type CreateExpenseRequest struct {
	ExpenseDate   string           `json:"expense_date" binding:"required"`
	AccountCodeID uint             `json:"account_code_id" binding:"required"`
	Amount        decimal.Decimal  `json:"amount" binding:"required"`
	VAT           *decimal.Decimal `json:"vat"`
	Category      string           `json:"category"`
	Description   string           `json:"description" binding:"required"`
	ReceiptURL    string           `json:"receipt_url"`
}

// ListExpenses 费用报销列表
func (s *FinanceService) ListExpenses(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Expense, error) {
	return s.financeRepo.ListExpenses(ctx, page, pageSize, filters)
}

// CreateExpense 创建费用报销，申请人取当前登录员工
func (s *FinanceService) CreateExpense(ctx context.Context, employeeID uint, req *CreateExpenseRequest) (*entity.Expense, error) {
	if req.ExpenseDate == "" || req.AccountCodeID == 0 || req.Description == "" {
		return nil, fmt.Errorf("%w: expense_date, account_code_id and description are required", ErrValidation)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if _, err := s.employeeRepo.FindByID(ctx, employeeID); err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = "etc"
	}

	vat, total := vatFor(req.Amount, req.VAT)
	expense := &entity.Expense{
		EmployeeID:     employeeID,
		ExpenseDate:    req.ExpenseDate,
		AccountCodeID:  req.AccountCodeID,
		Amount:         req.Amount,
		VAT:            vat,
		TotalAmount:    total,
		Category:       category,
		Description:    req.Description,
		ReceiptURL:     req.ReceiptURL,
		ApprovalStatus: entity.ExpenseStatusPending,
		PaymentStatus:  entity.PaymentStatusUnpaid,
	}
	if err := s.financeRepo.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return expense, nil
}

// ResolveExpense 审批费用报销。action 为 approve 或 reject。
func (s *FinanceService) ResolveExpense(ctx context.Context, id, approverID uint, action string) error {
	var status string
	switch action {
	case "approve":
		status = entity.ExpenseStatusApproved
	case "reject":
		status = entity.ExpenseStatusRejected
	default:
		return fmt.Errorf("%w: action must be approve or reject", ErrValidation)
	}
	return s.financeRepo.ResolveExpense(ctx, id, approverID, status)
}

// ============================================================
// 预算
// ============================================================

// UpsertBudgetRequest 预算登记请求，同一 (年, 月, 部门, 科目) 覆盖更新
type UpsertBudgetRequest struct {
	Year           int              `json:"year" binding:"required"`
	Month          int              `json:"month" binding:"required"`
	DepartmentID   *uint            `json:"department_id"`
	AccountCodeID  uint             `json:"account_code_id" binding:"required"`
	BudgetedAmount decimal.Decimal  `json:"budgeted_amount" binding:"required"`
	ActualAmount   *decimal.Decimal `json:"actual_amount"`
	Notes          string           `json:"notes"`
}

// ListBudgets 预算列表
func (s *FinanceService) ListBudgets(ctx context.Context, filters map[string]interface{}) ([]entity.Budget, error) {
	return s.financeRepo.ListBudgets(ctx, filters)
}

// UpsertBudget 登记或更新预算
func (s *FinanceService) UpsertBudget(ctx context.Context, req *UpsertBudgetRequest) (*entity.Budget, error) {
	if req.Year == 0 || req.AccountCodeID == 0 {
		return nil, fmt.Errorf("%w: year and account_code_id are required", ErrValidation)
	}
	if req.Month < 1 || req.Month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrValidation)
	}

	budget, err := s.financeRepo.FindBudget(ctx, req.Year, req.Month, req.DepartmentID, req.AccountCodeID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("find budget: %w", err)
		}
		budget = &entity.Budget{
			Year:           req.Year,
			Month:          req.Month,
			DepartmentID:   req.DepartmentID,
			AccountCodeID:  req.AccountCodeID,
			BudgetedAmount: req.BudgetedAmount,
			Notes:          req.Notes,
		}
		if req.ActualAmount != nil {
			budget.ActualAmount = *req.ActualAmount
		}
		if err := s.financeRepo.CreateBudget(ctx, budget); err != nil {
			return nil, fmt.Errorf("create budget: %w", err)
		}
		return budget, nil
	}

	budget.BudgetedAmount = req.BudgetedAmount
	if req.ActualAmount != nil {
		budget.ActualAmount = *req.ActualAmount
	}
	if req.Notes != "" {
		budget.Notes = req.Notes
	}
	if err := s.financeRepo.UpdateBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return budget, nil
}

// ============================================================
// 交易伙伴 / 会计科目
// ============================================================

// CreatePartnerRequest 创建交易伙伴请求
type CreatePartnerRequest struct {
	PartnerType    string          `json:"partner_type" binding:"required"`
	CompanyName    string          `json:"company_name" binding:"required"`
	BusinessNumber string          `json:"business_number"`
	Representative string          `json:"representative"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Fax            string          `json:"fax"`
	Address        string          `json:"address"`
	BankName       string          `json:"bank_name"`
	BankAccount    string          `json:"bank_account"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	Notes          string          `json:"notes"`
}

// ListPartners 交易伙伴列表
func (s *FinanceService) ListPartners(ctx context.Context, partnerType, search string) ([]entity.BusinessPartner, error) {
	return s.financeRepo.ListPartners(ctx, partnerType, search)
}

// CreatePartner 创建交易伙伴
func (s *FinanceService) CreatePartner(ctx context.Context, req *CreatePartnerRequest) (*entity.BusinessPartner, error) {
	if req.PartnerType == "" || req.CompanyName == "" {
		return nil, fmt.Errorf("%w: partner_type and company_name are required", ErrValidation)
	}
	switch req.PartnerType {
	case entity.PartnerTypeCustomer, entity.PartnerTypeSupplier, entity.PartnerTypeBoth:
	default:
		return nil, fmt.Errorf("%w: invalid partner_type %q", ErrValidation, req.PartnerType)
	}

	partner := &entity.BusinessPartner{
		PartnerType:    req.PartnerType,
		CompanyName:    req.CompanyName,
		BusinessNumber: req.BusinessNumber,
		Representative: req.Representative,
		Email:          req.Email,
		Phone:          req.Phone,
		Fax:            req.Fax,
		Address:        req.Address,
		BankName:       req.BankName,
		BankAccount:    req.BankAccount,
		CreditLimit:    req.CreditLimit,
		Notes:          req.Notes,
		IsActive:       true,
	}
	if err := s.financeRepo.CreatePartner(ctx, partner); err != nil {
		return nil, fmt.Errorf("create partner: %w", err)
	}
	return partner, nil
}

// ListAccountCodes 会计科目列表
func (s *FinanceService) ListAccountCodes(ctx context.Context, accountType string) ([]entity.AccountCode, error) {
	return s.financeRepo.ListAccountCodes(ctx, accountType)
}
