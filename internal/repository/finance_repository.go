package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinanceRepository 财务仓库（销售/采购/费用/预算/交易伙伴/会计科目）
type FinanceRepository struct {
	db  *gorm.DB
	seq *SequenceRepository
}

// NewFinanceRepository 创建财务仓库
func NewFinanceRepository(db *gorm.DB, seq *SequenceRepository) *FinanceRepository {
	return &FinanceRepository{db: db, seq: seq}
}

// ============================================================
// 销售
// ============================================================

// CreateSale 创建销售单（序号与插入同事务）
func (r *FinanceRepository) CreateSale(ctx context.Context, sale *entity.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		date := time.Now().Format("20060102")
		seq, err := r.seq.NextSequence(tx, entity.SeqCategorySale, date)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		sale.SaleNumber = fmt.Sprintf("S-%s-%04d", date, seq)
		return tx.Create(sale).Error
	})
}

// FindSaleByID 根据ID查找销售单
func (r *FinanceRepository) FindSaleByID(ctx context.Context, id uint) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).
		Preload("Partner").
		Preload("AccountCode").
		Preload("Employee").
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// UpdateSale 更新销售单
func (r *FinanceRepository) UpdateSale(ctx context.Context, sale *entity.Sale) error {
	return r.db.WithContext(ctx).Save(sale).Error
}

// SaleSummary 销售合计
type SaleSummary struct {
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	UnpaidAmount decimal.Decimal `json:"unpaid_amount"`
}

func saleFilters(query *gorm.DB, filters map[string]interface{}) *gorm.DB {
	if startDate, ok := filters["start_date"].(string); ok && startDate != "" {
		query = query.Where("sale_date >= ?", startDate)
	}
	if endDate, ok := filters["end_date"].(string); ok && endDate != "" {
		query = query.Where("sale_date <= ?", endDate)
	}
	if partnerID, ok := filters["partner_id"].(uint); ok && partnerID != 0 {
		query = query.Where("partner_id = ?", partnerID)
	}
	if paymentStatus, ok := filters["payment_status"].(string); ok && paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}
	return query
}

// ListSales 获取销售单列表
func (r *FinanceRepository) ListSales(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Sale, error) {
	var sales []entity.Sale

	query := saleFilters(r.db.WithContext(ctx).Model(&entity.Sale{}), filters)

	offset := (page - 1) * pageSize
	err := query.
		Preload("Partner").
		Preload("AccountCode").
		Preload("Employee").
		Order("sale_date DESC, created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// SumSales 按同样过滤条件统计销售合计
func (r *FinanceRepository) SumSales(ctx context.Context, filters map[string]interface{}) (*SaleSummary, error) {
	var row struct {
		Total decimal.Decimal
		Paid  decimal.Decimal
	}
	query := saleFilters(r.db.WithContext(ctx).Model(&entity.Sale{}), filters)
	err := query.
		Select("COALESCE(SUM(total_amount), 0) as total, COALESCE(SUM(paid_amount), 0) as paid").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &SaleSummary{
		TotalAmount:  row.Total,
		PaidAmount:   row.Paid,
		UnpaidAmount: row.Total.Sub(row.Paid),
	}, nil
}

// ============================================================
// 采购
// ============================================================

// CreatePurchase 创建采购单
func (r *FinanceRepository) CreatePurchase(ctx context.Context, purchase *entity.Purchase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		date := time.Now().Format("20060102")
		seq, err := r.seq.NextSequence(tx, entity.SeqCategoryPurchase, date)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		purchase.PurchaseNumber = fmt.Sprintf("P-%s-%04d", date, seq)
		return tx.Create(purchase).Error
	})
}

// ListPurchases 获取采购单列表
func (r *FinanceRepository) ListPurchases(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Purchase, error) {
	var purchases []entity.Purchase

	query := r.db.WithContext(ctx).Model(&entity.Purchase{})

	if startDate, ok := filters["start_date"].(string); ok && startDate != "" {
		query = query.Where("purchase_date >= ?", startDate)
	}
	if endDate, ok := filters["end_date"].(string); ok && endDate != "" {
		query = query.Where("purchase_date <= ?", endDate)
	}
	if partnerID, ok := filters["partner_id"].(uint); ok && partnerID != 0 {
		query = query.Where("partner_id = ?", partnerID)
	}
	if paymentStatus, ok := filters["payment_status"].(string); ok && paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Partner").
		Preload("AccountCode").
		Order("purchase_date DESC, created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

// ============================================================
// 费用
// ============================================================

// CreateExpense 创建费用报销
func (r *FinanceRepository) CreateExpense(ctx context.Context, expense *entity.Expense) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		date := time.Now().Format("20060102")
		seq, err := r.seq.NextSequence(tx, entity.SeqCategoryExpense, date)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		expense.ExpenseNumber = fmt.Sprintf("E-%s-%04d", date, seq)
		return tx.Create(expense).Error
	})
}

// ListExpenses 获取费用报销列表
func (r *FinanceRepository) ListExpenses(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Expense, error) {
	var expenses []entity.Expense

	query := r.db.WithContext(ctx).Model(&entity.Expense{})

	if employeeID, ok := filters["employee_id"].(uint); ok && employeeID != 0 {
		query = query.Where("employee_id = ?", employeeID)
	}
	if approvalStatus, ok := filters["approval_status"].(string); ok && approvalStatus != "" {
		query = query.Where("approval_status = ?", approvalStatus)
	}
	if startDate, ok := filters["start_date"].(string); ok && startDate != "" {
		query = query.Where("expense_date >= ?", startDate)
	}
	if endDate, ok := filters["end_date"].(string); ok && endDate != "" {
		query = query.Where("expense_date <= ?", endDate)
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Employee").
		Preload("Employee.Department").
		Preload("AccountCode").
		Preload("Approver").
		Order("expense_date DESC, created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// ResolveExpense 审批费用报销: pending -> approved/rejected
func (r *FinanceRepository) ResolveExpense(ctx context.Context, id, approverID uint, status string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entity.Expense{}).
		Where("id = ? AND approval_status = ?", id, entity.ExpenseStatusPending).
		Updates(map[string]interface{}{
			"approval_status": status,
			"approved_by":     approverID,
			"approved_at":     now,
			"updated_at":      now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

// ============================================================
// 预算
// ============================================================

// FindBudget 查找 (年, 月, 部门, 科目) 的预算
func (r *FinanceRepository) FindBudget(ctx context.Context, year, month int, departmentID *uint, accountCodeID uint) (*entity.Budget, error) {
	var budget entity.Budget
	query := r.db.WithContext(ctx).
		Where("year = ? AND month = ? AND account_code_id = ?", year, month, accountCodeID)
	if departmentID != nil {
		query = query.Where("department_id = ?", *departmentID)
	} else {
		query = query.Where("department_id IS NULL")
	}
	err := query.First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &budget, nil
}

// CreateBudget 创建预算
func (r *FinanceRepository) CreateBudget(ctx context.Context, budget *entity.Budget) error {
	return r.db.WithContext(ctx).Create(budget).Error
}

// UpdateBudget 更新预算
func (r *FinanceRepository) UpdateBudget(ctx context.Context, budget *entity.Budget) error {
	return r.db.WithContext(ctx).Save(budget).Error
}

// ListBudgets 获取预算列表
func (r *FinanceRepository) ListBudgets(ctx context.Context, filters map[string]interface{}) ([]entity.Budget, error) {
	var budgets []entity.Budget

	query := r.db.WithContext(ctx).Model(&entity.Budget{})

	if year, ok := filters["year"].(int); ok && year != 0 {
		query = query.Where("year = ?", year)
	}
	if month, ok := filters["month"].(int); ok && month != 0 {
		query = query.Where("month = ?", month)
	}
	if departmentID, ok := filters["department_id"].(uint); ok && departmentID != 0 {
		query = query.Where("department_id = ?", departmentID)
	}

	err := query.
		Preload("Department").
		Preload("AccountCode").
		Order("year DESC, month DESC").
		Find(&budgets).Error
	if err != nil {
		return nil, err
	}
	return budgets, nil
}

// ============================================================
// 交易伙伴 / 会计科目
// ============================================================

// CreatePartner 创建交易伙伴
func (r *FinanceRepository) CreatePartner(ctx context.Context, partner *entity.BusinessPartner) error {
	return r.db.WithContext(ctx).Create(partner).Error
}

// ListPartners 获取启用中的交易伙伴
func (r *FinanceRepository) ListPartners(ctx context.Context, partnerType, search string) ([]entity.BusinessPartner, error) {
	var partners []entity.BusinessPartner

	query := r.db.WithContext(ctx).
		Model(&entity.BusinessPartner{}).
		Where("is_active = ?", true)

	if partnerType != "" {
		// both 类型同时作为客户和供应商
		query = query.Where("partner_type = ? OR partner_type = ?", partnerType, entity.PartnerTypeBoth)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("company_name LIKE ? OR business_number LIKE ?", pattern, pattern)
	}

	err := query.Order("company_name ASC").Find(&partners).Error
	if err != nil {
		return nil, err
	}
	return partners, nil
}

// ListAccountCodes 获取启用中的会计科目
func (r *FinanceRepository) ListAccountCodes(ctx context.Context, accountType string) ([]entity.AccountCode, error) {
	var codes []entity.AccountCode

	query := r.db.WithContext(ctx).
		Model(&entity.AccountCode{}).
		Where("is_active = ?", true)

	if accountType != "" {
		query = query.Where("type = ?", accountType)
	}

	err := query.Order("code ASC").Find(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}
