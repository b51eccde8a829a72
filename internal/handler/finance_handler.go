package handler

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Minsekko/SJP-HR/internal/service"
	"github.com/gin-gonic/gin"
)

// FinanceHandler 财务处理器
type FinanceHandler struct {
	svc *service.FinanceService
}

// NewFinanceHandler 创建财务处理器
func NewFinanceHandler(svc *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{svc: svc}
}

func saleQueryFilters(c *gin.Context) map[string]interface{} {
	filters := map[string]interface{}{}
	if startDate := c.Query("start_date"); startDate != "" {
		filters["start_date"] = startDate
	}
	if endDate := c.Query("end_date"); endDate != "" {
		filters["end_date"] = endDate
	}
	if partnerID := c.Query("partner_id"); partnerID != "" {
		if v, err := strconv.ParseUint(partnerID, 10, 32); err == nil {
			filters["partner_id"] = uint(v)
		}
	}
	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		filters["payment_status"] = paymentStatus
	}
	return filters
}

// ============================================================
// 销售
// ============================================================

// ListSales 销售单列表
// GET /api/v1/sales?start_date=&end_date=&partner_id=&payment_status=
func (h *FinanceHandler) ListSales(c *gin.Context) {
	page, pageSize := GetPagination(c)

	result, err := h.svc.ListSales(c.Request.Context(), page, pageSize, saleQueryFilters(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, result)
}

// GetSale 销售单详情
// GET /api/v1/sales/:id
func (h *FinanceHandler) GetSale(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid sale id")
		return
	}

	sale, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sale)
}

// CreateSale 创建销售单
// POST /api/v1/sales
func (h *FinanceHandler) CreateSale(c *gin.Context) {
	var req service.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	sale, err := h.svc.CreateSale(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, sale)
}

// UpdateSale 更新销售单
// PUT /api/v1/sales/:id
func (h *FinanceHandler) UpdateSale(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid sale id")
		return
	}

	var req service.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	sale, err := h.svc.UpdateSale(c.Request.Context(), id, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sale)
}

// RecordPayment 登记回款
// POST /api/v1/sales/:id/payments
func (h *FinanceHandler) RecordPayment(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid sale id")
		return
	}

	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	sale, err := h.svc.RecordPayment(c.Request.Context(), id, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sale)
}

// ExportSales 导出销售单xlsx
// GET /api/v1/sales/export
func (h *FinanceHandler) ExportSales(c *gin.Context) {
	f, filename, err := h.svc.ExportSales(c.Request.Context(), saleQueryFilters(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "写入导出文件失败: "+err.Error())
	}
}

// ============================================================
// 采购
// ============================================================

// ListPurchases 采购单列表
// GET /api/v1/purchases
func (h *FinanceHandler) ListPurchases(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, err := h.svc.ListPurchases(c.Request.Context(), page, pageSize, saleQueryFilters(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// CreatePurchase 创建采购单
// POST /api/v1/purchases
func (h *FinanceHandler) CreatePurchase(c *gin.Context) {
	var req service.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	purchase, err := h.svc.CreatePurchase(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, purchase)
}

// ============================================================
// 费用报销
// ============================================================

// ListExpenses 费用报销列表
// GET /api/v1/expenses?employee_id=&approval_status=
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{}
	if employeeID := c.Query("employee_id"); employeeID != "" {
		if v, err := strconv.ParseUint(employeeID, 10, 32); err == nil {
			filters["employee_id"] = uint(v)
		}
	}
	if approvalStatus := c.Query("approval_status"); approvalStatus != "" {
		filters["approval_status"] = approvalStatus
	}
	if startDate := c.Query("start_date"); startDate != "" {
		filters["start_date"] = startDate
	}
	if endDate := c.Query("end_date"); endDate != "" {
		filters["end_date"] = endDate
	}

	items, err := h.svc.ListExpenses(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// CreateExpense 创建费用报销
// POST /api/v1/expenses
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	employeeID := GetEmployeeID(c)
	if employeeID == 0 {
		Unauthorized(c, "employee identity required")
		return
	}

	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	expense, err := h.svc.CreateExpense(c.Request.Context(), employeeID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, expense)
}

// ResolveExpenseRequest 费用审批请求
type ResolveExpenseRequest struct {
	Action string `json:"action" binding:"required"` // approve/reject
}

// ResolveExpense 审批费用报销
// POST /api/v1/expenses/:id/resolve
func (h *FinanceHandler) ResolveExpense(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid expense id")
		return
	}

	var req ResolveExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	approverID := GetEmployeeID(c)
	if approverID == 0 {
		Unauthorized(c, "employee identity required")
		return
	}

	if err := h.svc.ResolveExpense(c.Request.Context(), id, approverID, req.Action); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"resolved": true})
}

// ============================================================
// 预算
// ============================================================

// ListBudgets 预算列表
// GET /api/v1/budgets?year=&month=&department_id=
func (h *FinanceHandler) ListBudgets(c *gin.Context) {
	filters := map[string]interface{}{}
	if year := c.Query("year"); year != "" {
		if v, err := strconv.Atoi(year); err == nil {
			filters["year"] = v
		}
	}
	if month := c.Query("month"); month != "" {
		if v, err := strconv.Atoi(month); err == nil {
			filters["month"] = v
		}
	}
	if departmentID := c.Query("department_id"); departmentID != "" {
		if v, err := strconv.ParseUint(departmentID, 10, 32); err == nil {
			filters["department_id"] = uint(v)
		}
	}

	items, err := h.svc.ListBudgets(c.Request.Context(), filters)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// UpsertBudget 登记或更新预算
// POST /api/v1/budgets
func (h *FinanceHandler) UpsertBudget(c *gin.Context) {
	var req service.UpsertBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	budget, err := h.svc.UpsertBudget(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, budget)
}

// ============================================================
// 交易伙伴 / 会计科目
// ============================================================

// ListPartners 交易伙伴列表
// GET /api/v1/partners?type=&search=
func (h *FinanceHandler) ListPartners(c *gin.Context) {
	items, err := h.svc.ListPartners(c.Request.Context(), c.Query("type"), c.Query("search"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// CreatePartner 创建交易伙伴
// POST /api/v1/partners
func (h *FinanceHandler) CreatePartner(c *gin.Context) {
	var req service.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	partner, err := h.svc.CreatePartner(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, partner)
}

// ListAccountCodes 会计科目列表
// GET /api/v1/account-codes?type=
func (h *FinanceHandler) ListAccountCodes(c *gin.Context) {
	items, err := h.svc.ListAccountCodes(c.Request.Context(), c.Query("type"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}
