package handler

import (
	"strconv"

	"github.com/Minsekko/SJP-HR/internal/service"
	"github.com/gin-gonic/gin"
)

// HRHandler 人事处理器
type HRHandler struct {
	svc *service.HRService
}

// NewHRHandler 创建人事处理器
func NewHRHandler(svc *service.HRService) *HRHandler {
	return &HRHandler{svc: svc}
}

// ============================================================
// 员工
// ============================================================

// ListEmployees 员工列表
// GET /api/v1/employees?search=&status=&department_id=
func (h *HRHandler) ListEmployees(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{}
	if search := c.Query("search"); search != "" {
		filters["search"] = search
	}
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}
	if departmentID := c.Query("department_id"); departmentID != "" {
		if v, err := strconv.ParseUint(departmentID, 10, 32); err == nil {
			filters["department_id"] = uint(v)
		}
	}

	result, err := h.svc.ListEmployees(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, result)
}

// GetEmployee 员工详情
// GET /api/v1/employees/:id
func (h *HRHandler) GetEmployee(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid employee id")
		return
	}

	emp, err := h.svc.GetEmployee(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, emp)
}

// CreateEmployee 创建员工
// POST /api/v1/employees
func (h *HRHandler) CreateEmployee(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	emp, err := h.svc.CreateEmployee(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, emp)
}

// UpdateEmployee 更新员工
// PUT /api/v1/employees/:id
func (h *HRHandler) UpdateEmployee(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid employee id")
		return
	}

	var req service.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	emp, err := h.svc.UpdateEmployee(c.Request.Context(), id, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, emp)
}

// ============================================================
// 部门与职级
// ============================================================

// ListDepartments 部门列表
// GET /api/v1/departments
func (h *HRHandler) ListDepartments(c *gin.Context) {
	items, err := h.svc.ListDepartments(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// CreateDepartment 创建部门
// POST /api/v1/departments
func (h *HRHandler) CreateDepartment(c *gin.Context) {
	var req service.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	dept, err := h.svc.CreateDepartment(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, dept)
}

// ListPositions 职级列表
// GET /api/v1/positions
func (h *HRHandler) ListPositions(c *gin.Context) {
	items, err := h.svc.ListPositions(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// ============================================================
// 出勤
// ============================================================

// ListAttendances 出勤记录列表
// GET /api/v1/attendances?employee_id=&start_date=&end_date=
func (h *HRHandler) ListAttendances(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{}
	if employeeID := c.Query("employee_id"); employeeID != "" {
		if v, err := strconv.ParseUint(employeeID, 10, 32); err == nil {
			filters["employee_id"] = uint(v)
		}
	}
	if startDate := c.Query("start_date"); startDate != "" {
		filters["start_date"] = startDate
	}
	if endDate := c.Query("end_date"); endDate != "" {
		filters["end_date"] = endDate
	}

	items, err := h.svc.ListAttendances(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// ListAttendanceTypes 勤怠类型列表
// GET /api/v1/attendance-types
func (h *HRHandler) ListAttendanceTypes(c *gin.Context) {
	items, err := h.svc.ListAttendanceTypes(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// CheckIn 上班打卡
// POST /api/v1/attendances/check-in
func (h *HRHandler) CheckIn(c *gin.Context) {
	employeeID := GetEmployeeID(c)
	if employeeID == 0 {
		Unauthorized(c, "employee identity required")
		return
	}

	att, err := h.svc.CheckIn(c.Request.Context(), employeeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, att)
}

// CheckOut 下班打卡
// POST /api/v1/attendances/check-out
func (h *HRHandler) CheckOut(c *gin.Context) {
	employeeID := GetEmployeeID(c)
	if employeeID == 0 {
		Unauthorized(c, "employee identity required")
		return
	}

	att, err := h.svc.CheckOut(c.Request.Context(), employeeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, att)
}

// ============================================================
// 休假申请
// ============================================================

// ListLeaves 休假申请列表
// GET /api/v1/leaves?employee_id=&status=
func (h *HRHandler) ListLeaves(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{}
	if employeeID := c.Query("employee_id"); employeeID != "" {
		if v, err := strconv.ParseUint(employeeID, 10, 32); err == nil {
			filters["employee_id"] = uint(v)
		}
	}
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}

	items, err := h.svc.ListLeaves(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// CreateLeave 创建休假申请
// POST /api/v1/leaves
func (h *HRHandler) CreateLeave(c *gin.Context) {
	employeeID := GetEmployeeID(c)
	if employeeID == 0 {
		Unauthorized(c, "employee identity required")
		return
	}

	var req service.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	leave, err := h.svc.CreateLeave(c.Request.Context(), employeeID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, leave)
}

// ResolveLeaveRequest 休假审批请求
type ResolveLeaveRequest struct {
	Action string `json:"action" binding:"required"` // approve/reject
}

// ResolveLeave 审批休假申请
// POST /api/v1/leaves/:id/resolve
func (h *HRHandler) ResolveLeave(c *gin.Context) {
	id := ParamUint(c, "id")
	if id == 0 {
		BadRequest(c, "invalid leave id")
		return
	}

	var req ResolveLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	approverID := GetEmployeeID(c)
	if approverID == 0 {
		Unauthorized(c, "employee identity required")
		return
	}

	leave, err := h.svc.ResolveLeave(c.Request.Context(), id, approverID, req.Action)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, leave)
}
