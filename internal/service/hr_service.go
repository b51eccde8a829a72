package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"github.com/Minsekko/SJP-HR/internal/repository"
)

// HRService 人事服务。员工、部门、出勤和休假申请。
type HRService struct {
	employeeRepo   *repository.EmployeeRepository
	departmentRepo *repository.DepartmentRepository
	attendanceRepo *repository.AttendanceRepository
	leaveRepo      *repository.LeaveRepository
}

// NewHRService 创建人事服务
func NewHRService(employeeRepo *repository.EmployeeRepository, departmentRepo *repository.DepartmentRepository, attendanceRepo *repository.AttendanceRepository, leaveRepo *repository.LeaveRepository) *HRService {
	return &HRService{
		employeeRepo:   employeeRepo,
		departmentRepo: departmentRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
	}
}

// ============================================================
// 员工
// ============================================================

// CreateEmployeeRequest 创建员工请求
type CreateEmployeeRequest struct {
	EmployeeNumber   string `json:"employee_number" binding:"required"`
	Name             string `json:"name" binding:"required"`
	NameEn           string `json:"name_en"`
	DepartmentID     *uint  `json:"department_id"`
	PositionID       *uint  `json:"position_id"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Mobile           string `json:"mobile"`
	HireDate         string `json:"hire_date" binding:"required"`
	EmploymentType   string `json:"employment_type"`
	BirthDate        string `json:"birth_date"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone"`
	BankName         string `json:"bank_name"`
	BankAccount      string `json:"bank_account"`
	Salary           int64  `json:"salary"`
}

// UpdateEmployeeRequest 更新员工请求，零值字段不更新
type UpdateEmployeeRequest struct {
	Name             string `json:"name"`
	NameEn           string `json:"name_en"`
	DepartmentID     *uint  `json:"department_id"`
	PositionID       *uint  `json:"position_id"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Mobile           string `json:"mobile"`
	EmploymentType   string `json:"employment_type"`
	Status           string `json:"status"`
	BirthDate        string `json:"birth_date"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone"`
	BankName         string `json:"bank_name"`
	BankAccount      string `json:"bank_account"`
	Salary           *int64 `json:"salary"`
}

// EmployeeListResult 员工列表结果
type EmployeeListResult struct {
	Items    []entity.Employee `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ListEmployees 员工列表
func (s *HRService) ListEmployees(ctx context.Context, page, pageSize int, filters map[string]interface{}) (*EmployeeListResult, error) {
	items, total, err := s.employeeRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return &EmployeeListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetEmployee 员工详情
func (s *HRService) GetEmployee(ctx context.Context, id uint) (*entity.Employee, error) {
	return s.employeeRepo.FindByID(ctx, id)
}

// CreateEmployee 创建员工，工号不可重复
func (s *HRService) CreateEmployee(ctx context.Context, req *CreateEmployeeRequest) (*entity.Employee, error) {
	if req.EmployeeNumber == "" || req.Name == "" || req.HireDate == "" {
		return nil, fmt.Errorf("%w: employee_number, name and hire_date are required", ErrValidation)
	}

	if _, err := s.employeeRepo.FindByNumber(ctx, req.EmployeeNumber); err == nil {
		return nil, fmt.Errorf("%w: employee number already exists", ErrValidation)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check employee number: %w", err)
	}

	employmentType := req.EmploymentType
	if employmentType == "" {
		employmentType = entity.EmploymentTypeFullTime
	}

	emp := &entity.Employee{
		EmployeeNumber:   req.EmployeeNumber,
		Name:             req.Name,
		NameEn:           req.NameEn,
		DepartmentID:     req.DepartmentID,
		PositionID:       req.PositionID,
		Email:            req.Email,
		Phone:            req.Phone,
		Mobile:           req.Mobile,
		HireDate:         req.HireDate,
		EmploymentType:   employmentType,
		Status:           entity.EmployeeStatusActive,
		BirthDate:        req.BirthDate,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
		BankName:         req.BankName,
		BankAccount:      req.BankAccount,
		Salary:           req.Salary,
	}

	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}

	return s.employeeRepo.FindByID(ctx, emp.ID)
}

// UpdateEmployee 更新员工
func (s *HRService) UpdateEmployee(ctx context.Context, id uint, req *UpdateEmployeeRequest) (*entity.Employee, error) {
	emp, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		emp.Name = req.Name
	}
	if req.NameEn != "" {
		emp.NameEn = req.NameEn
	}
	if req.DepartmentID != nil {
		emp.DepartmentID = req.DepartmentID
	}
	if req.PositionID != nil {
		emp.PositionID = req.PositionID
	}
	if req.Email != "" {
		emp.Email = req.Email
	}
	if req.Phone != "" {
		emp.Phone = req.Phone
	}
	if req.Mobile != "" {
		emp.Mobile = req.Mobile
	}
	if req.EmploymentType != "" {
		emp.EmploymentType = req.EmploymentType
	}
	if req.Status != "" {
		switch req.Status {
		case entity.EmployeeStatusActive, entity.EmployeeStatusInactive, entity.EmployeeStatusResigned:
			emp.Status = req.Status
		default:
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, req.Status)
		}
	}
	if req.BirthDate != "" {
		emp.BirthDate = req.BirthDate
	}
	if req.Address != "" {
		emp.Address = req.Address
	}
	if req.EmergencyContact != "" {
		emp.EmergencyContact = req.EmergencyContact
	}
	if req.EmergencyPhone != "" {
		emp.EmergencyPhone = req.EmergencyPhone
	}
	if req.BankName != "" {
		emp.BankName = req.BankName
	}
	if req.BankAccount != "" {
		emp.BankAccount = req.BankAccount
	}
	if req.Salary != nil {
		emp.Salary = *req.Salary
	}

	if err := s.employeeRepo.Update(ctx, emp); err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}

	return s.employeeRepo.FindByID(ctx, id)
}

// ============================================================
// 部门与职级
// ============================================================

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required"`
	ParentID    *uint  `json:"parent_id"`
	ManagerID   *uint  `json:"manager_id"`
	Description string `json:"description"`
}

// ListDepartments 部门列表，含在职人数
func (s *HRService) ListDepartments(ctx context.Context) ([]repository.DepartmentWithCount, error) {
	return s.departmentRepo.List(ctx)
}

// CreateDepartment 创建部门
func (s *HRService) CreateDepartment(ctx context.Context, req *CreateDepartmentRequest) (*entity.Department, error) {
	if req.Name == "" || req.Code == "" {
		return nil, fmt.Errorf("%w: name and code are required", ErrValidation)
	}

	dept := &entity.Department{
		Name:        req.Name,
		Code:        req.Code,
		ParentID:    req.ParentID,
		ManagerID:   req.ManagerID,
		Description: req.Description,
	}
	if err := s.departmentRepo.Create(ctx, dept); err != nil {
		return nil, fmt.Errorf("create department: %w", err)
	}
	return dept, nil
}

// ListPositions 职级列表
func (s *HRService) ListPositions(ctx context.Context) ([]entity.Position, error) {
	return s.departmentRepo.ListPositions(ctx)
}

// ============================================================
// 出勤
// ============================================================

// ListAttendances 出勤记录列表
func (s *HRService) ListAttendances(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Attendance, error) {
	return s.attendanceRepo.List(ctx, page, pageSize, filters)
}

// ListAttendanceTypes 勤怠类型列表
func (s *HRService) ListAttendanceTypes(ctx context.Context) ([]entity.AttendanceType, error) {
	return s.attendanceRepo.ListTypes(ctx)
}

// CheckIn 上班打卡。每人每天一条记录，重复打卡报冲突。
func (s *HRService) CheckIn(ctx context.Context, employeeID uint) (*entity.Attendance, error) {
	if _, err := s.employeeRepo.FindByID(ctx, employeeID); err != nil {
		return nil, err
	}

	now := time.Now()
	date := now.Format("2006-01-02")

	if _, err := s.attendanceRepo.FindByEmployeeAndDate(ctx, employeeID, date); err == nil {
		return nil, fmt.Errorf("%w: already checked in today", repository.ErrStateConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check attendance: %w", err)
	}

	att := &entity.Attendance{
		EmployeeID:     employeeID,
		AttendanceDate: date,
		CheckIn:        &now,
		Status:         entity.AttendanceStatusPresent,
	}
	if err := s.attendanceRepo.Create(ctx, att); err != nil {
		return nil, fmt.Errorf("create attendance: %w", err)
	}
	return att, nil
}

// CheckOut 下班打卡，计算当日工时
func (s *HRService) CheckOut(ctx context.Context, employeeID uint) (*entity.Attendance, error) {
	now := time.Now()
	date := now.Format("2006-01-02")

	att, err := s.attendanceRepo.FindByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no check-in record for today", repository.ErrStateConflict)
		}
		return nil, err
	}
	if att.CheckOut != nil {
		return nil, fmt.Errorf("%w: already checked out today", repository.ErrStateConflict)
	}

	att.CheckOut = &now
	if att.CheckIn != nil {
		att.WorkHours = now.Sub(*att.CheckIn).Hours()
	}
	if err := s.attendanceRepo.Update(ctx, att); err != nil {
		return nil, fmt.Errorf("update attendance: %w", err)
	}
	return att, nil
}

// ============================================================
// 休假申请
// ============================================================

// CreateLeaveRequest 创建休假申请请求
type CreateLeaveRequest struct {
	AttendanceTypeID uint    `json:"attendance_type_id" binding:"required"`
	StartDate        string  `json:"start_date" binding:"required"`
	EndDate          string  `json:"end_date" binding:"required"`
	Days             float64 `json:"days" binding:"required"`
	Reason           string  `json:"reason"`
}

// ListLeaves 休假申请列表
func (s *HRService) ListLeaves(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.LeaveRequest, error) {
	return s.leaveRepo.List(ctx, page, pageSize, filters)
}

// CreateLeave 创建休假申请
func (s *HRService) CreateLeave(ctx context.Context, employeeID uint, req *CreateLeaveRequest) (*entity.LeaveRequest, error) {
	if req.AttendanceTypeID == 0 || req.StartDate == "" || req.EndDate == "" {
		return nil, fmt.Errorf("%w: attendance_type_id, start_date and end_date are required", ErrValidation)
	}
	if req.Days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", ErrValidation)
	}
	if req.EndDate < req.StartDate {
		return nil, fmt.Errorf("%w: end_date is before start_date", ErrValidation)
	}

	leave := &entity.LeaveRequest{
		EmployeeID:       employeeID,
		AttendanceTypeID: req.AttendanceTypeID,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Days:             req.Days,
		Reason:           req.Reason,
		Status:           entity.LeaveStatusPending,
	}
	if err := s.leaveRepo.Create(ctx, leave); err != nil {
		return nil, fmt.Errorf("create leave request: %w", err)
	}
	return s.leaveRepo.FindByID(ctx, leave.ID)
}

// ResolveLeave 审批休假申请。action 为 approve 或 reject，仅 pending 可审批。
func (s *HRService) ResolveLeave(ctx context.Context, id, approverID uint, action string) (*entity.LeaveRequest, error) {
	var status string
	switch action {
	case "approve":
		status = entity.LeaveStatusApproved
	case "reject":
		status = entity.LeaveStatusRejected
	default:
		return nil, fmt.Errorf("%w: action must be approve or reject", ErrValidation)
	}

	if _, err := s.leaveRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.leaveRepo.Resolve(ctx, id, approverID, status); err != nil {
		return nil, err
	}
	return s.leaveRepo.FindByID(ctx, id)
}
