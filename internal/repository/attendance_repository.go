package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"gorm.io/gorm"
)

// AttendanceRepository 勤怠仓库
type AttendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository 创建勤怠仓库
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// FindByEmployeeAndDate 查找员工某日出勤记录
func (r *AttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID uint, date string) (*entity.Attendance, error) {
	var att entity.Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND attendance_date = ?", employeeID, date).
		First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &att, nil
}

// Create 创建出勤记录
func (r *AttendanceRepository) Create(ctx context.Context, att *entity.Attendance) error {
	return r.db.WithContext(ctx).Create(att).Error
}

// Update 更新出勤记录
func (r *AttendanceRepository) Update(ctx context.Context, att *entity.Attendance) error {
	return r.db.WithContext(ctx).Save(att).Error
}

// List 获取出勤记录列表
func (r *AttendanceRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Attendance, error) {
	var atts []entity.Attendance

	query := r.db.WithContext(ctx).Model(&entity.Attendance{})

	if employeeID, ok := filters["employee_id"].(uint); ok && employeeID != 0 {
		query = query.Where("employee_id = ?", employeeID)
	}
	if startDate, ok := filters["start_date"].(string); ok && startDate != "" {
		query = query.Where("attendance_date >= ?", startDate)
	}
	if endDate, ok := filters["end_date"].(string); ok && endDate != "" {
		query = query.Where("attendance_date <= ?", endDate)
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Employee").
		Preload("Employee.Department").
		Order("attendance_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&atts).Error
	if err != nil {
		return nil, err
	}
	return atts, nil
}

// ListTypes 获取勤怠类型列表
func (r *AttendanceRepository) ListTypes(ctx context.Context) ([]entity.AttendanceType, error) {
	var types []entity.AttendanceType
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

// LeaveRepository 休假申请仓库
type LeaveRepository struct {
	db *gorm.DB
}

// NewLeaveRepository 创建休假申请仓库
func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// FindByID 根据ID查找休假申请
func (r *LeaveRepository) FindByID(ctx context.Context, id uint) (*entity.LeaveRequest, error) {
	var req entity.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("AttendanceType").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Create 创建休假申请
func (r *LeaveRepository) Create(ctx context.Context, req *entity.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// List 获取休假申请列表
func (r *LeaveRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.LeaveRequest, error) {
	var reqs []entity.LeaveRequest

	query := r.db.WithContext(ctx).Model(&entity.LeaveRequest{})

	if employeeID, ok := filters["employee_id"].(uint); ok && employeeID != 0 {
		query = query.Where("employee_id = ?", employeeID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Employee").
		Preload("AttendanceType").
		Preload("Approver").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// Resolve 审批休假申请: pending -> approved/rejected。
// 已决裁的申请条件更新不命中，返回 ErrStateConflict。
func (r *LeaveRepository) Resolve(ctx context.Context, id, approverID uint, status string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entity.LeaveRequest{}).
		Where("id = ? AND status = ?", id, entity.LeaveStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"approved_by": approverID,
			"approved_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}
