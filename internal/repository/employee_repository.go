package repository

import (
	"context"
	"errors"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"gorm.io/gorm"
)

// EmployeeRepository 员工仓库
type EmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository 创建员工仓库
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// FindByID 根据ID查找员工
func (r *EmployeeRepository) FindByID(ctx context.Context, id uint) (*entity.Employee, error) {
	var emp entity.Employee
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Position").
		Preload("User").
		Where("id = ?", id).
		First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

// FindByNumber 根据工号查找员工
func (r *EmployeeRepository) FindByNumber(ctx context.Context, employeeNumber string) (*entity.Employee, error) {
	var emp entity.Employee
	err := r.db.WithContext(ctx).
		Where("employee_number = ?", employeeNumber).
		First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

// FindByUserID 根据用户ID查找员工
func (r *EmployeeRepository) FindByUserID(ctx context.Context, userID uint) (*entity.Employee, error) {
	var emp entity.Employee
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, emp *entity.Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}

// Update 更新员工
func (r *EmployeeRepository) Update(ctx context.Context, emp *entity.Employee) error {
	return r.db.WithContext(ctx).Save(emp).Error
}

// List 获取员工列表
func (r *EmployeeRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Employee, int64, error) {
	var emps []entity.Employee
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Employee{})

	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if search, ok := filters["search"].(string); ok && search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR employee_number LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}
	if departmentID, ok := filters["department_id"].(uint); ok && departmentID != 0 {
		query = query.Where("department_id = ?", departmentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Department").
		Preload("Position").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&emps).Error
	if err != nil {
		return nil, 0, err
	}

	return emps, total, nil
}

// DepartmentRepository 部门仓库
type DepartmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository 创建部门仓库
func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// DepartmentWithCount 部门及在职人数
type DepartmentWithCount struct {
	entity.Department
	EmployeeCount int64 `json:"employee_count"`
}

// List 获取部门列表（含负责人与在职人数）
func (r *DepartmentRepository) List(ctx context.Context) ([]DepartmentWithCount, error) {
	var depts []entity.Department
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Order("code ASC").
		Find(&depts).Error
	if err != nil {
		return nil, err
	}

	result := make([]DepartmentWithCount, 0, len(depts))
	for _, d := range depts {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&entity.Employee{}).
			Where("department_id = ? AND status = ?", d.ID, entity.EmployeeStatusActive).
			Count(&count).Error; err != nil {
			return nil, err
		}
		result = append(result, DepartmentWithCount{Department: d, EmployeeCount: count})
	}
	return result, nil
}

// Create 创建部门
func (r *DepartmentRepository) Create(ctx context.Context, dept *entity.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

// ListPositions 获取职级列表（按级别升序）
func (r *DepartmentRepository) ListPositions(ctx context.Context) ([]entity.Position, error) {
	var positions []entity.Position
	err := r.db.WithContext(ctx).
		Order("level ASC").
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}
