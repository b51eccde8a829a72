package entity

import (
	"time"
)

// Department 部门
type Department struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:64;not null"`
	Code        string    `json:"code" gorm:"size:32;not null;uniqueIndex"`
	ParentID    *uint     `json:"parent_id"`
	ManagerID   *uint     `json:"manager_id"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联
	Manager *Employee `json:"manager,omitempty" gorm:"foreignKey:ManagerID"`
}

func (Department) TableName() string {
	return "departments"
}

// Position 职级
type Position struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:64;not null"`
	Level     int       `json:"level" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
}

func (Position) TableName() string {
	return "positions"
}

// Employee 员工
type Employee struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	EmployeeNumber   string    `json:"employee_number" gorm:"size:32;not null;uniqueIndex"`
	Name             string    `json:"name" gorm:"size:64;not null"`
	NameEn           string    `json:"name_en" gorm:"size:64"`
	UserID           *uint     `json:"user_id" gorm:"index"`
	DepartmentID     *uint     `json:"department_id" gorm:"index"`
	PositionID       *uint     `json:"position_id"`
	Email            string    `json:"email" gorm:"size:128"`
	Phone            string    `json:"phone" gorm:"size:32"`
	Mobile           string    `json:"mobile" gorm:"size:32"`
	HireDate         string    `json:"hire_date" gorm:"size:10;not null"`
	EmploymentType   string    `json:"employment_type" gorm:"size:16;not null;default:full_time"`
	Status           string    `json:"status" gorm:"size:16;not null;default:active;index"`
	BirthDate        string    `json:"birth_date" gorm:"size:10"`
	Address          string    `json:"address" gorm:"size:256"`
	EmergencyContact string    `json:"emergency_contact" gorm:"size:64"`
	EmergencyPhone   string    `json:"emergency_phone" gorm:"size:32"`
	BankName         string    `json:"bank_name" gorm:"size:64"`
	BankAccount      string    `json:"bank_account" gorm:"size:64"`
	Salary           int64     `json:"salary"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// 关联
	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	Position   *Position   `json:"position,omitempty" gorm:"foreignKey:PositionID"`
	User       *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Employee) TableName() string {
	return "employees"
}

// 员工状态常量
const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
	EmployeeStatusResigned = "resigned"
)

// 雇佣类型常量
const (
	EmploymentTypeFullTime = "full_time"
	EmploymentTypePartTime = "part_time"
	EmploymentTypeContract = "contract"
)

// AttendanceType 勤怠类型（年假、病假等）
type AttendanceType struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:64;not null"`
	Code        string    `json:"code" gorm:"size:32;not null;uniqueIndex"`
	IsPaid      bool      `json:"is_paid" gorm:"not null;default:true"`
	DeductLeave bool      `json:"deduct_leave" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

func (AttendanceType) TableName() string {
	return "attendance_types"
}

// Attendance 每日出勤记录
type Attendance struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	EmployeeID     uint       `json:"employee_id" gorm:"not null;uniqueIndex:uniq_attendance_day,priority:1"`
	AttendanceDate string     `json:"attendance_date" gorm:"size:10;not null;uniqueIndex:uniq_attendance_day,priority:2"`
	CheckIn        *time.Time `json:"check_in"`
	CheckOut       *time.Time `json:"check_out"`
	WorkHours      float64    `json:"work_hours"`
	Status         string     `json:"status" gorm:"size:16;not null;default:present"`
	Notes          string     `json:"notes" gorm:"size:256"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// 关联
	Employee *Employee `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// 出勤状态常量
const (
	AttendanceStatusPresent = "present"
	AttendanceStatusLate    = "late"
	AttendanceStatusAbsent  = "absent"
	AttendanceStatusLeave   = "leave"
)

// LeaveRequest 休假申请（单级审批，区别于多级审批文档）
type LeaveRequest struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	EmployeeID       uint       `json:"employee_id" gorm:"not null;index"`
	AttendanceTypeID uint       `json:"attendance_type_id" gorm:"not null"`
	StartDate        string     `json:"start_date" gorm:"size:10;not null"`
	EndDate          string     `json:"end_date" gorm:"size:10;not null"`
	Days             float64    `json:"days" gorm:"not null"`
	Reason           string     `json:"reason" gorm:"type:text"`
	Status           string     `json:"status" gorm:"size:16;not null;default:pending;index"`
	ApprovedBy       *uint      `json:"approved_by"`
	ApprovedAt       *time.Time `json:"approved_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// 关联
	Employee       *Employee       `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	AttendanceType *AttendanceType `json:"attendance_type,omitempty" gorm:"foreignKey:AttendanceTypeID"`
	Approver       *Employee       `json:"approver,omitempty" gorm:"foreignKey:ApprovedBy"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// 休假申请状态常量
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)
