package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	User       *UserRepository
	Employee   *EmployeeRepository
	Department *DepartmentRepository
	Attendance *AttendanceRepository
	Leave      *LeaveRepository
	Approval   *ApprovalRepository
	Sequence   *SequenceRepository
	Finance    *FinanceRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	seq := NewSequenceRepository(db)
	return &Repositories{
		User:       NewUserRepository(db),
		Employee:   NewEmployeeRepository(db),
		Department: NewDepartmentRepository(db),
		Attendance: NewAttendanceRepository(db),
		Leave:      NewLeaveRepository(db),
		Approval:   NewApprovalRepository(db, seq),
		Sequence:   seq,
		Finance:    NewFinanceRepository(db, seq),
	}
}
