package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&User{},
		&Department{},
		&Position{},
		&Employee{},

		// 勤怠
		&AttendanceType{},
		&Attendance{},
		&LeaveRequest{},

		// 审批
		&ApprovalDocType{},
		&ApprovalDocument{},
		&ApprovalLine{},
		&ApprovalAttachment{},
		&DocSequence{},

		// 财务
		&BusinessPartner{},
		&AccountCode{},
		&Sale{},
		&Purchase{},
		&Expense{},
		&Budget{},
	)
}
