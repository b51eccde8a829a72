package entity

import (
	"time"
)

// User 系统用户账号
type User struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Username  string     `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Email     string     `json:"email" gorm:"size:128"`
	Role      string     `json:"role" gorm:"size:32;not null;default:staff"`
	IsActive  bool       `json:"is_active" gorm:"not null;default:true"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// 关联
	Employee *Employee `json:"employee,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// 用户角色常量
const (
	UserRoleAdmin   = "admin"
	UserRoleManager = "manager"
	UserRoleStaff   = "staff"
)
