package model

import "time"

type UserRole string

const (
	Member UserRole = "member"
	Admin  UserRole = "admin"
)

// User 本服务只消费用户身份（JWT 下发在外部账号服务），这里保留
// 统计展示和外键所需的最小字段。
// swagger:model User
type User struct {
	BaseModel
	Email    string    `gorm:"size:100;unique;not null" json:"email"`
	Nickname string    `gorm:"size:100;not null" json:"nickname"`
	Role     UserRole  `gorm:"size:20;default:'member'" json:"role"`
	Disabled bool      `gorm:"default:false" json:"disabled"`
	LastSeen time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
