package model

import (
	"time"
)

// User 用户表（交易核心只做存在性校验，账号管理由用户子系统维护）
type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Username   string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	RealName   string    `gorm:"column:real_name;type:varchar(50)"`
	Status     int       `gorm:"not null;default:1"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime time.Time `gorm:"column:update_time;autoUpdateTime"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
