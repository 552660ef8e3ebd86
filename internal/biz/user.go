package biz

import (
	"context"
	"time"
)

// User 用户领域对象（交易核心只做存在性校验）
type User struct {
	ID         int64     // 用户ID
	Username   string    // 用户名
	RealName   string    // 真实姓名
	Status     int       // 账号状态
	CreateTime time.Time // 创建时间
}

// UserRepo 用户数据层接口（定义在 biz 层）
// GetUser 在用户不存在时返回 (nil, nil)。
type UserRepo interface {
	GetUser(ctx context.Context, id int64) (*User, error)
}
