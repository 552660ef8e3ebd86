package data

import (
	"context"
	"errors"

	"campus-trade/internal/biz"
	"campus-trade/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// userRepo biz.UserRepo 的实现
type userRepo struct {
	data *Data
	log  *log.Helper
}

// NewUserRepo 创建用户数据层
func NewUserRepo(data *Data, logger log.Logger) biz.UserRepo {
	return &userRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetUser 根据ID获取用户，不存在时返回 (nil, nil)
func (r *userRepo) GetUser(ctx context.Context, id int64) (*biz.User, error) {
	var m model.User
	err := r.data.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &biz.User{
		ID:         m.ID,
		Username:   m.Username,
		RealName:   m.RealName,
		Status:     m.Status,
		CreateTime: m.CreateTime,
	}, nil
}
