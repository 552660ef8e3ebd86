package data

import (
	"context"
	"errors"

	"campus-trade/internal/biz"
	"campus-trade/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// productRepo biz.ProductRepo 的实现（交易侧消费的商品读查询）
type productRepo struct {
	data *Data
	log  *log.Helper
}

// NewProductRepo 创建商品数据层
func NewProductRepo(data *Data, logger log.Logger) biz.ProductRepo {
	return &productRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func toBizProduct(m *model.Product) *biz.Product {
	return &biz.Product{
		ID:          m.ID,
		UserID:      m.UserID,
		CategoryID:  m.CategoryID,
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		Images:      m.Images,
		ViewCount:   m.ViewCount,
		Status:      m.Status,
		CreateTime:  m.CreateTime,
		UpdateTime:  m.UpdateTime,
	}
}

func toBizProducts(ms []*model.Product) []*biz.Product {
	products := make([]*biz.Product, 0, len(ms))
	for _, m := range ms {
		products = append(products, toBizProduct(m))
	}
	return products
}

// GetProduct 根据ID获取商品，不存在时返回 (nil, nil)
func (r *productRepo) GetProduct(ctx context.Context, id int64) (*biz.Product, error) {
	var m model.Product
	err := r.data.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toBizProduct(&m), nil
}

// ListCategoryProducts 分页获取分类下在售商品
func (r *productRepo) ListCategoryProducts(ctx context.Context, categoryID int64, page, size int) ([]*biz.Product, int64, error) {
	query := r.data.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("category_id = ? AND status = ?", categoryID, model.ProductStatusAvailable)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []*model.Product
	err := query.
		Order("create_time DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&ms).Error
	if err != nil {
		return nil, 0, err
	}
	return toBizProducts(ms), total, nil
}

// ListUserProducts 获取用户发布的在售商品
func (r *productRepo) ListUserProducts(ctx context.Context, userID int64) ([]*biz.Product, error) {
	var ms []*model.Product
	err := r.data.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.ProductStatusAvailable).
		Order("create_time DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return toBizProducts(ms), nil
}

// ListPopularProducts 分页获取热门在售商品（按浏览量降序）
func (r *productRepo) ListPopularProducts(ctx context.Context, page, size int) ([]*biz.Product, int64, error) {
	query := r.data.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("status = ?", model.ProductStatusAvailable)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []*model.Product
	err := query.
		Order("view_count DESC, create_time DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&ms).Error
	if err != nil {
		return nil, 0, err
	}
	return toBizProducts(ms), total, nil
}
