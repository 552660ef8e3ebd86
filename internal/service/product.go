package service

import (
	"context"
	"time"

	"campus-trade/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
)

// ProductService 商品读服务（交易侧消费的商品查询）
type ProductService struct {
	productUc *biz.ProductUseCase
	log       *log.Helper
}

// NewProductService 创建商品服务
func NewProductService(productUc *biz.ProductUseCase, logger log.Logger) *ProductService {
	return &ProductService{
		productUc: productUc,
		log:       log.NewHelper(logger),
	}
}

// ProductReply 商品响应
type ProductReply struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	CategoryID  int64   `json:"category_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Images      string  `json:"images,omitempty"`
	ViewCount   int64   `json:"view_count"`
	Status      int     `json:"status"`
	CreateTime  string  `json:"create_time"`
}

// ProductPageReply 商品分页响应
type ProductPageReply struct {
	Items []*ProductReply `json:"items"`
	Total int64           `json:"total"`
}

// ProductListReply 商品列表响应
type ProductListReply struct {
	Items []*ProductReply `json:"items"`
}

func toProductReply(p *biz.Product) *ProductReply {
	return &ProductReply{
		ID:          p.ID,
		UserID:      p.UserID,
		CategoryID:  p.CategoryID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Images:      p.Images,
		ViewCount:   p.ViewCount,
		Status:      p.Status,
		CreateTime:  p.CreateTime.Format(time.RFC3339),
	}
}

func toProductReplies(products []*biz.Product) []*ProductReply {
	items := make([]*ProductReply, 0, len(products))
	for _, p := range products {
		items = append(items, toProductReply(p))
	}
	return items
}

// GetProductDetail 获取商品详情
func (s *ProductService) GetProductDetail(ctx context.Context, productID int64) (*ProductReply, error) {
	product, err := s.productUc.GetProductDetail(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toProductReply(product), nil
}

// ListCategoryProducts 分页获取分类商品列表
func (s *ProductService) ListCategoryProducts(ctx context.Context, categoryID int64, page, size int) (*ProductPageReply, error) {
	result, err := s.productUc.ListCategoryProducts(ctx, categoryID, page, size)
	if err != nil {
		return nil, err
	}
	return &ProductPageReply{Items: toProductReplies(result.Items), Total: result.Total}, nil
}

// ListUserProducts 获取用户发布的在售商品列表
func (s *ProductService) ListUserProducts(ctx context.Context, userID int64) (*ProductListReply, error) {
	items, err := s.productUc.ListUserProducts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProductListReply{Items: toProductReplies(items)}, nil
}

// ListPopularProducts 分页获取热门商品列表
func (s *ProductService) ListPopularProducts(ctx context.Context, page, size int) (*ProductPageReply, error) {
	result, err := s.productUc.ListPopularProducts(ctx, page, size)
	if err != nil {
		return nil, err
	}
	return &ProductPageReply{Items: toProductReplies(result.Items), Total: result.Total}, nil
}
