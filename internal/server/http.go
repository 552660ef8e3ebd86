package server

import (
	"strconv"
	"time"

	"campus-trade/internal/conf"
	"campus-trade/internal/service"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer 创建 HTTP 服务器
// 调用方身份由上游网关鉴权后通过 X-User-Id 头下发，本服务只做归属校验。
func NewHTTPServer(c *conf.Bootstrap, tradeService *service.TradeService, productService *service.ProductService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
	}
	if c.Server != nil && c.Server.Http != nil {
		if c.Server.Http.Network != "" {
			opts = append(opts, http.Network(c.Server.Http.Network))
		}
		if c.Server.Http.Addr != "" {
			opts = append(opts, http.Address(c.Server.Http.Addr))
		}
		if c.Server.Http.TimeoutSeconds > 0 {
			opts = append(opts, http.Timeout(time.Duration(c.Server.Http.TimeoutSeconds)*time.Second))
		}
	}
	srv := http.NewServer(opts...)
	srv.Handle("/metrics", promhttp.Handler())
	registerTradeRoutes(srv, tradeService)
	registerProductRoutes(srv, productService)
	return srv
}

// callerID 解析网关下发的调用方用户ID
func callerID(ctx http.Context) (int64, error) {
	raw := ctx.Header().Get("X-User-Id")
	if raw == "" {
		return 0, kerrors.Unauthorized("MISSING_USER_ID", "missing X-User-Id header")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, kerrors.Unauthorized("INVALID_USER_ID", "invalid X-User-Id header")
	}
	return id, nil
}

// pathID 解析路径中的数字参数
func pathID(ctx http.Context, name string) (int64, error) {
	raw := ctx.Vars().Get(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, kerrors.BadRequest("INVALID_PARAM", "invalid path parameter: "+name)
	}
	return id, nil
}

// queryInt 解析 query 中的整数参数，缺省时返回 def
func queryInt(ctx http.Context, name string, def int) int {
	raw := ctx.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func registerTradeRoutes(srv *http.Server, svc *service.TradeService) {
	r := srv.Route("/api/v1")

	r.POST("/orders", func(ctx http.Context) error {
		uid, err := callerID(ctx)
		if err != nil {
			return err
		}
		var req service.CreateOrderRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		if req.ProductID <= 0 {
			return kerrors.BadRequest("INVALID_PARAM", "product_id is required")
		}
		reply, err := svc.CreateOrder(ctx, uid, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/orders/{id}/confirm/buyer", func(ctx http.Context) error {
		uid, err := callerID(ctx)
		if err != nil {
			return err
		}
		orderID, err := pathID(ctx, "id")
		if err != nil {
			return err
		}
		if err := svc.ConfirmOrderByBuyer(ctx, orderID, uid); err != nil {
			return err
		}
		return ctx.Result(200, map[string]string{"message": "confirmed"})
	})

	r.POST("/orders/{id}/confirm/seller", func(ctx http.Context) error {
		uid, err := callerID(ctx)
		if err != nil {
			return err
		}
		orderID, err := pathID(ctx, "id")
		if err != nil {
			return err
		}
		if err := svc.ConfirmOrderBySeller(ctx, orderID, uid); err != nil {
			return err
		}
		return ctx.Result(200, map[string]string{"message": "confirmed"})
	})

	r.POST("/orders/{id}/cancel", func(ctx http.Context) error {
		uid, err := callerID(ctx)
		if err != nil {
			return err
		}
		orderID, err := pathID(ctx, "id")
		if err != nil {
			return err
		}
		if err := svc.CancelOrder(ctx, orderID, uid); err != nil {
			return err
		}
		return ctx.Result(200, map[string]string{"message": "cancelled"})
	})

	r.GET("/orders/stats", func(ctx http.Context) error {
		uid, err := callerID(ctx)
		if err != nil {
			return err
		}
		reply, err := svc.GetOrderStats(ctx, uid)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/orders/no/{orderNo}", func(ctx http.Context) error {
		uid, err := callerID(ctx)
		if err != nil {
			return err
		}
		orderNo := ctx.Vars().Get("orderNo")
		if orderNo == "" {
			return kerrors.BadRequest("INVALID_PARAM", "orderNo is required")
		}
		reply, err := svc.GetOrderByOrderNo(ctx, orderNo, uid)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/orders/{id}", func(ctx http.Context) error {
		uid, err := callerID(ctx)
		if err != nil {
			return err
		}
		orderID, err := pathID(ctx, "id")
		if err != nil {
			return err
		}
		reply, err := svc.GetOrderDetail(ctx, orderID, uid)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/orders", func(ctx http.Context) error {
		uid, err := callerID(ctx)
		if err != nil {
			return err
		}
		listType := ctx.Query().Get("type")
		status := queryInt(ctx, "status", 0)
		reply, err := svc.ListOrders(ctx, uid, listType, status)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})
}

func registerProductRoutes(srv *http.Server, svc *service.ProductService) {
	r := srv.Route("/api/v1")

	r.GET("/products/popular", func(ctx http.Context) error {
		page := queryInt(ctx, "page", 1)
		size := queryInt(ctx, "size", 20)
		reply, err := svc.ListPopularProducts(ctx, page, size)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/products/category/{id}", func(ctx http.Context) error {
		categoryID, err := pathID(ctx, "id")
		if err != nil {
			return err
		}
		page := queryInt(ctx, "page", 1)
		size := queryInt(ctx, "size", 20)
		reply, err := svc.ListCategoryProducts(ctx, categoryID, page, size)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/products/user/{id}", func(ctx http.Context) error {
		userID, err := pathID(ctx, "id")
		if err != nil {
			return err
		}
		reply, err := svc.ListUserProducts(ctx, userID)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/products/{id}", func(ctx http.Context) error {
		productID, err := pathID(ctx, "id")
		if err != nil {
			return err
		}
		reply, err := svc.GetProductDetail(ctx, productID)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})
}
