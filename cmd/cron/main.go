package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-trade/internal/biz"
	"campus-trade/internal/conf"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
	_ "go.uber.org/automaxprocs"
)

var (
	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs/config.yaml", "config path, eg: -conf config.yaml")
}

// CronApp 定时任务依赖集合
type CronApp struct {
	orderUsecase *biz.OrderUseCase
	invalidator  *biz.CacheInvalidator
}

func newCronApp(orderUsecase *biz.OrderUseCase, invalidator *biz.CacheInvalidator) *CronApp {
	return &CronApp{
		orderUsecase: orderUsecase,
		invalidator:  invalidator,
	}
}

func main() {
	flag.Parse()

	// 初始化配置
	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	logger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", "campus-trade-cron",
	)
	logHelper := log.NewHelper(logger)

	// 初始化应用
	app, cleanup, err := wireApp(&bc, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// 创建定时任务调度器（支持秒级调度）
	cronScheduler := cron.New(cron.WithSeconds())

	// 已取消订单保留期清理 - 每日 03:00 执行
	_, err = cronScheduler.AddFunc("0 0 3 * * *", func() {
		logHelper.Info("[CRON] Starting cancelled order purge...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		count, err := app.orderUsecase.PurgeCancelledOrders(ctx)
		if err != nil {
			logHelper.Errorf("[CRON] Error purging cancelled orders: %v", err)
		} else {
			logHelper.Infof("[CRON] Cancelled order purge completed: count=%d", count)
		}
	})
	if err != nil {
		logHelper.Errorf("Failed to add cancelled order purge job: %v", err)
	}

	// 列表缓存兜底清理 - 每小时整点执行
	_, err = cronScheduler.AddFunc("0 0 * * * *", func() {
		logHelper.Info("[CRON] Starting listing cache sweep...")
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		app.invalidator.SweepListings(ctx)
		logHelper.Info("[CRON] Finished listing cache sweep")
	})
	if err != nil {
		logHelper.Errorf("Failed to add listing cache sweep job: %v", err)
	}

	// 启动定时任务
	cronScheduler.Start()
	logHelper.Info("========================================")
	logHelper.Info("Cron jobs started successfully")
	logHelper.Info("Scheduled jobs:")
	logHelper.Info("  - Cancelled order purge: Every day at 03:00")
	logHelper.Info("  - Listing cache sweep: Every hour on the hour")
	logHelper.Info("========================================")

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logHelper.Info("Shutting down gracefully...")

	// 停止定时任务
	ctx := cronScheduler.Stop()
	select {
	case <-ctx.Done():
		logHelper.Info("Cron jobs stopped gracefully")
	case <-time.After(5 * time.Second):
		logHelper.Info("Cron jobs forced to stop after timeout")
	}
}
