package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"credit-service/internal/conf"
	"credit-service/internal/metrics"

	"github.com/gaoyong06/go-pkg/logger"
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

	// 初始化日志 (使用 go-pkg/logger)
	logConfig := &logger.Config{
		Level:         "info",
		Format:        "json",
		Output:        "stdout",
		FilePath:      "logs/credit-cron.log",
		MaxSize:       100,
		MaxAge:        30,
		MaxBackups:    10,
		Compress:      true,
		EnableConsole: true,
	}

	loggerInstance := logger.NewLogger(logConfig)

	// 添加基本字段
	loggerInstance = log.With(loggerInstance,
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", "credit-cron",
	)

	logHelper := log.NewHelper(loggerInstance)

	// 初始化指标
	metrics.InitMetrics()

	// 初始化应用
	app, cleanup, err := wireApp(&bc, loggerInstance)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// 创建定时任务调度器（支持秒级调度）
	cronScheduler := cron.New(cron.WithSeconds())

	// 每日语音使用计数清零 - 每天 00:00 (UTC) 执行
	_, err = cronScheduler.AddFunc("0 0 0 * * *", func() {
		logHelper.Info("[CRON] Starting daily voice usage reset...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		count, err := app.creditUsecase.ResetDailyUsage(ctx)
		if err != nil {
			logHelper.Errorf("[CRON] Error resetting daily voice usage: %v", err)
		} else {
			logHelper.Infof("[CRON] Daily voice usage reset completed: accounts=%d", count)
		}
	})
	if err != nil {
		logHelper.Errorf("Failed to add daily usage reset job: %v", err)
	}

	// 月度使用计数清零（语音 + 图片）- 每月1日 00:00 (UTC) 执行
	_, err = cronScheduler.AddFunc("0 0 0 1 * *", func() {
		logHelper.Info("[CRON] Starting monthly usage reset...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		count, err := app.creditUsecase.ResetMonthlyUsage(ctx)
		if err != nil {
			logHelper.Errorf("[CRON] Error resetting monthly usage: %v", err)
		} else {
			logHelper.Infof("[CRON] Monthly usage reset completed: accounts=%d", count)
		}
	})
	if err != nil {
		logHelper.Errorf("Failed to add monthly usage reset job: %v", err)
	}

	// 启动定时任务
	cronScheduler.Start()
	logHelper.Info("========================================")
	logHelper.Info("Cron jobs started successfully")
	logHelper.Info("Scheduled jobs:")
	logHelper.Info("  - Daily voice usage reset: Every day at 00:00")
	logHelper.Info("  - Monthly usage reset: Every month on the 1st at 00:00")
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
