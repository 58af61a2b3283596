package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CreditMetrics 额度服务指标
type CreditMetrics struct {
	// 资格检查相关指标
	CheckTotal    *prometheus.CounterVec   // 资格检查总数（按功能、结果）
	CheckDuration *prometheus.HistogramVec // 资格检查耗时

	// 扣费相关指标
	DeductTotal    *prometheus.CounterVec   // 扣费总数（按功能、来源）
	DeductDuration *prometheus.HistogramVec // 扣费耗时
	DeductAmount   *prometheus.CounterVec   // 扣费额度数（按功能、来源）

	// 订阅相关指标
	DowngradeTotal    prometheus.Counter     // 过期降级总数
	SubscriptionTotal *prometheus.CounterVec // 订阅激活总数（按套餐）
	CreditLowAlert    *prometheus.GaugeVec   // 额度即将用尽告警（按功能）

	// 加购相关指标
	TopupTotal  *prometheus.CounterVec // 加购总数（按功能）
	TopupAmount *prometheus.CounterVec // 加购额度数（按功能）

	// 缓存相关指标
	StatusCacheTotal *prometheus.CounterVec // 状态缓存命中统计（hit/miss）

	// 分布式锁相关指标
	LockAcquireTotal    *prometheus.CounterVec // 锁获取总数（按结果）
	LockAcquireDuration prometheus.Histogram   // 锁获取耗时
}

// NewCreditMetrics 创建额度服务指标
func NewCreditMetrics() *CreditMetrics {
	return &CreditMetrics{
		// 资格检查指标
		CheckTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_check_total",
				Help: "Total number of feature eligibility checks",
			},
			[]string{"feature", "result"}, // result: allowed/denied/error
		),
		CheckDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_check_duration_seconds",
				Help:    "Duration of eligibility check operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"feature"},
		),

		// 扣费指标
		DeductTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_deduct_total",
				Help: "Total number of credit deductions",
			},
			[]string{"feature", "source"}, // source: plan/topup/mixed/unlimited
		),
		DeductDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_deduct_duration_seconds",
				Help:    "Duration of credit deduction operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"feature"},
		),
		DeductAmount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_deduct_amount_total",
				Help: "Total credits deducted",
			},
			[]string{"feature", "source"},
		),

		// 订阅指标
		DowngradeTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_expiry_downgrade_total",
				Help: "Total number of lazy expiry downgrades",
			},
		),
		SubscriptionTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_subscription_activate_total",
				Help: "Total number of subscription activations",
			},
			[]string{"plan"},
		),
		CreditLowAlert: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "credit_low_alert",
				Help: "Users with low remaining credits (< threshold percent)",
			},
			[]string{"feature"},
		),

		// 加购指标
		TopupTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_topup_total",
				Help: "Total number of top-up purchases",
			},
			[]string{"feature"},
		),
		TopupAmount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_topup_amount_total",
				Help: "Total credits added via top-up",
			},
			[]string{"feature"},
		),

		// 缓存指标
		StatusCacheTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_status_cache_total",
				Help: "Status cache lookups",
			},
			[]string{"result"}, // result: hit/miss
		),

		// 分布式锁指标
		LockAcquireTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_lock_acquire_total",
				Help: "Total number of lock acquisition attempts",
			},
			[]string{"result"}, // result: success/failed
		),
		LockAcquireDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credit_lock_acquire_duration_seconds",
				Help:    "Duration of lock acquisition",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0}, // 毫秒级
			},
		),
	}
}

// 全局指标实例
var defaultMetrics *CreditMetrics

// InitMetrics 初始化全局指标
func InitMetrics() {
	defaultMetrics = NewCreditMetrics()
}

// GetMetrics 获取全局指标实例
func GetMetrics() *CreditMetrics {
	if defaultMetrics == nil {
		InitMetrics()
	}
	return defaultMetrics
}
