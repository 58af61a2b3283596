package server

import (
	"strconv"

	"credit-service/internal/conf"
	"credit-service/internal/service"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer 创建 HTTP 服务器
func NewHTTPServer(c *conf.Bootstrap, credit *service.CreditService, internal *service.CreditInternalService) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Server != nil && c.Server.Http != nil {
		if c.Server.Http.Network != "" {
			opts = append(opts, http.Network(c.Server.Http.Network))
		}
		if c.Server.Http.Addr != "" {
			opts = append(opts, http.Address(c.Server.Http.Addr))
		}
		if c.Server.Http.Timeout != "" {
			opts = append(opts, http.Timeout(conf.ParseDuration(c.Server.Http.Timeout, 0)))
		}
	}
	srv := http.NewServer(opts...)

	registerRoutes(srv, credit, internal)
	srv.Handle("/metrics", promhttp.Handler())
	return srv
}

// registerRoutes 注册 HTTP 路由
func registerRoutes(srv *http.Server, credit *service.CreditService, internal *service.CreditInternalService) {
	r := srv.Route("/v1")

	// 面向前端/运营后台
	r.GET("/credits/status", func(ctx http.Context) error {
		reply, err := credit.GetUserCreditStatus(ctx, ctx.Query().Get("user_id"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/plans", func(ctx http.Context) error {
		reply, err := credit.ListPlans(ctx)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/subscriptions/callback", func(ctx http.Context) error {
		var req service.SubscriptionCallbackRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := credit.SubscriptionCallback(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/credits/topup", func(ctx http.Context) error {
		var req service.TopupCallbackRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := credit.TopupCallback(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/usage/records", func(ctx http.Context) error {
		page, pageSize := pagination(ctx)
		reply, err := credit.ListUsageRecords(ctx, ctx.Query().Get("user_id"), page, pageSize)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/transactions", func(ctx http.Context) error {
		page, pageSize := pagination(ctx)
		reply, err := credit.ListTransactions(ctx, ctx.Query().Get("user_id"), page, pageSize)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/usage/stats", func(ctx http.Context) error {
		q := ctx.Query()
		reply, err := credit.GetUsageStats(ctx, q.Get("user_id"), q.Get("feature"), q.Get("period"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/admin/add-credits", func(ctx http.Context) error {
		var req service.AddCreditsRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := credit.AddCredits(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/admin/reset-usage", func(ctx http.Context) error {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := credit.ResetUsage(ctx, req.UserID)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	// 面向内部服务的额度闸口
	r.POST("/accounts/ensure", func(ctx http.Context) error {
		var req service.EnsureAccountRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := internal.EnsureAccount(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/credits/check", func(ctx http.Context) error {
		var req service.CheckCreditRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := internal.CheckCredit(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/credits/deduct", func(ctx http.Context) error {
		var req service.DeductCreditsRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := internal.DeductCredits(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/credits/voice-duration", func(ctx http.Context) error {
		var req service.DeductVoiceDurationRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := internal.DeductVoiceDuration(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.GET("/credits/image/check", func(ctx http.Context) error {
		reply, err := internal.CheckImage(ctx, ctx.Query().Get("user_id"))
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})

	r.POST("/credits/image/record", func(ctx http.Context) error {
		var req service.RecordImageRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := internal.RecordImage(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(200, reply)
	})
}

// pagination 解析分页参数
func pagination(ctx http.Context) (int, int) {
	q := ctx.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}
