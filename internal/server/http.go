package server

import (
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/stock_advisor/internal/config"
	"github.com/iWorld-y/stock_advisor/internal/service"
)

// NewHTTPServer 创建 HTTP 服务，路由只做请求/响应映射
func NewHTTPServer(c config.ServerConfig, svc *service.AdvisorService) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Addr != "" {
		opts = append(opts, http.Address(c.Addr))
	}
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)

	r := srv.Route("/api/v1")
	r.POST("/analyze", func(ctx http.Context) error {
		var req service.AnalyzeRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		reply, err := svc.Analyze(ctx, &req)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, reply)
	})

	r.POST("/rag/rebuild", func(ctx http.Context) error {
		reply, err := svc.RebuildIndex(ctx)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, reply)
	})

	r.GET("/rag/search", func(ctx http.Context) error {
		query := ctx.Query().Get("q")
		ticker := ctx.Query().Get("ticker")
		reply, err := svc.SearchReports(ctx, query, ticker)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, reply)
	})

	srv.Route("/").GET("/health", func(ctx http.Context) error {
		return ctx.Result(nethttp.StatusOK, svc.Health())
	})

	return srv
}
