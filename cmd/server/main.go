package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/go-kratos/kratos/v2"
	klog "github.com/go-kratos/kratos/v2/log"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/stock_advisor/internal/agent"
	"github.com/iWorld-y/stock_advisor/internal/config"
	"github.com/iWorld-y/stock_advisor/internal/llm"
	"github.com/iWorld-y/stock_advisor/internal/logger"
	"github.com/iWorld-y/stock_advisor/internal/marketdata/factory"
	"github.com/iWorld-y/stock_advisor/internal/rag"
	"github.com/iWorld-y/stock_advisor/internal/server"
	"github.com/iWorld-y/stock_advisor/internal/service"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "stock-advisor"
	// Version 是服务的版本号
	Version string = service.Version
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if cfg.LLM.APIKey == "" {
		log.Fatal("配置错误: 未设置 llm.api_key")
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动股票投资 AI 助手...")

	ctx := context.Background()

	// 3. 初始化模型
	chatModel, err := llm.NewChatModel(ctx, cfg.LLM)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	embedder, err := llm.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}

	// 4. 初始化限流器
	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	limiter := rate.NewLimiter(limit, cfg.Concurrency.QPS)
	logger.Log.Infof("限流器已配置: Limit=%.2f req/s, Burst=%d", limit, cfg.Concurrency.QPS)

	// 5. 初始化财报检索服务
	store, err := rag.NewStore(cfg.RAG.IndexPath)
	if err != nil {
		logger.Log.Fatalf("初始化索引存储失败: %v", err)
	}
	defer store.Close()

	loader := rag.NewLoader(cfg.RAG.ReportsDir, rag.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap))
	retriever := rag.NewRetriever(loader, store, embedder, limiter, cfg.RAG.TopK)

	// 启动时尝试加载已持久化的索引，失败不致命
	if n := retriever.Prepare(ctx); n > 0 {
		logger.Log.Infof("财报索引就绪，共 %d 个文档块", n)
	} else {
		logger.Log.Info("暂无财报索引，可通过 /api/v1/rag/rebuild 构建")
	}

	// 6. 初始化行情数据源
	provider, err := factory.NewProvider(cfg.Market)
	if err != nil {
		logger.Log.Fatalf("行情数据源初始化失败: %v", err)
	}

	// 7. 构建专家与主管
	financial, err := agent.NewFinancialSpecialist(chatModel, retriever, limiter)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	market, err := agent.NewMarketSpecialist(chatModel, provider, limiter)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	valuation, err := agent.NewValuationSpecialist(chatModel, limiter)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	supervisor := agent.NewSupervisor(chatModel, limiter, financial, market, valuation)

	// 8. 组装 HTTP 服务
	klogger := klog.With(klog.NewStdLogger(os.Stdout),
		"ts", klog.DefaultTimestamp,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)
	svc := service.NewAdvisorService(supervisor, retriever, klogger)
	httpSrv := server.NewHTTPServer(cfg.Server, svc)

	app := kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Logger(klogger),
		kratos.Server(httpSrv),
	)

	if err := app.Run(); err != nil {
		logger.Log.Fatalf("服务退出: %v", err)
	}
}
