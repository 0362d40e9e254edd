package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/iWorld-y/stock_advisor/internal/domain"
)

// Version 服务版本号
const Version = "1.0.0"

// Coordinator 投资分析协调依赖
type Coordinator interface {
	Coordinate(ctx context.Context, req domain.AnalysisRequest) (*domain.Recommendation, error)
}

// ReportIndex 财报索引依赖
type ReportIndex interface {
	BuildIndex(ctx context.Context) (int, error)
	Query(ctx context.Context, query string) (string, error)
}

// AdvisorService 对外 API 的请求/响应映射层
type AdvisorService struct {
	coordinator Coordinator
	index       ReportIndex
	log         *log.Helper
}

// NewAdvisorService 创建服务实例
func NewAdvisorService(coordinator Coordinator, index ReportIndex, logger log.Logger) *AdvisorService {
	return &AdvisorService{
		coordinator: coordinator,
		index:       index,
		log:         log.NewHelper(logger),
	}
}

// AnalyzeRequest 股票分析请求，include 标志缺省为 true
type AnalyzeRequest struct {
	StockTicker      string `json:"stock_ticker"`
	Query            string `json:"query"`
	IncludeFinancial *bool  `json:"include_financial"`
	IncludeMarket    *bool  `json:"include_market"`
	IncludeValuation *bool  `json:"include_valuation"`
}

// SpecialistReply 单个专家的结果
type SpecialistReply struct {
	Role      string `json:"role"`
	Analysis  string `json:"analysis"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// AnalyzeReply 股票分析响应
type AnalyzeReply struct {
	ID             string                 `json:"id"`
	StockTicker    string                 `json:"stock_ticker"`
	Query          string                 `json:"query"`
	Timestamp      time.Time              `json:"timestamp"`
	Recommendation string                 `json:"recommendation"`
	Report         domain.SynthesisReport `json:"report"`
	Specialists    []SpecialistReply      `json:"specialists"`
}

// Analyze 执行一次综合投资分析
func (s *AdvisorService) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeReply, error) {
	include := includeRoles(req)
	s.log.Infof("收到分析请求: ticker=%s include=%v", req.StockTicker, include)

	rec, err := s.coordinator.Coordinate(ctx, domain.AnalysisRequest{
		Ticker:   req.StockTicker,
		Question: req.Query,
		Include:  include,
	})
	if err != nil {
		return nil, err
	}

	specialists := make([]SpecialistReply, 0, len(rec.Results))
	for _, r := range rec.Results {
		specialists = append(specialists, SpecialistReply{
			Role:      string(r.Role),
			Analysis:  r.Text,
			Succeeded: r.Succeeded,
			Error:     r.Err,
		})
	}

	return &AnalyzeReply{
		ID:             uuid.NewString(),
		StockTicker:    rec.Ticker,
		Query:          rec.Question,
		Timestamp:      time.Now(),
		Recommendation: string(rec.Rating),
		Report:         rec.Report,
		Specialists:    specialists,
	}, nil
}

// includeRoles 把三个布尔偏好映射为角色集合，全选等价于空集合（全部角色）
func includeRoles(req *AnalyzeRequest) []domain.Role {
	enabled := func(b *bool) bool { return b == nil || *b }

	fin, mkt, val := enabled(req.IncludeFinancial), enabled(req.IncludeMarket), enabled(req.IncludeValuation)
	if fin && mkt && val {
		return nil
	}

	var roles []domain.Role
	if fin {
		roles = append(roles, domain.RoleFinancial)
	}
	if mkt {
		roles = append(roles, domain.RoleMarket)
	}
	if val {
		roles = append(roles, domain.RoleValuation)
	}
	return roles
}

// RebuildReply 索引重建响应
type RebuildReply struct {
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
}

// RebuildIndex 全量重建财报索引
func (s *AdvisorService) RebuildIndex(ctx context.Context) (*RebuildReply, error) {
	n, err := s.index.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return &RebuildReply{Message: "没有可用的财报文件"}, nil
	}
	return &RebuildReply{Message: fmt.Sprintf("已加载 %d 个文档块", n), Chunks: n}, nil
}

// SearchReply 财报检索响应
type SearchReply struct {
	Query       string `json:"query"`
	StockTicker string `json:"stock_ticker,omitempty"`
	Context     string `json:"context"`
}

// SearchReports 对财报索引做一次相似检索，ticker 可选，用于限定检索范围
func (s *AdvisorService) SearchReports(ctx context.Context, query, ticker string) (*SearchReply, error) {
	search := query
	if ticker != "" {
		search = ticker + " " + query
	}
	result, err := s.index.Query(ctx, search)
	if err != nil {
		return nil, err
	}
	return &SearchReply{Query: query, StockTicker: ticker, Context: result}, nil
}

// HealthReply 健康检查响应
type HealthReply struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health 健康检查
func (s *AdvisorService) Health() *HealthReply {
	return &HealthReply{Status: "ok", Version: Version}
}
