package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/stock_advisor/internal/domain"
	"github.com/iWorld-y/stock_advisor/internal/logger"
)

// Supervisor 投资决策主管：把分析请求分派给各专家并合成最终建议
type Supervisor struct {
	specialists map[domain.Role]Specialist
	cm          model.BaseChatModel
	limiter     *rate.Limiter
}

// NewSupervisor 创建主管，specialists 在进程启动时构建一次并复用
func NewSupervisor(cm model.BaseChatModel, limiter *rate.Limiter, specialists ...Specialist) *Supervisor {
	m := make(map[domain.Role]Specialist, len(specialists))
	for _, s := range specialists {
		m[s.Role()] = s
	}
	return &Supervisor{specialists: m, cm: cm, limiter: limiter}
}

// Coordinate 执行一次完整的协调：分派 -> 收集 -> 合成
//
// 单个专家失败不会中断协调，只会以失败结果参与汇总；
// 合成调用本身失败才向调用方返回错误。
func (s *Supervisor) Coordinate(ctx context.Context, req domain.AnalysisRequest) (*domain.Recommendation, error) {
	if strings.TrimSpace(req.Ticker) == "" {
		return nil, fmt.Errorf("股票代码不能为空")
	}
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("分析问题不能为空")
	}

	roles := req.EffectiveRoles()
	logger.Log.Infof("开始分析 %s，分析范围: %v，用户问题: %s", req.Ticker, roles, req.Question)

	results := s.dispatch(ctx, req, roles)

	report, err := s.synthesize(ctx, req, results)
	if err != nil {
		return nil, err
	}

	logger.Log.Infof("成功完成 %s 的分析，综合建议: %s", req.Ticker, report.Recommendation)
	return &domain.Recommendation{
		Ticker:   req.Ticker,
		Question: req.Question,
		Results:  results,
		Report:   *report,
		Rating:   domain.ParseRating(report.Recommendation),
	}, nil
}

// dispatch 并发调用选中的专家，各角色之间无顺序依赖
func (s *Supervisor) dispatch(ctx context.Context, req domain.AnalysisRequest, roles []domain.Role) []domain.SpecialistResult {
	resultByRole := make(map[domain.Role]domain.SpecialistResult, len(roles))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, role := range roles {
		wg.Add(1)
		go func(role domain.Role) {
			defer wg.Done()

			result := s.invokeOne(ctx, role, req.Ticker, req.Question)

			mu.Lock()
			resultByRole[role] = result
			mu.Unlock()
		}(role)
	}
	wg.Wait()

	// 按固定角色顺序汇总，保证输出稳定
	results := make([]domain.SpecialistResult, 0, len(roles))
	for _, role := range roles {
		results = append(results, resultByRole[role])
	}
	return results
}

// invokeOne 调用单个专家，任何失败都转换为非致命的失败结果
func (s *Supervisor) invokeOne(ctx context.Context, role domain.Role, ticker, question string) domain.SpecialistResult {
	specialist, ok := s.specialists[role]
	if !ok {
		return domain.SpecialistResult{
			Role: role,
			Text: fmt.Sprintf("错误：%s角色未配置", roleName(role)),
			Err:  "specialist not registered",
		}
	}

	text, err := specialist.Invoke(ctx, ticker, question)
	if err != nil {
		logger.Log.Errorf("%s失败 [%s]: %v", roleName(role), ticker, err)
		return domain.SpecialistResult{
			Role: role,
			Text: fmt.Sprintf("错误：%s失败 - %v", roleName(role), err),
			Err:  err.Error(),
		}
	}
	if strings.TrimSpace(text) == "" {
		logger.Log.Warnf("%s未返回结果 [%s]", roleName(role), ticker)
		return domain.SpecialistResult{
			Role: role,
			Text: fmt.Sprintf("%s无结果", roleName(role)),
			Err:  "empty response",
		}
	}

	return domain.SpecialistResult{Role: role, Text: text, Succeeded: true}
}

// synthesize 把成功的专家结果交给模型做最终合成，输出结构化报告
func (s *Supervisor) synthesize(ctx context.Context, req domain.AnalysisRequest, results []domain.SpecialistResult) (*domain.SynthesisReport, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "股票代码: %s\n用户问题: %s\n\n", req.Ticker, req.Question)
	for _, r := range results {
		if !r.Succeeded {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n%s\n\n", roleName(r.Role), r.Text)
	}

	messages := []*schema.Message{
		schema.SystemMessage("你是一个 JSON 生成器。请只输出 JSON 字符串。"),
		schema.UserMessage(sb.String() + "\n" + synthesisPrompt),
	}

	// 只在触发限流时重试，模型返回的内容问题直接上抛
	maxRetries := 3
	baseDelay := 2 * time.Second
	var resp *schema.Message

	for i := 0; ; i++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var err error
		resp, err = s.cm.Generate(ctx, messages)
		if err == nil {
			break
		}
		if i < maxRetries && isRateLimited(err) {
			time.Sleep(baseDelay * time.Duration(1<<i))
			continue
		}
		return nil, fmt.Errorf("综合分析失败: %w", err)
	}

	cleanContent := strings.TrimSpace(resp.Content)
	cleanContent = strings.TrimPrefix(cleanContent, "```json")
	cleanContent = strings.TrimPrefix(cleanContent, "```")
	cleanContent = strings.TrimSuffix(cleanContent, "```")
	cleanContent = strings.TrimSpace(cleanContent)

	if cleanContent == "" {
		return nil, fmt.Errorf("综合分析未返回结果")
	}

	var report domain.SynthesisReport
	if err := json.Unmarshal([]byte(cleanContent), &report); err != nil {
		return nil, fmt.Errorf("解析综合分析结果失败: %w", err)
	}

	return &report, nil
}

func isRateLimited(err error) bool {
	return strings.Contains(err.Error(), "429") ||
		strings.Contains(strings.ToLower(err.Error()), "too many requests")
}

func roleName(role domain.Role) string {
	switch role {
	case domain.RoleFinancial:
		return "财务分析"
	case domain.RoleMarket:
		return "市场分析"
	case domain.RoleValuation:
		return "估值分析"
	default:
		return string(role)
	}
}
