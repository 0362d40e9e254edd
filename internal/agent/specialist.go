package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/stock_advisor/internal/agent/tools"
	"github.com/iWorld-y/stock_advisor/internal/domain"
	"github.com/iWorld-y/stock_advisor/internal/logger"
	"github.com/iWorld-y/stock_advisor/internal/marketdata"
)

// Specialist 专家适配器：固定角色提示词加固定工具集，回答一个窄问题
type Specialist interface {
	Role() domain.Role
	Invoke(ctx context.Context, ticker, question string) (string, error)
}

const specialistMaxStep = 10

// reactSpecialist 基于 ReAct 代理的专家实现
// 代理构建绑定模型与工具配置，开销较大，首次调用时构建一次后复用
type reactSpecialist struct {
	role    domain.Role
	prompt  string
	reframe string
	cm      model.ToolCallingChatModel
	tools   []tool.BaseTool
	limiter *rate.Limiter

	once    sync.Once
	agent   *react.Agent
	initErr error
}

// NewFinancialSpecialist 创建财务分析专家，工具依赖财报检索服务
func NewFinancialSpecialist(cm model.ToolCallingChatModel, retriever tools.ReportRetriever, limiter *rate.Limiter) (Specialist, error) {
	toolList, err := tools.NewFinancialTools(retriever)
	if err != nil {
		return nil, fmt.Errorf("构建财务分析工具失败: %w", err)
	}
	return &reactSpecialist{
		role:    domain.RoleFinancial,
		prompt:  financialPrompt,
		reframe: financialReframe,
		cm:      cm,
		tools:   toolList,
		limiter: limiter,
	}, nil
}

// NewMarketSpecialist 创建市场分析专家，工具依赖行情数据源
func NewMarketSpecialist(cm model.ToolCallingChatModel, provider marketdata.Provider, limiter *rate.Limiter) (Specialist, error) {
	toolList, err := tools.NewMarketTools(provider)
	if err != nil {
		return nil, fmt.Errorf("构建市场分析工具失败: %w", err)
	}
	return &reactSpecialist{
		role:    domain.RoleMarket,
		prompt:  marketPrompt,
		reframe: marketReframe,
		cm:      cm,
		tools:   toolList,
		limiter: limiter,
	}, nil
}

// NewValuationSpecialist 创建估值专家
func NewValuationSpecialist(cm model.ToolCallingChatModel, limiter *rate.Limiter) (Specialist, error) {
	toolList, err := tools.NewValuationTools()
	if err != nil {
		return nil, fmt.Errorf("构建估值工具失败: %w", err)
	}
	return &reactSpecialist{
		role:    domain.RoleValuation,
		prompt:  valuationPrompt,
		reframe: valuationReframe,
		cm:      cm,
		tools:   toolList,
		limiter: limiter,
	}, nil
}

func (s *reactSpecialist) Role() domain.Role {
	return s.role
}

// ensureAgent 懒加载构建 ReAct 代理，并发首次调用下只构建一次
func (s *reactSpecialist) ensureAgent(ctx context.Context) (*react.Agent, error) {
	s.once.Do(func() {
		logger.Log.Infof("初始化 %s 专家代理...", s.role)
		s.agent, s.initErr = react.NewAgent(ctx, &react.AgentConfig{
			ToolCallingModel: s.cm,
			ToolsConfig: compose.ToolsNodeConfig{
				Tools: s.tools,
			},
			MaxStep: specialistMaxStep,
			MessageModifier: func(ctx context.Context, input []*schema.Message) []*schema.Message {
				return append([]*schema.Message{schema.SystemMessage(s.prompt)}, input...)
			},
		})
	})
	if s.initErr != nil {
		return nil, fmt.Errorf("%s 专家代理初始化失败: %w", s.role, s.initErr)
	}
	return s.agent, nil
}

// Invoke 以角色化的问题改写调用代理，模型自行决定调用零次或多次工具
func (s *reactSpecialist) Invoke(ctx context.Context, ticker, question string) (string, error) {
	ag, err := s.ensureAgent(ctx)
	if err != nil {
		return "", err
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	out, err := ag.Generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(s.reframe, ticker, question)),
	})
	if err != nil {
		return "", fmt.Errorf("%s 分析失败: %w", s.role, err)
	}

	return out.Content, nil
}
