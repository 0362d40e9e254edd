package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
)

// ReportRetriever 财报检索依赖，无可用索引时返回空上下文
type ReportRetriever interface {
	Query(ctx context.Context, query string) (string, error)
}

type statementArgs struct {
	Ticker string `json:"ticker" jsonschema:"description=股票代码"`
	Query  string `json:"query" jsonschema:"description=分析问题"`
}

type metricArgs struct {
	Ticker     string `json:"ticker" jsonschema:"description=股票代码"`
	MetricType string `json:"metric_type" jsonschema:"description=指标类型，如营收、毛利率、现金流"`
}

// NewFinancialTools 财务分析专家的固定工具集，答案均以检索到的财报内容为依据
func NewFinancialTools(retriever ReportRetriever) ([]tool.BaseTool, error) {
	statementsTool, err := utils.InferTool("analyze_financial_statements", "检索并分析公司财务报表",
		func(ctx context.Context, in *statementArgs) (string, error) {
			retrieved, err := retriever.Query(ctx, fmt.Sprintf("%s %s", in.Ticker, in.Query))
			if err != nil {
				return fmt.Sprintf("财报检索失败: %v", err), nil
			}
			if retrieved == "" {
				return "未检索到相关财报内容，请提示用户先构建财报索引", nil
			}
			return fmt.Sprintf("财务分析\n%s\n问题: %s\n\n相关数据:\n%s", in.Ticker, in.Query, retrieved), nil
		})
	if err != nil {
		return nil, err
	}

	metricsTool, err := utils.InferTool("extract_key_metrics", "从财报中提取关键财务指标",
		func(ctx context.Context, in *metricArgs) (string, error) {
			retrieved, err := retriever.Query(ctx, fmt.Sprintf("%s %s", in.Ticker, in.MetricType))
			if err != nil {
				return fmt.Sprintf("财报检索失败: %v", err), nil
			}
			if retrieved == "" {
				return "未检索到相关财报内容，请提示用户先构建财报索引", nil
			}
			return fmt.Sprintf("关键指标\n%s %s\n\n数据:\n%s", in.Ticker, in.MetricType, retrieved), nil
		})
	if err != nil {
		return nil, err
	}

	return []tool.BaseTool{statementsTool, metricsTool}, nil
}
