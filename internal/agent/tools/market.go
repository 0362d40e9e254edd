package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"

	"github.com/iWorld-y/stock_advisor/internal/marketdata"
)

type tickerArgs struct {
	Ticker string `json:"ticker" jsonschema:"description=股票代码"`
}

// NewMarketTools 市场分析专家的固定工具集，数据来自注入的行情数据源
func NewMarketTools(provider marketdata.Provider) ([]tool.BaseTool, error) {
	priceTool, err := utils.InferTool("get_current_stock_price", "获取股票当前价格快照",
		func(ctx context.Context, in *tickerArgs) (string, error) {
			quote, err := provider.GetQuote(ctx, in.Ticker)
			if err != nil {
				return fmt.Sprintf("获取行情失败: %v", err), nil
			}
			return fmt.Sprintf("%s 当前价格: $%.2f (%+.2f%%)", quote.Ticker, quote.Price, quote.ChangePercent), nil
		})
	if err != nil {
		return nil, err
	}

	sentimentTool, err := utils.InferTool("get_market_sentiment", "获取市场情绪快照",
		func(ctx context.Context, in *tickerArgs) (string, error) {
			sentiment, err := provider.GetSentiment(ctx, in.Ticker)
			if err != nil {
				return fmt.Sprintf("获取市场情绪失败: %v", err), nil
			}
			if sentiment.Summary != "" {
				return fmt.Sprintf("%s 市场情绪: %s（%s）", sentiment.Ticker, sentiment.Label, sentiment.Summary), nil
			}
			return fmt.Sprintf("%s 市场情绪: %s", sentiment.Ticker, sentiment.Label), nil
		})
	if err != nil {
		return nil, err
	}

	return []tool.BaseTool{priceTool, sentimentTool}, nil
}
