package marketdata

import "context"

// StubProvider 固定返回示例行情，用于无外部数据源的本地环境
type StubProvider struct{}

// NewStubProvider 创建 stub 行情数据源
func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

func (s *StubProvider) GetQuote(ctx context.Context, ticker string) (*Quote, error) {
	return &Quote{
		Ticker:        ticker,
		Price:         150.50,
		ChangePercent: 0,
		Currency:      "USD",
	}, nil
}

func (s *StubProvider) GetSentiment(ctx context.Context, ticker string) (*Sentiment, error) {
	return &Sentiment{
		Ticker:  ticker,
		Label:   "看涨",
		Summary: "示例数据：整体市场情绪偏多",
	}, nil
}
