package marketdata

import "context"

// Provider 定义通用的行情数据接口
type Provider interface {
	GetQuote(ctx context.Context, ticker string) (*Quote, error)
	GetSentiment(ctx context.Context, ticker string) (*Sentiment, error)
}

// Quote 单只股票的价格快照
type Quote struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Currency      string  `json:"currency"`
}

// Sentiment 市场情绪快照
type Sentiment struct {
	Ticker  string `json:"ticker"`
	Label   string `json:"label"` // 看涨 / 看跌 / 中性
	Summary string `json:"summary"`
}
