package factory

import (
	"fmt"

	"github.com/iWorld-y/stock_advisor/internal/config"
	"github.com/iWorld-y/stock_advisor/internal/marketdata"
)

// NewProvider 根据配置创建行情数据源实例
func NewProvider(cfg config.MarketConfig) (marketdata.Provider, error) {
	switch cfg.Provider {
	case "", "stub":
		return marketdata.NewStubProvider(), nil

	case "http":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("market base url is missing")
		}
		return marketdata.NewClient(cfg.BaseURL, cfg.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown market provider: %s", cfg.Provider)
	}
}
