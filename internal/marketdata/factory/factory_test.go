package factory

import (
	"testing"

	"github.com/iWorld-y/stock_advisor/internal/config"
	"github.com/iWorld-y/stock_advisor/internal/marketdata"
)

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.MarketConfig{Provider: "stub"})
	if err != nil {
		t.Fatalf("NewProvider(stub) error = %v", err)
	}
	if _, ok := p.(*marketdata.StubProvider); !ok {
		t.Errorf("NewProvider(stub) = %T, want *marketdata.StubProvider", p)
	}

	// 未配置 provider 时回退到 stub
	if _, err := NewProvider(config.MarketConfig{}); err != nil {
		t.Errorf("NewProvider(空配置) error = %v", err)
	}

	if _, err := NewProvider(config.MarketConfig{Provider: "http"}); err == nil {
		t.Error("NewProvider(http, 无 base_url) 应返回错误")
	}

	if _, err := NewProvider(config.MarketConfig{Provider: "bloomberg"}); err == nil {
		t.Error("NewProvider(未知 provider) 应返回错误")
	}
}
