package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/stock_advisor/internal/domain"
)

// fakeSpecialist 模拟专家
type fakeSpecialist struct {
	role  domain.Role
	text  string
	err   error
	calls int32
}

func (f *fakeSpecialist) Role() domain.Role { return f.role }

func (f *fakeSpecialist) Invoke(ctx context.Context, ticker, question string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.text, f.err
}

// fakeChatModel 模拟合成模型
type fakeChatModel struct {
	mu      sync.Mutex
	content string
	err     error
	inputs  [][]*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.content, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream 未实现")
}

func (f *fakeChatModel) lastUserContent(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inputs) == 0 {
		t.Fatal("合成模型未被调用")
	}
	last := f.inputs[len(f.inputs)-1]
	return last[len(last)-1].Content
}

const goodSynthesis = `{
	"financial_score": 8,
	"market_score": 6,
	"valuation_score": 7,
	"recommendation": "buy",
	"target_price_range": "$150 - $180",
	"key_risks": ["需求放缓"],
	"holding_horizon": "12 个月",
	"summary": "基本面稳健，建议买入。"
}`

func newTestSupervisor(cm model.BaseChatModel) (*Supervisor, *fakeSpecialist, *fakeSpecialist, *fakeSpecialist) {
	fin := &fakeSpecialist{role: domain.RoleFinancial, text: "财务面稳健"}
	mkt := &fakeSpecialist{role: domain.RoleMarket, text: "市场情绪偏多"}
	val := &fakeSpecialist{role: domain.RoleValuation, text: "估值合理"}
	return NewSupervisor(cm, nil, fin, mkt, val), fin, mkt, val
}

func TestCoordinateAllRoles(t *testing.T) {
	cm := &fakeChatModel{content: goodSynthesis}
	sup, fin, mkt, val := newTestSupervisor(cm)

	rec, err := sup.Coordinate(context.Background(), domain.AnalysisRequest{
		Ticker:   "AAPL",
		Question: "值得买入吗？",
	})
	if err != nil {
		t.Fatalf("Coordinate() error = %v", err)
	}

	for _, f := range []*fakeSpecialist{fin, mkt, val} {
		if n := atomic.LoadInt32(&f.calls); n != 1 {
			t.Errorf("%s 专家调用次数 = %d, want 1", f.role, n)
		}
	}
	if len(rec.Results) != 3 {
		t.Errorf("结果数 = %d, want 3", len(rec.Results))
	}
	if rec.Rating != domain.RatingBuy {
		t.Errorf("Rating = %q, want buy", rec.Rating)
	}
	if rec.Report.FinancialScore != 8 {
		t.Errorf("FinancialScore = %d, want 8", rec.Report.FinancialScore)
	}
}

func TestCoordinateSingleRole(t *testing.T) {
	cm := &fakeChatModel{content: goodSynthesis}
	sup, fin, mkt, val := newTestSupervisor(cm)

	rec, err := sup.Coordinate(context.Background(), domain.AnalysisRequest{
		Ticker:   "AAPL",
		Question: "财务状况如何？",
		Include:  []domain.Role{domain.RoleFinancial},
	})
	if err != nil {
		t.Fatalf("Coordinate() error = %v", err)
	}

	if atomic.LoadInt32(&fin.calls) != 1 {
		t.Error("财务专家应被调用一次")
	}
	if atomic.LoadInt32(&mkt.calls) != 0 || atomic.LoadInt32(&val.calls) != 0 {
		t.Error("未选中的专家不应被调用")
	}
	if len(rec.Results) != 1 || rec.Results[0].Role != domain.RoleFinancial {
		t.Errorf("结果 = %+v, 应只包含财务分析", rec.Results)
	}
}

func TestCoordinateSpecialistFailure(t *testing.T) {
	cm := &fakeChatModel{content: goodSynthesis}
	fin := &fakeSpecialist{role: domain.RoleFinancial, text: "财务面稳健"}
	mkt := &fakeSpecialist{role: domain.RoleMarket, err: errors.New("行情服务超时")}
	val := &fakeSpecialist{role: domain.RoleValuation, text: "估值合理"}
	sup := NewSupervisor(cm, nil, fin, mkt, val)

	rec, err := sup.Coordinate(context.Background(), domain.AnalysisRequest{
		Ticker:   "AAPL",
		Question: "值得买入吗？",
	})
	if err != nil {
		t.Fatalf("单个专家失败不应中断协调: %v", err)
	}

	var mktResult *domain.SpecialistResult
	for i := range rec.Results {
		if rec.Results[i].Role == domain.RoleMarket {
			mktResult = &rec.Results[i]
		}
	}
	if mktResult == nil {
		t.Fatal("缺少市场分析结果")
	}
	if mktResult.Succeeded {
		t.Error("失败的专家结果 Succeeded 应为 false")
	}
	if !strings.Contains(mktResult.Text, "行情服务超时") {
		t.Errorf("失败结果应携带错误描述: %q", mktResult.Text)
	}

	// 合成输入只包含成功角色的内容
	prompt := cm.lastUserContent(t)
	if strings.Contains(prompt, "行情服务超时") {
		t.Errorf("合成输入不应包含失败角色的错误文本: %q", prompt)
	}
	if !strings.Contains(prompt, "财务面稳健") || !strings.Contains(prompt, "估值合理") {
		t.Errorf("合成输入缺少成功角色的内容: %q", prompt)
	}
}

func TestCoordinateEmptySynthesis(t *testing.T) {
	sup, _, _, _ := newTestSupervisor(&fakeChatModel{content: "   "})

	_, err := sup.Coordinate(context.Background(), domain.AnalysisRequest{
		Ticker:   "AAPL",
		Question: "值得买入吗？",
	})
	if err == nil {
		t.Fatal("合成无内容时应返回错误")
	}
	if !strings.Contains(err.Error(), "未返回结果") {
		t.Errorf("错误信息 = %v", err)
	}
}

func TestCoordinateSynthesisFailure(t *testing.T) {
	cm := &fakeChatModel{err: errors.New("服务不可用")}
	sup, _, _, _ := newTestSupervisor(cm)

	if _, err := sup.Coordinate(context.Background(), domain.AnalysisRequest{
		Ticker:   "AAPL",
		Question: "值得买入吗？",
	}); err == nil {
		t.Fatal("合成调用失败应向调用方返回错误")
	}
	// 非限流错误不重试
	if n := len(cm.inputs); n != 1 {
		t.Errorf("合成调用次数 = %d, want 1", n)
	}
}

func TestCoordinateMalformedSynthesis(t *testing.T) {
	cm := &fakeChatModel{content: "```json\n{不是合法 JSON\n```"}
	sup, _, _, _ := newTestSupervisor(cm)

	_, err := sup.Coordinate(context.Background(), domain.AnalysisRequest{
		Ticker:   "AAPL",
		Question: "值得买入吗？",
	})
	if err == nil {
		t.Fatal("解析失败应向调用方返回错误")
	}
	if !strings.Contains(err.Error(), "解析综合分析结果失败") {
		t.Errorf("错误信息 = %v", err)
	}
	// 内容问题直接上抛，不消耗重试
	if n := len(cm.inputs); n != 1 {
		t.Errorf("合成调用次数 = %d, want 1", n)
	}
}

func TestCoordinateUnknownRating(t *testing.T) {
	sup, _, _, _ := newTestSupervisor(&fakeChatModel{content: `{"recommendation":"maybe"}`})

	rec, err := sup.Coordinate(context.Background(), domain.AnalysisRequest{
		Ticker:   "AAPL",
		Question: "值得买入吗？",
	})
	if err != nil {
		t.Fatalf("Coordinate() error = %v", err)
	}
	if rec.Rating != domain.RatingUnknown {
		t.Errorf("Rating = %q, want unknown", rec.Rating)
	}
}

func TestCoordinateValidation(t *testing.T) {
	sup, _, _, _ := newTestSupervisor(&fakeChatModel{content: goodSynthesis})

	if _, err := sup.Coordinate(context.Background(), domain.AnalysisRequest{Question: "q"}); err == nil {
		t.Error("空股票代码应返回错误")
	}
	if _, err := sup.Coordinate(context.Background(), domain.AnalysisRequest{Ticker: "AAPL"}); err == nil {
		t.Error("空问题应返回错误")
	}
}
