package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeRetriever struct {
	context string
	err     error
	lastQ   string
}

func (f *fakeRetriever) Query(ctx context.Context, query string) (string, error) {
	f.lastQ = query
	return f.context, f.err
}

func TestFinancialToolsWithContext(t *testing.T) {
	r := &fakeRetriever{context: "\n=== 文档 1 [AAPL] ===\n营收数据\n"}
	toolList, err := NewFinancialTools(r)
	if err != nil {
		t.Fatalf("NewFinancialTools() error = %v", err)
	}
	if len(toolList) != 2 {
		t.Fatalf("工具数量 = %d, want 2", len(toolList))
	}

	out := runTool(context.Background(), t, toolList[0], `{"ticker":"AAPL","query":"营收趋势"}`)
	if !strings.Contains(out, "营收数据") {
		t.Errorf("工具输出缺少检索上下文: %q", out)
	}
	if r.lastQ != "AAPL 营收趋势" {
		t.Errorf("检索查询 = %q", r.lastQ)
	}
}

func TestFinancialToolsEmptyIndex(t *testing.T) {
	toolList, err := NewFinancialTools(&fakeRetriever{})
	if err != nil {
		t.Fatalf("NewFinancialTools() error = %v", err)
	}

	out := runTool(context.Background(), t, toolList[1], `{"ticker":"AAPL","metric_type":"毛利率"}`)
	if !strings.Contains(out, "未检索到") {
		t.Errorf("空索引时工具输出 = %q", out)
	}
}

func TestFinancialToolsRetrieverError(t *testing.T) {
	toolList, err := NewFinancialTools(&fakeRetriever{err: errors.New("连接失败")})
	if err != nil {
		t.Fatalf("NewFinancialTools() error = %v", err)
	}

	// 检索故障以自然语言返回给模型，而不是让工具调用崩溃
	out := runTool(context.Background(), t, toolList[0], `{"ticker":"AAPL","query":"营收"}`)
	if !strings.Contains(out, "检索失败") {
		t.Errorf("检索故障时工具输出 = %q", out)
	}
}
