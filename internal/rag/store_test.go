package rag

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iWorld-y/stock_advisor/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreEmptyLoad(t *testing.T) {
	store := newTestStore(t)
	chunks, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("空索引 LoadAll() 块数 = %d", len(chunks))
	}
}

func TestStoreReplaceIsFullReplace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []domain.DocumentChunk{
		{Ordinal: 0, Company: "AAPL", Text: "营收下降", Embedding: []float64{1, 0}},
		{Ordinal: 1, Company: "AAPL", Text: "服务收入增长", Embedding: []float64{0, 1}},
	}
	if err := store.Replace(ctx, first); err != nil {
		t.Fatalf("Replace(first) error = %v", err)
	}

	second := []domain.DocumentChunk{
		{Ordinal: 0, Company: "MSFT", Text: "云业务扩张", Embedding: []float64{0.5, 0.5}},
	}
	if err := store.Replace(ctx, second); err != nil {
		t.Fatalf("Replace(second) error = %v", err)
	}

	chunks, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("重建后块数 = %d, want 1", len(chunks))
	}
	if chunks[0].Company != "MSFT" {
		t.Errorf("重建后只应保留新集合, got %q", chunks[0].Company)
	}
	if len(chunks[0].Embedding) != 2 || chunks[0].Embedding[0] != 0.5 {
		t.Errorf("向量往返不一致: %v", chunks[0].Embedding)
	}
}
