package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/embedding"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/stock_advisor/internal/domain"
	"github.com/iWorld-y/stock_advisor/internal/logger"
)

// embedBatchSize 单次嵌入请求的文本数量上限
const embedBatchSize = 16

// Retriever 财报检索服务，负责索引的构建、持久化、懒加载与查询
//
// 状态流转：未初始化 -> 构建成功进入就绪；首次查询时若内存中无索引，
// 先尝试从持久化存储加载一次，存储也为空则返回空结果而非错误。
type Retriever struct {
	loader   *Loader
	store    *Store
	embedder embedding.Embedder
	limiter  *rate.Limiter
	topK     int

	buildMu sync.Mutex // 构建/加载互斥，查询只读

	mu     sync.RWMutex
	chunks []domain.DocumentChunk
	loaded bool // 是否已尝试过从持久化存储加载
}

// NewRetriever 创建检索服务
func NewRetriever(loader *Loader, store *Store, embedder embedding.Embedder, limiter *rate.Limiter, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		loader:   loader,
		store:    store,
		embedder: embedder,
		limiter:  limiter,
		topK:     topK,
	}
}

// BuildIndex 全量重建索引：加载 -> 切分 -> 嵌入 -> 整体替换持久化存储
// 返回入库的文本块数量；没有任何源文件时返回 0 且不报错
func (r *Retriever) BuildIndex(ctx context.Context) (int, error) {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	logger.Log.Info("开始加载财报文档...")
	chunks, err := r.loader.Load()
	if err != nil {
		return 0, fmt.Errorf("加载财报文档失败: %w", err)
	}

	if len(chunks) == 0 {
		logger.Log.Warn("没有找到可用的财报文件")
		// 全量替换语义对空集同样成立，避免旧索引在重启后复活
		if err := r.store.Replace(ctx, nil); err != nil {
			return 0, fmt.Errorf("清空持久化索引失败: %w", err)
		}
		r.mu.Lock()
		r.chunks = nil
		r.loaded = true
		r.mu.Unlock()
		return 0, nil
	}
	logger.Log.Infof("成功加载 %d 个文档块，正在生成向量嵌入...", len(chunks))

	if err := r.embedAll(ctx, chunks); err != nil {
		return 0, err
	}

	if err := r.store.Replace(ctx, chunks); err != nil {
		return 0, fmt.Errorf("持久化索引失败: %w", err)
	}

	r.mu.Lock()
	r.chunks = chunks
	r.loaded = true
	r.mu.Unlock()

	logger.Log.Infof("向量索引构建完成，共 %d 个文档块", len(chunks))
	return len(chunks), nil
}

// embedAll 分批生成向量并回填到 chunks
func (r *Retriever) embedAll(ctx context.Context, chunks []domain.DocumentChunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		vectors, err := r.embedder.EmbedStrings(ctx, texts)
		if err != nil {
			return fmt.Errorf("生成向量嵌入失败: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("向量数量不匹配: got %d, want %d", len(vectors), len(texts))
		}

		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}

// Prepare 启动时尝试从持久化存储加载索引，失败不致命
func (r *Retriever) Prepare(ctx context.Context) int {
	chunks, err := r.ensureLoaded(ctx)
	if err != nil {
		logger.Log.Warnf("加载向量索引失败: %v", err)
		return 0
	}
	return len(chunks)
}

// Query 检索与 query 最相关的 top-k 文本块，拼接为带来源标注的上下文
// 索引不可用时返回空字符串而非错误
func (r *Retriever) Query(ctx context.Context, query string) (string, error) {
	chunks, err := r.ensureLoaded(ctx)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		logger.Log.Debug("向量索引为空，返回空检索结果")
		return "", nil
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	vectors, err := r.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("生成查询向量失败: %w", err)
	}
	if len(vectors) == 0 {
		return "", fmt.Errorf("查询向量为空")
	}
	queryVec := vectors[0]

	type scoredChunk struct {
		chunk domain.DocumentChunk
		score float64
	}
	scored := make([]scoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = scoredChunk{chunk: c, score: cosineSimilarity(queryVec, c.Embedding)}
	}

	// 按相似度降序，相同分数保持入库顺序
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	k := r.topK
	if k > len(scored) {
		k = len(scored)
	}

	var sb strings.Builder
	for i := 0; i < k; i++ {
		fmt.Fprintf(&sb, "\n=== 文档 %d [%s] ===\n%s\n", i+1, scored[i].chunk.Company, scored[i].chunk.Text)
	}

	logger.Log.Debugf("检索到 %d 个相关文档块", k)
	return sb.String(), nil
}

// ensureLoaded 返回当前内存索引，必要时从持久化存储加载一次
func (r *Retriever) ensureLoaded(ctx context.Context) ([]domain.DocumentChunk, error) {
	r.mu.RLock()
	chunks, loaded := r.chunks, r.loaded
	r.mu.RUnlock()
	if loaded {
		return chunks, nil
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	r.mu.RLock()
	chunks, loaded = r.chunks, r.loaded
	r.mu.RUnlock()
	if loaded {
		return chunks, nil
	}

	logger.Log.Info("从持久化存储加载向量索引...")
	chunks, err := r.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载持久化索引失败: %w", err)
	}

	r.mu.Lock()
	r.chunks = chunks
	r.loaded = true
	r.mu.Unlock()

	if len(chunks) > 0 {
		logger.Log.Infof("向量索引加载成功，共 %d 个文档块", len(chunks))
	}
	return chunks, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
