package llm

import (
	"context"
	"fmt"

	embopenai "github.com/cloudwego/eino-ext/components/embedding/openai"
	modelopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"

	"github.com/iWorld-y/stock_advisor/internal/config"
)

// NewChatModel 初始化对话模型（OpenAI 兼容接口，如 DeepSeek）
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.ToolCallingChatModel, error) {
	cm, err := modelopenai.NewChatModel(ctx, &modelopenai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return cm, nil
}

// NewEmbedder 初始化向量模型
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (embedding.Embedder, error) {
	conf := &embopenai.EmbeddingConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	}
	if cfg.Dimensions > 0 {
		conf.Dimensions = &cfg.Dimensions
	}

	emb, err := embopenai.NewEmbedder(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("向量模型初始化失败: %w", err)
	}
	return emb, nil
}
