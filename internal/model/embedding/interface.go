package embedding

import (
	"context"
)

// Embedder 向量化接口
type Embedder interface {
	// Embed 对文本做向量化，返回与 texts 一一对应的向量
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	// Model 返回模型名称
	Model() string
	// Dimension 返回向量维度
	Dimension() int
}

// NewEmbedder 按 provider 创建 Embedder
func NewEmbedder(provider, model, apiKey, baseURL string, dimension int) (Embedder, error) {
	switch provider {
	case "openai":
		return NewOpenAIAdapter(apiKey, model, baseURL, dimension), nil
	case "local", "hash", "":
		return NewHashEmbedder(dimension), nil
	default:
		return NewHashEmbedder(dimension), nil
	}
}
