// Copyright 2026 fanjia1024
// eino Embedder 桥接

package embedding

import (
	"context"

	einoembedding "github.com/cloudwego/eino/components/embedding"
)

// EinoAdapter 将本地 Embedder 适配为 eino 的 embedding.Embedder，
// 供 eino-ext 的 redis indexer/retriever 使用。
type EinoAdapter struct {
	inner Embedder
}

// NewEinoAdapter 创建 eino Embedder 适配器
func NewEinoAdapter(inner Embedder) *EinoAdapter {
	return &EinoAdapter{inner: inner}
}

// EmbedStrings 实现 eino embedding.Embedder
func (a *EinoAdapter) EmbedStrings(ctx context.Context, texts []string, opts ...einoembedding.Option) ([][]float64, error) {
	return a.inner.Embed(ctx, texts)
}
