// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"study-buddy/internal/model/llm"
	"study-buddy/internal/pipeline/common"
	"study-buddy/internal/storage/cache"
	"study-buddy/pkg/errors"
	"study-buddy/pkg/metrics"
)

// ContextRetriever 检索依赖，由 pipeline/query 的门面实现
type ContextRetriever interface {
	Search(ctx context.Context, query string, k int) ([]common.ScoredChunk, error)
}

// Registry 工具注册表：六个固定工具的统一调用入口
type Registry struct {
	llm       llm.Client
	retriever ContextRetriever
	cache     cache.Cache
	cacheTTL  time.Duration
	topK      int
	topKMax   int
	logger    *slog.Logger
}

// RegistryConfig Registry 构造参数
type RegistryConfig struct {
	LLM       llm.Client
	Retriever ContextRetriever
	Cache     cache.Cache // 可选，LLM 响应缓存
	CacheTTL  time.Duration
	TopK      int // 默认检索条数
	TopKMax   int // 复杂请求的检索条数上限
	Logger    *slog.Logger
}

// InvokeOption Invoke 可选参数
type InvokeOption func(*invokeOptions)

type invokeOptions struct {
	topK int
}

// WithTopK 覆盖本次检索的条数（复杂请求用较大的 K）
func WithTopK(k int) InvokeOption {
	return func(o *invokeOptions) {
		o.topK = k
	}
}

// NewRegistry 创建工具注册表
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.LLM == nil {
		return nil, errors.Wrap(errors.ErrConfiguration, "registry requires llm client")
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = 3
	}
	topKMax := cfg.TopKMax
	if topKMax < topK {
		topKMax = topK
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Registry{
		llm:       cfg.LLM,
		retriever: cfg.Retriever,
		cache:     cfg.Cache,
		cacheTTL:  ttl,
		topK:      topK,
		topKMax:   topKMax,
		logger:    logger,
	}, nil
}

// TopK 返回默认检索条数
func (r *Registry) TopK() int { return r.topK }

// TopKMax 返回检索条数上限
func (r *Registry) TopKMax() int { return r.topKMax }

// Invoke 执行单个工具。query 为用户侧输入，ctxBlock 为已检索的材料（可为空）。
// 未知工具视为编程错误，返回 ErrPlanning。
func (r *Registry) Invoke(ctx context.Context, tool Tool, query, ctxBlock string, opts ...InvokeOption) (output string, err error) {
	options := &invokeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ToolInvocations.WithLabelValues(tool.String(), status).Inc()
		metrics.ToolDuration.WithLabelValues(tool.String()).Observe(time.Since(start).Seconds())
	}()

	switch tool {
	case Explain, Summarize, GenerateQuiz, SolveQuestion, EvaluateAnswer:
		return r.invokeLLM(ctx, tool, query, ctxBlock)
	case RetrieveContext:
		return r.retrieve(ctx, query, options.topK)
	default:
		return "", errors.Wrapf(errors.ErrPlanning, "unknown tool %q", tool)
	}
}

// invokeLLM 渲染模板并调用 LLM，命中缓存时直接返回
func (r *Registry) invokeLLM(ctx context.Context, tool Tool, query, ctxBlock string) (string, error) {
	prompt := buildPrompt(tool, query, ctxBlock)

	cacheKey := ""
	if r.cache != nil {
		cacheKey = promptHash(tool, prompt)
		if cached, err := r.cache.Get(ctx, cacheKey); err == nil {
			r.logger.Debug("tool cache hit", "tool", tool.String())
			return cached, nil
		}
	}

	genOpts := llm.DefaultOptions()
	genOpts.System = SystemPrompt
	answer, err := r.llm.GenerateWithContext(ctx, prompt, genOpts)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, answer, r.cacheTTL); err != nil {
			r.logger.Warn("tool cache write failed", "tool", tool.String(), "error", err)
		}
	}
	return answer, nil
}

// retrieve 检索并拼接切片。空库返回空串而非错误，后续步骤照常执行。
func (r *Registry) retrieve(ctx context.Context, query string, k int) (string, error) {
	if r.retriever == nil {
		return "", nil
	}
	if k <= 0 {
		k = r.topK
	}
	if k > r.topKMax {
		k = r.topKMax
	}

	chunks, err := r.retriever.Search(ctx, query, k)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Chunk.Content)
	}
	return strings.Join(parts, SectionSeparator), nil
}

func promptHash(tool Tool, prompt string) string {
	sum := sha256.Sum256([]byte(string(tool) + "\x00" + prompt))
	return "tool:" + hex.EncodeToString(sum[:16])
}
