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

package app

import (
	"context"
	"fmt"
	"time"

	"study-buddy/internal/agent/dispatcher"
	"study-buddy/internal/agent/memory"
	"study-buddy/internal/agent/planner"
	"study-buddy/internal/agent/tools"
	"study-buddy/internal/einoext"
	"study-buddy/internal/model/embedding"
	"study-buddy/internal/model/llm"
	"study-buddy/internal/pipeline/query"
	"study-buddy/internal/splitter"
	"study-buddy/internal/storage/cache"
	"study-buddy/internal/storage/vector"
	"study-buddy/pkg/config"
	pkgerrors "study-buddy/pkg/errors"
	"study-buddy/pkg/log"
	"study-buddy/pkg/secrets"
)

// Bootstrap 统一初始化：供 api 与 cli 复用，避免在 cmd 内写装配逻辑
type Bootstrap struct {
	Config      *config.Config
	Logger      *log.Logger
	LLM         llm.Client
	Retriever   *query.Retriever
	Registry    *tools.Registry
	Planner     *planner.RulePlanner
	Dispatcher  *dispatcher.Dispatcher
	Documents   *DocumentService
	VectorStore vector.Store
	Cache       cache.Cache
	LongTerm    memory.TurnStore
}

// NewBootstrap 根据配置装配全部组件（Secrets/LLM/Embedding/Vector/Cache/Agent）
func NewBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, error) {
	if cfg == nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrConfiguration, "bootstrap requires config")
	}

	logger, err := log.NewLogger(&log.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("初始化日志failed: %w", err)
	}

	client, err := buildLLM(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	embedder, einoEmbedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	// type=memory 或空时创建内置 Store；type=redis 由 einoext 工厂直连
	var vecStore vector.Store
	vecType := cfg.Storage.Vector.Type
	if vecType == "" || vecType == "memory" {
		vecStore = vector.NewMemoryStore()
		coll := cfg.Storage.Vector.Collection
		if coll == "" {
			coll = "study"
		}
		if err := vecStore.Create(ctx, &vector.Index{Name: coll, Dimension: embedder.Dimension()}); err != nil {
			return nil, fmt.Errorf("初始化向量存储failed: %w", err)
		}
	}

	indexer, err := einoext.NewIndexer(ctx, cfg.Storage.Vector, vecStore, einoEmbedder)
	if err != nil {
		return nil, fmt.Errorf("初始化 Indexer failed: %w", err)
	}
	einoRetriever, err := einoext.NewRetriever(ctx, cfg.Storage.Vector, cfg.RAG, vecStore, einoEmbedder)
	if err != nil {
		return nil, fmt.Errorf("初始化 Retriever failed: %w", err)
	}
	retriever := query.NewRetriever(einoRetriever)

	var respCache cache.Cache
	if cfg.Storage.Cache.Type != "" && cfg.Storage.Cache.Type != "none" {
		ttl, _ := time.ParseDuration(cfg.Storage.Cache.TTL)
		respCache, err = cache.New(cache.Config{
			Type:     cfg.Storage.Cache.Type,
			Addr:     cfg.Storage.Cache.Addr,
			DB:       cfg.Storage.Cache.DB,
			Password: cfg.Storage.Cache.Password,
			TTL:      ttl,
		})
		if err != nil {
			return nil, fmt.Errorf("初始化缓存failed: %w", err)
		}
	}

	cacheTTL, _ := time.ParseDuration(cfg.Storage.Cache.TTL)
	registry, err := tools.NewRegistry(tools.RegistryConfig{
		LLM:       client,
		Retriever: retriever,
		Cache:     respCache,
		CacheTTL:  cacheTTL,
		TopK:      cfg.RAG.TopK,
		TopKMax:   cfg.RAG.TopKMax,
		Logger:    logger.Logger,
	})
	if err != nil {
		return nil, err
	}

	shortTerm := memory.NewShortTerm(cfg.Agent.MaxTurns)
	var longTerm memory.TurnStore
	switch cfg.Storage.LongTerm.Type {
	case "postgres":
		longTerm, err = memory.NewTurnStorePg(ctx, cfg.Storage.LongTerm.DSN)
		if err != nil {
			return nil, fmt.Errorf("初始化长期记忆failed: %w", err)
		}
	default:
		longTerm = memory.NewInMemoryTurnStore()
	}

	disp, err := dispatcher.New(dispatcher.Config{
		Registry:  registry,
		LLM:       client,
		ShortTerm: shortTerm,
		LongTerm:  longTerm,
		Logger:    logger.Logger,
	})
	if err != nil {
		return nil, err
	}

	documents := NewDocumentService(DocumentServiceConfig{
		Indexer:      indexer,
		Splitter:     splitter.NewEngine(),
		ChunkSize:    cfg.RAG.ChunkSize,
		ChunkOverlap: cfg.RAG.ChunkOverlap,
		Logger:       logger.Logger,
	})

	return &Bootstrap{
		Config:      cfg,
		Logger:      logger,
		LLM:         client,
		Retriever:   retriever,
		Registry:    registry,
		Planner:     planner.NewRulePlanner(),
		Dispatcher:  disp,
		Documents:   documents,
		VectorStore: vecStore,
		Cache:       respCache,
		LongTerm:    longTerm,
	}, nil
}

// Close 释放持有的外部连接
func (b *Bootstrap) Close() {
	if b.LongTerm != nil {
		b.LongTerm.Close()
	}
	if b.Cache != nil {
		_ = b.Cache.Close()
	}
	if b.VectorStore != nil {
		_ = b.VectorStore.Close()
	}
}

// buildLLM 装配主 LLM 客户端：密钥解析、限流包装、可选回退
func buildLLM(ctx context.Context, cfg *config.Config, logger *log.Logger) (llm.Client, error) {
	provider := cfg.Model.Defaults.LLM
	if provider == "" {
		provider = "groq"
	}
	providerCfg := cfg.Model.LLM.Providers[provider]

	apiKey := providerCfg.APIKey
	if apiKey == "" {
		secretStore, err := secrets.NewStore(secrets.Config{
			Provider: cfg.Secrets.Provider,
			Config: map[string]string{
				"address":     cfg.Secrets.Vault.Address,
				"token":       cfg.Secrets.Vault.Token,
				"path_prefix": cfg.Secrets.Vault.PathPrefix,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("初始化 Secret Store failed: %w", err)
		}
		apiKey, _ = secretStore.Get(ctx, cfg.Secrets.APIKeyName)
	}
	if provider == "groq" && apiKey == "" {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrConfiguration, "missing API key %s", cfg.Secrets.APIKeyName)
	}

	client, err := llm.NewClient(provider, providerCfg.Model, apiKey, providerCfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("初始化 LLM failed: %w", err)
	}

	if providerCfg.RequestsPerMinute > 0 {
		limiter := llm.NewLLMRateLimiter(map[string]llm.LLMLimitConfig{
			provider: {
				RequestsPerMinute: providerCfg.RequestsPerMinute,
				MaxConcurrent:     providerCfg.MaxConcurrent,
			},
		}, nil)
		client = llm.NewRateLimitedClient(client, limiter)
	}

	if fb := cfg.Model.Defaults.Fallback; fb != "" && fb != provider {
		fbCfg := cfg.Model.LLM.Providers[fb]
		fbClient, err := llm.NewClient(fb, fbCfg.Model, fbCfg.APIKey, fbCfg.BaseURL)
		if err != nil {
			logger.Warn("回退模型初始化failed，继续使用主模型", "provider", fb, "error", err)
		} else {
			client = llm.NewFallbackClient(client, fbClient, logger.Logger)
		}
	}
	return client, nil
}

// buildEmbedder 装配 Embedder 及其 Eino 适配
func buildEmbedder(cfg *config.Config) (embedding.Embedder, *embedding.EinoAdapter, error) {
	provider := cfg.Model.Defaults.Embedding
	providerCfg := cfg.Model.Embedding.Providers[provider]
	embedder, err := embedding.NewEmbedder(provider, providerCfg.Model, providerCfg.APIKey, providerCfg.BaseURL, providerCfg.Dimension)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化 Embedder failed: %w", err)
	}
	return embedder, embedding.NewEinoAdapter(embedder), nil
}
