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

package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	pkgerrors "study-buddy/pkg/errors"
)

// OpenAIAdapter OpenAI 兼容 embeddings 端点适配器
type OpenAIAdapter struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	client    *resty.Client
}

// NewOpenAIAdapter 创建 OpenAI Embedding 适配器
func NewOpenAIAdapter(apiKey, model, baseURL string, dimension int) *OpenAIAdapter {
	if model == "" {
		model = "text-embedding-3-small"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if dimension <= 0 {
		dimension = 1536
	}

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(1 * time.Second)

	return &OpenAIAdapter{
		apiKey:    apiKey,
		model:     model,
		baseURL:   baseURL,
		dimension: dimension,
		client:    client,
	}
}

// Model 返回模型名称
func (a *OpenAIAdapter) Model() string {
	return a.model
}

// Dimension 返回向量维度
func (a *OpenAIAdapter) Dimension() int {
	return a.dimension
}

// Embed 调用 embeddings API 做向量化
func (a *OpenAIAdapter) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]interface{}{
		"model": a.model,
		"input": texts,
	}

	response, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+a.apiKey).
		SetBody(request).
		Post(a.baseURL + "/embeddings")

	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrProvider, "调用 embeddings API failed")
	}
	if response.StatusCode() == http.StatusTooManyRequests {
		return nil, pkgerrors.Wrap(pkgerrors.ErrRateLimit, "embeddings API 限流")
	}
	if response.StatusCode() != http.StatusOK {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrProvider, "embeddings API 返回错误: %s", response.String())
	}

	var result struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrProvider, "解析 embeddings 响应failed")
	}
	if len(result.Data) != len(texts) {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrProvider, "embeddings 数量不匹配: got %d, want %d", len(result.Data), len(texts))
	}

	// API 不保证返回顺序，按 index 归位
	out := make([][]float64, len(texts))
	for _, item := range result.Data {
		if item.Index < 0 || item.Index >= len(out) {
			return nil, pkgerrors.Wrapf(pkgerrors.ErrProvider, "embeddings index 越界: %d", item.Index)
		}
		out[item.Index] = item.Embedding
	}
	return out, nil
}
