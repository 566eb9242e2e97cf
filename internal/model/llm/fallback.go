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

package llm

import (
	"context"
	"log/slog"

	pkgerrors "study-buddy/pkg/errors"
)

// FallbackClient 优先调用主 Client，主模型限流或不可用时切换到本地模型。
type FallbackClient struct {
	primary  Client
	fallback Client
	logger   *slog.Logger
}

// NewFallbackClient 创建带降级的 LLM 客户端。fallback 为 nil 时退化为直接调用 primary。
func NewFallbackClient(primary, fallback Client, logger *slog.Logger) *FallbackClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackClient{primary: primary, fallback: fallback, logger: logger}
}

// Generate 实现 Client.Generate。
func (c *FallbackClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return c.GenerateWithContext(context.Background(), prompt, options)
}

// GenerateWithContext 实现 Client.GenerateWithContext，可恢复错误时降级。
func (c *FallbackClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	result, err := c.primary.GenerateWithContext(ctx, prompt, options)
	if err == nil || c.fallback == nil || !pkgerrors.IsRecoverable(err) {
		return result, err
	}
	c.logger.Warn("primary llm failed, falling back",
		"primary", c.primary.Provider(),
		"fallback", c.fallback.Provider(),
		"error", err)
	return c.fallback.GenerateWithContext(ctx, prompt, options)
}

// Chat 实现 Client.Chat。
func (c *FallbackClient) Chat(messages []Message, options GenerateOptions) (string, error) {
	return c.ChatWithContext(context.Background(), messages, options)
}

// ChatWithContext 实现 Client.ChatWithContext，可恢复错误时降级。
func (c *FallbackClient) ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error) {
	result, err := c.primary.ChatWithContext(ctx, messages, options)
	if err == nil || c.fallback == nil || !pkgerrors.IsRecoverable(err) {
		return result, err
	}
	c.logger.Warn("primary llm failed, falling back",
		"primary", c.primary.Provider(),
		"fallback", c.fallback.Provider(),
		"error", err)
	return c.fallback.ChatWithContext(ctx, messages, options)
}

// Model 返回主 Client 的模型名称。
func (c *FallbackClient) Model() string { return c.primary.Model() }

// Provider 返回主 Client 的提供商名称。
func (c *FallbackClient) Provider() string { return c.primary.Provider() }

// SetModel 代理到主 Client。
func (c *FallbackClient) SetModel(model string) { c.primary.SetModel(model) }

// SetAPIKey 代理到主 Client。
func (c *FallbackClient) SetAPIKey(apiKey string) { c.primary.SetAPIKey(apiKey) }
