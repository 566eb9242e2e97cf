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
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	pkgerrors "study-buddy/pkg/errors"
)

// GroqClient Groq 客户端（OpenAI 兼容 chat completions 端点）
type GroqClient struct {
	provider string
	model    string
	apiKey   string
	baseURL  string
	client   *resty.Client
}

// NewGroqClient 创建新的 Groq 客户端（base 优先用 GROQ_BASE_URL 环境变量）
func NewGroqClient(model, apiKey string) (*GroqClient, error) {
	return NewGroqClientWithBaseURL(model, apiKey, "")
}

// NewGroqClientWithBaseURL 创建 Groq 客户端；baseURL 为空时用默认或 GROQ_BASE_URL
func NewGroqClientWithBaseURL(model, apiKey, baseURL string) (*GroqClient, error) {
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
		if envURL := os.Getenv("GROQ_BASE_URL"); envURL != "" {
			baseURL = envURL
		}
	}

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(1 * time.Second)
	client.SetRetryMaxWaitTime(5 * time.Second)

	return &GroqClient{
		provider: "groq",
		model:    model,
		apiKey:   apiKey,
		baseURL:  baseURL,
		client:   client,
	}, nil
}

// Generate 生成文本
func (c *GroqClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return c.GenerateWithContext(context.Background(), prompt, options)
}

// GenerateWithContext 使用上下文生成文本
func (c *GroqClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	messages := make([]Message, 0, 2)
	if options.System != "" {
		messages = append(messages, Message{Role: "system", Content: options.System})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})
	return c.ChatWithContext(ctx, messages, options)
}

// Chat 聊天
func (c *GroqClient) Chat(messages []Message, options GenerateOptions) (string, error) {
	return c.ChatWithContext(context.Background(), messages, options)
}

// ChatWithContext 使用上下文聊天
func (c *GroqClient) ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error) {
	groqMessages := make([]map[string]string, len(messages))
	for i, msg := range messages {
		groqMessages[i] = map[string]string{
			"role":    msg.Role,
			"content": msg.Content,
		}
	}

	request := map[string]interface{}{
		"model":       c.model,
		"messages":    groqMessages,
		"temperature": options.Temperature,
		"max_tokens":  options.MaxTokens,
		"top_p":       options.TopP,
	}
	if len(options.Stop) > 0 {
		request["stop"] = options.Stop
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(request).
		Post(c.baseURL + "/chat/completions")

	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrProvider, "调用 Groq API failed")
	}

	// 429 属于可恢复错误，调用方可以切换本地模型
	if response.StatusCode() == http.StatusTooManyRequests {
		return "", pkgerrors.Wrap(pkgerrors.ErrRateLimit, "Groq API 限流")
	}
	if response.StatusCode() != http.StatusOK {
		return "", pkgerrors.Wrapf(pkgerrors.ErrProvider, "Groq API 返回错误: %s", response.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrProvider, "解析 Groq 响应failed")
	}

	if len(result.Choices) == 0 {
		return "", pkgerrors.Wrap(pkgerrors.ErrProvider, "Groq API 没有返回结果")
	}

	return result.Choices[0].Message.Content, nil
}

// Model 返回模型名称
func (c *GroqClient) Model() string {
	return c.model
}

// Provider 返回提供商名称
func (c *GroqClient) Provider() string {
	return c.provider
}

// SetModel 设置模型
func (c *GroqClient) SetModel(model string) {
	c.model = model
}

// SetAPIKey 设置 API Key
func (c *GroqClient) SetAPIKey(apiKey string) {
	c.apiKey = apiKey
}
