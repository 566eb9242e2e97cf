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

// OllamaClient 本地 Ollama 客户端，远端模型不可用时作为降级路径
type OllamaClient struct {
	provider string
	model    string
	baseURL  string
	client   *resty.Client
}

// NewOllamaClient 创建 Ollama 客户端；baseURL 为空时用默认或 OLLAMA_BASE_URL
func NewOllamaClient(model, baseURL string) (*OllamaClient, error) {
	if model == "" {
		model = "llama3.2"
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
		if envURL := os.Getenv("OLLAMA_BASE_URL"); envURL != "" {
			baseURL = envURL
		}
	}

	client := resty.New()
	// 本地推理比远端慢得多，超时放宽
	client.SetTimeout(120 * time.Second)

	return &OllamaClient{
		provider: "ollama",
		model:    model,
		baseURL:  baseURL,
		client:   client,
	}, nil
}

// Generate 生成文本
func (c *OllamaClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return c.GenerateWithContext(context.Background(), prompt, options)
}

// GenerateWithContext 使用上下文生成文本
func (c *OllamaClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	messages := make([]Message, 0, 2)
	if options.System != "" {
		messages = append(messages, Message{Role: "system", Content: options.System})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})
	return c.ChatWithContext(ctx, messages, options)
}

// Chat 聊天
func (c *OllamaClient) Chat(messages []Message, options GenerateOptions) (string, error) {
	return c.ChatWithContext(context.Background(), messages, options)
}

// ChatWithContext 使用上下文聊天
func (c *OllamaClient) ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error) {
	ollamaMessages := make([]map[string]string, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = map[string]string{
			"role":    msg.Role,
			"content": msg.Content,
		}
	}

	request := map[string]interface{}{
		"model":    c.model,
		"messages": ollamaMessages,
		"stream":   false,
		"options": map[string]interface{}{
			"temperature": options.Temperature,
			"num_predict": options.MaxTokens,
			"top_p":       options.TopP,
		},
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		Post(c.baseURL + "/api/chat")

	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrProvider, "调用 Ollama failed")
	}
	if response.StatusCode() != http.StatusOK {
		return "", pkgerrors.Wrapf(pkgerrors.ErrProvider, "Ollama 返回错误: %s", response.String())
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}

	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrProvider, "解析 Ollama 响应failed")
	}
	if result.Message.Content == "" {
		return "", pkgerrors.Wrap(pkgerrors.ErrProvider, "Ollama 没有返回结果")
	}

	return result.Message.Content, nil
}

// Model 返回模型名称
func (c *OllamaClient) Model() string {
	return c.model
}

// Provider 返回提供商名称
func (c *OllamaClient) Provider() string {
	return c.provider
}

// SetModel 设置模型
func (c *OllamaClient) SetModel(model string) {
	c.model = model
}

// SetAPIKey 设置 API Key（Ollama 无需鉴权，保留以满足接口）
func (c *OllamaClient) SetAPIKey(apiKey string) {}
