package llm

import (
	"context"
)

// Client LLM 客户端接口
type Client interface {
	// Generate 生成文本
	Generate(prompt string, options GenerateOptions) (string, error)
	// GenerateWithContext 使用上下文生成文本
	GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error)
	// Chat 聊天
	Chat(messages []Message, options GenerateOptions) (string, error)
	// ChatWithContext 使用上下文聊天
	ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error)
	// Model 返回模型名称
	Model() string
	// Provider 返回提供商名称
	Provider() string
	// SetModel 设置模型
	SetModel(model string)
	// SetAPIKey 设置 API Key
	SetAPIKey(apiKey string)
}

// GenerateOptions 生成选项
type GenerateOptions struct {
	Temperature float64  `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop"`
	System      string   `json:"-"` // 系统提示词，仅 Generate 路径使用
}

// Message 聊天消息
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// DefaultOptions 辅导场景默认生成参数
func DefaultOptions() GenerateOptions {
	return GenerateOptions{
		Temperature: 0.7,
		MaxTokens:   2048,
		TopP:        0.9,
	}
}

// NewClient 创建新的 LLM 客户端；baseURL 为空时用 provider 默认端点或环境变量
func NewClient(provider, model, apiKey string, baseURL string) (Client, error) {
	switch provider {
	case "groq":
		return NewGroqClientWithBaseURL(model, apiKey, baseURL)
	case "ollama":
		return NewOllamaClient(model, baseURL)
	default:
		return NewGroqClientWithBaseURL(model, apiKey, baseURL)
	}
}
