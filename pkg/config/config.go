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

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构体
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Model   ModelConfig   `mapstructure:"model"`
	Storage StorageConfig `mapstructure:"storage"`
	RAG     RAGConfig     `mapstructure:"rag"`
	Secrets SecretsConfig `mapstructure:"secrets"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// APIConfig API 服务配置
type APIConfig struct {
	Port    int    `mapstructure:"port"`
	Host    string `mapstructure:"host"`
	Timeout string `mapstructure:"timeout"`
}

// AgentConfig Agent 行为配置
type AgentConfig struct {
	// Enabled 为 false 时禁用 Planner/Dispatcher，直接走 Explain 单工具；未配置时默认 true
	Enabled *bool `mapstructure:"enabled"`
	// ShowThinking 为 true 时在响应中附带规划过程（意图、复杂度、步骤）
	ShowThinking bool `mapstructure:"show_thinking"`
	// MaxTurns 短期记忆保留的最大轮数，<=0 使用默认 10
	MaxTurns int `mapstructure:"max_turns"`
}

// ModelConfig 模型配置
type ModelConfig struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
}

// LLMConfig LLM 模型配置
type LLMConfig struct {
	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

// EmbeddingConfig Embedding 模型配置
type EmbeddingConfig struct {
	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig 模型提供商配置
type ProviderConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Dimension   int     `mapstructure:"dimension"`
	// RequestsPerMinute >0 时启用限流包装
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	MaxConcurrent     int     `mapstructure:"max_concurrent"`
}

// DefaultsConfig 默认模型配置
type DefaultsConfig struct {
	LLM       string `mapstructure:"llm"`       // groq | ollama
	Fallback  string `mapstructure:"fallback"`  // 主 Provider 不可用时的回退，如 ollama
	Embedding string `mapstructure:"embedding"` // openai
}

// StorageConfig 存储配置
type StorageConfig struct {
	Vector   VectorConfig   `mapstructure:"vector"`
	Cache    CacheConfig    `mapstructure:"cache"`
	LongTerm LongTermConfig `mapstructure:"longterm"`
}

// VectorConfig 向量存储配置（memory 为内置内存；redis 使用 eino-ext 对应组件）
type VectorConfig struct {
	Type       string `mapstructure:"type"`
	Addr       string `mapstructure:"addr"`
	DB         string `mapstructure:"db"`
	Collection string `mapstructure:"collection"` // 默认索引/集合名，ingest 与 query 共用
	Password   string `mapstructure:"password"`
}

// CacheConfig LLM 响应缓存配置
type CacheConfig struct {
	Type     string `mapstructure:"type"` // none | memory | redis
	Addr     string `mapstructure:"addr"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
	TTL      string `mapstructure:"ttl"` // 如 "10m"，空则默认 10m
}

// LongTermConfig 长期记忆存储配置
type LongTermConfig struct {
	Type string `mapstructure:"type"` // memory | postgres
	DSN  string `mapstructure:"dsn"`  // Postgres 连接串，type=postgres 时必填
}

// RAGConfig 检索增强配置（切片与检索参数）
type RAGConfig struct {
	ChunkSize    int     `mapstructure:"chunk_size"`    // <=0 默认 1500
	ChunkOverlap int     `mapstructure:"chunk_overlap"` // <=0 默认 150
	TopK         int     `mapstructure:"top_k"`         // <=0 默认 3
	TopKMax      int     `mapstructure:"top_k_max"`     // 复杂请求的上限，<=0 默认 5
	Threshold    float64 `mapstructure:"threshold"`     // 相似度阈值，<=0 默认 0.3
}

// SecretsConfig Secret Store 配置
type SecretsConfig struct {
	Provider   string `mapstructure:"provider"`     // env | vault | memory
	APIKeyName string `mapstructure:"api_key_name"` // 主 LLM API Key 的键名，默认 GROQ_API_KEY
	Vault      struct {
		Address    string `mapstructure:"address"`
		Token      string `mapstructure:"token"`
		PathPrefix string `mapstructure:"path_prefix"`
	} `mapstructure:"vault"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enable bool `mapstructure:"enable"`
}

// AgentEnabled Agent 模式开关（未配置默认 true）
func (c *Config) AgentEnabled() bool {
	if c == nil || c.Agent.Enabled == nil {
		return true
	}
	return *c.Agent.Enabled
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	if err := replaceEnvVars(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	return &config, nil
}

// replaceEnvVars 替换配置中的 ${VAR} 形式 API Key
func replaceEnvVars(config *Config) error {
	for provider, providerConfig := range config.Model.LLM.Providers {
		if strings.HasPrefix(providerConfig.APIKey, "$") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(providerConfig.APIKey, "}"), "${")
			if val := os.Getenv(envVar); val != "" {
				providerConfig.APIKey = val
				config.Model.LLM.Providers[provider] = providerConfig
			}
		}
	}

	for provider, providerConfig := range config.Model.Embedding.Providers {
		if strings.HasPrefix(providerConfig.APIKey, "$") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(providerConfig.APIKey, "}"), "${")
			if val := os.Getenv(envVar); val != "" {
				providerConfig.APIKey = val
				config.Model.Embedding.Providers[provider] = providerConfig
			}
		}
	}

	return nil
}

// applyDefaults 填充 RAG/Agent 的缺省值
func applyDefaults(config *Config) {
	if config.RAG.ChunkSize <= 0 {
		config.RAG.ChunkSize = 1500
	}
	if config.RAG.ChunkOverlap <= 0 {
		config.RAG.ChunkOverlap = 150
	}
	if config.RAG.TopK <= 0 {
		config.RAG.TopK = 3
	}
	if config.RAG.TopKMax <= 0 {
		config.RAG.TopKMax = 5
	}
	if config.RAG.Threshold <= 0 {
		config.RAG.Threshold = 0.3
	}
	if config.Agent.MaxTurns <= 0 {
		config.Agent.MaxTurns = 10
	}
	if config.Secrets.APIKeyName == "" {
		config.Secrets.APIKeyName = "GROQ_API_KEY"
	}
}

// LoadAppConfig 加载应用配置（configs/app.yaml）并合并 model 配置
func LoadAppConfig() (*Config, error) {
	cfg, err := LoadConfig("configs/app.yaml")
	if err != nil {
		return nil, err
	}
	modelCfg, err := LoadConfig("configs/model.yaml")
	if err == nil {
		cfg.Model = modelCfg.Model
	}
	return cfg, nil
}

// LoadModelConfig 加载模型配置
func LoadModelConfig() (*Config, error) {
	return LoadConfig("configs/model.yaml")
}
