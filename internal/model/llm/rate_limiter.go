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
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// LLMLimitConfig 单个 provider 的限流配置
type LLMLimitConfig struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	MaxConcurrent     int     `yaml:"max_concurrent"`
}

// providerGate 一个 provider 的放行闸：令牌桶限速 + 并发槽位
type providerGate struct {
	reqs  *rate.Limiter
	slots chan struct{}
}

func newProviderGate(cfg LLMLimitConfig) *providerGate {
	g := &providerGate{}
	if cfg.RequestsPerMinute > 0 {
		perSecond := rate.Limit(cfg.RequestsPerMinute / 60.0)
		burst := int(cfg.RequestsPerMinute / 30.0)
		if burst < 1 {
			burst = 1
		}
		g.reqs = rate.NewLimiter(perSecond, burst)
	}
	if cfg.MaxConcurrent > 0 {
		g.slots = make(chan struct{}, cfg.MaxConcurrent)
	}
	return g
}

// LLMRateLimiter 按 provider 维度限流。未显式配置的 provider 在首次
// 调用时按 defaults 建闸。
type LLMRateLimiter struct {
	mu       sync.Mutex
	gates    map[string]*providerGate
	defaults LLMLimitConfig
}

// NewLLMRateLimiter 创建 LLM 限流器。defaults 为 nil 时取 Groq 免费档配额。
func NewLLMRateLimiter(configs map[string]LLMLimitConfig, defaults *LLMLimitConfig) *LLMRateLimiter {
	def := LLMLimitConfig{RequestsPerMinute: 30, MaxConcurrent: 4}
	if defaults != nil {
		def = *defaults
	}
	l := &LLMRateLimiter{gates: make(map[string]*providerGate), defaults: def}
	for provider, cfg := range configs {
		l.gates[provider] = newProviderGate(cfg)
	}
	return l
}

func (l *LLMRateLimiter) gate(provider string) *providerGate {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.gates[provider]
	if !ok {
		g = newProviderGate(l.defaults)
		l.gates[provider] = g
	}
	return g
}

// Wait 阻塞直到该 provider 允许发起一次调用。成功返回后必须配对 Release。
func (l *LLMRateLimiter) Wait(ctx context.Context, provider string) error {
	g := l.gate(provider)
	if g.reqs != nil {
		if err := g.reqs.Wait(ctx); err != nil {
			return fmt.Errorf("等待 %s 限流许可failed: %w", provider, err)
		}
	}
	if g.slots != nil {
		select {
		case g.slots <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Release 归还 Wait 占用的并发槽位
func (l *LLMRateLimiter) Release(provider string) {
	g := l.gate(provider)
	if g.slots == nil {
		return
	}
	select {
	case <-g.slots:
	default:
	}
}

// Allow 非阻塞检查；返回 true 时已占用槽位，同样需要 Release
func (l *LLMRateLimiter) Allow(provider string) bool {
	g := l.gate(provider)
	if g.reqs != nil && !g.reqs.Allow() {
		return false
	}
	if g.slots != nil {
		select {
		case g.slots <- struct{}{}:
		default:
			return false
		}
	}
	return true
}
