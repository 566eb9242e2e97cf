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

package session

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Context 一次学习会话的全部状态载体
type Context struct {
	ID        string
	StartTime time.Time

	DocActive    bool   // 是否已有上传文档可供检索
	DocName      string // 当前文档名
	ShowThinking bool   // 是否向用户展示执行轨迹

	stats Stats
	mu    sync.RWMutex
}

// Stats 会话统计
type Stats struct {
	Interactions int
	ToolUsage    map[string]int
	Topics       map[string]struct{}
}

// New 创建新会话（ID 传空时自动分配）
func New(id string) *Context {
	if id == "" {
		id = "session-" + uuid.New().String()
	}
	return &Context{
		ID:        id,
		StartTime: time.Now(),
		stats: Stats{
			ToolUsage: make(map[string]int),
			Topics:    make(map[string]struct{}),
		},
	}
}

// RecordInteraction 记录一次完整的用户交互
func (c *Context) RecordInteraction(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Interactions++
	if topic != "" {
		c.stats.Topics[topic] = struct{}{}
	}
}

// RecordToolUse 记录一次工具调用（含失败的调用）
func (c *Context) RecordToolUse(tool string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.ToolUsage[tool]++
}

// SetDocument 标记当前会话的活跃文档
func (c *Context) SetDocument(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DocActive = true
	c.DocName = name
}

// Snapshot 返回统计快照
func (c *Context) Snapshot() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := Stats{
		Interactions: c.stats.Interactions,
		ToolUsage:    make(map[string]int, len(c.stats.ToolUsage)),
		Topics:       make(map[string]struct{}, len(c.stats.Topics)),
	}
	for k, v := range c.stats.ToolUsage {
		out.ToolUsage[k] = v
	}
	for k := range c.stats.Topics {
		out.Topics[k] = struct{}{}
	}
	return out
}

// Summary 渲染人类可读的会话总结
func (c *Context) Summary() string {
	stats := c.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", c.ID)
	fmt.Fprintf(&b, "Duration: %s\n", time.Since(c.StartTime).Round(time.Second))
	fmt.Fprintf(&b, "Interactions: %d\n", stats.Interactions)

	if len(stats.ToolUsage) > 0 {
		tools := make([]string, 0, len(stats.ToolUsage))
		for tool := range stats.ToolUsage {
			tools = append(tools, tool)
		}
		sort.Strings(tools)
		b.WriteString("Tools used:\n")
		for _, tool := range tools {
			fmt.Fprintf(&b, "  %s: %d\n", tool, stats.ToolUsage[tool])
		}
	}
	if len(stats.Topics) > 0 {
		topics := make([]string, 0, len(stats.Topics))
		for topic := range stats.Topics {
			topics = append(topics, topic)
		}
		sort.Strings(topics)
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(topics, ", "))
	}
	return b.String()
}
