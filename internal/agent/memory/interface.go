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

package memory

import (
	"context"
	"time"
)

// Turn 一轮对话记录
type Turn struct {
	Role      string    `json:"role"` // user | assistant
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	ToolUsed  string    `json:"tool_used,omitempty"`
}

// ShortTermMemory 短期记忆：当前会话最近若干轮对话
type ShortTermMemory interface {
	// Record 追加一轮对话，超出容量时丢弃最旧的
	Record(sessionID string, turn Turn)
	// Recent 返回最近 n 轮，时间升序
	Recent(sessionID string, n int) []Turn
	// RecallSimilar 按词重叠找最相近的历史用户提问
	RecallSimilar(sessionID, query string) (Turn, bool)
	// Len 返回当前保留的轮数
	Len(sessionID string) int
	// Clear 清空该会话的记忆
	Clear(sessionID string)
}

// TurnStore 长期对话存储，跨进程保留学习历史
type TurnStore interface {
	// Append 持久化一轮对话
	Append(ctx context.Context, sessionID string, turn Turn) error
	// History 返回该会话最近 limit 轮，时间升序
	History(ctx context.Context, sessionID string, limit int) ([]Turn, error)
	// Close 关闭存储
	Close()
}
