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
	"sync"
)

// InMemoryTurnStore TurnStore 的进程内实现，未配置数据库时使用
type InMemoryTurnStore struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
}

// NewInMemoryTurnStore 创建进程内长期存储
func NewInMemoryTurnStore() *InMemoryTurnStore {
	return &InMemoryTurnStore{sessions: make(map[string][]Turn)}
}

// Append 持久化一轮对话
func (s *InMemoryTurnStore) Append(ctx context.Context, sessionID string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], turn)
	return nil
}

// History 返回该会话最近 limit 轮，时间升序
func (s *InMemoryTurnStore) History(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.sessions[sessionID]
	if len(list) == 0 {
		return nil, nil
	}
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]Turn, len(list))
	copy(out, list)
	return out, nil
}

// Close 关闭存储
func (s *InMemoryTurnStore) Close() {}
