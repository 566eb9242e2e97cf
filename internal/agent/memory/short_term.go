package memory

import (
	"strings"
	"sync"
)

const defaultMaxTurns = 10

// ShortTerm 短期记忆的 in-memory 实现
type ShortTerm struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
	maxPer   int
}

// NewShortTerm 创建短期记忆，maxTurnsPerSession 为每 session 最多保留轮数，0 表示默认 10
func NewShortTerm(maxTurnsPerSession int) *ShortTerm {
	if maxTurnsPerSession <= 0 {
		maxTurnsPerSession = defaultMaxTurns
	}
	return &ShortTerm{
		sessions: make(map[string][]Turn),
		maxPer:   maxTurnsPerSession,
	}
}

// Record 追加一轮对话，超过 maxPer 时丢弃最旧的
func (s *ShortTerm) Record(sessionID string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.sessions[sessionID]
	list = append(list, turn)
	if len(list) > s.maxPer {
		list = list[len(list)-s.maxPer:]
	}
	s.sessions[sessionID] = list
}

// Recent 返回最近 n 轮（时间升序），n 大于保留数时返回全部
func (s *ShortTerm) Recent(sessionID string, n int) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.sessions[sessionID]
	if len(list) == 0 || n <= 0 {
		return nil
	}
	if n > len(list) {
		n = len(list)
	}
	out := make([]Turn, n)
	copy(out, list[len(list)-n:])
	return out
}

// Len 返回当前保留的轮数
func (s *ShortTerm) Len(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[sessionID])
}

// RecallSimilar 在保留的轮次里按词重叠找最相近的用户提问，无命中返回零值
func (s *ShortTerm) RecallSimilar(sessionID, query string) (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return Turn{}, false
	}

	var best Turn
	bestScore := 0
	for _, turn := range s.sessions[sessionID] {
		if turn.Role != "user" {
			continue
		}
		text := strings.ToLower(turn.Text)
		score := 0
		for _, w := range words {
			if len(w) > 3 && strings.Contains(text, w) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = turn
		}
	}
	return best, bestScore > 0
}

// Clear 清空该 session 的对话
func (s *ShortTerm) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
