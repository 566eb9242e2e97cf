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

package splitter

import (
	"strings"

	"github.com/google/uuid"
	"study-buddy/internal/pipeline/common"
)

// TokenSplitter 按词数切分，适合无段落结构的纯文本笔记。
// 以空格分词近似 token 数。
type TokenSplitter struct {
	name string
}

// NewTokenSplitter 创建 Token 切片器
func NewTokenSplitter() *TokenSplitter {
	return &TokenSplitter{name: "token_splitter"}
}

// Name 返回切片器名称
func (s *TokenSplitter) Name() string {
	return s.name
}

// Split 以 maxTokens 为窗口、overlap 为回退量滑动切分
func (s *TokenSplitter) Split(content string, options map[string]interface{}) ([]common.Chunk, error) {
	maxTokens := 512
	overlap := 100
	if v, ok := options["max_tokens"].(int); ok && v > 0 {
		maxTokens = v
	}
	if v, ok := options["chunk_overlap"].(int); ok && v > 0 {
		overlap = v
	}
	if overlap >= maxTokens {
		overlap = maxTokens / 2
	}

	words := strings.Fields(content)
	if len(words) == 0 {
		return nil, nil
	}

	step := maxTokens - overlap
	var chunks []common.Chunk
	for start := 0; start < len(words); start += step {
		end := start + maxTokens
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, common.Chunk{
			ID:       uuid.New().String(),
			Content:  strings.Join(words[start:end], " "),
			Metadata: map[string]interface{}{"splitter": "token"},
			Index:    len(chunks),
		})
		if end == len(words) {
			break
		}
	}
	return chunks, nil
}
