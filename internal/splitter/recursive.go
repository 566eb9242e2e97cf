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

// 默认切片参数，适配教材类长文档
const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 150
	MinChunkChars       = 50
)

// 递归切片的分隔符，按结构强弱排序
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// RecursiveSplitter 递归字符切片器。优先沿段落边界切，段落过长时逐级降到
// 换行、句子、词，最后硬切。
type RecursiveSplitter struct {
	name         string
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewRecursiveSplitter 创建新的递归切片器
func NewRecursiveSplitter() *RecursiveSplitter {
	return &RecursiveSplitter{
		name:         "recursive_splitter",
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separators:   defaultSeparators,
	}
}

// Name 返回切片器名称
func (s *RecursiveSplitter) Name() string {
	return s.name
}

// Split 执行递归切片。过短的碎片（标题残片、页码）会被丢弃。
func (s *RecursiveSplitter) Split(content string, options map[string]interface{}) ([]common.Chunk, error) {
	chunkSize := s.chunkSize
	chunkOverlap := s.chunkOverlap

	if size, ok := options["chunk_size"].(int); ok && size > 0 {
		chunkSize = size
	}
	if overlap, ok := options["chunk_overlap"].(int); ok && overlap > 0 {
		chunkOverlap = overlap
	}

	pieces := s.splitRecursive(content, s.separators, chunkSize, chunkOverlap)

	var chunks []common.Chunk
	for _, piece := range pieces {
		trimmed := strings.TrimSpace(piece)
		if len(trimmed) < MinChunkChars {
			continue
		}
		chunks = append(chunks, common.Chunk{
			ID:      uuid.New().String(),
			Content: trimmed,
			Metadata: map[string]interface{}{
				"splitter": "recursive",
			},
			Index: len(chunks),
		})
	}
	return chunks, nil
}

// splitRecursive 按当前层级分隔符切分，过长片段递归降级
func (s *RecursiveSplitter) splitRecursive(text string, separators []string, chunkSize, chunkOverlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	// 找到第一个出现在文本中的分隔符
	sep := ""
	var rest []string
	for i, candidate := range separators {
		if candidate == "" {
			sep = ""
			rest = nil
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	// 所有分隔符都不命中，硬切
	if sep == "" {
		return s.hardCut(text, chunkSize, chunkOverlap)
	}

	splits := strings.Split(text, sep)
	var final []string
	var pending []string

	flush := func() {
		if len(pending) > 0 {
			final = append(final, s.mergeSplits(pending, sep, chunkSize, chunkOverlap)...)
			pending = nil
		}
	}

	for _, split := range splits {
		if len(split) <= chunkSize {
			pending = append(pending, split)
			continue
		}
		flush()
		final = append(final, s.splitRecursive(split, rest, chunkSize, chunkOverlap)...)
	}
	flush()
	return final
}

// mergeSplits 将同层级的小片段合并为不超过 chunkSize 的块，相邻块保留 overlap
func (s *RecursiveSplitter) mergeSplits(splits []string, sep string, chunkSize, chunkOverlap int) []string {
	var chunks []string
	var current []string
	total := 0

	joinedLen := func(n, extra int) int {
		if n == 0 {
			return extra
		}
		return total + len(sep) + extra
	}

	for _, split := range splits {
		if joinedLen(len(current), len(split)) > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, sep))
			// 回退保留 overlap 长度的尾部作为下一块的开头
			for total > chunkOverlap && len(current) > 0 {
				total -= len(current[0])
				if len(current) > 1 {
					total -= len(sep)
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += len(sep)
		}
		current = append(current, split)
		total += len(split)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, sep))
	}
	return chunks
}

// hardCut 无分隔符可用时按固定窗口硬切
func (s *RecursiveSplitter) hardCut(text string, chunkSize, chunkOverlap int) []string {
	step := chunkSize - chunkOverlap
	if step < 1 {
		step = chunkSize
	}
	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}
