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

package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashEmbedder 本地确定性向量化器。词级特征哈希投影到固定维度并做 L2 归一化，
// 无需外部服务，作为远端 embedding 不可用时的降级路径。
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder 创建本地 Embedder，维度默认 384
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashEmbedder{dimension: dimension}
}

// Model 返回模型名称
func (e *HashEmbedder) Model() string {
	return "feature-hash"
}

// Dimension 返回向量维度
func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

// Embed 对文本做向量化，返回与 texts 一一对应的向量
func (e *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = e.embedOne(text)
	}
	return out, nil
}

func (e *HashEmbedder) embedOne(text string) []float64 {
	vec := make([]float64, e.dimension)
	words := strings.Fields(strings.ToLower(text))
	for _, word := range words {
		h := fnv.New64a()
		h.Write([]byte(word))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dimension))
		// 最高位决定符号，避免全部正值挤在同一象限
		sign := 1.0
		if sum&(1<<63) != 0 {
			sign = -1.0
		}
		vec[idx] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
