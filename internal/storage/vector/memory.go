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

package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore 内存向量存储实现，单机学习场景的默认后端
type MemoryStore struct {
	indexes map[string]*index
	mu      sync.RWMutex
}

type index struct {
	meta      *Index
	vectors   map[string]*Vector
	dimension int
}

// NewMemoryStore 创建新的内存向量存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		indexes: make(map[string]*index),
	}
}

// Create 创建向量索引
func (s *MemoryStore) Create(ctx context.Context, idx *Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.indexes[idx.Name]; exists {
		return fmt.Errorf("index with name %s already exists", idx.Name)
	}

	s.indexes[idx.Name] = &index{
		meta:      idx,
		vectors:   make(map[string]*Vector),
		dimension: idx.Dimension,
	}
	return nil
}

// Add 添加向量。索引维度为 0 时以首个向量定维。
func (s *MemoryStore) Add(ctx context.Context, indexName string, vectors []*Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.indexes[indexName]
	if !exists {
		return fmt.Errorf("index with name %s not found", indexName)
	}

	for _, vec := range vectors {
		if idx.dimension == 0 {
			idx.dimension = len(vec.Values)
		}
		if len(vec.Values) != idx.dimension {
			return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vec.Values), idx.dimension)
		}
		idx.vectors[vec.ID] = vec
	}
	return nil
}

// Search 余弦相似度搜索。空索引返回空结果而非错误。
func (s *MemoryStore) Search(ctx context.Context, indexName string, query []float64, options *SearchOptions) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.indexes[indexName]
	if !exists {
		return nil, fmt.Errorf("index with name %s not found", indexName)
	}
	if len(idx.vectors) == 0 {
		return nil, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), idx.dimension)
	}

	if options == nil {
		options = &SearchOptions{TopK: 10}
	}

	var results []*SearchResult
	for id, vec := range idx.vectors {
		if len(options.Filter) > 0 && !matchesFilter(vec.Metadata, options.Filter) {
			continue
		}

		score := cosineSimilarity(query, vec.Values)
		if score < options.Threshold {
			continue
		}

		results = append(results, &SearchResult{
			ID:       id,
			Score:    score,
			Content:  vec.Content,
			Metadata: vec.Metadata,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if options.TopK > 0 && len(results) > options.TopK {
		results = results[:options.TopK]
	}
	return results, nil
}

// Get 根据 ID 获取向量
func (s *MemoryStore) Get(ctx context.Context, indexName string, id string) (*Vector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.indexes[indexName]
	if !exists {
		return nil, fmt.Errorf("index with name %s not found", indexName)
	}
	vec, exists := idx.vectors[id]
	if !exists {
		return nil, fmt.Errorf("vector with ID %s not found", id)
	}
	return vec, nil
}

// Delete 删除向量
func (s *MemoryStore) Delete(ctx context.Context, indexName string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.indexes[indexName]
	if !exists {
		return fmt.Errorf("index with name %s not found", indexName)
	}
	if _, exists := idx.vectors[id]; !exists {
		return fmt.Errorf("vector with ID %s not found", id)
	}
	delete(idx.vectors, id)
	return nil
}

// Count 返回索引内的向量数量
func (s *MemoryStore) Count(ctx context.Context, indexName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.indexes[indexName]
	if !exists {
		return 0, fmt.Errorf("index with name %s not found", indexName)
	}
	return len(idx.vectors), nil
}

// DeleteIndex 删除索引
func (s *MemoryStore) DeleteIndex(ctx context.Context, indexName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.indexes[indexName]; !exists {
		return fmt.Errorf("index with name %s not found", indexName)
	}
	delete(s.indexes, indexName)
	return nil
}

// Close 关闭存储连接
func (s *MemoryStore) Close() error {
	return nil
}

func matchesFilter(metadata, filter map[string]string) bool {
	for key, value := range filter {
		if metadata == nil || metadata[key] != value {
			return false
		}
	}
	return true
}

// cosineSimilarity 计算余弦相似度
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	dotProduct := 0.0
	normA := 0.0
	normB := 0.0
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
