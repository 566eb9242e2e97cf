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

package common

import (
	"time"
)

// Document 文档结构体
type Document struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata"`
	Chunks    []Chunk                `json:"chunks,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Chunk 文档切片
type Chunk struct {
	ID         string                 `json:"id"`
	Content    string                 `json:"content"`
	Metadata   map[string]interface{} `json:"metadata"`
	Embedding  []float64              `json:"embedding,omitempty"`
	DocumentID string                 `json:"document_id"`
	Index      int                    `json:"index"`
}

// ScoredChunk 带相似度得分的切片
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
