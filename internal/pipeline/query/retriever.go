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

package query

import (
	"context"

	einoretriever "github.com/cloudwego/eino/components/retriever"

	"study-buddy/internal/pipeline/common"
	"study-buddy/pkg/errors"
	"study-buddy/pkg/metrics"
)

// Retriever 检索门面，包装 Eino Retriever 并产出领域层的 ScoredChunk。
// 空索引返回空结果，检索不可用时返回 ErrRetrieval。
type Retriever struct {
	inner einoretriever.Retriever
}

// NewRetriever 创建检索门面
func NewRetriever(inner einoretriever.Retriever) *Retriever {
	return &Retriever{inner: inner}
}

// Search 检索与 query 最相关的 k 个切片，按相似度降序
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]common.ScoredChunk, error) {
	opts := []einoretriever.Option{}
	if k > 0 {
		opts = append(opts, einoretriever.WithTopK(k))
	}

	docs, err := r.inner.Retrieve(ctx, query, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRetrieval, "retrieve")
	}
	metrics.RetrievedChunks.Observe(float64(len(docs)))
	if len(docs) == 0 {
		return nil, nil
	}

	chunks := make([]common.ScoredChunk, 0, len(docs))
	for i, doc := range docs {
		if doc == nil {
			continue
		}
		meta := make(map[string]interface{}, len(doc.MetaData))
		for key, value := range doc.MetaData {
			meta[key] = value
		}
		chunks = append(chunks, common.ScoredChunk{
			Chunk: common.Chunk{
				ID:       doc.ID,
				Content:  doc.Content,
				Metadata: meta,
				Index:    i,
			},
			Score: doc.Score(),
		})
	}
	return chunks, nil
}
