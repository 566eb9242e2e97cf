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

package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	einoindexer "github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"study-buddy/internal/pipeline/common"
	"study-buddy/internal/pipeline/ingest"
	"study-buddy/internal/splitter"
	pkgerrors "study-buddy/pkg/errors"
)

// IngestResult 一次文档导入的结果
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	Chunks     int    `json:"chunks"`
	Characters int    `json:"characters"`
}

// DocumentService 文档导入门面：抽取、切片、向量化入库
type DocumentService struct {
	indexer      einoindexer.Indexer
	splitter     *splitter.Engine
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// DocumentServiceConfig DocumentService 构造参数
type DocumentServiceConfig struct {
	Indexer      einoindexer.Indexer
	Splitter     *splitter.Engine
	ChunkSize    int
	ChunkOverlap int
	Logger       *slog.Logger
}

// NewDocumentService 创建文档门面
func NewDocumentService(cfg DocumentServiceConfig) *DocumentService {
	engine := cfg.Splitter
	if engine == nil {
		engine = splitter.NewEngine()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentService{
		indexer:      cfg.Indexer,
		splitter:     engine,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		logger:       logger,
	}
}

// IngestPDF 抽取 PDF 文本后导入
func (s *DocumentService) IngestPDF(ctx context.Context, name string, data []byte) (*IngestResult, error) {
	text, err := ingest.ExtractPDFText(data)
	if err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "extract pdf %s: %v", name, err)
	}
	return s.IngestText(ctx, name, text)
}

// IngestText 切片并向量化入库。空文本视为无效输入。
func (s *DocumentService) IngestText(ctx context.Context, name, text string) (*IngestResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "document %s has no extractable text", name)
	}
	if s.indexer == nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrConfiguration, "document service requires indexer")
	}

	doc := &common.Document{
		ID:        uuid.New().String(),
		Name:      name,
		Content:   text,
		CreatedAt: time.Now(),
	}
	options := map[string]interface{}{}
	if s.chunkSize > 0 {
		options["chunk_size"] = s.chunkSize
	}
	if s.chunkOverlap > 0 {
		options["chunk_overlap"] = s.chunkOverlap
	}
	doc, err := s.splitter.SplitDocument(doc, "recursive", options)
	if err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "split %s: %v", name, err)
	}

	docs := make([]*schema.Document, 0, len(doc.Chunks))
	for _, chunk := range doc.Chunks {
		docs = append(docs, &schema.Document{
			ID:      chunk.ID,
			Content: chunk.Content,
			MetaData: map[string]any{
				"document_id":   doc.ID,
				"document_name": name,
			},
		})
	}
	if _, err := s.indexer.Store(ctx, docs); err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrRetrieval, "index %s: %v", name, err)
	}

	s.logger.Info("document ingested", "name", name, "chunks", len(docs), "characters", len(text))
	return &IngestResult{
		DocumentID: doc.ID,
		Name:       name,
		Chunks:     len(docs),
		Characters: len(text),
	}, nil
}
