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
	"fmt"

	"study-buddy/internal/pipeline/common"
)

// Engine 切片引擎
type Engine struct {
	name      string
	splitters map[string]Splitter
}

// Splitter 切片器接口
type Splitter interface {
	Split(content string, options map[string]interface{}) ([]common.Chunk, error)
	Name() string
}

// NewEngine 创建新的切片引擎
func NewEngine() *Engine {
	engine := &Engine{
		name:      "splitter_engine",
		splitters: make(map[string]Splitter),
	}
	engine.registerSplitters()
	return engine
}

// Name 返回引擎名称
func (e *Engine) Name() string {
	return e.name
}

// registerSplitters 注册内置切片器
func (e *Engine) registerSplitters() {
	e.splitters["recursive"] = NewRecursiveSplitter()
	e.splitters["token"] = NewTokenSplitter()
}

// AddSplitter 添加自定义切片器
func (e *Engine) AddSplitter(name string, splitter Splitter) {
	e.splitters[name] = splitter
}

// GetSplitter 获取切片器
func (e *Engine) GetSplitter(name string) (Splitter, error) {
	splitter, exists := e.splitters[name]
	if !exists {
		return nil, fmt.Errorf("splitter not found: %s", name)
	}
	return splitter, nil
}

// Split 执行切片
func (e *Engine) Split(content string, splitterName string, options map[string]interface{}) ([]common.Chunk, error) {
	splitter, err := e.GetSplitter(splitterName)
	if err != nil {
		return nil, err
	}
	chunks, err := splitter.Split(content, options)
	if err != nil {
		return nil, fmt.Errorf("split failed: %w", err)
	}
	return chunks, nil
}

// SplitDocument 切片文档
func (e *Engine) SplitDocument(doc *common.Document, splitterName string, options map[string]interface{}) (*common.Document, error) {
	chunks, err := e.Split(doc.Content, splitterName, options)
	if err != nil {
		return nil, err
	}
	for i := range chunks {
		chunks[i].DocumentID = doc.ID
	}
	doc.Chunks = chunks
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]interface{})
	}
	doc.Metadata["chunked"] = true
	doc.Metadata["chunk_count"] = len(chunks)
	doc.Metadata["splitter"] = splitterName
	return doc, nil
}
