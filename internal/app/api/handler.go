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

package api

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	hertzapp "github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"study-buddy/internal/agent/planner"
	"study-buddy/internal/agent/session"
	"study-buddy/internal/agent/tools"
	"study-buddy/internal/app"
	pkgerrors "study-buddy/pkg/errors"
	"study-buddy/pkg/metrics"
)

// Handler HTTP 处理器，按 session_id 维护会话状态
type Handler struct {
	bootstrap *app.Bootstrap

	mu       sync.RWMutex
	sessions map[string]*session.Context
}

// NewHandler 创建 HTTP 处理器
func NewHandler(bootstrap *app.Bootstrap) *Handler {
	return &Handler{
		bootstrap: bootstrap,
		sessions:  make(map[string]*session.Context),
	}
}

// ChatRequest 对话请求
type ChatRequest struct {
	SessionID    string `json:"session_id"`
	Message      string `json:"message"`
	ShowThinking bool   `json:"show_thinking"`
}

// Health 健康检查
func (h *Handler) Health(ctx context.Context, c *hertzapp.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"service":   "study-buddy",
	})
}

// Metrics 暴露 Prometheus 指标
func (h *Handler) Metrics(ctx context.Context, c *hertzapp.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}
	c.Data(consts.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

// Chat 处理一轮对话：规划、执行、综合
func (h *Handler) Chat(ctx context.Context, c *hertzapp.RequestContext) {
	var req ChatRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "message is required"})
		return
	}

	sess := h.getOrCreateSession(req.SessionID)
	if req.ShowThinking || (h.bootstrap.Config != nil && h.bootstrap.Config.Agent.ShowThinking) {
		sess.ShowThinking = true
	}

	recent := h.bootstrap.Dispatcher.Recent(sess.ID, 10)

	var plan *planner.Plan
	if h.bootstrap.Config.AgentEnabled() {
		plan = h.bootstrap.Planner.Plan(req.Message, recent, sess.DocActive)
	} else {
		// Agent 关闭时退化为单次讲解
		plan = &planner.Plan{
			Steps:      []planner.Step{{Tool: tools.Explain, InputQuery: req.Message}},
			Complexity: planner.Simple,
			Intents:    []planner.Intent{planner.IntentExplain},
			TopK:       h.bootstrap.Registry.TopK(),
		}
	}

	logger := h.bootstrap.Logger.WithSession(sess.ID)
	result, err := h.bootstrap.Dispatcher.Run(ctx, sess, plan, req.Message)
	if err != nil {
		logger.Error("对话处理failed", "error", err)
		status := consts.StatusInternalServerError
		if pkgerrors.Is(err, pkgerrors.ErrRateLimit) {
			status = consts.StatusTooManyRequests
		}
		c.JSON(status, utils.H{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
		return
	}

	logger.Info("对话完成", "steps", len(plan.Steps), "complexity", string(plan.Complexity))
	c.JSON(consts.StatusOK, utils.H{
		"session_id":   sess.ID,
		"answer":       result.Answer,
		"suggestion":   result.Suggestion,
		"tool_results": result.ToolResults,
		"thinking":     result.Thinking,
	})
}

// UploadDocument 上传并导入学习材料（PDF 或纯文本）
func (h *Handler) UploadDocument(ctx context.Context, c *hertzapp.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "cannot read uploaded file"})
		return
	}

	name := fileHeader.Filename
	var result *app.IngestResult
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		result, err = h.bootstrap.Documents.IngestPDF(ctx, name, data)
	} else {
		result, err = h.bootstrap.Documents.IngestText(ctx, name, string(data))
	}
	if err != nil {
		h.bootstrap.Logger.Error("文档导入failed", "name", name, "error", err)
		status := consts.StatusInternalServerError
		if pkgerrors.Is(err, pkgerrors.ErrInvalidArg) {
			status = consts.StatusBadRequest
		}
		c.JSON(status, utils.H{"error": err.Error()})
		return
	}

	sess := h.getOrCreateSession(string(c.FormValue("session_id")))
	sess.SetDocument(name)

	c.JSON(consts.StatusOK, utils.H{
		"session_id": sess.ID,
		"result":     result,
	})
}

// SessionSummary 会话学习统计
func (h *Handler) SessionSummary(ctx context.Context, c *hertzapp.RequestContext) {
	sess, ok := h.lookupSession(c.Param("id"))
	if !ok {
		c.JSON(consts.StatusNotFound, utils.H{"error": "session not found"})
		return
	}
	stats := sess.Snapshot()
	topics := make([]string, 0, len(stats.Topics))
	for topic := range stats.Topics {
		topics = append(topics, topic)
	}
	c.JSON(consts.StatusOK, utils.H{
		"session_id":   sess.ID,
		"summary":      sess.Summary(),
		"interactions": stats.Interactions,
		"tool_usage":   stats.ToolUsage,
		"topics":       topics,
		"document":     sess.DocName,
	})
}

// SessionHistory 最近对话历史
func (h *Handler) SessionHistory(ctx context.Context, c *hertzapp.RequestContext) {
	sess, ok := h.lookupSession(c.Param("id"))
	if !ok {
		c.JSON(consts.StatusNotFound, utils.H{"error": "session not found"})
		return
	}
	turns := h.bootstrap.Dispatcher.Recent(sess.ID, 10)
	c.JSON(consts.StatusOK, utils.H{
		"session_id": sess.ID,
		"turns":      turns,
	})
}

func (h *Handler) getOrCreateSession(id string) *session.Context {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id != "" {
		if sess, ok := h.sessions[id]; ok {
			return sess
		}
	}
	sess := session.New(id)
	h.sessions[sess.ID] = sess
	return sess
}

func (h *Handler) lookupSession(id string) (*session.Context, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sess, ok := h.sessions[id]
	return sess, ok
}
