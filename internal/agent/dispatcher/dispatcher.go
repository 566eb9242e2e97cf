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

package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"study-buddy/internal/agent/memory"
	"study-buddy/internal/agent/planner"
	"study-buddy/internal/agent/session"
	"study-buddy/internal/agent/tools"
	"study-buddy/internal/model/llm"
	"study-buddy/pkg/metrics"
	"study-buddy/pkg/utils"
)

// ToolResult 单步执行结果
type ToolResult struct {
	Tool     tools.Tool    `json:"tool"`
	Input    string        `json:"input"`
	Output   string        `json:"output,omitempty"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Result 一次完整请求的结果
type Result struct {
	Answer      string       `json:"answer"`
	Suggestion  string       `json:"suggestion,omitempty"`
	ToolResults []ToolResult `json:"tool_results"`
	Thinking    []string     `json:"thinking,omitempty"`
}

// Dispatcher 顺序执行计划中的步骤，综合产出最终回答
type Dispatcher struct {
	registry  *tools.Registry
	llm       llm.Client
	shortTerm memory.ShortTermMemory
	longTerm  memory.TurnStore // 可选
	suggester *SuggestionEngine
	logger    *slog.Logger
}

// Config Dispatcher 构造参数
type Config struct {
	Registry  *tools.Registry
	LLM       llm.Client
	ShortTerm memory.ShortTermMemory
	LongTerm  memory.TurnStore
	Logger    *slog.Logger
}

// New 创建 Dispatcher
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Registry == nil || cfg.LLM == nil {
		return nil, fmt.Errorf("dispatcher requires registry and llm client")
	}
	shortTerm := cfg.ShortTerm
	if shortTerm == nil {
		shortTerm = memory.NewShortTerm(0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry:  cfg.Registry,
		llm:       cfg.LLM,
		shortTerm: shortTerm,
		longTerm:  cfg.LongTerm,
		suggester: NewSuggestionEngine(),
		logger:    logger,
	}, nil
}

// Run 顺序执行计划。多步计划中的单步失败不终止执行，失败输出不参与综合；
// 单步计划失败则整个请求失败。
func (d *Dispatcher) Run(ctx context.Context, sess *session.Context, plan *planner.Plan, userText string) (*Result, error) {
	if plan == nil || len(plan.Steps) == 0 {
		return nil, fmt.Errorf("empty plan")
	}

	thinking := make([]string, len(plan.Thinking))
	copy(thinking, plan.Thinking)
	if prev, ok := d.shortTerm.RecallSimilar(sess.ID, userText); ok {
		thinking = append(thinking, fmt.Sprintf("related to earlier question: %s", utils.Truncate(prev.Text, 60)))
	}

	d.recordTurn(ctx, sess.ID, memory.Turn{
		Role:      "user",
		Text:      userText,
		Timestamp: time.Now(),
	})

	results := make([]ToolResult, 0, len(plan.Steps))
	outputs := make([]string, len(plan.Steps))

	for i, step := range plan.Steps {
		ctxBlock := ""
		if step.DependsOn != nil {
			dep := *step.DependsOn
			if dep >= 0 && dep < i && results[dep].Success {
				ctxBlock = outputs[dep]
			}
		}

		var opts []tools.InvokeOption
		if step.Tool == tools.RetrieveContext {
			opts = append(opts, tools.WithTopK(plan.TopK))
		}

		start := time.Now()
		output, err := d.registry.Invoke(ctx, step.Tool, step.InputQuery, ctxBlock, opts...)
		elapsed := time.Since(start)

		sess.RecordToolUse(step.Tool.String())

		result := ToolResult{
			Tool:     step.Tool,
			Input:    step.InputQuery,
			Duration: elapsed,
		}
		if err != nil {
			result.Error = err.Error()
			thinking = append(thinking, fmt.Sprintf("step %d (%s) failed: %v", i+1, step.Tool, err))
			d.logger.Warn("tool step failed", "session", sess.ID, "tool", step.Tool.String(), "error", err)

			if len(plan.Steps) == 1 {
				sess.RecordInteraction(topicOf(userText))
				return nil, fmt.Errorf("tool %s: %w", step.Tool, err)
			}
		} else {
			result.Success = true
			result.Output = output
			outputs[i] = output
			thinking = append(thinking, fmt.Sprintf("step %d (%s) ok in %s", i+1, step.Tool, elapsed.Round(time.Millisecond)))
		}
		results = append(results, result)
	}

	answer, synthLine := d.synthesize(ctx, userText, plan, results, outputs)
	if synthLine != "" {
		thinking = append(thinking, synthLine)
	}

	suggestion := d.suggester.Suggest(sess, plan, userText)
	if suggestion != "" {
		metrics.SuggestionTotal.Inc()
	}

	sess.RecordInteraction(topicOf(userText))
	d.recordTurn(ctx, sess.ID, memory.Turn{
		Role:      "assistant",
		Text:      answer,
		Timestamp: time.Now(),
		ToolUsed:  lastSuccessfulTool(results),
	})

	res := &Result{
		Answer:      answer,
		Suggestion:  suggestion,
		ToolResults: results,
	}
	if sess.ShowThinking {
		res.Thinking = thinking
	}
	return res, nil
}

// synthesize 从成功的内容步骤产出最终回答。恰好一个成功输出时直接返回，
// 多个时做一次综合调用，综合失败时退化为拼接。
func (d *Dispatcher) synthesize(ctx context.Context, userText string, plan *planner.Plan, results []ToolResult, outputs []string) (string, string) {
	var contents []string
	for i, result := range results {
		if result.Success && result.Tool != tools.RetrieveContext && outputs[i] != "" {
			contents = append(contents, outputs[i])
		}
	}

	switch len(contents) {
	case 0:
		metrics.SynthesisTotal.WithLabelValues("skipped").Inc()
		return "I wasn't able to complete that request. Please try rephrasing it.", "synthesis skipped: no successful outputs"
	case 1:
		metrics.SynthesisTotal.WithLabelValues("skipped").Inc()
		return contents[0], "synthesis skipped: single output"
	}

	prompt := fmt.Sprintf(`The student asked: %s

Several study tools produced the following results. Combine them into one
coherent, well-organized response. Keep all quiz questions and answers intact.

%s`, userText, strings.Join(contents, "\n\n---\n\n"))

	genOpts := llm.DefaultOptions()
	genOpts.System = tools.SystemPrompt
	answer, err := d.llm.GenerateWithContext(ctx, prompt, genOpts)
	if err != nil {
		metrics.SynthesisTotal.WithLabelValues("error").Inc()
		d.logger.Warn("synthesis failed, joining outputs", "error", err)
		return strings.Join(contents, "\n\n"), "synthesis failed, joined outputs"
	}
	metrics.SynthesisTotal.WithLabelValues("ok").Inc()
	return answer, fmt.Sprintf("synthesized %d outputs", len(contents))
}

func (d *Dispatcher) recordTurn(ctx context.Context, sessionID string, turn memory.Turn) {
	d.shortTerm.Record(sessionID, turn)
	if d.longTerm != nil {
		if err := d.longTerm.Append(ctx, sessionID, turn); err != nil {
			d.logger.Warn("long-term memory append failed", "session", sessionID, "error", err)
		}
	}
}

// Recent 返回该会话最近 n 轮对话
func (d *Dispatcher) Recent(sessionID string, n int) []memory.Turn {
	return d.shortTerm.Recent(sessionID, n)
}

func lastSuccessfulTool(results []ToolResult) string {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Success {
			return results[i].Tool.String()
		}
	}
	return ""
}

func topicOf(userText string) string {
	return utils.Truncate(strings.TrimSpace(userText), 60)
}
