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

package planner

import (
	"fmt"
	"strings"

	"study-buddy/internal/agent/memory"
	"study-buddy/internal/agent/tools"
)

// Complexity 请求复杂度
type Complexity string

const (
	Simple   Complexity = "simple"
	Moderate Complexity = "moderate"
	Complex  Complexity = "complex"
)

// Intent 识别出的学习意图
type Intent string

const (
	IntentExplain   Intent = "explain"
	IntentSummarize Intent = "summarize"
	IntentQuiz      Intent = "quiz"
	IntentSolve     Intent = "solve"
	IntentEvaluate  Intent = "evaluate"
)

// Step 执行计划中的一步
type Step struct {
	Tool       tools.Tool
	InputQuery string
	DependsOn  *int // 前置步骤下标，其输出作为材料传入；nil 表示无依赖
}

// Plan 规则规划器产出的执行计划，至少包含一步
type Plan struct {
	Steps      []Step
	Complexity Complexity
	Intents    []Intent
	TopK       int      // 检索条数，复杂请求放大
	Thinking   []string // 规划轨迹，show_thinking 时透出
}

// 复杂度关键词。复杂：备考类的多轮任务；中等：并列或连续动作。
var complexKeywords = []string{
	"exam", "test preparation", "prepare for", "study plan",
	"help me learn", "master", "comprehensive", "everything about",
}

var moderateKeywords = []string{
	" and ", " then ", "also", "after that", "quiz me", "test me", "check my",
}

// 意图关键词，按声明顺序匹配，决定步骤顺序
var intentKeywords = []struct {
	intent   Intent
	tool     tools.Tool
	keywords []string
}{
	{IntentExplain, tools.Explain, []string{"explain", "what is", "how does", "help me understand", "clarify"}},
	{IntentSummarize, tools.Summarize, []string{"summarize", "summary", "tldr", "main points", "key points", "condense"}},
	{IntentQuiz, tools.GenerateQuiz, []string{"quiz", "test", "practice", "questions", "mcq", "exam prep"}},
	{IntentSolve, tools.SolveQuestion, []string{"solve", "answer", "solution", "work out", "calculate"}},
	{IntentEvaluate, tools.EvaluateAnswer, []string{"check", "evaluate", "grade", "feedback", "review my answer"}},
}

const (
	defaultTopK = 3
	complexTopK = 5
)

// RulePlanner 关键词驱动的规则规划器，无 LLM 调用，确定性输出
type RulePlanner struct{}

// NewRulePlanner 创建规则规划器
func NewRulePlanner() *RulePlanner {
	return &RulePlanner{}
}

// Plan 将用户输入转为执行计划。recent 供后续扩展话题延续，docActive
// 为 true 时在首位插入检索步骤。计划永不为空：复杂请求无意图命中时
// 套用摘要加测验的复习模板，其余情况默认 explain。
func (p *RulePlanner) Plan(userText string, recent []memory.Turn, docActive bool) *Plan {
	lower := strings.ToLower(userText)

	complexity := classifyComplexity(lower)
	intents, steps := matchIntents(lower, userText)

	// 备考类请求没有明确意图时套用固定的复习模板：先摘要再测验
	usedStudyTemplate := false
	if complexity == Complex && len(intents) == 0 {
		usedStudyTemplate = true
		intents = []Intent{IntentSummarize, IntentQuiz}
		steps = []Step{
			{Tool: tools.Summarize, InputQuery: userText},
			{Tool: tools.GenerateQuiz, InputQuery: userText},
		}
	}

	plan := &Plan{
		Complexity: complexity,
		Intents:    intents,
		TopK:       defaultTopK,
	}
	if complexity == Complex {
		plan.TopK = complexTopK
	}

	plan.Thinking = append(plan.Thinking, fmt.Sprintf("complexity: %s", complexity))
	if usedStudyTemplate {
		plan.Thinking = append(plan.Thinking, "complex request: applying summarize + quiz study template")
	} else if len(intents) == 0 {
		plan.Thinking = append(plan.Thinking, "intent: none matched, defaulting to explain")
	} else {
		names := make([]string, len(intents))
		for i, intent := range intents {
			names[i] = string(intent)
		}
		plan.Thinking = append(plan.Thinking, fmt.Sprintf("intents: %s", strings.Join(names, ", ")))
	}

	// 无命中时兜底为讲解
	if len(steps) == 0 {
		plan.Intents = []Intent{IntentExplain}
		steps = []Step{{Tool: tools.Explain, InputQuery: userText}}
	}

	// 有活跃文档时先检索，再让每个步骤引用检索结果
	if docActive {
		retrieveIdx := 0
		withRetrieval := make([]Step, 0, len(steps)+1)
		withRetrieval = append(withRetrieval, Step{
			Tool:       tools.RetrieveContext,
			InputQuery: userText,
		})
		for _, step := range steps {
			step.DependsOn = &retrieveIdx
			withRetrieval = append(withRetrieval, step)
		}
		steps = withRetrieval
		plan.Thinking = append(plan.Thinking, fmt.Sprintf("document active: retrieving top %d sections first", plan.TopK))
	}

	plan.Steps = steps
	for i, step := range plan.Steps {
		plan.Thinking = append(plan.Thinking, fmt.Sprintf("step %d: %s", i+1, step.Tool))
	}
	return plan
}

// classifyComplexity 复杂关键词优先于中等关键词
func classifyComplexity(lower string) Complexity {
	for _, kw := range complexKeywords {
		if strings.Contains(lower, kw) {
			return Complex
		}
	}
	for _, kw := range moderateKeywords {
		if strings.Contains(lower, kw) {
			return Moderate
		}
	}
	return Simple
}

// matchIntents 按声明顺序收集所有命中的意图，每个意图一个步骤
func matchIntents(lower, userText string) ([]Intent, []Step) {
	var intents []Intent
	var steps []Step
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				intents = append(intents, entry.intent)
				steps = append(steps, Step{Tool: entry.tool, InputQuery: userText})
				break
			}
		}
	}
	return intents, steps
}
