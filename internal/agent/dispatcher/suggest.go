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
	"fmt"
	"strings"

	"study-buddy/internal/agent/planner"
	"study-buddy/internal/agent/session"
)

const maxSuggestions = 3

// SuggestionEngine 确定性的主动建议引擎。规则按优先级排列，
// 最多产出 maxSuggestions 条，无 LLM 调用。
type SuggestionEngine struct{}

// NewSuggestionEngine 创建建议引擎
func NewSuggestionEngine() *SuggestionEngine {
	return &SuggestionEngine{}
}

// Suggest 根据本轮意图与会话状态产出下一步建议，无规则命中时返回空串
func (e *SuggestionEngine) Suggest(sess *session.Context, plan *planner.Plan, userText string) string {
	topic := topicOf(userText)
	stats := sess.Snapshot()

	var suggestions []string
	add := func(s string) {
		if len(suggestions) < maxSuggestions {
			suggestions = append(suggestions, s)
		}
	}

	for _, intent := range plan.Intents {
		switch intent {
		case planner.IntentQuiz:
			add("Want me to explain any of the questions in more detail?")
		case planner.IntentExplain:
			add(fmt.Sprintf("Want a quick quiz to check your understanding of %q?", topic))
		case planner.IntentSummarize:
			add("Should I quiz you on the key points from this summary?")
		case planner.IntentSolve:
			add("Want some practice questions on similar problems?")
		case planner.IntentEvaluate:
			add("Should I explain the parts you found difficult?")
		}
	}

	// 备考类请求提示系统化复习
	if plan.Complexity == planner.Complex {
		add("I can build a practice quiz covering everything we discussed so far.")
	}

	// 上传了文档但还没用过摘要时，提示从总览入手
	if sess.DocActive && stats.ToolUsage["summarize"] == 0 {
		add(fmt.Sprintf("I can summarize %s to give you an overview first.", sess.DocName))
	}

	// 长会话提示收尾复盘
	if stats.Interactions >= 5 {
		add("You have covered a lot. Want a review quiz over today's topics?")
	}

	return strings.Join(suggestions, "\n")
}
