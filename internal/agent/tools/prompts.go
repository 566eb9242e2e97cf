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

package tools

import (
	"fmt"
	"strings"
)

// SystemPrompt 所有 LLM 工具共用的系统提示词
const SystemPrompt = "You are Study Buddy, a helpful AI tutor."

// SectionSeparator 检索切片拼接分隔符
const SectionSeparator = "\n\n--- Retrieved Section ---\n\n"

const explainTemplate = `Explain the following concept to a student in clear, simple terms.
Use an analogy or example where it helps understanding.

Concept: %s%s

Keep the explanation focused and end with a one-sentence takeaway.`

const summarizeTemplate = `Summarize the following material for a student who is reviewing it.
Produce a short overview followed by the key points as a bullet list.

Material:
%s%s`

const quizTemplate = `Create a short practice quiz for a student on the topic below.
Write 3 to 5 questions, mixing multiple choice and short answer.
Put all answers at the end under an "Answers" heading.

Topic: %s%s`

const solveTemplate = `Solve the following problem step by step.
Show each step of the working, then state the final answer clearly.

Problem: %s%s`

const evaluateTemplate = `A student has given an answer that needs feedback.
Evaluate whether it is correct, point out any mistakes, and suggest how to improve it.
Be encouraging but accurate.

Student's answer: %s%s`

// buildPrompt 按工具渲染提示词，ctxBlock 非空时附加检索材料
func buildPrompt(tool Tool, query, ctxBlock string) string {
	contextPart := ""
	if strings.TrimSpace(ctxBlock) != "" {
		contextPart = "\n\nUse this material from the student's document:\n" + ctxBlock
	}

	switch tool {
	case Explain:
		return fmt.Sprintf(explainTemplate, query, contextPart)
	case Summarize:
		source := query
		if strings.TrimSpace(ctxBlock) != "" {
			// 摘要对象是材料本身，query 作为方向提示
			source = ctxBlock
			contextPart = ""
			if query != "" {
				contextPart = "\n\nFocus on: " + query
			}
		}
		return fmt.Sprintf(summarizeTemplate, source, contextPart)
	case GenerateQuiz:
		return fmt.Sprintf(quizTemplate, query, contextPart)
	case SolveQuestion:
		return fmt.Sprintf(solveTemplate, query, contextPart)
	case EvaluateAnswer:
		return fmt.Sprintf(evaluateTemplate, query, contextPart)
	default:
		return query
	}
}
