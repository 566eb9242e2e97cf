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

// Tool 学习工具的封闭枚举。新增工具必须同时扩展 Registry.Invoke 的 switch。
type Tool string

const (
	Explain         Tool = "explain"
	Summarize       Tool = "summarize"
	GenerateQuiz    Tool = "generate-quiz"
	SolveQuestion   Tool = "solve-question"
	EvaluateAnswer  Tool = "evaluate-answer"
	RetrieveContext Tool = "retrieve-context"
)

// All 返回全部工具
func All() []Tool {
	return []Tool{Explain, Summarize, GenerateQuiz, SolveQuestion, EvaluateAnswer, RetrieveContext}
}

// Valid 判断是否为已知工具
func (t Tool) Valid() bool {
	switch t {
	case Explain, Summarize, GenerateQuiz, SolveQuestion, EvaluateAnswer, RetrieveContext:
		return true
	}
	return false
}

// String 实现 fmt.Stringer
func (t Tool) String() string {
	return string(t)
}

// NeedsLLM 判断该工具是否调用 LLM（RetrieveContext 只访问向量库）
func (t Tool) NeedsLLM() bool {
	return t != RetrieveContext
}
