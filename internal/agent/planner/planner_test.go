package planner

import (
	"strings"
	"testing"

	"study-buddy/internal/agent/tools"
)

func TestPlanNeverEmpty(t *testing.T) {
	p := NewRulePlanner()

	inputs := []string{
		"",
		"hello",
		"tell me about photosynthesis",
		"asdf qwer",
	}
	for _, input := range inputs {
		plan := p.Plan(input, nil, false)
		if len(plan.Steps) == 0 {
			t.Errorf("Plan(%q) produced empty plan", input)
		}
		if plan.Steps[0].Tool != tools.Explain {
			t.Errorf("Plan(%q) default tool = %s, want explain", input, plan.Steps[0].Tool)
		}
	}
}

func TestPlanQuizRequest(t *testing.T) {
	p := NewRulePlanner()

	plan := p.Plan("Quiz me on binary search", nil, false)
	if len(plan.Steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(plan.Steps))
	}
	if plan.Steps[0].Tool != tools.GenerateQuiz {
		t.Errorf("tool = %s, want generate-quiz", plan.Steps[0].Tool)
	}
	if plan.Steps[0].DependsOn != nil {
		t.Error("step without document should have no dependency")
	}
	// "quiz me" 属于中等复杂度关键词
	if plan.Complexity != Moderate {
		t.Errorf("complexity = %s, want moderate", plan.Complexity)
	}
}

func TestPlanSummarizeAndQuizWithDocument(t *testing.T) {
	p := NewRulePlanner()

	plan := p.Plan("Summarize Chapter 3 and quiz me", nil, true)
	want := []tools.Tool{tools.RetrieveContext, tools.Summarize, tools.GenerateQuiz}
	if len(plan.Steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(plan.Steps), len(want))
	}
	for i, tool := range want {
		if plan.Steps[i].Tool != tool {
			t.Errorf("step %d = %s, want %s", i, plan.Steps[i].Tool, tool)
		}
	}
	for i := 1; i < len(plan.Steps); i++ {
		if plan.Steps[i].DependsOn == nil || *plan.Steps[i].DependsOn != 0 {
			t.Errorf("step %d should depend on retrieval step", i)
		}
	}
}

func TestPlanComplexityClasses(t *testing.T) {
	p := NewRulePlanner()

	cases := []struct {
		input string
		want  Complexity
	}{
		{"What is a binary tree", Simple},
		{"Explain recursion and give examples", Moderate},
		{"Help me prepare for the final exam", Complex},
		{"I want a comprehensive study plan for calculus", Complex},
	}
	for _, c := range cases {
		plan := p.Plan(c.input, nil, false)
		if plan.Complexity != c.want {
			t.Errorf("Plan(%q) complexity = %s, want %s", c.input, plan.Complexity, c.want)
		}
	}
}

func TestPlanTopKScalesWithComplexity(t *testing.T) {
	p := NewRulePlanner()

	if plan := p.Plan("What is recursion", nil, true); plan.TopK != 3 {
		t.Errorf("simple TopK = %d, want 3", plan.TopK)
	}
	if plan := p.Plan("Help me prepare for the exam on sorting", nil, true); plan.TopK != 5 {
		t.Errorf("complex TopK = %d, want 5", plan.TopK)
	}
}

func TestPlanComplexStudyTemplate(t *testing.T) {
	p := NewRulePlanner()

	// 无明确意图的备考请求套用摘要+测验模板
	plan := p.Plan("Help me prepare for the final", nil, true)
	if plan.Complexity != Complex {
		t.Fatalf("complexity = %s, want complex", plan.Complexity)
	}
	want := []tools.Tool{tools.RetrieveContext, tools.Summarize, tools.GenerateQuiz}
	if len(plan.Steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(plan.Steps), len(want))
	}
	for i, tool := range want {
		if plan.Steps[i].Tool != tool {
			t.Errorf("step %d = %s, want %s", i, plan.Steps[i].Tool, tool)
		}
	}

	// 明确点名的意图优先于模板
	plan = p.Plan("Help me prepare for the exam: explain recursion", nil, false)
	if plan.Steps[0].Tool != tools.Explain {
		t.Errorf("explicit intent should win, got %s", plan.Steps[0].Tool)
	}
}

func TestPlanIntentDeclarationOrder(t *testing.T) {
	p := NewRulePlanner()

	// 文本顺序相反，步骤仍按意图声明顺序产出
	plan := p.Plan("Check my answer and explain why it is wrong", nil, false)
	if len(plan.Steps) < 2 {
		t.Fatalf("got %d steps, want >= 2", len(plan.Steps))
	}
	if plan.Steps[0].Tool != tools.Explain {
		t.Errorf("first step = %s, want explain", plan.Steps[0].Tool)
	}
	foundEvaluate := false
	for _, step := range plan.Steps {
		if step.Tool == tools.EvaluateAnswer {
			foundEvaluate = true
		}
	}
	if !foundEvaluate {
		t.Error("missing evaluate-answer step")
	}
}

func TestPlanThinkingTrace(t *testing.T) {
	p := NewRulePlanner()

	plan := p.Plan("Summarize Chapter 3 and quiz me", nil, true)
	if len(plan.Thinking) == 0 {
		t.Fatal("expected thinking trace")
	}
	joined := ""
	for _, line := range plan.Thinking {
		joined += line + "\n"
	}
	for _, want := range []string{"complexity", "intents", "step 1"} {
		if !strings.Contains(joined, want) {
			t.Errorf("thinking missing %q:\n%s", want, joined)
		}
	}
}
