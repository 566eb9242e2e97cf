package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 API 注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		ToolInvocations, ToolDuration,
		SynthesisTotal, SuggestionTotal,
		LLMTokensTotal, RetrievedChunks,
	)
}

// ToolInvocations 工具调用总数（含失败，按 tool/status）
var ToolInvocations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "buddy_tool_invocations_total",
		Help: "工具调用总数（按工具与状态）",
	},
	[]string{"tool", "status"}, // ok | error
)

// ToolDuration 工具调用耗时（秒）
var ToolDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "buddy_tool_duration_seconds",
		Help:    "工具调用耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"tool"},
)

// SynthesisTotal 综合回答生成次数（按结果）
var SynthesisTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "buddy_synthesis_total",
		Help: "综合回答生成次数",
	},
	[]string{"status"}, // ok | error | skipped
)

// SuggestionTotal 主动建议生成次数
var SuggestionTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "buddy_suggestion_total",
		Help: "主动建议生成次数",
	},
)

// LLMTokensTotal LLM 调用 token 数（粗估）
var LLMTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "buddy_llm_tokens_total",
		Help: "LLM 调用 token 总数",
	},
	[]string{"provider", "direction"}, // input | output
)

// RetrievedChunks 每次检索返回的切片数
var RetrievedChunks = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "buddy_retrieved_chunks",
		Help:    "每次检索返回的切片数",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	},
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 路由复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
