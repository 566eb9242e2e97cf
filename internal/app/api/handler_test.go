package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-buddy/internal/agent/dispatcher"
	"study-buddy/internal/agent/memory"
	"study-buddy/internal/agent/planner"
	"study-buddy/internal/agent/tools"
	"study-buddy/internal/app"
	"study-buddy/internal/model/embedding"
	"study-buddy/internal/model/llm"
	"study-buddy/internal/pipeline/ingest"
	"study-buddy/internal/pipeline/query"
	"study-buddy/internal/splitter"
	"study-buddy/internal/storage/vector"
	"study-buddy/pkg/config"
	"study-buddy/pkg/log"
)

// echoLLM 测试桩，回显 prompt 首行
type echoLLM struct{}

func (e *echoLLM) Generate(prompt string, options llm.GenerateOptions) (string, error) {
	return e.GenerateWithContext(context.Background(), prompt, options)
}

func (e *echoLLM) GenerateWithContext(ctx context.Context, prompt string, options llm.GenerateOptions) (string, error) {
	line := prompt
	if i := strings.IndexByte(prompt, '\n'); i >= 0 {
		line = prompt[:i]
	}
	return "answer: " + line, nil
}

func (e *echoLLM) Chat(messages []llm.Message, options llm.GenerateOptions) (string, error) {
	return "", nil
}

func (e *echoLLM) ChatWithContext(ctx context.Context, messages []llm.Message, options llm.GenerateOptions) (string, error) {
	return "", nil
}

func (e *echoLLM) Model() string           { return "echo" }
func (e *echoLLM) Provider() string        { return "test" }
func (e *echoLLM) SetModel(model string)   {}
func (e *echoLLM) SetAPIKey(apiKey string) {}

func newTestApp(t *testing.T) *App {
	t.Helper()
	ctx := context.Background()

	embedder := embedding.NewEinoAdapter(embedding.NewHashEmbedder(64))
	store := vector.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &vector.Index{Name: "study", Dimension: 64}))

	indexer, err := ingest.NewMemoryIndexer(&ingest.MemoryIndexerConfig{
		VectorStore:       store,
		DefaultCollection: "study",
		Embedder:          embedder,
	})
	require.NoError(t, err)

	einoRetriever, err := query.NewMemoryRetriever(&query.MemoryRetrieverConfig{
		VectorStore:  store,
		DefaultIndex: "study",
		DefaultTopK:  3,
		Embedder:     embedder,
	})
	require.NoError(t, err)
	retriever := query.NewRetriever(einoRetriever)

	client := &echoLLM{}
	registry, err := tools.NewRegistry(tools.RegistryConfig{
		LLM:       client,
		Retriever: retriever,
		TopK:      3,
		TopKMax:   5,
	})
	require.NoError(t, err)

	disp, err := dispatcher.New(dispatcher.Config{
		Registry:  registry,
		LLM:       client,
		ShortTerm: memory.NewShortTerm(0),
	})
	require.NoError(t, err)

	logger, err := log.NewLogger(nil)
	require.NoError(t, err)

	bootstrap := &app.Bootstrap{
		Config:     &config.Config{},
		Logger:     logger,
		LLM:        client,
		Retriever:  retriever,
		Registry:   registry,
		Planner:    planner.NewRulePlanner(),
		Dispatcher: disp,
		Documents: app.NewDocumentService(app.DocumentServiceConfig{
			Indexer:  indexer,
			Splitter: splitter.NewEngine(),
		}),
		VectorStore: store,
	}

	a, err := NewApp(bootstrap)
	require.NoError(t, err)
	return a
}

func newTestEngine(t *testing.T) *server.Hertz {
	t.Helper()
	a := newTestApp(t)
	h := server.Default(server.WithHostPorts(":0"))
	a.registerRoutes(h)
	return h
}

func performJSON(t *testing.T, h *server.Hertz, method, path string, payload interface{}) *ut.ResponseRecorder {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	w := ut.PerformRequest(h.Engine, method, path,
		&ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
	return w
}

func TestHealth(t *testing.T) {
	h := newTestEngine(t)

	w := ut.PerformRequest(h.Engine, "GET", "/health", nil)
	resp := w.Result()
	assert.Equal(t, 200, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "ok")
}

func TestChatReturnsAnswerAndSession(t *testing.T) {
	h := newTestEngine(t)

	w := performJSON(t, h, "POST", "/api/v1/chat", map[string]interface{}{
		"message": "Quiz me on binary search",
	})
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var out struct {
		SessionID  string `json:"session_id"`
		Answer     string `json:"answer"`
		Suggestion string `json:"suggestion"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	assert.NotEmpty(t, out.SessionID)
	assert.NotEmpty(t, out.Answer)
	assert.NotEmpty(t, out.Suggestion)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	h := newTestEngine(t)

	w := performJSON(t, h, "POST", "/api/v1/chat", map[string]interface{}{
		"message": "   ",
	})
	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestChatThinkingOnRequest(t *testing.T) {
	h := newTestEngine(t)

	w := performJSON(t, h, "POST", "/api/v1/chat", map[string]interface{}{
		"message":       "Explain recursion",
		"show_thinking": true,
	})
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var out struct {
		Thinking []string `json:"thinking"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	assert.NotEmpty(t, out.Thinking)
}

func TestUploadDocumentAndChat(t *testing.T) {
	h := newTestEngine(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	content := strings.Repeat("Binary search halves the search space on every comparison. ", 10)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := ut.PerformRequest(h.Engine, "POST", "/api/v1/documents",
		&ut.Body{Body: bytes.NewReader(buf.Bytes()), Len: buf.Len()},
		ut.Header{Key: "Content-Type", Value: mw.FormDataContentType()})
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode(), "body: %s", resp.Body())

	var out struct {
		SessionID string `json:"session_id"`
		Result    struct {
			Chunks int `json:"chunks"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	assert.NotEmpty(t, out.SessionID)
	assert.Greater(t, out.Result.Chunks, 0)

	// 同一会话继续提问，应带检索步骤
	w = performJSON(t, h, "POST", "/api/v1/chat", map[string]interface{}{
		"session_id": out.SessionID,
		"message":    "Summarize the key points",
	})
	resp = w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var chat struct {
		ToolResults []struct {
			Tool string `json:"tool"`
		} `json:"tool_results"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &chat))
	require.NotEmpty(t, chat.ToolResults)
	assert.Equal(t, "retrieve-context", chat.ToolResults[0].Tool)
}

func TestUploadRequiresFile(t *testing.T) {
	h := newTestEngine(t)

	w := ut.PerformRequest(h.Engine, "POST", "/api/v1/documents", nil)
	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestSessionSummary(t *testing.T) {
	h := newTestEngine(t)

	w := ut.PerformRequest(h.Engine, "GET", "/api/v1/sessions/unknown/summary", nil)
	assert.Equal(t, 404, w.Result().StatusCode())

	w = performJSON(t, h, "POST", "/api/v1/chat", map[string]interface{}{
		"message": "Explain recursion",
	})
	var chat struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Result().Body(), &chat))

	w = ut.PerformRequest(h.Engine, "GET", "/api/v1/sessions/"+chat.SessionID+"/summary", nil)
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var out struct {
		Interactions int            `json:"interactions"`
		ToolUsage    map[string]int `json:"tool_usage"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	assert.Equal(t, 1, out.Interactions)
	assert.Equal(t, 1, out.ToolUsage["explain"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestEngine(t)

	// 先触发一次调用，保证指标非空
	performJSON(t, h, "POST", "/api/v1/chat", map[string]interface{}{
		"message": "Explain recursion",
	})

	w := ut.PerformRequest(h.Engine, "GET", "/metrics", nil)
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "buddy_tool_invocations_total")
}
