package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
api:
  port: 8080
agent:
  show_thinking: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("port: %d", cfg.API.Port)
	}
	if !cfg.Agent.ShowThinking {
		t.Error("show_thinking should be true")
	}
	if cfg.RAG.ChunkSize != 1500 || cfg.RAG.ChunkOverlap != 150 {
		t.Errorf("chunk defaults: %d/%d", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.TopK != 3 || cfg.RAG.TopKMax != 5 {
		t.Errorf("top_k defaults: %d/%d", cfg.RAG.TopK, cfg.RAG.TopKMax)
	}
	if cfg.Agent.MaxTurns != 10 {
		t.Errorf("max_turns default: %d", cfg.Agent.MaxTurns)
	}
	if cfg.Secrets.APIKeyName != "GROQ_API_KEY" {
		t.Errorf("api_key_name default: %s", cfg.Secrets.APIKeyName)
	}
	if !cfg.AgentEnabled() {
		t.Error("agent should default to enabled")
	}
}

func TestLoadConfig_EnvAPIKey(t *testing.T) {
	t.Setenv("TEST_BUDDY_KEY", "sk-test")
	path := writeConfig(t, `
model:
  llm:
    providers:
      groq:
        api_key: ${TEST_BUDDY_KEY}
        model: llama-3.3-70b-versatile
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	p, ok := cfg.Model.LLM.Providers["groq"]
	if !ok {
		t.Fatal("groq provider missing")
	}
	if p.APIKey != "sk-test" {
		t.Errorf("api_key not replaced: %q", p.APIKey)
	}
}

func TestLoadConfig_AgentDisabled(t *testing.T) {
	path := writeConfig(t, `
agent:
  enabled: false
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AgentEnabled() {
		t.Error("agent should be disabled")
	}
}
