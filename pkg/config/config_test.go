package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
  session_ttl: 10m
qdrant:
  addr: "qdrant.internal:6334"
  collection: "tools_v2"
llm:
  provider: "ollama"
  chat_model: "llama3.1:8b"
retrieval:
  top_k: 6
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.SessionTTL.Std() != 10*time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Qdrant.Addr != "qdrant.internal:6334" || cfg.Qdrant.Collection != "tools_v2" {
		t.Errorf("qdrant = %+v", cfg.Qdrant)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.ChatModel != "llama3.1:8b" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Retrieval.TopK != 6 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	// untouched fields keep their defaults
	if cfg.Server.Host != "0.0.0.0" || cfg.Retrieval.HistoryWindow != 8 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Qdrant.Collection != "ai_tools" || cfg.Retrieval.TopK != 4 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADVISOR_QDRANT_ADDR", "env-addr:6334")
	t.Setenv("ADVISOR_PORT", "7777")
	t.Setenv("ADVISOR_LLM_PROVIDER", "ollama")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Qdrant.Addr != "env-addr:6334" {
		t.Errorf("addr = %q", cfg.Qdrant.Addr)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("provider = %q", cfg.LLM.Provider)
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("ADVISOR_API_KEY", "")

	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("sk-secret\n"), 0600); err != nil {
		t.Fatal(err)
	}

	llm := LLMConfig{APIKeyFile: keyFile}
	key, err := llm.APIKey()
	if err != nil {
		t.Fatalf("api key: %v", err)
	}
	if key != "sk-secret" {
		t.Errorf("key = %q, want trimmed file contents", key)
	}

	t.Setenv("ADVISOR_API_KEY", "sk-env")
	key, err = llm.APIKey()
	if err != nil {
		t.Fatalf("api key: %v", err)
	}
	if key != "sk-env" {
		t.Errorf("key = %q, env must win", key)
	}

	if key, err := (LLMConfig{}).APIKey(); err != nil || key != "sk-env" {
		t.Errorf("no file configured: key = %q, err = %v", key, err)
	}
}
