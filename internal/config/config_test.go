package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("default base url = %q", cfg.LLM.BaseURL)
	}
	if cfg.MaxConcurrent != 2 {
		t.Errorf("default max_concurrent = %d", cfg.MaxConcurrent)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults not written: %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.LLM.APIKey = "from-file"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GROQ_API_KEY", "from-env")
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.APIKey != "from-env" {
		t.Errorf("api key = %q, env should win", cfg.LLM.APIKey)
	}
}

func TestGetSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}

	if err := SetValue(path, "llm.model", "test-model"); err != nil {
		t.Fatal(err)
	}
	v, err := GetValue(path, "llm.model")
	if err != nil {
		t.Fatal(err)
	}
	if v != "test-model" {
		t.Errorf("llm.model = %v", v)
	}

	if _, err := GetValue(path, "no.such.key"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestListValuesMasksSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}
	if err := SetValue(path, "llm.api_key", "sk-super-secret-1234"); err != nil {
		t.Fatal(err)
	}

	values, err := ListValues(path)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := values["llm.api_key"].(string)
	if !ok {
		t.Fatalf("llm.api_key missing: %v", values)
	}
	if got != "***1234" {
		t.Errorf("masked value = %q", got)
	}
	if strings.Contains(got, "secret") {
		t.Error("secret leaked")
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	nested := map[string]any{
		"llm": map[string]any{
			"provider": "openai",
			"model":    "m",
		},
		"log_level": "info",
	}

	flat := Flatten(nested)
	if flat["llm.provider"] != "openai" || flat["log_level"] != "info" {
		t.Errorf("flat = %v", flat)
	}

	back := Unflatten(flat)
	inner, ok := back["llm"].(map[string]any)
	if !ok || inner["model"] != "m" {
		t.Errorf("round trip = %v", back)
	}
}

func TestIsSecretKey(t *testing.T) {
	if !IsSecretKey("telegram.token") {
		t.Error("telegram.token should be secret")
	}
	if IsSecretKey("llm.model") {
		t.Error("llm.model is not secret")
	}
}
