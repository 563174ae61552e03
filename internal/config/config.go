package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir       string `json:"data_dir"`
	LogLevel      string `json:"log_level"`
	MaxConcurrent int    `json:"max_concurrent"`
	HTTPAddr      string `json:"http_addr"`
	LLM           struct {
		Provider         string  `json:"provider"`
		BaseURL          string  `json:"base_url"`
		APIKey           string  `json:"api_key"`
		Model            string  `json:"model"`
		MaxTokens        int     `json:"max_tokens"`
		Temperature      float32 `json:"temperature"`
		MaxContextTokens int     `json:"max_context_tokens"`
		OutputReserve    int     `json:"output_reserve"`
	} `json:"llm"`
	Gemini struct {
		APIKey string `json:"api_key"`
		Model  string `json:"model"`
	} `json:"gemini"`
	Calendar struct {
		// Mode selects "remote" (HTTP facade at BaseURL) or "local"
		// (Google API in-process).
		Mode            string `json:"mode"`
		BaseURL         string `json:"base_url"`
		CredentialsFile string `json:"credentials_file"`
		TokenFile       string `json:"token_file"`
		CalendarID      string `json:"calendar_id"`
	} `json:"calendar"`
	Telegram struct {
		Token string `json:"token"`
	} `json:"telegram"`
}

func Load(path string) (*Config, error) {
	// A .env in the working directory feeds the env overrides below.
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:       filepath.Join(os.Getenv("HOME"), ".slotbot"),
		MaxConcurrent: 2,
	}
	cfg.LogLevel = "info"
	cfg.HTTPAddr = ":8080"
	cfg.LLM.Provider = "openai"
	cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	cfg.LLM.Model = "llama-3.3-70b-versatile"
	cfg.LLM.MaxTokens = 2000
	cfg.LLM.Temperature = 0.7
	cfg.LLM.MaxContextTokens = 128000
	cfg.LLM.OutputReserve = 4096
	cfg.Gemini.Model = "gemini-2.5-flash"
	cfg.Calendar.Mode = "local"
	cfg.Calendar.BaseURL = "http://localhost:8000"
	cfg.Calendar.CredentialsFile = "credentials.json"
	cfg.Calendar.TokenFile = "token.json"
	cfg.Calendar.CalendarID = "primary"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if apiKey := os.Getenv("GROQ_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("GROQ_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.Gemini.APIKey = apiKey
	}
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}
	if backend := os.Getenv("CALENDAR_BASE_URL"); backend != "" {
		cfg.Calendar.Mode = "remote"
		cfg.Calendar.BaseURL = backend
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}

// Save writes the config to the given path atomically.
func Save(path string, cfg *Config) error {
	return writeDefaults(path, cfg)
}

// ListValues returns the config file's contents as a flat dot-keyed map
// with secrets masked.
func ListValues(path string) (map[string]any, error) {
	nested, err := readMap(path)
	if err != nil {
		return nil, err
	}
	return MaskSecrets(Flatten(nested)), nil
}

// GetValue returns a single value by dot-separated key. Secrets come back
// masked.
func GetValue(path, key string) (any, error) {
	nested, err := readMap(path)
	if err != nil {
		return nil, err
	}
	flat := MaskSecrets(Flatten(nested))
	v, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown key: %s", key)
	}
	return v, nil
}

// SetValue writes a single value by dot-separated key and persists the file.
func SetValue(path, key string, value any) error {
	nested, err := readMap(path)
	if err != nil {
		return err
	}
	flat := Flatten(nested)
	flat[key] = value

	data, err := json.MarshalIndent(Unflatten(flat), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

func readMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var nested map[string]any
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return nested, nil
}
