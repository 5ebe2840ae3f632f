package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// KnowledgeConfig locates the knowledge base sources and the persisted index artifacts.
type KnowledgeConfig struct {
	FAQPath            string   `yaml:"faq_path" validate:"required"`
	DocumentationPaths []string `yaml:"documentation_paths"`
	IndexPath          string   `yaml:"index_path" validate:"required"`
	DocumentsPath      string   `yaml:"documents_path" validate:"required"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"min=0"`
	BatchSize   int    `yaml:"batch_size" validate:"min=0"`
}

// GeminiEmbedderConfig holds configuration for the Gemini embedder.
type GeminiEmbedderConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type" validate:"oneof=tfidf openai gemini"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Gemini *GeminiEmbedderConfig `yaml:"gemini,omitempty"`
}

// ChunkerConfig configures how documentation is split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type" validate:"oneof=sentence"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk" validate:"min=1"`
	OverlapSentences  int    `yaml:"overlap_sentences" validate:"min=0,ltfield=SentencesPerChunk"`
}

// LLMConfig configures the hosted chat-completion provider.
type LLMConfig struct {
	Provider        string `yaml:"provider" validate:"oneof=gemini openai anthropic openrouter"`
	APIKeyEnv       string `yaml:"api_key_env" validate:"required"`
	BaseURL         string `yaml:"base_url,omitempty"`
	Model           string `yaml:"model" validate:"required"`
	MaxHistoryTurns int    `yaml:"max_history_turns" validate:"min=2"`
	TimeoutSecs     int    `yaml:"timeout_secs" validate:"min=0"`
}

// RetrievalConfig tunes the nearest-neighbour step.
type RetrievalConfig struct {
	TopK     int     `yaml:"top_k" validate:"min=1"`
	MinScore float32 `yaml:"min_score" validate:"gte=-1,lte=1"`
}

// AnalyticsConfig selects where interaction records are persisted.
type AnalyticsConfig struct {
	Backend string `yaml:"backend" validate:"oneof=json sqlite"`
	Path    string `yaml:"path" validate:"required"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	DataDir   string          `yaml:"data_dir"`
	LogLevel  string          `yaml:"log_level" validate:"oneof=debug info warn error"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Server    ServerConfig    `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return finalize(defaultConfig())
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &AppConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finalize(cfg)
}

func finalize(cfg *AppConfig) (*AppConfig, error) {
	applyEnvOverrides(cfg)
	applyConfigDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/supportbot/config.yaml.
// If neither exists, it writes defaults to ~/.config/supportbot/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	cfg, err = finalize(cfg)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks struct constraints and the cross-field rules the tags cannot express.
func Validate(cfg *AppConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.LLM.MaxHistoryTurns%2 != 0 {
		return fmt.Errorf("invalid config: llm.max_history_turns must be even, got %d", cfg.LLM.MaxHistoryTurns)
	}
	// The openrouter client always talks to openrouter.ai.
	if cfg.LLM.Provider == "openrouter" && cfg.LLM.BaseURL != "" {
		return fmt.Errorf("invalid config: llm.base_url is not supported for provider openrouter")
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "supportbot", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		DataDir:  "data",
		LogLevel: "info",
		Embedder: EmbedderConfig{Type: "tfidf"},
		Chunker:  ChunkerConfig{Type: "sentence", SentencesPerChunk: 5, OverlapSentences: 1},
		LLM: LLMConfig{
			Provider:        "gemini",
			APIKeyEnv:       "GEMINI_API_KEY",
			Model:           "gemini-2.0-flash",
			MaxHistoryTurns: 10,
			TimeoutSecs:     60,
		},
		Retrieval: RetrievalConfig{TopK: 3, MinScore: 0.5},
		Analytics: AnalyticsConfig{Backend: "json"},
		Server:    ServerConfig{Addr: "127.0.0.1:8501"},
	}
}

// applyEnvOverrides lets deployment environments retarget a config file without editing it.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("SUPPORTBOT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SUPPORTBOT_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("SUPPORTBOT_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("SUPPORTBOT_EMBEDDER"); v != "" {
		cfg.Embedder.Type = strings.ToLower(v)
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Knowledge.FAQPath == "" {
		cfg.Knowledge.FAQPath = filepath.Join(cfg.DataDir, "faqs.json")
	}
	if cfg.Knowledge.DocumentationPaths == nil {
		cfg.Knowledge.DocumentationPaths = []string{filepath.Join(cfg.DataDir, "product_documentation.md")}
	}
	if cfg.Knowledge.IndexPath == "" {
		cfg.Knowledge.IndexPath = filepath.Join(cfg.DataDir, "index.bin")
	}
	if cfg.Knowledge.DocumentsPath == "" {
		cfg.Knowledge.DocumentsPath = filepath.Join(cfg.DataDir, "documents.json")
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 4
		}
	}
	if cfg.Embedder.Type == "gemini" {
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiEmbedderConfig{}
		}
		if cfg.Embedder.Gemini.APIKeyEnv == "" {
			cfg.Embedder.Gemini.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.Embedder.Gemini.Model == "" {
			cfg.Embedder.Gemini.Model = "text-embedding-004"
		}
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "sentence"
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = defaultAPIKeyEnv(cfg.LLM.Provider)
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModel(cfg.LLM.Provider)
	}
	if cfg.LLM.MaxHistoryTurns == 0 {
		cfg.LLM.MaxHistoryTurns = 10
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.MinScore == 0 {
		cfg.Retrieval.MinScore = 0.5
	}
	if cfg.Analytics.Backend == "" {
		cfg.Analytics.Backend = "json"
	}
	if cfg.Analytics.Path == "" {
		name := "chat_logs.json"
		if cfg.Analytics.Backend == "sqlite" {
			name = "chat_logs.db"
		}
		cfg.Analytics.Path = filepath.Join(cfg.DataDir, name)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "127.0.0.1:8501"
	}
}

func defaultAPIKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "anthropic":
		return "claude-3-5-haiku-latest"
	case "openrouter":
		return "openai/gpt-4o-mini"
	default:
		return "gemini-2.0-flash"
	}
}
