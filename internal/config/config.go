package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// HuggingFaceConfig configures the Hugging Face feature-extraction embedder.
type HuggingFaceConfig struct {
	BaseURL     string `yaml:"base_url" default:"https://api-inference.huggingface.co"`
	APIKeyEnv   string `yaml:"api_key_env" default:"HF_API_KEY"`
	Model       string `yaml:"model" default:"sentence-transformers/all-mpnet-base-v2"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" default:"https://api.openai.com/v1"`
	APIKeyEnv   string `yaml:"api_key_env" default:"OPENAI_API_KEY"`
	Model       string `yaml:"model" default:"text-embedding-3-small"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type        string               `yaml:"type" default:"huggingface"`
	HuggingFace HuggingFaceConfig    `yaml:"huggingface"`
	OpenAI      OpenAIEmbedderConfig `yaml:"openai"`
}

// PineconeConfig contains connection details for a Pinecone index.
type PineconeConfig struct {
	ControlURL  string `yaml:"control_url" default:"https://api.pinecone.io"`
	Index       string `yaml:"index" default:"stocks"`
	Host        string `yaml:"host"`
	APIKeyEnv   string `yaml:"api_key_env" default:"PINECONE_API_KEY"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url" default:"http://localhost:6333"`
	APIKeyEnv   string `yaml:"api_key_env" default:"QDRANT_API_KEY"`
	Collection  string `yaml:"collection" default:"stocks"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// MemoryConfig configures the in-process vector store.
type MemoryConfig struct {
	// SeedFile is a YAML list of {id, text, metadata} documents embedded at startup.
	SeedFile string `yaml:"seed_file"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type      string         `yaml:"type" default:"pinecone"`
	Namespace string         `yaml:"namespace" default:"stock-descriptions"`
	TopK      int            `yaml:"top_k" default:"10"`
	Pinecone  PineconeConfig `yaml:"pinecone"`
	Qdrant    QdrantConfig   `yaml:"qdrant"`
	Memory    MemoryConfig   `yaml:"memory"`
}

// LLMConfig configures the chat completion endpoint.
type LLMConfig struct {
	BaseURL         string `yaml:"base_url" default:"https://api.groq.com/openai/v1"`
	APIKeyEnv       string `yaml:"api_key_env" default:"GROQ_API_KEY"`
	AnswerModel     string `yaml:"answer_model" default:"llama-3.1-8b-instant"`
	ExtractionModel string `yaml:"extraction_model" default:"llama-3.3-70b-versatile"`
	TimeoutSecs     int    `yaml:"timeout_secs"`
}

// ArticleConfig configures the article fetcher.
type ArticleConfig struct {
	UserAgent    string `yaml:"user_agent" default:"Mozilla/5.0 (compatible; stockfinder/1.0)"`
	TimeoutSecs  int    `yaml:"timeout_secs"`
	ExcerptWords int    `yaml:"excerpt_words" default:"150"`
}

// MarketConfig configures the price history fetcher.
type MarketConfig struct {
	LookbackDays int `yaml:"lookback_days" default:"365"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"json"`
	// Output is stdout, stderr or a file path. The TUI never logs to stdout.
	Output string `yaml:"output" default:"stockfinder.log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080"`
	// AllowOrigins lists CORS origins. Empty allows any origin.
	AllowOrigins []string `yaml:"allow_origins"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	LLM         LLMConfig         `yaml:"llm"`
	Article     ArticleConfig     `yaml:"article"`
	Market      MarketConfig      `yaml:"market"`
	Log         LogConfig         `yaml:"log"`
	Server      ServerConfig      `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	cfg, err := defaultConfig()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return finish(cfg)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// fill anything the file left zero
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	return finish(cfg)
}

// LoadDefault tries ./config.yaml first, then ~/.config/stockfinder/config.yaml.
// If neither exists, it writes defaults to ~/.config/stockfinder/config.yaml and returns them.
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
	cfg, err := defaultConfig()
	if err != nil {
		return nil, "", err
	}
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	cfg, err = finish(cfg)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks backend selections and sizes.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "huggingface", "openai":
	case "tfidf":
		if c.VectorStore.Type != "memory" {
			return fmt.Errorf("embedder.type 'tfidf' only works with the memory vector store")
		}
	default:
		return fmt.Errorf("embedder.type must be 'huggingface', 'openai' or 'tfidf', got '%s'", c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "pinecone", "qdrant", "memory":
	default:
		return fmt.Errorf("vector_store.type must be 'pinecone', 'qdrant' or 'memory', got '%s'", c.VectorStore.Type)
	}
	if c.VectorStore.TopK <= 0 {
		return fmt.Errorf("vector_store.top_k must be positive")
	}
	if c.VectorStore.Namespace == "" {
		return fmt.Errorf("vector_store.namespace is required")
	}
	if c.Market.LookbackDays <= 0 {
		return fmt.Errorf("market.lookback_days must be positive")
	}
	if c.VectorStore.Type == "memory" && c.VectorStore.Memory.SeedFile == "" {
		return fmt.Errorf("vector_store.memory.seed_file is required for the memory store")
	}
	if c.LLM.AnswerModel == "" || c.LLM.ExtractionModel == "" {
		return fmt.Errorf("llm models are required")
	}
	return nil
}

func finish(cfg *AppConfig) (*AppConfig, error) {
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("STOCKFINDER_EMBEDDER"); v != "" {
		cfg.Embedder.Type = v
	}
	if v := os.Getenv("STOCKFINDER_VECTOR_STORE"); v != "" {
		cfg.VectorStore.Type = v
	}
	if v := os.Getenv("STOCKFINDER_NAMESPACE"); v != "" {
		cfg.VectorStore.Namespace = v
	}
	if v := os.Getenv("STOCKFINDER_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.VectorStore.TopK = n
		}
	}
	if v := os.Getenv("PINECONE_INDEX"); v != "" {
		cfg.VectorStore.Pinecone.Index = v
	}
	if v := os.Getenv("PINECONE_HOST"); v != "" {
		cfg.VectorStore.Pinecone.Host = v
	}
	if v := os.Getenv("STOCKFINDER_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("STOCKFINDER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STOCKFINDER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stockfinder", "config.yaml"), nil
}

func defaultConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	return cfg, nil
}
