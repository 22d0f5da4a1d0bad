package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	OpenAI OpenAIConfig
	Chunk  ChunkConfig
	RAG    RAGConfig
	Queue  QueueConfig
	Parse  ParseConfig
	Email  EmailConfig
	CORS   CORSConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for original files and page images.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// OpenAIConfig holds settings for the chat, extraction, and embedding clients.
type OpenAIConfig struct {
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	ChatModel     string `mapstructure:"chat_model"`
	EmbedModel    string `mapstructure:"embed_model"`
	EmbedDims     int    `mapstructure:"embed_dims"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
	MaxRetries    int    `mapstructure:"max_retries"`
	BackoffMinMS  int    `mapstructure:"backoff_min_ms"`
	BackoffMaxMS  int    `mapstructure:"backoff_max_ms"`
	MaxChatTokens int    `mapstructure:"max_chat_tokens"`
}

// Timeout returns the per-request HTTP timeout.
func (o *OpenAIConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSecs) * time.Second
}

// BackoffMin returns the minimum retry backoff delay.
func (o *OpenAIConfig) BackoffMin() time.Duration {
	return time.Duration(o.BackoffMinMS) * time.Millisecond
}

// BackoffMax returns the maximum retry backoff delay.
func (o *OpenAIConfig) BackoffMax() time.Duration {
	return time.Duration(o.BackoffMaxMS) * time.Millisecond
}

// ChunkConfig holds chunker sizing settings.
type ChunkConfig struct {
	SizeTokens    int `mapstructure:"size_tokens"`
	OverlapTokens int `mapstructure:"overlap_tokens"`
}

// RAGConfig holds retrieval settings.
type RAGConfig struct {
	TopK             int `mapstructure:"top_k"`
	MaxTopK          int `mapstructure:"max_top_k"`
	VectorCandidates int `mapstructure:"vector_candidates"`
	EmbedBatchSize   int `mapstructure:"embed_batch_size"`
}

// QueueConfig holds job worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
	JobTimeoutSecs   int `mapstructure:"job_timeout_secs"`
}

// ParseConfig holds PDF ingest settings.
type ParseConfig struct {
	MaxPages         int `mapstructure:"max_pages"`
	LowTextThreshold int `mapstructure:"low_text_threshold"`
}

// EmailConfig holds review notification settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	ReviewerTo  string `mapstructure:"reviewer_to"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the PAPERBRIDGE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAPERBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "paperbridge")
	v.SetDefault("db.password", "paperbridge_secret")
	v.SetDefault("db.name", "paperbridge_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "paperbridge-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.embed_model", "text-embedding-3-small")
	v.SetDefault("openai.embed_dims", 1536)
	v.SetDefault("openai.timeout_secs", 120)
	v.SetDefault("openai.max_retries", 3)
	v.SetDefault("openai.backoff_min_ms", 2000)
	v.SetDefault("openai.backoff_max_ms", 10000)
	v.SetDefault("openai.max_chat_tokens", 4000)

	// Chunking defaults
	v.SetDefault("chunk.size_tokens", 300)
	v.SetDefault("chunk.overlap_tokens", 50)

	// RAG defaults
	v.SetDefault("rag.top_k", 5)
	v.SetDefault("rag.max_top_k", 20)
	v.SetDefault("rag.vector_candidates", 50)
	v.SetDefault("rag.embed_batch_size", 100)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 2)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.job_timeout_secs", 600)

	// Parse defaults
	v.SetDefault("parse.max_pages", 200)
	v.SetDefault("parse.low_text_threshold", 100)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@paperbridge.io")
	v.SetDefault("email.reviewer_to", "")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Viper delivers comma-separated env values as a single string
	if len(cfg.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.CORS.AllowedOrigins[0], ",") {
		cfg.CORS.AllowedOrigins = strings.Split(cfg.CORS.AllowedOrigins[0], ",")
	}

	return &cfg, nil
}
