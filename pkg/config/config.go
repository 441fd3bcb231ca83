package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	SQLite  SQLiteConfig
	Redis   RedisConfig
	Milvus  MilvusConfig
	LLM     LLMConfig
	Search  SearchConfig
	Voice   VoiceConfig
	KB      KBConfig
	Router  RouterConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type MilvusConfig struct {
	Enabled        bool
	Endpoint       string
	CollectionName string
	VectorDim      int
}

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
}

type SearchConfig struct {
	Enabled    bool
	SerpAPIKey string
	MaxResults int
	TimeoutSec int
	TextBudget int
}

type VoiceConfig struct {
	Enabled    bool
	Endpoint   string
	TimeoutSec int
}

type KBConfig struct {
	DataDir            string
	RetrievalThreshold float64
	MaxResults         int
	IngestBatchSize    int
}

type RouterConfig struct {
	LocalKBAcceptance float64
	RAGAcceptance     float64
	WebAcceptance     float64
	LLMAcceptance     float64
	AttemptTimeoutSec int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/math-tutor")

	viper.SetEnvPrefix("MATH_TUTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 60)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/mathtutor.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 3600)

	viper.SetDefault("milvus.enabled", false)
	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.collectionName", "math_problems")
	viper.SetDefault("milvus.vectorDim", 1536)

	viper.SetDefault("llm.model", "gpt-4")
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-large")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.maxTokens", 2048)

	viper.SetDefault("search.enabled", true)
	viper.SetDefault("search.maxResults", 3)
	viper.SetDefault("search.timeoutSec", 10)
	viper.SetDefault("search.textBudget", 500)

	viper.SetDefault("voice.enabled", false)
	viper.SetDefault("voice.timeoutSec", 20)

	viper.SetDefault("kb.dataDir", "./data/datasets")
	viper.SetDefault("kb.retrievalThreshold", 0.6)
	viper.SetDefault("kb.maxResults", 5)
	viper.SetDefault("kb.ingestBatchSize", 50)

	viper.SetDefault("router.localKBAcceptance", 0.7)
	viper.SetDefault("router.ragAcceptance", 0.7)
	viper.SetDefault("router.webAcceptance", 0.5)
	viper.SetDefault("router.llmAcceptance", 0.5)
	viper.SetDefault("router.attemptTimeoutSec", 15)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
