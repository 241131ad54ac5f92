package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	AI        AIConfig
	Chatbot   ChatbotConfig
	WebSearch WebSearchConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string
	Environment string
	Version     string
	Debug       bool
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string
	Port         int
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver       string // postgres 或 sqlite
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	Path         string // sqlite 文件路径
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
}

// RedisConfig Redis配置
// URL 为空时会话历史只保存在进程内存中
type RedisConfig struct {
	URL        string
	SessionTTL int
}

// NATSConfig NATS 配置
type NATSConfig struct {
	Enabled bool
	URL     string
	Subject string
	Timeout int
}

// AIConfig AI配置
type AIConfig struct {
	Ollama      OllamaConfig
	HuggingFace HuggingFaceConfig
	OpenAI      OpenAIConfig
}

// OllamaConfig 本地推理配置
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Timeout     int
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// HuggingFaceConfig 托管推理配置
type HuggingFaceConfig struct {
	APIKey       string
	BaseURL      string
	Models       []string
	Timeout      int
	RetryDelayMs int
	MaxNewTokens int
	Temperature  float64
}

// OpenAIConfig OpenAI 兼容接口配置
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout int
}

// ChatbotConfig 聊天机器人配置
type ChatbotConfig struct {
	HistoryLimit   int
	PromptHistory  int
	SearchLimit    int
	BudgetPriceMax float64
	LuxuryPriceMin float64
	// GenerateTimeout 整个提供者链的总时限（秒）
	GenerateTimeout int
}

// WebSearchConfig 网页搜索配置
// 未启用或搜索失败时返回固定的旅行建议
type WebSearchConfig struct {
	Enabled    bool
	MaxResults int
	Timeout    int
}

var globalConfig *Config

// Load 加载配置
// path 指向的文件不存在时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	// 环境变量
	v.SetEnvPrefix("TRAVACASA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded")
	}
	return globalConfig
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetAddr 获取服务器地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TimeoutDuration 单次本地推理调用的超时
func (c *OllamaConfig) TimeoutDuration() time.Duration {
	return secondsOr(c.Timeout, 10)
}

// TimeoutDuration 单次托管推理调用的超时
func (c *HuggingFaceConfig) TimeoutDuration() time.Duration {
	return secondsOr(c.Timeout, 15)
}

// RetryDelay 模型预热 (503) 后的重试等待时间
func (c *HuggingFaceConfig) RetryDelay() time.Duration {
	if c.RetryDelayMs < 0 {
		return 0
	}
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// TimeoutDuration 单次 OpenAI 兼容接口调用的超时
func (c *OpenAIConfig) TimeoutDuration() time.Duration {
	return secondsOr(c.Timeout, 15)
}

// GenerateBudget 提供者链总时限，不超过写超时的四分之三
func (c *Config) GenerateBudget() time.Duration {
	d := secondsOr(c.Chatbot.GenerateTimeout, 25)
	if c.Server.WriteTimeout > 0 {
		limit := time.Duration(c.Server.WriteTimeout) * time.Second * 3 / 4
		if d > limit {
			d = limit
		}
	}
	return d
}

// TimeoutDuration 单次网页搜索的超时
func (c *WebSearchConfig) TimeoutDuration() time.Duration {
	return secondsOr(c.Timeout, 8)
}

func secondsOr(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}

// bindLegacyEnv 兼容原站点使用的环境变量名
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "TRAVACASA_SERVER_PORT", "PORT")
	_ = v.BindEnv("redis.url", "TRAVACASA_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("nats.url", "TRAVACASA_NATS_URL", "NATS_URL")
	_ = v.BindEnv("ai.ollama.baseUrl", "TRAVACASA_AI_OLLAMA_BASEURL", "OLLAMA_BASE_URL")
	_ = v.BindEnv("ai.huggingFace.apiKey", "TRAVACASA_AI_HUGGINGFACE_APIKEY", "HUGGINGFACE_API_KEY")
	_ = v.BindEnv("ai.openAI.apiKey", "TRAVACASA_AI_OPENAI_APIKEY", "OPENAI_API_KEY")
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "travacasa")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", true)

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 60)

	// Database
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "travacasa")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "travacasa.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxLifetime", 300)

	// Redis
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.sessionTTL", 86400)

	// NATS
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject", "travacasa.chatbot")
	v.SetDefault("nats.timeout", 30)

	// AI
	v.SetDefault("ai.ollama.baseUrl", "http://localhost:11434")
	v.SetDefault("ai.ollama.model", "llama2")
	v.SetDefault("ai.ollama.timeout", 10)
	v.SetDefault("ai.ollama.temperature", 0.7)
	v.SetDefault("ai.ollama.topP", 0.9)
	v.SetDefault("ai.ollama.maxTokens", 500)
	v.SetDefault("ai.huggingFace.baseUrl", "https://api-inference.huggingface.co/models")
	v.SetDefault("ai.huggingFace.models", []string{"microsoft/DialoGPT-large", "gpt2"})
	v.SetDefault("ai.huggingFace.timeout", 15)
	v.SetDefault("ai.huggingFace.retryDelayMs", 5000)
	v.SetDefault("ai.huggingFace.maxNewTokens", 200)
	v.SetDefault("ai.huggingFace.temperature", 0.7)
	v.SetDefault("ai.openAI.baseUrl", "https://api.openai.com/v1")
	v.SetDefault("ai.openAI.model", "gpt-4o-mini")
	v.SetDefault("ai.openAI.timeout", 15)

	// Chatbot
	v.SetDefault("chatbot.historyLimit", 10)
	v.SetDefault("chatbot.promptHistory", 5)
	v.SetDefault("chatbot.searchLimit", 5)
	v.SetDefault("chatbot.budgetPriceMax", 150)
	v.SetDefault("chatbot.luxuryPriceMin", 200)
	v.SetDefault("chatbot.generateTimeout", 25)

	// WebSearch
	v.SetDefault("webSearch.enabled", true)
	v.SetDefault("webSearch.maxResults", 5)
	v.SetDefault("webSearch.timeout", 8)
}
