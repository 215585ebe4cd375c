package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 存储所有配置信息
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	// 数据库配置，DB_DRIVER 为 mysql 或 sqlite
	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`

	// Redis配置
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// 生成模型配置，GENERATION_MODELS 按优先级逗号分隔
	GenerationProvider string `mapstructure:"GENERATION_PROVIDER"`
	GenerationModels   string `mapstructure:"GENERATION_MODELS"`
	GeminiAPIKey       string `mapstructure:"GEMINI_API_KEY"`

	// Deepseek API配置，陪伴聊天始终走 Deepseek
	DeepseekAPIKey      string `mapstructure:"DEEPSEEK_API_KEY"`
	DeepseekAPIEndpoint string `mapstructure:"DEEPSEEK_API_ENDPOINT"`
	DeepseekChatModel   string `mapstructure:"DEEPSEEK_CHAT_MODEL"`

	// 评分权重与任务分档阈值
	ScoreBase              float64 `mapstructure:"SCORE_BASE"`
	ScoreSentimentWeight   float64 `mapstructure:"SCORE_SENTIMENT_WEIGHT"`
	ScoreComplianceWeight  float64 `mapstructure:"SCORE_COMPLIANCE_WEIGHT"`
	ScoreMoodWeight        float64 `mapstructure:"SCORE_MOOD_WEIGHT"`
	TaskLowTierBelow       int     `mapstructure:"TASK_LOW_TIER_BELOW"`
	TaskMaintenanceTierMin int     `mapstructure:"TASK_MAINTENANCE_TIER_FROM"`

	// 记录目标
	WeeklyJournalTarget  int `mapstructure:"WEEKLY_JOURNAL_TARGET"`
	MonthlyJournalTarget int `mapstructure:"MONTHLY_JOURNAL_TARGET"`

	// JWT配置
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	InternalAuthToken string `mapstructure:"INTERNAL_AUTH_TOKEN"`
}

var defaults = map[string]any{
	"ENVIRONMENT":                "development",
	"SERVER_PORT":                "8080",
	"DB_DRIVER":                  "mysql",
	"DB_HOST":                    "127.0.0.1",
	"DB_PORT":                    "3306",
	"DB_USER":                    "",
	"DB_PASSWORD":                "",
	"DB_NAME":                    "inner_compass",
	"SQLITE_PATH":                "inner_compass.db",
	"REDIS_HOST":                 "127.0.0.1",
	"REDIS_PORT":                 "6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"GENERATION_PROVIDER":        "gemini",
	"GENERATION_MODELS":          "gemini-2.0-flash,gemini-1.5-flash",
	"GEMINI_API_KEY":             "",
	"DEEPSEEK_API_KEY":           "",
	"DEEPSEEK_API_ENDPOINT":      "https://api.deepseek.com/v1",
	"DEEPSEEK_CHAT_MODEL":        "deepseek-chat",
	"SCORE_BASE":                 50.0,
	"SCORE_SENTIMENT_WEIGHT":     40.0,
	"SCORE_COMPLIANCE_WEIGHT":    0.30,
	"SCORE_MOOD_WEIGHT":          10.0,
	"TASK_LOW_TIER_BELOW":        40,
	"TASK_MAINTENANCE_TIER_FROM": 70,
	"WEEKLY_JOURNAL_TARGET":      5,
	"MONTHLY_JOURNAL_TARGET":     20,
	"JWT_SECRET":                 "",
	"INTERNAL_AUTH_TOKEN":        "",
}

// LoadConfig 从环境变量或配置文件加载配置
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// 设置默认值，AutomaticEnv 只对已知 key 生效
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	err = v.ReadInConfig()
	if err != nil {
		// 允许配置文件不存在，此时会从环境变量中读取
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}

// GetDBConnString 返回数据库连接字符串
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// GetRedisConnString 返回Redis连接字符串
func (c *Config) GetRedisConnString() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// GenerationVariants 返回按优先级排列的模型列表
func (c *Config) GenerationVariants() []string {
	var out []string
	for _, m := range strings.Split(c.GenerationModels, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
