// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（连接串、凭据）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"secbot-fulfillment/internal/fulfillment/listflow"
	"secbot-fulfillment/internal/fulfillment/quiz"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Dialogflow DialogflowConfig `yaml:"dialogflow"`
	Quiz       QuizConfig       `yaml:"quiz"`
	List       ListConfig       `yaml:"list"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	// URI 非空时直接使用，否则从 host/port 构建
	URI  string `yaml:"uri"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
}

type RedisConfig struct {
	// URL 非空时直接使用，否则从 host/port/db 构建
	URL  string `yaml:"url"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	DB   int    `yaml:"db"`
	// Enabled 为 false 时跳过 Redis 连接（概念缓存退化为 NoOp）
	Enabled bool `yaml:"enabled"`
}

type DialogflowConfig struct {
	// ProjectID 会话路径解析失败时的回退 project id
	ProjectID string `yaml:"project_id"`
}

// QuizConfig 测验流程配置
type QuizConfig struct {
	DefaultCount  int `yaml:"default_count"`
	LifespanSlack int `yaml:"lifespan_slack"`
}

// ListConfig 题目列表追问流程配置
type ListConfig struct {
	DisplayCap             int                 `yaml:"display_cap"`
	Lifespan               int                 `yaml:"lifespan"`
	AnswerFollowupLifespan int                 `yaml:"answer_followup_lifespan"`
	Grading                listflow.Thresholds `yaml:"grading"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env                 Environment
	Port                string
	MongoURI            string
	MongoDatabase       string
	RedisURL            string
	RedisEnabled        bool
	DialogflowProjectID string
	Quiz                quiz.Config
	List                listflow.Config
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 环境变量覆盖，构建最终配置
func Load() *Config {
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))
	yamlCfg := loadYAMLConfig(env)

	cfg := &Config{
		Env:                 env,
		Port:                getEnv("PORT", yamlCfg.Server.Port),
		MongoURI:            getEnv("MONGO_URI", buildMongoURI(yamlCfg.Database)),
		MongoDatabase:       getEnv("MONGO_DATABASE", yamlCfg.Database.Name),
		RedisURL:            getEnv("REDIS_URL", buildRedisURL(yamlCfg.Redis)),
		RedisEnabled:        yamlCfg.Redis.Enabled || os.Getenv("REDIS_URL") != "",
		DialogflowProjectID: getEnv("DIALOGFLOW_PROJECT_ID", yamlCfg.Dialogflow.ProjectID),
		Quiz: quiz.Config{
			DefaultCount:  yamlCfg.Quiz.DefaultCount,
			LifespanSlack: yamlCfg.Quiz.LifespanSlack,
		},
		List: listflow.Config{
			DisplayCap:             yamlCfg.List.DisplayCap,
			Lifespan:               yamlCfg.List.Lifespan,
			AnswerFollowupLifespan: yamlCfg.List.AnswerFollowupLifespan,
			Grading:                yamlCfg.List.Grading,
		},
	}

	cfg.validate()
	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	cfg := &YAMLConfig{
		Server:     ServerConfig{Port: "3000"},
		Database:   DatabaseConfig{Host: "localhost", Port: 27017, Name: "secbot"},
		Redis:      RedisConfig{Host: "localhost", Port: 6379, DB: 0},
		Dialogflow: DialogflowConfig{ProjectID: "secbot-agent"},
		Quiz:       QuizConfig{DefaultCount: 10, LifespanSlack: 10},
		List: ListConfig{
			DisplayCap:             5,
			Lifespan:               5,
			AnswerFollowupLifespan: 3,
			Grading:                listflow.Thresholds{VeryGood: 0.8, Good: 0.5, Partial: 0.2},
		},
	}

	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// buildMongoURI 构建 MongoDB 连接字符串
func buildMongoURI(db DatabaseConfig) string {
	if db.URI != "" {
		return db.URI
	}
	return fmt.Sprintf("mongodb://%s:%d", db.Host, db.Port)
}

// buildRedisURL 构建 Redis 连接字符串
func buildRedisURL(redis RedisConfig) string {
	if redis.URL != "" {
		return redis.URL
	}
	return fmt.Sprintf("redis://%s:%d/%d", redis.Host, redis.Port, redis.DB)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Mongo: %s/%s, Redis: %s, Project: %s}",
		c.Env, maskPassword(c.MongoURI), c.MongoDatabase, maskPassword(c.RedisURL), c.DialogflowProjectID)
}

// maskPassword 隐藏连接串里的密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:/]+:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}

// validate 验证并填充默认值
func (c *Config) validate() {
	if c.Port == "" {
		c.Port = "3000"
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "secbot"
	}
	if c.Quiz.DefaultCount <= 0 {
		c.Quiz.DefaultCount = 10
	}
	if c.Quiz.LifespanSlack <= 0 {
		c.Quiz.LifespanSlack = 10
	}
	if c.List.DisplayCap <= 0 {
		c.List.DisplayCap = 5
	}
	if c.List.Lifespan <= 0 {
		c.List.Lifespan = 5
	}
	if c.List.AnswerFollowupLifespan <= 0 {
		c.List.AnswerFollowupLifespan = 3
	}
	if c.List.Grading.Good <= 0 {
		c.List.Grading = listflow.Thresholds{VeryGood: 0.8, Good: 0.5, Partial: 0.2}
	}
}
