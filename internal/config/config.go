// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Redis  RedisConfig  `mapstructure:"redis"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Client ClientConfig `mapstructure:"client"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// RedisConfig 存储响应缓存的 Redis 配置。Addr 为空时禁用缓存。
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	APIKey         string          `mapstructure:"api_key"`
	BaseURL        string          `mapstructure:"base_url"`
	Model          string          `mapstructure:"model"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	Budget         LLMBudgetConfig `mapstructure:"budget"`
}

// LLMBudgetConfig 配置各类调用的 max_tokens 预算（零值回退到默认值）。
type LLMBudgetConfig struct {
	Analysis    int `mapstructure:"analysis"`
	Chat        int `mapstructure:"chat"`
	Concept     int `mapstructure:"concept"`
	Explanation int `mapstructure:"explanation"`
	Relation    int `mapstructure:"relation"`
	Formula     int `mapstructure:"formula"`
}

// ClientConfig 存储终端客户端使用的中继服务地址。
type ClientConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// 各类上游调用的默认 max_tokens 预算。
const (
	DefaultAnalysisBudget    = 2500
	DefaultChatBudget        = 1000
	DefaultConceptBudget     = 1000
	DefaultExplanationBudget = 500
	DefaultRelationBudget    = 300
	DefaultFormulaBudget     = 1000
)

// AnalysisBudget 返回问题分析调用的 token 预算。
func (c LLMConfig) AnalysisBudget() int { return orDefault(c.Budget.Analysis, DefaultAnalysisBudget) }

// ChatBudget 返回聊天生成调用的 token 预算。
func (c LLMConfig) ChatBudget() int { return orDefault(c.Budget.Chat, DefaultChatBudget) }

// ConceptBudget 返回合并概念解释调用的 token 预算。
func (c LLMConfig) ConceptBudget() int { return orDefault(c.Budget.Concept, DefaultConceptBudget) }

// ExplanationBudget 返回单独解释调用的 token 预算。
func (c LLMConfig) ExplanationBudget() int {
	return orDefault(c.Budget.Explanation, DefaultExplanationBudget)
}

// RelationBudget 返回概念关联调用的 token 预算。
func (c LLMConfig) RelationBudget() int { return orDefault(c.Budget.Relation, DefaultRelationBudget) }

// FormulaBudget 返回公式生成调用的 token 预算。
func (c LLMConfig) FormulaBudget() int { return orDefault(c.Budget.Formula, DefaultFormulaBudget) }

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
// 环境变量（LC_ 前缀，如 LC_LLM_API_KEY）优先于文件中的同名配置。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("LC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}
}
