package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/metadata"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/validation"
	"github.com/rushteam/movierec/store"
)

// AppConfig 是进程级配置，整个文件同时也是一份合法的 pipeline 配置（pipeline 段内联）。
//
// 文件内容在解析前做 ${ENV} 展开，token、api key 一般通过环境变量注入：
//
//	tmdb:
//	  token: ${TMDB_TOKEN}
type AppConfig struct {
	Server   ServerConfig      `yaml:"server"`
	Log      logging.Config    `yaml:"log"`
	Graph    GraphConfig       `yaml:"graph"`
	TMDB     TMDBConfig        `yaml:"tmdb"`
	OMDb     OMDbConfig        `yaml:"omdb"`
	Metadata MetadataConfig    `yaml:"metadata"`
	Redis    store.RedisConfig `yaml:"redis"`

	pipeline.Config `yaml:",inline"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`

	// RateLimit 每个 IP 每分钟的 /recommend 请求数，0 表示不限
	RateLimit int `yaml:"rate_limit" validate:"gte=0"`
}

type GraphConfig struct {
	Endpoint     string        `yaml:"endpoint" validate:"required,url"`
	Timeout      time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent    string        `yaml:"user_agent"`
	EntityPrefix string        `yaml:"entity_prefix" validate:"omitempty,url"`
}

type TMDBConfig struct {
	BaseURL string  `yaml:"base_url" validate:"omitempty,url"`
	Token   string  `yaml:"token"`
	RPS     float64 `yaml:"rps" validate:"gte=0"`
	Burst   int     `yaml:"burst" validate:"gte=0"`
}

type OMDbConfig struct {
	BaseURL string  `yaml:"base_url" validate:"omitempty,url"`
	APIKey  string  `yaml:"api_key"`
	RPS     float64 `yaml:"rps" validate:"gte=0"`
	Burst   int     `yaml:"burst" validate:"gte=0"`
}

type MetadataConfig struct {
	Workers       int           `yaml:"workers" validate:"gte=0"`
	LookupTimeout time.Duration `yaml:"lookup_timeout" validate:"gte=0"`
	CacheTTL      time.Duration `yaml:"cache_ttl" validate:"gte=0"`
}

// LoadApp 读取、展开环境变量、解析并校验应用配置。
func LoadApp(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseApp(data)
}

// ParseApp 从字节解析应用配置。
func ParseApp(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults 为未设置的字段填充默认值。
func (c *AppConfig) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 120 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Graph.Timeout == 0 {
		c.Graph.Timeout = 30 * time.Second
	}
	if c.Graph.UserAgent == "" {
		c.Graph.UserAgent = "movierec/1.0"
	}
	if c.Graph.EntityPrefix == "" {
		c.Graph.EntityPrefix = core.DefaultEntityPrefix
	}
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = metadata.DefaultTMDBBaseURL
	}
	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = metadata.DefaultOMDbBaseURL
	}
	if c.Metadata.Workers == 0 {
		c.Metadata.Workers = metadata.DefaultWorkers
	}
	if c.Metadata.LookupTimeout == 0 {
		c.Metadata.LookupTimeout = metadata.DefaultTimeout
	}
	if c.Metadata.CacheTTL == 0 {
		c.Metadata.CacheTTL = metadata.DefaultCacheTTL
	}
	if c.Pipeline.Name == "" {
		c.Pipeline.Name = "movierec"
	}
	if len(c.Pipeline.Nodes) == 0 {
		c.Pipeline.Nodes = DefaultPipeline()
	}
}

// Validate 校验字段取值，并确认 pipeline 中的 node 类型均已注册。
func (c *AppConfig) Validate() error {
	if err := validation.Struct(core.ModuleConfig, c); err != nil {
		return err
	}
	if err := ValidatePipelineConfig(&c.Config); err != nil {
		return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "pipeline", err)
	}
	return nil
}

// DefaultPipeline 是默认推荐链路：
// 图谱召回 -> 证据计分 -> 截断 200 -> 外部元数据 -> 评分调整 -> 截断 100。
func DefaultPipeline() []pipeline.NodeConfig {
	rc := &core.DefaultRankConfig{}
	return []pipeline.NodeConfig{
		{Type: "recall.graph"},
		{Type: "rank.points"},
		{Type: "rerank.topn", Config: map[string]any{"n": rc.DefaultPoolSize(), "stage": "pool"}},
		{Type: "postprocess.metadata"},
		{Type: "rank.rating"},
		{Type: "rerank.topn", Config: map[string]any{"n": rc.DefaultResultSize(), "stage": "result"}},
	}
}
