package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultPageSize  = 10
	defaultSortField = "-pub_date"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string `yaml:"listen_addr"`
	Port          string `yaml:"port"`
	DatabasePath  string `yaml:"database_path"`
	SessionSecret string `yaml:"session_secret"`
	GinMode       string `yaml:"gin_mode"`
	MediaDir      string `yaml:"media_dir"`
	MediaURLPath  string `yaml:"media_url_path"`
	PageSize      int    `yaml:"page_size"`
	SortField     string `yaml:"sort_field"`
	LogLevel      string `yaml:"log_level"`
	CSRFEnabled   bool   `yaml:"csrf_enabled"`
}

// Default returns the configuration used when nothing is supplied.
func Default() AppConfig {
	return AppConfig{
		ListenAddr:    ":8080",
		Port:          "8080",
		DatabasePath:  "blogicum.db",
		SessionSecret: "blogicum-dev-secret",
		GinMode:       "release",
		MediaDir:      "media",
		MediaURLPath:  "/media",
		PageSize:      defaultPageSize,
		SortField:     defaultSortField,
		LogLevel:      "info",
		CSRFEnabled:   true,
	}
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// CONFIG_FILE 指向的 YAML 文件先于环境变量生效，环境变量优先级最高。
func Load() (AppConfig, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return AppConfig{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return AppConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() error {
	portFromEnv := false
	if port := env("PORT"); port != "" {
		c.Port = port
		portFromEnv = true
	}

	if listenAddr := env("LISTEN_ADDR"); listenAddr != "" {
		c.ListenAddr = listenAddr
	} else if portFromEnv {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}

	if v := env("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := env("SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := env("GIN_MODE"); v != "" {
		c.GinMode = v
	}
	if v := env("MEDIA_DIR"); v != "" {
		c.MediaDir = v
	}
	if v := env("MEDIA_URL_PATH"); v != "" {
		c.MediaURLPath = v
	}
	if v := env("SORT_FIELD"); v != "" {
		c.SortField = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	if v := env("PAGE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PAGE_SIZE %q: %w", v, err)
		}
		c.PageSize = size
	}

	if v := env("CSRF_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CSRF_ENABLED %q: %w", v, err)
		}
		c.CSRFEnabled = enabled
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c AppConfig) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if _, ok := SortColumns[strings.TrimPrefix(c.SortField, "-")]; !ok {
		return fmt.Errorf("unsupported sort field %q", c.SortField)
	}
	if !strings.HasPrefix(c.MediaURLPath, "/") {
		return fmt.Errorf("media url path must start with '/', got %q", c.MediaURLPath)
	}
	return nil
}

// SortColumns lists the post columns a listing may be ordered by.
var SortColumns = map[string]string{
	"pub_date":   "posts.pub_date",
	"created_at": "posts.created_at",
	"title":      "posts.title",
	"id":         "posts.id",
}

// OrderClause converts the sort field ("-pub_date", "title", ...) into an ORDER BY expression.
func (c AppConfig) OrderClause() string {
	return OrderClause(c.SortField)
}

// OrderClause converts a sort field into an ORDER BY expression. Unknown fields
// fall back to descending publication date.
func OrderClause(field string) string {
	direction := "ASC"
	name := strings.TrimSpace(field)
	if strings.HasPrefix(name, "-") {
		direction = "DESC"
		name = strings.TrimPrefix(name, "-")
	}

	column, ok := SortColumns[name]
	if !ok {
		column, direction = SortColumns["pub_date"], "DESC"
	}
	return fmt.Sprintf("%s %s, posts.id %s", column, direction, direction)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
