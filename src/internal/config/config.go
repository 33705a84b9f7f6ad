package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type SolcConfig struct {
	Binary      string        `yaml:"binary"`
	AutoInstall bool          `yaml:"auto_install"`
	ParseOnly   bool          `yaml:"parse_only"`
	Timeout     time.Duration `yaml:"timeout"`
}

type LoaderConfig struct {
	Concurrency int      `yaml:"concurrency"`
	CacheSize   int      `yaml:"cache_size"`
	NetworkID   string   `yaml:"network_id"`
	Extensions  []string `yaml:"extensions"`
}

type AnnotationConfig struct {
	Source string `yaml:"source"` // scan | ast
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Console    bool   `yaml:"console"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type AppConfig struct {
	Solc        SolcConfig       `yaml:"solc"`
	Loader      LoaderConfig     `yaml:"loader"`
	Annotations AnnotationConfig `yaml:"annotations"`
	Log         LogConfig        `yaml:"log"`
	Output      OutputConfig     `yaml:"output"`
}

func Default() *AppConfig {
	return &AppConfig{
		Solc: SolcConfig{
			AutoInstall: true,
			ParseOnly:   true,
			Timeout:     time.Minute,
		},
		Loader: LoaderConfig{
			Concurrency: 4,
			CacheSize:   256,
			Extensions:  []string{".sol", ".json"},
		},
		Annotations: AnnotationConfig{Source: "scan"},
		Log: LogConfig{
			Level:      "info",
			File:       "logs/solview.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Console:    true,
		},
		Output: OutputConfig{Dir: "output"},
	}
}

func (c *AppConfig) applyEnv() {
	c.Solc.Binary = getEnv("SOLVIEW_SOLC", c.Solc.Binary)
	c.Loader.NetworkID = getEnv("SOLVIEW_NETWORK_ID", c.Loader.NetworkID)
	c.Log.Level = getEnv("SOLVIEW_LOG_LEVEL", c.Log.Level)
	c.Loader.Concurrency = getEnvAsInt("SOLVIEW_CONCURRENCY", c.Loader.Concurrency)
}

func (c *AppConfig) Validate() error {
	switch strings.ToLower(c.Annotations.Source) {
	case "", "scan", "ast":
	default:
		return fmt.Errorf("annotations.source must be scan or ast, got %q", c.Annotations.Source)
	}
	if c.Loader.Concurrency <= 0 {
		return fmt.Errorf("loader.concurrency must be positive")
	}
	if c.Loader.CacheSize <= 0 {
		return fmt.Errorf("loader.cache_size must be positive")
	}
	if c.Solc.Timeout < 0 {
		return fmt.Errorf("solc.timeout must not be negative")
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("log rotation settings must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
