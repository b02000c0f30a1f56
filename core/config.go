package core

import (
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "hello.config.yml"

type Config struct {
	TemplatesDir string `yaml:"templatesDir"`
	StaticDir    string `yaml:"staticDir"`
	OutputDir    string `yaml:"outputDir"`
	CacheEnabled bool   `yaml:"cache"`
	LiveReload   bool   `yaml:"liveReload"`
	DebugHeaders bool   `yaml:"debugHeaders"`
	DebugLogs    bool   `yaml:"debugLogs"`
}

func DefaultConfig() Config {
	return Config{
		TemplatesDir: "templates",
		StaticDir:    "static",
		OutputDir:    "./cache",
	}
}

// LoadConfig reads path and fills any empty directory with its default.
// A missing or unreadable file yields DefaultConfig.
func LoadConfig(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig()
	}

	def := DefaultConfig()
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = def.TemplatesDir
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = def.StaticDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}

	return cfg
}
