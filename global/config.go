package global

import (
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Config 全局配置单例，由 ConfigLoad 初始化
var Config *config

type config struct {
	// File 配置文件的绝对路径，用于 Save // don't serialize
	File string `yaml:"-"`

	Server   Server    `yaml:"server"`
	Database Database  `yaml:"database"`
	Engine   Engine    `yaml:"engine"`
	Log      LogConfig `yaml:"log"`
}

type Server struct {
	// RunMode debug 或 release
	RunMode string `yaml:"run-mode" default:"release"`
}

type Database struct {
	// Type 目前仅支持 sqlite
	Type         string `yaml:"type" default:"sqlite"`
	Path         string `yaml:"path" default:"storage/database/table-engine.db"`
	TablePrefix  string `yaml:"table-prefix" default:""`
	MaxIdleConns int    `yaml:"max-idle-conns" default:"10"`
	MaxOpenConns int    `yaml:"max-open-conns" default:"30"`
}

type Engine struct {
	// MaxResolveDepth 跨表递归解析（汇总/查找链）的最大深度
	MaxResolveDepth int `yaml:"max-resolve-depth" default:"10"`
}

type LogConfig struct {
	Level string `yaml:"level" default:"info"`
	File  string `yaml:"file" default:""`
}

// ConfigLoad loads the YAML config at path, applying struct defaults for
// anything left unset, and installs the global singleton.
// ConfigLoad 加载配置文件，未设置的字段使用默认值，并安装全局单例。
func ConfigLoad(path string) (*config, error) {
	c := &config{}
	if err := defaults.Set(c); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 配置文件不存在时使用默认配置
			abs, _ := filepath.Abs(path)
			c.File = abs
			Config = c
			return c, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	c.File = abs

	Config = c
	return c, nil
}

// Save writes the current configuration back to its source file.
// Save 将当前配置写回配置文件。
func (c *config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.File, data, 0644)
}
