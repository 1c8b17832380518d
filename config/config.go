package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chaos-io/bgstudio/studio/rembg"
)

const DefaultPort = 10000

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Upload UploadConfig `mapstructure:"upload"`
	RemBG  RemBGConfig  `mapstructure:"rembg"`
}

type ServerConfig struct {
	// Port 保持字符串，非法值在 ListenAddr 里回退到默认端口
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type UploadConfig struct {
	MaxMemory int64 `mapstructure:"max_memory"`
}

type RemBGConfig struct {
	Backend       string        `mapstructure:"backend"`
	ModelPath     string        `mapstructure:"model_path"`
	LibraryPath   string        `mapstructure:"library_path"`
	RemoteURL     string        `mapstructure:"remote_url"`
	RemoteField   string        `mapstructure:"remote_field"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ProbeSchedule string        `mapstructure:"probe_schedule"`
}

// ListenPort 解析端口，不是合法端口号时返回默认端口
func (s ServerConfig) ListenPort() int {
	port, err := strconv.Atoi(strings.TrimSpace(s.Port))
	if err != nil || port <= 0 || port > 65535 {
		return DefaultPort
	}
	return port
}

// ListenAddr 监听所有网卡
func (s ServerConfig) ListenAddr() string {
	return fmt.Sprintf("0.0.0.0:%d", s.ListenPort())
}

func (r RemBGConfig) Options() rembg.Options {
	return rembg.Options{
		Backend:     r.Backend,
		ModelPath:   r.ModelPath,
		LibraryPath: r.LibraryPath,
		RemoteURL:   r.RemoteURL,
		RemoteField: r.RemoteField,
		Timeout:     r.Timeout,
	}
}

// Load 读取配置：默认值 < YAML 文件（可选）< 环境变量
// 环境变量前缀 BGSTUDIO_，例如 BGSTUDIO_REMBG_BACKEND；端口直接读 PORT
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("bgstudio")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind PORT: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// DefaultPath 服务默认读取的配置文件，不存在时只用默认值和环境变量
const DefaultPath = "config.yaml"

// New 从 DefaultPath 加载配置，文件存在但无法解析时返回错误
func New() (*Config, error) {
	return Load(DefaultPath)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", strconv.Itoa(DefaultPort))
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("upload.max_memory", 32<<20)

	v.SetDefault("rembg.backend", rembg.BackendU2Net)
	v.SetDefault("rembg.model_path", "models/u2net.onnx")
	v.SetDefault("rembg.library_path", "")
	v.SetDefault("rembg.remote_url", "http://localhost:7000/api/remove")
	v.SetDefault("rembg.remote_field", "file")
	v.SetDefault("rembg.timeout", 60*time.Second)
	v.SetDefault("rembg.probe_schedule", "@every 1m")
}
