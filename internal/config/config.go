package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Risk   RiskConfig   `toml:"risk"`
	Mapper MapperConfig `toml:"mapper"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// RiskConfig 风险阈值配置
// 批次阈值与看板 KPI 阈值是两套独立口径，分开配置
type RiskConfig struct {
	BatchWatchRate float64 `toml:"batch_watch_rate"` // 不良率达到该值批次进入 watch
	BatchHighRate  float64 `toml:"batch_high_rate"`  // 不良率达到该值批次进入 high_risk
	KPIWatchDelta  float64 `toml:"kpi_watch_delta"`  // 不良率环比变化（百分点）的关注线
	KPIAlertDelta  float64 `toml:"kpi_alert_delta"`  // 不良率环比变化（百分点）的告警线
}

// MapperConfig 外部映射协作方配置
type MapperConfig struct {
	GeminiAPIKey   string  `toml:"gemini_api_key"`
	GeminiModel    string  `toml:"gemini_model"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MinConfidence  float64 `toml:"min_confidence"`
	CacheSize      int     `toml:"cache_size"`
}

// Timeout 协作方调用超时
func (m MapperConfig) Timeout() time.Duration {
	if m.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20310,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Risk: RiskConfig{
			BatchWatchRate: 0.08,
			BatchHighRate:  0.15,
			KPIWatchDelta:  0.5,
			KPIAlertDelta:  1.0,
		},
		Mapper: MapperConfig{
			GeminiModel:    "gemini-1.5-flash",
			TimeoutSeconds: 15,
			MinConfidence:  0.6,
			CacheSize:      128,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 配置文件不存在，使用默认配置
			applyEnvOverrides(config)
			return config, info, nil
		}
		return nil, info, err
	}

	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	applyEnvOverrides(config)

	return config, info, nil
}

// applyEnvOverrides 环境变量覆盖（用于 E2E / 本地运行）
func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("RAIS_GEMINI_API_KEY"); v != "" {
		config.Mapper.GeminiAPIKey = v
	}
	if v := os.Getenv("RAIS_GEMINI_MODEL"); v != "" {
		config.Mapper.GeminiModel = v
	}
	if v := os.Getenv("RAIS_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("RAIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
}

// LoadConfig 从 config.toml 加载配置
// 配置文件位于可执行文件同目录下
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 确保数据目录存在
// 数据目录位于可执行文件同目录下
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}
