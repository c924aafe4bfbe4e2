// Package config 提供 zeroeq 的统一配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//   - 支持环境变量覆盖（ZEROEQ_SESSION 等）
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Discovery.Backend = config.BackendMemory
//
//	// 从 JSON 文件加载
//	cfg, err := config.LoadFile("zeroeq.json")
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/multierr"
)

// Config 是 zeroeq 的完整配置结构
//
// 配置按照功能模块组织：
//   - Session: 默认会话
//   - Discovery: 节点发现（mDNS / 内存）
//   - Transport: 帧传输
//   - Receiver: 轮询器
type Config struct {
	// Session 会话配置
	Session SessionConfig `json:"session"`

	// Discovery 节点发现配置
	Discovery DiscoveryConfig `json:"discovery"`

	// Transport 传输层配置
	Transport TransportConfig `json:"transport"`

	// Receiver 轮询器配置
	Receiver ReceiverConfig `json:"receiver"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Session:   DefaultSessionConfig(),
		Discovery: DefaultDiscoveryConfig(),
		Transport: DefaultTransportConfig(),
		Receiver:  DefaultReceiverConfig(),
	}
}

// Validate 验证配置的有效性
//
// 所有子配置的错误合并返回。
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	return multierr.Combine(
		c.Session.Validate(),
		c.Discovery.Validate(),
		c.Transport.Validate(),
		c.Receiver.Validate(),
	)
}

// Clone 深拷贝配置
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保持默认值。
//
// 示例 JSON:
//
//	{
//	  "session": {"name": "lab"},
//	  "discovery": {"backend": "memory"},
//	  "transport": {"send_hwm": 5000}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return cfg, nil
}

// ToJSON 序列化为带缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// LoadFile 从 JSON 文件加载配置，并应用环境变量覆盖
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
