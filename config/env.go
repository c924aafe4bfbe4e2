package config

import "strings"

// 环境变量名
const (
	// EnvSession 默认会话名
	EnvSession = "ZEROEQ_SESSION"

	// EnvDiscoveryBackend 发现后端（mdns / memory / none）
	EnvDiscoveryBackend = "ZEROEQ_DISCOVERY"
)

// ApplyEnv 使用环境变量覆盖配置
//
// getenv 通常为 os.Getenv，测试中可注入。
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvSession)); v != "" {
		c.Session.Name = v
	}
	if v := strings.TrimSpace(getenv(EnvDiscoveryBackend)); v != "" {
		c.Discovery.Backend = strings.ToLower(v)
	}
}
