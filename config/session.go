package config

import (
	"os"
	"os/user"
	"strings"
)

// FallbackSession 无法获取用户名时使用的会话名
const FallbackSession = "zeroeq"

// SessionConfig 会话配置
type SessionConfig struct {
	// Name 默认会话名
	//
	// 为空时按顺序取 ZEROEQ_SESSION、当前用户名、"zeroeq"。
	Name string `json:"name,omitempty"`
}

// DefaultSessionConfig 返回默认会话配置
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{}
}

// Validate 验证会话配置
func (c SessionConfig) Validate() error {
	return nil
}

// Resolve 返回实际使用的默认会话名
func (c SessionConfig) Resolve() string {
	if c.Name != "" {
		return c.Name
	}
	return DefaultSessionName()
}

// DefaultSessionName 计算进程默认会话名
func DefaultSessionName() string {
	if v := strings.TrimSpace(os.Getenv(EnvSession)); v != "" {
		return v
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return FallbackSession
}
