package types

import "fmt"

const (
	// NullSession 禁用发现的保留会话名（不公告、不浏览，只使用直连地址）
	NullSession = "__null_session"

	// DefaultSession 使用默认会话名（ZEROEQ_SESSION 环境变量或当前用户名）
	DefaultSession = "__zeroeq"
)

// ValidateSession 校验会话名
//
// 空字符串（区别于 NullSession）始终是无效参数。
func ValidateSession(session string) error {
	if session == "" {
		return fmt.Errorf("%w: empty session", ErrInvalidSession)
	}
	return nil
}

// IsDiscoveryDisabled 会话是否禁用发现
func IsDiscoveryDisabled(session string) bool {
	return session == NullSession
}
