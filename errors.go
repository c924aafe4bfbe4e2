package zeroeq

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-zeroeq/internal/core/poller"
	"github.com/dep2p/go-zeroeq/internal/core/session"
	"github.com/dep2p/go-zeroeq/internal/core/transport"
)

// 公共错误定义
var (
	// ErrInvalidArgument 会话、地址或选项无效
	ErrInvalidArgument = session.ErrInvalidArgument

	// ErrUnavailable 需要发现服务但当前不可用
	ErrUnavailable = session.ErrUnavailable

	// ErrReentrant 在处理回调中或并发调用 Receive
	ErrReentrant = poller.ErrReentrant

	// ErrClosed 端点已关闭
	ErrClosed = transport.ErrClosed

	// ErrNilHandler 回调为空
	ErrNilHandler = errors.New("zeroeq: nil handler")
)

// ConfigError 端点构造失败
type ConfigError struct {
	Op  string // 构造函数名
	Err error  // 原始错误
}

// Error 实现 error 接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("zeroeq: %s: %v", e.Op, e.Err)
}

// Unwrap 支持 errors.Is / errors.As
func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ConfigError{Op: op, Err: err}
}
