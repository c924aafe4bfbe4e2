package mdns

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrAlreadyClosed 服务已关闭
	ErrAlreadyClosed = errors.New("mdns: already closed")

	// ErrInvalidName 服务名或实例名无效
	ErrInvalidName = errors.New("mdns: invalid name")

	// ErrNoAddresses 没有可公告的地址
	ErrNoAddresses = errors.New("mdns: no addresses to announce")
)

// MDNSError mDNS 操作错误
type MDNSError struct {
	Op      string // 操作名称
	Err     error  // 原始错误
	Message string // 错误信息
}

// Error 实现 error 接口
func (e *MDNSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mdns: %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("mdns: %s: %s", e.Op, e.Message)
}

// Unwrap 支持 errors.Unwrap
func (e *MDNSError) Unwrap() error {
	return e.Err
}
