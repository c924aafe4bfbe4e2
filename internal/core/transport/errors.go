package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrWouldBlock 接收队列为空
	ErrWouldBlock = errors.New("transport: would block")

	// ErrClosed 套接字已关闭
	ErrClosed = errors.New("transport: socket closed")

	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = errors.New("transport: invalid address")

	// ErrIncompatiblePeer 对端套接字类型不兼容
	ErrIncompatiblePeer = errors.New("transport: incompatible peer kind")

	// ErrBadGreeting 握手消息无效
	ErrBadGreeting = errors.New("transport: bad greeting")

	// ErrFrameTooLarge 帧超过大小限制
	ErrFrameTooLarge = errors.New("transport: frame too large")

	// ErrTooManyFrames 帧数超过限制
	ErrTooManyFrames = errors.New("transport: too many frames")

	// ErrEmptyMessage 空消息
	ErrEmptyMessage = errors.New("transport: empty message")

	// ErrBadEvent 监控消息格式错误
	ErrBadEvent = errors.New("transport: malformed monitor event")

	// ErrNotSupported 套接字类型不支持该操作
	ErrNotSupported = errors.New("transport: operation not supported")
)

// OpError 描述一次失败的套接字操作
type OpError struct {
	Op   string
	Addr string
	Err  error
}

func (e *OpError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
