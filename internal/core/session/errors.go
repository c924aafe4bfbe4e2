package session

import "errors"

var (
	// ErrInvalidArgument 会话或地址参数无效
	ErrInvalidArgument = errors.New("session: invalid argument")

	// ErrUnavailable 需要发现服务但当前不可用
	ErrUnavailable = errors.New("session: discovery unavailable")
)
