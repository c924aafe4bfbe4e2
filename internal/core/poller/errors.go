package poller

import "errors"

var (
	// ErrReentrant 在分发回调中或并发调用 Receive
	ErrReentrant = errors.New("poller: receive already in progress")

	// ErrNilOwner 条目缺少所属端点
	ErrNilOwner = errors.New("poller: entry without owner")
)
