package interfaces

import (
	"context"

	"github.com/dep2p/go-zeroeq/pkg/types"
)

// 服务类型
const (
	// ServicePublisher 发布者公告的服务类型
	ServicePublisher = "_zeroeq_pub._tcp"

	// ServiceServer 请求服务端公告的服务类型
	ServiceServer = "_zeroeq_rep._tcp"
)

// Discovery 定义会话发现服务
//
// 发布侧调用 Announce 广播自己的地址，订阅侧调用 Browse 获取同会话实例。
// Browse 返回的事件流在 ctx 取消或服务关闭时关闭，迟到的实例同样会推送。
type Discovery interface {
	// IsAvailable 发现服务当前是否可用
	IsAvailable() bool

	// Announce 公告服务实例
	//
	// 返回的 Registration 关闭时撤销公告。
	Announce(ctx context.Context, ann types.Announcement) (Registration, error)

	// Browse 浏览指定服务类型的实例
	Browse(ctx context.Context, service string) (<-chan types.PeerEvent, error)

	// Close 关闭发现服务，撤销全部公告
	Close() error
}

// Registration 一次服务公告
type Registration interface {
	// Announcement 返回公告内容
	Announcement() types.Announcement

	// Close 撤销公告
	Close() error
}
