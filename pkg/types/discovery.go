package types

import (
	"net"
	"strconv"
)

// ============================================================================
//                              发现事件
// ============================================================================

// PeerEventKind 发现事件类型
type PeerEventKind int

const (
	// PeerAdded 发现新的服务实例
	PeerAdded PeerEventKind = iota
	// PeerRemoved 服务实例消失
	PeerRemoved
)

// String 返回事件类型名
func (k PeerEventKind) String() string {
	switch k {
	case PeerAdded:
		return "added"
	case PeerRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// PeerEvent 浏览得到的服务实例事件
type PeerEvent struct {
	Kind     PeerEventKind
	Instance string
	Session  string
	Identity Identity
	Host     string
	Port     int
}

// Addr 返回 host:port
func (e PeerEvent) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// URI 返回对端地址
func (e PeerEvent) URI() URI {
	return URI{Scheme: DefaultScheme, Host: e.Host, Port: e.Port}
}

// Announcement 服务公告内容
type Announcement struct {
	Service  string
	Instance string
	Session  string
	Identity Identity
	Host     string
	Port     int
}
