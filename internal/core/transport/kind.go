package transport

// Kind 套接字类型
type Kind uint8

const (
	// KindPub 发布端（订阅感知）
	KindPub Kind = iota + 1
	// KindSub 订阅端
	KindSub
	// KindRouter 路由端（服务端）
	KindRouter
	// KindDealer 分发端（客户端）
	KindDealer
	// KindMonitor 监控旁路，不参与网络
	KindMonitor
)

// String 返回类型名
func (k Kind) String() string {
	switch k {
	case KindPub:
		return "PUB"
	case KindSub:
		return "SUB"
	case KindRouter:
		return "ROUTER"
	case KindDealer:
		return "DEALER"
	case KindMonitor:
		return "MONITOR"
	default:
		return "UNKNOWN"
	}
}

// Compatible 两种类型能否互连
func (k Kind) Compatible(peer Kind) bool {
	switch k {
	case KindPub:
		return peer == KindSub
	case KindSub:
		return peer == KindPub
	case KindRouter:
		return peer == KindDealer || peer == KindRouter
	case KindDealer:
		return peer == KindRouter || peer == KindDealer
	default:
		return false
	}
}

// networked 是否参与网络收发
func (k Kind) networked() bool {
	return k >= KindPub && k <= KindDealer
}
