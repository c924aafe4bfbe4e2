package session

import (
	"context"

	"github.com/dep2p/go-zeroeq/pkg/types"
)

// Browser 会话浏览
//
// 只保留同一会话且来自其他进程的实例，每个地址在离开前只报告一次。
type Browser struct {
	service string
	session string
	self    types.Identity

	events <-chan types.PeerEvent
	cancel context.CancelFunc
	known  map[string]struct{}
}

// Browse 开始浏览服务类型，结果通过 Poll 取出
func (r *Resolver) Browse(service, session string) (*Browser, error) {
	if !r.available() {
		return nil, ErrUnavailable
	}
	ctx, cancel := context.WithCancel(context.Background())
	events, err := r.discovery.Browse(ctx, service)
	if err != nil {
		cancel()
		return nil, err
	}
	log.Debug("开始浏览会话", "service", service, "session", session)
	return &Browser{
		service: service,
		session: session,
		self:    r.identity,
		events:  events,
		cancel:  cancel,
		known:   make(map[string]struct{}),
	}, nil
}

// Session 返回浏览的会话名
func (b *Browser) Session() string {
	return b.session
}

// Poll 非阻塞取出新发现的地址
func (b *Browser) Poll() []types.URI {
	var found []types.URI
	for {
		select {
		case ev, ok := <-b.events:
			if !ok {
				return found
			}
			if u, ok := b.accept(ev); ok {
				found = append(found, u)
			}
		default:
			return found
		}
	}
}

// accept 过滤单个发现事件
func (b *Browser) accept(ev types.PeerEvent) (types.URI, bool) {
	if ev.Session != b.session {
		return types.URI{}, false
	}
	if !b.self.IsEmpty() && ev.Identity == b.self {
		log.Debug("忽略本进程的公告", "instance", ev.Instance)
		return types.URI{}, false
	}
	addr := ev.Addr()
	if ev.Kind == types.PeerRemoved {
		// 同一地址重新公告时再次报告
		delete(b.known, addr)
		log.Debug("实例已离开", "instance", ev.Instance, "addr", addr)
		return types.URI{}, false
	}
	if _, dup := b.known[addr]; dup {
		return types.URI{}, false
	}
	b.known[addr] = struct{}{}
	log.Info("发现会话实例", "service", b.service, "session", b.session, "addr", addr)
	return ev.URI(), true
}

// Close 停止浏览
func (b *Browser) Close() {
	b.cancel()
}
