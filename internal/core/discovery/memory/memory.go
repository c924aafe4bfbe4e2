// Package memory 提供进程内会话发现
//
// 同一个 Network 上的 Discovery 实例彼此可见，用于测试与单机部署。
// 公告立即推送给已有浏览者，新浏览者先收到现存实例的回放。
package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-zeroeq/internal/util/logger"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
)

var log = logger.Logger("discovery.memory")

// ErrClosed 发现服务已关闭
var ErrClosed = errors.New("memory discovery: closed")

// LoopbackHost 公告未给出主机时使用的地址
const LoopbackHost = "127.0.0.1"

// 确保实现接口
var _ interfaces.Discovery = (*Discovery)(nil)

// Network 进程内公告表
type Network struct {
	mu       sync.Mutex
	regs     map[*registration]struct{}
	browsers map[*browser]struct{}
}

// NewNetwork 创建独立的公告表
func NewNetwork() *Network {
	return &Network{
		regs:     make(map[*registration]struct{}),
		browsers: make(map[*browser]struct{}),
	}
}

var defaultNetwork = NewNetwork()

// DefaultNetwork 返回进程级共享公告表
func DefaultNetwork() *Network {
	return defaultNetwork
}

// Len 当前公告数量
func (n *Network) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.regs)
}

func (n *Network) add(r *registration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.regs[r] = struct{}{}
	for b := range n.browsers {
		if b.service == r.ann.Service {
			b.push(r.event(types.PeerAdded))
		}
	}
}

func (n *Network) remove(r *registration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.regs[r]; !ok {
		return
	}
	delete(n.regs, r)
	for b := range n.browsers {
		if b.service == r.ann.Service {
			b.push(r.event(types.PeerRemoved))
		}
	}
}

func (n *Network) watch(b *browser) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.browsers[b] = struct{}{}
	for r := range n.regs {
		if r.ann.Service == b.service {
			b.push(r.event(types.PeerAdded))
		}
	}
}

func (n *Network) unwatch(b *browser) {
	n.mu.Lock()
	delete(n.browsers, b)
	n.mu.Unlock()
}

// Discovery 进程内发现服务
type Discovery struct {
	net         *Network
	unavailable atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
	regs   map[*registration]struct{}
}

// New 创建挂在 net 上的发现服务，net 为 nil 时使用 DefaultNetwork
func New(net *Network) *Discovery {
	if net == nil {
		net = defaultNetwork
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Discovery{
		net:    net,
		ctx:    ctx,
		cancel: cancel,
		regs:   make(map[*registration]struct{}),
	}
}

// SetAvailable 切换可用状态，用于模拟发现服务不可用
func (d *Discovery) SetAvailable(on bool) {
	d.unavailable.Store(!on)
}

// IsAvailable 实现 interfaces.Discovery
func (d *Discovery) IsAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && !d.unavailable.Load()
}

// Announce 实现 interfaces.Discovery
func (d *Discovery) Announce(_ context.Context, ann types.Announcement) (interfaces.Registration, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrClosed
	}
	if ann.Host == "" {
		ann.Host = LoopbackHost
	}
	r := &registration{d: d, ann: ann}
	d.regs[r] = struct{}{}
	d.mu.Unlock()

	d.net.add(r)
	log.Debug("已公告", "service", ann.Service, "session", ann.Session, "host", ann.Host, "port", ann.Port)
	return r, nil
}

// Browse 实现 interfaces.Discovery
func (d *Discovery) Browse(ctx context.Context, service string) (<-chan types.PeerEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	b := &browser{
		service: service,
		out:     make(chan types.PeerEvent, 16),
		wake:    make(chan struct{}, 1),
	}
	d.net.watch(b)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.net.unwatch(b)
		b.run(ctx, d.ctx)
	}()
	return b.out, nil
}

// Close 实现 interfaces.Discovery
func (d *Discovery) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	regs := make([]*registration, 0, len(d.regs))
	for r := range d.regs {
		regs = append(regs, r)
	}
	d.mu.Unlock()

	for _, r := range regs {
		_ = r.Close()
	}
	d.cancel()
	d.wg.Wait()
	return nil
}

// registration 一次进程内公告
type registration struct {
	d    *Discovery
	ann  types.Announcement
	once sync.Once
}

func (r *registration) Announcement() types.Announcement {
	return r.ann
}

func (r *registration) Close() error {
	r.once.Do(func() {
		r.d.mu.Lock()
		delete(r.d.regs, r)
		r.d.mu.Unlock()
		r.d.net.remove(r)
	})
	return nil
}

func (r *registration) event(kind types.PeerEventKind) types.PeerEvent {
	return types.PeerEvent{
		Kind:     kind,
		Instance: r.ann.Instance,
		Session:  r.ann.Session,
		Identity: r.ann.Identity,
		Host:     r.ann.Host,
		Port:     r.ann.Port,
	}
}

// browser 一个浏览者的事件队列
type browser struct {
	service string
	out     chan types.PeerEvent
	wake    chan struct{}

	mu    sync.Mutex
	queue []types.PeerEvent
}

// push 入队，不阻塞公告方
func (b *browser) push(ev types.PeerEvent) {
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	b.mu.Unlock()
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *browser) take() []types.PeerEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queue
	b.queue = nil
	return q
}

func (b *browser) run(ctx, closing context.Context) {
	defer close(b.out)
	for {
		for _, ev := range b.take() {
			select {
			case b.out <- ev:
			case <-ctx.Done():
				return
			case <-closing.Done():
				return
			}
		}
		select {
		case <-b.wake:
		case <-ctx.Done():
			return
		case <-closing.Done():
			return
		}
	}
}
