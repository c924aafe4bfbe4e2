package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-zeroeq/internal/core/transport"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/lib/log"
	"go.uber.org/multierr"
)

var logger = log.Logger("core/poller")

// Events 就绪掩码
type Events uint8

const (
	// EventIn 可读
	EventIn Events = 1 << iota
)

// Participant 参与轮询的端点
type Participant interface {
	// Process 处理一个就绪的套接字
	Process(entry Entry) error
}

// Updater 需要在轮询切片之间执行工作的端点
type Updater interface {
	Update()
}

// Entry 套接字条目
type Entry struct {
	Socket interfaces.Socket
	Events Events
	Owner  Participant
}

// DefaultUpdateInterval 默认切片间隔
const DefaultUpdateInterval = 100 * time.Millisecond

// Poller 轮询器
type Poller struct {
	clock    clock.Clock
	interval time.Duration

	mu       sync.Mutex
	entries  []Entry
	updaters []Updater

	busy atomic.Bool
}

// Option 轮询器选项
type Option func(*Poller)

// WithClock 注入时钟（测试使用 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(p *Poller) {
		p.clock = c
	}
}

// WithUpdateInterval 设置切片间隔
func WithUpdateInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// New 创建轮询器
func New(opts ...Option) *Poller {
	p := &Poller{
		clock:    clock.New(),
		interval: DefaultUpdateInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add 追加条目
func (p *Poller) Add(entries ...Entry) error {
	for _, e := range entries {
		if e.Owner == nil {
			return ErrNilOwner
		}
	}
	p.mu.Lock()
	p.entries = append(p.entries, entries...)
	p.mu.Unlock()
	return nil
}

// AddUpdater 登记没有套接字条目的更新钩子
//
// 端点尚未持有套接字时（例如只靠会话浏览的客户端）也需要在每个切片执行 Update。
// 已登记或已有条目的端点不会重复执行。
func (p *Poller) AddUpdater(u Updater) error {
	if u == nil {
		return ErrNilOwner
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, x := range p.updaters {
		if x == u {
			return nil
		}
	}
	p.updaters = append(p.updaters, u)
	return nil
}

// RemoveOwner 移除某个端点的全部条目与更新钩子，返回移除的条目数量
func (p *Poller) RemoveOwner(owner Participant) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	updaters := p.updaters[:0]
	for _, u := range p.updaters {
		if any(u) != any(owner) {
			updaters = append(updaters, u)
		}
	}
	for i := len(updaters); i < len(p.updaters); i++ {
		p.updaters[i] = nil
	}
	p.updaters = updaters

	kept := p.entries[:0]
	removed := 0
	for _, e := range p.entries {
		if e.Owner == owner {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(p.entries); i++ {
		p.entries[i] = Entry{}
	}
	p.entries = kept
	return removed
}

// Entries 返回条目快照
func (p *Poller) Entries() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Entry(nil), p.entries...)
}

// Len 返回条目数量
func (p *Poller) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Receive 等待并分发就绪套接字
//
// timeout 为 0 时只轮询一次，为负时无限等待。
// 至少分发了一个套接字时返回 true，超时返回 false。
func (p *Poller) Receive(timeout time.Duration) (bool, error) {
	return p.receive(context.Background(), timeout)
}

// ReceiveContext 与 Receive 相同，但可由 ctx 取消
func (p *Poller) ReceiveContext(ctx context.Context) (bool, error) {
	return p.receive(ctx, -1)
}

// ReceiveTimeout 同时受 ctx 与 timeout 约束
func (p *Poller) ReceiveTimeout(ctx context.Context, timeout time.Duration) (bool, error) {
	return p.receive(ctx, timeout)
}

func (p *Poller) receive(ctx context.Context, timeout time.Duration) (bool, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return false, ErrReentrant
	}
	defer p.busy.Store(false)

	if timeout == 0 {
		p.update()
		return p.pollOnce(ctx, 0)
	}

	deadline := p.clock.Now().Add(timeout)
	for {
		p.update()

		wait := p.interval
		if timeout > 0 {
			remaining := deadline.Sub(p.clock.Now())
			if remaining <= 0 {
				return p.pollOnce(ctx, 0)
			}
			if remaining < wait {
				wait = remaining
			}
		}

		ok, err := p.pollOnce(ctx, wait)
		if ok || err != nil {
			return ok, err
		}
		if timeout > 0 && !p.clock.Now().Before(deadline) {
			return false, nil
		}
	}
}

// update 执行所有端点的更新钩子（每个端点一次）
func (p *Poller) update() {
	p.mu.Lock()
	updaters := append([]Updater(nil), p.updaters...)
	p.mu.Unlock()
	for _, e := range p.Entries() {
		if u, ok := e.Owner.(Updater); ok {
			updaters = append(updaters, u)
		}
	}

	seen := make(map[any]struct{})
	for _, u := range updaters {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		u.Update()
	}
}

// pollOnce 等待至多 wait，分发就绪套接字
func (p *Poller) pollOnce(ctx context.Context, wait time.Duration) (bool, error) {
	var entries []Entry
	for _, e := range p.Entries() {
		if e.Events&EventIn != 0 {
			entries = append(entries, e)
		}
	}
	items := make([]interfaces.Pollable, len(entries))
	for i, e := range entries {
		items[i] = e.Socket
	}

	ready := transport.Ready(items)
	if len(ready) == 0 && wait > 0 {
		timer := p.clock.Timer(wait)
		var err error
		ready, err = transport.WaitAny(ctx, items, timer.C)
		timer.Stop()
		if err != nil {
			return false, err
		}
	}
	if len(ready) == 0 {
		return false, ctx.Err()
	}

	var errs error
	dispatched := false
	for _, i := range ready {
		e := entries[i]
		// 分发过程中端点可能已被销毁
		if !p.registered(e) {
			continue
		}
		dispatched = true
		if err := e.Owner.Process(e); err != nil && !errors.Is(err, transport.ErrWouldBlock) {
			logger.Warn("处理就绪套接字失败", "err", err)
			errs = multierr.Append(errs, err)
		}
	}
	return dispatched, errs
}

func (p *Poller) registered(e Entry) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, x := range p.entries {
		if x.Owner == e.Owner && x.Socket == e.Socket {
			return true
		}
	}
	return false
}
