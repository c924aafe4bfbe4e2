package zeroeq

import (
	"context"
	"time"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/core/poller"
	"github.com/dep2p/go-zeroeq/pkg/lib/log"
)

var logger = log.Logger("zeroeq")

// Shared 可共享接收器的对象
//
// Receiver 与所有嵌入 Receiver 的端点都实现该接口。
type Shared interface {
	SharedReceiver() *Receiver
}

// Receiver 驱动一组端点的接收器
//
// Receive 阻塞到任一已注册套接字可读或超时，然后在调用方 goroutine 中
// 依次分发就绪套接字。不允许重入或并发调用 Receive。
type Receiver struct {
	p *poller.Poller
}

// NewReceiver 创建独立的接收器
func NewReceiver(cfg config.ReceiverConfig) *Receiver {
	return &Receiver{
		p: poller.New(poller.WithUpdateInterval(cfg.UpdateInterval.Duration())),
	}
}

// receiverFor 返回共享接收器或新建接收器
func receiverFor(o *options, cfg *config.Config) *Receiver {
	if o.shared != nil {
		return o.shared.SharedReceiver()
	}
	return NewReceiver(cfg.Receiver)
}

// SharedReceiver 实现 Shared
func (r *Receiver) SharedReceiver() *Receiver {
	return r
}

// Receive 接收并分发一次
//
// timeout 为 0 时只轮询一次，为负时无限等待。
// 分发了至少一个套接字时返回 true，超时返回 false。
// 错误只在重入调用或处理回调失败时返回。
func (r *Receiver) Receive(timeout time.Duration) (bool, error) {
	return r.p.Receive(timeout)
}

// ReceiveContext 无限等待直到分发或 ctx 结束
func (r *Receiver) ReceiveContext(ctx context.Context) (bool, error) {
	return r.p.ReceiveContext(ctx)
}

// ReceiveTimeout 同时受 ctx 与 timeout 约束
func (r *Receiver) ReceiveTimeout(ctx context.Context, timeout time.Duration) (bool, error) {
	return r.p.ReceiveTimeout(ctx, timeout)
}

// Len 已注册的套接字条目数
func (r *Receiver) Len() int {
	return r.p.Len()
}

func (r *Receiver) add(entries ...poller.Entry) error {
	return r.p.Add(entries...)
}

func (r *Receiver) addUpdater(u poller.Updater) error {
	return r.p.AddUpdater(u)
}

func (r *Receiver) remove(owner poller.Participant) {
	r.p.RemoveOwner(owner)
}
