package zeroeq

import (
	"bytes"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-zeroeq/internal/core/poller"
	"github.com/dep2p/go-zeroeq/internal/core/transport"
	"github.com/dep2p/go-zeroeq/pkg/types"
)

// 确保实现接口
var _ poller.Participant = (*Monitor)(nil)

// Monitor 观察 Publisher 或 Server 的新连接
//
// 发布者：开启订阅通知，统计订阅了新订阅者标记的对端；
// 服务端：读取连接事件旁路，统计 Connected 与 Accepted。
type Monitor struct {
	*Receiver

	sender Sender
	sock   *transport.Socket
	xpub   bool
	notify ConnectionFunc

	connections atomic.Uint64

	closeOnce sync.Once
}

// meerkatSubscription 新订阅者发出的订阅通知
var meerkatSubscription = append([]byte{1}, types.MeerkatTypeID.Bytes()...)

// NewMonitor 创建连接监控，每个新连接调用一次 fn（可为 nil）
func NewMonitor(sender Sender, fn ConnectionFunc, opts ...Option) (*Monitor, error) {
	const op = "NewMonitor"
	if sender == nil || sender.socket() == nil {
		return nil, configError(op, ErrInvalidArgument)
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, configError(op, err)
	}

	m := &Monitor{sender: sender, notify: fn}
	target := sender.socket()
	if target.Kind() == transport.KindPub {
		if err := target.SetVerbose(true); err != nil {
			return nil, configError(op, err)
		}
		m.sock = target
		m.xpub = true
	} else {
		if m.sock, err = target.Monitor(); err != nil {
			return nil, configError(op, err)
		}
	}

	if o.shared != nil {
		m.Receiver = o.shared.SharedReceiver()
	} else {
		_, cfg, err := endpointEnv(o)
		if err != nil {
			m.release()
			return nil, err
		}
		m.Receiver = NewReceiver(cfg.Receiver)
	}
	if err := m.add(poller.Entry{Socket: m.sock, Events: poller.EventIn, Owner: m}); err != nil {
		m.release()
		return nil, configError(op, err)
	}
	return m, nil
}

// Connections 返回已观察到的新连接数，只增不减
func (m *Monitor) Connections() uint64 {
	return m.connections.Load()
}

// Process 实现 poller.Participant
func (m *Monitor) Process(entry poller.Entry) error {
	frames, err := entry.Socket.Recv()
	if err != nil {
		return err
	}
	if m.xpub {
		m.processSubscription(frames)
		return nil
	}
	m.processEvent(frames)
	return nil
}

// processSubscription 订阅通知：1 字节标志 + 主题
func (m *Monitor) processSubscription(frames [][]byte) {
	msg := frames[0]
	if len(msg) == 0 {
		return
	}
	switch msg[0] {
	case 0:
	case 1:
		if bytes.Equal(msg, meerkatSubscription) {
			m.newConnection()
		}
	default:
		logger.Warn("未处理的订阅通知", "flag", msg[0])
	}
}

// processEvent 连接事件：[事件+值][地址]
func (m *Monitor) processEvent(frames [][]byte) {
	ev, _, addr, err := transport.DecodeEvent(frames)
	if err != nil {
		logger.Warn("无法解析监控事件", "err", err)
		return
	}
	switch ev {
	case transport.EventConnected, transport.EventAccepted:
		m.newConnection()
	default:
		logger.Debug("忽略监控事件", "event", ev, "addr", addr)
	}
}

func (m *Monitor) newConnection() {
	m.connections.Add(1)
	if m.notify != nil {
		m.notify()
	}
}

// release 归还对被观察套接字的改动
func (m *Monitor) release() {
	if m.xpub {
		_ = m.sock.SetVerbose(false)
		return
	}
	_ = m.sock.Close()
}

// Close 从接收器移除并停止观察
func (m *Monitor) Close() error {
	m.closeOnce.Do(func() {
		if m.Receiver != nil {
			m.remove(m)
		}
		m.release()
	})
	return nil
}
