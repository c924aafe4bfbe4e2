package zeroeq

import (
	"sync"

	"github.com/dep2p/go-zeroeq/internal/core/poller"
	"github.com/dep2p/go-zeroeq/internal/core/session"
	"github.com/dep2p/go-zeroeq/internal/core/transport"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
	"go.uber.org/multierr"
)

// 确保实现接口
var (
	_ poller.Participant = (*Subscriber)(nil)
	_ poller.Updater     = (*Subscriber)(nil)
)

// subscription 订阅表条目，三种回调只设置一种
type subscription struct {
	event   EventFunc
	payload EventPayloadFunc
	object  Serializable
}

// Subscriber 订阅一个或多个 Publisher 的事件
//
// 带端口的地址直接连接；会话通过发现服务浏览，迟到的发布者在
// Receive 期间连接。
type Subscriber struct {
	*Receiver

	sock    *transport.Socket
	session string
	browser *session.Browser

	subs map[TypeID]subscription

	closeOnce sync.Once
	closeErr  error
}

// NewSubscriber 创建订阅者
func NewSubscriber(opts ...Option) (*Subscriber, error) {
	const op = "NewSubscriber"
	o, err := applyOptions(opts)
	if err != nil {
		return nil, configError(op, err)
	}
	r, cfg, err := endpointEnv(o)
	if err != nil {
		return nil, err
	}
	plan, err := r.res.ResolveConnect(o.request())
	if err != nil {
		return nil, configError(op, err)
	}

	s := &Subscriber{
		sock: transport.New(transport.KindSub,
			transport.WithConfig(cfg.Transport),
			transport.WithIdentity([]byte(r.Identity())),
		),
		session: plan.Session,
		subs:    make(map[TypeID]subscription),
	}

	// 让发布端的监控感知新订阅者
	if err := s.sock.Subscribe(types.MeerkatTypeID.Bytes()); err != nil {
		_ = s.sock.Close()
		return nil, configError(op, err)
	}
	for _, u := range plan.Direct {
		if err := s.sock.Connect(u.HostPort()); err != nil {
			_ = s.sock.Close()
			return nil, configError(op, err)
		}
	}
	if plan.Browse {
		if s.browser, err = r.res.Browse(interfaces.ServicePublisher, plan.Session); err != nil {
			_ = s.sock.Close()
			return nil, configError(op, err)
		}
	}

	s.Receiver = receiverFor(o, cfg)
	if err := s.add(poller.Entry{Socket: s.sock, Events: poller.EventIn, Owner: s}); err != nil {
		_ = s.Close()
		return nil, configError(op, err)
	}

	logger.Debug("订阅者已创建", "direct", len(plan.Direct), "session", plan.Session, "browse", plan.Browse)
	return s, nil
}

// Session 返回浏览的会话名，未浏览时为 NullSession
func (s *Subscriber) Session() string {
	return s.session
}

// Subscribe 订阅带负载事件，已订阅时返回 false
func (s *Subscriber) Subscribe(id TypeID, fn EventPayloadFunc) bool {
	if fn == nil {
		return false
	}
	return s.insert(id, subscription{payload: fn})
}

// SubscribeEvent 订阅无负载事件，已订阅时返回 false
func (s *Subscriber) SubscribeEvent(id TypeID, fn EventFunc) bool {
	if fn == nil {
		return false
	}
	return s.insert(id, subscription{event: fn})
}

// SubscribeObject 订阅对象更新，收到事件时调用 obj.FromBinary
func (s *Subscriber) SubscribeObject(obj Serializable) bool {
	if obj == nil {
		return false
	}
	return s.insert(obj.TypeID(), subscription{object: obj})
}

// Unsubscribe 取消订阅，未订阅时返回 false
func (s *Subscriber) Unsubscribe(id TypeID) bool {
	if _, ok := s.subs[id]; !ok {
		return false
	}
	delete(s.subs, id)
	if err := s.sock.Unsubscribe(id.Bytes()); err != nil {
		logger.Warn("取消传输层订阅失败", "type", id.ShortString(), "err", err)
	}
	return true
}

// UnsubscribeObject 取消对象订阅，只有同一对象的订阅可被取消
func (s *Subscriber) UnsubscribeObject(obj Serializable) bool {
	if obj == nil {
		return false
	}
	entry, ok := s.subs[obj.TypeID()]
	if !ok || entry.object != obj {
		return false
	}
	return s.Unsubscribe(obj.TypeID())
}

func (s *Subscriber) insert(id TypeID, entry subscription) bool {
	if _, ok := s.subs[id]; ok {
		return false
	}
	if err := s.sock.Subscribe(id.Bytes()); err != nil {
		logger.Warn("传输层订阅失败", "type", id.ShortString(), "err", err)
		return false
	}
	s.subs[id] = entry
	return true
}

// Update 实现 poller.Updater，连接新发现的发布者
func (s *Subscriber) Update() {
	if s.browser == nil {
		return
	}
	for _, u := range s.browser.Poll() {
		if err := s.sock.Connect(u.HostPort()); err != nil {
			logger.Warn("连接发布者失败", "uri", u.String(), "err", err)
		}
	}
}

// Process 实现 poller.Participant，每次分发一条消息
func (s *Subscriber) Process(entry poller.Entry) error {
	frames, err := entry.Socket.Recv()
	if err != nil {
		return err
	}
	id, err := types.TypeIDFromBytes(frames[0])
	if err != nil || len(frames) > 2 {
		logger.Warn("丢弃格式错误的事件", "frames", len(frames))
		return nil
	}
	handler, ok := s.subs[id]
	if !ok {
		return nil
	}

	var payload []byte
	if len(frames) == 2 {
		payload = frames[1]
	}
	switch {
	case handler.event != nil:
		handler.event()
	case handler.payload != nil:
		handler.payload(payload)
	case handler.object != nil:
		if err := handler.object.FromBinary(payload); err != nil {
			logger.Warn("反序列化事件失败", "type", handler.object.TypeName(), "err", err)
		}
	}
	return nil
}

// Close 从接收器移除并关闭套接字
func (s *Subscriber) Close() error {
	s.closeOnce.Do(func() {
		if s.Receiver != nil {
			s.remove(s)
		}
		if s.browser != nil {
			s.browser.Close()
		}
		s.closeErr = multierr.Append(s.closeErr, s.sock.Close())
	})
	return s.closeErr
}
