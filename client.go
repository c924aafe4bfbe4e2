package zeroeq

import (
	"fmt"
	"sync"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/core/poller"
	"github.com/dep2p/go-zeroeq/internal/core/session"
	"github.com/dep2p/go-zeroeq/internal/core/transport"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
	"go.uber.org/multierr"
)

// 确保实现接口
var (
	_ poller.Participant = (*Client)(nil)
	_ poller.Updater     = (*Client)(nil)
)

// Client 向一个或多个 Server 发出请求
//
// 每个服务端使用独立的连接，请求发往所有已知服务端，
// 同一请求只有第一条应答触发回调。
type Client struct {
	*Receiver

	identity Identity
	cfg      *config.Config
	session  string
	browser  *session.Browser

	servers []*transport.Socket
	pending map[TypeID]ReplyFunc

	// 尚无服务端时发出的请求，连上第一个服务端后发送
	backlog [][][]byte

	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// NewClient 创建客户端
//
// WithServers 给出的地址直接连接；会话通过 _zeroeq_rep._tcp 浏览。
func NewClient(opts ...Option) (*Client, error) {
	const op = "NewClient"
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

	c := &Client{
		Receiver: receiverFor(o, cfg),
		identity: r.Identity(),
		cfg:      cfg,
		session:  plan.Session,
		pending:  make(map[TypeID]ReplyFunc),
	}
	for _, u := range plan.Direct {
		if err := c.connect(u); err != nil {
			_ = c.Close()
			return nil, configError(op, err)
		}
	}
	if plan.Browse {
		if c.browser, err = r.res.Browse(interfaces.ServiceServer, plan.Session); err != nil {
			_ = c.Close()
			return nil, configError(op, err)
		}
		// 尚无服务端连接时也要在每个切片浏览
		if err := c.addUpdater(c); err != nil {
			_ = c.Close()
			return nil, configError(op, err)
		}
	}

	logger.Debug("客户端已创建", "servers", len(plan.Direct), "session", plan.Session, "browse", plan.Browse)
	return c, nil
}

// connect 为服务端创建连接并注册到接收器
func (c *Client) connect(u types.URI) error {
	sock := transport.New(transport.KindDealer,
		transport.WithConfig(c.cfg.Transport),
		transport.WithIdentity([]byte(c.identity)),
	)
	if err := sock.Connect(u.HostPort()); err != nil {
		_ = sock.Close()
		return err
	}
	if err := c.add(poller.Entry{Socket: sock, Events: poller.EventIn, Owner: c}); err != nil {
		_ = sock.Close()
		return err
	}
	c.servers = append(c.servers, sock)

	for _, msg := range c.backlog {
		if err := sock.Send(msg); err != nil {
			logger.Warn("发送积压请求失败", "uri", u.String(), "err", err)
		}
	}
	c.backlog = nil
	return nil
}

// Session 返回浏览的会话名，未浏览时为 NullSession
func (c *Client) Session() string {
	return c.session
}

// Servers 返回已连接的服务端数量
func (c *Client) Servers() int {
	return len(c.servers)
}

// Pending 返回未应答的请求数量
func (c *Client) Pending() int {
	return len(c.pending)
}

// Request 发出请求，应答在 Receive 中交给 fn
//
// payload 为 nil 时请求不带负载帧。请求没有超时，未应答的回调一直保留。
// 发往所有服务端都失败时返回错误；部分失败只记录日志。
func (c *Client) Request(id TypeID, payload []byte, fn ReplyFunc) error {
	if fn == nil {
		return ErrNilHandler
	}
	if c.closed {
		return ErrClosed
	}
	corr := types.NewTypeID()
	msg := [][]byte{corr.Bytes(), id.Bytes()}
	if payload != nil {
		msg = append(msg, payload)
	}

	if len(c.servers) == 0 {
		if len(c.backlog) >= c.cfg.Transport.SendHWM {
			return fmt.Errorf("request %s: %w", id.ShortString(), transport.ErrWouldBlock)
		}
		c.backlog = append(c.backlog, msg)
	}
	var errs error
	sent := 0
	for _, sock := range c.servers {
		if err := sock.Send(msg); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		sent++
	}
	// 只要有一个服务端收到请求就等待应答
	if len(c.servers) > 0 && sent == 0 {
		return fmt.Errorf("request %s: %w", id.ShortString(), errs)
	}
	if errs != nil {
		logger.Warn("部分服务端发送请求失败", "request", corr.ShortString(), "failed", len(c.servers)-sent, "err", errs)
	}
	c.pending[corr] = fn
	return nil
}

// RequestObject 以可序列化对象发出请求
func (c *Client) RequestObject(obj Serializable, fn ReplyFunc) error {
	data, err := payloadOf(obj)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", obj.TypeName(), err)
	}
	return c.Request(obj.TypeID(), data, fn)
}

// Update 实现 poller.Updater，连接新发现的服务端
func (c *Client) Update() {
	if c.browser == nil {
		return
	}
	for _, u := range c.browser.Poll() {
		if err := c.connect(u); err != nil {
			logger.Warn("连接服务端失败", "uri", u.String(), "err", err)
		}
	}
}

// Process 实现 poller.Participant
//
// 应答：[关联 ID][应答 TypeID][负载?]
func (c *Client) Process(entry poller.Entry) error {
	frames, err := entry.Socket.Recv()
	if err != nil {
		return err
	}
	if len(frames) < 2 || len(frames) > 3 {
		logger.Warn("丢弃格式错误的应答", "frames", len(frames))
		return nil
	}
	corr, err := types.TypeIDFromBytes(frames[0])
	if err != nil {
		logger.Warn("丢弃格式错误的应答", "err", err)
		return nil
	}
	replyType, err := types.TypeIDFromBytes(frames[1])
	if err != nil {
		logger.Warn("丢弃格式错误的应答", "err", err)
		return nil
	}

	fn, ok := c.pending[corr]
	if !ok {
		logger.Debug("丢弃未知或已完成请求的应答", "request", corr.ShortString())
		return nil
	}
	delete(c.pending, corr)

	var payload []byte
	if len(frames) == 3 {
		payload = frames[2]
	}
	fn(replyType, payload)
	return nil
}

// Close 从接收器移除并关闭所有连接
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed = true
		c.remove(c)
		if c.browser != nil {
			c.browser.Close()
		}
		for _, sock := range c.servers {
			c.closeErr = multierr.Append(c.closeErr, sock.Close())
		}
		c.servers = nil
	})
	return c.closeErr
}
