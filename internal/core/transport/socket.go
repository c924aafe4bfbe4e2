package transport

import (
	"context"
	"encoding/binary"
	"net"
	"strings"
	"sync"

	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/lib/log"
	"go.uber.org/multierr"
)

var logger = log.Logger("core/transport")

// 确保实现接口
var _ interfaces.Socket = (*Socket)(nil)

// Socket 多帧消息套接字
type Socket struct {
	kind Kind
	opts Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	closed    bool
	listeners []net.Listener
	pipes     []*pipe
	rr        int
	conns     map[net.Conn]struct{}
	routes    map[string]*pipe
	nextRoute uint32
	subs      prefixSet
	verbose   bool

	inbox  [][][]byte
	notify chan struct{}

	monitor *Socket
}

// New 创建套接字
func New(kind Kind, opts ...Option) *Socket {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.normalize()

	ctx, cancel := context.WithCancel(context.Background())
	return &Socket{
		kind:   kind,
		opts:   o,
		ctx:    ctx,
		cancel: cancel,
		conns:  make(map[net.Conn]struct{}),
		routes: make(map[string]*pipe),
		subs:   make(prefixSet),
		notify: make(chan struct{}, 1),
	}
}

// Kind 返回套接字类型
func (s *Socket) Kind() Kind {
	return s.kind
}

// ============================================================================
//                              绑定与连接
// ============================================================================

// Bind 监听地址
//
// 地址格式为 [tcp://]host:port，host 为空或 "*" 时监听所有接口，
// 返回实际监听地址。
func (s *Socket) Bind(addr string) (string, error) {
	if !s.kind.networked() {
		return "", ErrNotSupported
	}
	hostport, err := normalizeAddr(addr, true)
	if err != nil {
		return "", &OpError{Op: "bind", Addr: addr, Err: err}
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(s.ctx, "tcp", hostport)
	if err != nil {
		s.emit(EventBindFailed, 0, addr)
		return "", &OpError{Op: "bind", Addr: addr, Err: err}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return "", ErrClosed
	}
	s.listeners = append(s.listeners, ln)
	s.wg.Add(1)
	s.mu.Unlock()

	bound := ln.Addr().String()
	s.emit(EventListening, 0, bound)
	logger.Debug("套接字已监听", "kind", s.kind, "addr", bound)

	go s.acceptLoop(ln)
	return bound, nil
}

// Connect 异步连接远端
//
// 发送管道立即可用，连接建立前的消息在管道中排队。
func (s *Socket) Connect(addr string) error {
	if !s.kind.networked() {
		return ErrNotSupported
	}
	hostport, err := normalizeAddr(addr, false)
	if err != nil {
		return &OpError{Op: "connect", Addr: addr, Err: err}
	}

	p := newPipe(s, hostport, true)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.pipes = append(s.pipes, p)
	s.wg.Add(1)
	s.mu.Unlock()

	go s.dialLoop(p)
	return nil
}

// normalizeAddr 去除 scheme 并校验 host:port
func normalizeAddr(addr string, bind bool) (string, error) {
	addr = strings.TrimPrefix(addr, "tcp://")
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", ErrInvalidAddress
	}
	if host == "*" {
		if !bind {
			return "", ErrInvalidAddress
		}
		host = ""
	}
	if port == "" || (!bind && (host == "" || port == "0")) {
		return "", ErrInvalidAddress
	}
	return net.JoinHostPort(host, port), nil
}

func (s *Socket) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.ctx.Err() == nil {
				logger.Debug("停止接受连接", "addr", ln.Addr(), "err", err)
			}
			s.emit(EventClosed, 0, ln.Addr().String())
			return
		}

		p := newPipe(s, conn.RemoteAddr().String(), false)
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			continue
		}
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			s.serve(p, conn, EventAccepted)
			s.removePipe(p)
		}()
	}
}

func (s *Socket) dialLoop(p *pipe) {
	defer s.wg.Done()
	defer s.removePipe(p)

	limiter := newReconnectLimiter(s.opts.ReconnectInterval)
	dialer := net.Dialer{Timeout: s.opts.DialTimeout}
	for {
		if err := limiter.Wait(s.ctx); err != nil {
			return
		}
		conn, err := dialer.DialContext(s.ctx, "tcp", p.addr)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.emit(EventConnectRetried, uint32(s.opts.ReconnectInterval.Milliseconds()), p.addr)
			continue
		}
		s.serve(p, conn, EventConnected)
		if s.ctx.Err() != nil {
			return
		}
	}
}

// ============================================================================
//                              收发
// ============================================================================

// Send 发送一条多帧消息
//
// 发送不阻塞：队列满或没有匹配对端时消息被丢弃。
func (s *Socket) Send(frames [][]byte) error {
	if len(frames) == 0 {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	switch s.kind {
	case KindPub:
		for _, p := range s.pipes {
			if p.wants(frames[0]) {
				p.enqueue(frames)
			}
		}
	case KindDealer:
		if len(s.pipes) == 0 {
			logger.Debug("无可用对端，丢弃消息", "kind", s.kind)
			return nil
		}
		p := s.pipes[s.rr%len(s.pipes)]
		s.rr++
		p.enqueue(frames)
	case KindRouter:
		if len(frames) < 2 {
			return ErrEmptyMessage
		}
		p, ok := s.routes[string(frames[0])]
		if !ok {
			logger.Debug("未知路由标识，丢弃消息", "route", log.TruncateID(string(frames[0]), 8))
			return nil
		}
		p.enqueue(frames[1:])
	default:
		return ErrNotSupported
	}
	return nil
}

// Recv 读取一条消息，队列为空时返回 ErrWouldBlock
func (s *Socket) Recv() ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if len(s.inbox) == 0 {
		return nil, ErrWouldBlock
	}
	msg := s.inbox[0]
	s.inbox[0] = nil
	s.inbox = s.inbox[1:]
	if len(s.inbox) == 0 {
		s.inbox = nil
	}
	return msg, nil
}

// Readable 是否有待读消息
func (s *Socket) Readable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && len(s.inbox) > 0
}

// Notify 返回可读信号通道
func (s *Socket) Notify() <-chan struct{} {
	return s.notify
}

// push 放入接收队列，超出 RecvHWM 时丢弃
func (s *Socket) push(msg [][]byte) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if len(s.inbox) >= s.opts.RecvHWM {
		s.mu.Unlock()
		logger.Debug("接收队列已满，丢弃消息", "kind", s.kind)
		return
	}
	s.inbox = append(s.inbox, msg)
	s.mu.Unlock()
	s.signal()
}

func (s *Socket) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// deliver 处理从管道读到的消息
func (s *Socket) deliver(p *pipe, frames [][]byte) {
	switch s.kind {
	case KindPub:
		// 对端只发送订阅控制消息
		if len(frames) != 1 || len(frames[0]) == 0 {
			return
		}
		msg := frames[0]
		switch msg[0] {
		case subscribeFlag:
			p.subscribe(msg[1:])
		case unsubscribeFlag:
			p.unsubscribe(msg[1:])
		}
		s.mu.Lock()
		verbose := s.verbose
		s.mu.Unlock()
		if verbose {
			s.push(frames)
		}
	case KindSub:
		s.mu.Lock()
		match := s.subs.matches(frames[0])
		s.mu.Unlock()
		if match {
			s.push(frames)
		}
	case KindRouter:
		s.push(append([][]byte{p.route}, frames...))
	case KindDealer:
		s.push(frames)
	}
}

// ============================================================================
//                              订阅（SUB / PUB）
// ============================================================================

// Subscribe 订阅前缀（仅 SUB）
func (s *Socket) Subscribe(prefix []byte) error {
	return s.updateSubscription(subscribeFlag, prefix)
}

// Unsubscribe 取消订阅前缀（仅 SUB），前缀不存在时忽略
func (s *Socket) Unsubscribe(prefix []byte) error {
	return s.updateSubscription(unsubscribeFlag, prefix)
}

func (s *Socket) updateSubscription(flag byte, prefix []byte) error {
	if s.kind != KindSub {
		return ErrNotSupported
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if flag == subscribeFlag {
		s.subs.add(prefix)
	} else if !s.subs.remove(prefix) {
		return nil
	}
	msg := subscriptionMessage(flag, prefix)
	for _, p := range s.pipes {
		if p.isConnected() {
			p.enqueue(msg)
		}
	}
	return nil
}

// SetVerbose 开关订阅通知（仅 PUB）
//
// 开启后每条订阅/取消订阅控制消息都进入接收队列。
func (s *Socket) SetVerbose(on bool) error {
	if s.kind != KindPub {
		return ErrNotSupported
	}
	s.mu.Lock()
	s.verbose = on
	s.mu.Unlock()
	return nil
}

// ============================================================================
//                              管道管理
// ============================================================================

// attach 握手成功后登记管道，返回需要首先发送的消息
func (s *Socket) attach(p *pipe, remote greeting) ([][][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	if !p.outbound {
		s.pipes = append(s.pipes, p)
	}
	if s.kind == KindRouter {
		route := remote.Identity
		if len(route) == 0 || s.routes[string(route)] != nil {
			route = s.generateRoute()
		}
		p.route = append([]byte(nil), route...)
		s.routes[string(p.route)] = p
	}
	p.setConnected(true)

	if s.kind == KindSub {
		return s.subs.messages(), nil
	}
	return nil, nil
}

// detach 连接断开后清理管道的连接态
func (s *Socket) detach(p *pipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.route != nil {
		if s.routes[string(p.route)] == p {
			delete(s.routes, string(p.route))
		}
		p.route = nil
	}
	p.setConnected(false)
	if s.kind == KindSub {
		// 订阅在重连时整体重发
		p.drain()
	}
}

func (s *Socket) removePipe(p *pipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.pipes {
		if q == p {
			s.pipes = append(s.pipes[:i], s.pipes[i+1:]...)
			break
		}
	}
}

// generateRoute 生成 5 字节路由标识（首字节为 0）
func (s *Socket) generateRoute() []byte {
	for {
		s.nextRoute++
		route := make([]byte, 5)
		binary.BigEndian.PutUint32(route[1:], s.nextRoute)
		if s.routes[string(route)] == nil {
			return route
		}
	}
}

// ============================================================================
//                              监控
// ============================================================================

// Monitor 返回监控旁路套接字
//
// 同一时间只有一个有效监控；已关闭的监控会被替换。
func (s *Socket) Monitor() (*Socket, error) {
	if !s.kind.networked() {
		return nil, ErrNotSupported
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.monitor == nil || s.monitor.isClosed() {
		s.monitor = New(KindMonitor, WithHWM(s.opts.SendHWM, s.opts.RecvHWM))
	}
	return s.monitor, nil
}

func (s *Socket) emit(ev Event, value uint32, addr string) {
	s.mu.Lock()
	m := s.monitor
	s.mu.Unlock()
	if m != nil {
		m.push(EncodeEvent(ev, value, addr))
	}
}

func (s *Socket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ============================================================================
//                              关闭
// ============================================================================

// Close 关闭套接字及其所有连接
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	listeners := s.listeners
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	monitor := s.monitor
	s.listeners = nil
	s.inbox = nil
	s.mu.Unlock()

	s.cancel()

	var err error
	for _, ln := range listeners {
		err = multierr.Append(err, ignoreClosed(ln.Close()))
	}
	for _, c := range conns {
		_ = c.Close()
	}
	s.wg.Wait()

	s.mu.Lock()
	s.pipes = nil
	s.mu.Unlock()

	if monitor != nil {
		monitor.push(EncodeEvent(EventMonitorStopped, 0, ""))
	}
	s.signal()
	return err
}

// trackConn 登记活动连接，套接字已关闭时返回 false
func (s *Socket) trackConn(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Socket) untrackConn(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

func ignoreClosed(err error) error {
	if err == nil || strings.Contains(err.Error(), "use of closed network connection") {
		return nil
	}
	return err
}
