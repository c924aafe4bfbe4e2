package transport

import (
	"bufio"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pipe 到一个对端的消息管道
//
// 出站管道在 Connect 时创建，跨重连存在；入站管道随连接结束。
type pipe struct {
	sock     *Socket
	addr     string
	outbound bool
	out      chan [][]byte

	// route 只由连接所在 goroutine 与持有 sock.mu 的路径访问
	route []byte

	mu        sync.Mutex
	connected bool
	subs      prefixSet
}

func newPipe(s *Socket, addr string, outbound bool) *pipe {
	return &pipe{
		sock:     s,
		addr:     addr,
		outbound: outbound,
		out:      make(chan [][]byte, s.opts.SendHWM),
		subs:     make(prefixSet),
	}
}

// enqueue 非阻塞放入发送队列
func (p *pipe) enqueue(msg [][]byte) {
	select {
	case p.out <- cloneMessage(msg):
	default:
		logger.Debug("发送队列已满，丢弃消息", "addr", p.addr)
	}
}

// drain 清空发送队列
func (p *pipe) drain() {
	for {
		select {
		case <-p.out:
		default:
			return
		}
	}
}

func (p *pipe) setConnected(on bool) {
	p.mu.Lock()
	p.connected = on
	if !on {
		p.subs = make(prefixSet)
	}
	p.mu.Unlock()
}

func (p *pipe) isConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// wants 对端是否订阅了该主题（PUB）
func (p *pipe) wants(topic []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected && p.subs.matches(topic)
}

func (p *pipe) subscribe(prefix []byte) {
	p.mu.Lock()
	p.subs.add(prefix)
	p.mu.Unlock()
}

func (p *pipe) unsubscribe(prefix []byte) {
	p.mu.Lock()
	p.subs.remove(prefix)
	p.mu.Unlock()
}

// serve 在连接上完成握手并收发，直到连接断开
func (s *Socket) serve(p *pipe, conn net.Conn, ev Event) {
	if !s.trackConn(conn) {
		_ = conn.Close()
		return
	}
	defer s.untrackConn(conn)
	defer conn.Close()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	local := greeting{Kind: s.kind, Identity: s.opts.Identity}
	remote, err := handshake(conn, r, w, local, s.opts.HandshakeTimeout)
	if err != nil {
		logger.Warn("握手失败", "addr", p.addr, "err", err)
		if ev == EventAccepted {
			s.emit(EventAcceptFailed, 0, p.addr)
		}
		return
	}

	initial, err := s.attach(p, remote)
	if err != nil {
		return
	}
	s.emit(ev, 0, p.addr)
	logger.Debug("连接已建立", "kind", s.kind, "peer", remote.Kind, "addr", p.addr)

	stop := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		if err := p.writeLoop(w, initial, stop); err != nil {
			_ = conn.Close()
		}
	}()

	for {
		frames, err := ReadMessage(r, s.opts.Limits)
		if err != nil {
			break
		}
		s.deliver(p, frames)
	}

	close(stop)
	<-writerDone
	s.detach(p)
	s.emit(EventDisconnected, 0, p.addr)
	logger.Debug("连接已断开", "kind", s.kind, "addr", p.addr)
}

// writeLoop 先写出初始消息，再持续写出发送队列
func (p *pipe) writeLoop(w *bufio.Writer, initial [][][]byte, stop <-chan struct{}) error {
	for _, msg := range initial {
		if err := WriteMessage(w, msg); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for {
		select {
		case <-stop:
			return nil
		case msg := <-p.out:
			if err := WriteMessage(w, msg); err != nil {
				return err
			}
			// 合并已排队的消息后再刷新
			for more := true; more; {
				select {
				case msg = <-p.out:
					if err := WriteMessage(w, msg); err != nil {
						return err
					}
				default:
					more = false
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
}

// newReconnectLimiter 首次拨号立即进行，之后按间隔重试
func newReconnectLimiter(interval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), 1)
}
