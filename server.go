package zeroeq

import (
	"fmt"

	"github.com/dep2p/go-zeroeq/internal/core/poller"
	"github.com/dep2p/go-zeroeq/internal/core/transport"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
)

// 确保实现接口
var (
	_ Sender             = (*Server)(nil)
	_ poller.Participant = (*Server)(nil)
)

// Server 处理一个或多个 Client 的请求
//
// 缺省监听所有接口的随机端口，并在 _zeroeq_rep._tcp 上公告会话。
type Server struct {
	*Receiver
	*binding

	handlers map[TypeID]HandleFunc
}

// NewServer 创建服务端
func NewServer(opts ...Option) (*Server, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, configError("NewServer", err)
	}
	r, cfg, err := endpointEnv(o)
	if err != nil {
		return nil, err
	}
	b, err := bind("NewServer", transport.KindRouter, interfaces.ServiceServer, o, r, cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Receiver: receiverFor(o, cfg),
		binding:  b,
		handlers: make(map[TypeID]HandleFunc),
	}
	if err := s.add(poller.Entry{Socket: b.sock, Events: poller.EventIn, Owner: s}); err != nil {
		_ = b.close()
		return nil, configError("NewServer", err)
	}
	return s, nil
}

// Handle 注册请求处理器，同一 TypeID 已注册时返回 false
func (s *Server) Handle(id TypeID, fn HandleFunc) bool {
	if fn == nil {
		return false
	}
	if _, ok := s.handlers[id]; ok {
		return false
	}
	s.handlers[id] = fn
	return true
}

// Remove 移除请求处理器，未注册时返回 false
func (s *Server) Remove(id TypeID) bool {
	if _, ok := s.handlers[id]; !ok {
		return false
	}
	delete(s.handlers, id)
	return true
}

// Process 实现 poller.Participant
//
// 请求：[路由][关联 ID][TypeID][负载?]；应答：[路由][关联 ID][应答 TypeID][负载?]
func (s *Server) Process(entry poller.Entry) error {
	frames, err := entry.Socket.Recv()
	if err != nil {
		return err
	}
	if len(frames) < 3 || len(frames) > 4 {
		logger.Warn("丢弃格式错误的请求", "frames", len(frames))
		return nil
	}
	route, corr := frames[0], frames[1]
	id, err := types.TypeIDFromBytes(frames[2])
	if err != nil {
		logger.Warn("丢弃格式错误的请求", "err", err)
		return nil
	}
	var payload []byte
	if len(frames) == 4 {
		payload = frames[3]
	}

	reply := [][]byte{route, corr}
	fn, ok := s.handlers[id]
	if !ok {
		logger.Debug("未处理的请求类型", "type", id.ShortString())
		reply = append(reply, UnhandledTypeID.Bytes())
	} else {
		rd := fn(payload)
		reply = append(reply, rd.TypeID.Bytes())
		if rd.Payload != nil {
			reply = append(reply, rd.Payload)
		}
	}

	if err := s.sock.Send(reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// Close 从接收器移除、撤销公告并关闭套接字
func (s *Server) Close() error {
	s.remove(s)
	return s.close()
}
