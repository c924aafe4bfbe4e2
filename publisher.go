package zeroeq

import (
	"fmt"

	"github.com/dep2p/go-zeroeq/internal/core/transport"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
)

// 确保实现接口
var _ Sender = (*Publisher)(nil)

// Publisher 按 TypeID 发布事件
//
// 缺省监听所有接口的随机端口，并在 _zeroeq_pub._tcp 上公告会话。
type Publisher struct {
	*binding
}

// NewPublisher 创建发布者
func NewPublisher(opts ...Option) (*Publisher, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, configError("NewPublisher", err)
	}
	r, cfg, err := endpointEnv(o)
	if err != nil {
		return nil, err
	}
	b, err := bind("NewPublisher", transport.KindPub, interfaces.ServicePublisher, o, r, cfg)
	if err != nil {
		return nil, err
	}
	return &Publisher{binding: b}, nil
}

// Publish 发布事件
//
// payload 为 nil 时只发送 TypeID 帧。没有订阅者时消息被丢弃，不视为错误。
func (p *Publisher) Publish(id TypeID, payload []byte) error {
	frames := [][]byte{id.Bytes()}
	if payload != nil {
		frames = append(frames, payload)
	}
	if err := p.sock.Send(frames); err != nil {
		return fmt.Errorf("publish %s: %w", id.ShortString(), err)
	}
	return nil
}

// PublishEvent 发布无负载事件
func (p *Publisher) PublishEvent(id TypeID) error {
	return p.Publish(id, nil)
}

// PublishObject 发布可序列化对象
func (p *Publisher) PublishObject(obj Serializable) error {
	data, err := payloadOf(obj)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", obj.TypeName(), err)
	}
	return p.Publish(obj.TypeID(), data)
}

// Address 返回 host:port 形式的地址
func (p *Publisher) Address() string {
	return p.uri.HostPort()
}

// Close 撤销公告并关闭套接字
func (p *Publisher) Close() error {
	return p.close()
}
