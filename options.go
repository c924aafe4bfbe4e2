package zeroeq

import (
	"fmt"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/core/session"
)

// Option 端点构造选项
type Option func(*options) error

// options 内部选项结构
type options struct {
	uris []string

	session    string
	hasSession bool

	shared   Shared
	resolver *Resolver
	config   *config.Config
}

func applyOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *options) request() session.Request {
	return session.Request{
		URIs:       o.uris,
		Session:    o.session,
		HasSession: o.hasSession,
	}
}

// WithURI 指定地址，格式 [tcp://][*|host|IP][:port]
//
// 发布者与服务端在该地址监听；订阅者在带端口时直接连接。
func WithURI(uri string) Option {
	return func(o *options) error {
		o.uris = append(o.uris, uri)
		return nil
	}
}

// WithServers 指定客户端直接连接的服务端地址
func WithServers(uris ...string) Option {
	return func(o *options) error {
		if len(uris) == 0 {
			return fmt.Errorf("%w: no server uri", ErrInvalidArgument)
		}
		o.uris = append(o.uris, uris...)
		return nil
	}
}

// WithSession 指定会话名
//
// NullSession 关闭发现；DefaultSession 使用缺省会话；空字符串无效。
func WithSession(name string) Option {
	return func(o *options) error {
		o.session = name
		o.hasSession = true
		return nil
	}
}

// WithShared 与另一个端点（或 Receiver）共用接收器
func WithShared(s Shared) Option {
	return func(o *options) error {
		if s == nil || s.SharedReceiver() == nil {
			return fmt.Errorf("%w: nil shared receiver", ErrInvalidArgument)
		}
		o.shared = s
		return nil
	}
}

// WithResolver 使用指定的会话解析器（缺省为进程级解析器）
func WithResolver(r *Resolver) Option {
	return func(o *options) error {
		if r == nil {
			return fmt.Errorf("%w: nil resolver", ErrInvalidArgument)
		}
		o.resolver = r
		return nil
	}
}

// WithConfig 使用指定配置中的传输与接收参数
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return config.ErrNilConfig
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}
