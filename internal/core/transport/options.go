package transport

import (
	"time"

	"github.com/dep2p/go-zeroeq/config"
)

// Options 套接字选项
type Options struct {
	// Identity 连接问候中携带的标识，ROUTER 对端以此路由
	Identity []byte

	// SendHWM 每个管道的发送队列上限
	SendHWM int

	// RecvHWM 接收队列上限
	RecvHWM int

	// Limits 消息解码限制
	Limits Limits

	// DialTimeout 建连超时
	DialTimeout time.Duration

	// HandshakeTimeout 握手超时
	HandshakeTimeout time.Duration

	// ReconnectInterval 重连间隔
	ReconnectInterval time.Duration
}

// DefaultOptions 返回默认选项
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultTransportConfig())
}

// OptionsFromConfig 由传输配置生成选项
func OptionsFromConfig(cfg config.TransportConfig) Options {
	return Options{
		SendHWM: cfg.SendHWM,
		RecvHWM: cfg.RecvHWM,
		Limits: Limits{
			MaxFrames:     cfg.MaxFrames,
			MaxFrameBytes: cfg.MaxFrameBytes,
		},
		DialTimeout:       cfg.DialTimeout.Duration(),
		HandshakeTimeout:  cfg.HandshakeTimeout.Duration(),
		ReconnectInterval: cfg.ReconnectInterval.Duration(),
	}
}

// Option 选项函数
type Option func(*Options)

// WithConfig 使用传输配置
func WithConfig(cfg config.TransportConfig) Option {
	return func(o *Options) {
		id := o.Identity
		*o = OptionsFromConfig(cfg)
		o.Identity = id
	}
}

// WithIdentity 设置连接标识
func WithIdentity(id []byte) Option {
	return func(o *Options) {
		o.Identity = append([]byte(nil), id...)
	}
}

// WithHWM 设置收发队列上限
func WithHWM(send, recv int) Option {
	return func(o *Options) {
		o.SendHWM = send
		o.RecvHWM = recv
	}
}

// WithReconnectInterval 设置重连间隔
func WithReconnectInterval(d time.Duration) Option {
	return func(o *Options) {
		o.ReconnectInterval = d
	}
}

func (o *Options) normalize() {
	def := config.DefaultTransportConfig()
	if o.SendHWM <= 0 {
		o.SendHWM = def.SendHWM
	}
	if o.RecvHWM <= 0 {
		o.RecvHWM = def.RecvHWM
	}
	if o.Limits.MaxFrames <= 0 {
		o.Limits.MaxFrames = def.MaxFrames
	}
	if o.Limits.MaxFrameBytes <= 0 {
		o.Limits.MaxFrameBytes = def.MaxFrameBytes
	}
	if o.ReconnectInterval <= 0 {
		o.ReconnectInterval = def.ReconnectInterval.Duration()
	}
	if len(o.Identity) > maxIdentityBytes {
		o.Identity = o.Identity[:maxIdentityBytes]
	}
}
