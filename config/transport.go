package config

import (
	"fmt"
	"time"
)

// TransportConfig 帧传输配置
type TransportConfig struct {
	// SendHWM 每个连接的发送队列上限，超出时丢弃
	SendHWM int `json:"send_hwm"`

	// RecvHWM 套接字接收队列上限，超出时丢弃
	RecvHWM int `json:"recv_hwm"`

	// MaxFrames 单条消息的最大帧数
	MaxFrames int `json:"max_frames"`

	// MaxFrameBytes 单帧最大字节数
	MaxFrameBytes int `json:"max_frame_bytes"`

	// DialTimeout 建连超时
	DialTimeout Duration `json:"dial_timeout"`

	// HandshakeTimeout 握手超时
	HandshakeTimeout Duration `json:"handshake_timeout"`

	// ReconnectInterval 重连间隔
	ReconnectInterval Duration `json:"reconnect_interval"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		SendHWM:           1000,
		RecvHWM:           1000,
		MaxFrames:         16,
		MaxFrameBytes:     64 << 20,
		DialTimeout:       Duration(5 * time.Second),
		HandshakeTimeout:  Duration(5 * time.Second),
		ReconnectInterval: Duration(100 * time.Millisecond),
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.SendHWM <= 0 || c.RecvHWM <= 0 {
		return fmt.Errorf("%w: transport hwm must be positive", ErrInvalidValue)
	}
	if c.MaxFrames < 4 {
		return fmt.Errorf("%w: transport.max_frames must be at least 4", ErrInvalidValue)
	}
	if c.MaxFrameBytes <= 0 {
		return fmt.Errorf("%w: transport.max_frame_bytes must be positive", ErrInvalidValue)
	}
	if c.DialTimeout <= 0 || c.HandshakeTimeout <= 0 || c.ReconnectInterval <= 0 {
		return fmt.Errorf("%w: transport timeouts must be positive", ErrInvalidValue)
	}
	return nil
}
