package config

import (
	"fmt"
	"time"
)

// 发现后端
const (
	// BackendMDNS 基于 mDNS 的局域网发现
	BackendMDNS = "mdns"
	// BackendMemory 进程内发现（测试、单机部署）
	BackendMemory = "memory"
	// BackendNone 禁用发现
	BackendNone = "none"
)

// DiscoveryConfig 节点发现配置
type DiscoveryConfig struct {
	// Backend 发现后端：mdns / memory / none
	Backend string `json:"backend"`

	// MDNS mDNS 配置
	MDNS MDNSConfig `json:"mdns,omitempty"`
}

// MDNSConfig mDNS 配置
type MDNSConfig struct {
	// Domain 服务域名
	Domain string `json:"domain,omitempty"`

	// Interface 限定网络接口名，为空时使用系统默认
	Interface string `json:"interface,omitempty"`

	// QueryInterval 浏览查询间隔
	QueryInterval Duration `json:"query_interval,omitempty"`

	// QueryTimeout 单次查询超时
	QueryTimeout Duration `json:"query_timeout,omitempty"`

	// PeerTTL 实例未再出现多久后视为移除
	PeerTTL Duration `json:"peer_ttl,omitempty"`

	// CacheSize 已见实例缓存大小
	CacheSize int `json:"cache_size,omitempty"`

	// DisableIPv6 禁用 IPv6 查询
	DisableIPv6 bool `json:"disable_ipv6,omitempty"`
}

// DefaultDiscoveryConfig 返回默认发现配置
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		Backend: BackendMDNS,
		MDNS: MDNSConfig{
			Domain:        "local.",
			QueryInterval: Duration(time.Second),
			QueryTimeout:  Duration(500 * time.Millisecond),
			PeerTTL:       Duration(10 * time.Second),
			CacheSize:     256,
		},
	}
}

// Validate 验证发现配置
func (c DiscoveryConfig) Validate() error {
	switch c.Backend {
	case BackendMDNS, BackendMemory, BackendNone:
	default:
		return fmt.Errorf("%w: discovery.backend %q", ErrInvalidValue, c.Backend)
	}
	if c.Backend != BackendMDNS {
		return nil
	}
	if c.MDNS.QueryInterval <= 0 {
		return fmt.Errorf("%w: discovery.mdns.query_interval must be positive", ErrInvalidValue)
	}
	if c.MDNS.QueryTimeout <= 0 {
		return fmt.Errorf("%w: discovery.mdns.query_timeout must be positive", ErrInvalidValue)
	}
	if c.MDNS.PeerTTL < c.MDNS.QueryInterval {
		return fmt.Errorf("%w: discovery.mdns.peer_ttl shorter than query_interval", ErrInvalidValue)
	}
	if c.MDNS.CacheSize <= 0 {
		return fmt.Errorf("%w: discovery.mdns.cache_size must be positive", ErrInvalidValue)
	}
	return nil
}
