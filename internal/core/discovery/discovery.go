// Package discovery 组装会话发现后端
//
// 后端由 config.DiscoveryConfig.Backend 选择：
//   - mdns    - 局域网 mDNS（默认）
//   - memory  - 进程内公告表
//   - none    - 不可用，只允许显式地址
package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/core/discovery/mdns"
	"github.com/dep2p/go-zeroeq/internal/core/discovery/memory"
	"github.com/dep2p/go-zeroeq/internal/util/logger"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
)

var log = logger.Logger("discovery")

// ErrUnavailable 发现服务不可用
var ErrUnavailable = errors.New("discovery: unavailable")

// New 按配置创建发现后端
func New(cfg config.DiscoveryConfig) (interfaces.Discovery, error) {
	switch cfg.Backend {
	case config.BackendMDNS, "":
		return mdns.New(cfg.MDNS), nil
	case config.BackendMemory:
		return memory.New(nil), nil
	case config.BackendNone:
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown discovery backend %q", config.ErrInvalidValue, cfg.Backend)
	}
}

// 确保实现接口
var _ interfaces.Discovery = Unavailable{}

// Unavailable 始终不可用的发现后端
type Unavailable struct{}

// IsAvailable 始终返回 false
func (Unavailable) IsAvailable() bool { return false }

// Announce 始终返回 ErrUnavailable
func (Unavailable) Announce(context.Context, types.Announcement) (interfaces.Registration, error) {
	return nil, ErrUnavailable
}

// Browse 始终返回 ErrUnavailable
func (Unavailable) Browse(context.Context, string) (<-chan types.PeerEvent, error) {
	return nil, ErrUnavailable
}

// Close 无操作
func (Unavailable) Close() error { return nil }
