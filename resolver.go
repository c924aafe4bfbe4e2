package zeroeq

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/core/session"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
)

// startTimeout fx 应用启停超时
const startTimeout = 10 * time.Second

// Resolver 进程级会话解析器
//
// 持有进程标识、发现服务与配置，端点通过它解析会话并公告自己。
// 多个 Resolver 拥有不同的进程标识，可在同一进程内模拟多台机器。
type Resolver struct {
	app *fx.App
	cfg *config.Config
	res *session.Resolver

	closeOnce sync.Once
	closeErr  error
}

// ResolverOption 解析器选项
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	discovery interfaces.Discovery
	identity  Identity
}

// WithDiscovery 使用外部发现实现，忽略配置中的后端
func WithDiscovery(d interfaces.Discovery) ResolverOption {
	return func(o *resolverOptions) {
		o.discovery = d
	}
}

// WithIdentity 指定进程标识
func WithIdentity(id Identity) ResolverOption {
	return func(o *resolverOptions) {
		o.identity = id
	}
}

// NewResolver 创建会话解析器
//
// cfg 为 nil 时使用缺省配置并应用环境变量。
func NewResolver(cfg *config.Config, opts ...ResolverOption) (*Resolver, error) {
	if cfg == nil {
		cfg = config.NewConfig()
		cfg.ApplyEnv(os.Getenv)
	}
	if err := cfg.Validate(); err != nil {
		return nil, configError("NewResolver", err)
	}

	var ro resolverOptions
	for _, opt := range opts {
		opt(&ro)
	}

	r := &Resolver{cfg: cfg}
	app, err := buildFxApp(cfg, ro, r)
	if err != nil {
		return nil, configError("NewResolver", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return nil, configError("NewResolver", err)
	}
	r.app = app

	logger.Debug("会话解析器已启动",
		"identity", r.res.Identity().ShortString(),
		"backend", cfg.Discovery.Backend)
	return r, nil
}

var (
	defaultMu       sync.Mutex
	defaultResolver *Resolver
)

// DefaultResolver 返回进程级缺省解析器，首次调用时创建
func DefaultResolver() (*Resolver, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultResolver != nil {
		return defaultResolver, nil
	}
	r, err := NewResolver(nil)
	if err != nil {
		return nil, err
	}
	defaultResolver = r
	return r, nil
}

// endpointEnv 返回端点使用的解析器与配置
//
// 未指定解析器时使用缺省解析器，未指定配置时使用解析器的配置。
func endpointEnv(o *options) (*Resolver, *config.Config, error) {
	r := o.resolver
	if r == nil {
		var err error
		if r, err = DefaultResolver(); err != nil {
			return nil, nil, err
		}
	}
	cfg := r.cfg
	if o.config != nil {
		cfg = o.config
	}
	return r, cfg, nil
}

// Identity 返回进程标识
func (r *Resolver) Identity() Identity {
	return r.res.Identity()
}

// DefaultSession 返回缺省会话名
func (r *Resolver) DefaultSession() string {
	return r.res.DefaultSession()
}

// Config 返回解析器配置
func (r *Resolver) Config() *config.Config {
	return r.cfg
}

// IsDiscoveryAvailable 发现服务是否可用
func (r *Resolver) IsDiscoveryAvailable() bool {
	d := r.res.Discovery()
	return d != nil && d.IsAvailable()
}

// Close 停止发现服务，已创建的端点不再公告
func (r *Resolver) Close() error {
	r.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		r.closeErr = r.app.Stop(ctx)
	})
	return r.closeErr
}
