// Package session 把会话名与地址解析为可绑定或可连接的传输地址
//
// 绑定侧（发布者、服务端）：
//   - 缺省绑定 "*:0"，公告缺省会话
//   - NullSession 不公告
//   - 发现不可用时，显式端口只告警，否则构造失败
//
// 连接侧（订阅者、客户端）：
//   - 带端口的地址直接连接
//   - 给出会话（或什么都不给，使用缺省会话）时浏览发现服务
//   - 既无端口也无会话时构造失败
package session

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/util/logger"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
)

var log = logger.Logger("session")

// Resolver 会话解析器
//
// 持有进程标识与发现服务，被同一进程的所有端点共享。
type Resolver struct {
	identity  types.Identity
	discovery interfaces.Discovery
	cfg       config.SessionConfig
}

// New 创建会话解析器
func New(id types.Identity, d interfaces.Discovery, cfg config.SessionConfig) *Resolver {
	return &Resolver{identity: id, discovery: d, cfg: cfg}
}

// Identity 返回进程标识
func (r *Resolver) Identity() types.Identity {
	return r.identity
}

// Discovery 返回发现服务
func (r *Resolver) Discovery() interfaces.Discovery {
	return r.discovery
}

// DefaultSession 返回缺省会话名
func (r *Resolver) DefaultSession() string {
	return r.cfg.Resolve()
}

// Request 端点构造参数
type Request struct {
	// URIs 显式地址，绑定侧只使用第一个
	URIs []string

	// Session 会话名，HasSession 为 false 时未指定
	Session    string
	HasSession bool
}

func (req Request) hasURI() bool {
	return len(req.URIs) > 0
}

// BindPlan 绑定侧解析结果
type BindPlan struct {
	URI      types.URI
	Session  string
	Announce bool
}

// ConnectPlan 连接侧解析结果
type ConnectPlan struct {
	Direct  []types.URI
	Session string
	Browse  bool
}

// session 解析会话名，fallback 为未指定时的取值
func (r *Resolver) session(req Request, fallback string) (string, error) {
	name := fallback
	if req.HasSession {
		name = req.Session
	}
	switch name {
	case "":
		return "", fmt.Errorf("%w: empty session", ErrInvalidArgument)
	case types.DefaultSession:
		return r.DefaultSession(), nil
	}
	return name, nil
}

// ResolveBind 解析绑定侧参数
func (r *Resolver) ResolveBind(req Request) (BindPlan, error) {
	name, err := r.session(req, types.DefaultSession)
	if err != nil {
		return BindPlan{}, err
	}

	plan := BindPlan{Session: name, Announce: !types.IsDiscoveryDisabled(name)}
	if req.hasURI() {
		u, err := types.ParseURI(req.URIs[0])
		if err != nil {
			return BindPlan{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		plan.URI = u
	} else {
		plan.URI = types.URI{Scheme: types.DefaultScheme}
	}

	if plan.Announce && !r.available() {
		if !plan.URI.HasPort() {
			return BindPlan{}, fmt.Errorf("%w: cannot announce session %q", ErrUnavailable, name)
		}
		log.Warn("发现服务不可用，不公告会话", "session", name, "uri", plan.URI.String())
		plan.Announce = false
	}
	return plan, nil
}

// ResolveConnect 解析连接侧参数
func (r *Resolver) ResolveConnect(req Request) (ConnectPlan, error) {
	fallback := types.DefaultSession
	if req.hasURI() {
		fallback = types.NullSession
	}
	name, err := r.session(req, fallback)
	if err != nil {
		return ConnectPlan{}, err
	}

	plan := ConnectPlan{Session: name, Browse: !types.IsDiscoveryDisabled(name)}
	for _, raw := range req.URIs {
		u, err := types.ParseURI(raw)
		if err != nil {
			return ConnectPlan{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		// 不带端口的地址只能依靠会话浏览
		if u.HasPort() && !u.IsWildcard() {
			plan.Direct = append(plan.Direct, u)
		}
	}

	if !plan.Browse && len(plan.Direct) == 0 {
		return ConnectPlan{}, fmt.Errorf("%w: no address and no session to connect", ErrInvalidArgument)
	}
	if plan.Browse && !r.available() {
		if len(plan.Direct) == 0 {
			return ConnectPlan{}, fmt.Errorf("%w: cannot browse session %q", ErrUnavailable, name)
		}
		log.Warn("发现服务不可用，只连接显式地址", "session", name)
		plan.Browse = false
	}
	return plan, nil
}

func (r *Resolver) available() bool {
	return r.discovery != nil && r.discovery.IsAvailable()
}

// Announce 公告已绑定的端点
//
// bound 为请求的主机与实际端口；通配主机不写入公告，由发现后端填充本机地址。
func (r *Resolver) Announce(ctx context.Context, service, session string, bound types.URI) (interfaces.Registration, error) {
	if !r.available() {
		return nil, ErrUnavailable
	}
	host := bound.Host
	if ip := net.ParseIP(host); bound.IsWildcard() || (ip != nil && ip.IsUnspecified()) {
		host = ""
	}
	ann := types.Announcement{
		Service:  service,
		Instance: fmt.Sprintf("zeroeq-%s-%d", r.identity.ShortString(), bound.Port),
		Session:  session,
		Identity: r.identity,
		Host:     host,
		Port:     bound.Port,
	}
	reg, err := r.discovery.Announce(ctx, ann)
	if err != nil {
		return nil, err
	}
	log.Debug("端点已公告", "service", service, "session", session, "port", bound.Port)
	return reg, nil
}

// BindAddr 返回传给传输层的绑定地址
func BindAddr(u types.URI) string {
	return u.HostPort()
}

// BoundURI 由请求地址与实际监听地址得到端点地址
//
// 通配主机替换为本机主机名，主机名无法解析时使用 127.0.0.1。
func BoundURI(requested types.URI, bound string) (types.URI, error) {
	host, port, err := net.SplitHostPort(bound)
	if err != nil {
		return types.URI{}, err
	}
	u, err := types.ParseURI(net.JoinHostPort(host, port))
	if err != nil {
		return types.URI{}, err
	}
	u.Scheme = types.DefaultScheme
	if requested.IsWildcard() || net.ParseIP(u.Host).IsUnspecified() {
		u.Host = localHostname()
	} else {
		u.Host = requested.Host
	}
	return u, nil
}

func localHostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "127.0.0.1"
	}
	if _, err := net.LookupHost(name); err != nil {
		return "127.0.0.1"
	}
	return name
}
