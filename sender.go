package zeroeq

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/core/session"
	"github.com/dep2p/go-zeroeq/internal/core/transport"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
	"go.uber.org/multierr"
)

// Sender 绑定并公告自身的端点（Publisher、Server），可被 Monitor 观察
type Sender interface {
	URI() URI
	Session() string
	socket() *transport.Socket
}

// binding 绑定侧公共部分
type binding struct {
	sock    *transport.Socket
	uri     types.URI
	session string
	reg     interfaces.Registration

	closeOnce sync.Once
	closeErr  error
}

// bind 解析、创建套接字、绑定并按需公告
func bind(op string, kind transport.Kind, service string, o *options, r *Resolver, cfg *config.Config) (*binding, error) {
	plan, err := r.res.ResolveBind(o.request())
	if err != nil {
		return nil, configError(op, err)
	}

	sock := transport.New(kind,
		transport.WithConfig(cfg.Transport),
		transport.WithIdentity([]byte(r.Identity())),
	)
	bound, err := sock.Bind(session.BindAddr(plan.URI))
	if err != nil {
		_ = sock.Close()
		return nil, configError(op, err)
	}
	uri, err := session.BoundURI(plan.URI, bound)
	if err != nil {
		_ = sock.Close()
		return nil, configError(op, err)
	}

	b := &binding{sock: sock, uri: uri, session: plan.Session}
	if plan.Announce {
		ann := plan.URI.WithPort(uri.Port)
		b.reg, err = r.res.Announce(context.Background(), service, plan.Session, ann)
		if err != nil {
			_ = sock.Close()
			return nil, configError(op, fmt.Errorf("announce session %q: %w", plan.Session, err))
		}
	}

	logger.Info("端点已绑定",
		"kind", kind,
		"uri", uri.String(),
		"session", plan.Session,
		"announced", plan.Announce)
	return b, nil
}

// URI 返回端点地址，通配主机替换为本机主机名
func (b *binding) URI() URI {
	return b.uri
}

// Session 返回会话名
func (b *binding) Session() string {
	return b.session
}

func (b *binding) socket() *transport.Socket {
	return b.sock
}

func (b *binding) close() error {
	b.closeOnce.Do(func() {
		if b.reg != nil {
			b.closeErr = multierr.Append(b.closeErr, b.reg.Close())
		}
		b.closeErr = multierr.Append(b.closeErr, b.sock.Close())
	})
	return b.closeErr
}
