package zeroeq

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/core/discovery"
	"github.com/dep2p/go-zeroeq/internal/core/identity"
	"github.com/dep2p/go-zeroeq/internal/core/session"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
)

// resolverParams 从 fx 容器取出的服务
type resolverParams struct {
	fx.In

	Resolver *session.Resolver `name:"resolver"`
}

// buildFxApp 构建解析器的 Fx 应用
//
// 加载顺序：Identity → Discovery → Session
func buildFxApp(cfg *config.Config, ro resolverOptions, r *Resolver) (*fx.App, error) {
	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Supply(&identity.Config{Fixed: ro.identity}),

		identity.Module(),
		discovery.Module(),
		session.Module(),
	}

	if ro.discovery != nil {
		d := ro.discovery
		modules = append(modules, fx.Provide(fx.Annotate(
			func() interfaces.Discovery { return d },
			fx.ResultTags(`name:"discovery_override"`),
		)))
	}

	modules = append(modules,
		fx.Invoke(func(p resolverParams) {
			r.res = p.Resolver
		}),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}
