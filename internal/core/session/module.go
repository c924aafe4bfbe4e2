package session

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config    *config.Config       `optional:"true"`
	Identity  types.Identity       `name:"identity"`
	Discovery interfaces.Discovery `name:"discovery"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Resolver *Resolver `name:"resolver"`
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) ModuleOutput {
	cfg := config.DefaultSessionConfig()
	if input.Config != nil {
		cfg = input.Config.Session
	}
	return ModuleOutput{Resolver: New(input.Identity, input.Discovery, cfg)}
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("session",
		fx.Provide(ProvideServices),
	)
}
