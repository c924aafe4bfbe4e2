package identity

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-zeroeq/internal/util/logger"
	"github.com/dep2p/go-zeroeq/pkg/types"
)

var log = logger.Logger("identity")

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// 配置（可选，缺省生成随机标识）
	Config *Config `optional:"true"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Identity types.Identity `name:"identity"`
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) ModuleOutput {
	var cfg Config
	if input.Config != nil {
		cfg = *input.Config
	}
	id := New(cfg)
	log.Debug("进程标识", "id", id.ShortString(), "fixed", !cfg.Fixed.IsEmpty())
	return ModuleOutput{Identity: id}
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideServices),
	)
}
