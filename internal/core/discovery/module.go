package discovery

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// 配置（可选，使用默认配置）
	Config *config.Config `optional:"true"`

	// Override 外部注入的发现实现（可选，优先于配置）
	Override interfaces.Discovery `name:"discovery_override" optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Discovery interfaces.Discovery `name:"discovery"`
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	if input.Override != nil {
		return ModuleOutput{Discovery: input.Override}, nil
	}

	cfg := config.DefaultDiscoveryConfig()
	if input.Config != nil {
		cfg = input.Config.Discovery
	}

	d, err := New(cfg)
	if err != nil {
		return ModuleOutput{}, err
	}
	log.Debug("发现后端已创建", "backend", cfg.Backend)
	return ModuleOutput{Discovery: d}, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("discovery",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC        fx.Lifecycle
	Discovery interfaces.Discovery `name:"discovery"`
}

// registerLifecycle 停止时关闭发现服务
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.Discovery.Close()
		},
	})
}
