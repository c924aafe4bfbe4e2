// Package identity 提供进程标识
//
// 进程标识随公告发布（TXT id=），浏览侧据此忽略同一进程自己的公告。
// 同一个 Resolver 上的所有端点共享一个标识。
package identity

import (
	"github.com/dep2p/go-zeroeq/pkg/types"
)

// Config 身份配置
type Config struct {
	// Fixed 指定标识，为空时生成随机标识
	Fixed types.Identity
}

// New 返回配置指定的标识或新生成的随机标识
func New(cfg Config) types.Identity {
	if !cfg.Fixed.IsEmpty() {
		return cfg.Fixed
	}
	return types.NewIdentity()
}
