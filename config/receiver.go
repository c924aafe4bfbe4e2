package config

import (
	"fmt"
	"time"
)

// ReceiverConfig 轮询器配置
type ReceiverConfig struct {
	// UpdateInterval 长时间等待时的切片间隔
	//
	// 每个切片开始前执行更新钩子（处理迟到的发现事件）。
	UpdateInterval Duration `json:"update_interval"`
}

// DefaultReceiverConfig 返回默认轮询器配置
func DefaultReceiverConfig() ReceiverConfig {
	return ReceiverConfig{
		UpdateInterval: Duration(100 * time.Millisecond),
	}
}

// Validate 验证轮询器配置
func (c ReceiverConfig) Validate() error {
	if c.UpdateInterval <= 0 {
		return fmt.Errorf("%w: receiver.update_interval must be positive", ErrInvalidValue)
	}
	return nil
}
