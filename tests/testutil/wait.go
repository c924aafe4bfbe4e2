package testutil

import (
	"context"
	"testing"
	"time"
)

// WaitForCondition 等待条件满足或超时
//
// 返回：条件是否满足（超时返回 false）
func WaitForCondition(t *testing.T, timeout time.Duration, interval time.Duration, condition func() bool) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 立即检查一次
	if condition() {
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if condition() {
				return true
			}
		}
	}
}

// Eventually 在指定时间内重试条件检查，超时则 fail 测试
//
// 使用默认间隔 10ms。
func Eventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	if !WaitForCondition(t, timeout, 10*time.Millisecond, condition) {
		t.Fatalf("等待超时: %s", msg)
	}
}

// Receiver 可被驱动的接收端
type Receiver interface {
	Receive(timeout time.Duration) (bool, error)
}

// ReceiveUntil 反复调用 Receive 直到条件满足
//
// 每轮可先执行 step（例如重发消息），返回条件是否在超时前满足。
func ReceiveUntil(t *testing.T, r Receiver, timeout time.Duration, step func(), condition func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if step != nil {
			step()
		}
		if _, err := r.Receive(50 * time.Millisecond); err != nil {
			t.Fatalf("Receive 失败: %v", err)
		}
		if condition() {
			return true
		}
	}
	return condition()
}

// Sleep 等待指定时间（用于测试中的简单延迟）
func Sleep(d time.Duration) {
	time.Sleep(d)
}
