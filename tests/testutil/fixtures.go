// Package testutil 提供测试辅助工具
package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

// 测试数据固件

const (
	// EchoMessage 回显测试使用的消息
	EchoMessage = "So long, and thanks for all the fish!"

	// EchoTypeName 回显类型名
	EchoTypeName = "zeroeq::test::Echo"

	// EmptyTypeName 无负载类型名
	EmptyTypeName = "zeroeq::test::Empty"
)

// UniqueSession 为当前测试生成唯一会话名
//
// 测试名中的 "/" 与 "_" 替换为 "-"，并附加进程号。
func UniqueSession(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "-", "_", "-").Replace(t.Name())
	return fmt.Sprintf("%s%d", name, os.Getpid())
}
