// Package main 提供 zeroeq 命令行入口
//
// 子命令：
//
//	zeroeq pub     发布事件
//	zeroeq sub     订阅并打印事件
//	zeroeq serve   回显请求
//	zeroeq request 发出请求并打印应答
//	zeroeq monitor 发布心跳并打印新连接
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dep2p/go-zeroeq/pkg/lib/log"
)

var logger = log.Logger("zeroeq/cmd")

// command 子命令
type command struct {
	name  string
	usage string
	run   func(ctx context.Context, args []string) error
}

var commands = []command{
	{name: "pub", usage: "发布事件", run: runPub},
	{name: "sub", usage: "订阅并打印事件", run: runSub},
	{name: "serve", usage: "回显收到的请求", run: runServe},
	{name: "request", usage: "发出请求并打印应答", run: runRequest},
	{name: "monitor", usage: "发布心跳并打印新连接", run: runMonitor},
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "help" {
		printHelp()
		return nil
	}

	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return c.run(ctx, args[1:])
	}

	printHelp()
	return fmt.Errorf("未知子命令 %q", args[0])
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("zeroeq - 基于会话发现的发布订阅与请求应答")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  zeroeq <子命令> [选项]")
	fmt.Println()
	fmt.Println("子命令:")
	for _, c := range commands {
		fmt.Printf("  %-10s %s\n", c.name, c.usage)
	}
	fmt.Println()
	fmt.Println("通用选项:")
	fmt.Println("  -config <file>    JSON 配置文件")
	fmt.Println("  -session <name>   会话名（null 关闭发现，缺省为默认会话）")
	fmt.Println("  -uri <uri>        地址，可重复")
	fmt.Println("  -type <name>      类型名，TypeID 由类型名计算")
	fmt.Println("  -v                输出调试日志")
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  ZEROEQ_SESSION    缺省会话名")
	fmt.Println("  ZEROEQ_DISCOVERY  发现后端 (mdns/memory/none)")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  zeroeq sub -type hbp::Camera")
	fmt.Println("  zeroeq pub -type hbp::Camera -data '{\"fov\": 45}' -interval 1s")
	fmt.Println("  zeroeq serve -type echo")
	fmt.Println("  zeroeq request -type echo -data hello")
	fmt.Println("  zeroeq request -uri localhost:12345 -type echo -data hello")
}
