package main

import (
	"flag"
	"fmt"
	"strings"

	zeroeq "github.com/dep2p/go-zeroeq"
	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/pkg/lib/log"
)

// listFlag 可重复的字符串参数
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// commonFlags 所有子命令共用的参数
type commonFlags struct {
	configFile string
	session    string
	uris       listFlag
	types      listFlag
	verbose    bool

	fs *flag.FlagSet
}

func newCommonFlags(name string) *commonFlags {
	c := &commonFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	c.fs.StringVar(&c.configFile, "config", "", "JSON 配置文件路径")
	c.fs.StringVar(&c.session, "session", "", "会话名（null 关闭发现，缺省为默认会话）")
	c.fs.Var(&c.uris, "uri", "地址，可重复")
	c.fs.Var(&c.types, "type", "类型名，可重复")
	c.fs.BoolVar(&c.verbose, "v", false, "输出调试日志")
	return c
}

// parse 解析参数并应用日志级别
func (c *commonFlags) parse(args []string) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if c.verbose {
		log.SetLevel(log.LevelDebug)
	}
	return nil
}

// isSet 检查参数是否被显式设置
func (c *commonFlags) isSet(name string) bool {
	found := false
	c.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// resolver 按配置文件创建解析器
//
// 配置优先级：环境变量 > 配置文件 > 默认值。
func (c *commonFlags) resolver() (*zeroeq.Resolver, error) {
	if c.configFile == "" {
		return zeroeq.NewResolver(nil)
	}
	cfg, err := config.LoadFile(c.configFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置文件失败: %w", err)
	}
	return zeroeq.NewResolver(cfg)
}

// options 把通用参数转换为端点选项
func (c *commonFlags) options(r *zeroeq.Resolver) []zeroeq.Option {
	opts := []zeroeq.Option{zeroeq.WithResolver(r)}
	for _, u := range c.uris {
		opts = append(opts, zeroeq.WithURI(u))
	}
	switch {
	case !c.isSet("session"), c.session == "":
	case strings.EqualFold(c.session, "null"):
		opts = append(opts, zeroeq.WithSession(zeroeq.NullSession))
	default:
		opts = append(opts, zeroeq.WithSession(c.session))
	}
	return opts
}

// typeIDs 返回 -type 对应的 TypeID，至少一个
func (c *commonFlags) typeIDs() ([]zeroeq.TypeID, error) {
	if len(c.types) == 0 {
		return nil, fmt.Errorf("缺少 -type")
	}
	ids := make([]zeroeq.TypeID, 0, len(c.types))
	for _, name := range c.types {
		ids = append(ids, zeroeq.MakeTypeID(name))
	}
	return ids, nil
}
