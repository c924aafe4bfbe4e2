// Package types 定义 ZeroEQ 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 zeroeq 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - ids.go       - TypeID（128 位类型标识）、Identity（进程身份）
//   - uri.go       - URI 地址解析（[scheme://][host][:port]）
//   - session.go   - Session 会话名与保留哨兵值
//   - discovery.go - 发现事件类型
//   - errors.go    - 公共错误定义
//
// # TypeID
//
// TypeID 是消息/事件/请求 schema 的唯一标识，也是线路上与所有处理器表中
// 唯一的路由键。约定由规范的 schema 名称确定性派生：
//
//	id := types.MakeTypeID("zeroeq::test::Echo")
//
// 线路格式为 16 字节大端序（High 在前）。
package types
