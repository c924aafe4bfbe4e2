package zeroeq

import (
	"github.com/dep2p/go-zeroeq/pkg/types"
)

// 类型别名
type (
	// TypeID 128 位消息类型标识
	TypeID = types.TypeID

	// URI 端点地址
	URI = types.URI

	// Identity 进程标识
	Identity = types.Identity
)

// 会话常量
const (
	// NullSession 关闭发现
	NullSession = types.NullSession

	// DefaultSession 使用缺省会话（ZEROEQ_SESSION 或当前用户名）
	DefaultSession = types.DefaultSession
)

// UnhandledTypeID 服务端没有处理器时的应答类型
var UnhandledTypeID = types.UnhandledTypeID

// MakeTypeID 由规范类型名生成 TypeID
func MakeTypeID(name string) TypeID {
	return types.MakeTypeID(name)
}

// EventFunc 无负载事件回调
type EventFunc func()

// EventPayloadFunc 带负载事件回调，无负载帧时 payload 为 nil
type EventPayloadFunc func(payload []byte)

// ReplyData 请求处理结果
//
// Payload 为 nil 时应答不带负载帧，非 nil 的空切片发送空负载帧。
type ReplyData struct {
	TypeID  TypeID
	Payload []byte
}

// HandleFunc 请求处理回调，请求无负载帧时 payload 为 nil
type HandleFunc func(payload []byte) ReplyData

// ReplyFunc 应答回调
type ReplyFunc func(typeID TypeID, payload []byte)

// ConnectionFunc 新连接回调
type ConnectionFunc func()
