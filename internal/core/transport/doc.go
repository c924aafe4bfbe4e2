// Package transport 实现基于 TCP 的多帧消息传输
//
// 每个 Socket 可以同时监听多个地址并连接多个远端，
// 消息是一组帧（multipart），以 uvarint 编码帧数与帧长。
//
// # 套接字类型
//
//   - KindPub: 发布端，按订阅前缀过滤发送；Verbose 模式下把订阅通知放入接收队列
//   - KindSub: 订阅端，订阅前缀在每个新连接上重新发送
//   - KindRouter: 接收时前置路由标识帧，发送时按首帧路由
//   - KindDealer: 轮流向各连接发送，接收所有连接的消息
//
// # 连接
//
// Connect 立即创建发送管道并在后台拨号，断开后按 ReconnectInterval 重连；
// 连接建立前发送的消息在管道中排队，超出 SendHWM 时丢弃。
//
// # 监控
//
// Monitor 返回旁路套接字，连接生命周期事件以两帧消息送达：
//
//	[uint16 事件码 | uint32 值] [地址]
//
// # 轮询
//
// Readable/Notify 组成可轮询描述符，Poll 等待任意套接字可读。
package transport
