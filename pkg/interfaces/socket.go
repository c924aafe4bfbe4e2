package interfaces

// Pollable 可轮询描述符
//
// Readable 报告当前是否有待读消息；Notify 在可读状态变化时发信号，
// 信号可能合并，读方需在收到信号后重新检查 Readable。
type Pollable interface {
	Readable() bool
	Notify() <-chan struct{}
}

// Socket 帧套接字
//
// 每条消息是一组帧（multipart），发送非阻塞，接收无消息时返回 would-block 错误。
type Socket interface {
	Pollable

	// Bind 监听地址，返回实际绑定地址（端口 0 时为系统分配端口）
	Bind(addr string) (string, error)

	// Connect 异步连接远端地址，断开后自动重连
	Connect(addr string) error

	// Send 发送一条多帧消息
	Send(frames [][]byte) error

	// Recv 读取一条多帧消息
	Recv() ([][]byte, error)

	// Close 关闭套接字
	Close() error
}
