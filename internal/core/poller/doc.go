// Package poller 实现接收端的轮询核心
//
// Poller 持有一组套接字条目（套接字、就绪掩码、所属端点），
// Receive 阻塞直到任一套接字可读或超时，然后把就绪的套接字分发给各自的端点。
// 多个端点可以共享同一个 Poller，一次 Receive 驱动全部端点。
//
// # 状态
//
//	idle → polling → dispatching → idle
//
// Receive 不可重入：分发回调中再次调用 Receive，或另一个 goroutine
// 并发调用 Receive，都会返回 ErrReentrant。
//
// # 更新钩子
//
// 实现 Updater 的端点在每个轮询切片开始前被调用，用于处理迟到的发现事件。
// 长时间等待按 UpdateInterval 切分。
package poller
