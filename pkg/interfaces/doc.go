// Package interfaces 定义 zeroeq 的协作者接口
//
// 端点不直接依赖具体实现，而是依赖以下契约：
//   - discovery.go  - 会话发现（公告、浏览）
//   - socket.go     - 帧套接字与可轮询描述符
//
// 实现位置：
//   - internal/core/discovery/mdns    - mDNS 发现
//   - internal/core/discovery/memory  - 进程内发现
//   - internal/core/transport         - TCP 帧传输
//
// # 依赖方向
//
//	zeroeq → session → interfaces ← discovery/transport
package interfaces
