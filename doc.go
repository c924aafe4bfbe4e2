// Package zeroeq 提供基于会话的轻量消息中间件
//
// zeroeq 在 TCP 帧传输之上提供三类通信：
//
//   - 发布/订阅：Publisher 按 TypeID 发布，Subscriber 按 TypeID 分发
//   - 请求/应答：Client 向所有服务端发出请求，Server 按 TypeID 处理
//   - 连接监控：Monitor 观察发布者或服务端的新连接
//
// # 快速开始
//
//	pub, err := zeroeq.NewPublisher(zeroeq.WithSession("lab"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pub.Close()
//
//	// 另一进程中
//	sub, err := zeroeq.NewSubscriber(zeroeq.WithSession("lab"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sub.Close()
//
//	echo := zeroeq.MakeTypeID("example::Echo")
//	sub.Subscribe(echo, func(payload []byte) {
//	    fmt.Println(string(payload))
//	})
//
//	_ = pub.Publish(echo, []byte("hello"))
//	_, _ = sub.Receive(time.Second)
//
// # 会话与地址
//
// 会话名通过发现服务（缺省 mDNS）映射到地址。NullSession 关闭发现，
// 此时订阅者与客户端必须给出带端口的地址。缺省会话取自环境变量
// ZEROEQ_SESSION，其次为当前用户名。订阅者与客户端忽略本进程公告的端点，
// 同一进程内需要使用独立的 Resolver 或直接给出地址。
//
// # 接收
//
// 所有回调都在调用方的 Receive 中同步执行，没有后台分发线程。
// 多个端点可以通过 WithShared 共用一个 Receiver，由一次 Receive 驱动。
// 端点的订阅表与处理表不能与进行中的 Receive 并发修改。
//
// # 文件组织
//
//   - receiver.go    - Receiver 与共享
//   - publisher.go   - 发布者
//   - subscriber.go  - 订阅者
//   - client.go      - 请求客户端
//   - server.go      - 请求服务端
//   - monitor.go     - 连接监控
//   - resolver.go    - 进程级会话解析器（fx 组装）
//   - options.go     - 端点选项
package zeroeq
