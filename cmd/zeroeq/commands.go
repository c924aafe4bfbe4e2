package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	zeroeq "github.com/dep2p/go-zeroeq"
)

// receiver 可被驱动的端点
type receiver interface {
	ReceiveContext(ctx context.Context) (bool, error)
}

// receiveLoop 驱动接收直到 ctx 结束
func receiveLoop(ctx context.Context, r receiver) error {
	for {
		if _, err := r.ReceiveContext(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("接收失败", "err", err)
		}
	}
}

// payloadOf -data 未设置时返回 nil（无负载帧）
func payloadOf(data string, set bool) []byte {
	if !set {
		return nil
	}
	return []byte(data)
}

// ============================================================================
//                              pub
// ============================================================================

func runPub(ctx context.Context, args []string) error {
	c := newCommonFlags("pub")
	data := c.fs.String("data", "", "事件负载（未设置时不带负载）")
	interval := c.fs.Duration("interval", time.Second, "发布间隔")
	count := c.fs.Int("count", 0, "发布次数（0 = 不限）")
	if err := c.parse(args); err != nil {
		return err
	}
	ids, err := c.typeIDs()
	if err != nil {
		return err
	}

	r, err := c.resolver()
	if err != nil {
		return err
	}
	defer r.Close()

	pub, err := zeroeq.NewPublisher(c.options(r)...)
	if err != nil {
		return err
	}
	defer pub.Close()
	fmt.Printf("发布者: %s 会话: %s\n", pub.URI(), pub.Session())

	payload := payloadOf(*data, c.isSet("data"))
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for sent := 0; *count == 0 || sent < *count; sent++ {
		for i, id := range ids {
			if err := pub.Publish(id, payload); err != nil {
				return err
			}
			logger.Debug("已发布", "type", c.types[i], "bytes", len(payload))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// ============================================================================
//                              sub
// ============================================================================

func runSub(ctx context.Context, args []string) error {
	c := newCommonFlags("sub")
	if err := c.parse(args); err != nil {
		return err
	}
	ids, err := c.typeIDs()
	if err != nil {
		return err
	}

	r, err := c.resolver()
	if err != nil {
		return err
	}
	defer r.Close()

	sub, err := zeroeq.NewSubscriber(c.options(r)...)
	if err != nil {
		return err
	}
	defer sub.Close()

	for i, id := range ids {
		name := c.types[i]
		sub.Subscribe(id, func(payload []byte) {
			if payload == nil {
				fmt.Printf("%s\n", name)
				return
			}
			fmt.Printf("%s %s\n", name, payload)
		})
	}
	fmt.Printf("订阅者会话: %s\n", sub.Session())
	return receiveLoop(ctx, sub)
}

// ============================================================================
//                              serve
// ============================================================================

func runServe(ctx context.Context, args []string) error {
	c := newCommonFlags("serve")
	if err := c.parse(args); err != nil {
		return err
	}
	ids, err := c.typeIDs()
	if err != nil {
		return err
	}

	r, err := c.resolver()
	if err != nil {
		return err
	}
	defer r.Close()

	server, err := zeroeq.NewServer(c.options(r)...)
	if err != nil {
		return err
	}
	defer server.Close()

	for i, id := range ids {
		id, name := id, c.types[i]
		server.Handle(id, func(payload []byte) zeroeq.ReplyData {
			fmt.Printf("%s %s\n", name, payload)
			return zeroeq.ReplyData{TypeID: id, Payload: payload}
		})
	}
	fmt.Printf("服务端: %s 会话: %s\n", server.URI(), server.Session())
	return receiveLoop(ctx, server)
}

// ============================================================================
//                              request
// ============================================================================

func runRequest(ctx context.Context, args []string) error {
	c := newCommonFlags("request")
	data := c.fs.String("data", "", "请求负载（未设置时不带负载）")
	timeout := c.fs.Duration("timeout", 5*time.Second, "等待应答的时间")
	if err := c.parse(args); err != nil {
		return err
	}
	ids, err := c.typeIDs()
	if err != nil {
		return err
	}

	r, err := c.resolver()
	if err != nil {
		return err
	}
	defer r.Close()

	client, err := zeroeq.NewClient(c.options(r)...)
	if err != nil {
		return err
	}
	defer client.Close()

	var replyErr error
	replied := false
	err = client.Request(ids[0], payloadOf(*data, c.isSet("data")), func(id zeroeq.TypeID, payload []byte) {
		replied = true
		if id == zeroeq.UnhandledTypeID {
			replyErr = fmt.Errorf("服务端未处理类型 %s", c.types[0])
			return
		}
		fmt.Printf("%s %s\n", id.ShortString(), payload)
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	for !replied {
		if _, err := client.ReceiveContext(ctx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%s 内未收到应答", *timeout)
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return replyErr
}

// ============================================================================
//                              monitor
// ============================================================================

func runMonitor(ctx context.Context, args []string) error {
	c := newCommonFlags("monitor")
	kind := c.fs.String("kind", "pub", "被监控的端点 (pub/serve)")
	interval := c.fs.Duration("interval", time.Second, "心跳间隔（仅 pub）")
	if err := c.parse(args); err != nil {
		return err
	}

	r, err := c.resolver()
	if err != nil {
		return err
	}
	defer r.Close()

	var sender zeroeq.Sender
	var heartbeat func() error
	switch *kind {
	case "pub":
		pub, err := zeroeq.NewPublisher(c.options(r)...)
		if err != nil {
			return err
		}
		defer pub.Close()
		sender = pub
		if ids, err := c.typeIDs(); err == nil {
			heartbeat = func() error { return pub.PublishEvent(ids[0]) }
		}
	case "serve":
		server, err := zeroeq.NewServer(c.options(r)...)
		if err != nil {
			return err
		}
		defer server.Close()
		sender = server
	default:
		return fmt.Errorf("未知端点类型 %q", *kind)
	}

	monitor, err := zeroeq.NewMonitor(sender, func() {
		fmt.Println("新连接")
	}, zeroeq.WithResolver(r))
	if err != nil {
		return err
	}
	defer monitor.Close()
	fmt.Printf("监控: %s 会话: %s\n", sender.URI(), sender.Session())

	for {
		if _, err := monitor.ReceiveTimeout(ctx, *interval); err != nil {
			if ctx.Err() != nil {
				fmt.Printf("共 %d 个连接\n", monitor.Connections())
				return nil
			}
			logger.Warn("接收失败", "err", err)
		}
		if heartbeat != nil {
			if err := heartbeat(); err != nil {
				return err
			}
		}
	}
}
