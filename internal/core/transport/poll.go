package transport

import (
	"context"
	"reflect"
	"time"

	"github.com/dep2p/go-zeroeq/pkg/interfaces"
)

// Ready 返回当前可读的下标
func Ready(items []interfaces.Pollable) []int {
	var ready []int
	for i, item := range items {
		if item.Readable() {
			ready = append(ready, i)
		}
	}
	return ready
}

// WaitAny 等待任意描述符可读
//
// expire 触发时返回空结果；expire 为 nil 时只受 ctx 约束。
func WaitAny(ctx context.Context, items []interfaces.Pollable, expire <-chan time.Time) ([]int, error) {
	cases := make([]reflect.SelectCase, 0, len(items)+2)
	cases = append(cases,
		reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
		reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(expire)},
	)
	for _, item := range items {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(item.Notify())})
	}

	for {
		if ready := Ready(items); len(ready) > 0 {
			return ready, nil
		}
		chosen, _, _ := reflect.Select(cases)
		switch chosen {
		case 0:
			return nil, ctx.Err()
		case 1:
			return Ready(items), nil
		}
	}
}

// Poll 在 timeout 内等待任意描述符可读
//
// timeout 为 0 时只检查一次，为负时无限等待。
func Poll(ctx context.Context, items []interfaces.Pollable, timeout time.Duration) ([]int, error) {
	if timeout == 0 {
		return Ready(items), nil
	}
	var expire <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expire = timer.C
	}
	return WaitAny(ctx, items, expire)
}
