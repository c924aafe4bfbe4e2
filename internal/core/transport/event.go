package transport

import (
	"encoding/binary"
	"fmt"
)

// Event 连接生命周期事件码
type Event uint16

// 事件码
const (
	EventConnected      Event = 0x0001
	EventConnectDelayed Event = 0x0002
	EventConnectRetried Event = 0x0004
	EventListening      Event = 0x0008
	EventBindFailed     Event = 0x0010
	EventAccepted       Event = 0x0020
	EventAcceptFailed   Event = 0x0040
	EventClosed         Event = 0x0080
	EventDisconnected   Event = 0x0200
	EventMonitorStopped Event = 0x0400
)

// String 返回事件名
func (e Event) String() string {
	switch e {
	case EventConnected:
		return "connected"
	case EventConnectDelayed:
		return "connect_delayed"
	case EventConnectRetried:
		return "connect_retried"
	case EventListening:
		return "listening"
	case EventBindFailed:
		return "bind_failed"
	case EventAccepted:
		return "accepted"
	case EventAcceptFailed:
		return "accept_failed"
	case EventClosed:
		return "closed"
	case EventDisconnected:
		return "disconnected"
	case EventMonitorStopped:
		return "monitor_stopped"
	default:
		return fmt.Sprintf("event(0x%04x)", uint16(e))
	}
}

// eventHeaderSize 事件首帧长度
const eventHeaderSize = 6

// EncodeEvent 编码监控消息
func EncodeEvent(ev Event, value uint32, addr string) [][]byte {
	header := make([]byte, eventHeaderSize)
	binary.LittleEndian.PutUint16(header[0:2], uint16(ev))
	binary.LittleEndian.PutUint32(header[2:6], value)
	return [][]byte{header, []byte(addr)}
}

// DecodeEvent 解码监控消息
func DecodeEvent(frames [][]byte) (Event, uint32, string, error) {
	if len(frames) != 2 || len(frames[0]) != eventHeaderSize {
		return 0, 0, "", ErrBadEvent
	}
	ev := Event(binary.LittleEndian.Uint16(frames[0][0:2]))
	value := binary.LittleEndian.Uint32(frames[0][2:6])
	return ev, value, string(frames[1]), nil
}
