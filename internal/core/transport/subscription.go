package transport

import "bytes"

// 订阅控制消息的首字节
const (
	subscribeFlag   byte = 1
	unsubscribeFlag byte = 0
)

// prefixSet 带计数的前缀订阅集合
type prefixSet map[string]int

func (s prefixSet) add(prefix []byte) {
	s[string(prefix)]++
}

// remove 返回前缀是否存在
func (s prefixSet) remove(prefix []byte) bool {
	key := string(prefix)
	n, ok := s[key]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(s, key)
	} else {
		s[key] = n - 1
	}
	return true
}

func (s prefixSet) matches(topic []byte) bool {
	for prefix := range s {
		if bytes.HasPrefix(topic, []byte(prefix)) {
			return true
		}
	}
	return false
}

// messages 以控制消息形式展开集合（计数几次就发几次）
func (s prefixSet) messages() [][][]byte {
	out := make([][][]byte, 0, len(s))
	for prefix, n := range s {
		for i := 0; i < n; i++ {
			out = append(out, subscriptionMessage(subscribeFlag, []byte(prefix)))
		}
	}
	return out
}

func subscriptionMessage(flag byte, topic []byte) [][]byte {
	frame := make([]byte, 1+len(topic))
	frame[0] = flag
	copy(frame[1:], topic)
	return [][]byte{frame}
}
