package transport

import (
	"context"
	"testing"
	"time"

	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSocket(t *testing.T, kind Kind, opts ...Option) *Socket {
	t.Helper()
	s := New(kind, append([]Option{WithReconnectInterval(20 * time.Millisecond)}, opts...)...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// recvWithin 在超时内读取一条消息
func recvWithin(t *testing.T, s *Socket, timeout time.Duration) [][]byte {
	t.Helper()
	ready, err := Poll(context.Background(), []interfaces.Pollable{s}, timeout)
	require.NoError(t, err)
	require.NotEmpty(t, ready, "超时未收到消息")
	msg, err := s.Recv()
	require.NoError(t, err)
	return msg
}

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		addr string
		bind bool
		want string
		ok   bool
	}{
		{"*:0", true, ":0", true},
		{"tcp://127.0.0.1:80", true, "127.0.0.1:80", true},
		{":1234", true, ":1234", true},
		{"localhost:1234", false, "localhost:1234", true},
		{"*:1234", false, "", false},
		{"localhost:0", false, "", false},
		{"localhost", false, "", false},
	}
	for _, tt := range tests {
		got, err := normalizeAddr(tt.addr, tt.bind)
		if tt.ok {
			require.NoError(t, err, tt.addr)
			assert.Equal(t, tt.want, got, tt.addr)
		} else {
			assert.ErrorIs(t, err, ErrInvalidAddress, tt.addr)
		}
	}
}

func TestSocket_RecvWouldBlock(t *testing.T) {
	s := newSocket(t, KindDealer)
	_, err := s.Recv()
	assert.ErrorIs(t, err, ErrWouldBlock)
	assert.False(t, s.Readable())

	ready, err := Poll(context.Background(), []interfaces.Pollable{s}, 0)
	require.NoError(t, err)
	assert.Empty(t, ready)
}

func TestSocket_PubSub(t *testing.T) {
	pub := newSocket(t, KindPub)
	addr, err := pub.Bind("127.0.0.1:0")
	require.NoError(t, err)

	sub := newSocket(t, KindSub)
	require.NoError(t, sub.Subscribe([]byte("a")))
	require.NoError(t, sub.Connect(addr))

	var got [][]byte
	testutil.Eventually(t, 5*time.Second, func() bool {
		require.NoError(t, pub.Send([][]byte{[]byte("b-topic"), []byte("ignored")}))
		require.NoError(t, pub.Send([][]byte{[]byte("a-topic"), []byte("payload")}))
		ready, _ := Poll(context.Background(), []interfaces.Pollable{sub}, 20*time.Millisecond)
		if len(ready) == 0 {
			return false
		}
		got, err = sub.Recv()
		return err == nil
	}, "订阅端应收到匹配前缀的消息")

	assert.Equal(t, [][]byte{[]byte("a-topic"), []byte("payload")}, got)
}

func TestSocket_PubVerboseNotifications(t *testing.T) {
	pub := newSocket(t, KindPub)
	require.NoError(t, pub.SetVerbose(true))
	addr, err := pub.Bind("127.0.0.1:0")
	require.NoError(t, err)

	sub := newSocket(t, KindSub)
	require.NoError(t, sub.Subscribe([]byte("topic")))
	require.NoError(t, sub.Connect(addr))

	msg := recvWithin(t, pub, 5*time.Second)
	require.Len(t, msg, 1)
	assert.Equal(t, append([]byte{subscribeFlag}, "topic"...), msg[0])

	require.NoError(t, sub.Unsubscribe([]byte("topic")))
	msg = recvWithin(t, pub, 5*time.Second)
	assert.Equal(t, append([]byte{unsubscribeFlag}, "topic"...), msg[0])

	assert.ErrorIs(t, sub.SetVerbose(true), ErrNotSupported)
	assert.ErrorIs(t, pub.Subscribe([]byte("x")), ErrNotSupported)
}

func TestSocket_RouterDealer(t *testing.T) {
	router := newSocket(t, KindRouter)
	addr, err := router.Bind("127.0.0.1:0")
	require.NoError(t, err)

	dealer := newSocket(t, KindDealer, WithIdentity([]byte("dealer-1")))
	require.NoError(t, dealer.Connect(addr))

	// 连接建立前发送的消息在管道中排队
	require.NoError(t, dealer.Send([][]byte{[]byte("ping"), {}}))

	msg := recvWithin(t, router, 5*time.Second)
	require.Len(t, msg, 3)
	assert.Equal(t, []byte("dealer-1"), msg[0])
	assert.Equal(t, []byte("ping"), msg[1])
	assert.Empty(t, msg[2])

	require.NoError(t, router.Send([][]byte{msg[0], []byte("pong")}))
	reply := recvWithin(t, dealer, 5*time.Second)
	assert.Equal(t, [][]byte{[]byte("pong")}, reply)

	// 未知路由静默丢弃
	assert.NoError(t, router.Send([][]byte{[]byte("nobody"), []byte("x")}))
}

func TestSocket_RouterGeneratesRoute(t *testing.T) {
	router := newSocket(t, KindRouter)
	addr, err := router.Bind("127.0.0.1:0")
	require.NoError(t, err)

	dealer := newSocket(t, KindDealer)
	require.NoError(t, dealer.Connect(addr))
	require.NoError(t, dealer.Send([][]byte{[]byte("hi")}))

	msg := recvWithin(t, router, 5*time.Second)
	require.Len(t, msg, 2)
	assert.Len(t, msg[0], 5)
	assert.Equal(t, byte(0), msg[0][0])
}

func TestSocket_IncompatiblePeer(t *testing.T) {
	pub := newSocket(t, KindPub)
	addr, err := pub.Bind("127.0.0.1:0")
	require.NoError(t, err)

	mon, err := pub.Monitor()
	require.NoError(t, err)

	dealer := newSocket(t, KindDealer)
	require.NoError(t, dealer.Connect(addr))

	msg := recvWithin(t, mon, 5*time.Second)
	ev, _, _, err := DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, EventAcceptFailed, ev)
}

func TestSocket_MonitorEvents(t *testing.T) {
	router := newSocket(t, KindRouter)
	mon, err := router.Monitor()
	require.NoError(t, err)

	same, err := router.Monitor()
	require.NoError(t, err)
	assert.Same(t, mon, same)

	addr, err := router.Bind("127.0.0.1:0")
	require.NoError(t, err)

	msg := recvWithin(t, mon, time.Second)
	ev, _, evAddr, err := DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, EventListening, ev)
	assert.Equal(t, addr, evAddr)

	dealer := New(KindDealer)
	require.NoError(t, dealer.Connect(addr))

	msg = recvWithin(t, mon, 5*time.Second)
	ev, _, _, err = DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, EventAccepted, ev)

	require.NoError(t, dealer.Close())
	msg = recvWithin(t, mon, 5*time.Second)
	ev, _, _, err = DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, EventDisconnected, ev)
}

func TestSocket_ConnectRetried(t *testing.T) {
	// 先占用再释放一个端口，保证无人监听
	probe := New(KindRouter)
	addr, err := probe.Bind("127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, probe.Close())

	dealer := newSocket(t, KindDealer)
	mon, err := dealer.Monitor()
	require.NoError(t, err)
	require.NoError(t, dealer.Connect(addr))

	msg := recvWithin(t, mon, 5*time.Second)
	ev, value, _, err := DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, EventConnectRetried, ev)
	assert.Equal(t, uint32(20), value)
}

func TestSocket_Closed(t *testing.T) {
	s := New(KindDealer)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Connect("127.0.0.1:1"), ErrClosed)
	assert.ErrorIs(t, s.Send([][]byte{[]byte("x")}), ErrClosed)
	_, err := s.Recv()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Monitor()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSocket_RecvHWM(t *testing.T) {
	router := newSocket(t, KindRouter, WithHWM(10, 2))
	addr, err := router.Bind("127.0.0.1:0")
	require.NoError(t, err)

	dealer := newSocket(t, KindDealer)
	require.NoError(t, dealer.Connect(addr))
	for i := 0; i < 5; i++ {
		require.NoError(t, dealer.Send([][]byte{{byte(i)}}))
	}

	recvWithin(t, router, 5*time.Second)
	// 等待剩余消息到达，超出上限的被丢弃
	time.Sleep(200 * time.Millisecond)
	received := 1
	for router.Readable() {
		_, err := router.Recv()
		require.NoError(t, err)
		received++
	}
	assert.LessOrEqual(t, received, 3)
}

func TestPoll_Timeout(t *testing.T) {
	s := newSocket(t, KindDealer)
	start := time.Now()
	ready, err := Poll(context.Background(), []interfaces.Pollable{s}, 30*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, ready)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestPoll_Context(t *testing.T) {
	s := newSocket(t, KindDealer)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Poll(ctx, []interfaces.Pollable{s}, -1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
