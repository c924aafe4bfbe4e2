package zeroeq

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/core/discovery/memory"
	"github.com/dep2p/go-zeroeq/tests/testutil"
)

const receiveTimeout = 100 * time.Millisecond

var (
	echoID  = MakeTypeID(testutil.EchoTypeName)
	emptyID = MakeTypeID(testutil.EmptyTypeName)
)

// echo 带负载的测试对象
type echo struct {
	message string
}

func (e *echo) TypeName() string { return testutil.EchoTypeName }
func (e *echo) TypeID() TypeID { return echoID }

func (e *echo) ToBinary() ([]byte, error) {
	return []byte(e.message), nil
}

func (e *echo) FromBinary(data []byte) error {
	e.message = string(data)
	return nil
}

// empty 无负载的测试对象
type empty struct{}

func (empty) TypeName() string { return testutil.EmptyTypeName }
func (empty) TypeID() TypeID { return emptyID }
func (empty) ToBinary() ([]byte, error) { return nil, nil }
func (empty) FromBinary(data []byte) error { return nil }

// testConfig 缩短轮询与重连间隔
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Session.Name = testutil.UniqueSession(t)
	cfg.Discovery.Backend = config.BackendMemory
	cfg.Receiver.UpdateInterval = config.Duration(20 * time.Millisecond)
	cfg.Transport.ReconnectInterval = config.Duration(20 * time.Millisecond)
	return cfg
}

// newTestResolver 在 network 上创建独立进程标识的解析器
func newTestResolver(t *testing.T, network *memory.Network) *Resolver {
	t.Helper()
	r, err := NewResolver(testConfig(t), WithDiscovery(memory.New(network)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// closeOnCleanup 测试结束时关闭端点
func closeOnCleanup(t *testing.T, c interface{ Close() error }) {
	t.Helper()
	t.Cleanup(func() { _ = c.Close() })
}

// serve 在后台驱动服务端，返回停止函数
//
// 处理器必须在调用前注册完毕。
func serve(s *Server) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			_, _ = s.Receive(20 * time.Millisecond)
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

// publishUntil 反复发布直到订阅者收到
func publishUntil(t *testing.T, sub *Subscriber, publish func() error, received func() bool) bool {
	t.Helper()
	return testutil.ReceiveUntil(t, sub, 3*time.Second, func() {
		require.NoError(t, publish())
	}, received)
}
