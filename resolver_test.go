package zeroeq

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/core/discovery"
	"github.com/dep2p/go-zeroeq/internal/core/discovery/memory"
	"github.com/dep2p/go-zeroeq/tests/testutil"
)

func TestNewResolver(t *testing.T) {
	cfg := testConfig(t)
	r, err := NewResolver(cfg)
	require.NoError(t, err)
	defer r.Close()

	assert.False(t, r.Identity().IsEmpty())
	assert.Equal(t, cfg.Session.Name, r.DefaultSession())
	assert.Same(t, cfg, r.Config())
	assert.True(t, r.IsDiscoveryAvailable())

	other := newTestResolver(t, memory.NewNetwork())
	assert.NotEqual(t, r.Identity(), other.Identity())
}

func TestNewResolver_FixedIdentity(t *testing.T) {
	id := Identity("zeroeq-test-identity")
	r, err := NewResolver(testConfig(t), WithIdentity(id), WithDiscovery(memory.New(memory.NewNetwork())))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, id, r.Identity())
}

func TestNewResolver_DiscoveryOverride(t *testing.T) {
	d := memory.New(memory.NewNetwork())
	r, err := NewResolver(testConfig(t), WithDiscovery(d))
	require.NoError(t, err)
	assert.True(t, r.IsDiscoveryAvailable())

	d.SetAvailable(false)
	assert.False(t, r.IsDiscoveryAvailable())

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.False(t, d.IsAvailable(), "解析器关闭时同时关闭发现服务")
}

func TestNewResolver_NoDiscovery(t *testing.T) {
	cfg := testConfig(t)
	cfg.Discovery.Backend = config.BackendNone
	r, err := NewResolver(cfg)
	require.NoError(t, err)
	defer r.Close()
	assert.False(t, r.IsDiscoveryAvailable())

	// 不公告的端点仍可创建
	pub, err := NewPublisher(WithSession(NullSession), WithResolver(r))
	require.NoError(t, err)
	require.NoError(t, pub.Close())

	_, err = NewPublisher(WithSession(testutil.UniqueSession(t)), WithResolver(r))
	assert.ErrorIs(t, err, ErrUnavailable)

	// 显式端口时只告警
	pub, err = NewPublisher(WithURI(freeAddr(t)), WithSession(testutil.UniqueSession(t)), WithResolver(r))
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestNewResolver_UnavailableBackend(t *testing.T) {
	r, err := NewResolver(testConfig(t), WithDiscovery(discovery.Unavailable{}))
	require.NoError(t, err)
	defer r.Close()

	_, err = NewClient(WithResolver(r))
	assert.ErrorIs(t, err, ErrUnavailable)

	client, err := NewClient(WithServers("localhost:1234"), WithSession(DefaultSession), WithResolver(r))
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

func TestNewResolver_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Discovery.Backend = "bogus"
	_, err := NewResolver(cfg)
	assert.Error(t, err)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestWithConfig(t *testing.T) {
	r := newTestResolver(t, memory.NewNetwork())

	_, err := NewPublisher(WithConfig(nil), WithResolver(r))
	assert.ErrorIs(t, err, config.ErrNilConfig)

	cfg := testConfig(t)
	cfg.Transport.SendHWM = 16
	pub, err := NewPublisher(WithConfig(cfg), WithSession(NullSession), WithResolver(r))
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

// freeAddr 返回当前空闲的本机地址
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}
