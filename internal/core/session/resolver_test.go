package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/core/discovery/memory"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
	"github.com/dep2p/go-zeroeq/tests/testutil"
)

func newResolver(t *testing.T, net *memory.Network, id types.Identity) (*Resolver, *memory.Discovery) {
	t.Helper()
	d := memory.New(net)
	t.Cleanup(func() { _ = d.Close() })
	return New(id, d, config.SessionConfig{Name: "alice"}), d
}

func TestResolveBind(t *testing.T) {
	r, d := newResolver(t, memory.NewNetwork(), "me")

	t.Run("Default", func(t *testing.T) {
		plan, err := r.ResolveBind(Request{})
		require.NoError(t, err)
		assert.Equal(t, "alice", plan.Session)
		assert.True(t, plan.Announce)
		assert.True(t, plan.URI.IsWildcard())
		assert.Equal(t, 0, plan.URI.Port)
	})

	t.Run("DefaultSentinel", func(t *testing.T) {
		plan, err := r.ResolveBind(Request{Session: types.DefaultSession, HasSession: true})
		require.NoError(t, err)
		assert.Equal(t, "alice", plan.Session)
	})

	t.Run("NullSession", func(t *testing.T) {
		plan, err := r.ResolveBind(Request{Session: types.NullSession, HasSession: true})
		require.NoError(t, err)
		assert.False(t, plan.Announce)
	})

	t.Run("EmptySession", func(t *testing.T) {
		_, err := r.ResolveBind(Request{HasSession: true})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("MalformedURI", func(t *testing.T) {
		_, err := r.ResolveBind(Request{URIs: []string{"udp://host:1"}})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("Unavailable", func(t *testing.T) {
		d.SetAvailable(false)
		defer d.SetAvailable(true)

		_, err := r.ResolveBind(Request{})
		assert.ErrorIs(t, err, ErrUnavailable)

		plan, err := r.ResolveBind(Request{URIs: []string{"127.0.0.1:4567"}})
		require.NoError(t, err)
		assert.False(t, plan.Announce)
		assert.Equal(t, 4567, plan.URI.Port)
	})
}

func TestResolveConnect(t *testing.T) {
	r, d := newResolver(t, memory.NewNetwork(), "me")

	tests := []struct {
		name    string
		req     Request
		direct  int
		browse  bool
		session string
		wantErr error
	}{
		{name: "Default", req: Request{}, browse: true, session: "alice"},
		{name: "Session", req: Request{Session: "lab", HasSession: true}, browse: true, session: "lab"},
		{name: "NullSession", req: Request{Session: types.NullSession, HasSession: true}, wantErr: ErrInvalidArgument},
		{name: "EmptySession", req: Request{HasSession: true}, wantErr: ErrInvalidArgument},
		{name: "HostPort", req: Request{URIs: []string{"localhost:1234"}}, direct: 1},
		{name: "HostOnly", req: Request{URIs: []string{"localhost"}}, wantErr: ErrInvalidArgument},
		{name: "HostOnlyNull", req: Request{URIs: []string{"localhost"}, Session: types.NullSession, HasSession: true}, wantErr: ErrInvalidArgument},
		{name: "HostOnlyEmpty", req: Request{URIs: []string{"localhost"}, HasSession: true}, wantErr: ErrInvalidArgument},
		{name: "HostOnlyDefault", req: Request{URIs: []string{"localhost"}, Session: types.DefaultSession, HasSession: true}, browse: true, session: "alice"},
		{name: "HostPortDefault", req: Request{URIs: []string{"localhost:1234"}, Session: types.DefaultSession, HasSession: true}, direct: 1, browse: true, session: "alice"},
		{name: "Servers", req: Request{URIs: []string{"a:1", "b:2"}}, direct: 2},
		{name: "Malformed", req: Request{URIs: []string{"a:b:c:1:x/y"}}, wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := r.ResolveConnect(tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, plan.Direct, tt.direct)
			assert.Equal(t, tt.browse, plan.Browse)
			if tt.browse {
				assert.Equal(t, tt.session, plan.Session)
			}
		})
	}

	t.Run("Unavailable", func(t *testing.T) {
		d.SetAvailable(false)
		defer d.SetAvailable(true)

		_, err := r.ResolveConnect(Request{Session: "lab", HasSession: true})
		assert.ErrorIs(t, err, ErrUnavailable)

		plan, err := r.ResolveConnect(Request{URIs: []string{"localhost:1234"}, Session: "lab", HasSession: true})
		require.NoError(t, err)
		assert.False(t, plan.Browse)
		assert.Len(t, plan.Direct, 1)
	})
}

func TestAnnounceAndBrowse(t *testing.T) {
	net := memory.NewNetwork()
	pub, _ := newResolver(t, net, "machine-a")
	same, _ := newResolver(t, net, "machine-a")
	other, _ := newResolver(t, net, "machine-b")

	reg, err := pub.Announce(context.Background(), interfaces.ServicePublisher, "lab", types.MustParseURI("*:5555"))
	require.NoError(t, err)
	defer reg.Close()
	assert.Equal(t, types.Identity("machine-a"), reg.Announcement().Identity)

	_, err = pub.Announce(context.Background(), interfaces.ServicePublisher, "other-session", types.MustParseURI("*:6666"))
	require.NoError(t, err)

	sameBrowser, err := same.Browse(interfaces.ServicePublisher, "lab")
	require.NoError(t, err)
	defer sameBrowser.Close()

	otherBrowser, err := other.Browse(interfaces.ServicePublisher, "lab")
	require.NoError(t, err)
	defer otherBrowser.Close()

	var found []types.URI
	testutil.Eventually(t, 2*time.Second, func() bool {
		found = append(found, otherBrowser.Poll()...)
		return len(found) > 0
	}, "浏览者应发现公告")

	require.Len(t, found, 1)
	assert.Equal(t, "127.0.0.1", found[0].Host)
	assert.Equal(t, 5555, found[0].Port)

	// 同一进程标识的公告被忽略
	testutil.Sleep(50 * time.Millisecond)
	assert.Empty(t, sameBrowser.Poll())
	assert.Empty(t, otherBrowser.Poll())
}

func TestBrowse_Rediscover(t *testing.T) {
	net := memory.NewNetwork()
	pub, _ := newResolver(t, net, "machine-a")
	sub, _ := newResolver(t, net, "machine-b")

	browser, err := sub.Browse(interfaces.ServicePublisher, "lab")
	require.NoError(t, err)
	defer browser.Close()

	bound := types.MustParseURI("*:5555")
	reg, err := pub.Announce(context.Background(), interfaces.ServicePublisher, "lab", bound)
	require.NoError(t, err)

	var found []types.URI
	testutil.Eventually(t, 2*time.Second, func() bool {
		found = append(found, browser.Poll()...)
		return len(found) > 0
	}, "浏览者应发现公告")
	require.Len(t, found, 1)

	testutil.Sleep(50 * time.Millisecond)
	assert.Empty(t, browser.Poll(), "同一地址只报告一次")

	// 离开后在同一地址重新公告，再次报告
	require.NoError(t, reg.Close())
	assert.Zero(t, net.Len())

	reg, err = pub.Announce(context.Background(), interfaces.ServicePublisher, "lab", bound)
	require.NoError(t, err)
	defer reg.Close()

	found = nil
	testutil.Eventually(t, 2*time.Second, func() bool {
		found = append(found, browser.Poll()...)
		return len(found) > 0
	}, "重新公告应再次被发现")
	require.Len(t, found, 1)
	assert.Equal(t, 5555, found[0].Port)
}

func TestBoundURI(t *testing.T) {
	u, err := BoundURI(types.MustParseURI("127.0.0.1:0"), "127.0.0.1:4242")
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:4242", u.String())

	u, err = BoundURI(types.MustParseURI("*:0"), "[::]:4243")
	require.NoError(t, err)
	assert.Equal(t, 4243, u.Port)
	assert.False(t, u.IsWildcard())
	assert.NotEqual(t, "::", u.Host)

	_, err = BoundURI(types.URI{}, "garbage")
	assert.Error(t, err)
}

func TestBindAddr(t *testing.T) {
	assert.Equal(t, ":0", BindAddr(types.URI{}))
	assert.Equal(t, "localhost:80", BindAddr(types.MustParseURI("localhost:80")))
}
