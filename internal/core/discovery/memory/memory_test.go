package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
)

func next(t *testing.T, ch <-chan types.PeerEvent) types.PeerEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "事件流已关闭")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("等待发现事件超时")
	}
	return types.PeerEvent{}
}

func announcement(port int) types.Announcement {
	return types.Announcement{
		Service:  interfaces.ServicePublisher,
		Instance: "inst",
		Session:  "lab",
		Identity: types.Identity("pub"),
		Port:     port,
	}
}

func TestAnnounceThenBrowse(t *testing.T) {
	net := NewNetwork()
	pub, sub := New(net), New(net)
	defer pub.Close()
	defer sub.Close()

	_, err := pub.Announce(context.Background(), announcement(1234))
	require.NoError(t, err)
	assert.Equal(t, 1, net.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := sub.Browse(ctx, interfaces.ServicePublisher)
	require.NoError(t, err)

	ev := next(t, events)
	assert.Equal(t, types.PeerAdded, ev.Kind)
	assert.Equal(t, "lab", ev.Session)
	assert.Equal(t, "127.0.0.1:1234", ev.Addr())
	assert.Equal(t, types.Identity("pub"), ev.Identity)
}

func TestLateAnnounceAndRemove(t *testing.T) {
	net := NewNetwork()
	pub, sub := New(net), New(net)
	defer pub.Close()
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := sub.Browse(ctx, interfaces.ServicePublisher)
	require.NoError(t, err)

	// 其他服务类型不可见
	_, err = pub.Announce(context.Background(), types.Announcement{Service: interfaces.ServiceServer, Session: "lab", Port: 1})
	require.NoError(t, err)

	ann := announcement(4321)
	ann.Host = "10.1.2.3"
	reg, err := pub.Announce(context.Background(), ann)
	require.NoError(t, err)

	ev := next(t, events)
	assert.Equal(t, types.PeerAdded, ev.Kind)
	assert.Equal(t, "10.1.2.3:4321", ev.Addr())

	require.NoError(t, reg.Close())
	ev = next(t, events)
	assert.Equal(t, types.PeerRemoved, ev.Kind)
	assert.Equal(t, 4321, ev.Port)
}

func TestBrowseContextCancel(t *testing.T) {
	d := New(NewNetwork())
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := d.Browse(ctx, interfaces.ServicePublisher)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("取消后事件流未关闭")
	}
}

func TestClose(t *testing.T) {
	net := NewNetwork()
	d := New(net)
	_, err := d.Announce(context.Background(), announcement(1))
	require.NoError(t, err)

	events, err := d.Browse(context.Background(), interfaces.ServicePublisher)
	require.NoError(t, err)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.Equal(t, 0, net.Len())
	assert.False(t, d.IsAvailable())

	for range events {
	}

	_, err = d.Announce(context.Background(), announcement(1))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = d.Browse(context.Background(), interfaces.ServicePublisher)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSetAvailable(t *testing.T) {
	d := New(NewNetwork())
	defer d.Close()

	assert.True(t, d.IsAvailable())
	d.SetAvailable(false)
	assert.False(t, d.IsAvailable())
	d.SetAvailable(true)
	assert.True(t, d.IsAvailable())
}
