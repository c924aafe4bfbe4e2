package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-zeroeq/config"
	"github.com/dep2p/go-zeroeq/internal/core/discovery/mdns"
	"github.com/dep2p/go-zeroeq/internal/core/discovery/memory"
	"github.com/dep2p/go-zeroeq/pkg/interfaces"
	"github.com/dep2p/go-zeroeq/pkg/types"
)

func TestNew(t *testing.T) {
	cfg := config.DefaultDiscoveryConfig()

	d, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &mdns.Discovery{}, d)
	require.NoError(t, d.Close())

	cfg.Backend = config.BackendMemory
	d, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &memory.Discovery{}, d)
	require.NoError(t, d.Close())

	cfg.Backend = config.BackendNone
	d, err = New(cfg)
	require.NoError(t, err)
	assert.False(t, d.IsAvailable())

	cfg.Backend = "carrier-pigeon"
	_, err = New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidValue)
}

func TestUnavailable(t *testing.T) {
	var d Unavailable
	_, err := d.Announce(context.Background(), types.Announcement{})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = d.Browse(context.Background(), interfaces.ServicePublisher)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, d.Close())
}

type discoveryOut struct {
	fx.In
	Discovery interfaces.Discovery `name:"discovery"`
}

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Discovery.Backend = config.BackendMemory

	var d interfaces.Discovery
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(cfg),
		Module(),
		fx.Invoke(func(out discoveryOut) { d = out.Discovery }),
	)
	app.RequireStart()
	require.NotNil(t, d)
	assert.True(t, d.IsAvailable())

	app.RequireStop()
	assert.False(t, d.IsAvailable())
}

func TestModule_Override(t *testing.T) {
	override := memory.New(memory.NewNetwork())

	var d interfaces.Discovery
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Provide(fx.Annotate(
			func() interfaces.Discovery { return override },
			fx.ResultTags(`name:"discovery_override"`),
		)),
		Module(),
		fx.Invoke(func(out discoveryOut) { d = out.Discovery }),
	)
	app.RequireStart()
	assert.Same(t, override, d)
	app.RequireStop()
}
