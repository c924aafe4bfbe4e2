package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-zeroeq/pkg/types"
)

func TestNew(t *testing.T) {
	a, b := New(Config{}), New(Config{})
	assert.False(t, a.IsEmpty())
	assert.NotEqual(t, a, b)

	assert.Equal(t, types.Identity("fixed"), New(Config{Fixed: "fixed"}))
}

type identityOut struct {
	fx.In
	Identity types.Identity `name:"identity"`
}

func TestModule(t *testing.T) {
	t.Run("Random", func(t *testing.T) {
		var id types.Identity
		app := fxtest.New(t,
			fx.NopLogger,
			Module(),
			fx.Invoke(func(out identityOut) { id = out.Identity }),
		)
		app.RequireStart().RequireStop()
		assert.False(t, id.IsEmpty())
	})

	t.Run("Fixed", func(t *testing.T) {
		var id types.Identity
		app := fxtest.New(t,
			fx.NopLogger,
			fx.Supply(&Config{Fixed: "machine-b"}),
			Module(),
			fx.Invoke(func(out identityOut) { id = out.Identity }),
		)
		app.RequireStart().RequireStop()
		assert.Equal(t, types.Identity("machine-b"), id)
	})
}
